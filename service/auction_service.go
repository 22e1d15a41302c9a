package service

import (
	"context"

	auctioneer "github.com/layer-3/auctioneer"
	"github.com/layer-3/auctioneer/core"
)

var _ auctioneer.Auction = (*AuctionService)(nil)

// AuctionService exposes the auction operations. Every privileged call consumes the
// caller's session token before doing anything else.
type AuctionService struct {
	registry *Registry
	auth     *Authenticator
	tokens   *TokenManager
	ledger   *Ledger
}

// NewAuctionService creates a new auction service
func NewAuctionService(registry *Registry, auth *Authenticator, tokens *TokenManager, ledger *Ledger) *AuctionService {
	return &AuctionService{
		registry: registry,
		auth:     auth,
		tokens:   tokens,
		ledger:   ledger,
	}
}

func (s *AuctionService) Register(ctx context.Context, email string, publicKey []byte) (uint64, error) {
	return s.registry.Register(ctx, email, publicKey)
}

func (s *AuctionService) Challenge(ctx context.Context, id uint64, clientNonce string) (core.ChallengeResponse, error) {
	return s.auth.Challenge(ctx, id, clientNonce)
}

func (s *AuctionService) Authenticate(ctx context.Context, id uint64, signature []byte) (core.SessionToken, error) {
	return s.auth.Authenticate(ctx, id, signature)
}

func (s *AuctionService) GetItem(ctx context.Context, id, itemID uint64, token string) (core.AuctionItem, error) {
	if err := s.tokens.Validate(ctx, id, token); err != nil {
		return core.AuctionItem{}, err
	}
	return s.ledger.Get(ctx, itemID)
}

func (s *AuctionService) NewAuction(ctx context.Context, id uint64, spec core.ItemSpec, token string) (uint64, error) {
	if err := s.tokens.Validate(ctx, id, token); err != nil {
		return 0, err
	}
	return s.ledger.Create(ctx, id, spec)
}

func (s *AuctionService) ListItems(ctx context.Context, id uint64, token string) ([]core.AuctionItem, error) {
	if err := s.tokens.Validate(ctx, id, token); err != nil {
		return nil, err
	}
	return s.ledger.List(ctx)
}

func (s *AuctionService) Bid(ctx context.Context, id, itemID, price uint64, token string) (bool, error) {
	if err := s.tokens.Validate(ctx, id, token); err != nil {
		return false, err
	}
	return s.ledger.Bid(ctx, id, itemID, price)
}

func (s *AuctionService) CloseAuction(ctx context.Context, id, itemID uint64, token string) (core.AuctionResult, error) {
	if err := s.tokens.Validate(ctx, id, token); err != nil {
		return core.AuctionResult{}, err
	}
	return s.ledger.Close(ctx, id, itemID)
}
