// Package auctioneer is a remotely accessible auction service.
//
// Callers register a public key once. Before every privileged call they run a
// challenge-response round trip, receive a session token, and spend that token on
// exactly one call.
package auctioneer

import (
	"context"

	"github.com/layer-3/auctioneer/core"
)

// Auction represents the operation set exposed to remote callers
type Auction interface {
	// Register stores an identity and returns its id
	Register(ctx context.Context, email string, publicKey []byte) (uint64, error)

	// Challenge signs the caller's nonce and returns a server nonce to sign back
	Challenge(ctx context.Context, id uint64, clientNonce string) (core.ChallengeResponse, error)

	// Authenticate verifies the signed server nonce and returns a single-use session token
	Authenticate(ctx context.Context, id uint64, signature []byte) (core.SessionToken, error)

	// GetItem returns an open auction
	GetItem(ctx context.Context, id, itemID uint64, token string) (core.AuctionItem, error)

	// NewAuction opens an auction owned by the caller
	NewAuction(ctx context.Context, id uint64, spec core.ItemSpec, token string) (uint64, error)

	// ListItems returns all open auctions
	ListItems(ctx context.Context, id uint64, token string) ([]core.AuctionItem, error)

	// Bid reports whether the bid became the highest bid
	Bid(ctx context.Context, id, itemID, price uint64, token string) (bool, error)

	// CloseAuction closes one of the caller's auctions and settles it
	CloseAuction(ctx context.Context, id, itemID uint64, token string) (core.AuctionResult, error)
}
