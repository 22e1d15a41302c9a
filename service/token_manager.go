package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/layer-3/auctioneer/core"
	"github.com/layer-3/auctioneer/internal/metrics"
	"github.com/layer-3/auctioneer/ports"
)

// DefaultTokenTTL is how long a session token stays valid
const DefaultTokenTTL = 10 * time.Second

// TokenManager issues single-use session tokens, at most one per identity
type TokenManager struct {
	store  ports.TokenStore
	minter ports.TokenMinter
	ttl    time.Duration

	now     func() time.Time
	log     *slog.Logger
	metrics metrics.Recorder
}

// NewTokenManager creates a token manager. A non-positive ttl selects DefaultTokenTTL.
func NewTokenManager(store ports.TokenStore, minter ports.TokenMinter, ttl time.Duration, opts ...Option) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	o := newOptions(opts)
	return &TokenManager{
		store:   store,
		minter:  minter,
		ttl:     ttl,
		now:     o.now,
		log:     o.log,
		metrics: o.metrics,
	}
}

// TTL returns the lifetime of issued tokens
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Generate issues a new token for owner, invalidating any previous one
func (m *TokenManager) Generate(ctx context.Context, owner uint64) (core.SessionToken, error) {
	expiresAt := m.now().Add(m.ttl)

	value, err := m.minter.Mint(owner, expiresAt)
	if err != nil {
		return core.SessionToken{}, fmt.Errorf("failed to mint token: %w", err)
	}

	token := core.SessionToken{
		Owner:     owner,
		Value:     value,
		ExpiresAt: expiresAt,
	}
	if err := m.store.Put(ctx, token); err != nil {
		return core.SessionToken{}, fmt.Errorf("failed to store token: %w", err)
	}

	m.log.DebugContext(ctx, "session token issued",
		slog.Uint64("identity_id", owner),
		slog.Time("expires_at", expiresAt))
	return token, nil
}

// Validate consumes the owner's token. The stored token is removed whether or not
// value matches, so every token is checked at most once.
func (m *TokenManager) Validate(ctx context.Context, owner uint64, value string) error {
	stored, err := m.store.Take(ctx, owner)
	if err != nil {
		m.metrics.RecordTokenValidation(metrics.ResultFailure)
		if errors.Is(err, core.ErrTokenInvalid) {
			return err
		}
		return fmt.Errorf("failed to take token: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored.Value), []byte(value)) != 1 {
		m.metrics.RecordTokenValidation(metrics.ResultFailure)
		m.log.WarnContext(ctx, "session token mismatch", slog.Uint64("identity_id", owner))
		return core.ErrTokenMismatch
	}

	if stored.Expired(m.now()) {
		m.metrics.RecordTokenValidation(metrics.ResultFailure)
		return core.ErrTokenExpired
	}

	m.metrics.RecordTokenValidation(metrics.ResultSuccess)
	return nil
}
