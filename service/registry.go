package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/layer-3/auctioneer/core"
	"github.com/layer-3/auctioneer/ports"
)

// Registry assigns identifiers and keeps each identity's email and public key
type Registry struct {
	store ports.IdentityStore
	log   *slog.Logger
}

// NewRegistry creates a registry over store
func NewRegistry(store ports.IdentityStore, opts ...Option) *Registry {
	o := newOptions(opts)
	return &Registry{
		store: store,
		log:   o.log,
	}
}

// Register stores a new identity and returns its id. Emails need not be unique.
func (r *Registry) Register(ctx context.Context, email string, publicKey []byte) (uint64, error) {
	identity, err := r.store.Create(ctx, email, publicKey)
	if err != nil {
		return 0, fmt.Errorf("failed to register identity: %w", err)
	}

	r.log.InfoContext(ctx, "identity registered", slog.Uint64("identity_id", identity.ID))
	return identity.ID, nil
}

// Lookup returns the identity or core.ErrUnknownIdentity
func (r *Registry) Lookup(ctx context.Context, id uint64) (core.Identity, error) {
	return r.store.Get(ctx, id)
}

func (r *Registry) setChallenge(ctx context.Context, id uint64, nonce string) error {
	return r.store.SetChallenge(ctx, id, nonce)
}

func (r *Registry) clearChallenge(ctx context.Context, id uint64, nonce string) (bool, error) {
	return r.store.ClearChallenge(ctx, id, nonce)
}
