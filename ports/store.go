package ports

import (
	"context"

	"github.com/layer-3/auctioneer/core"
)

// IdentityStore owns registered identities and their pending challenges
type IdentityStore interface {
	// Create stores a new identity under the next unused id
	Create(ctx context.Context, email string, publicKey []byte) (core.Identity, error)
	Get(ctx context.Context, id uint64) (core.Identity, error)

	// SetChallenge replaces any pending challenge for the identity
	SetChallenge(ctx context.Context, id uint64, nonce string) error
	// ClearChallenge clears the pending challenge only if it still equals nonce
	ClearChallenge(ctx context.Context, id uint64, nonce string) (bool, error)
}

// TokenStore holds at most one session token per identity
type TokenStore interface {
	// Put stores the token, replacing any previous token of the same owner
	Put(ctx context.Context, token core.SessionToken) error
	// Take atomically removes and returns the owner's token.
	// Returns core.ErrNoToken when none is stored.
	Take(ctx context.Context, owner uint64) (core.SessionToken, error)
}

// ItemUpdate mutates an item under its lock. Returning an error leaves the item untouched.
type ItemUpdate func(item *core.AuctionItem) error

// AuctionStore owns the open auction items
type AuctionStore interface {
	// Insert assigns the next item id and stores the item
	Insert(ctx context.Context, item core.AuctionItem) (uint64, error)
	Get(ctx context.Context, id uint64) (core.AuctionItem, error)
	List(ctx context.Context) ([]core.AuctionItem, error)

	// Update runs fn under the item's exclusive lock
	Update(ctx context.Context, id uint64, fn ItemUpdate) (core.AuctionItem, error)
	// Remove runs check under the item's exclusive lock and removes the item if check passes.
	// Once Remove has taken the lock, later Update and Remove calls see core.ErrNotFound.
	Remove(ctx context.Context, id uint64, check func(item core.AuctionItem) error) (core.AuctionItem, error)
}
