package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/layer-3/auctioneer/core"
	"github.com/layer-3/auctioneer/ports"
)

type identitySlot struct {
	mu       sync.Mutex
	identity core.Identity
}

// MemoryIdentityStore is an in-memory implementation of the IdentityStore interface.
// Each identity carries its own lock, so challenges for different identities never contend.
type MemoryIdentityStore struct {
	lastID     atomic.Uint64
	identities sync.Map // uint64 -> *identitySlot
}

// NewMemoryIdentityStore creates a new in-memory identity store
func NewMemoryIdentityStore() ports.IdentityStore {
	return &MemoryIdentityStore{}
}

// Create registers an identity under the next id
func (s *MemoryIdentityStore) Create(ctx context.Context, email string, publicKey []byte) (core.Identity, error) {
	identity := core.Identity{
		ID:        s.lastID.Add(1),
		Email:     email,
		PublicKey: append([]byte(nil), publicKey...),
	}
	s.identities.Store(identity.ID, &identitySlot{identity: identity})

	return identity, nil
}

// Get returns a copy of the identity
func (s *MemoryIdentityStore) Get(ctx context.Context, id uint64) (core.Identity, error) {
	slot, ok := s.slot(id)
	if !ok {
		return core.Identity{}, core.ErrUnknownIdentity
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	return slot.identity, nil
}

// SetChallenge overwrites the pending challenge; the last caller wins
func (s *MemoryIdentityStore) SetChallenge(ctx context.Context, id uint64, nonce string) error {
	slot, ok := s.slot(id)
	if !ok {
		return core.ErrUnknownIdentity
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	slot.identity.PendingChallenge = nonce
	return nil
}

// ClearChallenge clears the pending challenge if it still equals nonce
func (s *MemoryIdentityStore) ClearChallenge(ctx context.Context, id uint64, nonce string) (bool, error) {
	slot, ok := s.slot(id)
	if !ok {
		return false, core.ErrUnknownIdentity
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.identity.PendingChallenge != nonce {
		return false, nil
	}
	slot.identity.PendingChallenge = ""
	return true, nil
}

func (s *MemoryIdentityStore) slot(id uint64) (*identitySlot, bool) {
	v, ok := s.identities.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*identitySlot), true
}

// MemoryTokenStore is an in-memory implementation of the TokenStore interface
type MemoryTokenStore struct {
	tokens sync.Map // uint64 -> core.SessionToken
}

// NewMemoryTokenStore creates a new in-memory token store
func NewMemoryTokenStore() ports.TokenStore {
	return &MemoryTokenStore{}
}

// Put stores the token, replacing the owner's previous one
func (s *MemoryTokenStore) Put(ctx context.Context, token core.SessionToken) error {
	s.tokens.Store(token.Owner, token)
	return nil
}

// Take removes and returns the owner's token in one step
func (s *MemoryTokenStore) Take(ctx context.Context, owner uint64) (core.SessionToken, error) {
	v, ok := s.tokens.LoadAndDelete(owner)
	if !ok {
		return core.SessionToken{}, core.ErrNoToken
	}
	return v.(core.SessionToken), nil
}
