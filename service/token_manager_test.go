package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/layer-3/auctioneer/adapters/store"
	"github.com/layer-3/auctioneer/adapters/tokenizer"
	"github.com/layer-3/auctioneer/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager(ttl time.Duration) (*TokenManager, *fakeClock) {
	clock := newFakeClock()
	m := NewTokenManager(store.NewMemoryTokenStore(), tokenizer.NewOpaqueTokenizer(), ttl, WithClock(clock.Now))
	return m, clock
}

type failingMinter struct{}

func (failingMinter) Mint(uint64, time.Time) (string, error) {
	return "", errors.New("entropy exhausted")
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	m, clock := newTestTokenManager(0)
	assert.Equal(t, DefaultTokenTTL, m.TTL())

	token, err := m.Generate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(10*time.Second), token.ExpiresAt)
	assert.Equal(t, uint64(1), token.Owner)
	assert.NotEmpty(t, token.Value)
}

func TestTokenManager_SingleUse(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestTokenManager(time.Minute)

	token, err := m.Generate(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, m.Validate(ctx, 1, token.Value))

	err = m.Validate(ctx, 1, token.Value)
	assert.ErrorIs(t, err, core.ErrNoToken)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestTokenManager_MismatchDeletesStoredToken(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestTokenManager(time.Minute)

	token, err := m.Generate(ctx, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, m.Validate(ctx, 1, "guess"), core.ErrTokenMismatch)
	assert.ErrorIs(t, m.Validate(ctx, 1, token.Value), core.ErrNoToken)
}

func TestTokenManager_WrongOwner(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestTokenManager(time.Minute)

	token, err := m.Generate(ctx, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, m.Validate(ctx, 2, token.Value), core.ErrNoToken)
	assert.NoError(t, m.Validate(ctx, 1, token.Value))
}

func TestTokenManager_ExpiresAtTTL(t *testing.T) {
	ctx := context.Background()

	t.Run("just before expiry", func(t *testing.T) {
		m, clock := newTestTokenManager(10 * time.Second)
		token, err := m.Generate(ctx, 1)
		require.NoError(t, err)

		clock.Advance(10*time.Second - time.Nanosecond)
		assert.NoError(t, m.Validate(ctx, 1, token.Value))
	})

	t.Run("exactly at expiry", func(t *testing.T) {
		m, clock := newTestTokenManager(10 * time.Second)
		token, err := m.Generate(ctx, 1)
		require.NoError(t, err)

		clock.Advance(10 * time.Second)
		err = m.Validate(ctx, 1, token.Value)
		assert.ErrorIs(t, err, core.ErrTokenExpired)
		assert.ErrorIs(t, err, core.ErrTokenInvalid)
	})

	t.Run("expired token is deleted", func(t *testing.T) {
		m, clock := newTestTokenManager(10 * time.Second)
		token, err := m.Generate(ctx, 1)
		require.NoError(t, err)

		clock.Advance(11 * time.Second)
		assert.ErrorIs(t, m.Validate(ctx, 1, token.Value), core.ErrTokenExpired)
		assert.ErrorIs(t, m.Validate(ctx, 1, token.Value), core.ErrNoToken)
	})
}

func TestTokenManager_NewTokenInvalidatesOld(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestTokenManager(time.Minute)

	old, err := m.Generate(ctx, 1)
	require.NoError(t, err)
	fresh, err := m.Generate(ctx, 1)
	require.NoError(t, err)
	require.NotEqual(t, old.Value, fresh.Value)

	assert.ErrorIs(t, m.Validate(ctx, 1, old.Value), core.ErrTokenMismatch)

	fresh, err = m.Generate(ctx, 1)
	require.NoError(t, err)
	assert.NoError(t, m.Validate(ctx, 1, fresh.Value))
}

func TestTokenManager_ConcurrentValidateSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestTokenManager(time.Minute)

	token, err := m.Generate(ctx, 1)
	require.NoError(t, err)

	const n = 64
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Validate(ctx, 1, token.Value) == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestTokenManager_MintFailure(t *testing.T) {
	m := NewTokenManager(store.NewMemoryTokenStore(), failingMinter{}, time.Minute)

	_, err := m.Generate(context.Background(), 1)
	assert.Error(t, err)
	assert.ErrorIs(t, m.Validate(context.Background(), 1, ""), core.ErrNoToken)
}
