package service

import (
	"context"
	"testing"
	"time"

	"github.com/layer-3/auctioneer/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuctionService_WinnerAboveReserve(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.register(t, "a@example.com")
	b := h.register(t, "b@example.com")

	itemID, err := h.svc.NewAuction(ctx, a.id, core.ItemSpec{Name: "X", ReservePrice: 100}, h.login(t, a))
	require.NoError(t, err)

	accepted, err := h.svc.Bid(ctx, b.id, itemID, 150, h.login(t, b))
	require.NoError(t, err)
	assert.True(t, accepted)

	result, err := h.svc.CloseAuction(ctx, a.id, itemID, h.login(t, a))
	require.NoError(t, err)
	assert.Equal(t, core.AuctionResult{Sold: true, WinnerEmail: "b@example.com", WinningPrice: 150}, result)
	assert.Equal(t, []string{"created", "bid", "closed"}, h.events.kinds())
}

func TestAuctionService_ReserveNotMet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.register(t, "a@example.com")
	b := h.register(t, "b@example.com")

	itemID, err := h.svc.NewAuction(ctx, a.id, core.ItemSpec{Name: "Y", ReservePrice: 100}, h.login(t, a))
	require.NoError(t, err)

	accepted, err := h.svc.Bid(ctx, b.id, itemID, 60, h.login(t, b))
	require.NoError(t, err)
	assert.True(t, accepted)

	result, err := h.svc.CloseAuction(ctx, a.id, itemID, h.login(t, a))
	require.NoError(t, err)
	assert.False(t, result.Sold)
	assert.Empty(t, result.WinnerEmail)
	assert.Zero(t, result.WinningPrice)
}

func TestAuctionService_TokenIsSingleUse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.register(t, "a@example.com")

	token := h.login(t, a)
	_, err := h.svc.ListItems(ctx, a.id, token)
	require.NoError(t, err)

	_, err = h.svc.ListItems(ctx, a.id, token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestAuctionService_ExpiredToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.register(t, "a@example.com")

	token := h.login(t, a)
	h.clock.Advance(DefaultTokenTTL + time.Second)

	_, err := h.svc.ListItems(ctx, a.id, token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestAuctionService_SelfBid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.register(t, "a@example.com")

	itemID, err := h.svc.NewAuction(ctx, a.id, core.ItemSpec{Name: "Z"}, h.login(t, a))
	require.NoError(t, err)

	accepted, err := h.svc.Bid(ctx, a.id, itemID, 10, h.login(t, a))
	require.NoError(t, err)
	assert.False(t, accepted)

	item, err := h.svc.GetItem(ctx, a.id, itemID, h.login(t, a))
	require.NoError(t, err)
	assert.Zero(t, item.HighestBid)
}

func TestAuctionService_NonOwnerClose(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.register(t, "a@example.com")
	b := h.register(t, "b@example.com")

	itemID, err := h.svc.NewAuction(ctx, a.id, core.ItemSpec{Name: "W"}, h.login(t, a))
	require.NoError(t, err)

	_, err = h.svc.CloseAuction(ctx, b.id, itemID, h.login(t, b))
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	items, err := h.svc.ListItems(ctx, b.id, h.login(t, b))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, itemID, items[0].ID)

	_, err = h.svc.CloseAuction(ctx, a.id, itemID, h.login(t, a))
	assert.NoError(t, err)
}

func TestAuctionService_TokenCheckedFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.register(t, "a@example.com")

	_, err := h.svc.GetItem(ctx, a.id, 12345, "bogus")
	assert.ErrorIs(t, err, core.ErrNoToken)

	token := h.login(t, a)
	_, err = h.svc.GetItem(ctx, a.id, 12345, token)
	assert.ErrorIs(t, err, core.ErrNotFound)

	// The token was spent even though the item did not exist
	_, err = h.svc.GetItem(ctx, a.id, 12345, token)
	assert.ErrorIs(t, err, core.ErrNoToken)
}

func TestAuctionService_TokenBoundToIdentity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.register(t, "a@example.com")
	b := h.register(t, "b@example.com")

	token := h.login(t, a)
	_, err := h.svc.NewAuction(ctx, b.id, core.ItemSpec{Name: "stolen"}, token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestAuctionService_RegisterAssignsSequentialIDs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.svc.Register(ctx, "same@example.com", nil)
	require.NoError(t, err)
	second, err := h.svc.Register(ctx, "same@example.com", nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
}
