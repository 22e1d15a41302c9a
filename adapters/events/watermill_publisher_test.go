package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/layer-3/auctioneer/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPubSub(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })
	return pubSub
}

func receive(t *testing.T, messages <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-messages:
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestWatermillPublisher_BidAccepted(t *testing.T) {
	pubSub := newTestPubSub(t)
	ctx := context.Background()

	messages, err := pubSub.Subscribe(ctx, "auctioneer.auction.bid")
	require.NoError(t, err)

	p := NewWatermillPublisher(pubSub, "auctioneer")
	require.NoError(t, p.PublishBidAccepted(ctx, core.AuctionItem{ID: 3, HighestBid: 150, HighestBidder: 2}))

	var event BidAcceptedEvent
	require.NoError(t, json.Unmarshal(receive(t, messages).Payload, &event))
	assert.Equal(t, BidAcceptedEvent{ItemID: 3, BidderID: 2, Price: 150}, event)
}

func TestWatermillPublisher_AuctionClosed(t *testing.T) {
	pubSub := newTestPubSub(t)
	ctx := context.Background()

	messages, err := pubSub.Subscribe(ctx, "auctioneer.auction.closed")
	require.NoError(t, err)

	p := NewWatermillPublisher(pubSub, "auctioneer")
	item := core.AuctionItem{ID: 1, OwnerID: 1, HighestBid: 60, HighestBidder: 2, ReservePrice: 100}
	require.NoError(t, p.PublishAuctionClosed(ctx, item, core.AuctionResult{}))

	var event AuctionClosedEvent
	require.NoError(t, json.Unmarshal(receive(t, messages).Payload, &event))
	assert.False(t, event.Sold)
	assert.Zero(t, event.WinnerID)
	assert.Zero(t, event.WinningPrice)
}

func TestWatermillPublisher_AuctionCreated(t *testing.T) {
	pubSub := newTestPubSub(t)
	ctx := context.Background()

	messages, err := pubSub.Subscribe(ctx, "auction.created")
	require.NoError(t, err)

	p := NewWatermillPublisher(pubSub, "")
	require.NoError(t, p.PublishAuctionCreated(ctx, core.AuctionItem{ID: 5, OwnerID: 1, Name: "lamp", ReservePrice: 10}))

	var event AuctionCreatedEvent
	require.NoError(t, json.Unmarshal(receive(t, messages).Payload, &event))
	assert.Equal(t, uint64(5), event.ItemID)
	assert.Equal(t, "lamp", event.Name)
}
