package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/layer-3/auctioneer/core"
	"github.com/layer-3/auctioneer/ports"
)

const (
	TopicAuctionCreated = "auction.created"
	TopicBidAccepted    = "auction.bid"
	TopicAuctionClosed  = "auction.closed"
)

// AuctionCreatedEvent is published when an item is put up for auction
type AuctionCreatedEvent struct {
	ItemID       uint64    `json:"item_id"`
	OwnerID      uint64    `json:"owner_id"`
	Name         string    `json:"name"`
	ReservePrice uint64    `json:"reserve_price"`
	CreatedAt    time.Time `json:"created_at"`
}

// BidAcceptedEvent is published when a bid becomes the highest bid
type BidAcceptedEvent struct {
	ItemID   uint64 `json:"item_id"`
	BidderID uint64 `json:"bidder_id"`
	Price    uint64 `json:"price"`
}

// AuctionClosedEvent is published once an auction has been settled
type AuctionClosedEvent struct {
	ItemID       uint64 `json:"item_id"`
	OwnerID      uint64 `json:"owner_id"`
	Sold         bool   `json:"sold"`
	WinnerID     uint64 `json:"winner_id,omitempty"`
	WinningPrice uint64 `json:"winning_price"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	prefix    string
}

// NewWatermillPublisher creates a new Watermill publisher. Topics are prefixed with prefix and a dot.
func NewWatermillPublisher(publisher message.Publisher, prefix string) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		prefix:    prefix,
	}
}

// Topic returns the full topic name for an event kind
func Topic(prefix, kind string) string {
	if prefix == "" {
		return kind
	}
	return prefix + "." + kind
}

// PublishAuctionCreated publishes an auction created event
func (p *WatermillPublisher) PublishAuctionCreated(ctx context.Context, item core.AuctionItem) error {
	return p.publish(ctx, TopicAuctionCreated, AuctionCreatedEvent{
		ItemID:       item.ID,
		OwnerID:      item.OwnerID,
		Name:         item.Name,
		ReservePrice: item.ReservePrice,
		CreatedAt:    item.CreatedAt,
	})
}

// PublishBidAccepted publishes the new highest bid of an item
func (p *WatermillPublisher) PublishBidAccepted(ctx context.Context, item core.AuctionItem) error {
	return p.publish(ctx, TopicBidAccepted, BidAcceptedEvent{
		ItemID:   item.ID,
		BidderID: item.HighestBidder,
		Price:    item.HighestBid,
	})
}

// PublishAuctionClosed publishes the settlement of an auction
func (p *WatermillPublisher) PublishAuctionClosed(ctx context.Context, item core.AuctionItem, result core.AuctionResult) error {
	event := AuctionClosedEvent{
		ItemID:       item.ID,
		OwnerID:      item.OwnerID,
		Sold:         result.Sold,
		WinningPrice: result.WinningPrice,
	}
	if result.Sold {
		event.WinnerID = item.HighestBidder
	}
	return p.publish(ctx, TopicAuctionClosed, event)
}

func (p *WatermillPublisher) publish(ctx context.Context, kind string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(Topic(p.prefix, kind), msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) PublishAuctionCreated(context.Context, core.AuctionItem) error { return nil }
func (NoopPublisher) PublishBidAccepted(context.Context, core.AuctionItem) error    { return nil }
func (NoopPublisher) PublishAuctionClosed(context.Context, core.AuctionItem, core.AuctionResult) error {
	return nil
}
