package ports

import (
	"context"

	"github.com/layer-3/auctioneer/core"
)

// EventPublisher publishes auction lifecycle events to other instances and consumers
type EventPublisher interface {
	PublishAuctionCreated(ctx context.Context, item core.AuctionItem) error
	PublishBidAccepted(ctx context.Context, item core.AuctionItem) error
	PublishAuctionClosed(ctx context.Context, item core.AuctionItem, result core.AuctionResult) error
}
