package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/layer-3/auctioneer/core"
	"github.com/layer-3/auctioneer/internal/metrics"
	"github.com/layer-3/auctioneer/ports"
)

var errBidRejected = errors.New("bid rejected")

// Ledger owns the open auctions, their bids and their settlement.
// Bids and closure of one item serialize on that item only.
type Ledger struct {
	items    ports.AuctionStore
	registry *Registry
	events   ports.EventPublisher

	now     func() time.Time
	log     *slog.Logger
	metrics metrics.Recorder
}

// NewLedger creates a new ledger
func NewLedger(items ports.AuctionStore, registry *Registry, events ports.EventPublisher, opts ...Option) *Ledger {
	o := newOptions(opts)
	return &Ledger{
		items:    items,
		registry: registry,
		events:   events,
		now:      o.now,
		log:      o.log,
		metrics:  o.metrics,
	}
}

// Create opens an auction owned by ownerID and returns the item id
func (l *Ledger) Create(ctx context.Context, ownerID uint64, spec core.ItemSpec) (uint64, error) {
	if _, err := l.registry.Lookup(ctx, ownerID); err != nil {
		return 0, err
	}

	item := core.AuctionItem{
		Name:         spec.Name,
		Description:  spec.Description,
		ReservePrice: spec.ReservePrice,
		OwnerID:      ownerID,
		CreatedAt:    l.now(),
	}

	id, err := l.items.Insert(ctx, item)
	if err != nil {
		return 0, fmt.Errorf("failed to store auction item: %w", err)
	}
	item.ID = id

	l.metrics.RecordAuctionCreated()
	l.log.InfoContext(ctx, "auction opened",
		slog.Uint64("item_id", id),
		slog.Uint64("owner_id", ownerID))

	if err := l.events.PublishAuctionCreated(ctx, item); err != nil {
		l.log.WarnContext(ctx, "failed to publish auction created event", slog.Any("error", err))
	}

	return id, nil
}

// List returns a snapshot of the open auctions
func (l *Ledger) List(ctx context.Context) ([]core.AuctionItem, error) {
	return l.items.List(ctx)
}

// Get returns an open auction or core.ErrNotFound
func (l *Ledger) Get(ctx context.Context, itemID uint64) (core.AuctionItem, error) {
	return l.items.Get(ctx, itemID)
}

// Bid offers price for an item. It reports true when the bid became the highest bid.
// Owners can never bid on their own items and equal bids never displace the current one.
func (l *Ledger) Bid(ctx context.Context, bidderID, itemID, price uint64) (bool, error) {
	if bidderID == 0 {
		return false, core.ErrUnknownIdentity
	}

	selfBid := false
	item, err := l.items.Update(ctx, itemID, func(item *core.AuctionItem) error {
		if item.OwnerID == bidderID {
			selfBid = true
			return errBidRejected
		}
		if price <= item.HighestBid {
			return errBidRejected
		}
		item.HighestBid = price
		item.HighestBidder = bidderID
		return nil
	})

	switch {
	case errors.Is(err, errBidRejected):
		if selfBid {
			l.metrics.RecordBid(metrics.ResultSelfBid)
		} else {
			l.metrics.RecordBid(metrics.ResultRejected)
		}
		return false, nil
	case err != nil:
		return false, err
	}

	l.metrics.RecordBid(metrics.ResultAccepted)
	l.log.DebugContext(ctx, "bid accepted",
		slog.Uint64("item_id", itemID),
		slog.Uint64("bidder_id", bidderID),
		slog.Uint64("price", price))

	if err := l.events.PublishBidAccepted(ctx, item); err != nil {
		l.log.WarnContext(ctx, "failed to publish bid event", slog.Any("error", err))
	}

	return true, nil
}

// Close ends an auction owned by requesterID and settles it.
// Once closed the item is gone: further bids, lookups and closes report core.ErrNotFound.
func (l *Ledger) Close(ctx context.Context, requesterID, itemID uint64) (core.AuctionResult, error) {
	item, err := l.items.Remove(ctx, itemID, func(item core.AuctionItem) error {
		if item.OwnerID != requesterID {
			return core.ErrUnauthorized
		}
		return nil
	})
	if err != nil {
		return core.AuctionResult{}, err
	}

	result, err := l.settle(ctx, item)
	if err != nil {
		return core.AuctionResult{}, err
	}

	l.metrics.RecordAuctionClosed(result.Sold)
	l.log.InfoContext(ctx, "auction closed",
		slog.Uint64("item_id", itemID),
		slog.Bool("sold", result.Sold),
		slog.Uint64("winning_price", result.WinningPrice))

	if err := l.events.PublishAuctionClosed(ctx, item, result); err != nil {
		l.log.WarnContext(ctx, "failed to publish auction closed event", slog.Any("error", err))
	}

	return result, nil
}

func (l *Ledger) settle(ctx context.Context, item core.AuctionItem) (core.AuctionResult, error) {
	if !item.ReserveMet() {
		return core.AuctionResult{}, nil
	}

	winner, err := l.registry.Lookup(ctx, item.HighestBidder)
	if err != nil {
		return core.AuctionResult{}, fmt.Errorf("failed to look up winner of item %d: %w", item.ID, err)
	}

	return core.AuctionResult{
		Sold:         true,
		WinnerEmail:  winner.Email,
		WinningPrice: item.HighestBid,
	}, nil
}
