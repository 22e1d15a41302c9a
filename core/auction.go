package core

import "time"

// ItemSpec describes an item being put up for auction
type ItemSpec struct {
	Name         string
	Description  string
	ReservePrice uint64
}

// AuctionItem is an open auction
type AuctionItem struct {
	ID            uint64
	Name          string
	Description   string
	ReservePrice  uint64
	OwnerID       uint64
	HighestBid    uint64
	HighestBidder uint64 // Zero until the first accepted bid
	CreatedAt     time.Time
}

// HasBidder reports whether any bid has been accepted
func (i AuctionItem) HasBidder() bool {
	return i.HighestBidder != 0
}

// ReserveMet reports whether the current highest bid would sell the item
func (i AuctionItem) ReserveMet() bool {
	return i.HasBidder() && i.HighestBid >= i.ReservePrice
}

// AuctionResult is the settlement computed when an auction is closed
type AuctionResult struct {
	Sold         bool
	WinnerEmail  string
	WinningPrice uint64
}
