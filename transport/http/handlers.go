package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	auctioneer "github.com/layer-3/auctioneer"
	"github.com/layer-3/auctioneer/core"
)

// ItemResponse is the wire form of an open auction
type ItemResponse struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ReservePrice  uint64    `json:"reserve_price"`
	OwnerID       uint64    `json:"owner_id"`
	HighestBid    uint64    `json:"highest_bid"`
	HighestBidder uint64    `json:"highest_bidder,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func newItemResponse(item core.AuctionItem) ItemResponse {
	return ItemResponse{
		ID:            item.ID,
		Name:          item.Name,
		Description:   item.Description,
		ReservePrice:  item.ReservePrice,
		OwnerID:       item.OwnerID,
		HighestBid:    item.HighestBid,
		HighestBidder: item.HighestBidder,
		CreatedAt:     item.CreatedAt,
	}
}

// ResultResponse is the wire form of an auction settlement
type ResultResponse struct {
	Sold         bool   `json:"sold"`
	WinnerEmail  string `json:"winner_email,omitempty"`
	WinningPrice uint64 `json:"winning_price"`
}

// AuctionHandlers contains HTTP handlers for the auction operations
type AuctionHandlers struct {
	svc auctioneer.Auction
	log *slog.Logger
}

// NewAuctionHandlers creates new auction handlers
func NewAuctionHandlers(svc auctioneer.Auction, log *slog.Logger) *AuctionHandlers {
	return &AuctionHandlers{
		svc: svc,
		log: log,
	}
}

// Register handles identity registration
func (h *AuctionHandlers) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		PublicKey string `json:"public_key" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	publicKey, err := hexutil.Decode(req.PublicKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Public key must be 0x-prefixed hex"})
		return
	}

	id, err := h.svc.Register(c.Request.Context(), req.Email, publicKey)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Challenge handles the challenge request
func (h *AuctionHandlers) Challenge(c *gin.Context) {
	var req struct {
		ID          uint64 `json:"id" binding:"required"`
		ClientNonce string `json:"client_nonce" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	resp, err := h.svc.Challenge(c.Request.Context(), req.ID, req.ClientNonce)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"signed_response": hexutil.Encode(resp.SignedResponse),
		"server_nonce":    resp.ServerNonce,
	})
}

// Authenticate handles the signed challenge and returns a session token
func (h *AuctionHandlers) Authenticate(c *gin.Context) {
	var req struct {
		ID        uint64 `json:"id" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	signature, err := hexutil.Decode(req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature must be 0x-prefixed hex"})
		return
	}

	token, err := h.svc.Authenticate(c.Request.Context(), req.ID, signature)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token.Value,
		"token_type": "Bearer",
		"expires_at": token.ExpiresAt,
	})
}

// ListItems returns all open auctions
func (h *AuctionHandlers) ListItems(c *gin.Context) {
	id, token := credentials(c)

	items, err := h.svc.ListItems(c.Request.Context(), id, token)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, newItemResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"items": resp})
}

// GetItem returns one open auction
func (h *AuctionHandlers) GetItem(c *gin.Context) {
	itemID, ok := itemParam(c)
	if !ok {
		return
	}
	id, token := credentials(c)

	item, err := h.svc.GetItem(c.Request.Context(), id, itemID, token)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newItemResponse(item))
}

// NewAuction opens an auction owned by the caller
func (h *AuctionHandlers) NewAuction(c *gin.Context) {
	var req struct {
		Name         string `json:"name" binding:"required"`
		Description  string `json:"description"`
		ReservePrice uint64 `json:"reserve_price"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	id, token := credentials(c)

	itemID, err := h.svc.NewAuction(c.Request.Context(), id, core.ItemSpec{
		Name:         req.Name,
		Description:  req.Description,
		ReservePrice: req.ReservePrice,
	}, token)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": itemID})
}

// Bid places a bid on an item
func (h *AuctionHandlers) Bid(c *gin.Context) {
	itemID, ok := itemParam(c)
	if !ok {
		return
	}

	var req struct {
		Price uint64 `json:"price"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	id, token := credentials(c)

	accepted, err := h.svc.Bid(c.Request.Context(), id, itemID, req.Price, token)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accepted": accepted})
}

// CloseAuction closes one of the caller's auctions
func (h *AuctionHandlers) CloseAuction(c *gin.Context) {
	itemID, ok := itemParam(c)
	if !ok {
		return
	}
	id, token := credentials(c)

	result, err := h.svc.CloseAuction(c.Request.Context(), id, itemID, token)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResultResponse{
		Sold:         result.Sold,
		WinnerEmail:  result.WinnerEmail,
		WinningPrice: result.WinningPrice,
	})
}

func itemParam(c *gin.Context) (uint64, bool) {
	itemID, err := strconv.ParseUint(c.Param("item"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return 0, false
	}
	return itemID, true
}

// writeError maps service errors to status codes
func (h *AuctionHandlers) writeError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	errorMsg := "Internal error"

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		errorMsg = "Token expired"
	case errors.Is(err, core.ErrTokenInvalid):
		statusCode = http.StatusUnauthorized
		errorMsg = "Invalid token"
	case errors.Is(err, core.ErrAuthFailed):
		statusCode = http.StatusUnauthorized
		errorMsg = "Authentication failed"
	case errors.Is(err, core.ErrNoPendingChallenge):
		statusCode = http.StatusConflict
		errorMsg = "No pending challenge"
	case errors.Is(err, core.ErrUnknownIdentity):
		statusCode = http.StatusNotFound
		errorMsg = "Unknown identity"
	case errors.Is(err, core.ErrNotFound):
		statusCode = http.StatusNotFound
		errorMsg = "Auction item not found"
	case errors.Is(err, core.ErrUnauthorized):
		statusCode = http.StatusForbidden
		errorMsg = "Not the owner of the auction item"
	default:
		h.log.ErrorContext(c.Request.Context(), "request failed", slog.Any("error", err))
	}

	c.JSON(statusCode, gin.H{"error": errorMsg})
}
