package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"procurement/db"
	"procurement/internal/broker"
	"procurement/internal/util"
	"procurement/models"
)

type bidWithItems struct {
	models.SupplierBid
	Items []models.BidItemPayload `json:"items"`
}

// GetBidsByPrIDHandler handles GET /api/purchase-requests/{prId}/bids. It
// returns the purchase request together with every bid under its biddings,
// each carrying its parsed item list.
func (h *Handler) GetBidsByPrIDHandler(w http.ResponseWriter, r *http.Request) {
	prID, ok := parseIDParam(r, "prId")
	if !ok {
		http.Error(w, "Invalid purchase request ID", http.StatusBadRequest)
		return
	}

	pr, err := h.Store.GetPurchaseRequest(r.Context(), prID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Purchase request not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load purchase request", http.StatusInternalServerError)
		return
	}

	bids, err := h.Store.GetBidsForPurchaseRequest(r.Context(), prID)
	if err != nil {
		http.Error(w, "Failed to get bids", http.StatusInternalServerError)
		return
	}

	bidIDs := make([]int64, len(bids))
	for i, b := range bids {
		bidIDs[i] = b.ID
	}
	items, err := h.Store.GetBidItemsForBids(r.Context(), bidIDs)
	if err != nil {
		http.Error(w, "Failed to get bid items", http.StatusInternalServerError)
		return
	}

	itemsByBid := make(map[int64][]models.BidItem)
	for _, it := range items {
		itemsByBid[it.BidID] = append(itemsByBid[it.BidID], it)
	}

	out := make([]bidWithItems, 0, len(bids))
	for _, b := range bids {
		out = append(out, bidWithItems{
			SupplierBid: b,
			Items:       models.ItemPayloads(itemsByBid[b.ID]),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"purchaseRequest": pr,
		"bids":            out,
	})
}

// CreateBidHandler handles POST /api/bids/new. Line totals and the bid
// total are computed server-side so the stored invariant holds.
func (h *Handler) CreateBidHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		BiddingID  int64  `json:"biddingId"`
		SupplierID int64  `json:"supplierId"`
		Notes      string `json:"notes"`
		Items      []struct {
			ItemID    int64 `json:"itemId"`
			UnitPrice int64 `json:"unitPrice"`
			Quantity  int   `json:"quantity"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if input.BiddingID <= 0 {
		http.Error(w, "biddingId must be positive", http.StatusBadRequest)
		return
	}
	if input.SupplierID <= 0 {
		http.Error(w, "supplierId must be positive", http.StatusBadRequest)
		return
	}
	if len(input.Items) == 0 {
		http.Error(w, "At least one line item is required", http.StatusBadRequest)
		return
	}
	for _, it := range input.Items {
		if it.ItemID <= 0 || it.UnitPrice < 0 || it.Quantity <= 0 {
			http.Error(w, "Invalid line item", http.StatusBadRequest)
			return
		}
	}

	bidding, err := h.Store.GetBidding(r.Context(), input.BiddingID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Bidding not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load bidding", http.StatusInternalServerError)
		return
	}
	if bidding.Status != models.BiddingOpen || bidding.Archived {
		http.Error(w, "Bidding is not open for bids", http.StatusBadRequest)
		return
	}
	if time.Now().After(bidding.Deadline) {
		http.Error(w, "Bidding deadline has passed", http.StatusBadRequest)
		return
	}

	supplier, err := h.Store.GetSupplier(r.Context(), input.SupplierID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Supplier not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load supplier", http.StatusInternalServerError)
		return
	}
	if supplier.Status != models.SupplierApproved {
		http.Error(w, "Supplier is not approved", http.StatusForbidden)
		return
	}

	items := make([]models.BidItem, 0, len(input.Items))
	var totalAmount int64
	for _, it := range input.Items {
		lineTotal := it.UnitPrice * int64(it.Quantity)
		totalAmount += lineTotal
		items = append(items, models.BidItem{
			ItemID:     it.ItemID,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
			TotalPrice: lineTotal,
		})
	}

	bid := &models.SupplierBid{
		BiddingID:   input.BiddingID,
		SupplierID:  input.SupplierID,
		TotalAmount: totalAmount,
		Notes:       input.Notes,
	}
	if err := h.Store.CreateBid(r.Context(), bid, items); err != nil {
		http.Error(w, "Failed to create bid", http.StatusInternalServerError)
		return
	}

	util.BidsSubmittedTotal.Inc()
	h.publishBidSubmitted(r, bid, items)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(bidWithItems{
		SupplierBid: *bid,
		Items:       models.ItemPayloads(items),
	})
}

// AwardBidHandler handles POST /api/purchase-requests/{prId}/award/{bidId}.
// The store runs the whole award as one transaction; a partial award is
// never observable.
func (h *Handler) AwardBidHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := util.StartSpan(r.Context(), "Handler.AwardBid")
	defer span.End()

	prID, ok := parseIDParam(r, "prId")
	if !ok {
		http.Error(w, "Invalid purchase request ID", http.StatusBadRequest)
		return
	}
	bidID, ok := parseIDParam(r, "bidId")
	if !ok {
		http.Error(w, "Invalid bid ID", http.StatusBadRequest)
		return
	}
	userID, err := parseUserIDQuery(r)
	if err != nil {
		http.Error(w, "Missing userId parameter", http.StatusBadRequest)
		return
	}

	start := time.Now()
	bid, err := h.Store.AwardBid(ctx, prID, bidID)
	util.AwardTxLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			util.AwardFailedTotal.WithLabelValues("not_found").Inc()
			http.Error(w, "Bid not found for this purchase request", http.StatusNotFound)
		case errors.Is(err, db.ErrAlreadyAwarded):
			util.AwardFailedTotal.WithLabelValues("already_awarded").Inc()
			http.Error(w, "Bidding already awarded", http.StatusConflict)
		default:
			util.AwardFailedTotal.WithLabelValues("store_error").Inc()
			http.Error(w, "Failed to award bid", http.StatusInternalServerError)
		}
		return
	}

	util.BidsAwardedTotal.Inc()
	h.publishBidAwarded(r, prID, userID, bid)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bid)
}

// DeclineBidHandler handles PUT /api/bids/{bidId}/decline, the manual
// rejection path outside the award flow.
func (h *Handler) DeclineBidHandler(w http.ResponseWriter, r *http.Request) {
	bidID, ok := parseIDParam(r, "bidId")
	if !ok {
		http.Error(w, "Invalid bid ID", http.StatusBadRequest)
		return
	}

	if err := h.Store.DeclineBid(r.Context(), bidID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Bid not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to decline bid", http.StatusInternalServerError)
		return
	}

	util.BidsDeclinedTotal.Inc()

	bid, err := h.Store.GetBid(r.Context(), bidID)
	if err != nil {
		http.Error(w, "Failed to load bid", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bid)
}

// MarkAsReceivedHandler handles POST /api/bids/{bidId}/receive. Every item
// id in the request must belong to the bid, and receipt is strictly
// one-time.
func (h *Handler) MarkAsReceivedHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := util.StartSpan(r.Context(), "Handler.MarkAsReceived")
	defer span.End()

	bidID, ok := parseIDParam(r, "bidId")
	if !ok {
		http.Error(w, "Invalid bid ID", http.StatusBadRequest)
		return
	}

	var input struct {
		UserID  int64   `json:"userId"`
		ItemIDs []int64 `json:"itemIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if input.UserID <= 0 {
		http.Error(w, "userId must be positive", http.StatusBadRequest)
		return
	}
	if len(input.ItemIDs) == 0 {
		http.Error(w, "itemIds is required", http.StatusBadRequest)
		return
	}

	bid, err := h.Store.GetBid(ctx, bidID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Bid not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load bid", http.StatusInternalServerError)
		return
	}
	if bid.Status != models.BidApproved {
		http.Error(w, "Bid is not approved", http.StatusConflict)
		return
	}
	if bid.ReceivedAt != nil {
		http.Error(w, "Bid already received", http.StatusConflict)
		return
	}

	items, err := h.Store.GetBidItems(ctx, bidID)
	if err != nil {
		http.Error(w, "Failed to load bid items", http.StatusInternalServerError)
		return
	}
	known := make(map[int64]bool, len(items))
	for _, it := range items {
		known[it.ItemID] = true
	}
	for _, id := range input.ItemIDs {
		if !known[id] {
			http.Error(w, "Invalid item IDs provided", http.StatusBadRequest)
			return
		}
	}

	updated, err := h.Store.MarkBidReceived(ctx, bidID, input.UserID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			http.Error(w, "Bid not found", http.StatusNotFound)
		case errors.Is(err, db.ErrAlreadyReceived):
			http.Error(w, "Bid already received", http.StatusConflict)
		case errors.Is(err, db.ErrBidNotApproved):
			http.Error(w, "Bid is not approved", http.StatusConflict)
		default:
			http.Error(w, "Failed to mark bid as received", http.StatusInternalServerError)
		}
		return
	}

	util.BidsReceivedTotal.Inc()
	h.publishBidReceived(r, updated, items)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// RateSupplierHandler handles POST /api/bids/{bidId}/rate. The rating and
// the supplier average recompute commit together; any failure leaves
// neither behind.
func (h *Handler) RateSupplierHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := util.StartSpan(r.Context(), "Handler.RateSupplier")
	defer span.End()

	bidID, ok := parseIDParam(r, "bidId")
	if !ok {
		http.Error(w, "Invalid bid ID", http.StatusBadRequest)
		return
	}

	var input struct {
		UserID  int64  `json:"userId"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if input.UserID <= 0 {
		http.Error(w, "userId must be positive", http.StatusBadRequest)
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		http.Error(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	rating := &models.SupplierRating{
		BidID:   bidID,
		Rating:  input.Rating,
		Comment: input.Comment,
		RatedBy: input.UserID,
	}

	avg, err := h.Store.RateSupplier(ctx, rating)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			http.Error(w, "Bid not found", http.StatusNotFound)
		case errors.Is(err, db.ErrNotReceived):
			http.Error(w, "Bid has not been received yet", http.StatusBadRequest)
		case errors.Is(err, db.ErrAlreadyRated):
			http.Error(w, "Bid already rated", http.StatusConflict)
		default:
			http.Error(w, "Failed to rate supplier", http.StatusInternalServerError)
		}
		return
	}

	util.SupplierRatingsTotal.Inc()
	if h.Cache != nil {
		h.Cache.InvalidateSupplier(ctx, rating.SupplierID)
	}
	h.publishSupplierRated(r, rating, avg)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"rating":         rating,
		"supplierRating": avg,
	})
}

// Event publishing is best effort: the transaction is already durable, so a
// broker failure is logged and the request still succeeds.

func (h *Handler) publishBidSubmitted(r *http.Request, bid *models.SupplierBid, items []models.BidItem) {
	if h.Events == nil {
		return
	}
	event := &models.BidSubmittedEvent{
		BaseEvent:   broker.NewBaseEvent(models.EventTypeBidSubmitted),
		BidID:       bid.ID,
		BiddingID:   bid.BiddingID,
		SupplierID:  bid.SupplierID,
		TotalAmount: bid.TotalAmount,
		Items:       models.ItemPayloads(items),
	}
	if err := h.Events.PublishBidSubmitted(r.Context(), event); err != nil {
		h.logger.Error("Failed to publish BidSubmitted event", zap.Int64("bid_id", bid.ID), zap.Error(err))
	}
}

func (h *Handler) publishBidAwarded(r *http.Request, prID, userID int64, bid *models.SupplierBid) {
	if h.Events == nil {
		return
	}
	event := &models.BidAwardedEvent{
		BaseEvent:         broker.NewBaseEvent(models.EventTypeBidAwarded),
		PurchaseRequestID: prID,
		BidID:             bid.ID,
		SupplierID:        bid.SupplierID,
		TotalAmount:       bid.TotalAmount,
		AwardedBy:         userID,
	}
	if err := h.Events.PublishBidAwarded(r.Context(), event); err != nil {
		h.logger.Error("Failed to publish BidAwarded event", zap.Int64("bid_id", bid.ID), zap.Error(err))
	}
}

func (h *Handler) publishBidReceived(r *http.Request, bid *models.SupplierBid, items []models.BidItem) {
	if h.Events == nil {
		return
	}
	var receivedBy int64
	if bid.ReceivedBy != nil {
		receivedBy = *bid.ReceivedBy
	}
	event := &models.BidReceivedEvent{
		BaseEvent:  broker.NewBaseEvent(models.EventTypeBidReceived),
		BidID:      bid.ID,
		SupplierID: bid.SupplierID,
		ReceivedBy: receivedBy,
		Items:      models.ItemPayloads(items),
	}
	if err := h.Events.PublishBidReceived(r.Context(), event); err != nil {
		h.logger.Error("Failed to publish BidReceived event", zap.Int64("bid_id", bid.ID), zap.Error(err))
	}
}

func (h *Handler) publishSupplierRated(r *http.Request, rating *models.SupplierRating, avg float64) {
	if h.Events == nil {
		return
	}
	event := &models.SupplierRatedEvent{
		BaseEvent:  broker.NewBaseEvent(models.EventTypeSupplierRated),
		SupplierID: rating.SupplierID,
		BidID:      rating.BidID,
		Rating:     rating.Rating,
		NewAverage: avg,
		RatedBy:    rating.RatedBy,
	}
	if err := h.Events.PublishSupplierRated(r.Context(), event); err != nil {
		h.logger.Error("Failed to publish SupplierRated event", zap.Int64("bid_id", rating.BidID), zap.Error(err))
	}
}
