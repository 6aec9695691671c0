package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"procurement/db"
	"procurement/internal/util"
	"procurement/models"
)

// ListBiddingsHandler handles GET /api/biddings with an optional status
// filter and pagination.
func (h *Handler) ListBiddingsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	status := models.BiddingStatus(r.URL.Query().Get("status"))
	if status != "" && !models.ValidBiddingStatus(status) {
		http.Error(w, "Invalid status filter", http.StatusBadRequest)
		return
	}

	summaries, err := h.Store.GetBiddingSummaries(r.Context(), status, params.Limit, params.Offset)
	if err != nil {
		http.Error(w, "Failed to get biddings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}

// CreateBiddingHandler handles POST /api/biddings/new
func (h *Handler) CreateBiddingHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		PurchaseRequestID int64     `json:"purchaseRequestId"`
		PostedBy          int64     `json:"postedBy"`
		Deadline          time.Time `json:"deadline"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if input.PurchaseRequestID <= 0 {
		http.Error(w, "purchaseRequestId must be positive", http.StatusBadRequest)
		return
	}
	if input.PostedBy <= 0 {
		http.Error(w, "postedBy must be positive", http.StatusBadRequest)
		return
	}
	if !input.Deadline.After(time.Now()) {
		http.Error(w, "Deadline must be in the future", http.StatusBadRequest)
		return
	}

	if _, err := h.Store.GetPurchaseRequest(r.Context(), input.PurchaseRequestID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Purchase request not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load purchase request", http.StatusInternalServerError)
		return
	}

	bidding := &models.Bidding{
		PurchaseRequestID: input.PurchaseRequestID,
		PostedBy:          input.PostedBy,
		Deadline:          input.Deadline,
	}
	if err := h.Store.CreateBidding(r.Context(), bidding); err != nil {
		http.Error(w, "Failed to create bidding", http.StatusInternalServerError)
		return
	}

	util.BiddingsCreatedTotal.Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(bidding)
}

// UpdateBiddingStatusHandler handles PUT /api/biddings/{biddingId}/status.
// Only open, closed and awarded may be set directly.
func (h *Handler) UpdateBiddingStatusHandler(w http.ResponseWriter, r *http.Request) {
	biddingID, ok := parseIDParam(r, "biddingId")
	if !ok {
		http.Error(w, "Invalid biddingId", http.StatusBadRequest)
		return
	}

	var input struct {
		Status models.BiddingStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !models.SettableBiddingStatus(input.Status) {
		http.Error(w, "Invalid status value", http.StatusBadRequest)
		return
	}

	if err := h.Store.UpdateBiddingStatus(r.Context(), biddingID, input.Status); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Bidding not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update bidding status", http.StatusInternalServerError)
		return
	}

	bidding, err := h.Store.GetBidding(r.Context(), biddingID)
	if err != nil {
		http.Error(w, "Failed to load bidding", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bidding)
}

// EditBiddingHandler handles PATCH /api/biddings/{biddingId}/edit. Purpose
// and total amount edits are propagated onto the parent purchase request
// inside one transaction.
func (h *Handler) EditBiddingHandler(w http.ResponseWriter, r *http.Request) {
	biddingID, ok := parseIDParam(r, "biddingId")
	if !ok {
		http.Error(w, "Invalid biddingId", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Cannot read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		Deadline    *time.Time            `json:"deadline"`
		Status      *models.BiddingStatus `json:"status"`
		Purpose     *string               `json:"purpose"`
		TotalAmount *int64                `json:"totalAmount"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	bidding, err := h.Store.GetBidding(r.Context(), biddingID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Bidding not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load bidding", http.StatusInternalServerError)
		return
	}

	pr, err := h.Store.GetPurchaseRequest(r.Context(), bidding.PurchaseRequestID)
	if err != nil {
		http.Error(w, "Failed to load purchase request", http.StatusInternalServerError)
		return
	}

	if input.Deadline != nil {
		bidding.Deadline = *input.Deadline
	}
	if input.Status != nil {
		if !models.SettableBiddingStatus(*input.Status) {
			http.Error(w, "Invalid status value", http.StatusBadRequest)
			return
		}
		bidding.Status = *input.Status
	}

	purpose := pr.Purpose
	if input.Purpose != nil {
		purpose = *input.Purpose
	}
	totalAmount := pr.TotalAmount
	if input.TotalAmount != nil {
		if *input.TotalAmount < 0 {
			http.Error(w, "totalAmount must not be negative", http.StatusBadRequest)
			return
		}
		totalAmount = *input.TotalAmount
	}

	if err := h.Store.UpdateBidding(r.Context(), bidding, purpose, totalAmount); err != nil {
		http.Error(w, "Failed to update bidding", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bidding)
}

// ArchiveBiddingHandler handles PUT /api/biddings/{biddingId}/archive
func (h *Handler) ArchiveBiddingHandler(w http.ResponseWriter, r *http.Request) {
	h.setBiddingArchived(w, r, true)
}

// UnarchiveBiddingHandler handles PUT /api/biddings/{biddingId}/unarchive
func (h *Handler) UnarchiveBiddingHandler(w http.ResponseWriter, r *http.Request) {
	h.setBiddingArchived(w, r, false)
}

func (h *Handler) setBiddingArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	biddingID, ok := parseIDParam(r, "biddingId")
	if !ok {
		http.Error(w, "Invalid biddingId", http.StatusBadRequest)
		return
	}

	if err := h.Store.SetBiddingArchived(r.Context(), biddingID, archived); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Bidding not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update bidding", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"id": biddingID, "archived": archived})
}

// ArchivePurchaseRequestHandler handles PUT /api/purchase-requests/{prId}/archive
func (h *Handler) ArchivePurchaseRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.setPurchaseRequestArchived(w, r, true)
}

// UnarchivePurchaseRequestHandler handles PUT /api/purchase-requests/{prId}/unarchive
func (h *Handler) UnarchivePurchaseRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.setPurchaseRequestArchived(w, r, false)
}

func (h *Handler) setPurchaseRequestArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	prID, ok := parseIDParam(r, "prId")
	if !ok {
		http.Error(w, "Invalid purchase request ID", http.StatusBadRequest)
		return
	}

	if err := h.Store.SetPurchaseRequestArchived(r.Context(), prID, archived); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Purchase request not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update purchase request", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"id": prID, "archived": archived})
}
