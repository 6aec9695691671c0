package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"procurement/db"
	"procurement/models"
)

// GetSupplierHandler handles GET /api/suppliers/{supplierId}. The profile
// is served read-through from the cache; ratings always come from the
// store.
func (h *Handler) GetSupplierHandler(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := parseIDParam(r, "supplierId")
	if !ok {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	var supplier *models.Supplier
	if h.Cache != nil {
		if cached, hit := h.Cache.GetSupplier(r.Context(), supplierID); hit {
			supplier = cached
		}
	}
	if supplier == nil {
		var err error
		supplier, err = h.Store.GetSupplier(r.Context(), supplierID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				http.Error(w, "Supplier not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to load supplier", http.StatusInternalServerError)
			return
		}
		if h.Cache != nil {
			h.Cache.SetSupplier(r.Context(), supplier)
		}
	}

	ratings, err := h.Store.GetSupplierRatings(r.Context(), supplierID)
	if err != nil {
		http.Error(w, "Failed to load supplier ratings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"supplier": supplier,
		"ratings":  ratings,
	})
}

// UpdateSupplierStatusHandler handles PUT /api/suppliers/{supplierId}/status.
// The status must be one of pending, approved or banned.
func (h *Handler) UpdateSupplierStatusHandler(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := parseIDParam(r, "supplierId")
	if !ok {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	var input struct {
		Status models.SupplierStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !models.ValidSupplierStatus(input.Status) {
		http.Error(w, "Invalid action", http.StatusBadRequest)
		return
	}

	if err := h.Store.UpdateSupplierStatus(r.Context(), supplierID, input.Status); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Supplier not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update supplier status", http.StatusInternalServerError)
		return
	}

	if h.Cache != nil {
		h.Cache.InvalidateSupplier(r.Context(), supplierID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":     supplierID,
		"status": input.Status,
	})
}
