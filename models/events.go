package models

import "time"

// Event types
const (
	EventTypeBidSubmitted  = "BID_SUBMITTED"
	EventTypeBidAwarded    = "BID_AWARDED"
	EventTypeBidReceived   = "BID_RECEIVED"
	EventTypeSupplierRated = "SUPPLIER_RATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// BidSubmittedEvent published when a supplier submits a bid
type BidSubmittedEvent struct {
	BaseEvent
	BidID       int64            `json:"bid_id"`
	BiddingID   int64            `json:"bidding_id"`
	SupplierID  int64            `json:"supplier_id"`
	TotalAmount int64            `json:"total_amount"`
	Items       []BidItemPayload `json:"items"`
}

// BidAwardedEvent published when a bid wins its bidding
type BidAwardedEvent struct {
	BaseEvent
	PurchaseRequestID int64 `json:"purchase_request_id"`
	BidID             int64 `json:"bid_id"`
	SupplierID        int64 `json:"supplier_id"`
	TotalAmount       int64 `json:"total_amount"`
	AwardedBy         int64 `json:"awarded_by"`
}

// BidReceivedEvent published when delivery of an awarded bid is confirmed
type BidReceivedEvent struct {
	BaseEvent
	BidID      int64            `json:"bid_id"`
	SupplierID int64            `json:"supplier_id"`
	ReceivedBy int64            `json:"received_by"`
	Items      []BidItemPayload `json:"items"`
}

// SupplierRatedEvent published after a rating is stored and the supplier
// average has been recomputed
type SupplierRatedEvent struct {
	BaseEvent
	SupplierID int64   `json:"supplier_id"`
	BidID      int64   `json:"bid_id"`
	Rating     int     `json:"rating"`
	NewAverage float64 `json:"new_average"`
	RatedBy    int64   `json:"rated_by"`
}
