package models

import "time"

// BiddingStatus is the lifecycle state of a bidding.
type BiddingStatus string

const (
	BiddingOpen      BiddingStatus = "open"
	BiddingClosed    BiddingStatus = "closed"
	BiddingAwarded   BiddingStatus = "awarded"
	BiddingCancelled BiddingStatus = "cancelled"
)

func ValidBiddingStatus(s BiddingStatus) bool {
	switch s {
	case BiddingOpen, BiddingClosed, BiddingAwarded, BiddingCancelled:
		return true
	default:
		return false
	}
}

// SettableBiddingStatus reports whether s may be set through the
// administrative status update. Cancelled is terminal and excluded from
// the whitelist.
func SettableBiddingStatus(s BiddingStatus) bool {
	switch s {
	case BiddingOpen, BiddingClosed, BiddingAwarded:
		return true
	default:
		return false
	}
}

// BidStatus is the state of a single supplier bid.
type BidStatus string

const (
	BidSubmitted BidStatus = "submitted"
	BidApproved  BidStatus = "approved"
	BidDeclined  BidStatus = "declined"
)

func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidSubmitted, BidApproved, BidDeclined:
		return true
	default:
		return false
	}
}

// SupplierStatus is the approval state of a supplier. A supplier is exactly
// one of pending, approved or banned.
type SupplierStatus string

const (
	SupplierPending  SupplierStatus = "pending"
	SupplierApproved SupplierStatus = "approved"
	SupplierBanned   SupplierStatus = "banned"
)

func ValidSupplierStatus(s SupplierStatus) bool {
	switch s {
	case SupplierPending, SupplierApproved, SupplierBanned:
		return true
	default:
		return false
	}
}

// PurchaseRequest originates in the requisition flow; this service only
// reads it and propagates purpose/total edits from its bidding.
// Monetary amounts are stored in centavos.
type PurchaseRequest struct {
	ID          int64     `db:"id" json:"id"`
	Department  string    `db:"department" json:"department"`
	Purpose     string    `db:"purpose" json:"purpose"`
	TotalAmount int64     `db:"total_amount" json:"totalAmount"`
	Archived    bool      `db:"archived" json:"archived"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Bidding solicits supplier bids against one purchase request.
type Bidding struct {
	ID                int64         `db:"id" json:"id"`
	PurchaseRequestID int64         `db:"purchase_request_id" json:"purchaseRequestId"`
	PostedBy          int64         `db:"posted_by" json:"postedBy"`
	PostedAt          time.Time     `db:"posted_at" json:"postedAt"`
	Deadline          time.Time     `db:"deadline" json:"deadline"`
	Status            BiddingStatus `db:"status" json:"status"`
	AwardedAt         *time.Time    `db:"awarded_at" json:"awardedAt,omitempty"`
	Archived          bool          `db:"archived" json:"archived"`
}

// BiddingSummary is a bidding joined with its bid count for list views.
type BiddingSummary struct {
	Bidding
	BidCount int `db:"bid_count" json:"bidCount"`
}

// SupplierBid is a supplier's priced response to a bidding. ReceivedAt and
// ReceivedBy are set once, after award, when the goods physically arrive.
type SupplierBid struct {
	ID          int64      `db:"id" json:"id"`
	BiddingID   int64      `db:"bidding_id" json:"biddingId"`
	SupplierID  int64      `db:"supplier_id" json:"supplierId"`
	SubmittedAt time.Time  `db:"submitted_at" json:"submittedAt"`
	Status      BidStatus  `db:"status" json:"status"`
	TotalAmount int64      `db:"total_amount" json:"totalAmount"`
	ReceivedAt  *time.Time `db:"received_at" json:"receivedAt,omitempty"`
	ReceivedBy  *int64     `db:"received_by" json:"receivedBy,omitempty"`
	Notes       string     `db:"notes" json:"notes"`
}

// BidItem is a priced line of a bid referencing a purchase request line item.
// TotalPrice must equal UnitPrice * Quantity at write time.
type BidItem struct {
	ID         int64 `db:"id" json:"id"`
	BidID      int64 `db:"bid_id" json:"bidId"`
	ItemID     int64 `db:"item_id" json:"itemId"`
	UnitPrice  int64 `db:"unit_price" json:"unitPrice"`
	Quantity   int   `db:"quantity" json:"quantity"`
	TotalPrice int64 `db:"total_price" json:"totalPrice"`
}

// Supplier carries the running average rating, recomputed on every new
// rating inside the same transaction.
type Supplier struct {
	ID            int64          `db:"id" json:"id"`
	CompanyName   string         `db:"company_name" json:"companyName"`
	ContactPerson string         `db:"contact_person" json:"contactPerson"`
	Email         string         `db:"email" json:"email"`
	Phone         string         `db:"phone" json:"phone"`
	Address       string         `db:"address" json:"address"`
	Status        SupplierStatus `db:"status" json:"status"`
	Rating        float64        `db:"rating" json:"rating"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
}

// SupplierRating is a one-time 1-5 quality score tied to a received bid.
type SupplierRating struct {
	ID         int64     `db:"id" json:"id"`
	SupplierID int64     `db:"supplier_id" json:"supplierId"`
	BidID      int64     `db:"bid_id" json:"bidId"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	RatedBy    int64     `db:"rated_by" json:"ratedBy"`
	RatedAt    time.Time `db:"rated_at" json:"ratedAt"`
}
