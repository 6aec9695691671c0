package handlers

import (
	"context"

	"procurement/models"
)

type StorageInterface interface {
	GetPurchaseRequest(ctx context.Context, id int64) (*models.PurchaseRequest, error)
	SetPurchaseRequestArchived(ctx context.Context, id int64, archived bool) error

	CreateBidding(ctx context.Context, b *models.Bidding) error
	GetBidding(ctx context.Context, id int64) (*models.Bidding, error)
	GetBiddingSummaries(ctx context.Context, status models.BiddingStatus, limit, offset int) ([]models.BiddingSummary, error)
	UpdateBiddingStatus(ctx context.Context, id int64, status models.BiddingStatus) error
	SetBiddingArchived(ctx context.Context, id int64, archived bool) error
	UpdateBidding(ctx context.Context, b *models.Bidding, purpose string, totalAmount int64) error

	CreateBid(ctx context.Context, bid *models.SupplierBid, items []models.BidItem) error
	GetBid(ctx context.Context, id int64) (*models.SupplierBid, error)
	GetBidsForPurchaseRequest(ctx context.Context, prID int64) ([]models.SupplierBid, error)
	GetBidItems(ctx context.Context, bidID int64) ([]models.BidItem, error)
	GetBidItemsForBids(ctx context.Context, bidIDs []int64) ([]models.BidItem, error)
	DeclineBid(ctx context.Context, id int64) error

	AwardBid(ctx context.Context, prID, bidID int64) (*models.SupplierBid, error)
	MarkBidReceived(ctx context.Context, bidID, userID int64) (*models.SupplierBid, error)
	RateSupplier(ctx context.Context, r *models.SupplierRating) (float64, error)

	GetSupplier(ctx context.Context, id int64) (*models.Supplier, error)
	UpdateSupplierStatus(ctx context.Context, id int64, status models.SupplierStatus) error
	GetSupplierRatings(ctx context.Context, supplierID int64) ([]models.SupplierRating, error)
}
