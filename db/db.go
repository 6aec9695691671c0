package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"procurement/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Connect opens a pooled connection to Postgres and verifies it.
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Purchase requests

func (s *Storage) GetPurchaseRequest(ctx context.Context, id int64) (*models.PurchaseRequest, error) {
	pr := &models.PurchaseRequest{}
	err := s.db.GetContext(ctx, pr, `SELECT * FROM purchase_requests WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return pr, err
}

func (s *Storage) SetPurchaseRequestArchived(ctx context.Context, id int64, archived bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE purchase_requests SET archived=$1 WHERE id=$2`, archived, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Biddings

func (s *Storage) CreateBidding(ctx context.Context, b *models.Bidding) error {
	query := `
        INSERT INTO biddings (purchase_request_id, posted_by, deadline, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, posted_at`
	b.Status = models.BiddingOpen
	return s.db.QueryRowContext(ctx, query,
		b.PurchaseRequestID, b.PostedBy, b.Deadline, b.Status).
		Scan(&b.ID, &b.PostedAt)
}

func (s *Storage) GetBidding(ctx context.Context, id int64) (*models.Bidding, error) {
	b := &models.Bidding{}
	err := s.db.GetContext(ctx, b, `SELECT * FROM biddings WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// GetBiddingSummaries lists biddings with their bid counts, newest first.
// An empty status lists every non-archived bidding.
func (s *Storage) GetBiddingSummaries(ctx context.Context, status models.BiddingStatus, limit, offset int) ([]models.BiddingSummary, error) {
	query := `
        SELECT b.*, COUNT(sb.id) AS bid_count
        FROM biddings b
        LEFT JOIN supplier_bids sb ON sb.bidding_id = b.id
        WHERE NOT b.archived`
	args := []interface{}{}
	if status != "" {
		query += ` AND b.status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(`
        GROUP BY b.id
        ORDER BY b.posted_at DESC
        LIMIT %d OFFSET %d`, limit, offset)

	summaries := []models.BiddingSummary{}
	err := s.db.SelectContext(ctx, &summaries, query, args...)
	return summaries, err
}

func (s *Storage) UpdateBiddingStatus(ctx context.Context, id int64, status models.BiddingStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE biddings SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Storage) SetBiddingArchived(ctx context.Context, id int64, archived bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE biddings SET archived=$1 WHERE id=$2`, archived, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Bids

func (s *Storage) GetBid(ctx context.Context, id int64) (*models.SupplierBid, error) {
	b := &models.SupplierBid{}
	err := s.db.GetContext(ctx, b, `SELECT * FROM supplier_bids WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// GetBidsForPurchaseRequest returns every bid under the purchase request's
// biddings, newest first.
func (s *Storage) GetBidsForPurchaseRequest(ctx context.Context, prID int64) ([]models.SupplierBid, error) {
	query := `
        SELECT sb.* FROM supplier_bids sb
        JOIN biddings b ON sb.bidding_id = b.id
        WHERE b.purchase_request_id = $1
        ORDER BY sb.submitted_at DESC`
	bids := []models.SupplierBid{}
	err := s.db.SelectContext(ctx, &bids, query, prID)
	return bids, err
}

func (s *Storage) GetBidItems(ctx context.Context, bidID int64) ([]models.BidItem, error) {
	items := []models.BidItem{}
	err := s.db.SelectContext(ctx, &items,
		`SELECT * FROM bid_items WHERE bid_id=$1 ORDER BY id`, bidID)
	return items, err
}

func (s *Storage) GetBidItemsForBids(ctx context.Context, bidIDs []int64) ([]models.BidItem, error) {
	if len(bidIDs) == 0 {
		return []models.BidItem{}, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM bid_items WHERE bid_id IN (?) ORDER BY id`, bidIDs)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	items := []models.BidItem{}
	err = s.db.SelectContext(ctx, &items, query, args...)
	return items, err
}

// DeclineBid is the manual rejection path, outside the award flow.
func (s *Storage) DeclineBid(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE supplier_bids SET status=$1 WHERE id=$2`, models.BidDeclined, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Suppliers

func (s *Storage) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	sup := &models.Supplier{}
	err := s.db.GetContext(ctx, sup, `SELECT * FROM suppliers WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sup, err
}

func (s *Storage) UpdateSupplierStatus(ctx context.Context, id int64, status models.SupplierStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE suppliers SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Storage) GetSupplierRatings(ctx context.Context, supplierID int64) ([]models.SupplierRating, error) {
	ratings := []models.SupplierRating{}
	err := s.db.SelectContext(ctx, &ratings,
		`SELECT * FROM supplier_ratings WHERE supplier_id=$1 ORDER BY rated_at DESC`, supplierID)
	return ratings, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
