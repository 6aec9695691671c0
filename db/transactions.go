package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"procurement/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// CreateBid inserts a bid together with its line items in one transaction.
// Line totals and the bid total are expected to be consistent already; the
// caller computes them.
func (s *Storage) CreateBid(ctx context.Context, bid *models.SupplierBid, items []models.BidItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	bid.Status = models.BidSubmitted
	query := `
        INSERT INTO supplier_bids (bidding_id, supplier_id, status, total_amount, notes)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, submitted_at`
	err = tx.QueryRowContext(ctx, query,
		bid.BiddingID, bid.SupplierID, bid.Status, bid.TotalAmount, bid.Notes).
		Scan(&bid.ID, &bid.SubmittedAt)
	if err != nil {
		return err
	}

	for i := range items {
		items[i].BidID = bid.ID
		err = tx.QueryRowContext(ctx, `
            INSERT INTO bid_items (bid_id, item_id, unit_price, quantity, total_price)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id`,
			items[i].BidID, items[i].ItemID, items[i].UnitPrice,
			items[i].Quantity, items[i].TotalPrice).
			Scan(&items[i].ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// AwardBid closes every non-archived bidding of the purchase request,
// approves the chosen bid and declines its siblings, all in one
// transaction. The bidding rows are locked first so two concurrent awards
// for the same purchase request serialize; the loser sees ErrAlreadyAwarded.
func (s *Storage) AwardBid(ctx context.Context, prID, bidID int64) (*models.SupplierBid, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var biddingIDs []int64
	err = tx.SelectContext(ctx, &biddingIDs, `
        SELECT id FROM biddings
        WHERE purchase_request_id = $1 AND NOT archived
        ORDER BY id
        FOR UPDATE`, prID)
	if err != nil {
		return nil, err
	}
	if len(biddingIDs) == 0 {
		return nil, ErrNotFound
	}

	var awarded int
	err = tx.GetContext(ctx, &awarded, `
        SELECT COUNT(1) FROM biddings
        WHERE purchase_request_id = $1 AND awarded_at IS NOT NULL`, prID)
	if err != nil {
		return nil, err
	}
	if awarded > 0 {
		return nil, ErrAlreadyAwarded
	}

	bid := &models.SupplierBid{}
	query, args, err := sqlx.In(
		`SELECT * FROM supplier_bids WHERE id = ? AND bidding_id IN (?) FOR UPDATE`,
		bidID, biddingIDs)
	if err != nil {
		return nil, err
	}
	err = tx.GetContext(ctx, bid, tx.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
        UPDATE biddings SET status=$1, awarded_at=$2
        WHERE purchase_request_id = $3 AND NOT archived`,
		models.BiddingClosed, now, prID)
	if err != nil {
		return nil, fmt.Errorf("failed to close biddings: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE supplier_bids SET status=$1 WHERE id=$2`,
		models.BidApproved, bidID)
	if err != nil {
		return nil, fmt.Errorf("failed to approve bid: %w", err)
	}

	query, args, err = sqlx.In(
		`UPDATE supplier_bids SET status = ? WHERE bidding_id IN (?) AND id <> ?`,
		models.BidDeclined, biddingIDs, bidID)
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to decline sibling bids: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	bid.Status = models.BidApproved
	return bid, nil
}

// MarkBidReceived stamps receipt on an approved, not-yet-received bid. The
// conditional update doubles as the concurrency guard: a second call finds
// zero matching rows and is told why.
func (s *Storage) MarkBidReceived(ctx context.Context, bidID, userID int64) (*models.SupplierBid, error) {
	bid := &models.SupplierBid{}
	err := s.db.GetContext(ctx, bid, `
        UPDATE supplier_bids SET received_at=NOW(), received_by=$2
        WHERE id=$1 AND status=$3 AND received_at IS NULL
        RETURNING *`, bidID, userID, models.BidApproved)
	if err == nil {
		return bid, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Zero rows: tell the caller which precondition failed.
	current, getErr := s.GetBid(ctx, bidID)
	if getErr != nil {
		return nil, getErr
	}
	if current.ReceivedAt != nil {
		return nil, ErrAlreadyReceived
	}
	return nil, ErrBidNotApproved
}

// RateSupplier inserts the rating and recomputes the supplier's running
// average in the same transaction. The unique index on bid_id makes
// double-rating fail fast under contention; the bid row lock keeps the
// receipt check stable.
func (s *Storage) RateSupplier(ctx context.Context, r *models.SupplierRating) (float64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var bid struct {
		SupplierID int64      `db:"supplier_id"`
		ReceivedAt *time.Time `db:"received_at"`
	}
	err = tx.GetContext(ctx, &bid,
		`SELECT supplier_id, received_at FROM supplier_bids WHERE id=$1 FOR UPDATE`, r.BidID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if bid.ReceivedAt == nil {
		return 0, ErrNotReceived
	}

	r.SupplierID = bid.SupplierID
	err = tx.QueryRowContext(ctx, `
        INSERT INTO supplier_ratings (supplier_id, bid_id, rating, comment, rated_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, rated_at`,
		r.SupplierID, r.BidID, r.Rating, r.Comment, r.RatedBy).
		Scan(&r.ID, &r.RatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return 0, ErrAlreadyRated
		}
		return 0, err
	}

	var avg float64
	err = tx.GetContext(ctx, &avg, `
        UPDATE suppliers
        SET rating = (SELECT AVG(rating)::float8 FROM supplier_ratings WHERE supplier_id=$1)
        WHERE id=$1
        RETURNING rating`, r.SupplierID)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute supplier rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return avg, nil
}

// UpdateBidding edits the mutable bidding fields and propagates purpose and
// total back onto the parent purchase request, in one transaction.
func (s *Storage) UpdateBidding(ctx context.Context, b *models.Bidding, purpose string, totalAmount int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE biddings SET deadline=$1, status=$2 WHERE id=$3`,
		b.Deadline, b.Status, b.ID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE purchase_requests SET purpose=$1, total_amount=$2 WHERE id=$3`,
		purpose, totalAmount, b.PurchaseRequestID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}

	return tx.Commit()
}
