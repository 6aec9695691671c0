package handlers_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"procurement/db"
	"procurement/internal/handlers"
	"procurement/internal/handlers/testutils"
	"procurement/models"
)

// MockStorage implements StorageInterface over in-memory maps with the same
// semantics the SQL layer guarantees, so the award/receive/rate properties
// can be asserted end to end.
type MockStorage struct {
	purchaseRequests map[int64]*models.PurchaseRequest
	biddings         map[int64]*models.Bidding
	bids             map[int64]*models.SupplierBid
	items            map[int64][]models.BidItem
	suppliers        map[int64]*models.Supplier
	ratings          map[int64]*models.SupplierRating

	nextID int64
}

// newMockStorage seeds purchase request 1 with bidding 10 and two bids:
// bid 1 at 5,000.00 and bid 2 at 4,500.00, both from approved supplier 7.
func newMockStorage() *MockStorage {
	m := &MockStorage{
		purchaseRequests: map[int64]*models.PurchaseRequest{},
		biddings:         map[int64]*models.Bidding{},
		bids:             map[int64]*models.SupplierBid{},
		items:            map[int64][]models.BidItem{},
		suppliers:        map[int64]*models.Supplier{},
		ratings:          map[int64]*models.SupplierRating{},
		nextID:           100,
	}

	m.purchaseRequests[1] = &models.PurchaseRequest{
		ID: 1, Department: "Supply Office", Purpose: "Office equipment", TotalAmount: 500000,
	}
	m.biddings[10] = &models.Bidding{
		ID: 10, PurchaseRequestID: 1, PostedBy: 2,
		Deadline: time.Now().Add(24 * time.Hour), Status: models.BiddingOpen,
	}
	m.suppliers[7] = &models.Supplier{
		ID: 7, CompanyName: "Acme Trading", Status: models.SupplierApproved,
	}
	m.bids[1] = &models.SupplierBid{
		ID: 1, BiddingID: 10, SupplierID: 7, Status: models.BidSubmitted, TotalAmount: 500000,
	}
	m.bids[2] = &models.SupplierBid{
		ID: 2, BiddingID: 10, SupplierID: 7, Status: models.BidSubmitted, TotalAmount: 450000,
	}
	m.items[2] = []models.BidItem{
		{ID: 21, BidID: 2, ItemID: 100, UnitPrice: 200000, Quantity: 1, TotalPrice: 200000},
		{ID: 22, BidID: 2, ItemID: 101, UnitPrice: 125000, Quantity: 2, TotalPrice: 250000},
	}
	return m
}

func (m *MockStorage) GetPurchaseRequest(ctx context.Context, id int64) (*models.PurchaseRequest, error) {
	pr, ok := m.purchaseRequests[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return pr, nil
}

func (m *MockStorage) SetPurchaseRequestArchived(ctx context.Context, id int64, archived bool) error {
	pr, ok := m.purchaseRequests[id]
	if !ok {
		return db.ErrNotFound
	}
	pr.Archived = archived
	return nil
}

func (m *MockStorage) CreateBidding(ctx context.Context, b *models.Bidding) error {
	m.nextID++
	b.ID = m.nextID
	b.Status = models.BiddingOpen
	b.PostedAt = time.Now()
	m.biddings[b.ID] = b
	return nil
}

func (m *MockStorage) GetBidding(ctx context.Context, id int64) (*models.Bidding, error) {
	b, ok := m.biddings[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return b, nil
}

func (m *MockStorage) GetBiddingSummaries(ctx context.Context, status models.BiddingStatus, limit, offset int) ([]models.BiddingSummary, error) {
	var out []models.BiddingSummary
	for _, b := range m.biddings {
		if b.Archived || (status != "" && b.Status != status) {
			continue
		}
		count := 0
		for _, bid := range m.bids {
			if bid.BiddingID == b.ID {
				count++
			}
		}
		out = append(out, models.BiddingSummary{Bidding: *b, BidCount: count})
	}
	return out, nil
}

func (m *MockStorage) UpdateBiddingStatus(ctx context.Context, id int64, status models.BiddingStatus) error {
	b, ok := m.biddings[id]
	if !ok {
		return db.ErrNotFound
	}
	b.Status = status
	return nil
}

func (m *MockStorage) SetBiddingArchived(ctx context.Context, id int64, archived bool) error {
	b, ok := m.biddings[id]
	if !ok {
		return db.ErrNotFound
	}
	b.Archived = archived
	return nil
}

func (m *MockStorage) UpdateBidding(ctx context.Context, b *models.Bidding, purpose string, totalAmount int64) error {
	stored, ok := m.biddings[b.ID]
	if !ok {
		return db.ErrNotFound
	}
	*stored = *b
	pr, ok := m.purchaseRequests[b.PurchaseRequestID]
	if !ok {
		return db.ErrNotFound
	}
	pr.Purpose = purpose
	pr.TotalAmount = totalAmount
	return nil
}

func (m *MockStorage) CreateBid(ctx context.Context, bid *models.SupplierBid, items []models.BidItem) error {
	m.nextID++
	bid.ID = m.nextID
	bid.Status = models.BidSubmitted
	bid.SubmittedAt = time.Now()
	m.bids[bid.ID] = bid
	for i := range items {
		m.nextID++
		items[i].ID = m.nextID
		items[i].BidID = bid.ID
	}
	m.items[bid.ID] = items
	return nil
}

func (m *MockStorage) GetBid(ctx context.Context, id int64) (*models.SupplierBid, error) {
	b, ok := m.bids[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *MockStorage) GetBidsForPurchaseRequest(ctx context.Context, prID int64) ([]models.SupplierBid, error) {
	var out []models.SupplierBid
	for _, bid := range m.bids {
		bidding, ok := m.biddings[bid.BiddingID]
		if ok && bidding.PurchaseRequestID == prID {
			out = append(out, *bid)
		}
	}
	return out, nil
}

func (m *MockStorage) GetBidItems(ctx context.Context, bidID int64) ([]models.BidItem, error) {
	return m.items[bidID], nil
}

func (m *MockStorage) GetBidItemsForBids(ctx context.Context, bidIDs []int64) ([]models.BidItem, error) {
	var out []models.BidItem
	for _, id := range bidIDs {
		out = append(out, m.items[id]...)
	}
	return out, nil
}

func (m *MockStorage) DeclineBid(ctx context.Context, id int64) error {
	b, ok := m.bids[id]
	if !ok {
		return db.ErrNotFound
	}
	b.Status = models.BidDeclined
	return nil
}

func (m *MockStorage) AwardBid(ctx context.Context, prID, bidID int64) (*models.SupplierBid, error) {
	var group []*models.Bidding
	for _, b := range m.biddings {
		if b.PurchaseRequestID == prID && !b.Archived {
			group = append(group, b)
		}
	}
	if len(group) == 0 {
		return nil, db.ErrNotFound
	}
	for _, b := range group {
		if b.AwardedAt != nil {
			return nil, db.ErrAlreadyAwarded
		}
	}

	chosen, ok := m.bids[bidID]
	if !ok {
		return nil, db.ErrNotFound
	}
	inGroup := false
	for _, b := range group {
		if chosen.BiddingID == b.ID {
			inGroup = true
		}
	}
	if !inGroup {
		return nil, db.ErrNotFound
	}

	now := time.Now()
	for _, b := range group {
		b.Status = models.BiddingClosed
		b.AwardedAt = &now
	}
	for _, bid := range m.bids {
		for _, b := range group {
			if bid.BiddingID == b.ID && bid.ID != bidID {
				bid.Status = models.BidDeclined
			}
		}
	}
	chosen.Status = models.BidApproved
	copied := *chosen
	return &copied, nil
}

func (m *MockStorage) MarkBidReceived(ctx context.Context, bidID, userID int64) (*models.SupplierBid, error) {
	b, ok := m.bids[bidID]
	if !ok {
		return nil, db.ErrNotFound
	}
	if b.ReceivedAt != nil {
		return nil, db.ErrAlreadyReceived
	}
	if b.Status != models.BidApproved {
		return nil, db.ErrBidNotApproved
	}
	now := time.Now()
	b.ReceivedAt = &now
	b.ReceivedBy = &userID
	copied := *b
	return &copied, nil
}

func (m *MockStorage) RateSupplier(ctx context.Context, r *models.SupplierRating) (float64, error) {
	b, ok := m.bids[r.BidID]
	if !ok {
		return 0, db.ErrNotFound
	}
	if b.ReceivedAt == nil {
		return 0, db.ErrNotReceived
	}
	if _, exists := m.ratings[r.BidID]; exists {
		return 0, db.ErrAlreadyRated
	}

	r.SupplierID = b.SupplierID
	m.nextID++
	r.ID = m.nextID
	r.RatedAt = time.Now()
	m.ratings[r.BidID] = r

	sum, n := 0, 0
	for _, stored := range m.ratings {
		if stored.SupplierID == r.SupplierID {
			sum += stored.Rating
			n++
		}
	}
	avg := float64(sum) / float64(n)
	m.suppliers[r.SupplierID].Rating = avg
	return avg, nil
}

func (m *MockStorage) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return s, nil
}

func (m *MockStorage) UpdateSupplierStatus(ctx context.Context, id int64, status models.SupplierStatus) error {
	s, ok := m.suppliers[id]
	if !ok {
		return db.ErrNotFound
	}
	s.Status = status
	return nil
}

func (m *MockStorage) GetSupplierRatings(ctx context.Context, supplierID int64) ([]models.SupplierRating, error) {
	var out []models.SupplierRating
	for _, r := range m.ratings {
		if r.SupplierID == supplierID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// helpers

func awardBid(t *testing.T, h *handlers.Handler, prID, bidID int64) *httptest.ResponseRecorder {
	t.Helper()
	url := fmt.Sprintf("/api/purchase-requests/%d/award/%d?userId=5", prID, bidID)
	req := httptest.NewRequest(http.MethodPost, url, nil)
	req = testutils.WithChiURLParams(req, map[string]string{
		"prId":  fmt.Sprint(prID),
		"bidId": fmt.Sprint(bidID),
	})
	w := httptest.NewRecorder()
	h.AwardBidHandler(w, req)
	return w
}

func receiveBid(t *testing.T, h *handlers.Handler, bidID int64, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/bids/%d/receive", bidID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutils.WithChiURLParams(req, map[string]string{"bidId": fmt.Sprint(bidID)})
	w := httptest.NewRecorder()
	h.MarkAsReceivedHandler(w, req)
	return w
}

func rateBid(t *testing.T, h *handlers.Handler, bidID int64, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/bids/%d/rate", bidID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutils.WithChiURLParams(req, map[string]string{"bidId": fmt.Sprint(bidID)})
	w := httptest.NewRecorder()
	h.RateSupplierHandler(w, req)
	return w
}

// tests

func TestAwardBidHandler(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	res := awardBid(t, handler, 1, 2)
	require.Equal(t, http.StatusOK, res.Code)

	require.Equal(t, models.BidApproved, mockStore.bids[2].Status)
	require.Equal(t, models.BidDeclined, mockStore.bids[1].Status)
	require.Equal(t, models.BiddingClosed, mockStore.biddings[10].Status)
	require.NotNil(t, mockStore.biddings[10].AwardedAt)
}

func TestAwardBidHandlerAlreadyAwarded(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	require.Equal(t, http.StatusOK, awardBid(t, handler, 1, 2).Code)

	res := awardBid(t, handler, 1, 1)
	require.Equal(t, http.StatusConflict, res.Code)

	// first award untouched
	require.Equal(t, models.BidApproved, mockStore.bids[2].Status)
	require.Equal(t, models.BidDeclined, mockStore.bids[1].Status)
}

func TestAwardBidHandlerUnknownPurchaseRequest(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	res := awardBid(t, handler, 99, 2)
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestAwardBidHandlerMissingUserID(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/purchase-requests/1/award/2", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"prId": "1", "bidId": "2"})
	w := httptest.NewRecorder()

	handler.AwardBidHandler(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkAsReceivedHandler(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)
	require.Equal(t, http.StatusOK, awardBid(t, handler, 1, 2).Code)

	res := receiveBid(t, handler, 2, `{"userId":3,"itemIds":[100,101]}`)
	require.Equal(t, http.StatusOK, res.Code)

	bid := mockStore.bids[2]
	require.NotNil(t, bid.ReceivedAt)
	require.NotNil(t, bid.ReceivedBy)
	require.Equal(t, int64(3), *bid.ReceivedBy)
}

func TestMarkAsReceivedHandlerInvalidItemIDs(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)
	require.Equal(t, http.StatusOK, awardBid(t, handler, 1, 2).Code)

	res := receiveBid(t, handler, 2, `{"userId":3,"itemIds":[999]}`)
	require.Equal(t, http.StatusBadRequest, res.Code)

	body, err := io.ReadAll(res.Result().Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "Invalid item IDs provided")

	// no partial update
	require.Nil(t, mockStore.bids[2].ReceivedAt)
	require.Nil(t, mockStore.bids[2].ReceivedBy)
}

func TestMarkAsReceivedHandlerNotApproved(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	res := receiveBid(t, handler, 2, `{"userId":3,"itemIds":[100]}`)
	require.Equal(t, http.StatusConflict, res.Code)
	require.Contains(t, res.Body.String(), "not approved")
}

func TestMarkAsReceivedHandlerAlreadyReceived(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)
	require.Equal(t, http.StatusOK, awardBid(t, handler, 1, 2).Code)
	require.Equal(t, http.StatusOK, receiveBid(t, handler, 2, `{"userId":3,"itemIds":[100]}`).Code)

	res := receiveBid(t, handler, 2, `{"userId":4,"itemIds":[100]}`)
	require.Equal(t, http.StatusConflict, res.Code)
	require.Contains(t, res.Body.String(), "already received")

	// first receipt stands
	require.Equal(t, int64(3), *mockStore.bids[2].ReceivedBy)
}

func TestRateSupplierHandlerInvalidRating(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	res := rateBid(t, handler, 2, `{"userId":3,"rating":6,"comment":"great"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "Rating must be between 1 and 5")
	require.Empty(t, mockStore.ratings)
}

func TestRateSupplierHandlerNotReceived(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)
	require.Equal(t, http.StatusOK, awardBid(t, handler, 1, 2).Code)

	res := rateBid(t, handler, 2, `{"userId":3,"rating":4}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "has not been received")
	require.Empty(t, mockStore.ratings)
}

func TestRateSupplierHandlerAlreadyRated(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)
	require.Equal(t, http.StatusOK, awardBid(t, handler, 1, 2).Code)
	require.Equal(t, http.StatusOK, receiveBid(t, handler, 2, `{"userId":3,"itemIds":[100]}`).Code)
	require.Equal(t, http.StatusOK, rateBid(t, handler, 2, `{"userId":3,"rating":4,"comment":"on time"}`).Code)

	res := rateBid(t, handler, 2, `{"userId":9,"rating":1,"comment":"late"}`)
	require.Equal(t, http.StatusConflict, res.Code)
	require.Contains(t, res.Body.String(), "already rated")

	// stored rating keeps the first call's values
	stored := mockStore.ratings[2]
	require.Equal(t, 4, stored.Rating)
	require.Equal(t, "on time", stored.Comment)
	require.Equal(t, int64(3), stored.RatedBy)
}

func TestRateSupplierHandlerRecomputesAverage(t *testing.T) {
	mockStore := newMockStorage()
	// second purchase request with its own bidding and bid, same supplier
	mockStore.purchaseRequests[2] = &models.PurchaseRequest{ID: 2, Department: "Motorpool", Purpose: "Vehicle parts"}
	mockStore.biddings[20] = &models.Bidding{
		ID: 20, PurchaseRequestID: 2, PostedBy: 2,
		Deadline: time.Now().Add(24 * time.Hour), Status: models.BiddingOpen,
	}
	mockStore.bids[5] = &models.SupplierBid{ID: 5, BiddingID: 20, SupplierID: 7, Status: models.BidSubmitted, TotalAmount: 300000}
	mockStore.items[5] = []models.BidItem{{ID: 51, BidID: 5, ItemID: 200, UnitPrice: 300000, Quantity: 1, TotalPrice: 300000}}

	handler := handlers.NewHandler(mockStore, nil, nil)

	require.Equal(t, http.StatusOK, awardBid(t, handler, 1, 2).Code)
	require.Equal(t, http.StatusOK, receiveBid(t, handler, 2, `{"userId":3,"itemIds":[100]}`).Code)
	require.Equal(t, http.StatusOK, rateBid(t, handler, 2, `{"userId":3,"rating":5}`).Code)
	require.InDelta(t, 5.0, mockStore.suppliers[7].Rating, 1e-9)

	require.Equal(t, http.StatusOK, awardBid(t, handler, 2, 5).Code)
	require.Equal(t, http.StatusOK, receiveBid(t, handler, 5, `{"userId":3,"itemIds":[200]}`).Code)
	require.Equal(t, http.StatusOK, rateBid(t, handler, 5, `{"userId":3,"rating":4}`).Code)
	require.InDelta(t, 4.5, mockStore.suppliers[7].Rating, 1e-9)
}

func TestListBiddingsHandler(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/biddings?status=open", nil)
	w := httptest.NewRecorder()
	handler.ListBiddingsHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"bidCount":2`)
}

func TestListBiddingsHandlerInvalidStatus(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/biddings?status=bogus", nil)
	w := httptest.NewRecorder()
	handler.ListBiddingsHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Invalid status filter")
}

func TestGetBidsByPrIDHandler(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/purchase-requests/1/bids", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"prId": "1"})
	w := httptest.NewRecorder()
	handler.GetBidsByPrIDHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "purchaseRequest")
	require.Contains(t, w.Body.String(), `"item_id":100`)
}

func TestGetBidsByPrIDHandlerNotFound(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/purchase-requests/42/bids", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"prId": "42"})
	w := httptest.NewRecorder()
	handler.GetBidsByPrIDHandler(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBidHandler(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	reqBody := `{
        "biddingId": 10,
        "supplierId": 7,
        "notes": "delivery within 15 days",
        "items": [
            {"itemId": 100, "unitPrice": 150000, "quantity": 2},
            {"itemId": 101, "unitPrice": 50000, "quantity": 1}
        ]
    }`
	req := httptest.NewRequest(http.MethodPost, "/api/bids/new", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.CreateBidHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	// 2*150000 + 1*50000
	require.Contains(t, w.Body.String(), `"totalAmount":350000`)
	require.Contains(t, w.Body.String(), `"total_price":300000`)
}

func TestCreateBidHandlerBiddingClosed(t *testing.T) {
	mockStore := newMockStorage()
	mockStore.biddings[10].Status = models.BiddingClosed
	handler := handlers.NewHandler(mockStore, nil, nil)

	reqBody := `{"biddingId":10,"supplierId":7,"items":[{"itemId":100,"unitPrice":100,"quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/bids/new", strings.NewReader(reqBody))
	w := httptest.NewRecorder()
	handler.CreateBidHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "not open for bids")
}

func TestCreateBidHandlerSupplierNotApproved(t *testing.T) {
	mockStore := newMockStorage()
	mockStore.suppliers[7].Status = models.SupplierBanned
	handler := handlers.NewHandler(mockStore, nil, nil)

	reqBody := `{"biddingId":10,"supplierId":7,"items":[{"itemId":100,"unitPrice":100,"quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/bids/new", strings.NewReader(reqBody))
	w := httptest.NewRecorder()
	handler.CreateBidHandler(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeclineBidHandler(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/bids/1/decline", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"bidId": "1"})
	w := httptest.NewRecorder()
	handler.DeclineBidHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.BidDeclined, mockStore.bids[1].Status)
}

func TestUpdateBiddingStatusHandler(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/biddings/10/status", strings.NewReader(`{"status":"closed"}`))
	req = testutils.WithChiURLParams(req, map[string]string{"biddingId": "10"})
	w := httptest.NewRecorder()
	handler.UpdateBiddingStatusHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.BiddingClosed, mockStore.biddings[10].Status)
}

func TestUpdateBiddingStatusHandlerRejectsCancelled(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/biddings/10/status", strings.NewReader(`{"status":"cancelled"}`))
	req = testutils.WithChiURLParams(req, map[string]string{"biddingId": "10"})
	w := httptest.NewRecorder()
	handler.UpdateBiddingStatusHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Invalid status value")
	require.Equal(t, models.BiddingOpen, mockStore.biddings[10].Status)
}

func TestEditBiddingHandlerPropagatesPurpose(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	reqBody := `{"purpose":"Updated purpose","totalAmount":750000}`
	req := httptest.NewRequest(http.MethodPatch, "/api/biddings/10/edit", strings.NewReader(reqBody))
	req = testutils.WithChiURLParams(req, map[string]string{"biddingId": "10"})
	w := httptest.NewRecorder()
	handler.EditBiddingHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Updated purpose", mockStore.purchaseRequests[1].Purpose)
	require.Equal(t, int64(750000), mockStore.purchaseRequests[1].TotalAmount)
}

func TestCreateBiddingHandler(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	deadline := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	reqBody := fmt.Sprintf(`{"purchaseRequestId":1,"postedBy":2,"deadline":%q}`, deadline)
	req := httptest.NewRequest(http.MethodPost, "/api/biddings/new", strings.NewReader(reqBody))
	w := httptest.NewRecorder()
	handler.CreateBiddingHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"open"`)
}

func TestCreateBiddingHandlerPastDeadline(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	deadline := time.Now().Add(-time.Hour).Format(time.RFC3339)
	reqBody := fmt.Sprintf(`{"purchaseRequestId":1,"postedBy":2,"deadline":%q}`, deadline)
	req := httptest.NewRequest(http.MethodPost, "/api/biddings/new", strings.NewReader(reqBody))
	w := httptest.NewRecorder()
	handler.CreateBiddingHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Deadline must be in the future")
}

func TestUpdateSupplierStatusHandler(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/suppliers/7/status", strings.NewReader(`{"status":"banned"}`))
	req = testutils.WithChiURLParams(req, map[string]string{"supplierId": "7"})
	w := httptest.NewRecorder()
	handler.UpdateSupplierStatusHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.SupplierBanned, mockStore.suppliers[7].Status)
}

func TestUpdateSupplierStatusHandlerInvalidAction(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/suppliers/7/status", strings.NewReader(`{"status":"suspended"}`))
	req = testutils.WithChiURLParams(req, map[string]string{"supplierId": "7"})
	w := httptest.NewRecorder()
	handler.UpdateSupplierStatusHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Invalid action")
	require.Equal(t, models.SupplierApproved, mockStore.suppliers[7].Status)
}

func TestGetSupplierHandler(t *testing.T) {
	mockStore := newMockStorage()
	handler := handlers.NewHandler(mockStore, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/suppliers/7", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"supplierId": "7"})
	w := httptest.NewRecorder()
	handler.GetSupplierHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Acme Trading")
}

func TestPingHandler(t *testing.T) {
	handler := handlers.NewHandler(newMockStorage(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	w := httptest.NewRecorder()
	handler.PingHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}
