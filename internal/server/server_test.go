package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/money"
	"github.com/tabsplit-dev/tabsplit/internal/split"
	"github.com/tabsplit-dev/tabsplit/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memStore struct {
	receipts    map[string]model.Receipt
	settlements map[string]model.SettlementBreakdown
}

func newMemStore() *memStore {
	return &memStore{
		receipts:    map[string]model.Receipt{},
		settlements: map[string]model.SettlementBreakdown{},
	}
}

func (s *memStore) SaveReceipt(_ context.Context, r *model.Receipt) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.receipts[r.ID] = *r
	return nil
}

func (s *memStore) GetReceipt(_ context.Context, id string) (*model.Receipt, error) {
	r, ok := s.receipts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &r, nil
}

func (s *memStore) ListReceipts(_ context.Context) ([]storage.ReceiptSummary, error) {
	var out []storage.ReceiptSummary
	for id, r := range s.receipts {
		out = append(out, storage.ReceiptSummary{
			ID:       id,
			Merchant: r.Merchant,
			Total:    r.Total.Amount.String(),
			Currency: r.Currency,
		})
	}
	return out, nil
}

func (s *memStore) SaveSettlement(_ context.Context, receiptID string, b *model.SettlementBreakdown) error {
	s.settlements[receiptID] = *b
	return nil
}

func (s *memStore) GetSettlement(_ context.Context, receiptID string) (*model.SettlementBreakdown, error) {
	b, ok := s.settlements[receiptID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &b, nil
}

func (s *memStore) Close() error { return nil }

func usd(v string) money.Money {
	m, err := money.Parse(v, "USD")
	if err != nil {
		panic(err)
	}
	return m
}

func testReceipt() model.Receipt {
	return model.Receipt{
		Merchant: "Thai Garden",
		Items: []model.ReceiptItem{
			{ID: "i1", Name: "Pad Thai", Amount: usd("20.00"), Quantity: 1},
			{ID: "i2", Name: "Curry", Amount: usd("20.00"), Quantity: 1},
		},
		Tax:      usd("4.00"),
		Tip:      usd("6.00"),
		Total:    usd("50.00"),
		Currency: "USD",
	}
}

func testServer(store storage.Store) *Server {
	return New(store, nil, split.DefaultConfig())
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r := testServer(newMemStore()).Router()
	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAllocateEndpoint(t *testing.T) {
	r := testServer(newMemStore()).Router()
	req := map[string]any{
		"receipt": testReceipt(),
		"participants": []model.Participant{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
		},
		"assignments": split.Assignment{
			"i1": {Sharers: []string{"alice"}},
			"i2": {Sharers: []string{"bob"}},
		},
	}
	w := doJSON(t, r, http.MethodPost, "/api/v1/allocate", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var breakdown model.SettlementBreakdown
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &breakdown))
	assert.Equal(t, "USD", breakdown.Currency)
	assert.Equal(t, "25.00 USD", breakdown.Shares["alice"].TotalOwed.String())
	assert.Equal(t, "25.00 USD", breakdown.Shares["bob"].TotalOwed.String())
}

func TestAllocateUnassignedItem(t *testing.T) {
	r := testServer(newMemStore()).Router()
	req := map[string]any{
		"receipt": testReceipt(),
		"participants": []model.Participant{
			{ID: "alice", Name: "Alice"},
		},
		"assignments": split.Assignment{
			"i1": {Sharers: []string{"alice"}},
		},
	}
	w := doJSON(t, r, http.MethodPost, "/api/v1/allocate", req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error           string   `json:"error"`
		UnassignedItems []string `json:"unassigned_items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Curry"}, resp.UnassignedItems)
}

func TestAllocateRejectsBadBody(t *testing.T) {
	r := testServer(newMemStore()).Router()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/allocate", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAndGetReceipt(t *testing.T) {
	store := newMemStore()
	r := testServer(store).Router()

	w := doJSON(t, r, http.MethodPost, "/api/v1/receipts", testReceipt())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	w = doJSON(t, r, http.MethodGet, "/api/v1/receipts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Receipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Thai Garden", got.Merchant)
	assert.Len(t, got.Items, 2)
}

func TestCreateReceiptRejectsInvalid(t *testing.T) {
	r := testServer(newMemStore()).Router()
	bad := testReceipt()
	bad.Items = nil
	w := doJSON(t, r, http.MethodPost, "/api/v1/receipts", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReceiptNotFound(t *testing.T) {
	r := testServer(newMemStore()).Router()
	w := doJSON(t, r, http.MethodGet, "/api/v1/receipts/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListReceiptsEmpty(t *testing.T) {
	r := testServer(newMemStore()).Router()
	w := doJSON(t, r, http.MethodGet, "/api/v1/receipts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestSettleReceipt(t *testing.T) {
	store := newMemStore()
	r := testServer(store).Router()

	receipt := testReceipt()
	require.NoError(t, store.SaveReceipt(context.Background(), &receipt))

	req := map[string]any{
		"participants": []model.Participant{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
		},
		"assignments": split.Assignment{
			"i1": {Sharers: []string{"alice"}},
			"i2": {Sharers: []string{"bob"}},
		},
	}
	w := doJSON(t, r, http.MethodPost, "/api/v1/receipts/"+receipt.ID+"/settlement", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/v1/receipts/"+receipt.ID+"/settlement", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var breakdown model.SettlementBreakdown
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &breakdown))
	assert.Equal(t, "50.00 USD", breakdown.Total.String())
}

func TestSettleReceiptNotFound(t *testing.T) {
	r := testServer(newMemStore()).Router()
	w := doJSON(t, r, http.MethodPost, "/api/v1/receipts/nope/settlement", map[string]any{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSettlementNotFound(t *testing.T) {
	r := testServer(newMemStore()).Router()
	w := doJSON(t, r, http.MethodGet, "/api/v1/receipts/nope/settlement", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExtractUnavailableWithoutExtractor(t *testing.T) {
	r := testServer(newMemStore()).Router()
	w := doJSON(t, r, http.MethodPost, "/api/v1/extract", map[string]string{"text": "RECEIPT"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
