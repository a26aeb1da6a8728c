package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productgen/internal/clock"
	"productgen/internal/errs"
	"productgen/internal/mapping"
	"productgen/internal/models"
	"productgen/internal/repository"
	"productgen/internal/testutil"
)

// fakeStore is an in-memory catalog API.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]Product
	failSKU  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 100, products: map[int64]Product{}}
}

func (s *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/products":
		var payload ProductPayload
		json.NewDecoder(r.Body).Decode(&payload)
		if payload.Product.SKU == s.failSKU {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message": "duplicate sku"}`))
			return
		}
		s.nextID++
		payload.Product.ID = s.nextID
		payload.Product.UpdatedAt = "2024-01-01 00:00:00"
		s.products[s.nextID] = payload.Product
		json.NewEncoder(w).Encode(payload.Product)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/products/"):
		var payload ProductPayload
		json.NewDecoder(r.Body).Decode(&payload)
		if _, ok := s.products[payload.Product.ID]; !ok {
			http.NotFound(w, r)
			return
		}
		s.products[payload.Product.ID] = payload.Product
		json.NewEncoder(w).Encode(payload.Product)
	case r.Method == http.MethodGet && r.URL.Path == "/products/attributes/features":
		w.Write([]byte(`{"attribute_code": "features", "frontend_input": "multiselect"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/products/7":
		w.Write([]byte(`{"id": 7, "sku": "X", "updated_at": "2024-02-03 04:05:06"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/products/8":
		w.Write([]byte(`{"id": 8, "sku": "Y"}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, store *fakeStore) *Client {
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "token", testutil.Logger())
}

func TestClient_ProductUpdatedAt(t *testing.T) {
	client := newTestClient(t, newFakeStore())
	ctx := context.Background()

	ts, err := client.ProductUpdatedAt(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.True(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC).Equal(*ts))

	ts, err = client.ProductUpdatedAt(ctx, 8)
	require.NoError(t, err)
	assert.Nil(t, ts)

	_, err = client.ProductUpdatedAt(ctx, 9)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestClient_AttributeInputType(t *testing.T) {
	client := newTestClient(t, newFakeStore())

	input, err := client.AttributeInputType(context.Background(), "features")
	require.NoError(t, err)
	assert.Equal(t, "multiselect", input)

	_, err = client.AttributeInputType(context.Background(), "unknown")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{"2024-02-03 04:05:06", "2024-02-03T04:05:06Z", "2024-02-03T04:05:06"} {
		ts, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC).Equal(*ts), s)
	}

	ts, err := ParseTimestamp("")
	require.NoError(t, err)
	assert.Nil(t, ts)

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTransformer_ToProduct(t *testing.T) {
	set := 4
	product, err := NewTransformer().ToProduct(map[string]interface{}{
		"sku":         "ABC-1",
		"name":        "Serum",
		"price":       "19.50",
		"description": "copy",
		"features":    []string{"a", "b"},
	}, "simple", &set)
	require.NoError(t, err)

	assert.Equal(t, "ABC-1", product.SKU)
	assert.Equal(t, 19.5, product.Price)
	assert.Equal(t, 4, product.AttributeSetID)
	assert.Equal(t, StatusEnabled, product.Status)
	require.Len(t, product.CustomAttributes, 2)
	assert.Equal(t, "description", product.CustomAttributes[0].AttributeCode)
	assert.Equal(t, "features", product.CustomAttributes[1].AttributeCode)

	_, err = NewTransformer().ToProduct(map[string]interface{}{"price": "n/a"}, "simple", nil)
	assert.Error(t, err)
}

func TestValidator_ValidateProduct(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateProduct(&Product{Name: "A", SKU: "A-1", Price: 1}))
	assert.ErrorIs(t, v.ValidateProduct(&Product{SKU: "A-1"}), errs.ErrInvalid)
	assert.ErrorIs(t, v.ValidateProduct(&Product{Name: "A", SKU: strings.Repeat("x", 65)}), errs.ErrInvalid)
	assert.ErrorIs(t, v.ValidateProduct(&Product{Name: "A", SKU: "A-1", Price: -1}), errs.ErrInvalid)
}

type serviceFixture struct {
	store   *fakeStore
	drafts  *repository.GormDraftRepository
	batches *repository.GormBatchRepository
	clock   *clock.FakeClock
	service *Service
}

type noSettings struct{}

func (noSettings) Value(context.Context, string) string { return "" }

func newServiceFixture(t *testing.T) *serviceFixture {
	db := testutil.NewDB(t)
	store := newFakeStore()
	client := newTestClient(t, store)

	drafts := repository.NewDraftRepository(db)
	batches := repository.NewBatchRepository(db)
	cfg := mapping.NewConfig(repository.NewMappingProfileRepository(db), noSettings{}, testutil.Logger())
	engine := mapping.NewEngine(drafts, cfg, client, "USD", testutil.Logger())

	clk := clock.NewFake(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	return &serviceFixture{
		store:   store,
		drafts:  drafts,
		batches: batches,
		clock:   clk,
		service: NewService(engine, drafts, batches, client, clk, testutil.Logger()),
	}
}

func (f *serviceFixture) draft(t *testing.T, name string, batchID *uint) *models.Draft {
	now := time.Now().UTC()
	d, err := f.drafts.Save(context.Background(), &models.Draft{
		ProductName:    name,
		GenerationType: models.GenerationTypeCSV,
		SKU:            strings.ToUpper(name) + "-20240101000000",
		Description:    "About " + name,
		Pricing:        models.Pricing{"USD": {Min: 9.5, Max: 12}},
		BatchID:        batchID,
		UpdatedAt:      &now,
	})
	require.NoError(t, err)
	return d
}

func TestService_CreateThenUpdate(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	d := f.draft(t, "serum", nil)

	result, err := f.service.CreateOrUpdateFromDraft(ctx, d.ID, ImportOptions{})
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, int64(101), result.CatalogProductID)
	assert.Equal(t, 9.5, f.store.products[101].Price)
	assert.Equal(t, "simple", f.store.products[101].TypeID)

	linked, err := f.drafts.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, linked.IsCreatedInCatalog)
	assert.True(t, d.UpdatedAt.Equal(*linked.UpdatedAt))

	result, err = f.service.CreateOrUpdateFromDraft(ctx, d.ID, ImportOptions{})
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, int64(101), result.CatalogProductID)
	assert.Len(t, f.store.products, 1)
}

func TestService_CreateOrUpdateErrors(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateOrUpdateFromDraft(ctx, 999, ImportOptions{})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	d := f.draft(t, "serum", nil)
	_, err = f.service.CreateOrUpdateFromDraft(ctx, d.ID, ImportOptions{ProductType: "kit"})
	assert.ErrorIs(t, err, errs.ErrInvalid)

	f.store.failSKU = d.SKU
	_, err = f.service.CreateOrUpdateFromDraft(ctx, d.ID, ImportOptions{})
	assert.ErrorIs(t, err, errs.ErrUpstream)
}

func TestService_ImportBatch(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	batch, err := f.batches.Save(ctx, &models.Batch{GenerationType: models.GenerationTypeCSV})
	require.NoError(t, err)
	f.draft(t, "a", &batch.ID)
	bad := f.draft(t, "b", &batch.ID)
	f.store.failSKU = bad.SKU

	done, err := f.service.ImportBatch(ctx, batch.ID, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusCompleted, done.ImportStatus)
	assert.Equal(t, 1, done.ImportedProducts)
	require.NotNil(t, done.ImportedAt)
	require.NotNil(t, done.ErrorMessage)
	assert.Contains(t, *done.ErrorMessage, "duplicate sku")
}

func TestService_ImportBatchAllFail(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	batch, err := f.batches.Save(ctx, &models.Batch{GenerationType: models.GenerationTypeCSV})
	require.NoError(t, err)
	d := f.draft(t, "a", &batch.ID)
	f.store.failSKU = d.SKU

	done, err := f.service.ImportBatch(ctx, batch.ID, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusFailed, done.ImportStatus)
	assert.Equal(t, 0, done.ImportedProducts)
}

func TestService_ImportBatchRejectsRunningBatch(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	batch, err := f.batches.Save(ctx, &models.Batch{GenerationType: models.GenerationTypeCSV, ImportStatus: models.ImportStatusProcessing})
	require.NoError(t, err)
	f.clock.Set(batch.UpdatedAt.Add(10 * time.Minute))

	_, err = f.service.ImportBatch(ctx, batch.ID, ImportOptions{})
	assert.ErrorIs(t, err, errs.ErrInvalid)

	_, err = f.service.ImportBatch(ctx, 999, ImportOptions{})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestService_ImportBatchTakesOverStaleBatch(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	batch, err := f.batches.Save(ctx, &models.Batch{GenerationType: models.GenerationTypeCSV, ImportStatus: models.ImportStatusProcessing})
	require.NoError(t, err)
	f.draft(t, "Serum", &batch.ID)
	f.clock.Set(batch.UpdatedAt.Add(time.Hour))

	done, err := f.service.ImportBatch(ctx, batch.ID, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusCompleted, done.ImportStatus)
	assert.Equal(t, 1, done.ImportedProducts)
}
