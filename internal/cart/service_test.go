package cart

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	sessionpkg "github.com/akashgupta/shopkart-backend/pkg/session"
)

type fakeSessionStore struct {
	blobs map[string]map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{blobs: map[string]map[string]string{}}
}

func (f *fakeSessionStore) Get(_ context.Context, sessionID, name string, dest any) error {
	blob, ok := f.blobs[sessionID][name]
	if !ok {
		return sessionpkg.ErrNotFound
	}
	return json.Unmarshal([]byte(blob), dest)
}

func (f *fakeSessionStore) Set(_ context.Context, sessionID, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if f.blobs[sessionID] == nil {
		f.blobs[sessionID] = map[string]string{}
	}
	f.blobs[sessionID][name] = string(raw)
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, sessionID, name string) error {
	delete(f.blobs[sessionID], name)
	return nil
}

type fakeProductFinder struct {
	products map[uuid.UUID]models.Product
}

func (f *fakeProductFinder) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &product, nil
}

func (f *fakeProductFinder) FindProductsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	result := map[uuid.UUID]models.Product{}
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			result[id] = product
		}
	}
	return result, nil
}

func newTestService(t *testing.T, products ...models.Product) (Service, *fakeSessionStore, *fakeProductFinder) {
	t.Helper()

	finder := &fakeProductFinder{products: map[uuid.UUID]models.Product{}}
	for _, p := range products {
		finder.products[p.ID] = p
	}
	sessions := newFakeSessionStore()
	svc, err := NewService(ServiceParams{Sessions: sessions, Products: finder})
	require.NoError(t, err)
	return svc, sessions, finder
}

func testProduct(price string) models.Product {
	return models.Product{
		ID:       uuid.New(),
		Name:     "Widget",
		Slug:     "widget",
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
}

func TestAdd_AccumulatesQuantity(t *testing.T) {
	product := testProduct("10.00")
	svc, _, _ := newTestService(t, product)
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess", product.ID, 2, false)
	require.NoError(t, err)

	summary, err := svc.Add(ctx, "sess", product.ID, 3, false)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.CartCount)
	assert.Equal(t, 5, summary.TotalQty)
	assert.True(t, summary.CartTotal.Equal(decimal.RequireFromString("50.00")))
	require.NotNil(t, summary.RowTotal)
	assert.True(t, summary.RowTotal.Equal(decimal.RequireFromString("50.00")))
}

func TestAdd_ReplaceOverwritesQuantity(t *testing.T) {
	product := testProduct("10.00")
	svc, _, _ := newTestService(t, product)
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess", product.ID, 5, false)
	require.NoError(t, err)

	summary, err := svc.Add(ctx, "sess", product.ID, 2, true)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalQty)
	assert.True(t, summary.CartTotal.Equal(decimal.RequireFromString("20.00")))
}

func TestAdd_KeepsPriceSnapshotAcrossCatalogChanges(t *testing.T) {
	product := testProduct("10.00")
	svc, _, finder := newTestService(t, product)
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess", product.ID, 1, false)
	require.NoError(t, err)

	// catalog price change after first add
	repriced := product
	repriced.Price = decimal.RequireFromString("99.00")
	finder.products[product.ID] = repriced

	summary, err := svc.Add(ctx, "sess", product.ID, 1, false)
	require.NoError(t, err)
	assert.True(t, summary.CartTotal.Equal(decimal.RequireFromString("20.00")))

	dto, err := svc.Get(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	assert.True(t, dto.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestAdd_RejectsInvalidQuantityAndMissingProduct(t *testing.T) {
	product := testProduct("10.00")
	svc, _, _ := newTestService(t, product)
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess", product.ID, 0, false)
	require.Error(t, err)

	_, err = svc.Add(ctx, "sess", uuid.New(), 1, false)
	require.Error(t, err)
}

func TestRemove_AbsentProductIsNoOp(t *testing.T) {
	product := testProduct("10.00")
	svc, _, _ := newTestService(t, product)
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess", product.ID, 2, false)
	require.NoError(t, err)

	summary, err := svc.Remove(ctx, "sess", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CartCount)
	assert.Equal(t, 2, summary.TotalQty)

	summary, err = svc.Remove(ctx, "sess", product.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.CartCount)
	assert.True(t, summary.CartTotal.IsZero())
}

func TestClear_EmptiesCart(t *testing.T) {
	product := testProduct("10.00")
	svc, _, _ := newTestService(t, product)
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess", product.ID, 2, false)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "sess"))

	dto, err := svc.Get(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, dto.Lines)
	assert.Zero(t, dto.TotalQty)
}

func TestGet_SkipsStaleEntries(t *testing.T) {
	product := testProduct("10.00")
	svc, _, finder := newTestService(t, product)
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess", product.ID, 2, false)
	require.NoError(t, err)

	// product removed from the catalog after it entered the cart
	delete(finder.products, product.ID)

	dto, err := svc.Get(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, dto.Lines)
	assert.True(t, dto.CartTotal.IsZero())
}

func TestGet_EmptySession(t *testing.T) {
	svc, _, _ := newTestService(t)

	dto, err := svc.Get(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, dto.Lines)
	assert.Zero(t, dto.CartCount)
}
