package wishlist

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/akashgupta/shopkart-backend/pkg/errors"
)

func setupWishlistTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS wishlist_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (user_id, product_id)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

type fakeProducts struct {
	products map[uuid.UUID]models.Product
}

func (f *fakeProducts) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &product, nil
}

func (f *fakeProducts) FindProductsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	result := make(map[uuid.UUID]models.Product, len(ids))
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			result[id] = product
		}
	}
	return result, nil
}

func newWishlistService(t *testing.T, db *gorm.DB, products ...models.Product) (Service, *fakeProducts) {
	t.Helper()

	finder := &fakeProducts{products: map[uuid.UUID]models.Product{}}
	for _, p := range products {
		finder.products[p.ID] = p
	}
	svc, err := NewService(ServiceParams{Repo: NewRepository(db), Products: finder})
	require.NoError(t, err)
	return svc, finder
}

func wishedProduct(name, slug string) models.Product {
	return models.Product{
		ID:       uuid.New(),
		Name:     name,
		Slug:     slug,
		Price:    decimal.RequireFromString("49.99"),
		IsActive: true,
	}
}

func TestToggle_AddsThenRemoves(t *testing.T) {
	db := setupWishlistTestDB(t)
	product := wishedProduct("Widget", "widget")
	svc, _ := newWishlistService(t, db, product)
	ctx := context.Background()
	userID := uuid.New()

	result, err := svc.Toggle(ctx, userID, product.ID)
	require.NoError(t, err)
	assert.True(t, result.Wished)

	items, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Widget", items[0].Name)

	result, err = svc.Toggle(ctx, userID, product.ID)
	require.NoError(t, err)
	assert.False(t, result.Wished)

	items, err = svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestToggle_UnknownProduct(t *testing.T) {
	db := setupWishlistTestDB(t)
	svc, _ := newWishlistService(t, db)

	_, err := svc.Toggle(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestList_SkipsRetiredProductsAndScopesToUser(t *testing.T) {
	db := setupWishlistTestDB(t)
	keep := wishedProduct("Widget", "widget")
	retired := wishedProduct("Gadget", "gadget")
	svc, finder := newWishlistService(t, db, keep, retired)
	ctx := context.Background()
	userID := uuid.New()
	otherID := uuid.New()

	_, err := svc.Toggle(ctx, userID, keep.ID)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, userID, retired.ID)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, otherID, keep.ID)
	require.NoError(t, err)

	// retire the second product from the catalog
	delete(finder.products, retired.ID)

	items, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ProductID)
}

func TestList_NewestFirst(t *testing.T) {
	db := setupWishlistTestDB(t)
	first := wishedProduct("Widget", "widget")
	second := wishedProduct("Gadget", "gadget")
	svc, _ := newWishlistService(t, db, first, second)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Now().Add(-time.Hour)
	rows := []models.WishlistItem{
		{ID: uuid.New(), UserID: userID, ProductID: first.ID, CreatedAt: base},
		{ID: uuid.New(), UserID: userID, ProductID: second.ID, CreatedAt: base.Add(10 * time.Minute)},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	items, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ProductID)
	assert.Equal(t, first.ID, items[1].ProductID)
}
