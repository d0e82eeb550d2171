package orders

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
	"github.com/akashgupta/shopkart-backend/pkg/enums"
	pkgerrors "github.com/akashgupta/shopkart-backend/pkg/errors"
	"github.com/akashgupta/shopkart-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  total_amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'created',
  mode TEXT NOT NULL DEFAULT 'cart',
  gateway_order_id TEXT UNIQUE,
  gateway_payment_id TEXT,
  gateway_signature TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  name TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL
);`

	for _, stmt := range []string{orders, orderItems} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, email string, status enums.OrderStatus, createdAt time.Time) models.Order {
	t.Helper()
	order := models.Order{
		ID:          uuid.New(),
		Email:       email,
		TotalAmount: decimal.RequireFromString("100.00"),
		Status:      status,
		Mode:        enums.CheckoutModeCart,
		CreatedAt:   createdAt,
		Items: []models.OrderItem{
			{ID: uuid.New(), Name: "widget", UnitPrice: decimal.RequireFromString("100.00"), Quantity: 1},
		},
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestListByEmail_NewestFirstAndScoped(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	older := seedOrder(t, db, "a@example.com", enums.OrderStatusPaid, base)
	newer := seedOrder(t, db, "a@example.com", enums.OrderStatusCreated, base.Add(10*time.Minute))
	seedOrder(t, db, "b@example.com", enums.OrderStatusPaid, base.Add(20*time.Minute))

	orders, next, err := repo.ListByEmail(ctx, "a@example.com", pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, next)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
	require.Len(t, orders[0].Items, 1)
}

func TestCancel_TransitionRules(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := seedOrder(t, db, "a@example.com", enums.OrderStatusCreated, time.Now())
	failed := seedOrder(t, db, "a@example.com", enums.OrderStatusFailed, time.Now())
	paid := seedOrder(t, db, "a@example.com", enums.OrderStatusPaid, time.Now())
	cancelled := seedOrder(t, db, "a@example.com", enums.OrderStatusCancelled, time.Now())

	ok, err := repo.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// failed orders may still be cancelled
	ok, err = repo.Cancel(ctx, failed.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Cancel(ctx, paid.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Cancel(ctx, cancelled.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_DetailOwnershipAndCancel(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(db)})
	require.NoError(t, err)
	ctx := context.Background()

	order := seedOrder(t, db, "owner@example.com", enums.OrderStatusCreated, time.Now())

	_, err = svc.Detail(ctx, "other@example.com", order.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())

	// email match is case-insensitive
	detail, err := svc.Detail(ctx, "Owner@Example.com", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, detail.ID)

	cancelledDTO, err := svc.Cancel(ctx, "owner@example.com", order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelledDTO.Status)

	_, err = svc.Cancel(ctx, "owner@example.com", order.ID)
	require.Error(t, err)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestService_DetailUnknownOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(db)})
	require.NoError(t, err)

	_, err = svc.Detail(context.Background(), "owner@example.com", uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
