package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/akashgupta/shopkart-backend/internal/cart"
	"github.com/akashgupta/shopkart-backend/pkg/db/models"
	"github.com/akashgupta/shopkart-backend/pkg/enums"
	pkgerrors "github.com/akashgupta/shopkart-backend/pkg/errors"
	sessionpkg "github.com/akashgupta/shopkart-backend/pkg/session"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
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

type fakeSessions struct {
	blobs map[string]map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{blobs: map[string]map[string]string{}}
}

func (f *fakeSessions) Get(_ context.Context, sessionID, name string, dest any) error {
	blob, ok := f.blobs[sessionID][name]
	if !ok {
		return sessionpkg.ErrNotFound
	}
	return json.Unmarshal([]byte(blob), dest)
}

func (f *fakeSessions) Set(_ context.Context, sessionID, name string, value any) error {
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

func (f *fakeSessions) Delete(_ context.Context, sessionID, name string) error {
	delete(f.blobs[sessionID], name)
	return nil
}

type fakeCarts struct {
	contents map[string]cart.Contents
	cleared  map[string]bool
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{contents: map[string]cart.Contents{}, cleared: map[string]bool{}}
}

func (f *fakeCarts) Snapshot(_ context.Context, sessionID string) (cart.Contents, error) {
	if contents, ok := f.contents[sessionID]; ok {
		return contents, nil
	}
	return cart.Contents{}, nil
}

func (f *fakeCarts) Clear(_ context.Context, sessionID string) error {
	delete(f.contents, sessionID)
	f.cleared[sessionID] = true
	return nil
}

type fakeFinder struct {
	products map[uuid.UUID]models.Product
}

func (f *fakeFinder) FindProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &product, nil
}

func (f *fakeFinder) FindProductsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	result := map[uuid.UUID]models.Product{}
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			result[id] = product
		}
	}
	return result, nil
}

type fakeGateway struct {
	created     int
	lastAmount  int64
	validSig    string
	failCreate  bool
	orderPrefix string
}

func (f *fakeGateway) CreateOrder(amountSubunits int64, receipt string, _ map[string]any) (string, error) {
	if f.failCreate {
		return "", fmt.Errorf("gateway unavailable")
	}
	f.created++
	f.lastAmount = amountSubunits
	return fmt.Sprintf("%sorder_%d", f.orderPrefix, f.created), nil
}

func (f *fakeGateway) VerifySignature(_, _, signature string) bool {
	return signature == f.validSig
}

func (f *fakeGateway) KeyID() string    { return "rzp_test_key" }
func (f *fakeGateway) Currency() string { return "INR" }

type checkoutFixture struct {
	svc      Service
	db       *gorm.DB
	carts    *fakeCarts
	sessions *fakeSessions
	finder   *fakeFinder
	gateway  *fakeGateway
}

func newCheckoutFixture(t *testing.T, products ...models.Product) *checkoutFixture {
	t.Helper()

	db := setupCheckoutTestDB(t)
	finder := &fakeFinder{products: map[uuid.UUID]models.Product{}}
	for _, p := range products {
		finder.products[p.ID] = p
	}
	carts := newFakeCarts()
	sessions := newFakeSessions()
	gw := &fakeGateway{validSig: "good-signature"}

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Carts:    carts,
		Sessions: sessions,
		Products: finder,
		Gateway:  gw,
	})
	require.NoError(t, err)

	return &checkoutFixture{svc: svc, db: db, carts: carts, sessions: sessions, finder: finder, gateway: gw}
}

func checkoutProduct(name, price string) models.Product {
	return models.Product{
		ID:       uuid.New(),
		Name:     name,
		Slug:     name,
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
}

func TestInitiate_EmptyCartRejected(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.Initiate(context.Background(), "sess", "buyer@example.com", enums.CheckoutModeCart)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Zero(t, f.gateway.created)
}

func TestInitiate_CartModePersistsSnapshotOrder(t *testing.T) {
	widget := checkoutProduct("widget", "100.00")
	gadget := checkoutProduct("gadget", "11.75")
	f := newCheckoutFixture(t, widget, gadget)
	ctx := context.Background()

	f.carts.contents["sess"] = cart.Contents{
		widget.ID.String(): {Quantity: 2, Price: decimal.RequireFromString("90.00")},
		gadget.ID.String(): {Quantity: 1, Price: decimal.RequireFromString("11.75")},
	}

	result, err := f.svc.Initiate(ctx, "sess", "buyer@example.com", enums.CheckoutModeCart)
	require.NoError(t, err)

	// 2*90.00 + 11.75 = 191.75 -> 19175 paise
	assert.Equal(t, int64(19175), result.Amount)
	assert.Equal(t, "INR", result.Currency)
	assert.Equal(t, "rzp_test_key", result.KeyID)
	assert.NotEmpty(t, result.GatewayOrderID)

	var order models.Order
	require.NoError(t, f.db.Preload("Items").First(&order, "id = ?", result.OrderID).Error)
	assert.Equal(t, enums.OrderStatusCreated, order.Status)
	assert.Equal(t, enums.CheckoutModeCart, order.Mode)
	assert.Equal(t, "buyer@example.com", order.Email)
	require.Len(t, order.Items, 2)

	for _, item := range order.Items {
		if item.Name == "widget" {
			// session snapshot price, not the live 100.00
			assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("90.00")))
		}
	}

	// cart untouched until settlement
	assert.False(t, f.carts.cleared["sess"])
}

func TestBuyNow_IsolatedFromCart(t *testing.T) {
	widget := checkoutProduct("widget", "50.00")
	other := checkoutProduct("other", "10.00")
	f := newCheckoutFixture(t, widget, other)
	ctx := context.Background()

	f.carts.contents["sess"] = cart.Contents{
		other.ID.String(): {Quantity: 3, Price: decimal.RequireFromString("10.00")},
	}

	require.NoError(t, f.svc.SetBuyNow(ctx, "sess", widget.ID, 2))

	result, err := f.svc.Initiate(ctx, "sess", "buyer@example.com", enums.CheckoutModeBuyNow)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), result.Amount)

	var order models.Order
	require.NoError(t, f.db.Preload("Items").First(&order, "id = ?", result.OrderID).Error)
	assert.Equal(t, enums.CheckoutModeBuyNow, order.Mode)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "widget", order.Items[0].Name)

	// settle and confirm only the intent is cleared
	_, err = f.svc.Finalize(ctx, "sess", FinalizeParams{
		GatewayOrderID:   result.GatewayOrderID,
		GatewayPaymentID: "pay_1",
		GatewaySignature: "good-signature",
	})
	require.NoError(t, err)
	assert.False(t, f.carts.cleared["sess"])
	var intent BuyNowIntent
	assert.ErrorIs(t, f.sessions.Get(ctx, "sess", sessionpkg.KeyBuyNow, &intent), sessionpkg.ErrNotFound)
}

func TestFinalize_ValidSignatureSettlesAndClearsCart(t *testing.T) {
	widget := checkoutProduct("widget", "25.00")
	f := newCheckoutFixture(t, widget)
	ctx := context.Background()

	f.carts.contents["sess"] = cart.Contents{
		widget.ID.String(): {Quantity: 1, Price: decimal.RequireFromString("25.00")},
	}
	initiated, err := f.svc.Initiate(ctx, "sess", "buyer@example.com", enums.CheckoutModeCart)
	require.NoError(t, err)

	result, err := f.svc.Finalize(ctx, "sess", FinalizeParams{
		GatewayOrderID:   initiated.GatewayOrderID,
		GatewayPaymentID: "pay_9",
		GatewaySignature: "good-signature",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, result.Status)
	assert.True(t, f.carts.cleared["sess"])

	var order models.Order
	require.NoError(t, f.db.First(&order, "id = ?", initiated.OrderID).Error)
	assert.Equal(t, enums.OrderStatusPaid, order.Status)
	require.NotNil(t, order.GatewayPaymentID)
	assert.Equal(t, "pay_9", *order.GatewayPaymentID)
	require.NotNil(t, order.GatewaySignature)
	assert.Equal(t, "good-signature", *order.GatewaySignature)
}

func TestFinalize_BadSignatureMarksFailed(t *testing.T) {
	widget := checkoutProduct("widget", "25.00")
	f := newCheckoutFixture(t, widget)
	ctx := context.Background()

	f.carts.contents["sess"] = cart.Contents{
		widget.ID.String(): {Quantity: 1, Price: decimal.RequireFromString("25.00")},
	}
	initiated, err := f.svc.Initiate(ctx, "sess", "buyer@example.com", enums.CheckoutModeCart)
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, "sess", FinalizeParams{
		GatewayOrderID:   initiated.GatewayOrderID,
		GatewayPaymentID: "pay_9",
		GatewaySignature: "forged",
	})
	require.Error(t, err)

	var order models.Order
	require.NoError(t, f.db.First(&order, "id = ?", initiated.OrderID).Error)
	assert.Equal(t, enums.OrderStatusFailed, order.Status)
	assert.False(t, f.carts.cleared["sess"])
}

func TestFinalize_RepeatedCallbackIsIdempotent(t *testing.T) {
	widget := checkoutProduct("widget", "25.00")
	f := newCheckoutFixture(t, widget)
	ctx := context.Background()

	f.carts.contents["sess"] = cart.Contents{
		widget.ID.String(): {Quantity: 1, Price: decimal.RequireFromString("25.00")},
	}
	initiated, err := f.svc.Initiate(ctx, "sess", "buyer@example.com", enums.CheckoutModeCart)
	require.NoError(t, err)

	params := FinalizeParams{
		GatewayOrderID:   initiated.GatewayOrderID,
		GatewayPaymentID: "pay_9",
		GatewaySignature: "good-signature",
	}
	first, err := f.svc.Finalize(ctx, "sess", params)
	require.NoError(t, err)

	second, err := f.svc.Finalize(ctx, "sess", params)
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, enums.OrderStatusPaid, second.Status)
}

func TestFinalize_UnknownOrder(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.Finalize(context.Background(), "sess", FinalizeParams{
		GatewayOrderID:   "order_missing",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "good-signature",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestInitiate_GatewayFailureSurfacesDependencyError(t *testing.T) {
	widget := checkoutProduct("widget", "25.00")
	f := newCheckoutFixture(t, widget)
	f.gateway.failCreate = true

	f.carts.contents["sess"] = cart.Contents{
		widget.ID.String(): {Quantity: 1, Price: decimal.RequireFromString("25.00")},
	}
	_, err := f.svc.Initiate(context.Background(), "sess", "buyer@example.com", enums.CheckoutModeCart)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}
