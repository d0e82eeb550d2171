package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountsvc "github.com/akashgupta/shopkart-backend/internal/accounts"
	cartsvc "github.com/akashgupta/shopkart-backend/internal/cart"
	catalogsvc "github.com/akashgupta/shopkart-backend/internal/catalog"
	checkoutsvc "github.com/akashgupta/shopkart-backend/internal/checkout"
	feedbacksvc "github.com/akashgupta/shopkart-backend/internal/feedback"
	ordersvc "github.com/akashgupta/shopkart-backend/internal/orders"
	wishlistsvc "github.com/akashgupta/shopkart-backend/internal/wishlist"
	pkgauth "github.com/akashgupta/shopkart-backend/pkg/auth"
	"github.com/akashgupta/shopkart-backend/pkg/config"
	"github.com/akashgupta/shopkart-backend/pkg/enums"
	"github.com/akashgupta/shopkart-backend/pkg/logger"
	"github.com/akashgupta/shopkart-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) { return true, nil }

type stubCatalog struct{}

func (stubCatalog) Categories(context.Context) ([]catalogsvc.CategoryDTO, error) {
	return []catalogsvc.CategoryDTO{}, nil
}

func (stubCatalog) Products(context.Context, catalogsvc.ListParams) (catalogsvc.ProductsPageDTO, error) {
	return catalogsvc.ProductsPageDTO{}, nil
}

func (stubCatalog) ProductDetail(context.Context, string) (catalogsvc.ProductDetailDTO, error) {
	return catalogsvc.ProductDetailDTO{}, nil
}

type stubCart struct{}

func (stubCart) Get(context.Context, string) (cartsvc.CartDTO, error) { return cartsvc.CartDTO{}, nil }

func (stubCart) Add(context.Context, string, uuid.UUID, int, bool) (cartsvc.SummaryDTO, error) {
	return cartsvc.SummaryDTO{}, nil
}

func (stubCart) Remove(context.Context, string, uuid.UUID) (cartsvc.SummaryDTO, error) {
	return cartsvc.SummaryDTO{}, nil
}

func (stubCart) Clear(context.Context, string) error { return nil }

func (stubCart) Snapshot(context.Context, string) (cartsvc.Contents, error) {
	return cartsvc.Contents{}, nil
}

type stubCheckout struct{}

func (stubCheckout) SetBuyNow(context.Context, string, uuid.UUID, int) error { return nil }

func (stubCheckout) ClearBuyNow(context.Context, string) error { return nil }

func (stubCheckout) Initiate(context.Context, string, string, enums.CheckoutMode) (checkoutsvc.InitiateResultDTO, error) {
	return checkoutsvc.InitiateResultDTO{}, nil
}

func (stubCheckout) Finalize(context.Context, string, checkoutsvc.FinalizeParams) (checkoutsvc.FinalizeResultDTO, error) {
	return checkoutsvc.FinalizeResultDTO{}, nil
}

type stubOrders struct{}

func (stubOrders) List(context.Context, string, pagination.Params) (ordersvc.OrdersPageDTO, error) {
	return ordersvc.OrdersPageDTO{}, nil
}

func (stubOrders) Detail(context.Context, string, uuid.UUID) (ordersvc.OrderDTO, error) {
	return ordersvc.OrderDTO{}, nil
}

func (stubOrders) Cancel(context.Context, string, uuid.UUID) (ordersvc.OrderDTO, error) {
	return ordersvc.OrderDTO{}, nil
}

type stubAccounts struct{}

func (stubAccounts) StartSignup(context.Context, string, accountsvc.SignupStartParams) error {
	return nil
}

func (stubAccounts) VerifySignup(context.Context, string, string) (accountsvc.AuthResultDTO, error) {
	return accountsvc.AuthResultDTO{}, nil
}

func (stubAccounts) ResendSignup(context.Context, string) error { return nil }

func (stubAccounts) Login(context.Context, string, string) (accountsvc.AuthResultDTO, error) {
	return accountsvc.AuthResultDTO{}, nil
}

func (stubAccounts) Logout(context.Context, string) error { return nil }

func (stubAccounts) Refresh(context.Context, string, string) (accountsvc.AuthResultDTO, error) {
	return accountsvc.AuthResultDTO{}, nil
}

func (stubAccounts) Profile(context.Context, uuid.UUID) (accountsvc.ProfileDTO, error) {
	return accountsvc.ProfileDTO{}, nil
}

func (stubAccounts) UpdateProfile(context.Context, uuid.UUID, accountsvc.UpdateProfileParams) (accountsvc.ProfileDTO, error) {
	return accountsvc.ProfileDTO{}, nil
}

func (stubAccounts) Addresses(context.Context, uuid.UUID) ([]accountsvc.AddressDTO, error) {
	return nil, nil
}

func (stubAccounts) AddAddress(context.Context, uuid.UUID, string) (accountsvc.AddressDTO, error) {
	return accountsvc.AddressDTO{}, nil
}

func (stubAccounts) DeleteAddress(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type stubWishlist struct{}

func (stubWishlist) Toggle(context.Context, uuid.UUID, uuid.UUID) (wishlistsvc.ToggleResultDTO, error) {
	return wishlistsvc.ToggleResultDTO{}, nil
}

func (stubWishlist) List(context.Context, uuid.UUID) ([]wishlistsvc.ItemDTO, error) {
	return nil, nil
}

type stubFeedback struct{}

func (stubFeedback) Submit(context.Context, feedbacksvc.SubmitParams) (feedbacksvc.FeedbackDTO, error) {
	return feedbacksvc.FeedbackDTO{}, nil
}

func (stubFeedback) Approve(context.Context, []uuid.UUID) (feedbacksvc.ModerationResultDTO, error) {
	return feedbacksvc.ModerationResultDTO{}, nil
}

func (stubFeedback) Reject(context.Context, []uuid.UUID) (feedbacksvc.ModerationResultDTO, error) {
	return feedbacksvc.ModerationResultDTO{}, nil
}

func (stubFeedback) RecentApproved(context.Context, uuid.UUID) ([]feedbacksvc.FeedbackDTO, error) {
	return nil, nil
}

func (stubFeedback) Feed(context.Context, uuid.UUID) (*feeds.Feed, error) {
	return &feeds.Feed{Title: "Reviews"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "shopkart-test",
			ExpirationMinutes: 15,
		},
		Session: config.SessionConfig{
			CookieName: "shopkart_session",
			TTL:        time.Hour,
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Config:   testConfig(),
		Logger:   logger.New(logger.Options{ServiceName: "router-test"}),
		DB:       stubPinger{},
		Sessions: stubSessionChecker{},
		Catalog:  stubCatalog{},
		Cart:     stubCart{},
		Checkout: stubCheckout{},
		Orders:   stubOrders{},
		Accounts: stubAccounts{},
		Wishlist: stubWishlist{},
		Feedback: stubFeedback{},
	})
}

func mintToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "akash",
		Email:    "akash@example.com",
		Role:     role,
		JTI:      uuid.NewString(),
	})
	require.NoError(t, err)
	return token
}

func TestRouter_HealthLive(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test", w.Header().Get("X-ShopKart-Env"))
}

func TestRouter_StorefrontIssuesSessionCookie(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "shopkart_session", cookies[0].Name)
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err)
}

func TestRouter_AccountSurfaceRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/me/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/profile", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AdminSurfaceRejectsCustomers(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/feedback/approve", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_FeedbackFeedIsRSS(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString()+"/feedback/rss", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/rss+xml")
}
