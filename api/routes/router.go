package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akashgupta/shopkart-backend/api/controllers"
	"github.com/akashgupta/shopkart-backend/api/middleware"
	accountsvc "github.com/akashgupta/shopkart-backend/internal/accounts"
	cartsvc "github.com/akashgupta/shopkart-backend/internal/cart"
	catalogsvc "github.com/akashgupta/shopkart-backend/internal/catalog"
	checkoutsvc "github.com/akashgupta/shopkart-backend/internal/checkout"
	feedbacksvc "github.com/akashgupta/shopkart-backend/internal/feedback"
	ordersvc "github.com/akashgupta/shopkart-backend/internal/orders"
	wishlistsvc "github.com/akashgupta/shopkart-backend/internal/wishlist"
	"github.com/akashgupta/shopkart-backend/pkg/config"
	"github.com/akashgupta/shopkart-backend/pkg/enums"
	"github.com/akashgupta/shopkart-backend/pkg/logger"
	"github.com/akashgupta/shopkart-backend/pkg/metrics"
	"github.com/akashgupta/shopkart-backend/pkg/redis"
)

// Deps carries everything the router wires together.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redis.Client
	Sessions middleware.AccessSessionChecker
	Registry *prometheus.Registry

	Catalog  catalogsvc.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   ordersvc.Service
	Accounts accountsvc.Service
	Wishlist wishlistsvc.Service
	Feedback feedbacksvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	if deps.Registry != nil {
		httpMetrics := metrics.NewHTTPMetrics(deps.Registry)
		r.Use(middleware.Metrics(httpMetrics))
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)
	resendPolicy := middleware.NewAuthRateLimitPolicy(
		"resend",
		cfg.AuthRateLimit.ResendWindow,
		cfg.AuthRateLimit.ResendSessionLimit,
		0,
	)

	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg)
	withSession := middleware.Session(cfg.Session, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(withSession)

		// catalog
		r.Get("/categories", controllers.ListCategories(deps.Catalog, logg))
		r.Get("/products", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/products/{slug}", controllers.GetProduct(deps.Catalog, logg))

		// reviews
		r.With(optionalAuth).Post("/products/{productID}/feedback", controllers.SubmitFeedback(deps.Feedback, logg))
		r.Get("/products/{productID}/feedback/rss", controllers.FeedbackFeed(deps.Feedback, logg))

		// session cart
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.Cart, logg))
			r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
			r.Delete("/items/{productID}", controllers.RemoveCartItem(deps.Cart, logg))
			r.Delete("/", controllers.ClearCart(deps.Cart, logg))
		})

		// checkout
		r.Route("/checkout", func(r chi.Router) {
			r.Use(optionalAuth)
			r.Post("/buy-now", controllers.SetBuyNow(deps.Checkout, logg))
			r.Delete("/buy-now", controllers.ClearBuyNow(deps.Checkout, logg))
			r.With(middleware.Idempotency("checkout:initiate", deps.Redis, logg)).
				Post("/initiate", controllers.InitiateCheckout(deps.Checkout, logg))
			r.Post("/finalize", controllers.FinalizeCheckout(deps.Checkout, logg))
		})

		// auth
		r.Route("/auth", func(r chi.Router) {
			r.Route("/signup", func(r chi.Router) {
				r.With(middleware.AuthRateLimit(signupPolicy, deps.Redis, logg)).Post("/", controllers.SignupStart(deps.Accounts, logg))
				r.Post("/verify", controllers.SignupVerify(deps.Accounts, logg))
				r.With(middleware.AuthRateLimit(resendPolicy, deps.Redis, logg)).Post("/resend", controllers.SignupResend(deps.Accounts, logg))
			})
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.Login(deps.Accounts, logg))
			r.With(requireAuth).Post("/logout", controllers.Logout(deps.Accounts, logg))
			r.Post("/refresh", controllers.Refresh(deps.Accounts, logg))
		})

		// account surface
		r.Route("/me", func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/profile", controllers.GetProfile(deps.Accounts, logg))
			r.Put("/profile", controllers.UpdateProfile(deps.Accounts, logg))

			r.Get("/addresses", controllers.ListAddresses(deps.Accounts, logg))
			r.Post("/addresses", controllers.AddAddress(deps.Accounts, logg))
			r.Delete("/addresses/{addressID}", controllers.DeleteAddress(deps.Accounts, logg))

			r.Get("/orders", controllers.ListOrders(deps.Orders, logg))
			r.Get("/orders/{orderID}", controllers.GetOrder(deps.Orders, logg))
			r.Post("/orders/{orderID}/cancel", controllers.CancelOrder(deps.Orders, logg))

			r.Post("/wishlist/toggle", controllers.ToggleWishlist(deps.Wishlist, logg))
			r.Get("/wishlist", controllers.ListWishlist(deps.Wishlist, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))

		r.Post("/feedback/approve", controllers.ApproveFeedback(deps.Feedback, logg))
		r.Post("/feedback/reject", controllers.RejectFeedback(deps.Feedback, logg))
	})

	return r
}
