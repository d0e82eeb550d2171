package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/akashgupta/shopkart-backend/api/routes"
	"github.com/akashgupta/shopkart-backend/internal/accounts"
	cartsvc "github.com/akashgupta/shopkart-backend/internal/cart"
	"github.com/akashgupta/shopkart-backend/internal/catalog"
	checkoutsvc "github.com/akashgupta/shopkart-backend/internal/checkout"
	"github.com/akashgupta/shopkart-backend/internal/feedback"
	"github.com/akashgupta/shopkart-backend/internal/orders"
	"github.com/akashgupta/shopkart-backend/internal/wishlist"
	authsession "github.com/akashgupta/shopkart-backend/pkg/auth/session"
	"github.com/akashgupta/shopkart-backend/pkg/config"
	"github.com/akashgupta/shopkart-backend/pkg/db"
	"github.com/akashgupta/shopkart-backend/pkg/logger"
	"github.com/akashgupta/shopkart-backend/pkg/mailer"
	"github.com/akashgupta/shopkart-backend/pkg/migrate"
	"github.com/akashgupta/shopkart-backend/pkg/razorpay"
	"github.com/akashgupta/shopkart-backend/pkg/redis"
	"github.com/akashgupta/shopkart-backend/pkg/session"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := authsession.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	sessionStore, err := session.NewStore(redisClient, cfg.Session.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}

	gateway, err := razorpay.New(cfg.Razorpay)
	if err != nil {
		logg.Error(context.Background(), "failed to create razorpay client", err)
		os.Exit(1)
	}

	sendgrid, err := mailer.NewSendgrid(cfg.Sendgrid)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalog.ServiceParams{Repo: catalogRepo})
	exitOnError(logg, "catalog service", err)

	cartService, err := cartsvc.NewService(cartsvc.ServiceParams{
		Sessions: sessionStore,
		Products: catalogRepo,
	})
	exitOnError(logg, "cart service", err)

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Repo:     checkoutsvc.NewRepository(dbClient.DB()),
		Carts:    cartService,
		Sessions: sessionStore,
		Products: catalogRepo,
		Gateway:  gateway,
	})
	exitOnError(logg, "checkout service", err)

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo: orders.NewRepository(dbClient.DB()),
	})
	exitOnError(logg, "orders service", err)

	accountsService, err := accounts.NewService(accounts.ServiceParams{
		Repo:     accounts.NewRepository(dbClient.DB()),
		Sessions: sessionStore,
		Tokens:   sessionManager,
		Mailer:   sendgrid,
		JWT:      cfg.JWT,
		Password: cfg.Password,
		Signup:   cfg.Signup,
	})
	exitOnError(logg, "accounts service", err)

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:     wishlist.NewRepository(dbClient.DB()),
		Products: catalogRepo,
	})
	exitOnError(logg, "wishlist service", err)

	feedbackService, err := feedback.NewService(feedback.ServiceParams{
		Repo:     feedback.NewRepository(dbClient.DB()),
		Products: catalogRepo,
		SiteURL:  cfg.App.SiteURL,
	})
	exitOnError(logg, "feedback service", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Sessions: sessionManager,
			Registry: registry,
			Catalog:  catalogService,
			Cart:     cartService,
			Checkout: checkoutService,
			Orders:   ordersService,
			Accounts: accountsService,
			Wishlist: wishlistService,
			Feedback: feedbackService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
