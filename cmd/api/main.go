package main

import (
	"context"
	"net/http"
	"os"

	"github.com/athukorala/storefront-api/api/routes"
	cartsvc "github.com/athukorala/storefront-api/internal/cart"
	catalogsvc "github.com/athukorala/storefront-api/internal/catalog"
	checkoutsvc "github.com/athukorala/storefront-api/internal/checkout"
	ordersvc "github.com/athukorala/storefront-api/internal/orders"
	paymentsvc "github.com/athukorala/storefront-api/internal/payments"
	"github.com/athukorala/storefront-api/internal/session"
	"github.com/athukorala/storefront-api/pkg/backend"
	"github.com/athukorala/storefront-api/pkg/config"
	"github.com/athukorala/storefront-api/pkg/logger"
	"github.com/athukorala/storefront-api/pkg/metrics"
	"github.com/athukorala/storefront-api/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	catalogClient, err := backend.NewCatalogClient(cfg.Backend.CatalogURL(), backend.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog client", err)
		os.Exit(1)
	}
	ordersClient, err := backend.NewOrdersClient(cfg.Backend.OrdersURL(), backend.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create orders client", err)
		os.Exit(1)
	}
	paymentsClient, err := backend.NewPaymentsClient(cfg.Backend.PaymentsURL(), backend.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create payments client", err)
		os.Exit(1)
	}
	notificationsClient, err := backend.NewNotificationsClient(cfg.Backend.NotificationsURL(), backend.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	sessions, err := session.NewManager(redisClient, cfg.Session.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	cartStore, err := cartsvc.NewRedisStore(redisClient, cfg.Session.CartTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}
	cartService, err := cartsvc.NewService(cartStore, storefrontMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	catalogService, err := catalogsvc.NewService(catalogClient, logg, storefrontMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	draftStore, err := paymentsvc.NewRedisStore(redisClient, cfg.Session.DraftTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment draft store", err)
		os.Exit(1)
	}
	gatewayService, err := paymentsvc.NewService(draftStore, paymentsClient, logg, storefrontMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway service", err)
		os.Exit(1)
	}

	pricing, err := ordersvc.NewPricing(cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "invalid checkout pricing config", err)
		os.Exit(1)
	}
	orderStore, err := ordersvc.NewRedisStore(redisClient, cfg.Session.OrderTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order summary store", err)
		os.Exit(1)
	}
	ordersService, err := ordersvc.NewService(ordersClient, paymentsClient, notificationsClient, orderStore, cartService, pricing, logg, storefrontMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(cartService, gatewayService, ordersService, logg, storefrontMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			redisClient,
			sessions,
			catalogService,
			cartService,
			checkoutService,
			gatewayService,
			ordersService,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
