package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/athukorala/storefront-api/api/controllers"
	"github.com/athukorala/storefront-api/api/middleware"
	cartsvc "github.com/athukorala/storefront-api/internal/cart"
	catalogsvc "github.com/athukorala/storefront-api/internal/catalog"
	checkoutsvc "github.com/athukorala/storefront-api/internal/checkout"
	ordersvc "github.com/athukorala/storefront-api/internal/orders"
	paymentsvc "github.com/athukorala/storefront-api/internal/payments"
	"github.com/athukorala/storefront-api/pkg/config"
	"github.com/athukorala/storefront-api/pkg/logger"
	"github.com/athukorala/storefront-api/pkg/redis"
)

type sessionEnsurer interface {
	Ensure(ctx context.Context, presented string) (string, bool, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	sessions sessionEnsurer,
	catalogService catalogsvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	gatewayService paymentsvc.Service,
	ordersService ordersvc.Service,
	metricsGatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisClient))
	})

	if metricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Session(sessions, cfg.Session, logg),
			middleware.CustomerToken(cfg.Token, logg),
		)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.CatalogList(catalogService, logg))
			r.Get("/products/{productId}", controllers.CatalogGet(catalogService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Get("/can-add", controllers.CartCanAdd(cartService, catalogService, logg))
			r.Post("/validate-stock", controllers.CartValidateStock(cartService, catalogService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, catalogService, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(cartService, catalogService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutQuote(checkoutService, logg))
			r.Post("/", controllers.CheckoutSubmit(checkoutService, logg))
			r.Get("/feedback", controllers.CheckoutFeedback(gatewayService, logg))
		})

		r.Route("/gateway/{method}", func(r chi.Router) {
			r.Post("/start", controllers.GatewayStart(gatewayService, checkoutService, logg))
			r.Get("/", controllers.GatewayPrefill(gatewayService, logg))
			r.Post("/authorize", controllers.GatewayAuthorize(gatewayService, logg))
			r.Post("/fail", controllers.GatewayFail(gatewayService, logg))
			r.Delete("/", controllers.GatewayDisconnect(gatewayService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/last", controllers.OrdersLast(ordersService, logg))
			r.With(middleware.RequireCustomer(logg)).Get("/", controllers.OrdersList(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			r.Put("/{orderId}/status", controllers.OrderUpdateStatus(ordersService, logg))
		})
	})

	return r
}
