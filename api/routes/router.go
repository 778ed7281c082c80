package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freshkart/orders-backend/api/controllers"
	"github.com/freshkart/orders-backend/api/middleware"
	"github.com/freshkart/orders-backend/internal/orders"
	"github.com/freshkart/orders-backend/internal/payments"
	"github.com/freshkart/orders-backend/pkg/auth"
	"github.com/freshkart/orders-backend/pkg/config"
	"github.com/freshkart/orders-backend/pkg/logger"
	pkgredis "github.com/freshkart/orders-backend/pkg/redis"
)

// Pingers carries the dependency handles the readiness probe checks.
type Pingers struct {
	DB     controllers.Pinger
	Redis  controllers.Pinger
	PubSub controllers.Pinger
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pingers Pingers,
	idemStore pkgredis.IdempotencyStore,
	ordersSvc orders.Service,
	paymentsSvc payments.Service,
	gatherer prometheus.Gatherer,
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": pingers.DB,
			"redis":    pingers.Redis,
			"pubsub":   pingers.PubSub,
		}))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// The payment routes predate the /api/v1 prefix and keep their original
	// paths; the storefront checkout widget is hard-wired to them.
	r.Route("/payment", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Post("/create-order", controllers.CreatePaymentOrder(paymentsSvc, logg))
		r.Post("/verify-payment", controllers.VerifyPayment(paymentsSvc, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/", controllers.ListOrders(ordersSvc, logg))
		r.Get("/{orderId}", controllers.GetOrder(ordersSvc, logg))
		r.With(middleware.RequireCapability(auth.CapabilityOrderCreate, logg)).
			Post("/", controllers.CreateOrder(ordersSvc, logg))
		r.With(middleware.RequireCapability(auth.CapabilityOrderCancel, logg)).
			Post("/{orderId}/cancel", controllers.CancelOrder(ordersSvc, logg))
	})

	r.Route("/api/admin/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.With(middleware.RequireCapability(auth.CapabilityOrderListAll, logg)).
			Get("/", controllers.AdminListOrders(ordersSvc, logg))
		r.With(middleware.RequireCapability(auth.CapabilityOrderAdvance, logg)).
			Post("/{orderId}/status", controllers.AdminUpdateOrderStatus(ordersSvc, logg))
	})

	return r
}
