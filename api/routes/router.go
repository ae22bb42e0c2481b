package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohdashiqtp/procurement-app/api/controllers"
	"github.com/mohdashiqtp/procurement-app/api/middleware"
	"github.com/mohdashiqtp/procurement-app/internal/auth"
	"github.com/mohdashiqtp/procurement-app/internal/items"
	"github.com/mohdashiqtp/procurement-app/internal/purchaseorders"
	"github.com/mohdashiqtp/procurement-app/internal/suppliers"
	"github.com/mohdashiqtp/procurement-app/pkg/auth/session"
	"github.com/mohdashiqtp/procurement-app/pkg/config"
	"github.com/mohdashiqtp/procurement-app/pkg/logger"
	"github.com/mohdashiqtp/procurement-app/pkg/metrics"
)

type sessionManager interface {
	session.Checker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// RateLimiter is the fixed-window counter store; *redis.Client satisfies it.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Observability carries the metric collectors and the registry /metrics serves.
type Observability struct {
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	limiter RateLimiter,
	sessionManager sessionManager,
	authService auth.Service,
	supplierService suppliers.Service,
	itemService items.Service,
	orderService purchaseorders.Service,
	obs Observability,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(obs.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)
	requireAuth := middleware.Auth(cfg.JWT, sessionManager, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"database": dbP,
			"redis":    redisP,
		}, logg))
	})

	if obs.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(obs.Gatherer, promhttp.HandlerOpts{}))
	}

	uploads := "/" + strings.Trim(cfg.Uploads.PublicPath, "/")
	r.Handle(uploads+"/*", http.StripPrefix(uploads+"/", http.FileServer(http.Dir(cfg.Uploads.Dir))))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit.Window, cfg.RateLimit.Requests, limiter, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(authService, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(authService, logg))
			r.Post("/refresh-token", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
			r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
			r.With(requireAuth).Get("/me", controllers.AuthMe(authService, logg))
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemList(itemService, logg))
			r.Get("/{id}", controllers.ItemGet(itemService, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", controllers.ItemCreate(itemService, logg))
				r.Post("/bulk", controllers.ItemBulk(itemService, logg))
				r.Put("/{id}", controllers.ItemUpdate(itemService, logg))
				r.Delete("/{id}", controllers.ItemDelete(itemService, logg))
				r.Post("/{id}/images", controllers.ItemAddImages(itemService, cfg.Uploads, logg))
				r.Delete("/{id}/images/{name}", controllers.ItemRemoveImage(itemService, logg))
			})
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.SupplierList(supplierService, logg))
			r.Post("/", controllers.SupplierCreate(supplierService, logg))
			r.Get("/country/{country}", controllers.SupplierListByCountry(supplierService, logg))
			r.Get("/{id}", controllers.SupplierGet(supplierService, logg))
			r.Put("/{id}", controllers.SupplierUpdate(supplierService, logg))
			r.Delete("/{id}", controllers.SupplierDelete(supplierService, logg))
			r.Patch("/{id}/activate", controllers.SupplierActivate(supplierService, logg))
		})

		r.Route("/purchase-order", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.PurchaseOrderList(orderService, logg))
			r.Post("/add", controllers.PurchaseOrderCreate(orderService, logg))
			r.Get("/total", controllers.PurchaseOrderTotals(orderService, logg))
			r.Get("/{id}", controllers.PurchaseOrderGet(orderService, logg))
			r.Put("/{id}", controllers.PurchaseOrderUpdate(orderService, logg))
			r.Delete("/{id}", controllers.PurchaseOrderDelete(orderService, logg))
		})
	})

	return r
}
