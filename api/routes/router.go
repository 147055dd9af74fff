package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/angelmondragon/shoefinderz-backend/api/controllers"
	authcontrollers "github.com/angelmondragon/shoefinderz-backend/api/controllers/auth"
	ordercontrollers "github.com/angelmondragon/shoefinderz-backend/api/controllers/orders"
	"github.com/angelmondragon/shoefinderz-backend/api/middleware"
	"github.com/angelmondragon/shoefinderz-backend/internal/auth"
	"github.com/angelmondragon/shoefinderz-backend/internal/orders"
	products "github.com/angelmondragon/shoefinderz-backend/internal/products"
	"github.com/angelmondragon/shoefinderz-backend/pkg/auth/session"
	"github.com/angelmondragon/shoefinderz-backend/pkg/config"
	"github.com/angelmondragon/shoefinderz-backend/pkg/db"
	"github.com/angelmondragon/shoefinderz-backend/pkg/enums"
	"github.com/angelmondragon/shoefinderz-backend/pkg/logger"
	"github.com/angelmondragon/shoefinderz-backend/pkg/metrics"
	"github.com/angelmondragon/shoefinderz-backend/pkg/redis"
)

// NewRouter mounts the health probes, the Prometheus scrape endpoint and the
// /api/v1 storefront surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	productService products.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		otelhttp.NewMiddleware("shoefinderz-api", otelhttp.WithFilter(traced)),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginIdentifierLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupIdentifierLimit,
	)

	// Interface values stay nil when Redis is absent so the middleware
	// degrades to pass-through instead of dereferencing a nil client.
	var (
		rateStore        middleware.RateLimiterStore
		idempotencyStore redis.IdempotencyStore
	)
	readiness := map[string]controllers.Pinger{}
	if dbP != nil {
		readiness["db"] = dbP
	}
	if redisClient != nil {
		rateStore = redisClient
		idempotencyStore = redisClient
		readiness["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	requireAuth := middleware.Auth(cfg.JWT, sessionManager, logg)
	requireAdmin := middleware.RequireRole(logg, enums.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", authcontrollers.AuthLogin(authService, logg))
			r.With(middleware.AuthRateLimit(signupPolicy, rateStore, logg)).Post("/signup", authcontrollers.AuthSignup(authService, logg))
			r.Post("/refresh", authcontrollers.AuthRefresh(authService, logg))
			r.Post("/logout", authcontrollers.AuthLogout(authService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Get("/{productId}", controllers.GetProduct(productService, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireAdmin)
				r.Post("/", controllers.AdminCreateProduct(productService, logg))
				r.Put("/{productId}", controllers.AdminUpdateProduct(productService, logg))
				r.Delete("/{productId}", controllers.AdminDeleteProduct(productService, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(
				middleware.RequireRole(logg, enums.RoleBuyer, enums.RoleAdmin),
				middleware.Idempotency(idempotencyStore, cfg.Orders.IdempotencyTTL, logg),
			).Post("/", ordercontrollers.Place(ordersService, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/", ordercontrollers.List(ordersService, cfg.Orders.DefaultPageSize, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(ordersService, logg))
			})
		})
	})

	return r
}

// traced skips probes and scrapes.
func traced(r *http.Request) bool {
	return !strings.HasPrefix(r.URL.Path, "/health") && r.URL.Path != "/metrics"
}
