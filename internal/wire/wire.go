package wire

import (
	"context"
	"net/http"
	"time"

	"finance-tracker/internal/adaptor"
	"finance-tracker/internal/data/repository"
	"finance-tracker/internal/usecase"
	"finance-tracker/pkg/metrics"
	"finance-tracker/pkg/middleware"
	"finance-tracker/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Pinger is checked by /health. The database pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App holds the router and what it was built from.
type App struct {
	Router   *chi.Mux
	Service  *usecase.Service
	Registry *prometheus.Registry
}

// Wiring builds services, handlers and routes. db and redisClient may be
// nil; without Redis the rate limiters run in memory.
func Wiring(repo *repository.Repository, db Pinger, redisClient *redis.Client, config *utils.Config, logger *zap.Logger) *App {
	registry := prometheus.NewRegistry()
	metrics.RegisterCollectors(registry)

	service := usecase.NewService(repo, usecase.NewLogMailer(logger), config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	return &App{
		Router:   setupRouter(handler, service, db, redisClient, registry, config, logger),
		Service:  service,
		Registry: registry,
	}
}

type limiters struct {
	general func(http.Handler) http.Handler
	auth    func(http.Handler) http.Handler
	reset   func(http.Handler) http.Handler
}

func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	db Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RealIP(config.App.TrustedProxies))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.CORS.AllowedOrigins))

	rl := config.RateLimit
	limit := limiters{
		general: middleware.RateLimit(redisClient, middleware.RateLimitRule{Name: "general", Limit: rl.GeneralLimit, Window: rl.GeneralWindow}, logger),
		auth:    middleware.RateLimit(redisClient, middleware.RateLimitRule{Name: "auth", Limit: rl.AuthLimit, Window: rl.AuthWindow}, logger),
		reset:   middleware.RateLimit(redisClient, middleware.RateLimitRule{Name: "password_reset", Limit: rl.ResetLimit, Window: rl.ResetWindow}, logger),
	}
	guard := middleware.Authenticate(service.Guard, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limit.general)

		wireAuth(r, handler.Auth, guard, limit)
		wireUser(r, handler.User, handler.Session, guard)
		wirePasswordReset(r, handler.PasswordReset, limit)
		wireFinance(r, handler.Category, handler.Transaction, guard)
	})

	r.Get("/health", health(db))
	r.Handle("/metrics", metrics.Handler(registry))

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				utils.ResponseError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unavailable", nil)
				return
			}
		}
		utils.ResponseSuccess(w, "OK", map[string]string{"status": "healthy"})
	}
}
