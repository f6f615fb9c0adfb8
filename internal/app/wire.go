package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patience/platform/internal/guard"
	"github.com/patience/platform/internal/handler"
	"github.com/patience/platform/internal/infra"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Games  handler.GameService
	Logger *slog.Logger
	// Dependencies pinged by /health, keyed by name. Empty in memory mode.
	Health map[string]infra.Pinger

	AllowedOrigins     []string
	RateLimitPerMinute int
	IdempotencyTTL     time.Duration
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	gameHandler := handler.NewGameHandler(deps.Games)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(origins...))
	r.Use(handler.JSONContentType)

	// Health (not rate limited)
	r.Get("/health", handler.HealthHandler(deps.Health))

	r.Group(func(r chi.Router) {
		r.Use(handler.RateLimit(guard.NewRateLimiter(deps.RateLimitPerMinute, time.Minute)))
		r.Use(handler.Idempotency(guard.NewIdempotencyGuard(ttl)))

		gameHandler.Routes(r)
	})

	return r
}
