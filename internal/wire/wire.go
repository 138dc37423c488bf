// internal/wire/wire.go
package wire

import (
	"net/http"

	"woodeoo-auth/internal/adaptor"
	"woodeoo-auth/internal/data/repository"
	"woodeoo-auth/internal/notify"
	"woodeoo-auth/internal/routes"
	"woodeoo-auth/internal/usecase"
	"woodeoo-auth/pkg/metrics"
	"woodeoo-auth/pkg/middleware"
	"woodeoo-auth/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the router and the pieces that must be stopped on shutdown.
type App struct {
	Router  *chi.Mux
	limiter *middleware.AuthRateLimiter
}

// Close stops background goroutines owned by the app.
func (a *App) Close() {
	a.limiter.Stop()
}

// Wiring builds services, handlers and the router.
func Wiring(repo *repository.Repository, config *utils.Config, notifier notify.Notifier, logger *zap.Logger) (*App, error) {
	table, err := routes.New(config.Routes)
	if err != nil {
		return nil, err
	}

	service := usecase.NewService(repo, config, notifier, logger)
	handler := adaptor.NewHandler(service, logger)
	limiter := middleware.NewAuthRateLimiter(config.RateLimit, logger)

	router := setupRouter(handler, repo, config, table, limiter, logger)

	return &App{
		Router:  router,
		limiter: limiter,
	}, nil
}

// setupRouter configures the chi router
func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	table routes.Table,
	limiter *middleware.AuthRateLimiter,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RealIP(config.App.TrustProxy))
	r.Use(middleware.Logger(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeaders(config.App.SecureHeaders))
	r.Use(middleware.CORS(config.App.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseMethodNotAllowed(w, "")
	})

	// Apply routes
	wireAuth(r, handler.Auth, repo, limiter, logger)
	wireUser(r, handler.User, repo, logger)
	wireLegacy(r, table)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseSuccess(w, "OK", map[string]string{"service": config.App.Name})
	})

	r.With(middleware.MetricsAuth(config.Metrics.Username, config.Metrics.Password)).
		Handle("/metrics", promhttp.Handler())

	return r
}
