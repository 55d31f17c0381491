package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dispulse/sitecontent/internal/application"
	"github.com/dispulse/sitecontent/internal/domain/model"
	"github.com/dispulse/sitecontent/internal/metrics"
	"github.com/dispulse/sitecontent/internal/ratelimit"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler is the HTTP driving adapter that serves the content API.
type Handler struct {
	auth     *application.AuthService
	content  *application.ContentService
	metrics  *metrics.ServerMetrics
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	auth *application.AuthService,
	content *application.ContentService,
	m *metrics.ServerMetrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		auth:     auth,
		content:  content,
		metrics:  m,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// RouterOptions configures the parts of the router that vary by deployment.
type RouterOptions struct {
	// CanonicalHost is the redirect target for foreign hosts. Empty disables
	// the redirect.
	CanonicalHost string
	// LoginLimiter throttles POST /api/login per client IP. Nil disables it.
	LoginLimiter *ratelimit.IPLimiter
	// Static serves everything outside /api and /metrics. Nil yields 404.
	Static http.Handler
}

// NewRouter builds the full HTTP handler: middleware, API routes, the
// metrics endpoint and the static site fallback.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(recoveryMiddleware(h.logger, h.metrics))
	r.Use(requestIDMiddleware)
	r.Use(canonicalHostMiddleware(opts.CanonicalHost))
	r.Use(loggingMiddleware(h.logger))
	r.Use(h.metrics.Middleware)
	r.Use(maxBodyMiddleware(maxBodyBytes))

	r.Route("/api", func(r chi.Router) {
		r.Use(securityHeadersMiddleware)

		var loginMW []func(http.Handler) http.Handler
		if opts.LoginLimiter != nil {
			loginMW = append(loginMW, rateLimitMiddleware(opts.LoginLimiter, h.metrics, h.logger))
		}
		r.With(loginMW...).Post("/login", h.Login)

		r.With(h.requireAuth).Get("/me", h.Me)

		r.Get("/content", h.ListContent)
		r.Post("/content/seed", h.SeedContent)
		r.With(h.requireAuth).Put("/content/", h.PutContent)
		r.With(h.requireAuth).Put("/content/{key}", h.PutContent)

		r.Get("/health", h.Health)

		r.NotFound(apiNotFound)
		r.MethodNotAllowed(apiNotFound)
	})

	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	static := opts.Static
	if static == nil {
		static = http.NotFoundHandler()
	}
	r.NotFound(static.ServeHTTP)
	r.MethodNotAllowed(static.ServeHTTP)

	return r
}

func apiNotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, model.ErrNotFound().Message)
}
