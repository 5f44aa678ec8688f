package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	auth "github.com/mind-engage/mindengage-fuzzyeval/internal/auth/middleware"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/evaluation"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/fuzzy"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/logging"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/rbac"
)

// Deps is everything the router serves.
type Deps struct {
	Service *evaluation.Service
	System  *fuzzy.System

	Auth        *auth.AuthService
	Credentials auth.Credentials
	LocalLogin  bool

	Limiter      *rate.Limiter // nil disables rate limiting
	MaxBatchSize int
	Metrics      http.Handler // nil leaves /metrics unmounted
	Ready        func(ctx context.Context) error

	CORSOrigins []string
	Timeout     time.Duration
	Logger      *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Timeout <= 0 {
		d.Timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.RequestLogger(d.Logger), middleware.Recoverer)
	r.Use(middleware.Timeout(d.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.LocalLogin {
		r.Post("/auth/login", auth.LoginHandler(d.Auth, d.Credentials))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))

		pr.With(rbac.Require(rbac.PermEvaluationCreate), RateLimit(d.Limiter)).
			Post("/evaluations", CreateEvaluationHandler(d.Service))
		pr.With(rbac.Require(rbac.PermEvaluationCreate), RateLimit(d.Limiter)).
			Post("/evaluations/batch", BatchEvaluationHandler(d.Service, d.MaxBatchSize))

		pr.With(rbac.RequireAny(rbac.PermEvaluationViewOwn, rbac.PermEvaluationViewAll)).
			Get("/evaluations", ListEvaluationsHandler(d.Service))
		pr.With(rbac.RequireAny(rbac.PermEvaluationViewOwn, rbac.PermEvaluationViewAll)).
			Get("/evaluations/{id}", GetEvaluationHandler(d.Service))
		pr.With(rbac.RequireAny(rbac.PermEvaluationViewOwn, rbac.PermEvaluationViewAll)).
			Get("/evaluations/{id}/curve", GetCurveHandler(d.Service))

		if d.System != nil {
			pr.With(rbac.Require(rbac.PermRuleBaseView)).
				Get("/rulebase", RuleBaseHandler(d.System))
		}
	})

	r.Get("/classify", ClassifyHandler())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
	return r
}
