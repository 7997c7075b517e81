package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"subscription-cancellation/internal/config"
	"subscription-cancellation/internal/infra/security"
	"subscription-cancellation/internal/usecase"
)

// Server wires the two cancellation endpoints and their guards.
type Server struct {
	cancelUC  usecase.CancellationUseCase
	csrf      *security.CSRFManager
	limiter   *security.RateLimiter
	validator *security.Validator
	cfg       *config.Config
	log       *zerolog.Logger
}

func NewServer(
	cancelUC usecase.CancellationUseCase,
	csrf *security.CSRFManager,
	limiter *security.RateLimiter,
	cfg *config.Config,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		cancelUC:  cancelUC,
		csrf:      csrf,
		limiter:   limiter,
		validator: security.NewValidator(),
		cfg:       cfg,
		log:       logger,
	}
}

// Router builds the public router with the full middleware chain.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "x-csrf-token"},
		ExposedHeaders:   []string{"X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	base := []Middleware{
		TraceID(s.log),
		Recover(s.log),
		RequestLog(s.log),
		Timeout(s.cfg.Server.RequestTimeout),
		SessionKey(),
	}

	variantRule := s.cfg.Security.VariantLimit
	submitRule := s.cfg.Security.SubmitLimit

	r.Method(http.MethodGet, "/api/cancellation", Chain(
		http.HandlerFunc(s.handleGetVariant),
		append(base, RateLimit(s.limiter, "get", variantRule.MaxRequests, variantRule.Window, s.log))...,
	))
	r.Method(http.MethodPost, "/api/cancellation", Chain(
		http.HandlerFunc(s.handleSubmit),
		append(base,
			RateLimit(s.limiter, "post", submitRule.MaxRequests, submitRule.Window, s.log),
			RequireCSRF(s.csrf, s.log),
		)...,
	))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
