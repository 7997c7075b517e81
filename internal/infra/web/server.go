package web

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"subscription-cancellation/internal/domain/ports/repository"
	"subscription-cancellation/internal/usecase"
)

// Server is the operator-facing surface: login, read-only cancellation and
// user lookups, and the Prometheus scrape endpoint. It listens on the admin
// port, never the public one.
type Server struct {
	cancelUC usecase.CancellationUseCase
	userRepo repository.UserRepository
	auth     *AuthManager
	apiKey   string
	log      *zerolog.Logger
}

func NewServer(
	cancelUC usecase.CancellationUseCase,
	userRepo repository.UserRepository,
	auth *AuthManager,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		cancelUC: cancelUC,
		userRepo: userRepo,
		auth:     auth,
		apiKey:   apiKey,
		log:      logger,
	}
}

// RegisterRoutes sets up the routing for the admin API.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/auth/login", s.loginHandler)
	mux.HandleFunc("/api/v1/auth/logout", s.logoutHandler)

	cancellationsRouter := s.authMiddleware(s.cancellationsRouter())
	mux.Handle("/api/v1/cancellations/", cancellationsRouter)

	mux.Handle("/api/v1/users", s.authMiddleware(usersListHandler(s.userRepo)))

	mux.Handle("/metrics", promhttp.Handler())
}

// authMiddleware requires a valid admin session minted by the login endpoint.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loginHandler exchanges the configured API key for a short-lived session.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.apiKey == "" {
		s.log.Error().Msg("Admin API key is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	authHeader := r.Header.Get("Authorization")
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
		http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
		return
	}
	if subtle.ConstantTimeCompare([]byte(tokenParts[1]), []byte(s.apiKey)) != 1 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if _, err := s.auth.Mint(w); err != nil {
		s.log.Error().Err(err).Msg("failed to mint admin session")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) cancellationsRouter() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		userID := strings.TrimPrefix(r.URL.Path, "/api/v1/cancellations/")
		userID = strings.TrimSuffix(userID, "/")
		if userID == "" {
			http.Error(w, "Missing user id", http.StatusBadRequest)
			return
		}
		cancellationGetHandler(s.cancelUC, userID)(w, r)
	})
}
