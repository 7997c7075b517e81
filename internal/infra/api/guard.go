package api

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"subscription-cancellation/internal/infra/logging"
	"subscription-cancellation/internal/infra/metrics"
	"subscription-cancellation/internal/infra/security"
)

type Middleware func(http.Handler) http.Handler

func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func TraceID(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tid := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
			ctx := logging.WithTraceID(r.Context(), tid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequestLog(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logging.With(r.Context(), logger)
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)
			metrics.ObserveHTTPRequest(r.Method, r.URL.Path, fmt.Sprint(ww.status), elapsed.Seconds())
			l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.status).
				Dur("duration", elapsed).
				Msg("http_request")
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func Recover(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l := logging.With(r.Context(), logger)
					l.Error().Interface("panic", rec).Msg("panic recovered")
					http.Error(w, "internal error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type sessionKeyCtx struct{}

// SessionKey derives a per-caller key from the user agent and client IP and
// stores it on the context. Rate limiting and CSRF scoping both hang off it.
// Proxied addresses are honored in x-forwarded-for order.
func SessionKey() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := deriveSessionKey(r)
			ctx := context.WithValue(r.Context(), sessionKeyCtx{}, key)
			ctx = logging.WithSessionKey(ctx, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionKeyFrom returns the caller key set by the SessionKey middleware.
func SessionKeyFrom(ctx context.Context) string {
	if v := ctx.Value(sessionKeyCtx{}); v != nil {
		return v.(string)
	}
	return ""
}

func deriveSessionKey(r *http.Request) string {
	sum := sha256.Sum256([]byte(r.UserAgent() + "|" + clientIP(r)))
	return hex.EncodeToString(sum[:16])
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("x-forwarded-for"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("x-real-ip"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests beyond the rule's window with 429. The scope
// names the endpoint so variant fetches and submissions count separately.
func RateLimit(limiter *security.RateLimiter, scope string, limit int, window time.Duration, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + SessionKeyFrom(r.Context())
			ok, err := limiter.Allow(r.Context(), key, limit, window)
			if err != nil {
				l := logging.With(r.Context(), logger)
				l.Error().Err(err).Msg("rate limiter unavailable")
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !ok {
				metrics.IncRateLimitRejected(scope)
				writeError(w, http.StatusTooManyRequests, "too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCSRF rejects submissions whose x-csrf-token header does not match
// the live token for this session.
func RequireCSRF(csrf *security.CSRFManager, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("x-csrf-token")
			if !csrf.Validate(r.Context(), SessionKeyFrom(r.Context()), token) {
				metrics.IncCSRFRejected()
				l := logging.With(r.Context(), logger)
				l.Warn().Msg("csrf validation failed")
				writeError(w, http.StatusForbidden, "invalid or missing CSRF token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
