package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Admin sessions are short-lived HS256 tokens minted after an API-key login.
// The token travels either as the session cookie or as a bearer header, so
// both browser dashboards and scripted review tooling can use the surface.
const (
	sessionCookie  = "cancel_admin_session"
	sessionIssuer  = "subscription-cancellation"
	sessionSubject = "cancellation-review"
)

type AuthManager struct {
	secret []byte
	domain string
	secure bool
	ttl    time.Duration
}

func NewAuthManager(secret string, secure bool, domain string, ttl time.Duration) *AuthManager {
	return &AuthManager{
		secret: []byte(secret),
		domain: domain, // empty means host-only cookie
		secure: secure,
		ttl:    ttl,
	}
}

// Mint issues a fresh session token and sets it as the session cookie. The
// signed token is also returned for bearer-style clients.
func (a *AuthManager) Mint(w http.ResponseWriter) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   sessionSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", err
	}
	a.setCookie(w, signed, int(a.ttl.Seconds()))
	return signed, nil
}

// Clear expires the session cookie.
func (a *AuthManager) Clear(w http.ResponseWriter) {
	a.setCookie(w, "", -1)
}

func (a *AuthManager) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		Domain:   a.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ParseFromRequest accepts the session from the bearer header or the cookie
// and reports whether it is a valid, unexpired session this manager minted.
func (a *AuthManager) ParseFromRequest(r *http.Request) error {
	if hdr := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return a.verify(strings.TrimSpace(hdr[7:]))
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return a.verify(c.Value)
	}
	return errors.New("missing session")
}

func (a *AuthManager) verify(tok string) error {
	parsed, err := jwt.Parse(tok,
		func(t *jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return errors.New("invalid session")
	}
	return nil
}
