package security

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const csrfTokenBytes = 32

// CSRFManager issues one-per-session tokens and checks them on submission.
type CSRFManager struct {
	store TokenStore
	ttl   time.Duration
}

func NewCSRFManager(store TokenStore, ttl time.Duration) *CSRFManager {
	return &CSRFManager{store: store, ttl: ttl}
}

// Issue mints a fresh token for the session, replacing any previous one.
func (m *CSRFManager) Issue(ctx context.Context, sessionKey string) (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	token := hex.EncodeToString(buf)
	if err := m.store.Set(ctx, "csrf:"+sessionKey, token, m.ttl); err != nil {
		return "", fmt.Errorf("store csrf token: %w", err)
	}
	return token, nil
}

// Validate reports whether the presented token matches the live token for the
// session. A missing or expired token never matches.
func (m *CSRFManager) Validate(ctx context.Context, sessionKey, token string) bool {
	if token == "" {
		return false
	}
	stored, err := m.store.Get(ctx, "csrf:"+sessionKey)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(stored), []byte(token))
}
