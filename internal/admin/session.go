// Package admin implements the faucet's administrative surface:
// session issuance/validation, dashboard and settings operations, and
// the internal-bot authorization override.
package admin

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/suifx/faucet/internal/storage"
)

const sessionTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials is returned by Login on a bad username/password.
	ErrInvalidCredentials = errors.New("admin: invalid credentials")
	// ErrInvalidToken is returned by Validate for any token that fails
	// signature verification, has expired, or is not in the active set.
	ErrInvalidToken = errors.New("admin: invalid or revoked token")
)

// Claims is the JWT payload carried by admin session tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Session is a validated admin identity, derived from either a bearer
// token or the internal-bot override.
type Session struct {
	Subject string
	Role    storage.AdminRole
	IsBot   bool
}

// SessionManager issues and validates admin session tokens. Tokens are
// signed HMAC-SHA256 and additionally tracked in an in-process active
// set so logout can revoke a token before its expiry without needing a
// database round trip on every request.
type SessionManager struct {
	secret    []byte
	botSuffix string
	masterKey string
	mu        sync.RWMutex
	active    map[string]time.Time
}

// NewSessionManager constructs a SessionManager. masterKey and
// botSuffix implement the legacy-key-plus-bot-user-agent authorization
// override; either may be empty to disable it.
func NewSessionManager(secret []byte, masterKey, botSuffix string) *SessionManager {
	return &SessionManager{
		secret:    secret,
		botSuffix: botSuffix,
		masterKey: masterKey,
		active:    make(map[string]time.Time),
	}
}

// Issue signs a new token for the given admin and records it in the
// active set.
func (m *SessionManager) Issue(subject string, role storage.AdminRole) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(sessionTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "admin",
			Audience:  jwt.ClaimStrings{"api"},
		},
		Role: string(role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	m.mu.Lock()
	m.active[signed] = expiresAt
	m.mu.Unlock()

	return signed, expiresAt, nil
}

// Revoke removes a token from the active set; a subsequent Validate
// call fails even though the signature is still valid.
func (m *SessionManager) Revoke(token string) {
	m.mu.Lock()
	delete(m.active, token)
	m.mu.Unlock()
}

// Validate checks signature validity and active-set membership.
func (m *SessionManager) Validate(token string) (*Session, error) {
	m.mu.RLock()
	expiresAt, tracked := m.active[token]
	m.mu.RUnlock()
	if !tracked || time.Now().After(expiresAt) {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return &Session{Subject: claims.Subject, Role: storage.AdminRole(claims.Role)}, nil
}

// BotOverride reports whether a request carries both a valid legacy
// master key and the internal bot's user-agent suffix. The key compare
// is constant-time to avoid timing side channels on the shared secret.
func (m *SessionManager) BotOverride(r *http.Request) bool {
	if m.masterKey == "" || m.botSuffix == "" {
		return false
	}
	if !strings.HasSuffix(r.UserAgent(), m.botSuffix) {
		return false
	}
	supplied := extractKey(r.Header)
	if len(supplied) != len(m.masterKey) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(m.masterKey)) == 1
}

func extractKey(h http.Header) string {
	if v := h.Get("X-API-Key"); v != "" {
		return v
	}
	if v := h.Get("Authorization"); v != "" {
		if after, ok := strings.CutPrefix(v, "Bearer "); ok {
			return after
		}
		return v
	}
	return ""
}
