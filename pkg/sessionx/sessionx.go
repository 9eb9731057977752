// Package sessionx mints and verifies the signed session tokens that
// authenticate the management surface. A session token maps an authenticated
// browser session to a subject id and tenant id; it is entirely separate from
// the opaque OAuth tokens the grant engine issues.
package sessionx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultSessionTTL = 12 * time.Hour

var (
	ErrInvalidSession = errors.New("sessionx: invalid session token")
	ErrExpiredSession = errors.New("sessionx: session token expired")
)

// Identity is what a verified session token resolves to.
type Identity struct {
	SubjectID string
	TenantID  string
}

// Claims are the JWT claims carried by a session token.
type Claims struct {
	TenantID string `json:"tid"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with an HMAC key shared with the
// session-issuing service.
type Manager struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

func NewManager(key []byte, issuer string, ttl time.Duration) (*Manager, error) {
	if len(key) < 32 {
		return nil, errors.New("sessionx: signing key must be at least 32 bytes")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{key: key, issuer: issuer, ttl: ttl}, nil
}

// Mint issues a session token for the given identity. The session service
// calls this at login; tests use it to fabricate sessions.
func (m *Manager) Mint(id Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		TenantID: id.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.SubjectID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sessionx: sign: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token, returning the identity it
// resolves to.
func (m *Manager) Verify(raw string) (Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sessionx: unexpected signing method %q", t.Method.Alg())
		}
		return m.key, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredSession
		}
		return Identity{}, ErrInvalidSession
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidSession
	}

	return Identity{SubjectID: claims.Subject, TenantID: claims.TenantID}, nil
}
