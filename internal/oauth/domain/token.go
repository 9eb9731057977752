package domain

import "time"

// AccessToken models a stored opaque bearer token. The token value itself is
// only ever returned once, in the issuance response; the store keeps a
// deterministic SHA-256 fingerprint.
type AccessToken struct {
	ID        string
	TokenHash string
	ClientID  string
	SubjectID string // empty for client_credentials grants
	TenantID  string
	Scopes    []string
	GrantType GrantType

	// GrantID groups the access and refresh tokens minted in one grant so
	// revocation can cascade across the pair. CodeID records the
	// authorization code row the grant consumed, for replay defense.
	GrantID string
	CodeID  string

	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// RefreshToken models a stored opaque refresh token.
type RefreshToken struct {
	ID        string
	TokenHash string
	ClientID  string
	SubjectID string
	TenantID  string
	Scopes    []string

	GrantID string
	CodeID  string

	// RotatedFrom is the id of the predecessor token when rotation-on-use
	// minted this one.
	RotatedFrom string

	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// Expired reports whether the access token has passed its expiry at the
// given instant.
func (t AccessToken) Expired(now time.Time) bool { return now.After(t.ExpiresAt) }

// Expired reports whether the refresh token has passed its expiry.
func (t RefreshToken) Expired(now time.Time) bool { return now.After(t.ExpiresAt) }

// IssuedTokens is what the grant engine hands back on success: the opaque
// token values (plaintext, shown once) plus response metadata.
type IssuedTokens struct {
	AccessToken  string
	RefreshToken string // empty when the grant does not mint one
	ExpiresIn    time.Duration
	Scope        []string
}
