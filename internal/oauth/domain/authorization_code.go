package domain

import "time"

// AuthorizationCode is a short-lived, single-use code binding a client,
// redirect URI, subject and scope set. The opaque code value is stored only
// as a SHA-256 fingerprint.
type AuthorizationCode struct {
	ID                  string
	CodeHash            string
	ClientID            string
	RedirectURI         string
	SubjectID           string
	TenantID            string
	Scopes              []string
	CodeChallenge       string
	CodeChallengeMethod string
	ExpiresAt           time.Time
	UsedAt              *time.Time
	CreatedAt           time.Time
}
