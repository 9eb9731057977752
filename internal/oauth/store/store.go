package store

import (
	"context"
	"errors"

	"github.com/stackfort/oauthd/internal/oauth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// any store with an atomic conditional-update primitive tomorrow) implement
// it. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Clients() Clients
	AuthorizationCodes() AuthorizationCodes
	AccessTokens() AccessTokens
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST Commit() or Rollback() the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise. This is the recommended entry point
	// for multi-step operations that must be atomic (refresh rotation,
	// cascading revocation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Clients interface {
	// GetClientByID fetches a client for authentication or management reads.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClientsByOwner returns the owner's clients, newest first.
	ListClientsByOwner(ctx context.Context, ownerID string) ([]domain.Client, error)

	// CreateClient inserts a new client (id is a ULID; secret hash is empty
	// for public clients).
	CreateClient(ctx context.Context, c domain.Client) error

	// UpdateClient persists the mutable fields of c (name, redirect URIs,
	// scopes, grant types, active flag, lifetimes) and bumps updated_at.
	// It never touches the secret hash.
	UpdateClient(ctx context.Context, c domain.Client) error

	// UpdateClientSecretHash atomically replaces the stored secret hash.
	// The old secret is invalid the instant this commits.
	UpdateClientSecretHash(ctx context.Context, clientID, secretHash string) error

	// DeleteClient removes the client row. Token cleanup is the service's
	// responsibility and happens in the same transaction.
	DeleteClient(ctx context.Context, clientID string) error
}

type AuthorizationCodes interface {
	// CreateAuthorizationCode stores a freshly minted code.
	CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error

	// GetAuthorizationCodeByHash fetches a code by fingerprint at redemption.
	GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error)

	// ConsumeAuthorizationCode marks the code used if and only if it is
	// still unused: a conditional update with test-and-set semantics.
	// Returns false when another consumer got there first.
	ConsumeAuthorizationCode(ctx context.Context, id string) (bool, error)

	// DeleteExpiredAuthorizationCodes is housekeeping.
	DeleteExpiredAuthorizationCodes(ctx context.Context) error
}

type AccessTokens interface {
	// CreateAccessToken stores a new access token record.
	CreateAccessToken(ctx context.Context, t domain.AccessToken) error

	// GetAccessTokenByHash returns the token by its SHA-256 fingerprint.
	GetAccessTokenByHash(ctx context.Context, hash string) (domain.AccessToken, error)

	// RevokeAccessToken flips revoked=1 for a single token.
	RevokeAccessToken(ctx context.Context, id string) error

	// RevokeAccessTokensByGrantID revokes every access token minted in the
	// given grant (cascade from refresh-token revocation).
	RevokeAccessTokensByGrantID(ctx context.Context, grantID string) error

	// RevokeAccessTokensByCodeID revokes tokens minted from an
	// authorization code (code-replay defense).
	RevokeAccessTokensByCodeID(ctx context.Context, codeID string) error

	// DeleteExpiredAccessTokens is housekeeping.
	DeleteExpiredAccessTokens(ctx context.Context) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its SHA-256 fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1 if and only if the token is not
	// already revoked. Returns false when it was revoked already, which is
	// how a rotation double-spend is detected.
	RevokeRefreshToken(ctx context.Context, id string) (bool, error)

	// GetRefreshSuccessor returns the token rotated from the given id, for
	// walking a rotation chain during replay cleanup.
	GetRefreshSuccessor(ctx context.Context, id string) (domain.RefreshToken, error)

	// RevokeRefreshTokensByCodeID revokes tokens minted from an
	// authorization code (code-replay defense).
	RevokeRefreshTokensByCodeID(ctx context.Context, codeID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}
