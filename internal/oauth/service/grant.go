package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stackfort/oauthd/internal/oauth/domain"
	"github.com/stackfort/oauthd/internal/oauth/metrics"
	"github.com/stackfort/oauthd/internal/oauth/store"
	"github.com/stackfort/oauthd/pkg/cryptox"
	"github.com/stackfort/oauthd/pkg/idx"
	"github.com/stackfort/oauthd/pkg/slogx"
)

// Server-wide token lifetime defaults, used when neither the client record
// nor the service configuration says otherwise.
const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 720 * time.Hour
)

// GrantService is the token issuer. Each grant type authenticates the
// client, enforces the client's grant-type allow-list, computes the
// effective scope set, and mints opaque tokens whose plaintext leaves the
// process exactly once.
type GrantService struct {
	Store    store.Store
	Registry *RegistryService
	Codes    *CodeService
	Metrics  *metrics.Metrics

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// RotateRefreshTokens revokes a refresh token on use and mints a
	// successor recording its lineage. Replay of a rotated token revokes
	// the whole descendant chain.
	RotateRefreshTokens bool

	StoreTimeout time.Duration
}

// ExchangeAuthorizationCode implements the authorization_code grant.
//
// The code is consumed before the PKCE check and the consumption commits on
// its own: a failed verifier does not resurrect the code, so an attacker who
// intercepted it cannot keep probing verifiers against it.
func (s *GrantService) ExchangeAuthorizationCode(
	ctx context.Context,
	clientID, clientSecret, code, redirectURI, codeVerifier string,
) (tokens domain.IssuedTokens, err error) {
	defer func() { s.Metrics.RecordGrant(string(domain.GrantAuthorizationCode), grantResult(err)) }()

	l := slogx.FromContext(ctx)

	client, err := s.Registry.AuthenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return domain.IssuedTokens{}, err
	}
	if !client.AllowsGrant(domain.GrantAuthorizationCode) {
		return domain.IssuedTokens{}, ErrUnauthorizedClient
	}

	code = strings.TrimSpace(code)
	redirectURI = strings.TrimSpace(redirectURI)
	codeVerifier = strings.TrimSpace(codeVerifier)
	if code == "" || redirectURI == "" {
		return domain.IssuedTokens{}, ErrInvalidGrant
	}

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	var record domain.AuthorizationCode
	err = s.Store.WithTx(sctx, func(tx store.Tx) error {
		var err error
		record, err = s.Codes.consumeCodeTx(sctx, tx, code, clientID, redirectURI)
		return err
	})
	if errors.Is(err, errCodeReplayed) {
		if err := s.Codes.revokeCodeLineage(sctx, record.ID); err != nil {
			return domain.IssuedTokens{}, mapTemporary(err)
		}
		return domain.IssuedTokens{}, ErrInvalidGrant
	}
	if err != nil {
		return domain.IssuedTokens{}, mapTemporary(err)
	}

	if record.CodeChallenge != "" {
		if codeVerifier == "" || !cryptox.VerifyPKCE(codeVerifier, record.CodeChallenge, record.CodeChallengeMethod) {
			l.Info("PKCE verification failed", "client_id", clientID, "code_id", record.ID)
			return domain.IssuedTokens{}, ErrInvalidGrant
		}
	} else if !client.Confidential {
		// PKCE is mandatory for public clients.
		return domain.IssuedTokens{}, ErrInvalidGrant
	}

	err = s.Store.WithTx(sctx, func(tx store.Tx) error {
		var err error
		tokens, err = s.mintTokensTx(sctx, tx, client, mintParams{
			SubjectID:   record.SubjectID,
			TenantID:    record.TenantID,
			Scopes:      record.Scopes,
			GrantType:   domain.GrantAuthorizationCode,
			GrantID:     idx.New().String(),
			CodeID:      record.ID,
			WithRefresh: true,
		})
		return err
	})
	if err != nil {
		return domain.IssuedTokens{}, mapTemporary(err)
	}

	l.Info("authorization_code grant succeeded", "client_id", clientID)
	return tokens, nil
}

// ExchangeClientCredentials implements the client_credentials grant.
//
// Machine-to-machine only: the client is the subject, public clients are
// rejected, and no refresh token is minted since the client can always
// re-authenticate.
func (s *GrantService) ExchangeClientCredentials(
	ctx context.Context,
	clientID, clientSecret string,
	requestedScopes []string,
) (tokens domain.IssuedTokens, err error) {
	defer func() { s.Metrics.RecordGrant(string(domain.GrantClientCredentials), grantResult(err)) }()

	l := slogx.FromContext(ctx)

	client, err := s.Registry.AuthenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return domain.IssuedTokens{}, err
	}
	if !client.Confidential {
		l.Warn("client_credentials grant attempted by public client", "client_id", clientID)
		return domain.IssuedTokens{}, ErrUnauthorizedClient
	}
	if !client.AllowsGrant(domain.GrantClientCredentials) {
		return domain.IssuedTokens{}, ErrUnauthorizedClient
	}

	effective := dedupe(requestedScopes)
	if len(effective) == 0 {
		effective = client.Scopes
	} else if !subsetOf(effective, client.Scopes) {
		return domain.IssuedTokens{}, ErrInvalidScope
	}

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	err = s.Store.WithTx(sctx, func(tx store.Tx) error {
		tokens, err = s.mintTokensTx(sctx, tx, client, mintParams{
			TenantID:  client.TenantID,
			Scopes:    effective,
			GrantType: domain.GrantClientCredentials,
			GrantID:   idx.New().String(),
		})
		return err
	})
	if err != nil {
		return domain.IssuedTokens{}, mapTemporary(err)
	}

	l.Info("client_credentials grant succeeded", "client_id", clientID)
	return tokens, nil
}

// ExchangeRefreshToken implements the refresh_token grant.
//
// Scope narrowing is allowed; widening beyond the token's recorded scope set
// is invalid_scope. With rotation enabled the presented token is revoked and
// a successor minted atomically; the second of two racing refreshes loses
// the conditional update and the whole chain is revoked as replay defense.
func (s *GrantService) ExchangeRefreshToken(
	ctx context.Context,
	clientID, clientSecret, refreshOpaque string,
	requestedScopes []string,
) (tokens domain.IssuedTokens, err error) {
	defer func() { s.Metrics.RecordGrant(string(domain.GrantRefreshToken), grantResult(err)) }()

	l := slogx.FromContext(ctx)

	client, err := s.Registry.AuthenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return domain.IssuedTokens{}, err
	}
	if !client.AllowsGrant(domain.GrantRefreshToken) {
		return domain.IssuedTokens{}, ErrUnauthorizedClient
	}

	refreshOpaque = strings.TrimSpace(refreshOpaque)
	if refreshOpaque == "" {
		return domain.IssuedTokens{}, ErrInvalidGrant
	}

	now := time.Now().UTC()

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(sctx, cryptox.FingerprintToken(refreshOpaque))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.IssuedTokens{}, ErrInvalidGrant
		}
		return domain.IssuedTokens{}, mapTemporary(err)
	}

	if rt.ClientID != client.ID {
		return domain.IssuedTokens{}, ErrInvalidGrant
	}
	if rt.Expired(now) {
		return domain.IssuedTokens{}, ErrInvalidGrant
	}
	if rt.Revoked {
		// A rotated or revoked token came back: revoke its descendants.
		l.Warn("revoked refresh token replayed", "client_id", clientID, "grant_id", rt.GrantID)
		if err := s.revokeRefreshChain(sctx, rt); err != nil {
			return domain.IssuedTokens{}, mapTemporary(err)
		}
		return domain.IssuedTokens{}, ErrInvalidGrant
	}

	effective := dedupe(requestedScopes)
	if len(effective) == 0 {
		effective = rt.Scopes
	} else if !subsetOf(effective, rt.Scopes) {
		return domain.IssuedTokens{}, ErrInvalidScope
	}

	var doubleSpend bool
	err = s.Store.WithTx(sctx, func(tx store.Tx) error {
		rotatedFrom := ""
		if s.RotateRefreshTokens {
			ok, err := tx.RefreshTokens().RevokeRefreshToken(sctx, rt.ID)
			if err != nil {
				return err
			}
			if !ok {
				// Lost the test-and-set to a concurrent refresh. This
				// transaction rolls back, so the chain revocation happens
				// outside it where it can commit.
				doubleSpend = true
				return ErrInvalidGrant
			}
			rotatedFrom = rt.ID
		}

		tokens, err = s.mintTokensTx(sctx, tx, client, mintParams{
			SubjectID:   rt.SubjectID,
			TenantID:    rt.TenantID,
			Scopes:      effective,
			GrantType:   domain.GrantRefreshToken,
			GrantID:     rt.GrantID,
			CodeID:      rt.CodeID,
			WithRefresh: s.RotateRefreshTokens,
			RotatedFrom: rotatedFrom,
		})
		return err
	})
	if doubleSpend {
		l.Warn("refresh token double spend detected", "client_id", clientID, "grant_id", rt.GrantID)
		if err := s.revokeRefreshChain(sctx, rt); err != nil {
			return domain.IssuedTokens{}, mapTemporary(err)
		}
		return domain.IssuedTokens{}, ErrInvalidGrant
	}
	if err != nil {
		return domain.IssuedTokens{}, mapTemporary(err)
	}

	l.Info("refresh_token grant succeeded", "client_id", clientID, "grant_id", rt.GrantID)
	return tokens, nil
}

type mintParams struct {
	SubjectID   string
	TenantID    string
	Scopes      []string
	GrantType   domain.GrantType
	GrantID     string
	CodeID      string
	WithRefresh bool
	RotatedFrom string
}

// mintTokensTx generates the opaque token values, persists their
// fingerprints, and hands the plaintext back for the response. Nothing but
// the fingerprint ever reaches storage.
func (s *GrantService) mintTokensTx(
	ctx context.Context,
	tx store.Tx,
	client domain.Client,
	p mintParams,
) (domain.IssuedTokens, error) {
	now := time.Now().UTC()
	accessTTL := s.accessTTL(client)

	accessOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.IssuedTokens{}, err
	}

	access := domain.AccessToken{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken(accessOpaque),
		ClientID:  client.ID,
		SubjectID: p.SubjectID,
		TenantID:  p.TenantID,
		Scopes:    p.Scopes,
		GrantType: p.GrantType,
		GrantID:   p.GrantID,
		CodeID:    p.CodeID,
		IssuedAt:  now,
		ExpiresAt: now.Add(accessTTL),
	}
	if err := tx.AccessTokens().CreateAccessToken(ctx, access); err != nil {
		return domain.IssuedTokens{}, err
	}

	issued := domain.IssuedTokens{
		AccessToken: accessOpaque,
		ExpiresIn:   accessTTL,
		Scope:       p.Scopes,
	}

	if p.WithRefresh {
		refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return domain.IssuedTokens{}, err
		}

		refresh := domain.RefreshToken{
			ID:          idx.New().String(),
			TokenHash:   cryptox.FingerprintToken(refreshOpaque),
			ClientID:    client.ID,
			SubjectID:   p.SubjectID,
			TenantID:    p.TenantID,
			Scopes:      p.Scopes,
			GrantID:     p.GrantID,
			CodeID:      p.CodeID,
			RotatedFrom: p.RotatedFrom,
			IssuedAt:    now,
			ExpiresAt:   now.Add(s.refreshTTL(client)),
		}
		if err := tx.RefreshTokens().CreateRefreshToken(ctx, refresh); err != nil {
			return domain.IssuedTokens{}, err
		}
		issued.RefreshToken = refreshOpaque
	}

	return issued, nil
}

// revokeRefreshChain commits a chain revocation in its own transaction,
// independent of the failing exchange that detected the replay.
func (s *GrantService) revokeRefreshChain(ctx context.Context, rt domain.RefreshToken) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return s.revokeRefreshChainTx(ctx, tx, rt)
	})
}

// revokeRefreshChainTx revokes the given token, every successor rotation
// minted after it, and all access tokens in the same grant.
func (s *GrantService) revokeRefreshChainTx(ctx context.Context, tx store.Tx, rt domain.RefreshToken) error {
	cur := rt
	for {
		if _, err := tx.RefreshTokens().RevokeRefreshToken(ctx, cur.ID); err != nil {
			return err
		}
		next, err := tx.RefreshTokens().GetRefreshSuccessor(ctx, cur.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				break
			}
			return err
		}
		cur = next
	}
	return tx.AccessTokens().RevokeAccessTokensByGrantID(ctx, rt.GrantID)
}

func (s *GrantService) accessTTL(client domain.Client) time.Duration {
	if client.AccessTokenTTL > 0 {
		return client.AccessTokenTTL
	}
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return DefaultAccessTTL
}

func (s *GrantService) refreshTTL(client domain.Client) time.Duration {
	if client.RefreshTokenTTL > 0 {
		return client.RefreshTokenTTL
	}
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return DefaultRefreshTTL
}

// grantResult maps an exchange outcome onto a metrics label.
func grantResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidClient):
		return "invalid_client"
	case errors.Is(err, ErrInvalidGrant):
		return "invalid_grant"
	case errors.Is(err, ErrInvalidScope):
		return "invalid_scope"
	case errors.Is(err, ErrUnauthorizedClient):
		return "unauthorized_client"
	case errors.Is(err, ErrUnsupportedGrantType):
		return "unsupported_grant_type"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrTemporary):
		return "temporarily_unavailable"
	default:
		return "server_error"
	}
}
