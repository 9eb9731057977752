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
	"github.com/stackfort/oauthd/pkg/slogx"
)

// Token type hints per RFC 7009 section 2.1.
const (
	HintAccessToken  = "access_token"
	HintRefreshToken = "refresh_token"
)

// LifecycleService handles revocation and introspection. Both operations are
// deliberately incurious: a token that is unknown, expired, or owned by a
// different client produces the same innocuous answer as one that was just
// revoked, so neither endpoint can be used to probe for token existence.
type LifecycleService struct {
	Store        store.Store
	Metrics      *metrics.Metrics
	StoreTimeout time.Duration
}

// Introspection is the result of inspecting a token. Active is false unless
// the token exists, is unexpired, unrevoked, and belongs to the caller.
type Introspection struct {
	Active    bool
	Scopes    []string
	ClientID  string
	TokenType string
	SubjectID string
	TenantID  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Revoke invalidates the given token for the authenticated client. Revoking
// a refresh token also revokes the access tokens minted in the same grant;
// revoking an access token touches only that token. Unknown and cross-client
// tokens are silent no-ops per RFC 7009.
func (s *LifecycleService) Revoke(ctx context.Context, client domain.Client, token, tokenTypeHint string) error {
	l := slogx.FromContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	fp := cryptox.FingerprintToken(token)

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	// The hint orders the lookups; a wrong hint must still find the token.
	order := []string{HintAccessToken, HintRefreshToken}
	if tokenTypeHint == HintRefreshToken {
		order = []string{HintRefreshToken, HintAccessToken}
	}

	for _, kind := range order {
		switch kind {
		case HintAccessToken:
			at, err := s.Store.AccessTokens().GetAccessTokenByHash(sctx, fp)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return mapTemporary(err)
			}
			if at.ClientID != client.ID {
				return nil
			}
			if err := s.Store.AccessTokens().RevokeAccessToken(sctx, at.ID); err != nil {
				return mapTemporary(err)
			}
			s.Metrics.RecordRevocation(HintAccessToken)
			l.Info("access token revoked", "client_id", client.ID, "token_id", at.ID)
			return nil

		case HintRefreshToken:
			rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(sctx, fp)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return mapTemporary(err)
			}
			if rt.ClientID != client.ID {
				return nil
			}
			err = s.Store.WithTx(sctx, func(tx store.Tx) error {
				if _, err := tx.RefreshTokens().RevokeRefreshToken(sctx, rt.ID); err != nil {
					return err
				}
				return tx.AccessTokens().RevokeAccessTokensByGrantID(sctx, rt.GrantID)
			})
			if err != nil {
				return mapTemporary(err)
			}
			s.Metrics.RecordRevocation(HintRefreshToken)
			l.Info("refresh token revoked", "client_id", client.ID, "token_id", rt.ID, "grant_id", rt.GrantID)
			return nil
		}
	}

	// Unknown token: success, per RFC 7009.
	return nil
}

// Introspect reports a token's state for the authenticated client. Every
// negative case collapses to Active=false; only storage failures error.
func (s *LifecycleService) Introspect(ctx context.Context, client domain.Client, token, tokenTypeHint string) (Introspection, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		s.Metrics.RecordIntrospection(false)
		return Introspection{}, nil
	}
	fp := cryptox.FingerprintToken(token)
	now := time.Now().UTC()

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	order := []string{HintAccessToken, HintRefreshToken}
	if tokenTypeHint == HintRefreshToken {
		order = []string{HintRefreshToken, HintAccessToken}
	}

	for _, kind := range order {
		switch kind {
		case HintAccessToken:
			at, err := s.Store.AccessTokens().GetAccessTokenByHash(sctx, fp)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return Introspection{}, mapTemporary(err)
			}
			active := !at.Revoked && !at.Expired(now) && at.ClientID == client.ID
			s.Metrics.RecordIntrospection(active)
			if !active {
				return Introspection{}, nil
			}
			return Introspection{
				Active:    true,
				Scopes:    at.Scopes,
				ClientID:  at.ClientID,
				TokenType: "Bearer",
				SubjectID: at.SubjectID,
				TenantID:  at.TenantID,
				IssuedAt:  at.IssuedAt,
				ExpiresAt: at.ExpiresAt,
			}, nil

		case HintRefreshToken:
			rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(sctx, fp)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return Introspection{}, mapTemporary(err)
			}
			active := !rt.Revoked && !rt.Expired(now) && rt.ClientID == client.ID
			s.Metrics.RecordIntrospection(active)
			if !active {
				return Introspection{}, nil
			}
			return Introspection{
				Active:    true,
				Scopes:    rt.Scopes,
				ClientID:  rt.ClientID,
				TokenType: HintRefreshToken,
				SubjectID: rt.SubjectID,
				TenantID:  rt.TenantID,
				IssuedAt:  rt.IssuedAt,
				ExpiresAt: rt.ExpiresAt,
			}, nil
		}
	}

	s.Metrics.RecordIntrospection(false)
	return Introspection{}, nil
}
