package service

import (
	"context"
	"testing"
	"time"

	"github.com/stackfort/oauthd/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestRevoke_AccessToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	registry := newRegistry(st)
	grants := &GrantService{Store: st, Registry: registry, Codes: &CodeService{Store: st}, RotateRefreshTokens: true}
	lifecycle := &LifecycleService{Store: st}

	public, _, err := registry.CreateClient(ctx, "owner-1", "tenant-a", publicSpec())
	require.NoError(t, err)

	tokens := issueAndExchange(t, grants, public.ID, []string{"profile:read"})

	require.NoError(t, lifecycle.Revoke(ctx, public, tokens.AccessToken, HintAccessToken))

	at, err := st.AccessTokens().GetAccessTokenByHash(ctx, cryptox.FingerprintToken(tokens.AccessToken))
	require.NoError(t, err)
	require.True(t, at.Revoked)

	// Revoking an access token does not touch the refresh token.
	rt, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(tokens.RefreshToken))
	require.NoError(t, err)
	require.False(t, rt.Revoked)
}

func TestRevoke_RefreshTokenCascades(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	registry := newRegistry(st)
	grants := &GrantService{Store: st, Registry: registry, Codes: &CodeService{Store: st}, RotateRefreshTokens: true}
	lifecycle := &LifecycleService{Store: st}

	public, _, err := registry.CreateClient(ctx, "owner-1", "tenant-a", publicSpec())
	require.NoError(t, err)

	tokens := issueAndExchange(t, grants, public.ID, []string{"profile:read"})

	require.NoError(t, lifecycle.Revoke(ctx, public, tokens.RefreshToken, HintRefreshToken))

	// Revoking the refresh token takes the grant's access tokens with it.
	rt, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(tokens.RefreshToken))
	require.NoError(t, err)
	require.True(t, rt.Revoked)

	at, err := st.AccessTokens().GetAccessTokenByHash(ctx, cryptox.FingerprintToken(tokens.AccessToken))
	require.NoError(t, err)
	require.True(t, at.Revoked)
}

func TestRevoke_WrongHintStillFinds(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	registry := newRegistry(st)
	grants := &GrantService{Store: st, Registry: registry, Codes: &CodeService{Store: st}, RotateRefreshTokens: true}
	lifecycle := &LifecycleService{Store: st}

	public, _, err := registry.CreateClient(ctx, "owner-1", "tenant-a", publicSpec())
	require.NoError(t, err)

	tokens := issueAndExchange(t, grants, public.ID, []string{"profile:read"})

	// Access token presented with a refresh_token hint.
	require.NoError(t, lifecycle.Revoke(ctx, public, tokens.AccessToken, HintRefreshToken))

	at, err := st.AccessTokens().GetAccessTokenByHash(ctx, cryptox.FingerprintToken(tokens.AccessToken))
	require.NoError(t, err)
	require.True(t, at.Revoked)
}

func TestRevoke_SilentCases(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	registry := newRegistry(st)
	grants := &GrantService{Store: st, Registry: registry, Codes: &CodeService{Store: st}, RotateRefreshTokens: true}
	lifecycle := &LifecycleService{Store: st}

	public, _, err := registry.CreateClient(ctx, "owner-1", "tenant-a", publicSpec())
	require.NoError(t, err)
	spec := publicSpec()
	spec.Name = "other-app"
	other, _, err := registry.CreateClient(ctx, "owner-1", "tenant-a", spec)
	require.NoError(t, err)

	tokens := issueAndExchange(t, grants, public.ID, []string{"profile:read"})

	t.Run("unknown token", func(t *testing.T) {
		require.NoError(t, lifecycle.Revoke(ctx, public, "no-such-token", ""))
	})

	t.Run("empty token", func(t *testing.T) {
		require.NoError(t, lifecycle.Revoke(ctx, public, "", ""))
	})

	t.Run("another client's token is a no-op", func(t *testing.T) {
		require.NoError(t, lifecycle.Revoke(ctx, other, tokens.AccessToken, HintAccessToken))

		at, err := st.AccessTokens().GetAccessTokenByHash(ctx, cryptox.FingerprintToken(tokens.AccessToken))
		require.NoError(t, err)
		require.False(t, at.Revoked, "cross-client revocation must not alter the token")
	})
}

func TestIntrospect(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	registry := newRegistry(st)
	grants := &GrantService{Store: st, Registry: registry, Codes: &CodeService{Store: st}, RotateRefreshTokens: true}
	lifecycle := &LifecycleService{Store: st}

	public, _, err := registry.CreateClient(ctx, "owner-1", "tenant-a", publicSpec())
	require.NoError(t, err)
	spec := publicSpec()
	spec.Name = "other-app"
	other, _, err := registry.CreateClient(ctx, "owner-1", "tenant-a", spec)
	require.NoError(t, err)

	tokens := issueAndExchange(t, grants, public.ID, []string{"profile:read"})

	t.Run("active access token", func(t *testing.T) {
		intro, err := lifecycle.Introspect(ctx, public, tokens.AccessToken, HintAccessToken)
		require.NoError(t, err)
		require.True(t, intro.Active)
		require.Equal(t, "Bearer", intro.TokenType)
		require.Equal(t, public.ID, intro.ClientID)
		require.Equal(t, "user-1", intro.SubjectID)
		require.Equal(t, "tenant-a", intro.TenantID)
		require.Equal(t, []string{"profile:read"}, intro.Scopes)
		require.False(t, intro.ExpiresAt.IsZero())
	})

	t.Run("active refresh token", func(t *testing.T) {
		intro, err := lifecycle.Introspect(ctx, public, tokens.RefreshToken, HintRefreshToken)
		require.NoError(t, err)
		require.True(t, intro.Active)
		require.Equal(t, HintRefreshToken, intro.TokenType)
	})

	t.Run("unknown token", func(t *testing.T) {
		intro, err := lifecycle.Introspect(ctx, public, "no-such-token", "")
		require.NoError(t, err)
		require.False(t, intro.Active)
	})

	t.Run("another client's token reports inactive", func(t *testing.T) {
		intro, err := lifecycle.Introspect(ctx, other, tokens.AccessToken, HintAccessToken)
		require.NoError(t, err)
		require.False(t, intro.Active, "token existence must not leak across clients")
	})

	t.Run("revoked token reports inactive", func(t *testing.T) {
		require.NoError(t, lifecycle.Revoke(ctx, public, tokens.AccessToken, HintAccessToken))

		intro, err := lifecycle.Introspect(ctx, public, tokens.AccessToken, HintAccessToken)
		require.NoError(t, err)
		require.False(t, intro.Active)
	})
}

func TestIntrospect_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	registry := newRegistry(st)
	grants := &GrantService{Store: st, Registry: registry, AccessTTL: time.Nanosecond}
	lifecycle := &LifecycleService{Store: st}

	client, secret, err := registry.CreateClient(ctx, "owner-1", "tenant-a", confidentialSpec())
	require.NoError(t, err)

	tokens, err := grants.ExchangeClientCredentials(ctx, client.ID, secret, nil)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	intro, err := lifecycle.Introspect(ctx, client, tokens.AccessToken, HintAccessToken)
	require.NoError(t, err)
	require.False(t, intro.Active, "expired tokens report inactive, not an error")
}

func TestHousekeepingSweep(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	registry := newRegistry(st)
	codes := &CodeService{Store: st, CodeTTL: time.Nanosecond}
	grants := &GrantService{Store: st, Registry: registry, AccessTTL: time.Nanosecond, RefreshTTL: time.Nanosecond}

	public, _, err := registry.CreateClient(ctx, "owner-1", "tenant-a", publicSpec())
	require.NoError(t, err)
	m2m, secret, err := registry.CreateClient(ctx, "owner-1", "tenant-a", confidentialSpec())
	require.NoError(t, err)

	code, err := codes.IssueCode(ctx, IssueCodeParams{
		ClientID:      public.ID,
		RedirectURI:   "https://app.example/callback",
		SubjectID:     "user-1",
		Scopes:        []string{"profile:read"},
		CodeChallenge: cryptox.S256Challenge("v"),
	})
	require.NoError(t, err)

	tokens, err := grants.ExchangeClientCredentials(ctx, m2m.ID, secret, nil)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	hk := NewHousekeepingService(st, nil, time.Hour)
	hk.Sweep(ctx)

	_, err = st.AuthorizationCodes().GetAuthorizationCodeByHash(ctx, cryptox.FingerprintToken(code))
	require.Error(t, err, "expired codes are swept")

	_, err = st.AccessTokens().GetAccessTokenByHash(ctx, cryptox.FingerprintToken(tokens.AccessToken))
	require.Error(t, err, "expired access tokens are swept")
}
