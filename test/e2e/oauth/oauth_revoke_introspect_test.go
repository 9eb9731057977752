package oauth_test

import (
	"testing"

	"github.com/stackfort/oauthd/pkg/oauthsdk"
	"github.com/stretchr/testify/require"
)

// TestRevokeAccessToken verifies revoking an access token kills it without
// touching the refresh token from the same grant.
func TestRevokeAccessToken(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	clientID, clientSecret := createConfidentialClient(t, client, session, "revoking-bot", []string{"profile:read"})

	tokens, err := client.ClientCredentialsGrant(t.Context(), clientID, clientSecret, nil)
	require.NoError(t, err)

	require.NoError(t, client.Revoke(t.Context(), clientID, clientSecret, tokens.AccessToken, "access_token"))

	info, err := client.Introspect(t.Context(), clientID, clientSecret, tokens.AccessToken, "access_token")
	require.NoError(t, err)
	require.False(t, info.Active, "revoked token must introspect inactive")
}

// TestRevokeRefreshTokenCascades verifies revoking a refresh token also
// revokes the access token minted in the same grant.
func TestRevokeRefreshTokenCascades(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	resp, err := client.CreateClient(t.Context(), session, oauthsdk.ClientSpec{
		Name:         "cascade-web",
		RedirectURIs: []string{testRedirect},
		Scopes:       []string{"profile:read"},
		GrantTypes:   []string{"authorization_code", "refresh_token"},
		Confidential: true,
	})
	require.NoError(t, err)

	authResp, err := client.Authorize(t.Context(), session, oauthsdk.AuthorizeRequest{
		ClientID:            resp.ID,
		RedirectURI:         testRedirect,
		Scopes:              []string{"profile:read"},
		CodeChallenge:       "",
		CodeChallengeMethod: "",
	})
	require.NoError(t, err)

	tokens, err := client.AuthorizationCodeGrant(t.Context(), resp.ID, resp.Secret, authResp.Code, testRedirect, "")
	require.NoError(t, err)

	require.NoError(t, client.Revoke(t.Context(), resp.ID, resp.Secret, tokens.RefreshToken, "refresh_token"))

	info, err := client.Introspect(t.Context(), resp.ID, resp.Secret, tokens.AccessToken, "access_token")
	require.NoError(t, err)
	require.False(t, info.Active, "revoking the refresh token revokes the paired access token")

	_, err = client.RefreshGrant(t.Context(), resp.ID, resp.Secret, tokens.RefreshToken, nil)
	assertOAuth2Error(t, err, "invalid_grant")
}

// TestRevokeIsOpaque verifies revocation answers 200 for unknown tokens,
// cross-client tokens, and failed client authentication alike.
func TestRevokeIsOpaque(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	clientID, clientSecret := createConfidentialClient(t, client, session, "opaque-bot", []string{"profile:read"})
	victimID, victimSecret := createConfidentialClient(t, client, session, "victim-bot", []string{"profile:read"})

	victimTokens, err := client.ClientCredentialsGrant(t.Context(), victimID, victimSecret, nil)
	require.NoError(t, err)

	t.Run("UnknownToken", func(t *testing.T) {
		require.NoError(t, client.Revoke(t.Context(), clientID, clientSecret, "no-such-token", ""))
	})

	t.Run("FailedAuthentication", func(t *testing.T) {
		require.NoError(t, client.Revoke(t.Context(), clientID, "wrong-secret", victimTokens.AccessToken, "access_token"))
	})

	t.Run("CrossClientToken", func(t *testing.T) {
		require.NoError(t, client.Revoke(t.Context(), clientID, clientSecret, victimTokens.AccessToken, "access_token"))
	})

	// None of the above touched the victim's token.
	info, err := client.Introspect(t.Context(), victimID, victimSecret, victimTokens.AccessToken, "access_token")
	require.NoError(t, err)
	require.True(t, info.Active, "opaque revocations must not revoke other clients' tokens")
}

// TestRevokeWrongHint verifies the token_type_hint is only a hint: a
// mismatched hint still finds and revokes the token.
func TestRevokeWrongHint(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	clientID, clientSecret := createConfidentialClient(t, client, session, "hinted-bot", []string{"profile:read"})

	tokens, err := client.ClientCredentialsGrant(t.Context(), clientID, clientSecret, nil)
	require.NoError(t, err)

	require.NoError(t, client.Revoke(t.Context(), clientID, clientSecret, tokens.AccessToken, "refresh_token"))

	info, err := client.Introspect(t.Context(), clientID, clientSecret, tokens.AccessToken, "access_token")
	require.NoError(t, err)
	require.False(t, info.Active)
}

// TestIntrospectNegatives verifies every negative introspection outcome is
// the same inactive response.
func TestIntrospectNegatives(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	clientID, clientSecret := createConfidentialClient(t, client, session, "introspecting-bot", []string{"profile:read"})

	tokens, err := client.ClientCredentialsGrant(t.Context(), clientID, clientSecret, nil)
	require.NoError(t, err)

	t.Run("UnknownToken", func(t *testing.T) {
		info, err := client.Introspect(t.Context(), clientID, clientSecret, "no-such-token", "")
		require.NoError(t, err)
		require.False(t, info.Active)
		require.Empty(t, info.Scope, "inactive responses carry no metadata")
		require.Empty(t, info.ClientID)
	})

	t.Run("FailedAuthentication", func(t *testing.T) {
		info, err := client.Introspect(t.Context(), clientID, "wrong-secret", tokens.AccessToken, "")
		require.NoError(t, err)
		require.False(t, info.Active, "failed auth is indistinguishable from an inactive token")
	})
}
