package oauth_test

import (
	"testing"

	"github.com/stackfort/oauthd/pkg/cryptox"
	"github.com/stackfort/oauthd/pkg/oauthsdk"
	"github.com/stretchr/testify/require"
)

// TestAuthorizationCodeFlow runs the complete authorization_code + PKCE
// flow for a public client: mint a code under a session, redeem it at the
// token endpoint, and introspect the result through a confidential client.
func TestAuthorizationCodeFlow(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	clientID := createPublicClient(t, client, session, "mobile-app", []string{"profile:read", "profile:write"})

	tokens := authorizeAndExchange(t, client, session, clientID, []string{"profile:read"})
	require.NotEmpty(t, tokens.RefreshToken, "authorization_code mints a refresh token")
	require.Equal(t, "profile:read", tokens.Scope)

	// Introspection requires client authentication; the resource server
	// registered here stands in for one.
	rsID, rsSecret := createConfidentialClient(t, client, session, "resource-server", []string{"invoices:read"})

	// Cross-client introspection reports inactive, never an error.
	info, err := client.Introspect(t.Context(), rsID, rsSecret, tokens.AccessToken, "access_token")
	require.NoError(t, err)
	require.False(t, info.Active, "a token is only active for the client it was issued to")
}

// TestAuthorizationCodeSubjectBinding verifies the minted tokens carry the
// session's subject and tenant through to introspection.
func TestAuthorizationCodeSubjectBinding(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	// A confidential client with both grants can introspect its own tokens.
	resp, err := client.CreateClient(t.Context(), session, oauthsdk.ClientSpec{
		Name:         "first-party-web",
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
		CodeChallenge:       cryptox.S256Challenge(validVerifier),
		CodeChallengeMethod: "S256",
	})
	require.NoError(t, err)

	tokens, err := client.AuthorizationCodeGrant(t.Context(), resp.ID, resp.Secret, authResp.Code, testRedirect, validVerifier)
	require.NoError(t, err)

	info, err := client.Introspect(t.Context(), resp.ID, resp.Secret, tokens.AccessToken, "access_token")
	require.NoError(t, err)
	require.True(t, info.Active)
	require.Equal(t, ownerSubject, info.Sub)
	require.Equal(t, testTenant, info.TenantID)
}

// TestAuthorizationCodeReplay verifies a consumed code cannot be redeemed
// twice, and that the replay revokes the tokens minted from it.
func TestAuthorizationCodeReplay(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	clientID := createPublicClient(t, client, session, "replay-app", []string{"profile:read"})

	authResp, err := client.Authorize(t.Context(), session, oauthsdk.AuthorizeRequest{
		ClientID:            clientID,
		RedirectURI:         testRedirect,
		Scopes:              []string{"profile:read"},
		CodeChallenge:       cryptox.S256Challenge(validVerifier),
		CodeChallengeMethod: "S256",
	})
	require.NoError(t, err)

	tokens, err := client.AuthorizationCodeGrant(t.Context(), clientID, "", authResp.Code, testRedirect, validVerifier)
	require.NoError(t, err)

	// Replay is rejected.
	_, err = client.AuthorizationCodeGrant(t.Context(), clientID, "", authResp.Code, testRedirect, validVerifier)
	assertOAuth2Error(t, err, "invalid_grant")

	// And it burned the tokens from the first redemption.
	_, err = client.RefreshGrant(t.Context(), clientID, "", tokens.RefreshToken, nil)
	assertOAuth2Error(t, err, "invalid_grant")
}

// TestAuthorizationCodeWrongVerifier verifies a bad PKCE verifier consumes
// the code: a later attempt with the right verifier must not succeed.
func TestAuthorizationCodeWrongVerifier(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	clientID := createPublicClient(t, client, session, "pkce-app", []string{"profile:read"})

	authResp, err := client.Authorize(t.Context(), session, oauthsdk.AuthorizeRequest{
		ClientID:            clientID,
		RedirectURI:         testRedirect,
		Scopes:              []string{"profile:read"},
		CodeChallenge:       cryptox.S256Challenge(validVerifier),
		CodeChallengeMethod: "S256",
	})
	require.NoError(t, err)

	_, err = client.AuthorizationCodeGrant(t.Context(), clientID, "", authResp.Code, testRedirect, "not-the-right-verifier")
	assertOAuth2Error(t, err, "invalid_grant")

	_, err = client.AuthorizationCodeGrant(t.Context(), clientID, "", authResp.Code, testRedirect, validVerifier)
	assertOAuth2Error(t, err, "invalid_grant")
}

// TestAuthorizePublicClientRequiresPKCE verifies public clients cannot mint
// codes without a code challenge.
func TestAuthorizePublicClientRequiresPKCE(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	clientID := createPublicClient(t, client, session, "no-pkce-app", []string{"profile:read"})

	_, err := client.Authorize(t.Context(), session, oauthsdk.AuthorizeRequest{
		ClientID:    clientID,
		RedirectURI: testRedirect,
		Scopes:      []string{"profile:read"},
	})
	assertOAuth2Error(t, err, "invalid_request")
}

// TestAuthorizeUnregisteredRedirect verifies redirect URIs are matched
// exactly against the registered set.
func TestAuthorizeUnregisteredRedirect(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	clientID := createPublicClient(t, client, session, "redirect-app", []string{"profile:read"})

	_, err := client.Authorize(t.Context(), session, oauthsdk.AuthorizeRequest{
		ClientID:            clientID,
		RedirectURI:         "https://evil.example/callback",
		Scopes:              []string{"profile:read"},
		CodeChallenge:       cryptox.S256Challenge(validVerifier),
		CodeChallengeMethod: "S256",
	})
	assertOAuth2Error(t, err, "invalid_request")
}

// TestAuthorizeRequiresSession verifies the code minting endpoint rejects
// missing and garbage session tokens.
func TestAuthorizeRequiresSession(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)

	for _, token := range []string{"", "not-a-session-token"} {
		_, err := client.Authorize(t.Context(), token, oauthsdk.AuthorizeRequest{
			ClientID:    "whatever",
			RedirectURI: testRedirect,
			Scopes:      []string{"profile:read"},
		})
		require.Error(t, err)

		var oerr *oauthsdk.OAuth2Error
		require.ErrorAs(t, err, &oerr)
		require.Equal(t, 401, oerr.StatusCode)
	}
}
