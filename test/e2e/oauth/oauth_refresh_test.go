package oauth_test

import (
	"testing"

	"github.com/stackfort/oauthd/pkg/oauthsdk"
	"github.com/stretchr/testify/require"
)

// TestRefreshTokenRotation verifies a refresh grant rotates the token: the
// old one stops working and the new pair is fully usable.
func TestRefreshTokenRotation(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	clientID := createPublicClient(t, client, session, "rotating-app", []string{"profile:read"})
	first := authorizeAndExchange(t, client, session, clientID, []string{"profile:read"})

	second, err := client.RefreshGrant(t.Context(), clientID, "", first.RefreshToken, nil)
	require.NoError(t, err)
	assertTokenResponse(t, second)
	require.NotEmpty(t, second.RefreshToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken, "refresh grant rotates the token")
	require.NotEqual(t, first.AccessToken, second.AccessToken)

	// The rotated-out token is dead.
	_, err = client.RefreshGrant(t.Context(), clientID, "", first.RefreshToken, nil)
	assertOAuth2Error(t, err, "invalid_grant")

	// The successor still works.
	third, err := client.RefreshGrant(t.Context(), clientID, "", second.RefreshToken, nil)
	require.NoError(t, err)
	assertTokenResponse(t, third)
}

// TestRefreshTokenReplayRevokesChain verifies replaying a rotated token
// burns every descendant minted after it.
func TestRefreshTokenReplayRevokesChain(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	clientID := createPublicClient(t, client, session, "stolen-app", []string{"profile:read"})
	first := authorizeAndExchange(t, client, session, clientID, []string{"profile:read"})

	second, err := client.RefreshGrant(t.Context(), clientID, "", first.RefreshToken, nil)
	require.NoError(t, err)
	third, err := client.RefreshGrant(t.Context(), clientID, "", second.RefreshToken, nil)
	require.NoError(t, err)

	// Replay of the first token signals theft.
	_, err = client.RefreshGrant(t.Context(), clientID, "", first.RefreshToken, nil)
	assertOAuth2Error(t, err, "invalid_grant")

	// The whole chain is revoked, latest token included.
	_, err = client.RefreshGrant(t.Context(), clientID, "", third.RefreshToken, nil)
	assertOAuth2Error(t, err, "invalid_grant")
}

// TestRefreshTokenScopeNarrowing verifies a refresh may narrow but never
// widen the granted scope set.
func TestRefreshTokenScopeNarrowing(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	clientID := createPublicClient(t, client, session, "narrowing-app", []string{"profile:read", "profile:write"})
	first := authorizeAndExchange(t, client, session, clientID, []string{"profile:read", "profile:write"})

	narrowed, err := client.RefreshGrant(t.Context(), clientID, "", first.RefreshToken, []string{"profile:read"})
	require.NoError(t, err)
	require.Equal(t, "profile:read", narrowed.Scope)

	// Widening back is rejected: the narrowed grant is the ceiling now.
	_, err = client.RefreshGrant(t.Context(), clientID, "", narrowed.RefreshToken, []string{"profile:read", "profile:write"})
	assertOAuth2Error(t, err, "invalid_scope")
}

// TestRefreshTokenCrossClient verifies a refresh token only works for the
// client it was issued to.
func TestRefreshTokenCrossClient(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)
	session := mintSession(t, ownerSubject)

	clientID := createPublicClient(t, client, session, "victim-app", []string{"profile:read"})
	otherID := createPublicClient(t, client, session, "other-app", []string{"profile:read"})

	tokens := authorizeAndExchange(t, client, session, clientID, []string{"profile:read"})

	_, err := client.RefreshGrant(t.Context(), otherID, "", tokens.RefreshToken, nil)
	assertOAuth2Error(t, err, "invalid_grant")
}
