package oauth_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stackfort/oauthd/pkg/cryptox"
	"github.com/stackfort/oauthd/pkg/oauthsdk"
	"github.com/stackfort/oauthd/pkg/sessionx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for oauthd end-to-end tests:
 * container setup, session minting, client registration, and assertions.
 */

const (
	testImageName = "oauthd-test:latest"

	sessionIssuer = "oauthd"

	// Subjects used across tests. Sessions are minted locally with the same
	// HMAC key the container is started with.
	ownerSubject  = "user-e2e-owner"
	otherSubject  = "user-e2e-other"
	testTenant    = "tenant-e2e"
	testRedirect  = "https://app.example/callback"
	validVerifier = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
)

// sessionKey is the raw HMAC key shared with the container via
// OAUTHD_SESSION_KEY (base64-encoded so both sides decode identically).
var sessionKey = []byte("e2e-session-signing-key-0123456789abcdef")

var clientScopes = []string{"profile:read", "profile:write", "invoices:read"}

// TestMain builds the Docker image once before all tests and removes it
// after the run.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building oauthd Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up oauthd Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/oauthd/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

// setupOAuthContainer starts oauthd with relaxed rate limits so flow tests
// never trip them. Returns the base URL and a cleanup func.
func setupOAuthContainer(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, map[string]string{
		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_WINDOW_SEC": "60",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
		"RATELIMIT_LENIENT_REQUESTS":  "1000",
		"RATELIMIT_LENIENT_BURST":     "1000",
	})
}

// setupOAuthContainerWithDefaultRateLimits starts oauthd with the built-in
// production limits. Only the rate limiting tests use this.
func setupOAuthContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, nil)
}

func startContainer(t *testing.T, extraEnv map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"OAUTHD_SESSION_KEY":   base64.StdEncoding.EncodeToString(sessionKey),
		"OAUTHD_ISSUER":        sessionIssuer,
		"OAUTHD_DATABASE_FILE": "/data/oauthd.db",
		"OAUTHD_PEPPER_FILE":   "/data/pepper",
		"ENV":                  "test",
		"LOG_LEVEL":            "info",
		"LOG_FORMAT":           "json",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// mintSession issues a session token for the given subject, signed with the
// same key the container verifies against.
func mintSession(t *testing.T, subjectID string) string {
	t.Helper()

	mgr, err := sessionx.NewManager(sessionKey, sessionIssuer, time.Hour)
	require.NoError(t, err)

	token, err := mgr.Mint(sessionx.Identity{SubjectID: subjectID, TenantID: testTenant})
	require.NoError(t, err)
	return token
}

// createConfidentialClient registers a confidential client_credentials
// client and returns its id and plaintext secret.
func createConfidentialClient(t *testing.T, client *oauthsdk.Client, session, name string, scopes []string) (string, string) {
	t.Helper()

	resp, err := client.CreateClient(t.Context(), session, oauthsdk.ClientSpec{
		Name:         name,
		Scopes:       scopes,
		GrantTypes:   []string{"client_credentials"},
		Confidential: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	require.NotEmpty(t, resp.Secret, "confidential client creation returns the secret once")

	return resp.ID, resp.Secret
}

// createPublicClient registers a public authorization_code client and
// returns its id.
func createPublicClient(t *testing.T, client *oauthsdk.Client, session, name string, scopes []string) string {
	t.Helper()

	resp, err := client.CreateClient(t.Context(), session, oauthsdk.ClientSpec{
		Name:         name,
		RedirectURIs: []string{testRedirect},
		Scopes:       scopes,
		GrantTypes:   []string{"authorization_code", "refresh_token"},
		Confidential: false,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	require.Empty(t, resp.Secret, "public clients never carry a secret")

	return resp.ID
}

// authorizeAndExchange runs the full authorization_code + PKCE flow for a
// public client and returns the issued tokens.
func authorizeAndExchange(t *testing.T, client *oauthsdk.Client, session, clientID string, scopes []string) *oauthsdk.TokenResponse {
	t.Helper()
	ctx := t.Context()

	authResp, err := client.Authorize(ctx, session, oauthsdk.AuthorizeRequest{
		ClientID:            clientID,
		RedirectURI:         testRedirect,
		Scopes:              scopes,
		CodeChallenge:       cryptox.S256Challenge(validVerifier),
		CodeChallengeMethod: "S256",
	})
	require.NoError(t, err)
	require.NotEmpty(t, authResp.Code)
	require.Positive(t, authResp.ExpiresIn)

	tokens, err := client.AuthorizationCodeGrant(ctx, clientID, "", authResp.Code, testRedirect, validVerifier)
	require.NoError(t, err)
	assertTokenResponse(t, tokens)
	return tokens
}

// assertTokenResponse verifies a token response has all required fields.
func assertTokenResponse(t *testing.T, resp *oauthsdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "access token should not be empty")
	require.Equal(t, "Bearer", resp.TokenType)
	require.Positive(t, resp.ExpiresIn)
	require.NotEmpty(t, resp.Scope)
}

// assertOAuth2Error verifies an error is a typed OAuth2 error with the given
// error code.
func assertOAuth2Error(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)

	var oerr *oauthsdk.OAuth2Error
	require.ErrorAs(t, err, &oerr)
	require.Equal(t, code, oerr.Code)
}
