package oauth_test

import (
	"testing"

	"github.com/stackfort/oauthd/pkg/oauthsdk"
	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness check answers as soon as the
// process is up.
func TestLivezEndpoint(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)

	health, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
	require.NotEmpty(t, health.Uptime)
}

// TestReadyzEndpoint verifies readiness includes a passing database check.
func TestReadyzEndpoint(t *testing.T) {
	baseURL, cleanup := setupOAuthContainer(t)
	defer cleanup()

	client := oauthsdk.New(baseURL)

	health, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
}
