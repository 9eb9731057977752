package sessionx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stackfort/oauthd/pkg/sessionx"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestNewManager_RejectsShortKeys(t *testing.T) {
	_, err := sessionx.NewManager([]byte("too-short"), "oauthd", time.Hour)
	require.Error(t, err)
}

func TestMintAndVerify(t *testing.T) {
	mgr, err := sessionx.NewManager(testKey, "oauthd", time.Hour)
	require.NoError(t, err)

	token, err := mgr.Mint(sessionx.Identity{SubjectID: "user-1", TenantID: "tenant-a"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := mgr.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", id.SubjectID)
	require.Equal(t, "tenant-a", id.TenantID)
}

func TestVerify_WrongKey(t *testing.T) {
	mgr1, err := sessionx.NewManager(testKey, "oauthd", time.Hour)
	require.NoError(t, err)
	mgr2, err := sessionx.NewManager([]byte(strings.Repeat("k", 32)), "oauthd", time.Hour)
	require.NoError(t, err)

	token, err := mgr1.Mint(sessionx.Identity{SubjectID: "user-1"})
	require.NoError(t, err)

	_, err = mgr2.Verify(token)
	require.ErrorIs(t, err, sessionx.ErrInvalidSession)
}

func TestVerify_WrongIssuer(t *testing.T) {
	minter, err := sessionx.NewManager(testKey, "other-issuer", time.Hour)
	require.NoError(t, err)
	verifier, err := sessionx.NewManager(testKey, "oauthd", time.Hour)
	require.NoError(t, err)

	token, err := minter.Mint(sessionx.Identity{SubjectID: "user-1"})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, sessionx.ErrInvalidSession)
}

func TestVerify_Expired(t *testing.T) {
	mgr, err := sessionx.NewManager(testKey, "oauthd", time.Nanosecond)
	require.NoError(t, err)

	token, err := mgr.Mint(sessionx.Identity{SubjectID: "user-1"})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = mgr.Verify(token)
	require.ErrorIs(t, err, sessionx.ErrExpiredSession)
}

func TestVerify_Garbage(t *testing.T) {
	mgr, err := sessionx.NewManager(testKey, "oauthd", time.Hour)
	require.NoError(t, err)

	tests := []string{"", "not-a-jwt", "a.b.c"}
	for _, raw := range tests {
		_, err := mgr.Verify(raw)
		require.ErrorIs(t, err, sessionx.ErrInvalidSession)
	}
}
