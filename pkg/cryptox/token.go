package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
	// TokenSize512 provides 512 bits of entropy (86 chars base64url).
	TokenSize512 = 64

	// minTokenSize is the floor for opaque credentials. Anything shorter is
	// rejected rather than silently issued.
	minTokenSize = 32
)

// GenerateToken creates a cryptographically random opaque token of the given
// byte length, returned base64url-encoded without padding. Sizes below 32
// bytes are rejected.
func GenerateToken(size int) (string, error) {
	if size < minTokenSize {
		return "", fmt.Errorf("cryptox: token size must be at least %d bytes, got %d", minTokenSize, size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns the deterministic SHA-256 fingerprint of a token,
// base64url-encoded. Stores keep fingerprints so the opaque value never rests
// in the database.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
