package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
)

// PKCE challenge methods per RFC 7636.
const (
	PKCEMethodS256  = "S256"
	PKCEMethodPlain = "plain"
)

// ErrUnsupportedChallengeMethod reports a code_challenge_method other than
// S256 or plain.
var ErrUnsupportedChallengeMethod = errors.New("cryptox: unsupported code challenge method")

// NormalizePKCEMethod canonicalizes a challenge method string. An empty
// method defaults to S256. Methods are matched case-insensitively.
func NormalizePKCEMethod(method string) (string, error) {
	switch m := strings.TrimSpace(method); {
	case m == "" || strings.EqualFold(m, PKCEMethodS256):
		return PKCEMethodS256, nil
	case strings.EqualFold(m, PKCEMethodPlain):
		return PKCEMethodPlain, nil
	default:
		return "", ErrUnsupportedChallengeMethod
	}
}

// VerifyPKCE checks a code_verifier against a stored challenge. For S256 the
// verifier's SHA-256 is base64url-encoded and compared; for plain the raw
// values are compared. Both comparisons are constant-time.
func VerifyPKCE(verifier, challenge, method string) bool {
	verifier = strings.TrimSpace(verifier)
	challenge = strings.TrimSpace(challenge)
	if verifier == "" || challenge == "" {
		return false
	}

	switch {
	case strings.EqualFold(method, PKCEMethodS256):
		sum := sha256.Sum256([]byte(verifier))
		derived := base64.RawURLEncoding.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(derived), []byte(challenge)) == 1
	case strings.EqualFold(method, PKCEMethodPlain):
		return subtle.ConstantTimeCompare([]byte(verifier), []byte(challenge)) == 1
	default:
		return false
	}
}

// S256Challenge derives the S256 code challenge for a verifier. Used by
// tests and SDK callers building an authorization request.
func S256Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
