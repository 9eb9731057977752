package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. These follow the OWASP low-memory recommendation;
// hashing is intentionally slow, so callers should bound concurrency.
const (
	argonMemory      = 19 * 1024 // KiB
	argonIterations  = 2
	argonParallelism = 1
	argonKeyLength   = 32
	argonSaltLength  = 16
)

var ErrSecretMismatch = errors.New("cryptox: secret does not match")

// HashSecret derives a PHC-format Argon2id hash of the given secret,
// including salt and parameters, with the process pepper mixed in.
func HashSecret(secret string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(
		[]byte(secret+GetPepper()),
		salt,
		argonIterations,
		argonMemory,
		argonParallelism,
		argonKeyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory,
		argonIterations,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifySecret compares a plaintext secret against a PHC-format Argon2id
// hash. The comparison of the derived keys is constant-time. Returns
// ErrSecretMismatch when the secret does not match.
func VerifySecret(secret, encodedHash string) error {
	// Expected shape: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return errors.New("cryptox: malformed hash: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return errors.New("cryptox: malformed hash: not argon2id")
	}
	if parts[2] != "v=19" {
		return errors.New("cryptox: malformed hash: unsupported version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("cryptox: malformed hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("cryptox: malformed hash salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("cryptox: malformed hash key: %w", err)
	}

	got := argon2.IDKey(
		[]byte(secret+GetPepper()),
		salt,
		iters,
		mem,
		par,
		uint32(len(want)), // #nosec G115 - key length is bounded by the hash format
	)

	if subtle.ConstantTimeCompare(got, want) == 1 {
		return nil
	}
	return ErrSecretMismatch
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// VerifyDummy burns one Argon2id derivation against a throwaway hash. Call it
// on the unknown-client path so authentication costs the same whether or not
// the client exists.
func VerifyDummy(secret string) {
	dummyOnce.Do(func() {
		dummyHash, _ = HashSecret("oauthd-dummy")
	})
	if dummyHash != "" {
		_ = VerifySecret(secret, dummyHash)
	}
}
