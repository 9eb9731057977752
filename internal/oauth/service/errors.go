package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for grant processing. The HTTP layer maps these onto the
// RFC 6749 error enum; internal distinctions (consumed vs expired code and
// the like) collapse to ErrInvalidGrant before they leave the service so the
// boundary never acts as an oracle.
var (
	ErrInvalidClient        = errors.New("invalid_client")
	ErrInvalidGrant         = errors.New("invalid_grant")
	ErrInvalidScope         = errors.New("invalid_scope")
	ErrUnauthorizedClient   = errors.New("unauthorized_client")
	ErrUnsupportedGrantType = errors.New("unsupported_grant_type")
	ErrInvalidRequest       = errors.New("invalid_request")

	// ErrTemporary wraps storage timeouts and contention. Safe to retry for
	// read-only operations only.
	ErrTemporary = errors.New("temporarily_unavailable")
)

// Management-surface errors.
var (
	ErrClientNotFound  = errors.New("client not found")
	ErrForbidden       = errors.New("client belongs to another owner")
	ErrNotConfidential = errors.New("client is public and has no secret")
)

// ClientSpecError reports why a client create/update request was rejected.
// Problems are human-readable, one per offending field.
type ClientSpecError struct {
	Problems []string
}

func (e *ClientSpecError) Error() string {
	return fmt.Sprintf("invalid client spec: %s", strings.Join(e.Problems, "; "))
}

// DefaultStoreTimeout bounds individual storage operations when a service is
// not configured with its own limit.
const DefaultStoreTimeout = 5 * time.Second

func storeCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// mapTemporary converts storage deadline failures into ErrTemporary while
// leaving everything else untouched.
func mapTemporary(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTemporary, err)
	}
	return err
}

// subsetOf reports whether every scope in sub is present in super.
func subsetOf(sub, super []string) bool {
	set := make(map[string]struct{}, len(super))
	for _, s := range super {
		set[s] = struct{}{}
	}
	for _, s := range sub {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
