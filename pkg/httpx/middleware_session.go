package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/stackfort/oauthd/pkg/sessionx"
	"github.com/stackfort/oauthd/pkg/slogx"
)

// SessionMiddleware authenticates management requests with a bearer session
// token and injects the resolved subject and tenant into the context.
func SessionMiddleware(m *sessionx.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing session token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			id, err := m.Verify(raw)
			if err != nil {
				log.Warn("session verification failed", "err", err)
				writeBearerError(w, "session verification failed")
				return
			}

			ctx = context.WithValue(ctx, CtxKeySubjectID, id.SubjectID)
			ctx = context.WithValue(ctx, CtxKeyTenantID, id.TenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
