package http

import (
	"net/http"
	"strings"

	"github.com/stackfort/oauthd/internal/oauth/service"
	"github.com/stackfort/oauthd/pkg/httpx"
	"github.com/stackfort/oauthd/pkg/oauthsdk"
	"github.com/stackfort/oauthd/pkg/slogx"
)

// RevokeHandler serves POST /v1/oauth2/revoke per RFC 7009. Unknown tokens,
// cross-client tokens, and failed client authentication all produce the same
// 200 response so the endpoint cannot be used to scan for live tokens.
type RevokeHandler struct {
	RegistryService  *service.RegistryService
	LifecycleService *service.LifecycleService
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Revocation Endpoint
//	@Description	Revokes a previously issued access or refresh token (RFC 7009).
//	@Description	Revoking a refresh token also revokes the access tokens minted in the same grant.
//	@Description	The endpoint is idempotent and returns 200 OK even for invalid or unknown tokens.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			token			formData	string	true	"The token to revoke"
//	@Param			token_type_hint	formData	string	false	"Hint about token type"	Enums(access_token, refresh_token)
//	@Param			client_id		formData	string	false	"Client identifier (required unless HTTP Basic is used)"
//	@Param			client_secret	formData	string	false	"Client secret (required for confidential clients)"
//	@Success		200	"Token revoked (or was already invalid)"
//	@Failure		400	{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		503	{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Header			200	{string}	Cache-Control			"no-store"
//	@Router			/v1/oauth2/revoke [post].
func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		oauthsdk.ErrInvalidContentType.WriteError(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		oauthsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	token := r.Form.Get("token")
	if token == "" {
		oauthsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	clientID, clientSecret := clientCredentials(r, r.Form)
	client, err := h.RegistryService.AuthenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		// Authentication failures are indistinguishable from unknown tokens.
		writeRevokeOK(w)
		return
	}

	if err := h.LifecycleService.Revoke(ctx, client, token, r.Form.Get("token_type_hint")); err != nil {
		log.Warn("revocation failed", "err", err)
	}

	writeRevokeOK(w)
}

func writeRevokeOK(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}
