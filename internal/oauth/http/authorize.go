package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stackfort/oauthd/internal/oauth/service"
	"github.com/stackfort/oauthd/pkg/httpx"
	"github.com/stackfort/oauthd/pkg/oauthsdk"
	"github.com/stackfort/oauthd/pkg/slogx"
)

// AuthorizeHandler serves POST /v1/oauth2/authorize. The consent UI lives
// elsewhere; this endpoint is the post-consent step that binds an
// authorization code to the session's subject and tenant.
type AuthorizeHandler struct {
	CodeService *service.CodeService
}

// ServeHTTP godoc
//
//	@Summary		Authorization Code Minting Endpoint
//	@Description	Mints a short-lived single-use authorization code for the authenticated subject.
//	@Description	PKCE (S256 or plain) is required for public clients and optional for confidential ones.
//	@Tags			OAuth2
//	@Accept			json
//	@Produce		json
//	@Security		SessionAuth
//	@Param			request	body		oauthsdk.AuthorizeRequest	true	"Authorization request"
//	@Success		200		{object}	oauthsdk.AuthorizeResponse	"code, expires_in"
//	@Failure		400		{object}	oauthsdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	oauthsdk.ErrorResponse		"error, error_description"
//	@Header			200		{string}	Cache-Control				"no-store"
//	@Router			/v1/oauth2/authorize [post].
func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req oauthsdk.AuthorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		oauthsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.ClientID == "" || req.RedirectURI == "" || len(req.Scopes) == 0 {
		oauthsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	code, err := h.CodeService.IssueCode(ctx, service.IssueCodeParams{
		ClientID:            req.ClientID,
		RedirectURI:         req.RedirectURI,
		SubjectID:           httpx.SubjectFromCtx(ctx),
		TenantID:            httpx.TenantFromCtx(ctx),
		Scopes:              req.Scopes,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClient):
			oauthsdk.ErrInvalidClient.WriteError(w)
		case errors.Is(err, service.ErrUnauthorizedClient):
			oauthsdk.ErrUnauthorizedClient.WriteError(w)
		case errors.Is(err, service.ErrInvalidScope):
			oauthsdk.ErrInvalidScope.WriteError(w)
		case errors.Is(err, service.ErrInvalidRequest):
			oauthsdk.ErrInvalidRequest.WriteError(w)
		case errors.Is(err, service.ErrTemporary):
			oauthsdk.ErrTemporarilyUnavailable.WriteError(w)
		default:
			log.Error("authorization code issuance failed", "err", err)
			oauthsdk.ErrServerError.WriteError(w)
		}
		return
	}

	ttl := h.CodeService.CodeTTL
	if ttl <= 0 {
		ttl = service.DefaultCodeTTL
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, oauthsdk.AuthorizeResponse{
		Code:      code,
		ExpiresIn: int(ttl.Seconds()),
	})
}
