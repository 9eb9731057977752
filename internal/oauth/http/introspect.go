package http

import (
	"net/http"
	"strings"

	"github.com/stackfort/oauthd/internal/oauth/service"
	"github.com/stackfort/oauthd/pkg/httpx"
	"github.com/stackfort/oauthd/pkg/oauthsdk"
	"github.com/stackfort/oauthd/pkg/slogx"
)

// IntrospectHandler serves POST /v1/oauth2/introspect per RFC 7662. Every
// negative outcome, including failed client authentication, is the same
// {"active": false} response.
type IntrospectHandler struct {
	RegistryService  *service.RegistryService
	LifecycleService *service.LifecycleService
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Introspection Endpoint
//	@Description	Reports the state of an access or refresh token (RFC 7662).
//	@Description	A token is active only when it exists, is unexpired and unrevoked, and belongs to the authenticated client.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			token			formData	string	true	"The token to introspect"
//	@Param			token_type_hint	formData	string	false	"Hint about token type"	Enums(access_token, refresh_token)
//	@Param			client_id		formData	string	false	"Client identifier (required unless HTTP Basic is used)"
//	@Param			client_secret	formData	string	false	"Client secret (required for confidential clients)"
//	@Success		200	{object}	oauthsdk.IntrospectionResponse	"active plus token metadata when active"
//	@Failure		400	{object}	oauthsdk.ErrorResponse			"error, error_description"
//	@Failure		503	{object}	oauthsdk.ErrorResponse			"error, error_description"
//	@Header			200	{string}	Cache-Control					"no-store"
//	@Router			/v1/oauth2/introspect [post].
func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
		writeIntrospection(w, oauthsdk.IntrospectionResponse{Active: false})
		return
	}

	info, err := h.LifecycleService.Introspect(ctx, client, token, r.Form.Get("token_type_hint"))
	if err != nil {
		// Storage failure is the one case that must not masquerade as an
		// inactive token.
		log.Error("introspection failed", "err", err)
		oauthsdk.ErrTemporarilyUnavailable.WriteError(w)
		return
	}

	if !info.Active {
		writeIntrospection(w, oauthsdk.IntrospectionResponse{Active: false})
		return
	}

	writeIntrospection(w, oauthsdk.IntrospectionResponse{
		Active:    true,
		Scope:     strings.Join(info.Scopes, " "),
		ClientID:  info.ClientID,
		TokenType: info.TokenType,
		Exp:       info.ExpiresAt.Unix(),
		Iat:       info.IssuedAt.Unix(),
		Sub:       info.SubjectID,
		TenantID:  info.TenantID,
	})
}

func writeIntrospection(w http.ResponseWriter, resp oauthsdk.IntrospectionResponse) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}
