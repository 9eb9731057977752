package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/stackfort/oauthd/internal/oauth/domain"
	"github.com/stackfort/oauthd/internal/oauth/service"
	"github.com/stackfort/oauthd/pkg/httpx"
	"github.com/stackfort/oauthd/pkg/oauthsdk"
	"github.com/stackfort/oauthd/pkg/slogx"
)

// TokenHandler serves POST /v1/oauth2/token
// Accepts application/x-www-form-urlencoded per the RFC 6749 framework.
type TokenHandler struct {
	GrantService *service.GrantService
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Endpoint
//	@Description	Issues opaque access and refresh tokens using OAuth2 grant types (authorization_code, refresh_token, client_credentials).
//	@Description	Clients authenticate with HTTP Basic or client_secret_post form fields; Basic takes precedence.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Grant type"	Enums(authorization_code, refresh_token, client_credentials)
//	@Param			code			formData	string					false	"Authorization code (required for authorization_code grant)"
//	@Param			redirect_uri	formData	string					false	"Redirect URI (required for authorization_code grant)"
//	@Param			code_verifier	formData	string					false	"PKCE code_verifier (required when PKCE was used)"
//	@Param			refresh_token	formData	string					false	"Refresh token (required for refresh_token grant)"
//	@Param			client_id		formData	string					false	"Client identifier (required unless HTTP Basic is used)"
//	@Param			client_secret	formData	string					false	"Client secret (required for confidential clients)"
//	@Param			scope			formData	string					false	"Space-delimited list of scopes"
//	@Success		200				{object}	oauthsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in, scope"
//	@Failure		400				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		503				{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Header			200				{string}	Pragma					"no-cache"
//	@Router			/v1/oauth2/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		oauthsdk.ErrInvalidContentType.WriteError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		oauthsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	switch r.Form.Get("grant_type") {
	case "authorization_code":
		h.handleAuthorizationCodeGrant(w, r, r.Form)
	case "refresh_token":
		h.handleRefreshGrant(w, r, r.Form)
	case "client_credentials":
		h.handleClientCredentialsGrant(w, r, r.Form)
	default:
		oauthsdk.ErrUnsupportedGrantType.WriteError(w)
	}
}

func (h *TokenHandler) handleAuthorizationCodeGrant(
	w http.ResponseWriter,
	r *http.Request,
	form url.Values,
) {
	ctx := r.Context()

	clientID, clientSecret := clientCredentials(r, form)
	code := strings.TrimSpace(form.Get("code"))
	redirectURI := strings.TrimSpace(form.Get("redirect_uri"))
	codeVerifier := strings.TrimSpace(form.Get("code_verifier"))

	if code == "" || redirectURI == "" || clientID == "" {
		oauthsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	tokens, err := h.GrantService.ExchangeAuthorizationCode(ctx, clientID, clientSecret, code, redirectURI, codeVerifier)
	if err != nil {
		writeGrantError(ctx, w, "authorization_code", err)
		return
	}

	writeTokenResponse(w, tokens)
}

func (h *TokenHandler) handleRefreshGrant(w http.ResponseWriter, r *http.Request, form url.Values) {
	ctx := r.Context()

	clientID, clientSecret := clientCredentials(r, form)
	refresh := form.Get("refresh_token")
	requested := httpx.ParseSpaceDelimitedFields(strings.TrimSpace(form.Get("scope")))

	if refresh == "" || clientID == "" {
		oauthsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	tokens, err := h.GrantService.ExchangeRefreshToken(ctx, clientID, clientSecret, refresh, requested)
	if err != nil {
		writeGrantError(ctx, w, "refresh_token", err)
		return
	}

	writeTokenResponse(w, tokens)
}

func (h *TokenHandler) handleClientCredentialsGrant(
	w http.ResponseWriter,
	r *http.Request,
	form url.Values,
) {
	ctx := r.Context()

	clientID, clientSecret := clientCredentials(r, form)
	requested := httpx.ParseSpaceDelimitedFields(strings.TrimSpace(form.Get("scope")))

	if clientID == "" || clientSecret == "" {
		oauthsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	tokens, err := h.GrantService.ExchangeClientCredentials(ctx, clientID, clientSecret, requested)
	if err != nil {
		writeGrantError(ctx, w, "client_credentials", err)
		return
	}

	writeTokenResponse(w, tokens)
}

// clientCredentials extracts the client id and secret from HTTP Basic auth
// or, failing that, the client_secret_post form fields. Basic credentials
// are form-urlencoded per RFC 6749 section 2.3.1.
func clientCredentials(r *http.Request, form url.Values) (string, string) {
	if user, pass, ok := r.BasicAuth(); ok {
		if id, err := url.QueryUnescape(user); err == nil {
			user = id
		}
		if secret, err := url.QueryUnescape(pass); err == nil {
			pass = secret
		}
		return strings.TrimSpace(user), pass
	}
	return strings.TrimSpace(form.Get("client_id")), form.Get("client_secret")
}

func writeTokenResponse(w http.ResponseWriter, tokens domain.IssuedTokens) {
	response := oauthsdk.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(tokens.ExpiresIn.Seconds()),
		Scope:        strings.Join(tokens.Scope, " "),
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, response)
}

// writeGrantError maps service sentinels onto the RFC 6749 error enum.
func writeGrantError(ctx context.Context, w http.ResponseWriter, grant string, err error) {
	log := slogx.FromContext(ctx)

	switch {
	case errors.Is(err, service.ErrInvalidClient):
		oauthsdk.ErrInvalidClient.WriteError(w)
	case errors.Is(err, service.ErrInvalidGrant):
		oauthsdk.ErrInvalidGrant.WriteError(w)
	case errors.Is(err, service.ErrInvalidScope):
		oauthsdk.ErrInvalidScope.WriteError(w)
	case errors.Is(err, service.ErrUnauthorizedClient):
		oauthsdk.ErrUnauthorizedClient.WriteError(w)
	case errors.Is(err, service.ErrUnsupportedGrantType):
		oauthsdk.ErrUnsupportedGrantType.WriteError(w)
	case errors.Is(err, service.ErrInvalidRequest):
		oauthsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrTemporary):
		oauthsdk.ErrTemporarilyUnavailable.WriteError(w)
	default:
		log.Error(grant+" grant failed", "err", err)
		oauthsdk.ErrServerError.WriteError(w)
	}
}
