// Package oauthsdk provides the wire types for the oauthd HTTP surface and a
// small client SDK for driving it, used by service consumers and the
// end-to-end tests.
package oauthsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin HTTP client for an oauthd server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a Client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// AuthorizationCodeGrant exchanges an authorization code for tokens.
// clientSecret is required for confidential clients; codeVerifier for PKCE.
func (c *Client) AuthorizationCodeGrant(
	ctx context.Context,
	clientID, clientSecret, code, redirectURI, codeVerifier string,
) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"client_id":    {clientID},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}
	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}
	if codeVerifier != "" {
		form.Set("code_verifier", codeVerifier)
	}
	return c.postTokenForm(ctx, form)
}

// ClientCredentialsGrant performs the client_credentials grant.
func (c *Client) ClientCredentialsGrant(
	ctx context.Context,
	clientID, clientSecret string,
	scopes []string,
) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}
	if len(scopes) > 0 {
		form.Set("scope", strings.Join(scopes, " "))
	}
	return c.postTokenForm(ctx, form)
}

// RefreshGrant exchanges a refresh token for a fresh token pair. scopes may
// narrow the granted scope set.
func (c *Client) RefreshGrant(
	ctx context.Context,
	clientID, clientSecret, refreshToken string,
	scopes []string,
) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {clientID},
		"refresh_token": {refreshToken},
	}
	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}
	if len(scopes) > 0 {
		form.Set("scope", strings.Join(scopes, " "))
	}
	return c.postTokenForm(ctx, form)
}

// Revoke revokes a token per RFC 7009. A nil error only means the server
// answered 200; revocation outcomes are deliberately opaque.
func (c *Client) Revoke(
	ctx context.Context,
	clientID, clientSecret, token, tokenTypeHint string,
) error {
	form := url.Values{
		"client_id": {clientID},
		"token":     {token},
	}
	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}
	if tokenTypeHint != "" {
		form.Set("token_type_hint", tokenTypeHint)
	}

	resp, err := c.postForm(ctx, "/v1/oauth2/revoke", form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("oauthsdk: revoke returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Introspect queries token state per RFC 7662.
func (c *Client) Introspect(
	ctx context.Context,
	clientID, clientSecret, token, tokenTypeHint string,
) (*IntrospectionResponse, error) {
	form := url.Values{
		"client_id": {clientID},
		"token":     {token},
	}
	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}
	if tokenTypeHint != "" {
		form.Set("token_type_hint", tokenTypeHint)
	}

	resp, err := c.postForm(ctx, "/v1/oauth2/introspect", form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp.StatusCode, body)
	}

	var out IntrospectionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("oauthsdk: decode introspection response: %w", err)
	}
	return &out, nil
}

// Authorize mints an authorization code for the authenticated subject. This
// is the session-side half of the authorization_code flow; the code is then
// redeemed at the token endpoint.
func (c *Client) Authorize(
	ctx context.Context,
	sessionToken string,
	req AuthorizeRequest,
) (*AuthorizeResponse, error) {
	var out AuthorizeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/oauth2/authorize", sessionToken, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateClient registers a new OAuth client through the management surface.
func (c *Client) CreateClient(
	ctx context.Context,
	sessionToken string,
	spec ClientSpec,
) (*ClientResponse, error) {
	var out ClientResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/clients", sessionToken, spec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetClient fetches one of the caller's clients.
func (c *Client) GetClient(ctx context.Context, sessionToken, clientID string) (*ClientResponse, error) {
	var out ClientResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/clients/"+clientID, sessionToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListClients lists the caller's clients.
func (c *Client) ListClients(ctx context.Context, sessionToken string) ([]ClientResponse, error) {
	var out []ClientResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/clients", sessionToken, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateClient applies a partial update to one of the caller's clients.
func (c *Client) UpdateClient(
	ctx context.Context,
	sessionToken, clientID string,
	patch ClientPatch,
) (*ClientResponse, error) {
	var out ClientResponse
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/clients/"+clientID, sessionToken, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegenerateSecret rotates a confidential client's secret. The returned
// response carries the new plaintext secret exactly once.
func (c *Client) RegenerateSecret(ctx context.Context, sessionToken, clientID string) (*ClientResponse, error) {
	var out ClientResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/clients/"+clientID+"/secret", sessionToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteClient deletes a client, cascading token revocation server-side.
func (c *Client) DeleteClient(ctx context.Context, sessionToken, clientID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/clients/"+clientID, sessionToken, nil, nil)
}

func (c *Client) postTokenForm(ctx context.Context, form url.Values) (*TokenResponse, error) {
	resp, err := c.postForm(ctx, "/v1/oauth2/token", form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp.StatusCode, body)
	}

	var out TokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("oauthsdk: decode token response: %w", err)
	}
	return &out, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.BaseURL+path,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.HTTP.Do(req)
}

func (c *Client) doJSON(ctx context.Context, method, path, sessionToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// parseError turns an HTTP error body into a typed *OAuth2Error.
func parseError(status int, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &OAuth2Error{
			StatusCode:  status,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}
	return &OAuth2Error{
		StatusCode:  status,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)),
	}
}
