package oauthsdk

// ErrorResponse is the RFC 6749 error envelope, used for parsing HTTP error
// responses. Server code writes OAuth2Error instead.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// TokenResponse is the OAuth2 token endpoint success response per RFC 6749.
type TokenResponse struct {
	// AccessToken is the opaque bearer token. It is returned exactly once.
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque refresh token, absent for grants that do
	// not mint one (client_credentials).
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expires_in"`

	// Scope is the space-delimited granted scope set.
	Scope string `json:"scope,omitempty"`
}

// IntrospectionResponse is the RFC 7662 introspection response. When a token
// is inactive only the Active field is populated.
type IntrospectionResponse struct {
	Active bool `json:"active"`

	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
	Sub       string `json:"sub,omitempty"`
	TenantID  string `json:"tenant_id,omitempty"`
}

// ClientSpec is the management request body for creating a client.
type ClientSpec struct {
	Name            string   `json:"name"`
	RedirectURIs    []string `json:"redirect_uris"`
	Scopes          []string `json:"scopes"`
	GrantTypes      []string `json:"grant_types"`
	Confidential    bool     `json:"confidential"`
	AccessTokenTTL  int      `json:"access_token_ttl_seconds,omitempty"`
	RefreshTokenTTL int      `json:"refresh_token_ttl_seconds,omitempty"`
}

// ClientPatch is the management request body for partially updating a
// client. Nil/absent fields are left untouched.
type ClientPatch struct {
	Name            *string  `json:"name,omitempty"`
	RedirectURIs    []string `json:"redirect_uris,omitempty"`
	Scopes          []string `json:"scopes,omitempty"`
	GrantTypes      []string `json:"grant_types,omitempty"`
	Active          *bool    `json:"active,omitempty"`
	AccessTokenTTL  *int     `json:"access_token_ttl_seconds,omitempty"`
	RefreshTokenTTL *int     `json:"refresh_token_ttl_seconds,omitempty"`
}

// AuthorizeRequest is the session-authenticated request to mint an
// authorization code for the calling subject.
type AuthorizeRequest struct {
	ClientID            string   `json:"client_id"`
	RedirectURI         string   `json:"redirect_uri"`
	Scopes              []string `json:"scopes"`
	CodeChallenge       string   `json:"code_challenge,omitempty"`
	CodeChallengeMethod string   `json:"code_challenge_method,omitempty"`
}

// AuthorizeResponse carries the minted authorization code. The caller
// forwards it to the client via the redirect URI.
type AuthorizeResponse struct {
	Code      string `json:"code"`
	ExpiresIn int    `json:"expires_in"`
}

// HealthResponse is the /livez and /readyz envelope; readyz adds Checks.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}

// ClientResponse is the management representation of a client. The secret
// hash never appears here; Secret is populated exactly once, on create and
// on secret regeneration.
type ClientResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	RedirectURIs    []string `json:"redirect_uris"`
	Scopes          []string `json:"scopes"`
	GrantTypes      []string `json:"grant_types"`
	Confidential    bool     `json:"confidential"`
	Active          bool     `json:"active"`
	AccessTokenTTL  int      `json:"access_token_ttl_seconds"`
	RefreshTokenTTL int      `json:"refresh_token_ttl_seconds"`
	TenantID        string   `json:"tenant_id"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`

	Secret string `json:"secret,omitempty"`
}
