package domain

import "time"

// Client is a registered OAuth2 client. SecretHash is empty for public
// clients; public clients must use PKCE on the authorization_code grant.
type Client struct {
	ID           string
	Name         string
	SecretHash   string
	RedirectURIs []string
	Scopes       []string
	GrantTypes   []GrantType
	Confidential bool
	Active       bool

	// Zero means "use the server default".
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	OwnerID   string
	TenantID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRedirectURI reports whether uri is one of the client's registered
// redirect URIs. Comparison is exact per RFC 6749 section 3.1.2.3.
func (c Client) HasRedirectURI(uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// AllowsGrant reports whether the client may use the given grant type.
func (c Client) AllowsGrant(gt GrantType) bool {
	return ContainsGrant(c.GrantTypes, gt)
}

// ClientPatch describes a partial update of a client's mutable fields.
// Nil fields are left untouched. The secret hash is never patched here;
// secret rotation goes through its own operation.
type ClientPatch struct {
	Name            *string
	RedirectURIs    []string
	Scopes          []string
	GrantTypes      []GrantType
	Active          *bool
	AccessTokenTTL  *time.Duration
	RefreshTokenTTL *time.Duration
}
