package domain

// GrantType enumerates the OAuth2 grant types the token endpoint understands.
type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantClientCredentials GrantType = "client_credentials"
	GrantRefreshToken      GrantType = "refresh_token"
)

// Valid reports whether gt is one of the supported grant types.
func (gt GrantType) Valid() bool {
	switch gt {
	case GrantAuthorizationCode, GrantClientCredentials, GrantRefreshToken:
		return true
	}
	return false
}

func (gt GrantType) String() string { return string(gt) }

// ContainsGrant reports whether the grant type is present in the set.
func ContainsGrant(set []GrantType, gt GrantType) bool {
	for _, g := range set {
		if g == gt {
			return true
		}
	}
	return false
}
