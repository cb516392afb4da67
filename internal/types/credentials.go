package types

import "time"

// AuthType identifies how a set of credentials was obtained
type AuthType string

const (
	AuthTypeOAuth          AuthType = "oauth"
	AuthTypeServiceAccount AuthType = "service_account"
)

// Credentials is the in-memory form of a stored account token
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiryDate   time.Time
	Scopes       []string
	Type         AuthType

	// ServiceAccountKey holds the raw key JSON for service_account accounts
	ServiceAccountKey []byte
	ImpersonatedUser  string
}

// StoredCredentials is the serialized form kept in the keyring or on disk
type StoredCredentials struct {
	Account           string   `json:"account"`
	AccessToken       string   `json:"access_token,omitempty"`
	RefreshToken      string   `json:"refresh_token,omitempty"`
	ExpiryDate        string   `json:"expiry_date,omitempty"`
	Scopes            []string `json:"scopes,omitempty"`
	Type              AuthType `json:"type"`
	ServiceAccountKey string   `json:"service_account_key,omitempty"`
	ImpersonatedUser  string   `json:"impersonated_user,omitempty"`
}
