package core

import "errors"

// ErrNoCredentials is returned when a Client is constructed without a
// usable credential form.
var ErrNoCredentials = errors.New("no credentials: provide a client id/secret pair or an API key")

// Credentials holds the secrets used to authenticate against the AskNews
// platform. Exactly one form is active: an OAuth2 client id/secret pair
// traded for bearer tokens, or a pre-issued API key attached directly to
// requests. Credentials are immutable after construction.
type Credentials struct {
	clientID     string
	clientSecret Secret
	apiKey       Secret
}

// NewClientCredentials creates Credentials for the OAuth2
// client-credentials flow.
func NewClientCredentials(clientID, clientSecret string) Credentials {
	return Credentials{
		clientID:     clientID,
		clientSecret: NewSecret(clientSecret),
	}
}

// NewAPIKeyCredentials creates Credentials from a pre-issued API key.
// In this mode no token exchange occurs; the key is sent on every
// request under the x-api-key header.
func NewAPIKeyCredentials(apiKey string) Credentials {
	return Credentials{apiKey: NewSecret(apiKey)}
}

// IsAPIKey reports whether these Credentials carry a pre-issued API key
// rather than a client id/secret pair.
func (c Credentials) IsAPIKey() bool {
	return !c.apiKey.IsEmpty()
}

// ClientID returns the OAuth2 client identifier. Empty in API-key mode.
func (c Credentials) ClientID() string {
	return c.clientID
}

// ClientSecret returns the OAuth2 client secret.
func (c Credentials) ClientSecret() Secret {
	return c.clientSecret
}

// APIKey returns the pre-issued API key.
func (c Credentials) APIKey() Secret {
	return c.apiKey
}

// validate checks that exactly one credential form is present.
func (c Credentials) validate() error {
	if c.IsAPIKey() {
		return nil
	}
	if c.clientID == "" || c.clientSecret.IsEmpty() {
		return ErrNoCredentials
	}
	return nil
}
