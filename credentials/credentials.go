// Package credentials holds the OAuth client credentials and the Warcraft
// Logs endpoint URLs, loaded from a config file and the environment.
package credentials

import (
	"github.com/go-playground/validator/v10"
)

// Default endpoint values for the Warcraft Logs API.
const (
	DefaultAuthorizeURL = "https://www.warcraftlogs.com/oauth/authorize"
	DefaultTokenURL     = "https://www.warcraftlogs.com/oauth/token"
	DefaultClientAPIURL = "https://www.warcraftlogs.com/api/v2/client"
	DefaultUserAPIURL   = "https://www.warcraftlogs.com/api/v2/user"
)

// Credentials identifies the OAuth client and the endpoints it talks to.
// Immutable after Load; shared read-only by every component that needs it.
type Credentials struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret Secret `json:"client_secret" validate:"required"`

	// Endpoint URLs, overridable for tests. Defaults are the fixed
	// Warcraft Logs endpoints.
	AuthorizeURL string `json:"authorize_url" validate:"required,url"`
	TokenURL     string `json:"token_url" validate:"required,url"`
	ClientAPIURL string `json:"client_api_url" validate:"required,url"`
	UserAPIURL   string `json:"user_api_url" validate:"required,url"`
}

// ApplyDefaults fills unset endpoint fields with the Warcraft Logs defaults.
// The client identifier and secret have no defaults and must be supplied.
func (c *Credentials) ApplyDefaults() {
	if c.AuthorizeURL == "" {
		c.AuthorizeURL = DefaultAuthorizeURL
	}
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.ClientAPIURL == "" {
		c.ClientAPIURL = DefaultClientAPIURL
	}
	if c.UserAPIURL == "" {
		c.UserAPIURL = DefaultUserAPIURL
	}
}

// Validate validates the credentials using struct tags.
func (c *Credentials) Validate() error {
	return validator.New().Struct(c)
}
