package oauth

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Token is a token record returned by the authorization server, extended
// with the timestamps needed for expiration tracking. ObtainedAt and
// ExpiresAt are stamped when the record is parsed and travel with it
// through persistence.
type Token struct {
	// AccessToken is the bearer token presented to the API.
	AccessToken string `json:"access_token"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// RefreshToken is exchanged for a new access token when this one
	// expires (optional).
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresIn is the token lifetime in seconds as reported by the server.
	ExpiresIn int64 `json:"expires_in,omitempty"`

	// Scope is the granted scope(s).
	Scope string `json:"scope,omitempty"`

	// ObtainedAt is when the token response was parsed.
	ObtainedAt time.Time `json:"obtained_at"`

	// ExpiresAt is ObtainedAt plus ExpiresIn.
	ExpiresAt time.Time `json:"expires_at"`
}

// Stale reports whether the token must be replaced before use. A token is
// stale once now reaches ExpiresAt minus buffer; the buffer absorbs clock
// skew and in-flight request latency. Tokens without an expiration never
// go stale.
func (t *Token) Stale(now time.Time, buffer time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(t.ExpiresAt.Add(-buffer))
}

// OAuth2Token converts the record for use with golang.org/x/oauth2, e.g.
// oauth2.Transport or oauth2.NewClient.
func (t *Token) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
	}
}

// parseTokenResponse parses a token endpoint response body into a Token.
// This is the only place token responses are parsed; it stamps ObtainedAt
// and derives ExpiresAt.
func parseTokenResponse(body []byte, now time.Time) (*Token, error) {
	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	token.ObtainedAt = now
	if token.ExpiresIn > 0 {
		token.ExpiresAt = now.Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return &token, nil
}
