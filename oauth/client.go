package oauth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hearthlog/go-warcraftlogs/credentials"
)

// defaultTimeout bounds every token endpoint request.
const defaultTimeout = 30 * time.Second

// StateData is the ephemeral output of AuthorizationURL that the caller
// must hold across the redirect round-trip. CodeVerifier is set only when
// PKCE is in use and is required for the later code exchange.
type StateData struct {
	State        string `json:"state"`
	CodeVerifier string `json:"code_verifier,omitempty"`
}

// Client executes the OAuth flows against the token and authorization
// endpoints configured in the credentials.
type Client struct {
	creds      *credentials.Credentials
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client for token endpoint requests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithNowFunc overrides the clock used to stamp parsed tokens, mainly for
// tests.
func WithNowFunc(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a flows client for the given credentials.
func NewClient(creds *credentials.Credentials, opts ...ClientOption) *Client {
	c := &Client{
		creds:      creds,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientCredentialsToken obtains a token through the client-credentials
// flow, used for public API access.
func (c *Client) ClientCredentialsToken(ctx context.Context) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	token, err := c.tokenRequest(ctx, data, true)
	if err != nil {
		return nil, fmt.Errorf("client credentials flow: %w", err)
	}
	return token, nil
}

// AuthorizationURL builds the authorization endpoint URL that starts the
// user consent flow. An empty state is replaced with a fresh random value.
// With usePKCE, an S256 code challenge is added to the URL and the matching
// verifier returned in StateData for the later code exchange.
func (c *Client) AuthorizationURL(redirectURI, state string, usePKCE bool) (string, *StateData, error) {
	if state == "" {
		state = uuid.NewString()
	}

	authURL, err := url.Parse(c.creds.AuthorizeURL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid authorize endpoint: %w", err)
	}

	query := authURL.Query()
	query.Set("client_id", c.creds.ClientID)
	query.Set("redirect_uri", redirectURI)
	query.Set("response_type", "code")
	query.Set("state", state)

	stateData := &StateData{State: state}

	if usePKCE {
		verifier, challenge, err := GeneratePKCE()
		if err != nil {
			return "", nil, fmt.Errorf("generating PKCE pair: %w", err)
		}
		query.Set("code_challenge", challenge)
		query.Set("code_challenge_method", "S256")
		stateData.CodeVerifier = verifier
	}

	authURL.RawQuery = query.Encode()
	return authURL.String(), stateData, nil
}

// ExchangeCode exchanges an authorization code for a token. A non-empty
// codeVerifier selects the PKCE variant: client_id and code_verifier travel
// in the body and no basic auth header is sent, per the public-client
// profile. Without a verifier the request authenticates with basic auth.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI, codeVerifier string) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", redirectURI)

	useBasicAuth := codeVerifier == ""
	if !useBasicAuth {
		data.Set("client_id", c.creds.ClientID)
		data.Set("code_verifier", codeVerifier)
	}

	token, err := c.tokenRequest(ctx, data, useBasicAuth)
	if err != nil {
		return nil, fmt.Errorf("authorization code exchange: %w", err)
	}

	c.logger.DebugContext(ctx, "exchanged authorization code",
		"pkce", !useBasicAuth, "expires_in", token.ExpiresIn)

	return token, nil
}

// RefreshAccessToken obtains a new token through the refresh flow. When the
// server rotates the refresh token the new one is on the returned record;
// otherwise the supplied token is carried over so the record stays usable
// for the next refresh.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	token, err := c.tokenRequest(ctx, data, true)
	if err != nil {
		return nil, fmt.Errorf("refresh flow: %w", err)
	}

	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}

	return token, nil
}

// tokenRequest POSTs a form-encoded grant request to the token endpoint and
// parses the response. Fails on any non-2xx status.
func (c *Client) tokenRequest(ctx context.Context, data url.Values, useBasicAuth bool) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.creds.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if useBasicAuth {
		req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret.Value())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Body stays out of the error: server error responses can carry
		// hints about the credentials involved.
		c.logger.DebugContext(ctx, "token request rejected",
			"status", resp.StatusCode, "grant_type", data.Get("grant_type"))
		return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	return parseTokenResponse(body, c.now())
}
