package warcraftlogs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hearthlog/go-warcraftlogs/credentials"
	"github.com/hearthlog/go-warcraftlogs/oauth"
	"github.com/hearthlog/go-warcraftlogs/tokenmanager"
	"github.com/hearthlog/go-warcraftlogs/tokenstore"
)

// defaultHTTPTimeout bounds every outbound request.
const defaultHTTPTimeout = 30 * time.Second

// Client is the high-level entry point for the Warcraft Logs API, composing
// credential loading, the OAuth flows, token lifecycle, and GraphQL query
// execution.
type Client struct {
	creds      *credentials.Credentials
	flows      *oauth.Client
	manager    *tokenmanager.Manager
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client. Without WithCredentials, credentials are loaded
// from the environment (WARCRAFTLOGS_CLIENT_ID, WARCRAFTLOGS_CLIENT_SECRET).
func New(opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	creds := cfg.creds
	if creds == nil {
		loaded, err := credentials.Load()
		if err != nil {
			return nil, fmt.Errorf("loading credentials: %w", err)
		}
		creds = loaded
	} else {
		creds.ApplyDefaults()
		if err := creds.Validate(); err != nil {
			return nil, fmt.Errorf("invalid credentials: %w", err)
		}
	}

	store := cfg.store
	if store == nil && cfg.tokenDir != "" {
		fileStore, err := tokenstore.NewFileStore(cfg.tokenDir)
		if err != nil {
			return nil, fmt.Errorf("creating token store: %w", err)
		}
		store = fileStore
	}

	flows := oauth.NewClient(creds,
		oauth.WithHTTPClient(cfg.httpClient),
		oauth.WithLogger(cfg.logger),
	)

	managerOpts := []tokenmanager.Option{
		tokenmanager.WithRefreshBuffer(cfg.buffer),
		tokenmanager.WithLogger(cfg.logger),
	}
	if store != nil {
		managerOpts = append(managerOpts, tokenmanager.WithStore(store))
	}

	return &Client{
		creds:      creds,
		flows:      flows,
		manager:    tokenmanager.New(flows, managerOpts...),
		httpClient: cfg.httpClient,
		logger:     cfg.logger,
	}, nil
}

// TokenManager exposes the underlying token manager, e.g. for the
// oauth2.TokenSource adapters.
func (c *Client) TokenManager() *tokenmanager.Manager {
	return c.manager
}

// QueryPublicAPI executes a GraphQL query against the public client
// endpoint, obtaining a client-credentials token as needed.
func (c *Client) QueryPublicAPI(ctx context.Context, query string, variables map[string]any) (*QueryResponse, error) {
	token, err := c.manager.ClientToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtaining client token: %w", err)
	}
	return c.execute(ctx, c.creds.ClientAPIURL, token, query, variables)
}

// UserAuth selects the token path for user API queries. A non-empty
// AccessToken is used as-is and never refreshed; the caller accepts
// responsibility for its freshness. Otherwise RefreshToken drives
// acquisition through the token manager under UserID.
type UserAuth struct {
	AccessToken  string
	RefreshToken string
	UserID       string
}

// QueryUserAPI executes a GraphQL query against the user endpoint. Requires
// either an access token or a refresh token in auth.
func (c *Client) QueryUserAPI(ctx context.Context, query string, variables map[string]any, auth UserAuth) (*QueryResponse, error) {
	token := auth.AccessToken
	if token == "" {
		if auth.RefreshToken == "" {
			return nil, fmt.Errorf("user API queries require an access token or refresh token")
		}
		userToken, err := c.manager.UserToken(ctx, auth.RefreshToken, auth.UserID)
		if err != nil {
			return nil, fmt.Errorf("obtaining user token: %w", err)
		}
		token = userToken
	}
	return c.execute(ctx, c.creds.UserAPIURL, token, query, variables)
}

// AuthorizeUser builds the authorization URL that starts the user consent
// flow. The returned StateData must be held across the redirect; with
// usePKCE its CodeVerifier is required for HandleCallback.
func (c *Client) AuthorizeUser(redirectURI string, usePKCE bool) (string, *oauth.StateData, error) {
	return c.flows.AuthorizationURL(redirectURI, "", usePKCE)
}

// HandleCallback exchanges the authorization code returned to the redirect
// URI for a token and, when the response carries a refresh token, saves the
// record under the user's key. Driving the browser redirect is the caller's
// responsibility. An empty userID falls back to tokenmanager.DefaultUserID.
func (c *Client) HandleCallback(ctx context.Context, code, redirectURI, codeVerifier, userID string) (*oauth.Token, error) {
	token, err := c.flows.ExchangeCode(ctx, code, redirectURI, codeVerifier)
	if err != nil {
		return nil, err
	}

	if token.RefreshToken != "" {
		key := tokenmanager.UserKey(userID)
		if err := c.manager.SaveToken(ctx, key, token); err != nil {
			c.logger.WarnContext(ctx, "failed to persist user token", "key", key, "error", err)
		}
	}

	return token, nil
}

// ValidateToken probes the public API with the given access token.
// ValidityUnknown is returned together with the underlying transport error,
// letting callers decide whether to treat it as invalid or escalate; a
// rejection by the server is ValidityInvalid with a nil error.
func (c *Client) ValidateToken(ctx context.Context, accessToken string) (oauth.Validity, error) {
	resp, err := c.execute(ctx, c.creds.ClientAPIURL, accessToken, oauth.ValidationQuery, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return oauth.ValidityInvalid, nil
		}
		return oauth.ValidityUnknown, err
	}

	if resp.HasErrors() || !resp.hasData() {
		return oauth.ValidityInvalid, nil
	}
	return oauth.ValidityValid, nil
}

// ClearTokens removes every cached and persisted token record.
func (c *Client) ClearTokens(ctx context.Context) error {
	return c.manager.ClearAll(ctx)
}
