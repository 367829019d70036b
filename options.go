package warcraftlogs

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hearthlog/go-warcraftlogs/credentials"
	"github.com/hearthlog/go-warcraftlogs/tokenmanager"
	"github.com/hearthlog/go-warcraftlogs/tokenstore"
)

// Option configures a Client.
type Option func(*clientConfig)

// clientConfig holds configuration for New.
type clientConfig struct {
	creds      *credentials.Credentials
	tokenDir   string
	store      tokenstore.Store
	buffer     time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// WithCredentials supplies credentials directly instead of loading them from
// the environment. Unset endpoint fields are filled with the Warcraft Logs
// defaults.
func WithCredentials(creds *credentials.Credentials) Option {
	return func(c *clientConfig) {
		c.creds = creds
	}
}

// WithTokenDir persists token records as files under dir, one per record
// key. Shorthand for WithTokenStore with a tokenstore.FileStore.
func WithTokenDir(dir string) Option {
	return func(c *clientConfig) {
		c.tokenDir = dir
	}
}

// WithTokenStore persists token records in the given store. Takes precedence
// over WithTokenDir.
func WithTokenStore(store tokenstore.Store) Option {
	return func(c *clientConfig) {
		c.store = store
	}
}

// WithRefreshBuffer overrides how long before expiry a token is considered
// stale. Defaults to tokenmanager.DefaultRefreshBuffer.
func WithRefreshBuffer(buffer time.Duration) Option {
	return func(c *clientConfig) {
		c.buffer = buffer
	}
}

// WithHTTPClient sets the HTTP client used for token endpoint and GraphQL
// requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		buffer:     tokenmanager.DefaultRefreshBuffer,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     slog.Default(),
	}
}
