package tokenmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hearthlog/go-warcraftlogs/oauth"
	"github.com/hearthlog/go-warcraftlogs/tokenstore"
)

const (
	// ClientKey is the record key for the client-credentials token.
	ClientKey = "client_credentials"

	// DefaultUserID identifies user records when the caller does not
	// supply an identifier.
	DefaultUserID = "default"

	// userKeyPrefix prefixes per-user record keys.
	userKeyPrefix = "user_"
)

// DefaultRefreshBuffer is subtracted from a token's expiry when deciding
// staleness, so a token is never used past true expiry despite clock skew
// or in-flight request latency.
const DefaultRefreshBuffer = 5 * time.Minute

// UserKey returns the record key for a user's token.
func UserKey(userID string) string {
	if userID == "" {
		userID = DefaultUserID
	}
	return userKeyPrefix + userID
}

// Manager owns the token records: it decides when a record is stale,
// acquires replacements through the flows client, and keeps the optional
// durable store in sync. Callers never touch stored records directly.
type Manager struct {
	flows  *oauth.Client
	store  tokenstore.Store
	buffer time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu     sync.RWMutex
	tokens map[string]*oauth.Token

	// group collapses concurrent acquisitions for the same key into one
	// token endpoint call.
	group singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore enables durable persistence. Records are written through on
// save and reloaded on first use.
func WithStore(store tokenstore.Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithRefreshBuffer overrides DefaultRefreshBuffer.
func WithRefreshBuffer(buffer time.Duration) Option {
	return func(m *Manager) {
		m.buffer = buffer
	}
}

// WithNowFunc overrides the clock used for staleness decisions, mainly for
// tests.
func WithNowFunc(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New creates a Manager that acquires tokens through flows.
func New(flows *oauth.Client, opts ...Option) *Manager {
	m := &Manager{
		flows:  flows,
		buffer: DefaultRefreshBuffer,
		now:    time.Now,
		logger: slog.Default(),
		tokens: make(map[string]*oauth.Token),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ClientToken returns a valid access token for the public API, running the
// client-credentials flow when the cached record is stale or absent.
func (m *Manager) ClientToken(ctx context.Context) (string, error) {
	record, err := m.clientRecord(ctx)
	if err != nil {
		return "", err
	}
	return record.AccessToken, nil
}

// UserToken returns a valid access token for the user API. When the cached
// record for userID is stale or absent it runs the refresh flow, preferring
// the stored record's rotated refresh token over the supplied one; the
// supplied refreshToken seeds the first acquisition. An empty userID falls
// back to DefaultUserID.
func (m *Manager) UserToken(ctx context.Context, refreshToken, userID string) (string, error) {
	record, err := m.userRecord(ctx, refreshToken, userID)
	if err != nil {
		return "", err
	}
	return record.AccessToken, nil
}

func (m *Manager) clientRecord(ctx context.Context) (*oauth.Token, error) {
	return m.record(ctx, ClientKey, func(ctx context.Context, _ *oauth.Token) (*oauth.Token, error) {
		return m.flows.ClientCredentialsToken(ctx)
	})
}

func (m *Manager) userRecord(ctx context.Context, refreshToken, userID string) (*oauth.Token, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	return m.record(ctx, UserKey(userID), func(ctx context.Context, stale *oauth.Token) (*oauth.Token, error) {
		rt := refreshToken
		if stale != nil && stale.RefreshToken != "" {
			// The stored record carries the most recently rotated
			// refresh token; the seed may already be revoked.
			rt = stale.RefreshToken
		}
		if rt == "" {
			return nil, fmt.Errorf("no refresh token for user %q", userID)
		}
		return m.flows.RefreshAccessToken(ctx, rt)
	})
}

// record returns a fresh record for key, invoking acquire when the cached
// record is stale or absent. Concurrent callers hitting the same stale key
// share a single acquisition. acquire receives the stale record, if any.
func (m *Manager) record(ctx context.Context, key string, acquire func(context.Context, *oauth.Token) (*oauth.Token, error)) (*oauth.Token, error) {
	if record, _ := m.lookup(ctx, key); record != nil {
		return record, nil
	}

	result, err, _ := m.group.Do(key, func() (any, error) {
		// Re-check after winning the flight: a concurrent caller may have
		// refreshed the record already.
		record, stale := m.lookup(ctx, key)
		if record != nil {
			return record, nil
		}

		record, err := acquire(ctx, stale)
		if err != nil {
			return nil, err
		}

		// The fresh token is valid even if persisting it fails; future
		// refreshes can retry the write.
		if err := m.SaveToken(ctx, key, record); err != nil {
			m.logger.WarnContext(ctx, "failed to persist token record", "key", key, "error", err)
		}

		return record, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*oauth.Token), nil
}

// lookup returns the cached or stored record for key when fresh. The second
// return is the stale record, if any, kept for refresh-token reuse.
func (m *Manager) lookup(ctx context.Context, key string) (fresh, stale *oauth.Token) {
	now := m.now()

	m.mu.RLock()
	record := m.tokens[key]
	m.mu.RUnlock()

	if record != nil {
		if !record.Stale(now, m.buffer) {
			return record, nil
		}
		stale = record
	}

	if m.store == nil {
		return nil, stale
	}

	record, err := m.store.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, tokenstore.ErrNotFound) {
			m.logger.WarnContext(ctx, "failed to read token record", "key", key, "error", err)
		}
		return nil, stale
	}

	if record.Stale(now, m.buffer) {
		if stale == nil {
			stale = record
		}
		return nil, stale
	}

	m.mu.Lock()
	m.tokens[key] = record
	m.mu.Unlock()

	return record, stale
}

// LoadToken returns the fresh record for key from memory or, when
// persistence is configured, from the store. Stale and missing records
// yield nil. The caller gets a copy; the manager keeps ownership of the
// stored record.
func (m *Manager) LoadToken(ctx context.Context, key string) *oauth.Token {
	record, _ := m.lookup(ctx, key)
	if record == nil {
		return nil
	}
	clone := *record
	return &clone
}

// SaveToken inserts or overwrites the record under key. The in-memory cache
// is always updated; the returned error reports a failed store write.
func (m *Manager) SaveToken(ctx context.Context, key string, token *oauth.Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	clone := *token
	m.mu.Lock()
	m.tokens[key] = &clone
	m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	if err := m.store.Write(ctx, key, &clone); err != nil {
		return fmt.Errorf("writing token record %q: %w", key, err)
	}
	return nil
}

// ClearToken removes the record for key from memory and the store.
func (m *Manager) ClearToken(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.tokens, key)
	m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	if err := m.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting token record %q: %w", key, err)
	}
	return nil
}

// ClearAll empties the in-memory cache and removes all persisted records.
func (m *Manager) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	m.tokens = make(map[string]*oauth.Token)
	m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing token store: %w", err)
	}
	return nil
}
