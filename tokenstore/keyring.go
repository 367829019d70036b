package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/hearthlog/go-warcraftlogs/oauth"
)

// DefaultKeyringService is the service name records are filed under in the
// OS keyring.
const DefaultKeyringService = "warcraftlogs-api"

// KeyringStore keeps token records in OS-native secure credential storage.
// Uses macOS Keychain, Windows Credential Manager, or Linux Secret Service.
// Each record key becomes one keyring entry under the configured service.
type KeyringStore struct {
	service string

	// The keyring API cannot enumerate entries, so Clear only covers keys
	// this store instance has written or deleted.
	mu   sync.Mutex
	keys map[string]struct{}
}

// Compile-time check to ensure KeyringStore implements Store
var _ Store = (*KeyringStore)(nil)

// NewKeyringStore creates a KeyringStore filing records under the given
// service name. An empty service falls back to DefaultKeyringService.
func NewKeyringStore(service string) (*KeyringStore, error) {
	if service == "" {
		service = DefaultKeyringService
	}

	return &KeyringStore{
		service: service,
		keys:    make(map[string]struct{}),
	}, nil
}

// Read returns the record stored under key. Returns ErrNotFound when the
// keyring has no entry for it.
func (k *KeyringStore) Read(ctx context.Context, key string) (*oauth.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	data, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var token oauth.Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("corrupt keyring entry for %s/%s: %w", k.service, key, err)
	}

	return &token, nil
}

// Write persists the record to the system keyring, overwriting any existing
// entry.
func (k *KeyringStore) Write(ctx context.Context, key string, token *oauth.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshaling token record: %w", err)
	}

	if err := keyring.Set(k.service, key, string(data)); err != nil {
		return err
	}

	k.mu.Lock()
	k.keys[key] = struct{}{}
	k.mu.Unlock()

	return nil
}

// Delete removes the keyring entry for key. Missing entries are not an
// error.
func (k *KeyringStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if err := keyring.Delete(k.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}

	k.mu.Lock()
	delete(k.keys, key)
	k.mu.Unlock()

	return nil
}

// Clear removes every record this store instance has written.
func (k *KeyringStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	k.mu.Lock()
	keys := make([]string, 0, len(k.keys))
	for key := range k.keys {
		keys = append(keys, key)
	}
	k.mu.Unlock()

	var errs []error
	for _, key := range keys {
		if err := k.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
