package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hearthlog/go-warcraftlogs/oauth"
)

// FileStore keeps one JSON file per record key under a directory, with
// atomic writes and secure permissions. Writes use temp file + rename for
// crash safety.
type FileStore struct {
	dir string
}

// Compile-time check to ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir, creating the directory
// with 0700 permissions if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	return &FileStore{
		dir: dir,
	}, nil
}

// path maps a record key to its file, rejecting keys that would escape the
// store directory.
func (f *FileStore) path(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key cannot be empty")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid record key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

// Read returns the record stored under key. Returns ErrNotFound if the file
// doesn't exist and an error if it is corrupt or has insecure permissions.
func (f *FileStore) Read(ctx context.Context, key string) (*oauth.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := f.path(key)
	if err != nil {
		return nil, err
	}

	// Check file permissions before reading
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info.Mode().Perm() != 0600 {
		return nil, fmt.Errorf("insecure permissions on %s: %04o (expected 0600)", path, info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var token oauth.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("corrupt token file %s: %w", path, err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("empty token file %s", path)
	}

	return &token, nil
}

// Write atomically saves the record using temp file + rename for crash
// safety. Sets file permissions to 0600 (owner read/write only).
func (f *FileStore) Write(ctx context.Context, key string, token *oauth.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := f.path(key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshaling token record: %w", err)
	}

	// Create secure temp file in same directory for atomic rename
	tempFile, err := os.CreateTemp(f.dir, "*.tmp")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()
	// Cleanup deferred for all exit paths
	defer func() { _ = os.Remove(tempName) }()
	defer func() { _ = tempFile.Close() }()

	if _, err := tempFile.Write(data); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	// Atomic rename to final location
	if err := os.Rename(tempName, path); err != nil {
		return err
	}

	// Set secure file permissions (0600 = rw-------)
	if err := os.Chmod(path, 0600); err != nil {
		return err
	}

	return nil
}

// Delete removes the record file for key. Missing files are not an error.
func (f *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := f.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every record file in the store directory.
func (f *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	matches, err := filepath.Glob(filepath.Join(f.dir, "*.json"))
	if err != nil {
		return err
	}

	var errs []error
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
