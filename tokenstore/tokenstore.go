package tokenstore

import (
	"context"
	"errors"

	"github.com/hearthlog/go-warcraftlogs/oauth"
)

// ErrNotFound is returned by Read when no record exists for the key,
// distinguishing absence from a corrupt or unreadable record.
var ErrNotFound = errors.New("token record not found")

// Store reads and writes token records in persistent storage. The token
// manager owns the store exclusively; keys are its record keys.
type Store interface {
	// Read returns the record stored under key. Returns ErrNotFound if no
	// record exists.
	Read(ctx context.Context, key string) (*oauth.Token, error)

	// Write persists the record under key, overwriting any existing one.
	Write(ctx context.Context, key string, token *oauth.Token) error

	// Delete removes the record for key. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Clear removes every record in the store.
	Clear(ctx context.Context) error
}
