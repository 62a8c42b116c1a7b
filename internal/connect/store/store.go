package store

import (
	"context"
	"errors"

	"github.com/talentwire/pagelink/internal/connect/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	PageTokens() PageTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn errors
	// and committing otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type PageTokens interface {
	// CreatePageToken inserts a new record (id is provided by app via ULID).
	// Returns ErrAlreadyExists when a record for the same page_id is
	// already present; re-linking must fail loudly, never overwrite.
	CreatePageToken(ctx context.Context, t domain.PageToken) error

	// GetPageTokenByPageID returns the record for a provider page id.
	GetPageTokenByPageID(ctx context.Context, pageID string) (domain.PageToken, error)

	// ListPageTokens returns all records in insertion order.
	ListPageTokens(ctx context.Context) ([]domain.PageToken, error)

	// DeletePageTokenByPageID removes a record, ErrNotFound when absent.
	DeletePageTokenByPageID(ctx context.Context, pageID string) error
}
