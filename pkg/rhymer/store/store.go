package store

import (
	"context"

	"github.com/cognicore/rhymer/pkg/rhymer/index"
)

// Store persists one compiled index snapshot.
type Store interface {
	Close() error

	// Exists reports whether a snapshot has been saved. It gates index builds.
	Exists(ctx context.Context) (bool, error)

	// Save replaces the stored snapshot as a single unit.
	Save(ctx context.Context, s index.Snapshot) error

	// Load returns the stored snapshot, or internalerr.ErrNotFound.
	Load(ctx context.Context) (index.Snapshot, error)

	// Remove deletes the stored snapshot so the next run rebuilds it.
	Remove(ctx context.Context) error
}
