package interfaces

import (
	"context"
	"errors"

	"github.com/Gamma29/loot/internal/models"
)

// ErrMetadataNotFound is returned when a userlist store has no record for
// the requested plugin.
var ErrMetadataNotFound = errors.New("plugin metadata not found")

// UserlistStorage persists the user-authored metadata layer per game
// folder so user edits survive restarts.
type UserlistStorage interface {
	// Save upserts one plugin's user metadata for the given game folder.
	Save(ctx context.Context, folder string, meta models.PluginMetadata) error

	// Delete removes one plugin's user metadata. Returns
	// ErrMetadataNotFound when no record exists.
	Delete(ctx context.Context, folder string, name string) error

	// DeleteAll removes every user metadata record for the given game
	// folder.
	DeleteAll(ctx context.Context, folder string) error

	// List returns all user metadata records for the given game folder.
	List(ctx context.Context, folder string) ([]models.PluginMetadata, error)

	// Seeded reports whether the folder's store has been initialized
	// from a userlist document. Once seeded, the store is authoritative
	// even when empty: cleared records must not come back from the
	// document on restart.
	Seeded(ctx context.Context, folder string) (bool, error)

	// MarkSeeded records that the folder's store has been initialized.
	MarkSeeded(ctx context.Context, folder string) error
}

// StorageManager owns the database connection and hands out typed stores.
type StorageManager interface {
	UserlistStorage() UserlistStorage
	Close() error
}
