package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/Gamma29/loot/internal/interfaces"
	"github.com/Gamma29/loot/internal/models"
)

// userMetadataRecord is the stored form of one plugin's user metadata.
// Keys combine the game folder and the lowercased plugin name so lookups
// stay case-insensitive.
type userMetadataRecord struct {
	Key       string `badgerhold:"key"`
	Folder    string `badgerholdIndex:"Folder"`
	Name      string
	Metadata  models.PluginMetadata
	UpdatedAt time.Time
}

// seedMarker records that a folder's store has been initialized from the
// on-disk userlist document. It lives outside the metadata record type so
// DeleteAll leaves it in place.
type seedMarker struct {
	Folder   string `badgerhold:"key"`
	SeededAt time.Time
}

// UserlistStorage implements the UserlistStorage interface for Badger
type UserlistStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewUserlistStorage creates a new UserlistStorage instance
func NewUserlistStorage(db *BadgerDB, logger arbor.ILogger) interfaces.UserlistStorage {
	return &UserlistStorage{
		db:     db,
		logger: logger,
	}
}

func recordKey(folder, name string) string {
	return strings.ToLower(folder) + "/" + strings.ToLower(name)
}

// Save upserts one plugin's user metadata for the given game folder.
func (s *UserlistStorage) Save(ctx context.Context, folder string, meta models.PluginMetadata) error {
	record := userMetadataRecord{
		Key:       recordKey(folder, meta.Name),
		Folder:    strings.ToLower(folder),
		Name:      meta.Name,
		Metadata:  meta,
		UpdatedAt: time.Now(),
	}

	if err := s.db.Store().Upsert(record.Key, &record); err != nil {
		return fmt.Errorf("failed to save user metadata: %w", err)
	}
	return nil
}

// Delete removes one plugin's user metadata (case-insensitive).
func (s *UserlistStorage) Delete(ctx context.Context, folder string, name string) error {
	err := s.db.Store().Delete(recordKey(folder, name), &userMetadataRecord{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrMetadataNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete user metadata: %w", err)
	}
	return nil
}

// DeleteAll removes every user metadata record for the given game folder.
func (s *UserlistStorage) DeleteAll(ctx context.Context, folder string) error {
	var records []userMetadataRecord
	query := badgerhold.Where("Folder").Eq(strings.ToLower(folder))
	if err := s.db.Store().Find(&records, query); err != nil {
		return fmt.Errorf("failed to list user metadata for deletion: %w", err)
	}

	for _, record := range records {
		if err := s.db.Store().Delete(record.Key, &userMetadataRecord{}); err != nil {
			s.logger.Warn().Str("key", record.Key).Err(err).Msg("Failed to delete user metadata record during DeleteAll")
		}
	}

	s.logger.Info().Str("folder", folder).Int("count", len(records)).Msg("Deleted all user metadata records")
	return nil
}

// List returns all user metadata records for the given game folder.
func (s *UserlistStorage) List(ctx context.Context, folder string) ([]models.PluginMetadata, error) {
	var records []userMetadataRecord
	query := badgerhold.Where("Folder").Eq(strings.ToLower(folder)).SortBy("Name")
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list user metadata: %w", err)
	}

	metadata := make([]models.PluginMetadata, 0, len(records))
	for _, record := range records {
		metadata = append(metadata, record.Metadata)
	}
	return metadata, nil
}

// Seeded reports whether the folder's store has been initialized from a
// userlist document.
func (s *UserlistStorage) Seeded(ctx context.Context, folder string) (bool, error) {
	var marker seedMarker
	err := s.db.Store().Get(strings.ToLower(folder), &marker)
	if err == badgerhold.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read userlist seed marker: %w", err)
	}
	return true, nil
}

// MarkSeeded records that the folder's store has been initialized.
func (s *UserlistStorage) MarkSeeded(ctx context.Context, folder string) error {
	marker := seedMarker{Folder: strings.ToLower(folder), SeededAt: time.Now()}
	if err := s.db.Store().Upsert(marker.Folder, &marker); err != nil {
		return fmt.Errorf("failed to record userlist seed marker: %w", err)
	}
	return nil
}
