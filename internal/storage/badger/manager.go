package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/Gamma29/loot/internal/common"
	"github.com/Gamma29/loot/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db       *BadgerDB
	userlist interfaces.UserlistStorage
	logger   arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:       db,
		userlist: NewUserlistStorage(db, logger),
		logger:   logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// UserlistStorage returns the userlist storage interface
func (m *Manager) UserlistStorage() interfaces.UserlistStorage {
	return m.userlist
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
