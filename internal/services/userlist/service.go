package userlist

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/Gamma29/loot/internal/interfaces"
	"github.com/Gamma29/loot/internal/services/game"
)

// Service owns operations on the user-authored metadata layer: exporting
// merged metadata as text and clearing user records. Mutations write
// through to persistent storage so user edits survive restarts.
type Service struct {
	storage   interfaces.UserlistStorage
	clipboard interfaces.Clipboard
	logger    arbor.ILogger
}

// NewService creates a userlist service. Storage may be nil when
// persistence is disabled.
func NewService(storage interfaces.UserlistStorage, clipboard interfaces.Clipboard, logger arbor.ILogger) *Service {
	return &Service{storage: storage, clipboard: clipboard, logger: logger}
}

// CopyMetadata merges the masterlist and userlist records for the named
// plugin without evaluating conditions, renders a textual form, and hands
// it to the clipboard collaborator. The rendered text is returned.
func (s *Service) CopyMetadata(session *game.Session, name string) (string, error) {
	merged := session.Masterlist().FindPlugin(name)
	merged.Merge(session.Userlist().FindPlugin(name))

	var text string
	if merged.HasNameOnly() {
		text = "name: " + merged.Name
	} else {
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(merged); err != nil {
			return "", fmt.Errorf("failed to render metadata for %s: %w", name, err)
		}
		if err := encoder.Close(); err != nil {
			return "", fmt.Errorf("failed to render metadata for %s: %w", name, err)
		}
		text = buf.String()
	}

	if err := s.clipboard.Write(text); err != nil {
		return "", fmt.Errorf("failed to copy metadata to clipboard: %w", err)
	}

	s.logger.Info().Str("plugin", name).Msg("Exported plugin metadata text")
	return text, nil
}

// ClearPlugin removes the named plugin's record from the userlist, both
// in memory and in storage. Clearing an absent record is a no-op.
func (s *Service) ClearPlugin(ctx context.Context, session *game.Session, name string) error {
	if session.Userlist().ErasePlugin(name) {
		s.logger.Debug().Str("plugin", name).Msg("Cleared user metadata")
	}

	if s.storage != nil {
		err := s.storage.Delete(ctx, session.Folder(), name)
		if err != nil && !errors.Is(err, interfaces.ErrMetadataNotFound) {
			return fmt.Errorf("failed to delete stored user metadata: %w", err)
		}
	}
	return nil
}

// ClearAll empties the whole userlist for the session's game, in memory
// and in storage. Clearing an already-empty userlist is a no-op.
func (s *Service) ClearAll(ctx context.Context, session *game.Session) error {
	session.Userlist().Clear()
	s.logger.Debug().Str("game", session.Folder()).Msg("Cleared all user metadata")

	if s.storage != nil {
		if err := s.storage.DeleteAll(ctx, session.Folder()); err != nil {
			return fmt.Errorf("failed to delete stored user metadata: %w", err)
		}
	}
	return nil
}
