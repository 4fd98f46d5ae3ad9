package scheduler

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/Gamma29/loot/internal/services/game"
	"github.com/Gamma29/loot/internal/services/metadata"
)

// Service watches each game's masterlist document and re-parses it when
// the file changes on disk. Fetching new masterlists over the network is
// a separate concern handled outside this process; the watcher only picks
// up local edits and completed updates.
type Service struct {
	manager *game.Manager
	loader  *metadata.Loader
	// commands serializes reloads against in-flight dispatcher commands,
	// since a reload swaps a session's masterlist in place.
	commands sync.Locker
	logger   arbor.ILogger

	cron *cron.Cron

	mu     sync.Mutex
	mtimes map[string]time.Time
}

// NewService creates a masterlist reload watcher.
func NewService(manager *game.Manager, loader *metadata.Loader, commands sync.Locker, logger arbor.ILogger) *Service {
	return &Service{
		manager:  manager,
		loader:   loader,
		commands: commands,
		logger:   logger,
		mtimes:   make(map[string]time.Time),
	}
}

// Start begins watching on the given cron schedule. An empty schedule
// disables the watcher.
func (s *Service) Start(schedule string) error {
	if schedule == "" {
		s.logger.Debug().Msg("Masterlist reload watcher disabled (no schedule)")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(schedule, s.checkAll); err != nil {
		return fmt.Errorf("failed to schedule masterlist reload check: %w", err)
	}
	s.cron.Start()

	s.logger.Info().Str("schedule", schedule).Msg("Masterlist reload watcher started")
	return nil
}

// Stop stops the watcher and waits for a running check to finish.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}

func (s *Service) checkAll() {
	for _, folder := range s.manager.Folders() {
		if session, ok := s.manager.Session(folder); ok {
			s.checkSession(session)
		}
	}
}

func (s *Service) checkSession(session *game.Session) {
	path := session.Config().MasterlistPath
	if path == "" {
		return
	}

	stat, err := os.Stat(path)
	if err != nil {
		return
	}

	s.mu.Lock()
	recorded, seen := s.mtimes[path]
	s.mtimes[path] = stat.ModTime()
	s.mu.Unlock()

	// First observation just records the baseline; the initial parse
	// happened at startup.
	if !seen || !stat.ModTime().After(recorded) {
		return
	}

	list, err := s.loader.LoadDocument(path)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to reload masterlist document")
		return
	}
	info, err := s.loader.DocumentInfo(path)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to read masterlist revision info")
		return
	}

	s.commands.Lock()
	session.SetMasterlist(*list, info)
	s.commands.Unlock()

	s.logger.Info().
		Str("game", session.Folder()).
		Str("revision", info.Revision).
		Msg("Masterlist document reloaded")
}
