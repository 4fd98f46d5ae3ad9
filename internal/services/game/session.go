package game

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/Gamma29/loot/internal/common"
	"github.com/Gamma29/loot/internal/models"
)

// IdentifierLoader performs the bulk record-identifier load for every
// installed plugin at once. Identifier extraction happens upstream; the
// session only caches the result.
type IdentifierLoader interface {
	LoadIdentifiers(plugins []*models.Plugin) error
}

// Session holds the mutable state of one game: the installed plugins in
// load order, both metadata layers, and the record-identifier cache.
//
// A Session is not safe for concurrent use. Callers must serialize access;
// the command dispatcher runs one command at a time.
type Session struct {
	config common.GameConfig
	logger arbor.ILogger

	plugins []*models.Plugin
	index   map[string]*models.Plugin

	masterlist     models.MetadataList
	masterlistInfo models.MasterlistInfo
	userlist       models.MetadataList

	// identifiersLoaded tracks the bulk load explicitly. An empty
	// identifier set on a single plugin is legitimate and must not be
	// mistaken for "not yet loaded".
	identifiersLoaded bool
	identifierLoader  IdentifierLoader
}

// NewSession creates a session for the given game.
func NewSession(config common.GameConfig, loader IdentifierLoader, logger arbor.ILogger) *Session {
	return &Session{
		config:           config,
		logger:           logger,
		index:            make(map[string]*models.Plugin),
		identifierLoader: loader,
	}
}

// Name returns the game's display name.
func (s *Session) Name() string {
	return s.config.Name
}

// Folder returns the game's folder id.
func (s *Session) Folder() string {
	return s.config.Folder
}

// Config returns the game's configuration.
func (s *Session) Config() common.GameConfig {
	return s.config
}

// SetPlugins installs the ordered plugin collection. Record identifiers
// are dropped here; they are only held once the bulk load fills them for
// every plugin together.
func (s *Session) SetPlugins(plugins []*models.Plugin) {
	s.plugins = plugins
	s.index = make(map[string]*models.Plugin, len(plugins))
	for _, plugin := range plugins {
		plugin.FormIDs = nil
		s.index[strings.ToLower(plugin.Name)] = plugin
	}
	s.identifiersLoaded = false
}

// Plugins returns the installed plugins in load order.
func (s *Session) Plugins() []*models.Plugin {
	return s.plugins
}

// Plugin looks up an installed plugin by name, case-insensitively.
func (s *Session) Plugin(name string) (*models.Plugin, bool) {
	plugin, ok := s.index[strings.ToLower(name)]
	return plugin, ok
}

// SetMasterlist replaces the community metadata layer.
func (s *Session) SetMasterlist(list models.MetadataList, info models.MasterlistInfo) {
	s.masterlist = list
	s.masterlistInfo = info
}

// Masterlist returns the community metadata layer.
func (s *Session) Masterlist() *models.MetadataList {
	return &s.masterlist
}

// MasterlistInfo returns the revision info of the community layer.
func (s *Session) MasterlistInfo() models.MasterlistInfo {
	return s.masterlistInfo
}

// SetUserlist replaces the user metadata layer.
func (s *Session) SetUserlist(list models.MetadataList) {
	s.userlist = list
}

// Userlist returns the user metadata layer.
func (s *Session) Userlist() *models.MetadataList {
	return &s.userlist
}

// EnsureIdentifiers performs the bulk record-identifier load if it has not
// happened yet. The load is all-or-nothing: either every plugin's set is
// populated or the cache stays unloaded.
func (s *Session) EnsureIdentifiers() error {
	if s.identifiersLoaded {
		return nil
	}
	if s.identifierLoader == nil {
		return fmt.Errorf("no identifier loader configured for game %s", s.config.Folder)
	}

	s.logger.Debug().Str("game", s.config.Folder).Int("plugins", len(s.plugins)).Msg("Loading plugin record identifiers")
	if err := s.identifierLoader.LoadIdentifiers(s.plugins); err != nil {
		return fmt.Errorf("failed to load plugin identifiers: %w", err)
	}
	s.identifiersLoaded = true
	return nil
}

// IdentifiersLoaded reports whether the bulk identifier load has run.
func (s *Session) IdentifiersLoaded() bool {
	return s.identifiersLoaded
}

// FindConflicts returns, in load order, the names of installed plugins
// whose record identifiers overlap the named plugin's. The plugin itself
// is excluded. An unknown plugin yields an empty list.
func (s *Session) FindConflicts(name string) ([]string, error) {
	if err := s.EnsureIdentifiers(); err != nil {
		return nil, err
	}

	target, ok := s.Plugin(name)
	if !ok {
		return []string{}, nil
	}

	conflicts := []string{}
	for _, candidate := range s.plugins {
		if candidate == target {
			continue
		}
		if target.FormIDsOverlap(candidate) {
			s.logger.Debug().Str("plugin", name).Str("conflict", candidate.Name).Msg("Found conflicting plugin")
			conflicts = append(conflicts, candidate.Name)
		}
	}
	return conflicts, nil
}

// IsActive reports whether the named plugin is present and active.
func (s *Session) IsActive(name string) bool {
	plugin, ok := s.Plugin(name)
	return ok && plugin.Active
}

// IsPluginInstalled implements conditions.State.
func (s *Session) IsPluginInstalled(name string) bool {
	_, ok := s.Plugin(name)
	return ok
}

// IsPluginActive implements conditions.State.
func (s *Session) IsPluginActive(name string) bool {
	return s.IsActive(name)
}

// PluginCRC implements conditions.State.
func (s *Session) PluginCRC(name string) (uint32, bool) {
	plugin, ok := s.Plugin(name)
	if !ok {
		return 0, false
	}
	return plugin.CRC, true
}

// PluginVersion implements conditions.State.
func (s *Session) PluginVersion(name string) (string, bool) {
	plugin, ok := s.Plugin(name)
	if !ok || plugin.Version == "" {
		return "", false
	}
	return plugin.Version, true
}
