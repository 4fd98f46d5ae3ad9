package game

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/Gamma29/loot/internal/models"
	"github.com/Gamma29/loot/internal/services/metadata"
)

// ManifestIdentifierLoader fills record identifiers from the install
// manifest, which carries the pre-computed identifier sets alongside the
// plugin headers.
type ManifestIdentifierLoader struct {
	loader *metadata.Loader
	path   string
	logger arbor.ILogger
}

// NewManifestIdentifierLoader creates a loader reading the given install
// manifest.
func NewManifestIdentifierLoader(loader *metadata.Loader, path string, logger arbor.ILogger) *ManifestIdentifierLoader {
	return &ManifestIdentifierLoader{loader: loader, path: path, logger: logger}
}

// LoadIdentifiers populates every plugin's identifier set from the
// manifest in one pass.
func (l *ManifestIdentifierLoader) LoadIdentifiers(plugins []*models.Plugin) error {
	manifest, err := l.loader.LoadInstallManifest(l.path)
	if err != nil {
		return fmt.Errorf("failed to reload install manifest for identifiers: %w", err)
	}

	sets := make(map[string][]uint64, len(manifest))
	for _, entry := range manifest {
		sets[strings.ToLower(entry.Name)] = entry.FormIDs
	}

	for _, plugin := range plugins {
		plugin.FormIDs = sets[strings.ToLower(plugin.Name)]
	}

	l.logger.Debug().Int("plugins", len(plugins)).Msg("Populated plugin record identifiers")
	return nil
}

// StaticIdentifierLoader serves identifier sets from memory. Used by
// tests and by deployments that feed identifiers from another source.
type StaticIdentifierLoader struct {
	Sets map[string][]uint64
}

// LoadIdentifiers populates every plugin's identifier set from the static
// map.
func (l *StaticIdentifierLoader) LoadIdentifiers(plugins []*models.Plugin) error {
	for _, plugin := range plugins {
		plugin.FormIDs = l.Sets[strings.ToLower(plugin.Name)]
	}
	return nil
}
