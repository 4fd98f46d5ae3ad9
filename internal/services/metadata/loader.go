package metadata

import (
	"crypto/sha1"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/Gamma29/loot/internal/models"
)

// Loader parses on-disk metadata documents and install manifests into the
// in-memory collections the resolution pipeline consumes.
type Loader struct {
	logger arbor.ILogger
}

// NewLoader creates a new document loader.
func NewLoader(logger arbor.ILogger) *Loader {
	return &Loader{logger: logger}
}

// LoadDocument parses a metadata document (masterlist or userlist). A
// missing file yields an empty list rather than an error: both layers are
// optional.
func (l *Loader) LoadDocument(path string) (*models.MetadataList, error) {
	if path == "" {
		return &models.MetadataList{}, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		l.logger.Debug().Str("path", path).Msg("Metadata document not present, using empty layer")
		return &models.MetadataList{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata document %s: %w", path, err)
	}

	var list models.MetadataList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse metadata document %s: %w", path, err)
	}

	l.logger.Debug().
		Str("path", path).
		Int("plugins", len(list.Plugins)).
		Int("globals", len(list.Messages)).
		Msg("Loaded metadata document")

	return &list, nil
}

// DocumentInfo computes the revision identifier and date for a metadata
// document: a short content hash and the file's modification date.
func (l *Loader) DocumentInfo(path string) (models.MasterlistInfo, error) {
	if path == "" {
		return models.MasterlistInfo{Revision: "unknown", Date: "unknown"}, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return models.MasterlistInfo{Revision: "unknown", Date: "unknown"}, nil
	}
	if err != nil {
		return models.MasterlistInfo{}, fmt.Errorf("failed to read metadata document %s: %w", path, err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return models.MasterlistInfo{}, fmt.Errorf("failed to stat metadata document %s: %w", path, err)
	}

	hash := sha1.Sum(data)
	return models.MasterlistInfo{
		Revision: fmt.Sprintf("%x", hash)[:7],
		Date:     stat.ModTime().Format("2006-01-02"),
	}, nil
}

// installManifest mirrors the on-disk install manifest shape.
type installManifest struct {
	Plugins []*models.Plugin `yaml:"plugins"`
}

// LoadInstallManifest parses the install manifest: the installed plugins
// in load order with their header data and record identifiers.
func (l *Loader) LoadInstallManifest(path string) ([]*models.Plugin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read install manifest %s: %w", path, err)
	}

	var manifest installManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse install manifest %s: %w", path, err)
	}

	l.logger.Debug().Str("path", path).Int("plugins", len(manifest.Plugins)).Msg("Loaded install manifest")
	return manifest.Plugins, nil
}
