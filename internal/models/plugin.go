package models

import "fmt"

// Plugin is one installed game content module: its header data plus the
// set of record identifiers extracted from its content. FormIDs is empty
// until the bulk identifier load populates it for every plugin at once.
type Plugin struct {
	Name         string   `json:"name" yaml:"name"`
	Version      string   `json:"version" yaml:"version"`
	CRC          uint32   `json:"crc" yaml:"crc"`
	Active       bool     `json:"active" yaml:"active"`
	LoadsArchive bool     `json:"loadsArchive" yaml:"loads_archive"`
	FormIDs      []uint64 `json:"-" yaml:"form_ids"`
}

// CRCString renders the checksum the way snapshots carry it.
func (p *Plugin) CRCString() string {
	return fmt.Sprintf("%X", p.CRC)
}

// FormIDsOverlap reports whether the two plugins share at least one record
// identifier.
func (p *Plugin) FormIDsOverlap(other *Plugin) bool {
	if len(p.FormIDs) == 0 || len(other.FormIDs) == 0 {
		return false
	}

	smaller, larger := p.FormIDs, other.FormIDs
	if len(larger) < len(smaller) {
		smaller, larger = larger, smaller
	}

	set := make(map[uint64]struct{}, len(smaller))
	for _, id := range smaller {
		set[id] = struct{}{}
	}
	for _, id := range larger {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
