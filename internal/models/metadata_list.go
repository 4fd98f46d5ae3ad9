package models

// MetadataList is one authored metadata layer: per-plugin records plus
// messages that apply to the whole install rather than a single plugin.
type MetadataList struct {
	Plugins  []PluginMetadata `json:"plugins" yaml:"plugins"`
	Messages []Message        `json:"globals" yaml:"globals"`
}

// FindPlugin looks up the record for the named plugin, comparing names
// case-insensitively. Absence is represented as data: a name-only record
// is returned when the list has no entry, so lookups never fail.
func (l *MetadataList) FindPlugin(name string) PluginMetadata {
	for i := range l.Plugins {
		if l.Plugins[i].NameMatches(name) {
			return l.Plugins[i]
		}
	}
	return NewPluginMetadata(name)
}

// Upsert replaces the record matching meta's name, or appends it when no
// record exists yet.
func (l *MetadataList) Upsert(meta PluginMetadata) {
	for i := range l.Plugins {
		if l.Plugins[i].NameMatches(meta.Name) {
			l.Plugins[i] = meta
			return
		}
	}
	l.Plugins = append(l.Plugins, meta)
}

// ErasePlugin removes the named plugin's record in place. It reports
// whether a record was removed; erasing an absent record is a no-op.
func (l *MetadataList) ErasePlugin(name string) bool {
	for i := range l.Plugins {
		if l.Plugins[i].NameMatches(name) {
			l.Plugins = append(l.Plugins[:i], l.Plugins[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the list entirely.
func (l *MetadataList) Clear() {
	l.Plugins = nil
	l.Messages = nil
}
