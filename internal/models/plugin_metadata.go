package models

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// PluginMetadata is the per-plugin metadata record carried by the
// masterlist and userlist layers. Name is the identity key and compares
// case-insensitively. A freshly constructed record carries nothing beyond
// its name.
type PluginMetadata struct {
	Name              string         `json:"name" yaml:"name"`
	Enabled           bool           `json:"enabled" yaml:"enabled"`
	Priority          int            `json:"priority" yaml:"priority,omitempty"`
	LoadAfter         []string       `json:"after,omitempty" yaml:"after,omitempty"`
	Requirements      []string       `json:"req,omitempty" yaml:"req,omitempty"`
	Incompatibilities []string       `json:"inc,omitempty" yaml:"inc,omitempty"`
	Messages          []Message      `json:"msg,omitempty" yaml:"msg,omitempty"`
	Tags              []Tag          `json:"tag,omitempty" yaml:"tag,omitempty"`
	DirtyInfo         []CleaningData `json:"dirty,omitempty" yaml:"dirty,omitempty"`
}

// NewPluginMetadata constructs a name-only record. Enabled defaults to
// true; a record is only considered disabled when a layer explicitly
// disables it.
func NewPluginMetadata(name string) PluginMetadata {
	return PluginMetadata{Name: name, Enabled: true}
}

// NameMatches reports whether the record belongs to the named plugin,
// comparing case-insensitively.
func (p *PluginMetadata) NameMatches(name string) bool {
	return strings.EqualFold(p.Name, name)
}

// HasNameOnly reports whether no field other than the name has been set
// since construction. It distinguishes "no metadata exists" from "metadata
// exists but is trivial".
func (p *PluginMetadata) HasNameOnly() bool {
	return p.Enabled &&
		p.Priority == 0 &&
		len(p.LoadAfter) == 0 &&
		len(p.Requirements) == 0 &&
		len(p.Incompatibilities) == 0 &&
		len(p.Messages) == 0 &&
		len(p.Tags) == 0 &&
		len(p.DirtyInfo) == 0
}

// Merge overlays another record onto the receiver. Scalar fields are
// overwritten only when the other record carries a non-default value, set
// fields are unioned, and messages are concatenated preserving order.
// Merge is not commutative: layers must be applied in masterlist-then-
// userlist order to honour the documented precedence.
func (p *PluginMetadata) Merge(other PluginMetadata) {
	if !other.Enabled {
		p.Enabled = false
	}
	if other.Priority != 0 {
		p.Priority = other.Priority
	}

	p.LoadAfter = unionStrings(p.LoadAfter, other.LoadAfter)
	p.Requirements = unionStrings(p.Requirements, other.Requirements)
	p.Incompatibilities = unionStrings(p.Incompatibilities, other.Incompatibilities)
	p.Tags = unionTags(p.Tags, other.Tags)
	p.DirtyInfo = unionDirty(p.DirtyInfo, other.DirtyInfo)
	p.Messages = append(p.Messages, other.Messages...)
}

// AppendMessage adds a message to the end of the record's message
// sequence.
func (p *PluginMetadata) AppendMessage(msg Message) {
	p.Messages = append(p.Messages, msg)
}

// UnmarshalYAML decodes a record from a metadata document. A record with
// no enabled key defaults to enabled, matching the constructed default.
func (p *PluginMetadata) UnmarshalYAML(value *yaml.Node) error {
	var doc struct {
		Name              string         `yaml:"name"`
		Enabled           *bool          `yaml:"enabled"`
		Priority          int            `yaml:"priority"`
		LoadAfter         []string       `yaml:"after"`
		Requirements      []string       `yaml:"req"`
		Incompatibilities []string       `yaml:"inc"`
		Messages          []Message      `yaml:"msg"`
		Tags              []Tag          `yaml:"tag"`
		DirtyInfo         []CleaningData `yaml:"dirty"`
	}
	if err := value.Decode(&doc); err != nil {
		return err
	}

	p.Name = doc.Name
	p.Enabled = doc.Enabled == nil || *doc.Enabled
	p.Priority = doc.Priority
	p.LoadAfter = doc.LoadAfter
	p.Requirements = doc.Requirements
	p.Incompatibilities = doc.Incompatibilities
	p.Messages = doc.Messages
	p.Tags = doc.Tags
	p.DirtyInfo = doc.DirtyInfo
	return nil
}

// unionStrings appends the members of add that base does not already
// contain, comparing case-insensitively and preserving insertion order.
func unionStrings(base, add []string) []string {
	for _, candidate := range add {
		found := false
		for _, existing := range base {
			if strings.EqualFold(existing, candidate) {
				found = true
				break
			}
		}
		if !found {
			base = append(base, candidate)
		}
	}
	return base
}

func unionTags(base, add []Tag) []Tag {
	for _, candidate := range add {
		found := false
		for _, existing := range base {
			if existing.sameAs(candidate) {
				found = true
				break
			}
		}
		if !found {
			base = append(base, candidate)
		}
	}
	return base
}

func unionDirty(base, add []CleaningData) []CleaningData {
	for _, candidate := range add {
		found := false
		for _, existing := range base {
			if existing.sameAs(candidate) {
				found = true
				break
			}
		}
		if !found {
			base = append(base, candidate)
		}
	}
	return base
}
