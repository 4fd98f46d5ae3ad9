package models

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tag is a single Bash Tag suggestion: a tag name plus whether the tag
// should be added or removed. Tags may be gated by a condition.
type Tag struct {
	Name       string `json:"name"`
	IsAddition bool   `json:"isAddition"`
	Condition  string `json:"-"`
}

// String renders the tag in its document form, with a "-" prefix for
// removal suggestions.
func (t Tag) String() string {
	if t.IsAddition {
		return t.Name
	}
	return "-" + t.Name
}

// HasCondition reports whether the tag is gated by a condition expression.
func (t Tag) HasCondition() bool {
	return t.Condition != ""
}

// sameAs reports identity for set-union purposes. Two tags are the same
// entry when name, direction and condition all match.
func (t Tag) sameAs(other Tag) bool {
	return strings.EqualFold(t.Name, other.Name) &&
		t.IsAddition == other.IsAddition &&
		t.Condition == other.Condition
}

// parseTagName splits the optional removal prefix from a tag name.
func parseTagName(raw string) (name string, isAddition bool) {
	if strings.HasPrefix(raw, "-") {
		return strings.TrimPrefix(raw, "-"), false
	}
	return raw, true
}

// UnmarshalYAML decodes a tag from a metadata document. Tags appear either
// as a bare string ("Delev", "-Relev") or as a mapping with a condition.
func (t *Tag) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var raw string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		t.Name, t.IsAddition = parseTagName(raw)
		return nil
	case yaml.MappingNode:
		var doc struct {
			Name      string `yaml:"name"`
			Condition string `yaml:"condition"`
		}
		if err := value.Decode(&doc); err != nil {
			return err
		}
		t.Name, t.IsAddition = parseTagName(doc.Name)
		t.Condition = doc.Condition
		return nil
	default:
		return fmt.Errorf("unsupported tag node kind %d", value.Kind)
	}
}

// MarshalYAML renders the tag back into its document form.
func (t Tag) MarshalYAML() (interface{}, error) {
	if t.Condition == "" {
		return t.String(), nil
	}
	return struct {
		Name      string `yaml:"name"`
		Condition string `yaml:"condition"`
	}{Name: t.String(), Condition: t.Condition}, nil
}
