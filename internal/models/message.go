package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MessageType is the severity of a metadata message.
type MessageType string

const (
	MessageSay   MessageType = "say"
	MessageWarn  MessageType = "warn"
	MessageError MessageType = "error"
)

// Message is a single diagnostic attached to a plugin or to the whole
// metadata document. Insertion order is significant; messages are never
// reordered once appended.
type Message struct {
	Type      MessageType       `json:"type" yaml:"type"`
	Content   string            `json:"content" yaml:"content"`
	Localized map[string]string `json:"-" yaml:"-"`
	Condition string            `json:"-" yaml:"condition,omitempty"`
}

// NewMessage creates an unconditioned message.
func NewMessage(msgType MessageType, content string) Message {
	return Message{Type: msgType, Content: content}
}

// Text returns the message content for the given language code, falling
// back to the default content when no translation exists.
func (m Message) Text(lang string) string {
	if m.Localized != nil {
		if text, ok := m.Localized[lang]; ok {
			return text
		}
	}
	return m.Content
}

// HasCondition reports whether the message is gated by a condition
// expression.
func (m Message) HasCondition() bool {
	return m.Condition != ""
}

// localizedContent is the multilingual content form used by metadata
// documents: a list of {lang, str} pairs.
type localizedContent struct {
	Lang string `yaml:"lang"`
	Str  string `yaml:"str"`
}

// messageDoc mirrors the on-disk message shape. Content may be a single
// string or a list of localized strings.
type messageDoc struct {
	Type      string    `yaml:"type"`
	Content   yaml.Node `yaml:"content"`
	Condition string    `yaml:"condition"`
}

// UnmarshalYAML decodes a message from a metadata document, accepting both
// the scalar content form and the localized list form.
func (m *Message) UnmarshalYAML(value *yaml.Node) error {
	var doc messageDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}

	switch doc.Type {
	case "", string(MessageSay):
		m.Type = MessageSay
	case string(MessageWarn):
		m.Type = MessageWarn
	case string(MessageError):
		m.Type = MessageError
	default:
		return fmt.Errorf("unknown message type %q", doc.Type)
	}
	m.Condition = doc.Condition

	switch doc.Content.Kind {
	case 0:
		// No content key present.
		return nil
	case yaml.ScalarNode:
		return doc.Content.Decode(&m.Content)
	case yaml.SequenceNode:
		var localized []localizedContent
		if err := doc.Content.Decode(&localized); err != nil {
			return fmt.Errorf("failed to decode localized message content: %w", err)
		}
		if len(localized) == 0 {
			return nil
		}
		m.Content = localized[0].Str
		m.Localized = make(map[string]string, len(localized))
		for _, lc := range localized {
			m.Localized[lc.Lang] = lc.Str
		}
		return nil
	default:
		return fmt.Errorf("unsupported message content node kind %d", doc.Content.Kind)
	}
}
