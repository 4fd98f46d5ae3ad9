package models

// MasterlistInfo identifies the revision of the community metadata layer a
// snapshot was resolved against.
type MasterlistInfo struct {
	Revision string `json:"revision"`
	Date     string `json:"date"`
}

// MessageView is a message as carried by a snapshot: severity, resolved
// text for the session language, and pre-rendered HTML.
type MessageView struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content"`
	HTML    string      `json:"html,omitempty"`
}

// LayerView is the raw, unevaluated metadata one layer contributes for a
// plugin. The editor surfaces use it to show where each piece of metadata
// came from.
type LayerView struct {
	Enabled          bool           `json:"enabled"`
	ModPriority      int            `json:"modPriority"`
	IsGlobalPriority bool           `json:"isGlobalPriority"`
	After            []string       `json:"after,omitempty"`
	Req              []string       `json:"req,omitempty"`
	Inc              []string       `json:"inc,omitempty"`
	Msg              []MessageView  `json:"msg,omitempty"`
	Tag              []Tag          `json:"tag,omitempty"`
	Dirty            []CleaningData `json:"dirty,omitempty"`
}

// PluginView is the fully resolved, per-request state of one installed
// plugin. Views are built fresh for every snapshot and never persisted.
type PluginView struct {
	Name             string        `json:"name"`
	IsActive         bool          `json:"isActive"`
	LoadsBSA         bool          `json:"loadsBSA"`
	CRC              string        `json:"crc"`
	Version          string        `json:"version"`
	Masterlist       *LayerView    `json:"masterlist,omitempty"`
	Userlist         *LayerView    `json:"userlist,omitempty"`
	ModPriority      int           `json:"modPriority"`
	IsGlobalPriority bool          `json:"isGlobalPriority"`
	Messages         []MessageView `json:"messages"`
	Tags             []Tag         `json:"tags"`
	IsDirty          bool          `json:"isDirty"`
}

// GameSnapshot is the resolved state of a whole game session: every
// installed plugin's view in load order plus the surviving global
// messages.
type GameSnapshot struct {
	Folder         string         `json:"folder"`
	Masterlist     MasterlistInfo `json:"masterlist"`
	Plugins        []PluginView   `json:"plugins"`
	GlobalMessages []MessageView  `json:"globalMessages"`
}
