// Package chat defines the message model shared by the history store, the
// context assembler and the orchestrator. The persisted wire shape of a
// message is {"role", "content", "timestamp"} where content is either a plain
// string or an ordered array of typed parts.
package chat

import (
	"encoding/json"
	"fmt"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image"
)

// Part is one element of a multimodal content sequence.
type Part struct {
	Type      PartType `json:"type"`
	Text      string   `json:"text,omitempty"`
	MediaType string   `json:"media_type,omitempty"` // e.g. "image/jpeg"
	Data      string   `json:"data,omitempty"`       // base64-encoded payload
	Detail    string   `json:"detail,omitempty"`     // "low" or "high"
}

// Content is a tagged union: either Text or Parts is set, never both.
// Parts non-nil marks the multimodal variant even when empty.
type Content struct {
	Text  string
	Parts []Part
}

func (c Content) IsMultimodal() bool { return c.Parts != nil }

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		c.Parts = nil
		return nil
	}
	var parts []Part
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("content must be a string or an array of parts: %w", err)
	}
	c.Text = ""
	c.Parts = parts
	return nil
}

// Message is a single entry in the exchange log.
type Message struct {
	Role      Role
	Content   Content
	Timestamp time.Time
}

// NewText builds a plain-text message stamped with the current time.
func NewText(role Role, text string) Message {
	return Message{Role: role, Content: Content{Text: text}, Timestamp: time.Now().UTC()}
}

// NewMultimodal builds a message whose content is an ordered part sequence.
func NewMultimodal(role Role, parts []Part) Message {
	return Message{Role: role, Content: Content{Parts: parts}, Timestamp: time.Now().UTC()}
}

type messageJSON struct {
	Role      Role            `json:"role"`
	Content   json.RawMessage `json:"content"`
	Timestamp string          `json:"timestamp"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	content, err := m.Content.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(messageJSON{
		Role:      m.Role,
		Content:   content,
		Timestamp: m.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Role.valid() {
		return fmt.Errorf("invalid message role %q", raw.Role)
	}
	var content Content
	if err := content.UnmarshalJSON(raw.Content); err != nil {
		return err
	}
	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}
	m.Role = raw.Role
	m.Content = content
	m.Timestamp = ts
	return nil
}

// parseTimestamp accepts RFC 3339 and the zone-less ISO-8601 form that older
// history files contain.
func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	ts, err := time.Parse("2006-01-02T15:04:05.999999999", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid message timestamp %q", s)
	}
	return ts.UTC(), nil
}
