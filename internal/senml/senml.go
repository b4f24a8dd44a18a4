// Package senml encodes and decodes the SenML-style JSON records exchanged
// on the bus: {"bn": base name, "bt": base time, "e": [{"n","u","v"}]}.
package senml

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is returned when a payload is not a SenML record.
var ErrInvalid = errors.New("senml: invalid record")

// Entry is one measurement or state inside a record.
// Value holds a number, a string or a bool.
type Entry struct {
	Name  string `json:"n"`
	Unit  string `json:"u,omitempty"`
	Value any    `json:"v"`
}

// Float returns the entry value as a number.
func (e Entry) Float() (float64, bool) {
	switch v := e.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Message is a SenML record: a base name, a base time in Unix seconds and its entries.
type Message struct {
	BaseName string  `json:"bn"`
	BaseTime float64 `json:"bt"`
	Entries  []Entry `json:"e"`
}

// New builds a record stamped with t.
func New(baseName string, t time.Time, entries ...Entry) Message {
	return Message{
		BaseName: baseName,
		BaseTime: float64(t.UnixMilli()) / 1000,
		Entries:  entries,
	}
}

// Time converts the base time back to a time.Time. Zero base time yields the zero Time.
func (m Message) Time() time.Time {
	if m.BaseTime <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(m.BaseTime * 1000))
}

// Encode marshals the record.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a record. Some publishers JSON-encode the record twice,
// sending a JSON string whose content is the record; that form is accepted too.
func Decode(payload []byte) (Message, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return Message{}, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		raw = json.RawMessage(inner)
	}

	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if m.Entries == nil {
		return Message{}, fmt.Errorf("%w: missing entries", ErrInvalid)
	}
	return m, nil
}
