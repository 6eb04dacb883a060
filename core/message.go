// Package core defines the relay's data model: messages exchanged between
// agents, the conversations renderers consume, and the validation error every
// transport maps to its own failure shape.
package core

import (
	"bytes"
	"encoding/json"
	"time"
)

// Message is a single relayed message. Messages are immutable once the store
// has assigned their ID.
type Message struct {
	ID        int64     // global sequence, starts at 1
	Timestamp time.Time // set by the store at append time
	Channel   string    // logical inbox, "target" on the wire
	Sender    string
	Text      string // opaque payload, may contain markdown
}

// wireMessage is the JSON shape shared by every transport.
type wireMessage struct {
	ID     int64   `json:"id"`
	TS     float64 `json:"ts"` // seconds since epoch, fractional
	Target string  `json:"target"`
	Sender string  `json:"sender"`
	Text   string  `json:"text"`
}

// MarshalJSON encodes m in the wire shape {id, ts, target, sender, text}.
// Text is left HTML-unescaped; callers that embed the output in HTML must
// escape it themselves.
func (m Message) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(wireMessage{
		ID:     m.ID,
		TS:     UnixSeconds(m.Timestamp),
		Target: m.Channel,
		Sender: m.Sender,
		Text:   m.Text,
	})
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes the wire shape produced by MarshalJSON.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = Message{
		ID:        w.ID,
		Timestamp: FromUnixSeconds(w.TS),
		Channel:   w.Target,
		Sender:    w.Sender,
		Text:      w.Text,
	}
	return nil
}

// Conversation is a window of one channel's log, as handed to renderers and
// exporters.
type Conversation struct {
	Channel  string    `json:"target"`
	Messages []Message `json:"messages"`
	LatestID int64     `json:"latest_id"` // cursor for the next poll
}

// ChannelStats summarizes the messages observed in one channel.
type ChannelStats struct {
	Channel  string    `json:"target"`
	Count    int       `json:"count"`
	LatestID int64     `json:"latest_id"`
	LatestAt time.Time `json:"latest_at"`
}
