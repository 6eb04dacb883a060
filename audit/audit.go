// Package audit records every stored message to a side log. Sinks are
// write-only from the relay's point of view: nothing in the relay reads them
// back, and a failing sink never fails a post.
package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sonnes/dakiya/core"
)

// Entry is one audited message together with the transport it arrived on.
type Entry struct {
	Message core.Message
	Source  string
}

// Sink receives entries after they are appended to the store.
type Sink interface {
	Record(ctx context.Context, e Entry) error
	Close() error
}

// record is the persisted shape: the message wire fields plus the source.
type record struct {
	ID     int64   `json:"id"`
	TS     float64 `json:"ts"`
	Target string  `json:"target"`
	Sender string  `json:"sender"`
	Text   string  `json:"text"`
	Source string  `json:"source,omitempty"`
}

func newRecord(e Entry) record {
	return record{
		ID:     e.Message.ID,
		TS:     core.UnixSeconds(e.Message.Timestamp),
		Target: e.Message.Channel,
		Sender: e.Message.Sender,
		Text:   e.Message.Text,
		Source: e.Source,
	}
}

func (r record) entry() Entry {
	return Entry{
		Message: core.Message{
			ID:        r.ID,
			Timestamp: core.FromUnixSeconds(r.TS),
			Channel:   r.Target,
			Sender:    r.Sender,
			Text:      r.Text,
		},
		Source: r.Source,
	}
}

// Nop discards every entry.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }
func (Nop) Close() error                        { return nil }

// Multi fans an entry out to several sinks. Every sink is attempted; the
// failures are aggregated.
type Multi []Sink

func (m Multi) Record(ctx context.Context, e Entry) error {
	var result *multierror.Error
	for _, s := range m {
		if err := s.Record(ctx, e); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (m Multi) Close() error {
	var result *multierror.Error
	for _, s := range m {
		if err := s.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Open builds a Sink from a comma-separated list of specs:
//
//	jsonl:<path>   rotated JSON lines file
//	badger:<dir>   BadgerDB keyed by channel and id
//
// An empty spec yields Nop. If any spec fails, sinks opened so far are closed.
func Open(spec string) (Sink, error) {
	var sinks Multi
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, target, ok := strings.Cut(part, ":")
		if !ok || target == "" {
			sinks.Close()
			return nil, fmt.Errorf("audit sink %q: want kind:target", part)
		}

		var (
			s   Sink
			err error
		)
		switch kind {
		case "jsonl":
			s = NewJSONL(JSONLConfig{Path: target})
		case "badger":
			s, err = OpenBadger(target)
		default:
			err = fmt.Errorf("unknown kind %q", kind)
		}
		if err != nil {
			sinks.Close()
			return nil, fmt.Errorf("audit sink %q: %w", part, err)
		}
		sinks = append(sinks, s)
	}

	switch len(sinks) {
	case 0:
		return Nop{}, nil
	case 1:
		return sinks[0], nil
	}
	return sinks, nil
}
