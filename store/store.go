// Package store holds the relay's message log: an append-only, in-memory,
// per-process sequence of messages partitioned by channel, with a single
// global ID sequence that consumers use as a polling cursor.
//
// Every operation runs under one mutex. Critical sections are bounded scans
// with no I/O, so callers are serialized only briefly.
package store

import (
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/sonnes/dakiya/core"
)

// Config controls optional Store behavior.
type Config struct {
	// Now overrides the clock used to stamp messages. Defaults to time.Now.
	Now func() time.Time
}

// Store is the ordered log of all messages. The zero value is not usable;
// call New.
type Store struct {
	mu       sync.Mutex
	messages []core.Message // messages[i].ID == i+1
	nextID   int64

	now      func() time.Time
	validate *validator.Validate
}

// New creates an empty Store whose first message will get ID 1.
func New(cfg Config) *Store {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		nextID:   1,
		now:      now,
		validate: newValidator(),
	}
}

// Append validates the input, assigns the next global ID and appends the
// message to the log. On a validation error nothing is stored and the ID
// sequence does not advance.
func (s *Store) Append(channel, sender, text string) (core.Message, error) {
	req := appendRequest{
		Channel: strings.TrimSpace(channel),
		Sender:  strings.TrimSpace(sender),
		Text:    text,
	}
	if err := s.check(req); err != nil {
		return core.Message{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := core.Message{
		ID:        s.nextID,
		Timestamp: s.now(),
		Channel:   req.Channel,
		Sender:    req.Sender,
		Text:      req.Text,
	}
	s.nextID++
	s.messages = append(s.messages, msg)
	return msg, nil
}

// Query returns, in ascending ID order, up to limit messages of channel whose
// ID is greater than sinceID. latestID is the ID of the last returned message,
// or sinceID when nothing matched, so it is always safe to poll again with it.
func (s *Store) Query(channel string, sinceID int64, limit int) (matches []core.Message, latestID int64) {
	channel = strings.TrimSpace(channel)
	limit = max(limit, 1)
	latestID = sinceID

	s.mu.Lock()
	defer s.mu.Unlock()

	// IDs are gap-free and match log positions, so everything at or before
	// sinceID can be skipped without looking at it.
	start := 0
	if sinceID > 0 {
		start = int(min(sinceID, int64(len(s.messages))))
	}

	for _, m := range s.messages[start:] {
		if m.ID <= sinceID || m.Channel != channel {
			continue
		}
		matches = append(matches, m)
		if len(matches) == limit {
			break
		}
	}
	if len(matches) > 0 {
		latestID = matches[len(matches)-1].ID
	}
	return matches, latestID
}

// Recent returns up to limit of the newest messages of channel, in ascending
// ID order.
func (s *Store) Recent(channel string, limit int) []core.Message {
	channel = strings.TrimSpace(channel)
	limit = max(limit, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	var tail []core.Message
	for i := len(s.messages) - 1; i >= 0 && len(tail) < limit; i-- {
		if s.messages[i].Channel == channel {
			tail = append(tail, s.messages[i])
		}
	}
	slices.Reverse(tail)
	return tail
}

// KnownChannels returns the sorted union of the non-blank defaults and every
// channel that has at least one message.
func (s *Store) KnownChannels(defaults []string) []string {
	s.mu.Lock()
	observed := make(map[string]struct{})
	for _, m := range s.messages {
		observed[m.Channel] = struct{}{}
	}
	s.mu.Unlock()

	names := lo.Map(defaults, func(c string, _ int) string { return strings.TrimSpace(c) })
	names = append(lo.Compact(names), lo.Keys(observed)...)
	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}

// Stats returns per-channel counts for every observed channel, sorted by
// channel name.
func (s *Store) Stats() []core.ChannelStats {
	s.mu.Lock()
	byChannel := make(map[string]*core.ChannelStats)
	for _, m := range s.messages {
		st, ok := byChannel[m.Channel]
		if !ok {
			st = &core.ChannelStats{Channel: m.Channel}
			byChannel[m.Channel] = st
		}
		st.Count++
		st.LatestID = m.ID
		st.LatestAt = m.Timestamp
	}
	s.mu.Unlock()

	stats := lo.MapToSlice(byChannel, func(_ string, st *core.ChannelStats) core.ChannelStats { return *st })
	sort.Slice(stats, func(i, j int) bool { return stats[i].Channel < stats[j].Channel })
	return stats
}

// Len returns the total number of stored messages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
