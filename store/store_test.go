package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sonnes/dakiya/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(msgs []core.Message) []int64 {
	out := make([]int64, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func mustAppend(t *testing.T, s *Store, channel, sender, text string) core.Message {
	t.Helper()
	m, err := s.Append(channel, sender, text)
	require.NoError(t, err)
	return m
}

func TestAppendAssignsSequentialIDs(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	s := New(Config{Now: func() time.Time { return now }})

	m1 := mustAppend(t, s, "proj-x", "claude", "hello")
	m2 := mustAppend(t, s, "other", "codex", "hi")

	assert.Equal(t, int64(1), m1.ID)
	assert.Equal(t, int64(2), m2.ID)
	assert.Equal(t, now, m1.Timestamp)
	assert.Equal(t, "proj-x", m1.Channel)
	assert.Equal(t, "claude", m1.Sender)
	assert.Equal(t, "hello", m1.Text)
	assert.Equal(t, 2, s.Len())
}

func TestAppendNormalizesChannelAndSender(t *testing.T) {
	s := New(Config{})
	m := mustAppend(t, s, "  proj-x\t", " claude ", "  keep my spacing  ")

	assert.Equal(t, "proj-x", m.Channel)
	assert.Equal(t, "claude", m.Sender)
	assert.Equal(t, "  keep my spacing  ", m.Text)

	got, _ := s.Query(" proj-x ", 0, 10)
	assert.Equal(t, []int64{1}, ids(got))
}

func TestAppendValidation(t *testing.T) {
	tests := []struct {
		name    string
		channel string
		sender  string
		text    string
		fields  []string
	}{
		{"empty channel", "", "bob", "hi", []string{"target"}},
		{"blank channel", "   ", "bob", "hi", []string{"target"}},
		{"empty sender", "chan", "", "hi", []string{"sender"}},
		{"whitespace text", "chan", "bob", "   ", []string{"text"}},
		{"newline text", "chan", "bob", "\n\t\n", []string{"text"}},
		{"everything blank", "", " ", "", []string{"target", "sender", "text"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Config{})
			mustAppend(t, s, "chan", "bob", "first")

			_, err := s.Append(tt.channel, tt.sender, tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrValidation))

			var ve *core.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.fields, ve.Fields)

			// Counter did not advance and nothing was stored.
			assert.Equal(t, 1, s.Len())
			next := mustAppend(t, s, "chan", "bob", "second")
			assert.Equal(t, int64(2), next.ID)
		})
	}
}

func TestConcurrentAppendIDsAreUniqueAndGapFree(t *testing.T) {
	s := New(Config{})
	mustAppend(t, s, "seed", "x", "y") // N = 1

	const workers = 32
	const perWorker = 50

	var (
		mu  sync.Mutex
		got []int64
		wg  sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				m, err := s.Append(fmt.Sprintf("chan-%d", w%4), "agent", "msg")
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				got = append(got, m.ID)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	k := workers * perWorker
	require.Len(t, got, k)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, id := range got {
		assert.Equal(t, int64(i+2), id, "ids must be exactly N+1..N+k")
	}

	t.Run("per-channel order follows ids", func(t *testing.T) {
		for c := 0; c < 4; c++ {
			msgs, _ := s.Query(fmt.Sprintf("chan-%d", c), 0, k)
			assert.True(t, sort.SliceIsSorted(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID }))
			for i := 1; i < len(msgs); i++ {
				assert.False(t, msgs[i].Timestamp.Before(msgs[i-1].Timestamp))
			}
		}
	})
}

func TestQueryEmptyChannel(t *testing.T) {
	s := New(Config{})
	mustAppend(t, s, "proj-x", "claude", "hello")

	msgs, latest := s.Query("nonexistent-channel", 0, 50)
	assert.Empty(t, msgs)
	assert.Equal(t, int64(0), latest)

	msgs, latest = s.Query("nonexistent-channel", 41, 50)
	assert.Empty(t, msgs)
	assert.Equal(t, int64(41), latest, "cursor is returned unchanged")
}

func TestQueryCursorSafety(t *testing.T) {
	s := New(Config{})
	var want []int64
	for i := 0; i < 40; i++ {
		channel := "a"
		if i%3 == 0 {
			channel = "b"
		}
		m := mustAppend(t, s, channel, "agent", fmt.Sprintf("msg %d", i))
		if channel == "a" && m.ID > 5 {
			want = append(want, m.ID)
		}
	}

	var seen []int64
	cursor := int64(5)
	for range 100 {
		msgs, latest := s.Query("a", cursor, 4)
		if len(msgs) == 0 {
			assert.Equal(t, cursor, latest)
			break
		}
		assert.LessOrEqual(t, len(msgs), 4)
		seen = append(seen, ids(msgs)...)
		cursor = latest

		// Interleave writes while the consumer is polling.
		if len(seen) == 8 {
			m := mustAppend(t, s, "a", "late", "arrived mid-poll")
			want = append(want, m.ID)
		}
	}

	assert.Equal(t, want, seen, "no loss, no duplication")
}

func TestEndToEndScenario(t *testing.T) {
	s := New(Config{})

	assert.Equal(t, int64(1), mustAppend(t, s, "proj-x", "claude", "hello").ID)
	assert.Equal(t, int64(2), mustAppend(t, s, "proj-x", "codex", "hi back").ID)
	assert.Equal(t, int64(3), mustAppend(t, s, "other", "claude", "ping").ID)

	msgs, latest := s.Query("proj-x", 0, 50)
	require.Len(t, msgs, 2)
	assert.Equal(t, []int64{1, 2}, ids(msgs))
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, "hi back", msgs[1].Text)
	assert.Equal(t, int64(2), latest)

	channels := s.KnownChannels([]string{"proj-x", "codex", "claude"})
	assert.Equal(t, []string{"claude", "codex", "other", "proj-x"}, channels)
}

func TestQueryLimit(t *testing.T) {
	s := New(Config{})
	for i := 0; i < 10; i++ {
		mustAppend(t, s, "proj-x", "claude", "x")
	}

	msgs, latest := s.Query("proj-x", 0, 3)
	assert.Equal(t, []int64{1, 2, 3}, ids(msgs))
	assert.Equal(t, int64(3), latest)

	msgs, _ = s.Query("proj-x", 0, 0)
	assert.Len(t, msgs, 1, "limits below one behave as one")

	msgs, _ = s.Query("proj-x", 1000, 10)
	assert.Empty(t, msgs, "cursor past the end")
}

func TestRecent(t *testing.T) {
	s := New(Config{})
	for i := 1; i <= 6; i++ {
		channel := "a"
		if i%2 == 0 {
			channel = "b"
		}
		mustAppend(t, s, channel, "agent", fmt.Sprintf("%d", i))
	}

	assert.Equal(t, []int64{3, 5}, ids(s.Recent("a", 2)))
	assert.Equal(t, []int64{2, 4, 6}, ids(s.Recent("b", 50)))
	assert.Empty(t, s.Recent("missing", 5))
}

func TestKnownChannels(t *testing.T) {
	s := New(Config{})
	assert.Equal(t, []string{"claude", "codex"}, s.KnownChannels([]string{" codex", "", "claude", "codex "}))

	mustAppend(t, s, "zeta", "a", "b")
	mustAppend(t, s, "alpha", "a", "b")
	mustAppend(t, s, "zeta", "a", "b")

	assert.Equal(t, []string{"alpha", "codex", "zeta"}, s.KnownChannels([]string{"codex"}))
	assert.Equal(t, []string{"alpha", "zeta"}, s.KnownChannels(nil))
}

func TestStats(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s := New(Config{Now: func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}})

	mustAppend(t, s, "b", "x", "1")
	mustAppend(t, s, "a", "x", "2")
	mustAppend(t, s, "b", "x", "3")

	stats := s.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, core.ChannelStats{Channel: "a", Count: 1, LatestID: 2, LatestAt: base.Add(2 * time.Second)}, stats[0])
	assert.Equal(t, core.ChannelStats{Channel: "b", Count: 2, LatestID: 3, LatestAt: base.Add(3 * time.Second)}, stats[1])
}
