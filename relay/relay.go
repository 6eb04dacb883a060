// Package relay is the façade every transport talks to. It wraps the store
// with limit clamping, optional redaction, structured logging and auditing,
// so the MCP tools, the HTTP API, the web UI and the CLI behave identically.
package relay

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/sonnes/dakiya/audit"
	"github.com/sonnes/dakiya/core"
	"github.com/sonnes/dakiya/store"
)

// Source identifies the transport a message arrived on.
type Source string

const (
	SourceMCP  Source = "mcp"
	SourceHTTP Source = "http"
	SourceUI   Source = "ui"
	SourceCLI  Source = "cli"
)

// Limits bounds the page size a transport may request.
type Limits struct {
	Min, Max int
}

var (
	// ToolLimits apply to the fetch_messages tool.
	ToolLimits = Limits{Min: 1, Max: 200}
	// BulkLimits apply to the HTTP API and the web UI.
	BulkLimits = Limits{Min: 1, Max: 500}
)

// Clamp returns n forced into [l.Min, l.Max].
func (l Limits) Clamp(n int) int {
	return lo.Clamp(n, l.Min, l.Max)
}

// Page is the result of a cursor fetch.
type Page struct {
	Messages []core.Message `json:"messages"`
	LatestID int64          `json:"latest_id"`
}

// Redactor rewrites message text before it is stored.
type Redactor interface {
	Redact(s string) string
}

// Options configures a Service.
type Options struct {
	// Channels are always listed, even before anyone posts to them.
	Channels []string
	Logger   *log.Logger
	Audit    audit.Sink
	Redactor Redactor
}

// Service exposes post, fetch and channel listing over a store.
type Service struct {
	store    *store.Store
	channels []string
	logger   *log.Logger
	audit    audit.Sink
	redactor Redactor
}

// New creates a Service backed by st.
func New(st *store.Store, opts Options) *Service {
	s := &Service{
		store:    st,
		channels: lo.Compact(lo.Map(opts.Channels, func(c string, _ int) string { return strings.TrimSpace(c) })),
		logger:   opts.Logger,
		audit:    opts.Audit,
		redactor: opts.Redactor,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.audit == nil {
		s.audit = audit.Nop{}
	}
	return s
}

// DefaultChannels returns the configured channels in configuration order.
func (s *Service) DefaultChannels() []string {
	return append([]string(nil), s.channels...)
}

// PostMessage appends a message to channel. A *core.ValidationError is
// returned unchanged when any field is blank. A cancelled ctx is reported
// before the store is touched.
func (s *Service) PostMessage(ctx context.Context, channel, sender, text string, src Source) (core.Message, error) {
	if err := ctx.Err(); err != nil {
		return core.Message{}, err
	}
	if s.redactor != nil {
		text = s.redactor.Redact(text)
	}

	msg, err := s.store.Append(channel, sender, text)
	if err != nil {
		s.logger.Debug("post rejected", "target", channel, "sender", sender, "source", string(src), "error", err)
		return core.Message{}, err
	}

	s.logger.Info("post_message",
		"id", msg.ID,
		"target", msg.Channel,
		"sender", msg.Sender,
		"text_len", len(msg.Text),
		"source", string(src),
	)

	// Recorded outside the store lock, so sinks may see ids out of order.
	entry := audit.Entry{Message: msg, Source: string(src)}
	if err := s.audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("audit failed", "id", msg.ID, "error", err)
	}
	return msg, nil
}

// FetchMessages returns messages of channel newer than sinceID. limit is
// clamped to limits first.
func (s *Service) FetchMessages(ctx context.Context, channel string, sinceID int64, limit int, limits Limits) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	msgs, latest := s.store.Query(channel, sinceID, limits.Clamp(limit))
	s.logger.Debug("fetch_messages", "target", channel, "since_id", sinceID, "count", len(msgs), "latest_id", latest)
	return Page{Messages: nonNil(msgs), LatestID: latest}, nil
}

// RecentMessages returns the newest messages of channel in ascending order.
func (s *Service) RecentMessages(ctx context.Context, channel string, limit int, limits Limits) ([]core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nonNil(s.store.Recent(channel, limits.Clamp(limit))), nil
}

// ListChannels returns the sorted union of configured and observed channels.
func (s *Service) ListChannels(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.KnownChannels(s.channels), nil
}

// ChannelStats returns per-channel counts for every observed channel.
func (s *Service) ChannelStats(ctx context.Context) ([]core.ChannelStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nonNil(s.store.Stats()), nil
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
