// Package terminal renders conversations as ANSI-colored message cards.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/sonnes/dakiya/compact"
	"github.com/sonnes/dakiya/core"
)

const defaultWidth = 100

// Renderer pretty-prints a conversation as message cards to the terminal.
type Renderer struct {
	// Width overrides terminal width detection. Zero means auto-detect.
	Width int
	// Compact collapses fenced code and shows one summary line per message.
	Compact bool
	// NoHeader suppresses the channel header, for incremental output.
	NoHeader bool
}

// New creates a terminal Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes the conversation as ANSI-colored message cards to w.
func (r *Renderer) Render(w io.Writer, c *core.Conversation) error {
	width := r.termWidth()

	if !r.NoHeader {
		writeHeader(w, c)
	}

	var cmp *compact.Compactor
	if r.Compact {
		cmp = compact.New(compact.Config{})
	}

	var prev time.Time
	for _, msg := range c.Messages {
		var duration string
		if !prev.IsZero() && !msg.Timestamp.IsZero() {
			duration = formatDuration(msg.Timestamp.Sub(prev))
		}
		if !msg.Timestamp.IsZero() {
			prev = msg.Timestamp
		}

		text := msg.Text
		if cmp != nil {
			text = cmp.Text(text)
		}
		writeMessage(w, msg, text, duration, width, r.Compact)
	}

	if len(c.Messages) > 0 && !r.NoHeader {
		fmt.Fprintln(w)
	}
	return nil
}

func (r *Renderer) termWidth() int {
	if r.Width > 0 {
		return r.Width
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// writeHeader renders the channel name and a summary of the window.
func writeHeader(w io.Writer, c *core.Conversation) {
	fmt.Fprintln(w, styleTitle.Render("#"+c.Channel))

	parts := []string{countLabel(len(c.Messages))}
	if c.LatestID > 0 {
		parts = append(parts, fmt.Sprintf("latest %d", c.LatestID))
	}
	if n := len(c.Messages); n > 0 && !c.Messages[n-1].Timestamp.IsZero() {
		parts = append(parts, core.RelativeTime(c.Messages[n-1].Timestamp))
	}
	fmt.Fprintln(w, styleMeta.Render(strings.Join(parts, "  ")))
}

func countLabel(n int) string {
	if n == 1 {
		return "1 message"
	}
	return formatNumber(n) + " messages"
}

// writeSeparator renders a horizontal rule.
func writeSeparator(w io.Writer, width int) {
	n := min(width, 72)
	fmt.Fprintln(w)
	fmt.Fprintln(w, styleSeparator.Render(strings.Repeat("─", n)))
}

// writeMessage renders a single message card: sender badge, id, time, text.
func writeMessage(w io.Writer, msg core.Message, text, duration string, width int, compactView bool) {
	contentWidth := max(width-4, 40)

	if !compactView {
		writeSeparator(w, width)
		fmt.Fprintln(w)
	}

	header := senderBadge(msg.Sender).Render(msg.Sender) + " " + styleID.Render(fmt.Sprintf("#%d", msg.ID))
	var meta []string
	if !msg.Timestamp.IsZero() {
		meta = append(meta, formatTime(msg.Timestamp))
	}
	if duration != "" {
		meta = append(meta, duration)
	}
	if len(meta) > 0 {
		header += "    " + styleMeta.Render(strings.Join(meta, "    "))
	}

	if compactView {
		used := lipgloss.Width(header) + 3
		summary := textLines(text, max(contentWidth-used, 20), true)[0]
		fmt.Fprintln(w, " "+header+"  "+summary)
		return
	}

	fmt.Fprintln(w, " "+header)
	for _, line := range textLines(text, contentWidth, false) {
		fmt.Fprintln(w, "  "+line)
	}
}

// truncate shortens a single line to maxWidth, appending "..." if needed.
func truncate(s string, maxWidth int) string {
	if maxWidth < 4 {
		maxWidth = 4
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// Format helpers, shared in spirit with render/html/funcmap.go.

func formatTime(t time.Time) string {
	return t.Local().Format("Jan 2, 2006 3:04:05 PM")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return formatNumber(n/1000) + "," + fmt.Sprintf("%03d", n%1000)
}
