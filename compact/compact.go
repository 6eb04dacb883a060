// Package compact provides a Transformer that collapses fenced code blocks in
// message text into short line-count summaries for compact viewing.
package compact

import (
	"fmt"
	"strings"

	"github.com/sonnes/dakiya/core"
)

// Config controls the compact transformer behavior.
type Config struct {
	// MaxCodeLines keeps fenced blocks of at most this many lines intact.
	// Zero collapses every block.
	MaxCodeLines int
}

// Compactor replaces long fenced code blocks with summaries like
// "[code go: 42 lines]".
type Compactor struct {
	maxCodeLines int
}

// New creates a Compactor from the given config.
func New(cfg Config) *Compactor {
	return &Compactor{maxCodeLines: max(cfg.MaxCodeLines, 0)}
}

// Transform implements core.Transformer.
func (c *Compactor) Transform(conv *core.Conversation) error {
	for i := range conv.Messages {
		conv.Messages[i].Text = c.Text(conv.Messages[i].Text)
	}
	return nil
}

// Text returns s with every fenced block longer than the configured limit
// replaced by a one-line summary. An unterminated fence runs to the end of s.
func (c *Compactor) Text(s string) string {
	if !strings.Contains(s, "```") && !strings.Contains(s, "~~~") {
		return s
	}

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		fence, lang, ok := openFence(lines[i])
		if !ok {
			out = append(out, lines[i])
			continue
		}

		end := len(lines)
		for j := i + 1; j < len(lines); j++ {
			if closesFence(lines[j], fence) {
				end = j
				break
			}
		}

		body := lines[i+1 : end]
		if len(body) <= c.maxCodeLines {
			out = append(out, lines[i:min(end+1, len(lines))]...)
		} else {
			out = append(out, codeSummary(lang, len(body)))
		}
		i = end
	}
	return strings.Join(out, "\n")
}

// openFence reports whether line opens a fenced block, returning the fence
// marker and the info string's first word.
func openFence(line string) (fence, lang string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return "", "", false
	}
	for _, ch := range []string{"`", "~"} {
		n := len(trimmed) - len(strings.TrimLeft(trimmed, ch))
		if n < 3 {
			continue
		}
		info := strings.TrimSpace(trimmed[n:])
		if ch == "`" && strings.Contains(info, "`") {
			return "", "", false
		}
		if f := strings.Fields(info); len(f) > 0 {
			lang = f[0]
		}
		return strings.Repeat(ch, n), lang, true
	}
	return "", "", false
}

func closesFence(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, fence) {
		return false
	}
	return strings.Trim(trimmed, fence[:1]) == ""
}

// codeSummary returns a summary like "[code go: 12 lines]" or "[code: 1 line]".
func codeSummary(lang string, n int) string {
	label := "code"
	if lang != "" {
		label += " " + lang
	}
	return lineSummary(label, n)
}

func lineSummary(label string, n int) string {
	if n == 1 {
		return fmt.Sprintf("[%s: 1 line]", label)
	}
	return fmt.Sprintf("[%s: %d lines]", label, n)
}

// countLines returns the number of lines in s.
// An empty string has 0 lines. A string with no newline has 1 line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n") + 1
	if strings.HasSuffix(s, "\n") {
		n--
	}
	return n
}

// Summary returns a compact one-line description of a message's text:
// the first non-blank line, truncated, with a line count when there are more.
func Summary(text string, width int) string {
	width = max(width, 8)
	first := ""
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			first = strings.TrimSpace(line)
			break
		}
	}
	runes := []rune(first)
	if len(runes) > width {
		first = string(runes[:width-3]) + "..."
	}
	switch n := countLines(text); {
	case n == 2:
		first += " (+1 line)"
	case n > 2:
		first += fmt.Sprintf(" (+%d lines)", n-1)
	}
	return first
}
