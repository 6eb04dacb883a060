package terminal

import (
	"strings"

	"github.com/sonnes/dakiya/compact"
)

// textLines prepares message text for a card. In compact mode the text is
// reduced to a single summary line; otherwise every line is kept and long
// lines are truncated to width.
func textLines(text string, width int, compactView bool) []string {
	if compactView {
		return []string{compact.Summary(text, width)}
	}

	var lines []string
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if isFence(line) {
			lines = append(lines, styleCode.Render(truncate(line, width)))
			continue
		}
		lines = append(lines, truncate(line, width))
	}
	return lines
}

func isFence(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}
