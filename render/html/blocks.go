package html

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
)

// renderText converts message text to HTML. Text that looks like markdown
// goes through goldmark; anything else is escaped and keeps its line breaks.
func renderText(md goldmark.Markdown, text string) (template.HTML, error) {
	if !looksLikeMarkdown(text) {
		escaped := template.HTMLEscapeString(text)
		return template.HTML(`<p class="whitespace-pre-wrap text-sm">` + escaped + `</p>`), nil
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("goldmark convert: %w", err)
	}
	return template.HTML(`<div class="prose prose-sm dark:prose-invert max-w-none">` + buf.String() + `</div>`), nil
}

// markdownHints are substrings that only make sense as markdown syntax.
var markdownHints = []string{"```", "~~~", "**", "](", "\n- ", "\n* ", "\n1. ", "\n#", "\n> ", "`", "|---"}

func looksLikeMarkdown(text string) bool {
	t := "\n" + text
	for _, h := range markdownHints {
		if strings.Contains(t, h) {
			return true
		}
	}
	return false
}
