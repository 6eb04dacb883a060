package terminal

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestTextLines(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		width   int
		compact bool
		expect  []string
	}{
		{
			name:   "single line",
			text:   "hello",
			width:  40,
			expect: []string{"hello"},
		},
		{
			name:   "keeps every line and drops trailing newline",
			text:   "one\ntwo  \n\nthree\n",
			width:  40,
			expect: []string{"one", "two", "", "three"},
		},
		{
			name:   "truncates long lines",
			text:   "abcdefghijklmnopqrstuvwxyz",
			width:  10,
			expect: []string{"abcdefg..."},
		},
		{
			name:   "fence lines kept",
			text:   "```sh\nls\n```",
			width:  40,
			expect: []string{"```sh", "ls", "```"},
		},
		{
			name:    "compact summary",
			text:    "\nfirst\nsecond",
			width:   40,
			compact: true,
			expect:  []string{"first (+2 lines)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := textLines(tt.text, tt.width, tt.compact)
			for i := range got {
				got[i] = ansi.Strip(got[i])
			}
			assert.Equal(t, tt.expect, got)
		})
	}
}
