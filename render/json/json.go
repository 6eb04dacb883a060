// Package json renders conversations as JSON in the relay's wire shape.
package json

import (
	"encoding/json"
	"io"

	"github.com/sonnes/dakiya/core"
)

// Renderer renders a conversation to JSON.
type Renderer struct {
	// Indent controls pretty-printing. When true, output is indented.
	Indent bool
}

// New creates a JSON Renderer.
func New(indent bool) *Renderer {
	return &Renderer{Indent: indent}
}

// Render writes c as a single JSON object followed by a newline.
func (r *Renderer) Render(w io.Writer, c *core.Conversation) error {
	out := *c
	if out.Messages == nil {
		out.Messages = []core.Message{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
