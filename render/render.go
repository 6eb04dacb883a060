// Package render defines the interface for rendering a channel conversation
// into various output formats.
package render

import (
	"io"

	"github.com/sonnes/dakiya/core"
)

// Renderer writes a conversation to the given writer in a specific format.
type Renderer interface {
	Render(w io.Writer, c *core.Conversation) error
}
