// Package html renders channel conversations as HTML styled with Tailwind CSS
// v4 (CDN). Message text is treated as GitHub-flavored markdown and fenced
// code is highlighted with goldmark + chroma.
package html

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sonnes/dakiya/core"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// Renderer renders conversations to full pages or to message fragments.
type Renderer struct {
	md   goldmark.Markdown
	tmpl *template.Template
}

// New creates an HTML Renderer with goldmark configured for GFM and syntax
// highlighting. Raw HTML in message text is not passed through.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("dracula"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles for standalone pages
				),
			),
		),
	)

	tmpl := template.Must(
		template.New("page.html").
			Funcs(funcMap()).
			ParseFS(content, "templates/*.html"),
	)

	return &Renderer{md: md, tmpl: tmpl}
}

// Page is the data for a full channel page.
type Page struct {
	Conversation *core.Conversation
	// Channels lists every known channel for the sidebar. May be empty.
	Channels []string
	// MCPPath is shown so agents can be pointed at the tool endpoint.
	MCPPath string
	// Live adds the post form and the polling script. Exports leave it off.
	Live bool
}

// pageData is the top-level template data passed to page.html.
type pageData struct {
	Page
	Messages []messageData
	Count    int
}

// messageData is the per-message template data passed to message.html.
type messageData struct {
	Anchor   string // e.g. "msg-42"
	Message  core.Message
	Duration string // time since the previous message in the window
	Body     template.HTML
}

// Render writes c as a standalone HTML page to w.
func (r *Renderer) Render(w io.Writer, c *core.Conversation) error {
	return r.RenderPage(w, Page{Conversation: c})
}

// RenderPage writes a complete HTML page to w.
func (r *Renderer) RenderPage(w io.Writer, p Page) error {
	if p.Conversation == nil {
		p.Conversation = &core.Conversation{}
	}
	messages, err := r.messages(p.Conversation.Messages, time.Time{})
	if err != nil {
		return err
	}
	data := pageData{
		Page:     p,
		Messages: messages,
		Count:    len(messages),
	}
	return r.tmpl.ExecuteTemplate(w, "page.html", data)
}

// RenderMessages writes only the message cards, for appending to a page that
// is already showing earlier messages of the same channel.
func (r *Renderer) RenderMessages(w io.Writer, msgs []core.Message) error {
	messages, err := r.messages(msgs, time.Time{})
	if err != nil {
		return err
	}
	return r.tmpl.ExecuteTemplate(w, "messages.html", messages)
}

func (r *Renderer) messages(msgs []core.Message, prev time.Time) ([]messageData, error) {
	out := make([]messageData, 0, len(msgs))
	for _, msg := range msgs {
		md := messageData{
			Anchor:  fmt.Sprintf("msg-%d", msg.ID),
			Message: msg,
		}
		if !prev.IsZero() && !msg.Timestamp.IsZero() {
			md.Duration = formatDuration(msg.Timestamp.Sub(prev))
		}
		if !msg.Timestamp.IsZero() {
			prev = msg.Timestamp
		}

		body, err := renderText(r.md, msg.Text)
		if err != nil {
			return nil, fmt.Errorf("render message %d: %w", msg.ID, err)
		}
		md.Body = body
		out = append(out, md)
	}
	return out, nil
}
