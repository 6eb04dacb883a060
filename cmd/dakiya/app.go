package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sonnes/dakiya/client"
	"github.com/sonnes/dakiya/core"
	"github.com/sonnes/dakiya/render"
	htmlrender "github.com/sonnes/dakiya/render/html"
	jsonrender "github.com/sonnes/dakiya/render/json"
	"github.com/sonnes/dakiya/render/terminal"
	"github.com/urfave/cli/v3"
)

// renderers maps an output format to its constructor. compact only affects
// the terminal renderer.
var renderers = map[string]func(compact bool) render.Renderer{
	"terminal": func(compact bool) render.Renderer {
		r := terminal.New()
		r.Compact = compact
		return r
	},
	"json": func(bool) render.Renderer { return jsonrender.New(true) },
	"html": func(bool) render.Renderer { return htmlrender.New() },
}

func renderer(format string, compact bool) (render.Renderer, error) {
	fn, ok := renderers[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return fn(compact), nil
}

func newClient(cmd *cli.Command) *client.Client {
	return client.New(cmd.Root().String("url"))
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stdin(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

// conversation wraps a fetched page for rendering.
func conversation(target string, page client.Messages) *core.Conversation {
	c := &core.Conversation{
		Channel:  target,
		Messages: page.Messages,
		LatestID: page.LatestID,
	}
	if n := len(c.Messages); n > 0 && c.LatestID < c.Messages[n-1].ID {
		c.LatestID = c.Messages[n-1].ID
	}
	return c
}

func targetFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "target",
		Aliases: []string{"t"},
		Usage:   "Channel name",
		Value:   "proj-x",
	}
}

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "o",
		Usage: "Output format: " + strings.Join([]string{"terminal", "json", "html"}, ", "),
		Value: "terminal",
	}
}
