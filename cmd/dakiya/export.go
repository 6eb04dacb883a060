package main

import (
	"context"
	"fmt"

	"github.com/sonnes/dakiya/compact"
	"github.com/sonnes/dakiya/core"
	"github.com/sonnes/dakiya/export"
	"github.com/sonnes/dakiya/redact"
	"github.com/sonnes/dakiya/relay"
	"github.com/urfave/cli/v3"
)

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write channel conversations to files",
		Description: `Fetches the newest messages of each channel from a running relay and
writes <channel>.<format> files plus a manifest.json index into --dir.
Existing files are replaced atomically.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "target",
				Aliases: []string{"t"},
				Usage:   "Channel(s) to export (default: every channel)",
			},
			&cli.StringSliceFlag{
				Name:  "format",
				Usage: "Output format(s): json, html",
				Value: []string{"json", "html"},
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Output directory",
				Value: "transcripts",
			},
			&cli.StringSliceFlag{
				Name:  "redact",
				Usage: "Rules to redact before writing. Example: --redact=secrets,pii",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Collapse fenced code blocks into line-count summaries",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c := newClient(cmd)

			targets := cmd.StringSlice("target")
			if len(targets) == 0 {
				resp, err := c.Channels(ctx, false)
				if err != nil {
					return err
				}
				targets = resp.Channels
			}

			formats := cmd.StringSlice("format")
			for _, f := range formats {
				if f == "terminal" {
					return fmt.Errorf("format %q cannot be exported", f)
				}
				if _, err := renderer(f, false); err != nil {
					return err
				}
			}

			transformers, err := exportTransformers(cmd)
			if err != nil {
				return err
			}

			exp := export.New(cmd.String("dir"))
			w := stdout(cmd)
			for _, target := range targets {
				page, err := c.Recent(ctx, target, relay.BulkLimits.Max)
				if err != nil {
					return fmt.Errorf("fetch %s: %w", target, err)
				}
				conv := conversation(target, page)
				if err := core.Chain(conv, transformers...); err != nil {
					return fmt.Errorf("transform %s: %w", target, err)
				}
				for _, f := range formats {
					rnd, _ := renderer(f, false)
					entry, err := exp.Export(conv, f, rnd)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s/%s (%d messages)\n", exp.Dir, entry.Href, entry.Count)
				}
			}
			return nil
		},
	}
}

// exportTransformers builds the transformers selected by --redact and
// --compact, redaction first.
func exportTransformers(cmd *cli.Command) ([]core.Transformer, error) {
	var out []core.Transformer
	if rules := cmd.StringSlice("redact"); len(rules) > 0 {
		cfg, err := redact.ParseConfig(rules)
		if err != nil {
			return nil, err
		}
		if cfg.Enabled() {
			out = append(out, redact.New(cfg))
		}
	}
	if cmd.Bool("compact") {
		out = append(out, compact.New(compact.Config{}))
	}
	return out, nil
}
