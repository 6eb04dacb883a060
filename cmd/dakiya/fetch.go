package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sonnes/dakiya/client"
	"github.com/sonnes/dakiya/relay"
	"github.com/sonnes/dakiya/render/terminal"
	"github.com/urfave/cli/v3"
)

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Print the messages of a channel",
		Description: `Without --since-id, prints the newest --limit messages. With it, prints
messages after that id, oldest first.`,
		Flags: []cli.Flag{
			targetFlag(),
			&cli.Int64Flag{Name: "since-id", Usage: "Only messages after this id"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum messages", Value: 50},
			outputFlag(),
			&cli.BoolFlag{Name: "compact", Usage: "Collapse code blocks and show one line per message"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rnd, err := renderer(cmd.String("o"), cmd.Bool("compact"))
			if err != nil {
				return err
			}

			c := newClient(cmd)
			target := cmd.String("target")

			var page client.Messages
			if cmd.IsSet("since-id") {
				page, err = c.Since(ctx, target, cmd.Int64("since-id"), cmd.Int("limit"))
			} else {
				page, err = c.Recent(ctx, target, cmd.Int("limit"))
			}
			if err != nil {
				return err
			}

			if err := rnd.Render(stdout(cmd), conversation(target, page)); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			return nil
		},
	}
}

func tailCmd() *cli.Command {
	return &cli.Command{
		Name:  "tail",
		Usage: "Follow a channel, printing new messages as they arrive",
		Flags: []cli.Flag{
			targetFlag(),
			&cli.IntFlag{Name: "last", Usage: "Show this many earlier messages first", Value: 10},
			&cli.DurationFlag{Name: "interval", Usage: "Poll interval", Value: 2 * time.Second},
			&cli.BoolFlag{Name: "compact", Usage: "Collapse code blocks and show one line per message"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, stop := signalContext(ctx)
			defer stop()

			c := newClient(cmd)
			target := cmd.String("target")
			interval := max(cmd.Duration("interval"), 100*time.Millisecond)

			rnd := terminal.New()
			rnd.Compact = cmd.Bool("compact")

			var cursor int64
			if last := cmd.Int("last"); last > 0 {
				page, err := c.Recent(ctx, target, last)
				if err != nil {
					return err
				}
				conv := conversation(target, page)
				if err := rnd.Render(stdout(cmd), conv); err != nil {
					return err
				}
				cursor = conv.LatestID
			}
			rnd.NoHeader = true

			for {
				page, err := c.Since(ctx, target, cursor, relay.BulkLimits.Max)
				switch {
				case errors.Is(err, context.Canceled):
					return nil
				case err != nil:
					log.Warn("poll failed", "target", target, "error", err)
				case len(page.Messages) > 0:
					if err := rnd.Render(stdout(cmd), conversation(target, page)); err != nil {
						return err
					}
					cursor = page.LatestID
					// A full page means more are waiting.
					if len(page.Messages) == relay.BulkLimits.Max {
						continue
					}
				}

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(interval):
				}
			}
		},
	}
}
