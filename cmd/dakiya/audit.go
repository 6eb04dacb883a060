package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sonnes/dakiya/audit"
	"github.com/sonnes/dakiya/compact"
	"github.com/urfave/cli/v3"
)

func auditCmd() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Inspect a Badger audit log",
		Description: `Reads the audit database written by "serve --audit badger:<dir>". The
relay must not be running against the same directory.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Usage:    "Badger directory",
				Required: true,
			},
			targetFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			db, err := audit.OpenBadger(cmd.String("db"))
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.Entries(cmd.String("target"))
			if err != nil {
				return err
			}

			table := newTable(stdout(cmd), []string{"ID", "Time", "Sender", "Source", "Text"})
			for _, e := range entries {
				table.Append([]string{
					strconv.FormatInt(e.Message.ID, 10),
					e.Message.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Message.Sender,
					e.Source,
					compact.Summary(e.Message.Text, 60),
				})
			}
			table.Render()
			if len(entries) == 0 {
				fmt.Fprintf(stdout(cmd), "no audited messages in %s\n", "#"+cmd.String("target"))
			}
			return nil
		},
	}
}
