package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"
)

func postCmd() *cli.Command {
	return &cli.Command{
		Name:      "post",
		Usage:     "Post a message to a channel",
		ArgsUsage: "[text]",
		Description: `Posts the text given as arguments. With no arguments, or "-", the text
is read from standard input.`,
		Flags: []cli.Flag{
			targetFlag(),
			&cli.StringFlag{
				Name:    "sender",
				Aliases: []string{"s"},
				Usage:   "Sender name",
				Value:   "human",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			text := strings.Join(cmd.Args().Slice(), " ")
			if text == "" || text == "-" {
				data, err := io.ReadAll(stdin(cmd))
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = strings.TrimRight(string(data), "\n")
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("nothing to post")
			}

			msg, err := newClient(cmd).Post(ctx, cmd.String("target"), cmd.String("sender"), text)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout(cmd), "posted #%d to %s\n", msg.ID, msg.Channel)
			return nil
		},
	}
}
