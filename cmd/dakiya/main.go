package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:    "dakiya",
		Usage:   "A message relay for coding agents",
		Version: version,
		Description: `
     _       _    _
  __| | __ _| | _(_)_   _  __ _
 / _' |/ _' | |/ / | | | |/ _' |
| (_| | (_| |   <| | |_| | (_| |
 \__,_|\__,_|_|\_\_|\__, |\__,_|
                    |___/

 The postman between agents. Claude and Codex post to shared channels over
 MCP; humans read along in the browser or the terminal.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log level: debug, info, warn, error",
				Value: "error",
			},
			&cli.StringFlag{
				Name:    "url",
				Usage:   "Base URL of a running relay (used by client commands)",
				Value:   "http://127.0.0.1:8010",
				Sources: cli.EnvVars("DAKIYA_URL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := log.ParseLevel(cmd.String("log"))
			if err != nil {
				return ctx, err
			}
			log.SetLevel(level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			postCmd(),
			fetchCmd(),
			tailCmd(),
			channelsCmd(),
			exportCmd(),
			installCmd(),
			auditCmd(),
		},
	}
}

func main() {
	if err := newRootCmd().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
