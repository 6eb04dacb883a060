package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sonnes/dakiya/install"
	"github.com/urfave/cli/v3"
)

func installCmd() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Register the relay's MCP endpoint with Claude Code and Codex",
		Description: `Adds an HTTP MCP server entry pointing at the relay to the project's
.mcp.json (Claude Code) and to ~/.codex/config.toml (Codex). Other
entries in those files are kept.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "agent",
				Aliases: []string{"a"},
				Usage:   "Agent(s) to register with: claude, codex",
				Value:   []string{install.AgentClaude, install.AgentCodex},
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Server name in the agent config",
				Value: install.DefaultName,
			},
			&cli.StringFlag{
				Name:  "mcp-path",
				Usage: "Path the relay serves MCP on",
				Value: "/mcp",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Project directory for .mcp.json (default: working directory)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			endpoint, err := url.JoinPath(cmd.Root().String("url"), cmd.String("mcp-path"))
			if err != nil {
				return fmt.Errorf("invalid relay url: %w", err)
			}

			results, err := install.Run(install.Config{
				URL:        endpoint,
				Name:       cmd.String("name"),
				Agents:     cmd.StringSlice("agent"),
				ProjectDir: cmd.String("dir"),
			})

			w := stdout(cmd)
			for _, r := range results {
				state := "unchanged"
				if r.Changed {
					state = "updated"
				}
				fmt.Fprintf(w, "  %-7s %-9s %s\n", r.Agent, state, r.Path)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "\nAgents will reach the relay at %s\n", endpoint)
			return nil
		},
	}
}
