package main

import (
	"context"
	"fmt"

	"github.com/sonnes/dakiya/audit"
	"github.com/sonnes/dakiya/config"
	"github.com/sonnes/dakiya/logging"
	"github.com/sonnes/dakiya/redact"
	"github.com/sonnes/dakiya/relay"
	"github.com/sonnes/dakiya/server"
	"github.com/sonnes/dakiya/store"
	"github.com/urfave/cli/v3"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the relay: MCP endpoint, JSON API and web UI",
		Description: `Settings come from DAKIYA_* environment variables and an optional .env
file. Flags override them.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Dotenv file(s) to load instead of .env",
			},
			&cli.StringFlag{Name: "host", Usage: "Interface to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on"},
			&cli.StringFlag{Name: "mcp-path", Usage: "Path the MCP endpoint is mounted at"},
			&cli.StringFlag{Name: "channels", Usage: "Comma-separated channels listed before anyone posts"},
			&cli.StringFlag{Name: "audit", Usage: "Audit sinks, e.g. jsonl:audit.jsonl,badger:./audit-db"},
			&cli.StringFlag{Name: "redact", Usage: "Redact posted text: secrets, pii"},
			&cli.StringFlag{Name: "log-file", Usage: "Log file path, or \"off\""},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.StringSlice("env-file")...)
			if err != nil {
				return err
			}
			if err := applyServeFlags(cmd, &cfg); err != nil {
				return err
			}

			logger, err := logging.New(logging.Config{
				Level:      cfg.LogLevel,
				Path:       cfg.LogFile(),
				MaxSizeMB:  cfg.LogMaxMB,
				MaxBackups: cfg.LogBackups,
			})
			if err != nil {
				return err
			}
			defer logger.Close()
			logger.SetDefault()

			sink, err := audit.Open(cfg.Audit)
			if err != nil {
				return err
			}
			defer func() {
				if err := sink.Close(); err != nil {
					logger.Error("closing audit sinks", "error", err)
				}
			}()

			rcfg, err := redact.ParseConfig(cfg.RedactRules())
			if err != nil {
				return err
			}
			var redactor relay.Redactor
			if rcfg.Enabled() {
				redactor = redact.New(rcfg)
			}

			svc := relay.New(store.New(store.Config{}), relay.Options{
				Channels: cfg.ChannelList(),
				Logger:   logger.Logger,
				Audit:    sink,
				Redactor: redactor,
			})
			srv := server.New(svc, server.Config{
				Addr:    cfg.Addr(),
				MCPPath: cfg.MCPPath,
				Version: version,
				Logger:  logger.Logger,
			})

			ctx, stop := signalContext(ctx)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}
}

// applyServeFlags copies explicitly set flags over cfg and revalidates.
func applyServeFlags(cmd *cli.Command, cfg *config.Config) error {
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}
	if cmd.IsSet("mcp-path") {
		cfg.MCPPath = cmd.String("mcp-path")
	}
	if cmd.IsSet("channels") {
		cfg.Channels = cmd.String("channels")
	}
	if cmd.IsSet("audit") {
		cfg.Audit = cmd.String("audit")
	}
	if cmd.IsSet("redact") {
		cfg.Redact = cmd.String("redact")
	}
	if cmd.IsSet("log-file") {
		cfg.LogPath = cmd.String("log-file")
	}
	if cmd.Root().IsSet("log") {
		cfg.LogLevel = cmd.Root().String("log")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
