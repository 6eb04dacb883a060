// Package config loads relay settings from the environment. An optional .env
// file is read first; variables already set in the environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// DefaultChannels are listed before anyone has posted.
const DefaultChannels = "proj-x,codex,claude"

// LogOff disables the log file when used as DAKIYA_LOG_PATH.
const LogOff = "off"

// Config holds every DAKIYA_* setting.
type Config struct {
	Host     string `env:"DAKIYA_HOST,default=127.0.0.1" validate:"required"`
	Port     int    `env:"DAKIYA_PORT,default=8010" validate:"min=1,max=65535"`
	MCPPath  string `env:"DAKIYA_MCP_PATH,default=/mcp" validate:"startswith=/,ne=/"`
	Channels string `env:"DAKIYA_CHANNELS"`

	LogLevel   string `env:"DAKIYA_LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
	LogPath    string `env:"DAKIYA_LOG_PATH,default=dakiya.log"`
	LogMaxMB   int    `env:"DAKIYA_LOG_MAX_MB,default=5" validate:"min=1"`
	LogBackups int    `env:"DAKIYA_LOG_BACKUPS,default=10" validate:"min=0"`

	// Audit is a comma-separated list of audit sink specs, e.g.
	// "jsonl:audit.jsonl,badger:./audit-db".
	Audit string `env:"DAKIYA_AUDIT"`
	// Redact selects redaction rule groups: "secrets", "pii".
	Redact string `env:"DAKIYA_REDACT"`
}

// Load reads the given dotenv files (".env" when none are named) and then the
// environment. A missing default .env is not an error; a missing named file is.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if len(files) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading env file: %w", err)
		}
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	if strings.TrimSpace(cfg.Channels) == "" {
		cfg.Channels = DefaultChannels
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ChannelList splits Channels, dropping blanks.
func (c Config) ChannelList() []string {
	return splitList(c.Channels)
}

// RedactRules splits Redact, dropping blanks.
func (c Config) RedactRules() []string {
	return splitList(c.Redact)
}

// LogFile returns the log file path, or "" when file logging is off.
func (c Config) LogFile() string {
	if strings.EqualFold(strings.TrimSpace(c.LogPath), LogOff) {
		return ""
	}
	return strings.TrimSpace(c.LogPath)
}

func splitList(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Uniq(lo.Compact(parts))
}
