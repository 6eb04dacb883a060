// Package logging builds the process logger: charmbracelet/log on stderr,
// optionally mirrored to a size-rotated file.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how much is logged.
type Config struct {
	Level      string // debug, info, warn, error
	Path       string // empty disables the file
	MaxSizeMB  int
	MaxBackups int

	// Stderr overrides the console writer. Defaults to os.Stderr.
	Stderr io.Writer
}

// Logger is a configured logger plus the file it may own.
type Logger struct {
	*log.Logger
	file *lumberjack.Logger
}

// New creates a Logger. It does not install itself as the default; call
// SetDefault for that.
func New(cfg Config) (*Logger, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stderr
	if cfg.Stderr != nil {
		w = cfg.Stderr
	}

	var file *lumberjack.Logger
	if cfg.Path != "" {
		file = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    max(cfg.MaxSizeMB, 1),
			MaxBackups: max(cfg.MaxBackups, 0),
		}
		w = io.MultiWriter(w, file)
	}

	l := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "dakiya",
	})
	return &Logger{Logger: l, file: file}, nil
}

// SetDefault makes l the default for both charmbracelet/log and log/slog.
func (l *Logger) SetDefault() {
	log.SetDefault(l.Logger)
	slog.SetDefault(slog.New(l.Logger))
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
