package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// JSONLConfig configures a JSON lines sink.
type JSONLConfig struct {
	Path       string
	MaxSizeMB  int // defaults to 5
	MaxBackups int // defaults to 10
}

// JSONL appends one JSON object per entry to a size-rotated file. Lines are
// written in Record call order, which under concurrent posts is not always id
// order; readers should sort by "id".
type JSONL struct {
	mu sync.Mutex
	w  *lumberjack.Logger
}

// NewJSONL creates a JSONL sink. The file is created on first write.
func NewJSONL(cfg JSONLConfig) *JSONL {
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 5
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 10
	}
	return &JSONL{
		w: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		},
	}
}

func (j *JSONL) Record(_ context.Context, e Entry) error {
	line, err := json.Marshal(newRecord(e))
	if err != nil {
		return fmt.Errorf("encoding audit record: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.w.Write(line); err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}

func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.w.Close()
}
