// Package install registers a running relay as an MCP server with the agent
// CLIs that will talk through it. Claude Code reads a project-level .mcp.json
// and Codex reads ~/.codex/config.toml.
package install

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
)

// Agents that can be registered.
const (
	AgentClaude = "claude"
	AgentCodex  = "codex"
)

// DefaultName is the server key written into agent configs.
const DefaultName = "dakiya"

// Config holds the settings for the install command.
type Config struct {
	URL        string   // MCP endpoint, e.g. http://127.0.0.1:8010/mcp
	Name       string   // server key; defaults to DefaultName
	Agents     []string // defaults to claude and codex
	ProjectDir string   // where .mcp.json lives; defaults to the working directory
	CodexHome  string   // defaults to $CODEX_HOME, then ~/.codex
}

// Result describes what happened to one agent config file.
type Result struct {
	Agent   string
	Path    string
	Changed bool
}

// Run registers the relay with every requested agent. A failure for one agent
// does not stop the others; all failures are returned together.
func Run(cfg Config) ([]Result, error) {
	if cfg.URL == "" {
		return nil, errors.New("install: URL is required")
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if len(cfg.Agents) == 0 {
		cfg.Agents = []string{AgentClaude, AgentCodex}
	}

	var (
		results []Result
		errs    *multierror.Error
	)
	for _, agent := range cfg.Agents {
		var (
			res Result
			err error
		)
		switch agent {
		case AgentClaude:
			res, err = installClaude(cfg)
		case AgentCodex:
			res, err = installCodex(cfg)
		default:
			err = fmt.Errorf("unknown agent %q (want %s or %s)", agent, AgentClaude, AgentCodex)
		}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", agent, err))
			continue
		}
		results = append(results, res)
	}
	return results, errs.ErrorOrNil()
}

// installClaude adds mcpServers.<name> to .mcp.json, keeping every other
// field of the file.
func installClaude(cfg Config) (Result, error) {
	dir := cfg.ProjectDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Result{}, err
		}
		dir = wd
	}
	path := filepath.Join(dir, ".mcp.json")
	res := Result{Agent: AgentClaude, Path: path}

	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &doc); err != nil {
			return res, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return res, err
	}

	servers, _ := doc["mcpServers"].(map[string]any)
	if servers == nil {
		servers = map[string]any{}
	}
	want := map[string]any{"type": "http", "url": cfg.URL}
	if reflect.DeepEqual(servers[cfg.Name], want) {
		return res, nil
	}
	servers[cfg.Name] = want
	doc["mcpServers"] = servers

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return res, err
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return res, err
	}
	res.Changed = true
	return res, nil
}

// installCodex adds [mcp_servers.<name>] to Codex's config.toml. Comments in
// an existing file are not preserved.
func installCodex(cfg Config) (Result, error) {
	home, err := codexHome(cfg.CodexHome)
	if err != nil {
		return Result{}, err
	}
	path := filepath.Join(home, "config.toml")
	res := Result{Agent: AgentCodex, Path: path}

	doc := map[string]any{}
	if _, err := toml.DecodeFile(path, &doc); err != nil && !os.IsNotExist(err) {
		return res, fmt.Errorf("parse %s: %w", path, err)
	}

	servers, _ := doc["mcp_servers"].(map[string]any)
	if servers == nil {
		servers = map[string]any{}
	}
	if existing, ok := servers[cfg.Name].(map[string]any); ok && existing["url"] == cfg.URL {
		return res, nil
	}
	servers[cfg.Name] = map[string]any{"url": cfg.URL}
	doc["mcp_servers"] = servers

	if err := os.MkdirAll(home, 0o755); err != nil {
		return res, err
	}
	f, err := os.Create(path)
	if err != nil {
		return res, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(doc); err != nil {
		return res, fmt.Errorf("write %s: %w", path, err)
	}
	res.Changed = true
	return res, f.Close()
}

func codexHome(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if env := os.Getenv("CODEX_HOME"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".codex"), nil
}
