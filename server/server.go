// Package server exposes the relay over HTTP: the MCP tool endpoint, a small
// JSON API, and a polling web UI. It also owns the listener lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sonnes/dakiya/mcp"
	"github.com/sonnes/dakiya/relay"
	htmlrender "github.com/sonnes/dakiya/render/html"
)

// DefaultTarget is the channel shown when a request names none.
const DefaultTarget = "proj-x"

// Config controls the HTTP server.
type Config struct {
	Addr    string
	MCPPath string // defaults to /mcp
	Version string // reported to MCP clients
	Logger  *log.Logger

	// ShutdownGrace bounds how long in-flight requests may run after the
	// context passed to Serve is cancelled. Defaults to 5s.
	ShutdownGrace time.Duration
}

// Server routes HTTP requests to a relay.Service.
type Server struct {
	relay   *relay.Service
	html    *htmlrender.Renderer
	mcp     http.Handler
	cfg     Config
	logger  *log.Logger
	handler http.Handler
}

// New creates a Server for svc.
func New(svc *relay.Service, cfg Config) *Server {
	if cfg.MCPPath == "" {
		cfg.MCPPath = "/mcp"
	}
	cfg.MCPPath = "/" + strings.Trim(cfg.MCPPath, "/")
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	s := &Server{
		relay:  svc,
		html:   htmlrender.New(),
		cfg:    cfg,
		logger: cfg.Logger,
		mcp: mcp.NewHandler(mcp.Tools(svc), mcp.Options{
			Version:      cfg.Version,
			Instructions: "Exchange messages with other agents. Post with post_message; poll fetch_messages with the last latest_id you saw.",
			Logger:       cfg.Logger,
		}),
	}
	s.handler = s.accessLog(s.routes())
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/messages", s.handleListMessages)
	mux.HandleFunc("POST /api/messages", s.handlePostMessage)
	mux.HandleFunc("GET /api/channels", s.handleChannels)
	mux.HandleFunc("GET /ui/messages", s.handleUIMessages)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.Handle(s.cfg.MCPPath, s.mcp)
	mux.Handle(s.cfg.MCPPath+"/", s.mcp)
	return mux
}

// Handler returns the root handler, access logging included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPPath is the path the tool endpoint is mounted at.
func (s *Server) MCPPath() string {
	return s.cfg.MCPPath
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. In-flight requests get ShutdownGrace to finish before the
// remaining connections are closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	s.logger.Info("serving",
		"addr", "http://"+ln.Addr().String(),
		"mcp", "http://"+ln.Addr().String()+s.cfg.MCPPath,
	)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "grace", s.cfg.ShutdownGrace)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("graceful shutdown timed out")
			return nil
		}
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
