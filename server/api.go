package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sonnes/dakiya/core"
	"github.com/sonnes/dakiya/relay"
)

// maxPostBytes bounds a POST /api/messages body.
const maxPostBytes = 1 << 20

// defaultAPILimit is used when GET /api/messages has no limit.
const defaultAPILimit = 200

// SourceHeader lets first-party clients (web UI, CLI) tag their posts.
const SourceHeader = "X-Dakiya-Source"

type postRequest struct {
	Target string `json:"target"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type postResponse struct {
	OK      bool          `json:"ok"`
	Posted  int64         `json:"posted"`
	Message *core.Message `json:"message,omitempty"`
}

type messagesResponse struct {
	Target   string         `json:"target"`
	Messages []core.Message `json:"messages"`
	LatestID *int64         `json:"latest_id,omitempty"`
}

type channelsResponse struct {
	Channels []string            `json:"channels"`
	Stats    []core.ChannelStats `json:"stats,omitempty"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "ok")
}

// handleListMessages serves the newest messages of a channel, or with
// since_id, the messages after a cursor.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := queryTarget(r)

	limit, err := intParam(q.Get("limit"), defaultAPILimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("limit: %w", err))
		return
	}

	if raw := q.Get("since_id"); raw != "" {
		sinceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("since_id: must be an integer"))
			return
		}
		page, err := s.relay.FetchMessages(r.Context(), target, sinceID, limit, relay.BulkLimits)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeJSON(w, http.StatusOK, messagesResponse{Target: target, Messages: page.Messages, LatestID: &page.LatestID})
		return
	}

	msgs, err := s.relay.RecentMessages(r.Context(), target, limit, relay.BulkLimits)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, messagesResponse{Target: target, Messages: msgs})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPostBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed JSON body: %w", err))
		return
	}

	msg, err := s.relay.PostMessage(r.Context(), req.Target, req.Sender, req.Text, requestSource(r))
	switch {
	case errors.Is(err, core.ErrValidation):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusCreated, postResponse{OK: true, Posted: msg.ID, Message: &msg})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.relay.ListChannels(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	resp := channelsResponse{Channels: channels}

	if verbose, _ := strconv.ParseBool(r.URL.Query().Get("verbose")); verbose {
		resp.Stats, err = s.relay.ChannelStats(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func queryTarget(r *http.Request) string {
	if t := strings.TrimSpace(r.URL.Query().Get("target")); t != "" {
		return t
	}
	return DefaultTarget
}

// intParam parses an optional integer query parameter.
func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("must be an integer")
	}
	return n, nil
}

func requestSource(r *http.Request) relay.Source {
	switch relay.Source(strings.ToLower(r.Header.Get(SourceHeader))) {
	case relay.SourceUI:
		return relay.SourceUI
	case relay.SourceCLI:
		return relay.SourceCLI
	}
	return relay.SourceHTTP
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{OK: false, Error: err.Error()})
}
