package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/sonnes/dakiya/core"
	"github.com/sonnes/dakiya/relay"
	htmlrender "github.com/sonnes/dakiya/render/html"
)

// LatestIDHeader carries the cursor for the next /ui/messages poll.
const LatestIDHeader = "X-Latest-Id"

// uiWindow is how many recent messages the page shows on load.
const uiWindow = 200

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	target := queryTarget(r)

	msgs, err := s.relay.RecentMessages(r.Context(), target, uiWindow, relay.BulkLimits)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	channels, err := s.relay.ListChannels(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	conv := &core.Conversation{Channel: target, Messages: msgs}
	if n := len(msgs); n > 0 {
		conv.LatestID = msgs[n-1].ID
	}

	var buf bytes.Buffer
	err = s.html.RenderPage(&buf, htmlrender.Page{
		Conversation: conv,
		Channels:     channels,
		MCPPath:      s.cfg.MCPPath,
		Live:         true,
	})
	if err != nil {
		s.logger.Error("render index", "target", target, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleUIMessages returns the message cards after since_id as an HTML
// fragment, with the next cursor in the X-Latest-Id header.
func (s *Server) handleUIMessages(w http.ResponseWriter, r *http.Request) {
	target := queryTarget(r)

	var sinceID int64
	if raw := r.URL.Query().Get("since_id"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "since_id: must be an integer", http.StatusBadRequest)
			return
		}
		sinceID = n
	}

	page, err := s.relay.FetchMessages(r.Context(), target, sinceID, relay.BulkLimits.Max, relay.BulkLimits)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := s.html.RenderMessages(&buf, page.Messages); err != nil {
		s.logger.Error("render messages", "target", target, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(LatestIDHeader, strconv.FormatInt(page.LatestID, 10))
	w.Write(buf.Bytes())
}
