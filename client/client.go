// Package client talks to a running relay over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sonnes/dakiya/core"
)

// maxResponseBytes bounds a decoded response body.
const maxResponseBytes = 16 << 20

// Client calls the relay HTTP API rooted at BaseURL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Source is sent in X-Dakiya-Source so posts are attributed correctly.
	Source string
}

// New creates a Client for baseURL, e.g. "http://127.0.0.1:8010".
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Source:     "cli",
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Messages is a page of one channel. LatestID is only set by Since.
type Messages struct {
	Target   string         `json:"target"`
	Messages []core.Message `json:"messages"`
	LatestID int64          `json:"latest_id"`
}

// Channels lists known channels, with stats when requested.
type Channels struct {
	Channels []string            `json:"channels"`
	Stats    []core.ChannelStats `json:"stats,omitempty"`
}

type postInput struct {
	Target string `json:"target"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type postOutput struct {
	OK      bool          `json:"ok"`
	Posted  int64         `json:"posted"`
	Message *core.Message `json:"message"`
}

// Post appends a message and returns it as stored.
func (c *Client) Post(ctx context.Context, target, sender, text string) (core.Message, error) {
	var out postOutput
	err := c.call(ctx, http.MethodPost, "/api/messages", nil, postInput{Target: target, Sender: sender, Text: text}, &out)
	if err != nil {
		return core.Message{}, err
	}
	if out.Message == nil {
		return core.Message{ID: out.Posted, Channel: target, Sender: sender, Text: text}, nil
	}
	return *out.Message, nil
}

// Recent returns the newest limit messages of target, oldest first.
func (c *Client) Recent(ctx context.Context, target string, limit int) (Messages, error) {
	q := url.Values{"target": {target}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out Messages
	err := c.call(ctx, http.MethodGet, "/api/messages", q, nil, &out)
	return out, err
}

// Since returns up to limit messages of target after sinceID.
func (c *Client) Since(ctx context.Context, target string, sinceID int64, limit int) (Messages, error) {
	q := url.Values{
		"target":   {target},
		"since_id": {strconv.FormatInt(sinceID, 10)},
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out Messages
	err := c.call(ctx, http.MethodGet, "/api/messages", q, nil, &out)
	return out, err
}

// Channels lists channels. verbose adds per-channel stats.
func (c *Client) Channels(ctx context.Context, verbose bool) (Channels, error) {
	var q url.Values
	if verbose {
		q = url.Values{"verbose": {"1"}}
	}
	var out Channels
	err := c.call(ctx, http.MethodGet, "/api/channels", q, nil, &out)
	return out, err
}

// Health returns nil when the relay answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/healthz", nil, nil, nil)
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, input, output any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if input != nil {
		raw, err := json.Marshal(input)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if input != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Source != "" {
		req.Header.Set("X-Dakiya-Source", c.Source)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}
	if output == nil {
		return nil
	}
	if err := json.Unmarshal(raw, output); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(raw))
}

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
