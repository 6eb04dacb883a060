package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/sonnes/dakiya/relay"
	"github.com/sonnes/dakiya/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolNames(t *testing.T) {
	svc := relay.New(store.New(store.Config{}), relay.Options{Logger: log.New(io.Discard)})
	want := map[string]bool{"post_message": true, "fetch_messages": true, "list_channels": true}

	for _, d := range Tools(svc) {
		if !want[d.Name] {
			t.Fatalf("unexpected tool %q", d.Name)
		}
		delete(want, d.Name)
		assert.NotEmpty(t, d.Description)
		assert.NotNil(t, d.InputSchema)
		assert.NotNil(t, d.Function)
	}
	assert.Empty(t, want, "missing tools")
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema[PostMessageInput]()
	data, err := json.Marshal(schema)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "object", m["type"])
	assert.Equal(t, false, m["additionalProperties"])
	props := m["properties"].(map[string]any)
	target := props["target"].(map[string]any)
	assert.Equal(t, "string", target["type"])
	assert.Contains(t, target["description"], "Channel")
}

func TestDecodeArgs(t *testing.T) {
	var in FetchMessagesInput
	require.NoError(t, decodeArgs(nil, &in))
	assert.Nil(t, in.Limit)

	require.NoError(t, decodeArgs(json.RawMessage(`{"target":"a","limit":5}`), &in))
	require.NotNil(t, in.Limit)
	assert.Equal(t, 5, *in.Limit)

	err := decodeArgs(json.RawMessage(`{"limit":"five"}`), &in)
	assert.True(t, errors.Is(err, errInvalidArguments))
}

func TestFetchDefaultLimit(t *testing.T) {
	svc := relay.New(store.New(store.Config{}), relay.Options{Logger: log.New(io.Discard)})
	ctx := context.Background()
	for range 60 {
		_, err := svc.PostMessage(ctx, "c", "s", "t", relay.SourceCLI)
		require.NoError(t, err)
	}

	var fetch ToolDefinition
	for _, d := range Tools(svc) {
		if d.Name == "fetch_messages" {
			fetch = d
		}
	}
	out, err := fetch.Function(ctx, json.RawMessage(`{"target":"c"}`))
	require.NoError(t, err)
	page := out.(relay.Page)
	assert.Len(t, page.Messages, DefaultFetchLimit)
	assert.Equal(t, int64(DefaultFetchLimit), page.LatestID)
}

func TestFetchNegativeSinceID(t *testing.T) {
	svc := relay.New(store.New(store.Config{}), relay.Options{Logger: log.New(io.Discard)})
	ctx := context.Background()

	var fetch ToolDefinition
	for _, d := range Tools(svc) {
		if d.Name == "fetch_messages" {
			fetch = d
		}
	}

	out, err := fetch.Function(ctx, json.RawMessage(`{"target":"x","since_id":-5}`))
	require.NoError(t, err)
	assert.Equal(t, int64(-5), out.(relay.Page).LatestID)

	_, err = svc.PostMessage(ctx, "x", "s", "t", relay.SourceCLI)
	require.NoError(t, err)
	out, err = fetch.Function(ctx, json.RawMessage(`{"target":"x","since_id":-5}`))
	require.NoError(t, err)
	page := out.(relay.Page)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, int64(1), page.LatestID)
}
