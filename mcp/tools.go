package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/sonnes/dakiya/relay"
)

// DefaultFetchLimit is used when fetch_messages is called without a limit.
const DefaultFetchLimit = 50

// errInvalidArguments marks tool arguments that could not be decoded. It is
// reported as a JSON-RPC invalid params error rather than a tool failure.
var errInvalidArguments = errors.New("invalid arguments")

// ToolDefinition describes one callable tool: its name, description, input
// schema and handler.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	Function    func(ctx context.Context, input json.RawMessage) (any, error)
}

// GenerateSchema derives an inline JSON Schema from the fields of T.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	var v T
	schema := reflector.Reflect(v)
	schema.Version = ""
	return schema
}

type PostMessageInput struct {
	Target string `json:"target" jsonschema_description:"Channel to post into, e.g. \"codex\", \"claude\" or a shared channel like \"proj-x\"."`
	Sender string `json:"sender" jsonschema_description:"Who is posting, e.g. \"claude\"."`
	Text   string `json:"text" jsonschema_description:"Message body. Markdown is rendered in the web UI."`
}

type PostMessageOutput struct {
	OK     bool  `json:"ok"`
	Posted int64 `json:"posted"`
}

type FetchMessagesInput struct {
	Target  string `json:"target" jsonschema_description:"Channel to read."`
	SinceID int64  `json:"since_id,omitempty" jsonschema_description:"Return only messages with id greater than this. Pass the previous latest_id to resume." jsonschema:"default=0"`
	Limit   *int   `json:"limit,omitempty" jsonschema_description:"Maximum messages to return (1-200)." jsonschema:"default=50"`
}

type ListChannelsInput struct{}

type ListChannelsOutput struct {
	Channels []string `json:"channels"`
}

// Tools returns the relay's tool set bound to svc.
func Tools(svc *relay.Service) []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "post_message",
			Description: "Post a message into a target inbox (channel). Typical targets: \"codex\", \"claude\", or a shared channel like \"proj-x\".",
			InputSchema: GenerateSchema[PostMessageInput](),
			Function: func(ctx context.Context, input json.RawMessage) (any, error) {
				var in PostMessageInput
				if err := decodeArgs(input, &in); err != nil {
					return nil, err
				}
				msg, err := svc.PostMessage(ctx, in.Target, in.Sender, in.Text, relay.SourceMCP)
				if err != nil {
					return nil, err
				}
				return PostMessageOutput{OK: true, Posted: msg.ID}, nil
			},
		},
		{
			Name:        "fetch_messages",
			Description: "Fetch messages for a target with id > since_id, oldest first. Poll again with the returned latest_id.",
			InputSchema: GenerateSchema[FetchMessagesInput](),
			Function: func(ctx context.Context, input json.RawMessage) (any, error) {
				var in FetchMessagesInput
				if err := decodeArgs(input, &in); err != nil {
					return nil, err
				}
				limit := DefaultFetchLimit
				if in.Limit != nil {
					limit = *in.Limit
				}
				return svc.FetchMessages(ctx, in.Target, in.SinceID, limit, relay.ToolLimits)
			},
		},
		{
			Name:        "list_channels",
			Description: "List known channels (targets): the configured defaults plus every channel that has traffic.",
			InputSchema: GenerateSchema[ListChannelsInput](),
			Function: func(ctx context.Context, _ json.RawMessage) (any, error) {
				channels, err := svc.ListChannels(ctx)
				if err != nil {
					return nil, err
				}
				return ListChannelsOutput{Channels: channels}, nil
			},
		},
	}
}

func decodeArgs(input json.RawMessage, v any) error {
	if len(input) == 0 || string(input) == "null" {
		input = json.RawMessage("{}")
	}
	if err := json.Unmarshal(input, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}
