package act

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/m43i/go-scrapybara/core"
)

// Client calls the ACT endpoints.
type Client struct {
	transport *core.Transport
}

// NewClient returns an ACT client that sends requests through transport.
func NewClient(transport *core.Transport) *Client {
	return &Client{transport: transport}
}

// Params are the inputs of a single model turn.
type Params struct {
	Model       Model
	System      core.Opt[string]
	Messages    []Message
	Tools       []Tool
	Temperature core.Opt[float64]
	MaxTokens   core.Opt[int]
}

// SequenceParams are the inputs of a multi-step run.
type SequenceParams struct {
	Model       Model
	System      core.Opt[string]
	Messages    []Message
	Tools       []Tool
	Temperature core.Opt[float64]
	MaxTokens   core.Opt[int]
	MaxSteps    core.Opt[int]

	// UserMessages is the legacy request shape: a flat list of raw message
	// objects. When it holds at least one message with role "user" and Model
	// names a provider but no model, the provider's default model name is
	// filled in before the request is sent. See LegacyModel.
	UserMessages []json.RawMessage
}

// Act runs one model turn.
func (c *Client) Act(ctx context.Context, params Params, opts ...core.RequestOption) (*SingleActResponse, error) {
	if err := validateRequest(params.Model, params.Tools); err != nil {
		return nil, err
	}

	body := core.Fields{
		"model":       params.Model,
		"system":      params.System,
		"messages":    params.Messages,
		"tools":       params.Tools,
		"temperature": params.Temperature,
		"max_tokens":  params.MaxTokens,
	}

	var out SingleActResponse
	err := c.transport.Call(ctx, core.Request{
		Operation: "act.act",
		Method:    http.MethodPost,
		Path:      "v1/act",
		JSON:      body,
	}, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ActSequence runs the model until it stops calling tools or MaxSteps is
// reached, and returns the whole transcript.
func (c *Client) ActSequence(ctx context.Context, params SequenceParams, opts ...core.RequestOption) (*ActResponse, error) {
	model := LegacyModel(params.Model, params.UserMessages)
	if err := validateRequest(model, params.Tools); err != nil {
		return nil, err
	}

	body := core.Fields{
		"model":       model,
		"system":      params.System,
		"messages":    params.Messages,
		"tools":       params.Tools,
		"temperature": params.Temperature,
		"max_tokens":  params.MaxTokens,
		"max_steps":   params.MaxSteps,
	}
	if params.UserMessages != nil {
		body["user_messages"] = params.UserMessages
	}

	var out ActResponse
	err := c.transport.Call(ctx, core.Request{
		Operation: "act.sequence",
		Method:    http.MethodPost,
		Path:      "v1/act/sequence",
		JSON:      body,
	}, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LegacyModel applies the compatibility rule of the legacy sequence shape.
// If userMessages holds at least one object with role "user" and model has a
// provider but no name, the provider's default model name is returned in its
// place. In every other case model is returned unchanged.
func LegacyModel(model Model, userMessages []json.RawMessage) Model {
	if len(userOnly(userMessages)) == 0 {
		return model
	}
	if model.Provider == "" || model.Name != "" {
		return model
	}

	switch model.Provider {
	case ProviderAnthropic:
		model.Name = DefaultAnthropicModel
	case ProviderOpenAI:
		model.Name = DefaultOpenAIModel
	}
	return model
}

func userOnly(messages []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(messages))
	for _, raw := range messages {
		if gjson.GetBytes(raw, "role").String() == RoleUser {
			out = append(out, raw)
		}
	}
	return out
}

func validateRequest(model Model, tools []Tool) error {
	if strings.TrimSpace(model.Provider) == "" {
		return errors.New("act: model provider is required")
	}

	seen := make(map[string]struct{}, len(tools))
	for i, tool := range tools {
		name := strings.TrimSpace(tool.Name)
		if name == "" {
			return fmt.Errorf("act: tool %d has no name", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("act: duplicate tool name %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
