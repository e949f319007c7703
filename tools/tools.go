// Package tools binds computer, edit and bash helpers to one instance and
// runs ACT tool calls against them.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/m43i/go-scrapybara/act"
	"github.com/m43i/go-scrapybara/core"
	"github.com/m43i/go-scrapybara/instance"
)

// API is the part of the instance client the helpers drive.
// *instance.Client satisfies it.
type API interface {
	Computer(ctx context.Context, id string, params instance.ComputerParams, opts ...core.RequestOption) (*instance.CommandResponse, error)
	File(ctx context.Context, id string, params instance.FileParams, opts ...core.RequestOption) (*instance.CommandResponse, error)
	Bash(ctx context.Context, id string, params instance.BashParams, opts ...core.RequestOption) (*instance.CommandResponse, error)
}

var _ API = (*instance.Client)(nil)

// Handler answers tool calls for one declared tool.
type Handler interface {
	Tool() act.Tool
	Call(ctx context.Context, args map[string]any) (any, error)
}

type funcHandler struct {
	tool act.Tool
	fn   func(ctx context.Context, args map[string]any) (any, error)
}

func (h funcHandler) Tool() act.Tool { return h.tool }

func (h funcHandler) Call(ctx context.Context, args map[string]any) (any, error) {
	return h.fn(ctx, args)
}

// Func wraps fn as the handler of tool.
func Func(tool act.Tool, fn func(ctx context.Context, args map[string]any) (any, error)) Handler {
	return funcHandler{tool: tool, fn: fn}
}

// Set dispatches tool calls by tool name.
type Set struct {
	handlers map[string]Handler
	order    []string
}

// NewSet registers handlers. Tool names must be non-empty and unique.
func NewSet(handlers ...Handler) (*Set, error) {
	set := &Set{handlers: make(map[string]Handler, len(handlers))}

	for _, h := range handlers {
		if h == nil {
			return nil, errors.New("tools: nil handler")
		}
		name := h.Tool().Name
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("tools: tool name must not be empty")
		}
		if _, ok := set.handlers[name]; ok {
			return nil, fmt.Errorf("tools: duplicate tool name %q", name)
		}
		set.handlers[name] = h
		set.order = append(set.order, name)
	}

	return set, nil
}

// ForInstance returns a set with the computer, edit and bash tools bound to
// instanceID.
func ForInstance(api API, instanceID string) *Set {
	set, err := NewSet(NewComputer(api, instanceID), NewEdit(api, instanceID), NewBash(api, instanceID))
	if err != nil {
		panic(err)
	}
	return set
}

// Tools returns the declarations in registration order.
func (s *Set) Tools() []act.Tool {
	out := make([]act.Tool, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.handlers[name].Tool())
	}
	return out
}

// Execute runs one tool call. Failures are reported in the result with
// IsError set, never as a Go error, so the result can go straight back to
// the model.
func (s *Set) Execute(ctx context.Context, call act.ToolCallPart) act.ToolResultPart {
	result := act.ToolResultPart{
		ToolCallID: call.ToolCallID,
		ToolName:   call.ToolName,
	}

	h, ok := s.handlers[call.ToolName]
	if !ok {
		result.Result = "Tool not found: " + call.ToolName
		result.IsError = true
		return result
	}

	out, err := h.Call(ctx, call.Args)
	if err != nil {
		result.Result = "Error executing tool: " + err.Error()
		result.IsError = true
		return result
	}

	result.Result = out
	return result
}

// ExecuteAll runs every tool call of msg in order. It returns nil when msg
// asks for no tool.
func (s *Set) ExecuteAll(ctx context.Context, msg *act.AssistantMessage) *act.ToolMessage {
	if msg == nil {
		return nil
	}

	var results []act.ContentPart
	for _, part := range msg.Content {
		call, ok := part.(act.ToolCallPart)
		if !ok {
			continue
		}
		results = append(results, s.Execute(ctx, call))
	}

	if len(results) == 0 {
		return nil
	}
	return &act.ToolMessage{Content: results}
}

// decodeArgs converts model supplied arguments into T.
func decodeArgs[T any](args map[string]any) (T, error) {
	var out T
	if len(args) == 0 {
		return out, nil
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return out, fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode arguments: %w", err)
	}
	return out, nil
}

func mustTool(name, description string, params any) act.Tool {
	tool, err := act.NewTool(name, description, params)
	if err != nil {
		panic(err)
	}
	return tool
}

func optString(v string) core.Opt[string] {
	if v == "" {
		return core.Opt[string]{}
	}
	return core.Value(v)
}

func optSlice[T any](v []T) core.Opt[[]T] {
	if v == nil {
		return core.Opt[[]T]{}
	}
	return core.Value(v)
}

func optNonZero[T comparable](v T) core.Opt[T] {
	var zero T
	if v == zero {
		return core.Opt[T]{}
	}
	return core.Value(v)
}
