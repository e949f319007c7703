package act

import "encoding/json"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"

	PartText       = "text"
	PartImage      = "image"
	PartToolCall   = "tool-call"
	PartToolResult = "tool-result"
	PartReasoning  = "reasoning"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	// DefaultAnthropicModel is injected by the legacy sequence request shape.
	DefaultAnthropicModel = "claude-3-7-sonnet-20250219"
	// DefaultOpenAIModel is injected by the legacy sequence request shape.
	DefaultOpenAIModel = "computer-use-preview"
)

// Message is one turn of an ACT conversation: *UserMessage, *AssistantMessage,
// *ToolMessage or *UnknownMessage.
type Message interface {
	isMessage()
}

// ContentPart is one unit of message content: TextPart, ImagePart,
// ToolCallPart, ToolResultPart, ReasoningPart or UnknownPart.
type ContentPart interface {
	isContentPart()
}

type UserMessage struct {
	Content []ContentPart
}

func (*UserMessage) isMessage() {}

type AssistantMessage struct {
	Content []ContentPart
	// ResponseID continues a provider conversation on the next turn.
	ResponseID string
}

func (*AssistantMessage) isMessage() {}

type ToolMessage struct {
	Content []ContentPart
}

func (*ToolMessage) isMessage() {}

// UnknownMessage keeps a message with a role this package does not know.
// It is sent back exactly as received.
type UnknownMessage struct {
	Role string
	Raw  json.RawMessage
}

func (*UnknownMessage) isMessage() {}

type TextPart struct {
	Text string `json:"text"`
}

func (TextPart) isContentPart() {}

// ImagePart carries a base64 image or an image URL.
type ImagePart struct {
	Image    string `json:"image"`
	MimeType string `json:"mime_type,omitempty"`
}

func (ImagePart) isContentPart() {}

type ToolCallPart struct {
	ID           string           `json:"id,omitempty"`
	ToolCallID   string           `json:"tool_call_id"`
	ToolName     string           `json:"tool_name"`
	Args         map[string]any   `json:"args"`
	SafetyChecks []map[string]any `json:"safety_checks,omitempty"`
}

func (ToolCallPart) isContentPart() {}

// ToolResultPart answers a ToolCallPart. IsError is only sent when true;
// an explicit is_error false decodes to the zero value and is not re-sent.
type ToolResultPart struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Result     any    `json:"result"`
	IsError    bool   `json:"is_error,omitempty"`
}

func (ToolResultPart) isContentPart() {}

type ReasoningPart struct {
	ID           string `json:"id,omitempty"`
	Reasoning    string `json:"reasoning"`
	Signature    string `json:"signature,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

func (ReasoningPart) isContentPart() {}

// UnknownPart keeps a content part with a type this package does not know.
// It is sent back exactly as received.
type UnknownPart struct {
	Type string
	Raw  json.RawMessage
}

func (UnknownPart) isContentPart() {}

// Model selects the provider and model that drive a request. APIKey is the
// caller's own provider key and may be empty.
type Model struct {
	Provider string `json:"provider,omitempty"`
	Name     string `json:"name,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
}

// Anthropic returns an Anthropic model. An empty name selects the service
// default.
func Anthropic(name string) Model {
	return Model{Provider: ProviderAnthropic, Name: name}
}

// OpenAI returns an OpenAI model. An empty name selects the service default.
func OpenAI(name string) Model {
	return Model{Provider: ProviderOpenAI, Name: name}
}

// Tool declares a function the model may call.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// SingleActResponse is the result of one model turn.
type SingleActResponse struct {
	Message      *AssistantMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
	Usage        *TokenUsage       `json:"usage,omitempty"`
}

// Step is one model turn inside a sequence.
type Step struct {
	Text           string           `json:"text"`
	ResponseID     string           `json:"response_id,omitempty"`
	ReasoningParts []ReasoningPart  `json:"reasoning_parts,omitempty"`
	ToolCalls      []ToolCallPart   `json:"tool_calls,omitempty"`
	ToolResults    []ToolResultPart `json:"tool_results,omitempty"`
	FinishReason   string           `json:"finish_reason,omitempty"`
	Usage          *TokenUsage      `json:"usage,omitempty"`
}

// ActResponse is the full transcript of a sequence.
type ActResponse struct {
	Messages []Message       `json:"messages"`
	Steps    []Step          `json:"steps"`
	Text     string          `json:"text,omitempty"`
	Output   json.RawMessage `json:"output,omitempty"`
	Usage    *TokenUsage     `json:"usage,omitempty"`
}
