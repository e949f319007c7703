package act

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentRoundTripWithOptionalFields(t *testing.T) {
	t.Parallel()

	parts := []ContentPart{
		TextPart{Text: "hello"},
		ImagePart{Image: "aGVsbG8=", MimeType: "image/png"},
		ToolCallPart{
			ID:           "item_1",
			ToolCallID:   "call_1",
			ToolName:     "computer",
			Args:         map[string]any{"action": "take_screenshot"},
			SafetyChecks: []map[string]any{{"id": "sc_1", "code": "malicious_instructions"}},
		},
		ToolResultPart{ToolCallID: "call_1", ToolName: "computer", Result: "ok", IsError: true},
		ReasoningPart{ID: "rs_1", Reasoning: "think", Signature: "sig", Instructions: "be brief"},
	}

	encoded, err := MarshalContent(parts)
	require.NoError(t, err)

	decoded, err := UnmarshalContent(encoded)
	require.NoError(t, err)
	require.Equal(t, parts, decoded)
}

func TestContentOmitsAbsentOptionalFields(t *testing.T) {
	t.Parallel()

	parts := []ContentPart{
		ImagePart{Image: "aGVsbG8="},
		ToolCallPart{ToolCallID: "call_1", ToolName: "bash", Args: map[string]any{"command": "ls"}},
		ToolResultPart{ToolCallID: "call_1", ToolName: "bash", Result: "file.txt"},
		ReasoningPart{Reasoning: "think"},
	}

	encoded, err := MarshalContent(parts)
	require.NoError(t, err)
	require.JSONEq(t, `[
		{"type":"image","image":"aGVsbG8="},
		{"type":"tool-call","tool_call_id":"call_1","tool_name":"bash","args":{"command":"ls"}},
		{"type":"tool-result","tool_call_id":"call_1","tool_name":"bash","result":"file.txt"},
		{"type":"reasoning","reasoning":"think"}
	]`, string(encoded))

	decoded, err := UnmarshalContent(encoded)
	require.NoError(t, err)
	require.Equal(t, parts, decoded)
}

func TestUnknownPartPassesThrough(t *testing.T) {
	t.Parallel()

	raw := `[{"type":"text","text":"hi"},{"type":"audio","data":"AAA","format":"wav"}]`

	decoded, err := UnmarshalContent([]byte(raw))
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	unknown, ok := decoded[1].(UnknownPart)
	require.True(t, ok)
	require.Equal(t, "audio", unknown.Type)

	encoded, err := MarshalContent(decoded)
	require.NoError(t, err)
	require.JSONEq(t, raw, string(encoded))
}

func TestMessagesRoundTrip(t *testing.T) {
	t.Parallel()

	messages := []Message{
		&UserMessage{Content: []ContentPart{TextPart{Text: "open the browser"}}},
		&AssistantMessage{
			ResponseID: "resp_1",
			Content: []ContentPart{
				ToolCallPart{ToolCallID: "call_1", ToolName: "computer", Args: map[string]any{"action": "take_screenshot"}},
			},
		},
		&ToolMessage{Content: []ContentPart{
			ToolResultPart{ToolCallID: "call_1", ToolName: "computer", Result: map[string]any{"base64_image": "AAA"}},
		}},
	}

	encoded, err := MarshalMessages(messages)
	require.NoError(t, err)

	decoded, err := UnmarshalMessages(encoded)
	require.NoError(t, err)
	require.Equal(t, messages, decoded)
}

func TestAssistantMessageResponseIDOmittedWhenEmpty(t *testing.T) {
	t.Parallel()

	encoded, err := json.Marshal(&AssistantMessage{Content: []ContentPart{TextPart{Text: "done"}}})
	require.NoError(t, err)
	require.JSONEq(t, `{"role":"assistant","content":[{"type":"text","text":"done"}]}`, string(encoded))

	encoded, err = json.Marshal(UserMessage{})
	require.NoError(t, err)
	require.JSONEq(t, `{"role":"user","content":[]}`, string(encoded))
}

func TestUnknownMessagePassesThrough(t *testing.T) {
	t.Parallel()

	raw := `[{"role":"developer","content":[{"type":"text","text":"x"}],"priority":1}]`

	decoded, err := UnmarshalMessages([]byte(raw))
	require.NoError(t, err)

	unknown, ok := decoded[0].(*UnknownMessage)
	require.True(t, ok)
	require.Equal(t, "developer", unknown.Role)

	encoded, err := MarshalMessages(decoded)
	require.NoError(t, err)
	require.JSONEq(t, raw, string(encoded))
}

func TestActResponseDecode(t *testing.T) {
	t.Parallel()

	raw := `{
		"messages": [
			{"role":"user","content":[{"type":"text","text":"go"}]},
			{"role":"assistant","content":[{"type":"text","text":"done"}],"response_id":"resp_2"}
		],
		"steps": [
			{
				"text": "done",
				"response_id": "resp_2",
				"reasoning_parts": [{"type":"reasoning","reasoning":"plan"}],
				"tool_calls": [{"type":"tool-call","tool_call_id":"c1","tool_name":"bash","args":{"command":"ls"}}],
				"tool_results": [{"type":"tool-result","tool_call_id":"c1","tool_name":"bash","result":"a.txt"}],
				"finish_reason": "stop",
				"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
			}
		],
		"text": "done",
		"output": {"answer": 42},
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`

	var resp ActResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	require.Len(t, resp.Messages, 2)
	assistant, ok := resp.Messages[1].(*AssistantMessage)
	require.True(t, ok)
	require.Equal(t, "resp_2", assistant.ResponseID)

	require.Len(t, resp.Steps, 1)
	step := resp.Steps[0]
	require.Equal(t, []ReasoningPart{{Reasoning: "plan"}}, step.ReasoningParts)
	require.Equal(t, "bash", step.ToolCalls[0].ToolName)
	require.Equal(t, "a.txt", step.ToolResults[0].Result)
	require.Equal(t, &TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, resp.Usage)
	require.JSONEq(t, `{"answer": 42}`, string(resp.Output))
	require.Equal(t, "done", resp.Text)
}

func TestSingleActResponseDecode(t *testing.T) {
	t.Parallel()

	raw := `{"message":{"role":"assistant","content":[{"type":"text","text":"hi"}]},"finish_reason":"stop"}`

	var resp SingleActResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Equal(t, []ContentPart{TextPart{Text: "hi"}}, resp.Message.Content)
	require.Equal(t, "stop", resp.FinishReason)
	require.Nil(t, resp.Usage)
}

func TestToolResultErrorFlagOnlySentWhenSet(t *testing.T) {
	t.Parallel()

	decoded, err := UnmarshalContent([]byte(`[{"type":"tool-result","tool_call_id":"c","tool_name":"bash","result":"ok","is_error":false}]`))
	require.NoError(t, err)
	require.Equal(t, []ContentPart{ToolResultPart{ToolCallID: "c", ToolName: "bash", Result: "ok"}}, decoded)

	encoded, err := MarshalContent(decoded)
	require.NoError(t, err)
	require.JSONEq(t, `[{"type":"tool-result","tool_call_id":"c","tool_name":"bash","result":"ok"}]`, string(encoded))
}
