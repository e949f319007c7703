package act

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type answer struct {
	Value int `json:"value"`
}

func TestLastTextPrefersResponseText(t *testing.T) {
	t.Parallel()

	text, err := LastText(&ActResponse{Text: "final", Steps: []Step{{Text: "step"}}})
	require.NoError(t, err)
	require.Equal(t, "final", text)
}

func TestLastTextFallsBackToStepsThenMessages(t *testing.T) {
	t.Parallel()

	text, err := LastText(&ActResponse{Steps: []Step{{Text: "first"}, {Text: ""}}})
	require.NoError(t, err)
	require.Equal(t, "first", text)

	text, err = LastText(&ActResponse{Messages: []Message{
		&AssistantMessage{Content: []ContentPart{TextPart{Text: "older"}}},
		&UserMessage{Content: []ContentPart{TextPart{Text: "user"}}},
		&AssistantMessage{Content: []ContentPart{TextPart{Text: "newest"}, ToolCallPart{ToolName: "bash"}}},
	}})
	require.NoError(t, err)
	require.Equal(t, "newest", text)

	_, err = LastText(&ActResponse{})
	require.Error(t, err)

	_, err = LastText(nil)
	require.Error(t, err)
}

func TestDecodeOutputUsesOutputMember(t *testing.T) {
	t.Parallel()

	got, err := DecodeOutput[answer](&ActResponse{Output: json.RawMessage(`{"value":7}`), Text: "not json"})
	require.NoError(t, err)
	require.Equal(t, answer{Value: 7}, got)
}

func TestDecodeOutputFallsBackToText(t *testing.T) {
	t.Parallel()

	got, err := DecodeOutput[answer](&ActResponse{Text: `{"value":9}`})
	require.NoError(t, err)
	require.Equal(t, answer{Value: 9}, got)

	_, err = DecodeOutput[answer](&ActResponse{Text: "plain words"})
	require.Error(t, err)
}
