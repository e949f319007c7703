package act

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// LastText returns the final non-empty text of a sequence.
//
// It prefers resp.Text, then the last step with text, then the last
// assistant message with a text part.
func LastText(resp *ActResponse) (string, error) {
	if resp == nil {
		return "", errors.New("act response is nil")
	}

	if strings.TrimSpace(resp.Text) != "" {
		return resp.Text, nil
	}

	for i := len(resp.Steps) - 1; i >= 0; i-- {
		if strings.TrimSpace(resp.Steps[i].Text) != "" {
			return resp.Steps[i].Text, nil
		}
	}

	for i := len(resp.Messages) - 1; i >= 0; i-- {
		message, ok := resp.Messages[i].(*AssistantMessage)
		if !ok || message == nil {
			continue
		}
		for j := len(message.Content) - 1; j >= 0; j-- {
			if text, ok := message.Content[j].(TextPart); ok && strings.TrimSpace(text.Text) != "" {
				return text.Text, nil
			}
		}
	}

	return "", errors.New("no assistant text found")
}

// DecodeOutput decodes the structured output of a sequence into T.
//
// The output member is used when the server returned one; otherwise the
// final text must be valid JSON for T.
func DecodeOutput[T any](resp *ActResponse) (T, error) {
	var out T

	if resp != nil && !isNull(resp.Output) {
		if err := json.Unmarshal(resp.Output, &out); err != nil {
			return out, fmt.Errorf("decode act output: %w", err)
		}
		return out, nil
	}

	text, err := LastText(resp)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return out, fmt.Errorf("decode act text: %w", err)
	}

	return out, nil
}
