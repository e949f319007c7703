package act

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// MarshalContent encodes parts as a JSON array. A nil slice encodes as [].
func MarshalContent(parts []ContentPart) ([]byte, error) {
	if parts == nil {
		parts = []ContentPart{}
	}
	return json.Marshal(parts)
}

// UnmarshalContent decodes a JSON array of content parts. Parts with an
// unknown type are returned as UnknownPart.
func UnmarshalContent(data []byte) ([]ContentPart, error) {
	if isNull(data) {
		return nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}

	parts := make([]ContentPart, 0, len(raws))
	for i, raw := range raws {
		part, err := decodePart(raw)
		if err != nil {
			return nil, fmt.Errorf("decode content part %d: %w", i, err)
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// MarshalMessages encodes messages as a JSON array. A nil slice encodes as [].
func MarshalMessages(messages []Message) ([]byte, error) {
	if messages == nil {
		messages = []Message{}
	}
	return json.Marshal(messages)
}

// UnmarshalMessages decodes a JSON array of messages. Messages with an
// unknown role are returned as *UnknownMessage.
func UnmarshalMessages(data []byte) ([]Message, error) {
	if isNull(data) {
		return nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	messages := make([]Message, 0, len(raws))
	for i, raw := range raws {
		message, err := decodeMessage(raw)
		if err != nil {
			return nil, fmt.Errorf("decode message %d: %w", i, err)
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func decodePart(raw json.RawMessage) (ContentPart, error) {
	partType := gjson.GetBytes(raw, "type").String()

	switch partType {
	case PartText:
		var p TextPart
		err := json.Unmarshal(raw, &p)
		return p, err
	case PartImage:
		var p ImagePart
		err := json.Unmarshal(raw, &p)
		return p, err
	case PartToolCall:
		var p ToolCallPart
		err := json.Unmarshal(raw, &p)
		return p, err
	case PartToolResult:
		var p ToolResultPart
		err := json.Unmarshal(raw, &p)
		return p, err
	case PartReasoning:
		var p ReasoningPart
		err := json.Unmarshal(raw, &p)
		return p, err
	default:
		return UnknownPart{Type: partType, Raw: cloneRaw(raw)}, nil
	}
}

func decodeMessage(raw json.RawMessage) (Message, error) {
	role := gjson.GetBytes(raw, "role").String()

	var message Message
	switch role {
	case RoleUser:
		message = &UserMessage{}
	case RoleAssistant:
		message = &AssistantMessage{}
	case RoleTool:
		message = &ToolMessage{}
	default:
		return &UnknownMessage{Role: role, Raw: cloneRaw(raw)}, nil
	}

	if err := json.Unmarshal(raw, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (p TextPart) MarshalJSON() ([]byte, error) {
	type wire TextPart
	return json.Marshal(struct {
		Type string `json:"type"`
		wire
	}{PartText, wire(p)})
}

func (p ImagePart) MarshalJSON() ([]byte, error) {
	type wire ImagePart
	return json.Marshal(struct {
		Type string `json:"type"`
		wire
	}{PartImage, wire(p)})
}

func (p ToolCallPart) MarshalJSON() ([]byte, error) {
	type wire ToolCallPart
	if p.Args == nil {
		p.Args = map[string]any{}
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		wire
	}{PartToolCall, wire(p)})
}

func (p ToolResultPart) MarshalJSON() ([]byte, error) {
	type wire ToolResultPart
	return json.Marshal(struct {
		Type string `json:"type"`
		wire
	}{PartToolResult, wire(p)})
}

func (p ReasoningPart) MarshalJSON() ([]byte, error) {
	type wire ReasoningPart
	return json.Marshal(struct {
		Type string `json:"type"`
		wire
	}{PartReasoning, wire(p)})
}

func (p UnknownPart) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	return json.Marshal(map[string]string{"type": p.Type})
}

type messageWire struct {
	Role       string          `json:"role"`
	Content    json.RawMessage `json:"content"`
	ResponseID string          `json:"response_id,omitempty"`
}

func marshalMessage(role string, content []ContentPart, responseID string) ([]byte, error) {
	encoded, err := MarshalContent(content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(messageWire{Role: role, Content: encoded, ResponseID: responseID})
}

func unmarshalMessage(data []byte) (messageWire, []ContentPart, error) {
	var w messageWire
	if err := json.Unmarshal(data, &w); err != nil {
		return w, nil, err
	}
	content, err := UnmarshalContent(w.Content)
	return w, content, err
}

func (m UserMessage) MarshalJSON() ([]byte, error) {
	return marshalMessage(RoleUser, m.Content, "")
}

func (m *UserMessage) UnmarshalJSON(data []byte) error {
	_, content, err := unmarshalMessage(data)
	if err != nil {
		return err
	}
	m.Content = content
	return nil
}

func (m AssistantMessage) MarshalJSON() ([]byte, error) {
	return marshalMessage(RoleAssistant, m.Content, m.ResponseID)
}

func (m *AssistantMessage) UnmarshalJSON(data []byte) error {
	w, content, err := unmarshalMessage(data)
	if err != nil {
		return err
	}
	m.Content = content
	m.ResponseID = w.ResponseID
	return nil
}

func (m ToolMessage) MarshalJSON() ([]byte, error) {
	return marshalMessage(RoleTool, m.Content, "")
}

func (m *ToolMessage) UnmarshalJSON(data []byte) error {
	_, content, err := unmarshalMessage(data)
	if err != nil {
		return err
	}
	m.Content = content
	return nil
}

func (m UnknownMessage) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	return json.Marshal(map[string]any{"role": m.Role, "content": []any{}})
}

func (r *ActResponse) UnmarshalJSON(data []byte) error {
	type wire ActResponse
	var w struct {
		wire
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	messages, err := UnmarshalMessages(w.Messages)
	if err != nil {
		return err
	}

	*r = ActResponse(w.wire)
	r.Messages = messages
	return nil
}

func isNull(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), raw...)
}
