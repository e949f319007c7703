package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// StatusResponse is the acknowledgement returned by calls that have no other
// result.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Decode classifies resp and decodes a successful body into out.
//
// 2xx JSON bodies are unmarshalled into out. Other 2xx bodies are returned
// raw when out is *string, *[]byte or *any, and unmarshalled best effort
// otherwise. 422 yields a *ValidationError, every other non-2xx status an
// *APIError.
func Decode(resp *Response, out any) error {
	if resp == nil {
		return errors.New("scrapybara: nil response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	if !IsJSON(resp.Header) {
		switch target := out.(type) {
		case *string:
			*target = string(resp.Body)
			return nil
		case *[]byte:
			*target = append([]byte(nil), resp.Body...)
			return nil
		case *any:
			*target = string(resp.Body)
			return nil
		}
	}

	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("scrapybara: decode response: %w", err)
	}
	return nil
}

// IsJSON reports whether header declares a JSON body.
func IsJSON(header http.Header) bool {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func decodeError(resp *Response) error {
	body := parseErrorBody(resp.Body)

	if resp.StatusCode == http.StatusUnprocessableEntity {
		detail := body
		if object, ok := body.(map[string]any); ok {
			if d, ok := object["detail"]; ok {
				detail = d
			}
		}
		return &ValidationError{Detail: detail, Body: body}
	}

	return &APIError{StatusCode: resp.StatusCode, Body: body}
}

// parseErrorBody never fails: bodies that are not valid JSON are kept as the
// raw string.
func parseErrorBody(raw []byte) any {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return string(raw)
	}
	return parsed
}
