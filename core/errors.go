package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrMissingAPIKey is returned when no API key was configured.
	ErrMissingAPIKey = errors.New("API key is required (set SCRAPYBARA_API_KEY or use WithAPIKey)")
	// ErrMissingBaseURL is returned when no base URL was configured.
	ErrMissingBaseURL = errors.New("base URL is required")
	// ErrResponseTooLarge is returned when a response body exceeds the read limit.
	ErrResponseTooLarge = errors.New("response body exceeds limit")
)

// ConfigError reports invalid client configuration. It is returned before
// any network activity and is never retried.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "scrapybara: configuration: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// APIError is returned for every non-2xx response other than 422.
type APIError struct {
	StatusCode int
	// Body is the decoded JSON body, or the raw body string when it is not
	// valid JSON.
	Body any
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("scrapybara: API error (%d)", e.StatusCode)
	if text := bodyText(e.Body); text != "" {
		msg += ": " + text
	}
	return msg
}

// ValidationError is returned for 422 responses.
type ValidationError struct {
	// Detail is the "detail" member of the body when present, otherwise the
	// whole body.
	Detail any
	Body   any
}

func (e *ValidationError) Error() string {
	if msg := e.Message(); msg != "" {
		return "scrapybara: validation error: " + msg
	}
	return "scrapybara: validation error"
}

// StatusCode always returns 422.
func (e *ValidationError) StatusCode() int { return 422 }

// Message flattens the detail into a single line. List details of the form
// [{"loc": [...], "msg": "..."}] are joined with "; ".
func (e *ValidationError) Message() string {
	switch detail := e.Detail.(type) {
	case nil:
		return ""
	case string:
		return detail
	}

	raw, err := json.Marshal(e.Detail)
	if err != nil {
		return fmt.Sprint(e.Detail)
	}

	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return parsed.Raw
	}

	messages := make([]string, 0)
	parsed.ForEach(func(_, item gjson.Result) bool {
		msg := item.Get("msg").String()
		if msg == "" {
			msg = item.Raw
		}
		loc := item.Get("loc")
		if loc.IsArray() {
			segments := make([]string, 0)
			for _, segment := range loc.Array() {
				segments = append(segments, segment.String())
			}
			if len(segments) > 0 {
				msg = strings.Join(segments, ".") + ": " + msg
			}
		}
		messages = append(messages, msg)
		return true
	})

	return strings.Join(messages, "; ")
}

// TransportError wraps failures that happen before a response is received,
// including timeouts. It is not retried.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("scrapybara: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func bodyText(body any) string {
	switch typed := body.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	default:
		raw, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(raw)
	}
}
