package core

import (
	"errors"
	"net/url"
	"strings"
)

// ErrMissingID is returned when a call needs a resource id and none was given.
var ErrMissingID = errors.New("scrapybara: resource id is required")

// ResourcePath builds "prefix/{id}/segments..." with id path-escaped.
func ResourcePath(prefix, id string, segments ...string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrMissingID
	}

	parts := make([]string, 0, len(segments)+2)
	parts = append(parts, strings.Trim(prefix, "/"), url.PathEscape(id))
	for _, segment := range segments {
		if segment = strings.Trim(segment, "/"); segment != "" {
			parts = append(parts, segment)
		}
	}
	return strings.Join(parts, "/"), nil
}
