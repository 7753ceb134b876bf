package apiutil

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ParseUUIDField parses a required UUID and returns it in canonical form.
func ParseUUIDField(raw string, field string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", FieldError{Field: field, Reason: "is required"}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", FieldError{Field: field, Reason: "must be a valid UUID"}
	}
	return id.String(), nil
}

// UUIDFromPath reads a UUID path value registered with a ServeMux pattern.
func UUIDFromPath(r *http.Request, key string) (string, error) {
	id, err := ParseUUIDField(r.PathValue(key), key)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	return id, nil
}
