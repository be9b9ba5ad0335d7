package shared

import (
	"fmt"
	"strings"
)

// Status is the lifecycle tag shared by catalog entities, mappings and directory records.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(strings.ToLower(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: status %q must be active or inactive", ErrInvalidInput, raw)
	}
	return s, nil
}
