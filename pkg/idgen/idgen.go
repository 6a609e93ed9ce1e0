// Package idgen produces identifiers for chats, messages and timer records.
package idgen

import "github.com/google/uuid"

// New returns a time-ordered unique identifier (UUIDv7: millisecond timestamp plus random bits).
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		// entropy source failure, fall back to a fully random id
		return uuid.NewString()
	}
	return id.String()
}

// WithPrefix returns New() prefixed with "<prefix>_".
func WithPrefix(prefix string) string {
	if prefix == "" {
		return New()
	}
	return prefix + "_" + New()
}
