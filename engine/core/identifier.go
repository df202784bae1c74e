package core

import "github.com/google/uuid"

// NewRunID returns a random identifier for one process run, attached to
// every log line.
func NewRunID() string {
	return uuid.NewString()
}
