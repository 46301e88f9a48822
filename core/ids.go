package core

import "github.com/google/uuid"

// NewID returns a fresh identifier for meetings, attendees and jobs.
func NewID() string {
	return uuid.NewString()
}
