package state

import "github.com/google/uuid"

// NewID returns a process-unique stroke identifier.
func NewID() string {
	return uuid.NewString()
}
