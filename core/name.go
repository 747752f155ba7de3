package core

import "github.com/google/uuid"

// NewRuntimeName returns a unique runtime name such as "cthread-1b4e28ba".
func NewRuntimeName() string {
	id := uuid.New()
	return "cthread-" + id.String()[:8]
}
