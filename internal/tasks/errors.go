package tasks

import (
	"errors"
	"fmt"
)

// FailureMessage is the only failure text a caller sees once input is valid.
const FailureMessage = "Failed to generate an introduction for the provided content. Please try again."

var (
	ErrValidation       = errors.New("invalid input")
	ErrEmptyGeneration  = errors.New("AI did not return any text")
	ErrGenerationFailed = errors.New(FailureMessage)
)

// ValidationError reports input that does not match the request schema.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
