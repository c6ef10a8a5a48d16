package puzzle

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("puzzle not found")

	// ErrInsufficientData ends a single generation attempt; the generator
	// retries it until the attempt budget runs out.
	ErrInsufficientData = errors.New("not enough eligible attributes")

	errIncomplete = errors.New("shuffle left fewer than four compatible groups")
)

// ValidationError reports malformed input. The caller can fix it and retry.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

type GenerationExhaustedError struct {
	Attempts int
	Last     error
}

func (e *GenerationExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("failed to generate puzzle after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("failed to generate puzzle after %d attempts: %v", e.Attempts, e.Last)
}

func (e *GenerationExhaustedError) Unwrap() error { return e.Last }
