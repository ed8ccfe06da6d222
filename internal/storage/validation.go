// Package storage keeps a local history of check runs in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidRunKind = errors.New("invalid run kind")
	ErrInvalidLimit   = errors.New("limit cannot be negative")
	ErrInvalidRun     = errors.New("invalid run")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRun checks a run before it is written.
func validateRun(run *Run) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if !run.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRunKind, run.Kind)
	}
	if run.FindingCount < 0 {
		return fmt.Errorf("%w: negative finding count %d", ErrInvalidRun, run.FindingCount)
	}
	return nil
}
