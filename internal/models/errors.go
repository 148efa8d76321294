// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks malformed requests. Surfaced to callers, never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a missing entity. Engine code treats it as absence.
	ErrNotFound = errors.New("not found")

	// ErrDependencyUnavailable marks a failing external accessor (storage, catalog).
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// InvalidInput wraps ErrInvalidInput with a message.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Unavailable wraps err as ErrDependencyUnavailable for the named dependency.
// Returns nil for a nil err.
func Unavailable(dependency string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDependencyUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, dependency, err)
}

// IsNotFound reports whether err marks a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
