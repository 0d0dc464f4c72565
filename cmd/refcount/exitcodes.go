// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"

	"github.com/pdiddy/refcount/internal/convert"
	"github.com/pdiddy/refcount/internal/counter"
)

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitMissingFile = 2 // PDF path does not exist
	ExitExtraction  = 3 // PDF unreadable or without text
	ExitCapability  = 4 // Model backend failed; no count was produced
	ExitConfigError = 5 // Invalid configuration or missing credentials
)

// configError marks errors caused by configuration rather than input.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	var cfgErr *configError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, convert.ErrMissingFile):
		return ExitMissingFile
	case errors.Is(err, convert.ErrExtraction), errors.Is(err, convert.ErrNoText):
		return ExitExtraction
	case counter.IsCapabilityError(err):
		return ExitCapability
	case errors.As(err, &cfgErr):
		return ExitConfigError
	default:
		return ExitError
	}
}
