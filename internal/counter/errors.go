// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package counter

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDocument indicates there was no document text to count in.
	// A run that ends with this error has no count, which is different
	// from a count of zero.
	ErrEmptyDocument = errors.New("document text is empty")

	// ErrNoAuthor indicates an empty author name.
	ErrNoAuthor = errors.New("author name is empty")
)

// Capability names used in CapabilityError.
const (
	CapabilitySplit   = "split references"
	CapabilityCheck   = "check author presence"
	CapabilityConnect = "reach model backend"
)

// CapabilityError reports a failed model call. The count it interrupted is
// discarded; no partial count is ever returned alongside it.
type CapabilityError struct {
	Capability string
	Entry      string // set for presence checks
	Err        error
}

func (e *CapabilityError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("%s failed for entry %q: %v", e.Capability, e.Entry, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// IsCapabilityError reports whether err came from a model call.
func IsCapabilityError(err error) bool {
	var capErr *CapabilityError
	return errors.As(err, &capErr)
}
