//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Count builds the CLI and counts references by author in pdf.
// Example: mage count paper.pdf Lawrence
func Count(pdf, author string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, "count", pdf, "--author", author, "--show-entries")
}

// Locate builds the CLI and prints the reference section it finds in pdf.
func Locate(pdf string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, "locate", pdf)
}
