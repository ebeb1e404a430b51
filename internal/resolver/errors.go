package resolver

import (
	"fmt"

	"github.com/frederic-klein/yapr/internal/catalog"
)

// DepthExceededError aborts a resolution whose dependency chain goes deeper
// than the configured limit. It is a hard failure, not a per-branch prune.
type DepthExceededError struct {
	Package catalog.PackageID
	Depth   uint
	Limit   uint
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("dependency chain through %s exceeds maximum depth %d", e.Package, e.Limit)
}

// ValidationError reports malformed resolver input, such as a nil root
// package or an empty package id.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}
