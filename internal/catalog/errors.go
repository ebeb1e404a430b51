package catalog

import (
	"errors"
	"fmt"
)

// NotFoundError reports a package id with no catalog entry.
type NotFoundError struct {
	ID PackageID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("package not found: %s", e.ID)
}

// UnavailableError reports a package whose source cannot be reached in the
// current snapshot.
type UnavailableError struct {
	ID     PackageID
	Reason string
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("source unavailable for package %s", e.ID)
	}
	return fmt.Sprintf("source unavailable for package %s: %s", e.ID, e.Reason)
}

// NoVersionError reports that no candidate version of a movable source
// satisfies a constraint.
type NoVersionError struct {
	Locator    string
	Constraint string
	Candidates int
}

func (e *NoVersionError) Error() string {
	return fmt.Sprintf("no version of %s satisfies constraint %q (%d candidates)",
		e.Locator, e.Constraint, e.Candidates)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsUnavailable reports whether err carries an UnavailableError.
func IsUnavailable(err error) bool {
	var ua *UnavailableError
	return errors.As(err, &ua)
}
