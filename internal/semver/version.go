package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	versionRe = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z.-]+))?(?:\+([0-9A-Za-z.-]+))?$`)
	hexRefRe  = regexp.MustCompile(`^[0-9a-fA-F]{7,40}$`)
)

const shortHashLen = 7

// FormatError reports input that does not match the MAJOR.MINOR.PATCH grammar.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid version format: %q", e.Input)
}

// Version is a parsed semantic version. The zero value is 0.0.0.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Build      string

	original string
}

// Parse parses a strict MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD] version string
// after trimming surrounding whitespace.
func Parse(text string) (Version, error) {
	trimmed := strings.TrimSpace(text)
	m := versionRe.FindStringSubmatch(trimmed)
	if m == nil {
		return Version{}, &FormatError{Input: text}
	}

	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Version{}, errors.Wrapf(&FormatError{Input: text}, "major component")
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Version{}, errors.Wrapf(&FormatError{Input: text}, "minor component")
	}
	patch, err := strconv.Atoi(m[3])
	if err != nil {
		return Version{}, errors.Wrapf(&FormatError{Input: text}, "patch component")
	}

	return Version{
		Major:      major,
		Minor:      minor,
		Patch:      patch,
		Prerelease: m[4],
		Build:      m[5],
		original:   trimmed,
	}, nil
}

// FromReference converts any source reference to a version. It never fails:
// "v1.2.3" and "1.2.3" parse as-is; branch names, commit hashes and every
// other token become the synthetic development version 0.0.0-dev with the
// reference (or a 7-character prefix for hex hashes) as build metadata.
func FromReference(ref string) Version {
	trimmed := strings.TrimSpace(ref)

	if strings.HasPrefix(trimmed, "v") {
		if v, err := Parse(trimmed[1:]); err == nil {
			v.original = trimmed
			return v
		}
	}
	if v, err := Parse(trimmed); err == nil {
		return v
	}

	build := trimmed
	if hexRefRe.MatchString(trimmed) && len(trimmed) > shortHashLen {
		build = trimmed[:shortHashLen]
	}
	return Version{
		Prerelease: "dev",
		Build:      build,
		original:   trimmed,
	}
}

// Compare returns -1, 0 or 1 ordering v against other. Major, minor and patch
// compare numerically; a prerelease version ranks below its release, and two
// prerelease tags compare lexicographically.
func (v Version) Compare(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}

	switch {
	case v.Prerelease == "" && other.Prerelease == "":
		return 0
	case v.Prerelease == "":
		return 1
	case other.Prerelease == "":
		return -1
	}
	return strings.Compare(v.Prerelease, other.Prerelease)
}

// IsCompatibleWith reports whether v can replace other as a safe upgrade:
// same major, and minor strictly greater or minor equal with patch not lower.
// The relation is directional, not symmetric.
func (v Version) IsCompatibleWith(other Version) bool {
	if v.Major != other.Major {
		return false
	}
	if v.Minor != other.Minor {
		return v.Minor > other.Minor
	}
	return v.Patch >= other.Patch
}

// Equal reports structural equality, ignoring the preserved source text.
func (v Version) Equal(other Version) bool {
	return v.Major == other.Major &&
		v.Minor == other.Minor &&
		v.Patch == other.Patch &&
		v.Prerelease == other.Prerelease &&
		v.Build == other.Build
}

// Satisfies evaluates a textual range constraint against v. An empty or "*"
// constraint always matches. A malformed version embedded in the constraint
// makes the constraint unsatisfiable rather than an error.
func (v Version) Satisfies(constraint string) bool {
	c := strings.TrimSpace(constraint)
	if c == "" || c == "*" {
		return true
	}

	parse := func(s string) (Version, bool) {
		parsed, err := Parse(s)
		return parsed, err == nil
	}

	switch {
	case strings.HasPrefix(c, "^"):
		want, ok := parse(c[1:])
		return ok && v.IsCompatibleWith(want)
	case strings.HasPrefix(c, "~"):
		want, ok := parse(c[1:])
		return ok && v.Major == want.Major && v.Minor == want.Minor && v.Patch >= want.Patch
	case strings.HasPrefix(c, ">="):
		want, ok := parse(c[2:])
		return ok && v.Compare(want) >= 0
	case strings.HasPrefix(c, "<="):
		want, ok := parse(c[2:])
		return ok && v.Compare(want) <= 0
	case strings.HasPrefix(c, ">"):
		want, ok := parse(c[1:])
		return ok && v.Compare(want) > 0
	case strings.HasPrefix(c, "<"):
		want, ok := parse(c[1:])
		return ok && v.Compare(want) < 0
	default:
		want, ok := parse(c)
		return ok && v.Equal(want)
	}
}

// String returns the source text the version was created from, falling back
// to canonical formatting for programmatically built versions.
func (v Version) String() string {
	if v.original != "" {
		return v.original
	}
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// IsDevelopment reports whether v is a synthetic development version derived
// from a movable reference.
func (v Version) IsDevelopment() bool {
	return v.Major == 0 && v.Minor == 0 && v.Patch == 0 && v.Prerelease == "dev"
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
