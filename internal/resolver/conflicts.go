package resolver

import (
	"sort"

	"github.com/frederic-klein/yapr/internal/catalog"
	"github.com/frederic-klein/yapr/internal/semver"
)

// Severity classifies a version conflict.
type Severity string

const (
	// SeverityWarning marks versions that differ but remain upgrade-compatible.
	SeverityWarning Severity = "warning"
	// SeverityError marks mutually incompatible versions.
	SeverityError Severity = "error"
)

const (
	suggestionError   = "update dependencies to use compatible versions"
	suggestionWarning = "multiple versions detected, consider a single version"
)

// Conflict records a package resolved to two or more distinct versions
// within one resolution.
type Conflict struct {
	Package    catalog.PackageID
	Versions   []semver.Version // distinct, sorted descending
	RequiredBy []catalog.PackageID
	Severity   Severity
	Suggestion string
}

// detectConflicts classifies same-package version disagreements from the
// accumulated resolution history. A package with zero or one distinct
// resolved version never produces a record.
func detectConflicts(history map[catalog.PackageID][]semver.Version, requesters map[catalog.PackageID][]catalog.PackageID) []Conflict {
	var conflicts []Conflict

	for id, versions := range history {
		distinct := dedupeVersions(versions)
		if len(distinct) < 2 {
			continue
		}

		sort.Slice(distinct, func(i, j int) bool {
			return distinct[i].Compare(distinct[j]) > 0
		})

		severity, suggestion := SeverityWarning, suggestionWarning
		if hasIncompatiblePair(distinct) {
			severity, suggestion = SeverityError, suggestionError
		}

		conflicts = append(conflicts, Conflict{
			Package:    id,
			Versions:   distinct,
			RequiredBy: dedupeIDs(requesters[id]),
			Severity:   severity,
			Suggestion: suggestion,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Package < conflicts[j].Package
	})
	return conflicts
}

// hasIncompatiblePair reports whether any two versions are mutually
// incompatible, i.e. neither is a valid upgrade of the other.
func hasIncompatiblePair(versions []semver.Version) bool {
	for i := 0; i < len(versions); i++ {
		for j := i + 1; j < len(versions); j++ {
			a, b := versions[i], versions[j]
			if !a.IsCompatibleWith(b) && !b.IsCompatibleWith(a) {
				return true
			}
		}
	}
	return false
}

func dedupeVersions(versions []semver.Version) []semver.Version {
	var distinct []semver.Version
	for _, v := range versions {
		known := false
		for _, d := range distinct {
			if v.Equal(d) {
				known = true
				break
			}
		}
		if !known {
			distinct = append(distinct, v)
		}
	}
	return distinct
}

func dedupeIDs(ids []catalog.PackageID) []catalog.PackageID {
	seen := make(map[catalog.PackageID]struct{}, len(ids))
	var distinct []catalog.PackageID
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })
	return distinct
}
