package catalog

import (
	"context"

	"github.com/frederic-klein/yapr/internal/semver"
)

// PackageID uniquely identifies a package within a repository snapshot.
type PackageID string

// Source describes how a package's version is pinned.
type Source string

const (
	// SourceFixed packages declare a concrete version.
	SourceFixed Source = "fixed"
	// SourceMovable packages track a movable reference (branch, tag, hash)
	// and need a version resolved against a constraint.
	SourceMovable Source = "movable"
)

// Dependency is a declared requirement of one package on another.
type Dependency struct {
	Target     PackageID
	Constraint string
	Required   bool // false marks a development-only dependency
}

// Package is a catalog entry. Version holds the declared version text as
// written in the snapshot; consumers parse it when they need a concrete
// version.
type Package struct {
	ID           PackageID
	Version      string
	Source       Source
	Ref          string
	Locator      string
	Dependencies []Dependency
}

// DependencyLookup fetches the declared dependencies of a package.
type DependencyLookup interface {
	DependenciesFor(ctx context.Context, id PackageID) ([]Dependency, error)
}

// PackageDiscovery finds a package by id.
type PackageDiscovery interface {
	PackageByID(ctx context.Context, id PackageID) (*Package, error)
}

// ConstraintResolution is the outcome of resolving a constraint against a
// movable source.
type ConstraintResolution struct {
	BestVersion semver.Version
	Candidates  int
}

// VersionResolver picks the best concrete version a movable source offers
// under a constraint.
type VersionResolver interface {
	ResolveConstraint(ctx context.Context, locator string, constraint string) (ConstraintResolution, error)
}
