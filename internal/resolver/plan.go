package resolver

import (
	"time"

	"github.com/google/uuid"

	"github.com/frederic-klein/yapr/internal/catalog"
	"github.com/frederic-klein/yapr/internal/semver"
)

// ResolvedDependency records one edge traversed during resolution. Values
// are immutable once recorded.
type ResolvedDependency struct {
	Dependency catalog.Dependency
	Package    *catalog.Package
	Version    semver.Version
	RequiredBy catalog.PackageID
	Direct     bool
	Depth      uint
}

// Plan is the complete, successfully resolved transitive closure of a root
// package. Plans are built fresh per resolution and never persisted by the
// resolver itself.
type Plan struct {
	ID            uuid.UUID
	Root          *catalog.Package
	Resolved      []ResolvedDependency
	Order         []catalog.PackageID
	Conflicts     []Conflict
	TotalPackages int
	Duration      time.Duration
}

// HasErrors reports whether any conflict in the plan is severity error.
func (p *Plan) HasErrors() bool {
	for _, c := range p.Conflicts {
		if c.Severity == SeverityError {
			return true
		}
	}
	return false
}
