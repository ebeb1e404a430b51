// Package lockfile reads and writes resolved-plan lockfiles so a resolution
// can be pinned and later verified against a fresh computation.
package lockfile

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/yapr/internal/catalog"
	"github.com/frederic-klein/yapr/internal/resolver"
)

// FormatVersion identifies the lockfile schema.
const FormatVersion = 1

// Lockfile pins one resolution: every package at its concrete version plus
// the installation order.
type Lockfile struct {
	Version  int             `yaml:"version"`
	Root     string          `yaml:"root"`
	Packages []LockedPackage `yaml:"packages"`
	Order    []string        `yaml:"order"`
}

// LockedPackage pins a single package.
type LockedPackage struct {
	ID      string `yaml:"id"`
	Version string `yaml:"version"`
}

// FromPlan converts a resolution plan into a lockfile. When a package was
// resolved more than once, the first recorded version wins, matching the
// resolution walk order.
func FromPlan(plan *resolver.Plan) *Lockfile {
	pinned := make(map[catalog.PackageID]string)
	for _, rd := range plan.Resolved {
		if _, ok := pinned[rd.Package.ID]; !ok {
			pinned[rd.Package.ID] = rd.Version.String()
		}
	}

	lock := &Lockfile{
		Version: FormatVersion,
		Root:    string(plan.Root.ID),
	}
	for id, version := range pinned {
		lock.Packages = append(lock.Packages, LockedPackage{ID: string(id), Version: version})
	}
	sort.Slice(lock.Packages, func(i, j int) bool {
		return lock.Packages[i].ID < lock.Packages[j].ID
	})
	for _, id := range plan.Order {
		lock.Order = append(lock.Order, string(id))
	}
	return lock
}

// Write emits the lockfile to w.
func (l *Lockfile) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return errors.Wrap(err, "encoding lockfile")
	}
	return enc.Close()
}

// Save writes the lockfile to path.
func (l *Lockfile) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating lockfile")
	}
	defer f.Close()
	return l.Write(f)
}

// Read parses a lockfile from r.
func Read(r io.Reader) (*Lockfile, error) {
	var lock Lockfile
	if err := yaml.NewDecoder(r).Decode(&lock); err != nil {
		return nil, errors.Wrap(err, "decoding lockfile")
	}
	if lock.Version != FormatVersion {
		return nil, errors.Errorf("unsupported lockfile version %d", lock.Version)
	}
	return &lock, nil
}

// Load parses a lockfile from path.
func Load(path string) (*Lockfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening lockfile")
	}
	defer f.Close()
	return Read(f)
}

// DriftKind classifies a difference between a lockfile and a fresh plan.
type DriftKind string

const (
	// DriftMissing marks a locked package absent from the fresh plan.
	DriftMissing DriftKind = "missing"
	// DriftAdded marks a freshly resolved package absent from the lockfile.
	DriftAdded DriftKind = "added"
	// DriftVersion marks a package whose pinned version changed.
	DriftVersion DriftKind = "version"
)

// Drift is one difference between a lockfile and a fresh resolution.
type Drift struct {
	ID       string
	Kind     DriftKind
	Locked   string
	Resolved string
}

// Diff compares the lockfile against a freshly computed plan and returns
// every difference, sorted by package id.
func (l *Lockfile) Diff(plan *resolver.Plan) []Drift {
	fresh := FromPlan(plan)

	locked := make(map[string]string, len(l.Packages))
	for _, p := range l.Packages {
		locked[p.ID] = p.Version
	}
	current := make(map[string]string, len(fresh.Packages))
	for _, p := range fresh.Packages {
		current[p.ID] = p.Version
	}

	var drifts []Drift
	for id, lockedVersion := range locked {
		resolvedVersion, ok := current[id]
		switch {
		case !ok:
			drifts = append(drifts, Drift{ID: id, Kind: DriftMissing, Locked: lockedVersion})
		case resolvedVersion != lockedVersion:
			drifts = append(drifts, Drift{ID: id, Kind: DriftVersion, Locked: lockedVersion, Resolved: resolvedVersion})
		}
	}
	for id, resolvedVersion := range current {
		if _, ok := locked[id]; !ok {
			drifts = append(drifts, Drift{ID: id, Kind: DriftAdded, Resolved: resolvedVersion})
		}
	}

	sort.Slice(drifts, func(i, j int) bool { return drifts[i].ID < drifts[j].ID })
	return drifts
}
