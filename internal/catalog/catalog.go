package catalog

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/yapr/internal/semver"
)

// Catalog is a read-stable repository snapshot loaded from a YAML file. It
// backs all three resolver collaborators: dependency lookup, package
// discovery and constraint resolution for movable sources.
type Catalog struct {
	packages    map[PackageID]*Package
	available   map[string][]semver.Version
	refs        map[string]string
	unavailable map[PackageID]string
}

type snapshotFile struct {
	Packages []snapshotPackage `yaml:"packages"`
}

type snapshotPackage struct {
	ID           string               `yaml:"id"`
	Version      string               `yaml:"version"`
	Source       string               `yaml:"source"`
	Ref          string               `yaml:"ref"`
	Locator      string               `yaml:"locator"`
	Available    []string             `yaml:"available"`
	Unavailable  string               `yaml:"unavailable"`
	Dependencies []snapshotDependency `yaml:"dependencies"`
}

type snapshotDependency struct {
	ID         string `yaml:"id"`
	Constraint string `yaml:"constraint"`
	Dev        bool   `yaml:"dev"`
}

// Load reads a catalog snapshot from a YAML file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening catalog")
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a catalog snapshot from r.
func Parse(r io.Reader) (*Catalog, error) {
	var file snapshotFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Wrap(err, "decoding catalog")
	}

	c := &Catalog{
		packages:    make(map[PackageID]*Package),
		available:   make(map[string][]semver.Version),
		refs:        make(map[string]string),
		unavailable: make(map[PackageID]string),
	}

	for _, sp := range file.Packages {
		if sp.ID == "" {
			return nil, errors.New("catalog entry with empty package id")
		}
		id := PackageID(sp.ID)
		if _, exists := c.packages[id]; exists {
			return nil, errors.Errorf("duplicate catalog entry: %s", id)
		}

		source := SourceFixed
		if sp.Source != "" {
			source = Source(sp.Source)
			if source != SourceFixed && source != SourceMovable {
				return nil, errors.Errorf("package %s: unknown source %q", id, sp.Source)
			}
		}

		locator := sp.Locator
		if locator == "" {
			locator = sp.ID
		}

		pkg := &Package{
			ID:      id,
			Version: sp.Version,
			Source:  source,
			Ref:     sp.Ref,
			Locator: locator,
		}
		for _, sd := range sp.Dependencies {
			if sd.ID == "" {
				return nil, errors.Errorf("package %s: dependency with empty id", id)
			}
			pkg.Dependencies = append(pkg.Dependencies, Dependency{
				Target:     PackageID(sd.ID),
				Constraint: sd.Constraint,
				Required:   !sd.Dev,
			})
		}
		c.packages[id] = pkg

		for _, raw := range sp.Available {
			v, err := semver.Parse(raw)
			if err != nil {
				return nil, errors.Wrapf(err, "package %s: available version %q", id, raw)
			}
			c.available[locator] = append(c.available[locator], v)
		}
		c.refs[locator] = sp.Ref
		if sp.Unavailable != "" {
			c.unavailable[id] = sp.Unavailable
		}
	}

	return c, nil
}

// Len returns the number of packages in the snapshot.
func (c *Catalog) Len() int {
	return len(c.packages)
}

// PackageByID implements PackageDiscovery.
func (c *Catalog) PackageByID(_ context.Context, id PackageID) (*Package, error) {
	if reason, bad := c.unavailable[id]; bad {
		return nil, &UnavailableError{ID: id, Reason: reason}
	}
	pkg, ok := c.packages[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return pkg, nil
}

// DependenciesFor implements DependencyLookup.
func (c *Catalog) DependenciesFor(_ context.Context, id PackageID) ([]Dependency, error) {
	pkg, ok := c.packages[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return pkg.Dependencies, nil
}

// ResolveConstraint implements VersionResolver: among the versions a movable
// source offers, pick the highest one satisfying the constraint. A source
// with no published versions resolves to the synthetic development version
// derived from its reference.
func (c *Catalog) ResolveConstraint(_ context.Context, locator string, constraint string) (ConstraintResolution, error) {
	candidates := c.available[locator]
	if len(candidates) == 0 {
		return ConstraintResolution{
			BestVersion: semver.FromReference(c.refs[locator]),
		}, nil
	}

	var best semver.Version
	found := false
	for _, v := range candidates {
		if !v.Satisfies(constraint) {
			continue
		}
		if !found || v.Compare(best) > 0 {
			best = v
			found = true
		}
	}
	if !found {
		return ConstraintResolution{}, &NoVersionError{
			Locator:    locator,
			Constraint: constraint,
			Candidates: len(candidates),
		}
	}

	return ConstraintResolution{BestVersion: best, Candidates: len(candidates)}, nil
}
