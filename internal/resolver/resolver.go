package resolver

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/frederic-klein/yapr/internal/catalog"
	"github.com/frederic-klein/yapr/internal/semver"
)

// DefaultMaxDepth bounds the dependency chain when Options.MaxDepth is zero.
const DefaultMaxDepth uint = 10

// Options control a single resolution call.
type Options struct {
	// IncludeDev resolves development-only dependencies as well.
	IncludeDev bool
	// MaxDepth is the deepest dependency chain allowed before the whole
	// resolution aborts. Zero means DefaultMaxDepth.
	MaxDepth uint
}

// Resolver expands a root package's dependency tree depth-first through its
// three collaborators. Collaborator calls are issued strictly sequentially;
// a node's entire subtree is resolved before any sibling begins.
type Resolver struct {
	lookup    catalog.DependencyLookup
	discovery catalog.PackageDiscovery
	versions  catalog.VersionResolver
	log       logrus.FieldLogger
}

// New creates a resolver over the given collaborators. A nil logger
// discards resolver tracing.
func New(lookup catalog.DependencyLookup, discovery catalog.PackageDiscovery, versions catalog.VersionResolver, log logrus.FieldLogger) *Resolver {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Resolver{
		lookup:    lookup,
		discovery: discovery,
		versions:  versions,
		log:       log,
	}
}

// walkState is the accumulator owned by one Resolve call. It is passed
// explicitly through the recursion; the resolver itself stays stateless
// across calls.
type walkState struct {
	opts       Options
	visited    map[catalog.PackageID]struct{}
	resolved   []ResolvedDependency
	history    map[catalog.PackageID][]semver.Version
	requesters map[catalog.PackageID][]catalog.PackageID
}

// Resolve computes the full dependency closure of root. Any lookup failure,
// discovery failure, version-resolution failure or depth breach aborts the
// entire call; there is no partial plan.
func (r *Resolver) Resolve(ctx context.Context, root *catalog.Package, opts Options) (*Plan, error) {
	if root == nil {
		return nil, &ValidationError{Msg: "root package is nil"}
	}
	if root.ID == "" {
		return nil, &ValidationError{Msg: "root package has an empty id"}
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	start := time.Now()
	st := &walkState{
		opts:       opts,
		visited:    make(map[catalog.PackageID]struct{}),
		history:    make(map[catalog.PackageID][]semver.Version),
		requesters: make(map[catalog.PackageID][]catalog.PackageID),
	}

	r.log.WithFields(logrus.Fields{
		"root":     root.ID,
		"maxDepth": opts.MaxDepth,
		"withDev":  opts.IncludeDev,
	}).Debug("starting resolution")

	if err := r.walk(ctx, st, root, 0); err != nil {
		return nil, err
	}

	plan := &Plan{
		ID:            uuid.New(),
		Root:          root,
		Resolved:      st.resolved,
		Order:         installationOrder(root.ID, st.resolved),
		Conflicts:     detectConflicts(st.history, st.requesters),
		TotalPackages: len(st.resolved) + 1,
		Duration:      time.Since(start),
	}

	r.log.WithFields(logrus.Fields{
		"root":      root.ID,
		"packages":  plan.TotalPackages,
		"conflicts": len(plan.Conflicts),
		"elapsed":   plan.Duration,
	}).Debug("resolution complete")

	return plan, nil
}

func (r *Resolver) walk(ctx context.Context, st *walkState, pkg *catalog.Package, depth uint) error {
	if depth > st.opts.MaxDepth {
		return &DepthExceededError{Package: pkg.ID, Depth: depth, Limit: st.opts.MaxDepth}
	}

	// Each package's subtree is expanded at most once globally, no matter
	// how many parents require it.
	if _, seen := st.visited[pkg.ID]; seen {
		return nil
	}
	st.visited[pkg.ID] = struct{}{}

	deps, err := r.lookup.DependenciesFor(ctx, pkg.ID)
	if err != nil {
		return errors.Wrapf(err, "looking up dependencies of %s", pkg.ID)
	}

	for _, dep := range deps {
		if !dep.Required && !st.opts.IncludeDev {
			continue
		}

		target, err := r.discovery.PackageByID(ctx, dep.Target)
		if err != nil {
			return errors.Wrapf(err, "discovering %s (required by %s)", dep.Target, pkg.ID)
		}

		version, err := r.concreteVersion(ctx, target, dep)
		if err != nil {
			return err
		}

		r.log.WithFields(logrus.Fields{
			"package": target.ID,
			"version": version,
			"depth":   depth,
		}).Debug("resolved dependency")

		st.resolved = append(st.resolved, ResolvedDependency{
			Dependency: dep,
			Package:    target,
			Version:    version,
			RequiredBy: pkg.ID,
			Direct:     depth == 0,
			Depth:      depth,
		})
		st.history[target.ID] = append(st.history[target.ID], version)
		st.requesters[target.ID] = append(st.requesters[target.ID], pkg.ID)

		if err := r.walk(ctx, st, target, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// concreteVersion pins a version for a discovered package: fixed sources
// carry their own declared version, movable sources delegate to the version
// resolver with the dependency's constraint.
func (r *Resolver) concreteVersion(ctx context.Context, target *catalog.Package, dep catalog.Dependency) (semver.Version, error) {
	if target.Source == catalog.SourceMovable {
		res, err := r.versions.ResolveConstraint(ctx, target.Locator, dep.Constraint)
		if err != nil {
			return semver.Version{}, errors.Wrapf(err, "resolving constraint for %s", target.ID)
		}
		return res.BestVersion, nil
	}

	// A fixed source with an unparseable declared version means the catalog
	// entry itself is corrupt.
	version, err := semver.Parse(target.Version)
	if err != nil {
		return semver.Version{}, errors.Wrapf(err, "corrupt catalog entry for %s", target.ID)
	}
	return version, nil
}
