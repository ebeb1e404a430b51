// Package cycles enumerates circular requirements in a dependency graph.
// It is a diagnostic traversal, independent of the resolver's own cycle
// avoidance: edges that cannot be fetched are swallowed rather than failing
// the walk.
package cycles

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/frederic-klein/yapr/internal/catalog"
)

// Detector walks the dependency graph looking for closed walks.
type Detector struct {
	lookup    catalog.DependencyLookup
	discovery catalog.PackageDiscovery
	log       logrus.FieldLogger
}

// New creates a cycle detector over the given collaborators. A nil logger
// discards tracing.
func New(lookup catalog.DependencyLookup, discovery catalog.PackageDiscovery, log logrus.FieldLogger) *Detector {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Detector{lookup: lookup, discovery: discovery, log: log}
}

type walk struct {
	visited map[catalog.PackageID]struct{}
	onStack map[catalog.PackageID]struct{}
	path    []catalog.PackageID
	cycles  [][]catalog.PackageID
}

// FindCircularDependencies returns every closed walk reachable from root,
// each reported as the path from the repeated package back to itself, e.g.
// [A B C A]. A node already fully expanded is never revisited, so only the
// first cycle discoverable through a given node is reported. Packages whose
// dependency lists cannot be fetched are treated as leaves.
func (d *Detector) FindCircularDependencies(ctx context.Context, root *catalog.Package) [][]catalog.PackageID {
	if root == nil || root.ID == "" {
		return nil
	}

	w := &walk{
		visited: make(map[catalog.PackageID]struct{}),
		onStack: make(map[catalog.PackageID]struct{}),
	}
	d.visit(ctx, w, root.ID)
	return w.cycles
}

func (d *Detector) visit(ctx context.Context, w *walk, id catalog.PackageID) {
	if _, done := w.visited[id]; done {
		return
	}
	w.visited[id] = struct{}{}
	w.onStack[id] = struct{}{}
	w.path = append(w.path, id)

	deps, err := d.lookup.DependenciesFor(ctx, id)
	if err != nil {
		// Best-effort diagnostic: an unfetchable dependency list makes the
		// node a leaf instead of aborting the walk.
		d.log.WithField("package", id).WithError(err).Debug("treating package as leaf")
		deps = nil
	}

	for _, dep := range deps {
		target := dep.Target

		if _, active := w.onStack[target]; active {
			w.cycles = append(w.cycles, closedWalk(w.path, target))
			continue
		}
		if _, done := w.visited[target]; done {
			continue
		}
		if _, err := d.discovery.PackageByID(ctx, target); err != nil {
			d.log.WithField("package", target).WithError(err).Debug("skipping undiscoverable package")
			continue
		}

		d.visit(ctx, w, target)
	}

	delete(w.onStack, id)
	w.path = w.path[:len(w.path)-1]
}

// closedWalk slices the current path from the first occurrence of target
// through the present node and closes it with target again.
func closedWalk(path []catalog.PackageID, target catalog.PackageID) []catalog.PackageID {
	start := 0
	for i, id := range path {
		if id == target {
			start = i
			break
		}
	}

	cycle := make([]catalog.PackageID, 0, len(path)-start+1)
	cycle = append(cycle, path[start:]...)
	cycle = append(cycle, target)
	return cycle
}
