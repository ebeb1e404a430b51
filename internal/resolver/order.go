package resolver

import (
	"sort"

	"github.com/frederic-klein/yapr/internal/catalog"
)

// installationOrder emits a linear installation sequence covering the root
// and every resolved package exactly once, with dependencies placed before
// their dependents. Edges come from the recorded requester/target pairs;
// visiting markers guard the walk against self-reference.
func installationOrder(root catalog.PackageID, resolved []ResolvedDependency) []catalog.PackageID {
	dependsOn := make(map[catalog.PackageID][]catalog.PackageID)
	known := map[catalog.PackageID]struct{}{root: {}}

	for _, rd := range resolved {
		known[rd.Package.ID] = struct{}{}
		known[rd.RequiredBy] = struct{}{}
		dependsOn[rd.RequiredBy] = append(dependsOn[rd.RequiredBy], rd.Package.ID)
	}

	ids := make([]catalog.PackageID, 0, len(known))
	for id := range known {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for id := range dependsOn {
		deps := dependsOn[id]
		sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })
	}

	var (
		order    = make([]catalog.PackageID, 0, len(known))
		visited  = make(map[catalog.PackageID]struct{}, len(known))
		visiting = make(map[catalog.PackageID]struct{})
	)

	var visit func(id catalog.PackageID)
	visit = func(id catalog.PackageID) {
		if _, done := visited[id]; done {
			return
		}
		if _, active := visiting[id]; active {
			return
		}
		visiting[id] = struct{}{}
		for _, dep := range dependsOn[id] {
			visit(dep)
		}
		delete(visiting, id)
		visited[id] = struct{}{}
		order = append(order, id)
	}

	for _, id := range ids {
		visit(id)
	}

	return order
}
