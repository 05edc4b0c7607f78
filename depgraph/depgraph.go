// Package depgraph implements the reverse-dependency index and cycle
// pre-check: a mapping from a referenced coordinate to the set of
// coordinates whose formula reads it.
package depgraph

import (
	"github.com/marcgallego/spreadsheet/cellerr"
	"github.com/marcgallego/spreadsheet/coordinates"
)

// Graph is a reverse-dependency index: dependency -> set of dependents.
type Graph struct {
	depsOf map[coordinates.Coordinates]map[coordinates.Coordinates]bool
	// ownDeps mirrors, for each cell, which dependencies it currently
	// reports; kept so SetDependencies can remove exactly its prior
	// entries without scanning the whole index.
	ownDeps map[coordinates.Coordinates][]coordinates.Coordinates
}

// New returns an empty dependency graph.
func New() *Graph {
	return &Graph{
		depsOf:  make(map[coordinates.Coordinates]map[coordinates.Coordinates]bool),
		ownDeps: make(map[coordinates.Coordinates][]coordinates.Coordinates),
	}
}

// SetDependencies removes every prior entry listing cell as a dependent,
// then records cell as a dependent of each coordinate in deps. Leaves no
// stale dependents on re-edits.
func (g *Graph) SetDependencies(cell coordinates.Coordinates, deps []coordinates.Coordinates) {
	for _, old := range g.ownDeps[cell] {
		if set, ok := g.depsOf[old]; ok {
			delete(set, cell)
			if len(set) == 0 {
				delete(g.depsOf, old)
			}
		}
	}
	cp := make([]coordinates.Coordinates, len(deps))
	copy(cp, deps)
	g.ownDeps[cell] = cp

	for _, d := range deps {
		set, ok := g.depsOf[d]
		if !ok {
			set = make(map[coordinates.Coordinates]bool)
			g.depsOf[d] = set
		}
		set[cell] = true
	}
}

// DependentsOf returns the current set of cells that read cell, in no
// particular order.
func (g *Graph) DependentsOf(cell coordinates.Coordinates) []coordinates.Coordinates {
	set := g.depsOf[cell]
	out := make([]coordinates.Coordinates, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// HasCycle builds a transient copy of the index augmented with the
// proposed edit (start depends on proposedDeps) and runs a DFS from
// start through forward reachability -- "which cells might need
// recomputing when start changes" -- failing if start is reachable from
// itself. The live index is untouched either way.
func (g *Graph) HasCycle(start coordinates.Coordinates, proposedDeps []coordinates.Coordinates) error {
	augmented := make(map[coordinates.Coordinates]map[coordinates.Coordinates]bool, len(g.depsOf)+1)
	for dep, dependents := range g.depsOf {
		cp := make(map[coordinates.Coordinates]bool, len(dependents))
		for d := range dependents {
			cp[d] = true
		}
		augmented[dep] = cp
	}
	// Remove start's current outgoing edges from the transient copy
	// before adding the proposed ones, so a re-edit that drops a
	// dependency doesn't spuriously keep an old cycle alive.
	for _, old := range g.ownDeps[start] {
		if set, ok := augmented[old]; ok {
			delete(set, start)
		}
	}
	for _, d := range proposedDeps {
		set, ok := augmented[d]
		if !ok {
			set = make(map[coordinates.Coordinates]bool)
			augmented[d] = set
		}
		set[start] = true
	}

	visited := make(map[coordinates.Coordinates]bool)
	var dfs func(coordinates.Coordinates) bool
	dfs = func(c coordinates.Coordinates) bool {
		for next := range augmented[c] {
			if next == start {
				return true
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			if dfs(next) {
				return true
			}
		}
		return false
	}
	if dfs(start) {
		return cellerr.New(cellerr.Dependency, "circular dependency through %s", start.ToID())
	}
	return nil
}
