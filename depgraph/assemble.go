package depgraph

import (
	hatchval "github.com/crackingshells/hatchval"
)

// DependencySource yields a document's raw dependency view. pkgmeta.Service
// satisfies it.
type DependencySource interface {
	Dependencies() (hatchval.DependencyView, error)
}

// Assemble reads the source's dependencies and normalizes them so every
// category is present, absent ones as empty slices. Callers can then index
// any category without nil checks.
func Assemble(source DependencySource) (hatchval.DependencyView, error) {
	view, err := source.Dependencies()
	if err != nil {
		return nil, err
	}
	return Normalize(view), nil
}

// Normalize fills in missing categories with empty slices.
func Normalize(view hatchval.DependencyView) hatchval.DependencyView {
	out := hatchval.DependencyView{}
	for _, cat := range hatchval.Categories() {
		if deps, ok := view[cat]; ok && deps != nil {
			out[cat] = deps
		} else {
			out[cat] = []hatchval.Dependency{}
		}
	}
	return out
}

// GraphFrom builds a name-level graph from a root package and its direct
// dependencies, expanding edges through the resolver up to maxDepth levels.
// Cycles are left in the graph for DetectCycles to report.
func GraphFrom(root string, direct []hatchval.Dependency, resolver Resolver, maxDepth int) (*Graph, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	g := New()
	g.AddPackage(root)

	type frame struct {
		name  string
		deps  []hatchval.Dependency
		depth int
	}
	queue := []frame{{name: root, deps: direct, depth: 0}}
	expanded := map[string]bool{root: true}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.depth > maxDepth {
			return nil, &TooDeepError{Limit: maxDepth}
		}
		for _, dep := range current.deps {
			g.AddDependency(current.name, dep.Name)
			if expanded[dep.Name] {
				continue
			}
			expanded[dep.Name] = true
			v, err := resolver.Resolve(dep.Name, dep.Constraint)
			if err != nil {
				return nil, err
			}
			next, err := resolver.Dependencies(dep.Name, v)
			if err != nil {
				return nil, err
			}
			if len(next) == 0 {
				continue // nothing to expand, no frame needed
			}
			queue = append(queue, frame{name: dep.Name, deps: next, depth: current.depth + 1})
		}
	}
	return g, nil
}
