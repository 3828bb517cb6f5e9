package depgraph

import (
	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/version"
)

// DefaultMaxDepth bounds transitive walks when no explicit limit is set.
const DefaultMaxDepth = 100

// Coordinate identifies one resolved package release.
type Coordinate struct {
	Name    string
	Version version.ID
}

// Resolver supplies the registry side of a transitive walk. registry.Service
// satisfies it.
type Resolver interface {
	// Resolve picks the release of name satisfying constraint; an empty
	// constraint selects the latest release.
	Resolve(name, constraint string) (version.ID, error)
	// Dependencies returns the package-manager dependency edges of one
	// release.
	Dependencies(name string, v version.ID) ([]hatchval.Dependency, error)
}

// Walker computes bounded transitive closures over a Resolver.
type Walker struct {
	resolver Resolver
	maxDepth int
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithMaxDepth overrides the traversal depth bound.
func WithMaxDepth(depth int) WalkerOption {
	return func(w *Walker) { w.maxDepth = depth }
}

// NewWalker builds a walker over resolver.
func NewWalker(resolver Resolver, opts ...WalkerOption) *Walker {
	w := &Walker{resolver: resolver, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type pending struct {
	name       string
	constraint string
	path       []string
	depth      int
}

// TransitiveClosure resolves root's declared dependencies and every
// dependency reachable from them, breadth first. Visited tracking is keyed
// by (name, resolved version); the current-path cycle check matches by
// package name alone, same as the name-level registry graphs, so a package
// reappearing on its own resolution path is a cycle even when the revisit
// would resolve to a different version. Cycles abort the walk with
// CircularDependencyError, exceeding the depth bound with TooDeepError.
func (w *Walker) TransitiveClosure(root string, direct []hatchval.Dependency) ([]Coordinate, error) {
	queue := make([]pending, 0, len(direct))
	for _, dep := range direct {
		queue = append(queue, pending{
			name:       dep.Name,
			constraint: dep.Constraint,
			path:       []string{root},
			depth:      1,
		})
	}

	visited := map[string]bool{}
	var order []Coordinate
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for i, ancestor := range item.path {
			if ancestor == item.name {
				cycle := append(append([]string(nil), item.path[i:]...), item.name)
				return nil, &CircularDependencyError{Path: cycle}
			}
		}
		if item.depth > w.maxDepth {
			return nil, &TooDeepError{Limit: w.maxDepth}
		}

		v, err := w.resolver.Resolve(item.name, item.constraint)
		if err != nil {
			return nil, err
		}
		key := item.name + "@" + v.String()
		if visited[key] {
			continue
		}
		visited[key] = true
		order = append(order, Coordinate{Name: item.name, Version: v})

		deps, err := w.resolver.Dependencies(item.name, v)
		if err != nil {
			return nil, err
		}
		path := append(append([]string(nil), item.path...), item.name)
		for _, dep := range deps {
			queue = append(queue, pending{
				name:       dep.Name,
				constraint: dep.Constraint,
				path:       path,
				depth:      item.depth + 1,
			})
		}
	}
	return order, nil
}
