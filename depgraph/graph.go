// Package depgraph assembles normalized dependency views and analyzes
// dependency graphs: cycle detection, topological ordering and bounded
// transitive closure over a registry snapshot.
package depgraph

import (
	"fmt"
	"sort"
	"strings"
)

// Graph is a directed dependency graph over package names. The zero value
// is not usable; construct with New.
type Graph struct {
	adjacency map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{adjacency: map[string][]string{}}
}

// AddPackage ensures a node exists even without edges.
func (g *Graph) AddPackage(name string) {
	if _, ok := g.adjacency[name]; !ok {
		g.adjacency[name] = nil
	}
}

// AddDependency records that pkg depends on dep. Duplicate edges collapse.
func (g *Graph) AddDependency(pkg, dep string) {
	for _, existing := range g.adjacency[pkg] {
		if existing == dep {
			return
		}
	}
	g.adjacency[pkg] = append(g.adjacency[pkg], dep)
}

// Packages returns every node, including edge-only targets, sorted for
// deterministic iteration.
func (g *Graph) Packages() []string {
	seen := map[string]bool{}
	for pkg, deps := range g.adjacency {
		seen[pkg] = true
		for _, dep := range deps {
			seen[dep] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DirectDependencies returns pkg's direct edges in insertion order.
func (g *Graph) DirectDependencies(pkg string) []string {
	return append([]string(nil), g.adjacency[pkg]...)
}

// DetectCycles finds every cycle via three-color depth-first search. Each
// cycle is reported as a path that begins and ends on the repeated node.
func (g *Graph) DetectCycles() [][]string {
	const (
		white = iota
		gray
		black
	)
	colors := map[string]int{}
	var cycles [][]string
	var path []string

	var dfs func(node string)
	dfs = func(node string) {
		switch colors[node] {
		case gray:
			// Back edge: the cycle is the path suffix from node onward.
			for i, p := range path {
				if p == node {
					cycle := append(append([]string(nil), path[i:]...), node)
					cycles = append(cycles, cycle)
					break
				}
			}
			return
		case black:
			return
		}
		colors[node] = gray
		path = append(path, node)
		for _, dep := range g.adjacency[node] {
			dfs(dep)
		}
		colors[node] = black
		path = path[:len(path)-1]
	}

	for _, pkg := range g.Packages() {
		if colors[pkg] == white {
			dfs(pkg)
		}
	}
	return cycles
}

// TopologicalSort orders packages so every package precedes its
// dependencies (Kahn's algorithm). It fails on cyclic graphs.
func (g *Graph) TopologicalSort() ([]string, error) {
	if cycles := g.DetectCycles(); len(cycles) > 0 {
		return nil, &CircularDependencyError{Path: cycles[0]}
	}

	inDegree := map[string]int{}
	all := g.Packages()
	for _, pkg := range all {
		if _, ok := inDegree[pkg]; !ok {
			inDegree[pkg] = 0
		}
	}
	for _, deps := range g.adjacency {
		for _, dep := range deps {
			inDegree[dep]++
		}
	}

	var queue []string
	for _, pkg := range all {
		if inDegree[pkg] == 0 {
			queue = append(queue, pkg)
		}
	}
	var order []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)
		for _, dep := range g.adjacency[current] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if len(order) != len(all) {
		return nil, fmt.Errorf("topological sort left %d packages unordered", len(all)-len(order))
	}
	return order, nil
}

// DependencyPath finds the shortest path from start to target via
// breadth-first search, or nil when target is unreachable.
func (g *Graph) DependencyPath(start, target string) []string {
	if start == target {
		return []string{start}
	}
	type entry struct {
		node string
		path []string
	}
	queue := []entry{{node: start, path: []string{start}}}
	visited := map[string]bool{start: true}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dep := range g.adjacency[current.node] {
			if dep == target {
				return append(append([]string(nil), current.path...), dep)
			}
			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, entry{node: dep, path: append(append([]string(nil), current.path...), dep)})
			}
		}
	}
	return nil
}

// TransitiveDependencies returns everything reachable from pkg, excluding
// pkg itself. It fails on cyclic graphs.
func (g *Graph) TransitiveDependencies(pkg string) ([]string, error) {
	if cycles := g.DetectCycles(); len(cycles) > 0 {
		return nil, &CircularDependencyError{Path: cycles[0]}
	}
	visited := map[string]bool{}
	stack := []string{pkg}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true
		stack = append(stack, g.adjacency[current]...)
	}
	delete(visited, pkg)
	out := make([]string, 0, len(visited))
	for name := range visited {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// CircularDependencyError reports a dependency cycle with its full path,
// beginning and ending on the repeated node.
type CircularDependencyError struct {
	Path []string
}

func (e *CircularDependencyError) Error() string {
	return "circular dependency: " + strings.Join(e.Path, " -> ")
}

// TooDeepError reports a traversal that exceeded its depth bound. The bound
// guarantees termination even if cycle detection has a gap; exceeding it is
// a failure, never silent truncation.
type TooDeepError struct {
	Limit int
}

func (e *TooDeepError) Error() string {
	return fmt.Sprintf("dependency graph exceeds maximum depth %d", e.Limit)
}
