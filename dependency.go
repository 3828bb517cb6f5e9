package hatchval

// DependencyCategory names one class of dependency a package may declare.
type DependencyCategory string

// Canonical dependency categories. Older schema shapes only populate a
// subset; the dependency assembler leaves the rest empty rather than
// erroring.
const (
	DepHatch  DependencyCategory = "hatch"
	DepPython DependencyCategory = "python"
	DepSystem DependencyCategory = "system"
	DepDocker DependencyCategory = "docker"
)

// Categories returns the canonical category order used when normalizing and
// reporting.
func Categories() []DependencyCategory {
	return []DependencyCategory{DepHatch, DepPython, DepSystem, DepDocker}
}

// Dependency is one normalized dependency descriptor.
type Dependency struct {
	Name       string
	Constraint string
	// Extra keeps category-specific fields (resolution type, package
	// manager, registry) that the core does not interpret uniformly.
	Extra map[string]any
}

// IsLocal reports whether the descriptor carries the v1.1.0 local-resolution
// marker. Later schema versions drop the marker; their accessors answer the
// question per version.
func (d Dependency) IsLocal() bool {
	t, _ := d.Extra["type"].(map[string]any)
	kind, _ := t["type"].(string)
	return kind == "local"
}

// DependencyView is the normalized, version-independent dependency mapping
// produced fresh per assembly call.
type DependencyView map[DependencyCategory][]Dependency

// Tool is one declared tool entry.
type Tool struct {
	Name        string
	Description string
}
