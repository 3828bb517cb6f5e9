// Package pkgmeta provides version-independent access to package-metadata
// documents through a chain of version-specific accessors. Each accessor
// adapts the fields whose shape changed in its schema version and forwards
// every other access to the next-older accessor in the chain.
package pkgmeta

import (
	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/chain"
	"github.com/crackingshells/hatchval/version"
)

// Operations of the accessor family contract.
const (
	OpDependencies       chain.Op = "dependencies"
	OpEntryPoint         chain.Op = "entry_point"
	OpMCPEntryPoint      chain.Op = "mcp_entry_point"
	OpHatchMCPEntryPoint chain.Op = "hatch_mcp_entry_point"
	OpTools              chain.Op = "tools"
	OpLocalDependency    chain.Op = "local_dependency"
	OpFields             chain.Op = "fields"
)

// Contract returns the accessor family's full operation set.
func Contract() []chain.Op {
	return []chain.Op{
		OpDependencies, OpEntryPoint, OpMCPEntryPoint, OpHatchMCPEntryPoint,
		OpTools, OpLocalDependency, OpFields,
	}
}

// Accessor adapts access to package-metadata fields for one schema version.
type Accessor interface {
	chain.Handler

	// Dependencies returns the categories the document's shape declares.
	// Categories a version's shape does not know stay absent; the
	// dependency assembler normalizes them to empty.
	Dependencies(doc hatchval.Document) (hatchval.DependencyView, error)
	// EntryPoint returns the package's primary server entry point.
	EntryPoint(doc hatchval.Document) (string, error)
	// MCPEntryPoint returns the MCP server file.
	MCPEntryPoint(doc hatchval.Document) (string, error)
	// HatchMCPEntryPoint returns the wrapper entry point, or "" for schema
	// versions that have no wrapper concept.
	HatchMCPEntryPoint(doc hatchval.Document) (string, error)
	// Tools returns the declared tool entries.
	Tools(doc hatchval.Document) ([]hatchval.Tool, error)
	// IsLocalDependency reports whether dep resolves from the local
	// filesystem under this schema version's conventions.
	IsLocalDependency(dep hatchval.Dependency) (bool, error)
	// Get returns a top-level metadata field by name. Unknown fields fail
	// with chain.UnsupportedOperationError.
	Get(doc hatchval.Document, field string) (any, error)
}

// NewRegistry catalogs every supported accessor version, newest to oldest.
func NewRegistry() (*chain.Registry[Accessor], error) {
	return chain.NewRegistry("package-accessor", Contract(),
		chain.Descriptor[Accessor]{Version: v121, New: newAccessor121},
		chain.Descriptor[Accessor]{Version: v120, New: newAccessor120},
		chain.Descriptor[Accessor]{Version: v110, New: newAccessor110},
	)
}

var (
	v110 = version.MustParse("1.1.0")
	v120 = version.MustParse("1.2.0")
	v121 = version.MustParse("1.2.1")
)

// core carries the predecessor link and the default forwarding behavior
// shared by all accessor versions. An operation that reaches a terminal
// accessor unimplemented is a configuration defect, reported as
// UnsupportedOperationError rather than a data finding.
type core struct {
	version version.ID
	next    Accessor
}

func (c *core) Version() version.ID         { return c.version }
func (c *core) CanHandle(v version.ID) bool { return c.version.Equal(v) }
func (c *core) unsupported(op chain.Op) error {
	return &chain.UnsupportedOperationError{Family: "package-accessor", Version: c.version, Op: op}
}

func (c *core) Dependencies(doc hatchval.Document) (hatchval.DependencyView, error) {
	if c.next != nil {
		return c.next.Dependencies(doc)
	}
	return nil, c.unsupported(OpDependencies)
}

func (c *core) EntryPoint(doc hatchval.Document) (string, error) {
	if c.next != nil {
		return c.next.EntryPoint(doc)
	}
	return "", c.unsupported(OpEntryPoint)
}

func (c *core) MCPEntryPoint(doc hatchval.Document) (string, error) {
	if c.next != nil {
		return c.next.MCPEntryPoint(doc)
	}
	return "", c.unsupported(OpMCPEntryPoint)
}

func (c *core) HatchMCPEntryPoint(doc hatchval.Document) (string, error) {
	if c.next != nil {
		return c.next.HatchMCPEntryPoint(doc)
	}
	return "", c.unsupported(OpHatchMCPEntryPoint)
}

func (c *core) Tools(doc hatchval.Document) ([]hatchval.Tool, error) {
	if c.next != nil {
		return c.next.Tools(doc)
	}
	return nil, c.unsupported(OpTools)
}

func (c *core) IsLocalDependency(dep hatchval.Dependency) (bool, error) {
	if c.next != nil {
		return c.next.IsLocalDependency(dep)
	}
	return false, c.unsupported(OpLocalDependency)
}

func (c *core) Get(doc hatchval.Document, field string) (any, error) {
	if c.next != nil {
		return c.next.Get(doc, field)
	}
	return nil, c.unsupported(chain.Op("field:" + field))
}

// decodeDependencyList converts a raw dependency array into normalized
// descriptors, keeping unrecognized keys in Extra.
func decodeDependencyList(raw []any) []hatchval.Dependency {
	deps := make([]hatchval.Dependency, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		dep := hatchval.Dependency{}
		extra := map[string]any{}
		for k, v := range entry {
			switch k {
			case "name":
				dep.Name, _ = v.(string)
			case "version_constraint":
				dep.Constraint, _ = v.(string)
			default:
				extra[k] = v
			}
		}
		if len(extra) > 0 {
			dep.Extra = extra
		}
		deps = append(deps, dep)
	}
	return deps
}

// DecodeLegacyDependencies reads the pre-1.2.0 split dependency fields.
func DecodeLegacyDependencies(doc hatchval.Document) hatchval.DependencyView {
	return hatchval.DependencyView{
		hatchval.DepHatch:  decodeDependencyList(doc.Slice("hatch_dependencies")),
		hatchval.DepPython: decodeDependencyList(doc.Slice("python_dependencies")),
	}
}

// DecodeUnifiedDependencies reads the unified dependencies object
// introduced in 1.2.0.
func DecodeUnifiedDependencies(doc hatchval.Document) hatchval.DependencyView {
	unified := doc.Map("dependencies")
	view := hatchval.DependencyView{}
	for _, cat := range hatchval.Categories() {
		raw, _ := unified[string(cat)].([]any)
		view[cat] = decodeDependencyList(raw)
	}
	return view
}
