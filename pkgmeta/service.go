package pkgmeta

import (
	"fmt"

	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/chain"
)

// Service binds one metadata document to the accessor chain for its
// declared schema version, giving callers field access without version
// branching. Services are cheap, immutable and safe for concurrent reads.
type Service struct {
	doc      hatchval.Document
	accessor Accessor
}

// NewService builds a service over doc using the default accessor registry.
// The document must declare its package_schema_version.
func NewService(doc hatchval.Document) (*Service, error) {
	reg, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	return NewServiceWith(reg, doc)
}

// NewServiceWith builds a service over doc using an explicit registry.
func NewServiceWith(reg *chain.Registry[Accessor], doc hatchval.Document) (*Service, error) {
	declared, present, err := doc.DeclaredVersion()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, fmt.Errorf("metadata missing %q", hatchval.FieldPackageSchemaVersion)
	}
	acc, err := reg.Build(declared)
	if err != nil {
		return nil, err
	}
	return &Service{doc: doc, accessor: acc}, nil
}

// Get returns a top-level metadata field by name.
func (s *Service) Get(field string) (any, error) { return s.accessor.Get(s.doc, field) }

// Name returns the package name.
func (s *Service) Name() string {
	v, _ := s.accessor.Get(s.doc, "name")
	name, _ := v.(string)
	return name
}

// Dependencies returns the document's dependency view.
func (s *Service) Dependencies() (hatchval.DependencyView, error) {
	return s.accessor.Dependencies(s.doc)
}

// EntryPoint returns the primary entry point.
func (s *Service) EntryPoint() (string, error) { return s.accessor.EntryPoint(s.doc) }

// HatchMCPEntryPoint returns the wrapper entry point, or "" when the schema
// version has none.
func (s *Service) HatchMCPEntryPoint() (string, error) {
	return s.accessor.HatchMCPEntryPoint(s.doc)
}

// Tools returns the declared tools.
func (s *Service) Tools() ([]hatchval.Tool, error) { return s.accessor.Tools(s.doc) }

// IsLocalDependency answers under the document's schema conventions.
func (s *Service) IsLocalDependency(dep hatchval.Dependency) (bool, error) {
	return s.accessor.IsLocalDependency(dep)
}
