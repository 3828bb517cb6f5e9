package registry

import (
	"fmt"

	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/chain"
	"github.com/crackingshells/hatchval/version"
)

// Service binds one registry snapshot to the accessor chain for its
// declared registry schema version. It also satisfies depgraph.Resolver, so
// a snapshot can back transitive dependency walks directly.
type Service struct {
	snapshot hatchval.Document
	accessor Accessor
}

// NewService builds a service over snapshot using the default accessor
// registry. The snapshot must declare its registry_schema_version.
func NewService(snapshot hatchval.Document) (*Service, error) {
	reg, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	return NewServiceWith(reg, snapshot)
}

// NewServiceWith builds a service over snapshot using an explicit registry.
func NewServiceWith(reg *chain.Registry[Accessor], snapshot hatchval.Document) (*Service, error) {
	declared, present, err := snapshot.DeclaredRegistryVersion()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, fmt.Errorf("registry snapshot missing %q", hatchval.FieldRegistrySchemaVersion)
	}
	acc, err := reg.Build(declared)
	if err != nil {
		return nil, err
	}
	return &Service{snapshot: snapshot, accessor: acc}, nil
}

// SchemaVersion returns the snapshot's declared registry schema version.
func (s *Service) SchemaVersion() (version.ID, error) {
	return s.accessor.SchemaVersion(s.snapshot)
}

// PackageNames lists every package name in the snapshot.
func (s *Service) PackageNames() ([]string, error) {
	return s.accessor.PackageNames(s.snapshot)
}

// PackageExists reports whether name exists, optionally within repo.
func (s *Service) PackageExists(name, repo string) (bool, error) {
	return s.accessor.PackageExists(s.snapshot, name, repo)
}

// Repositories lists repository names.
func (s *Service) Repositories() ([]string, error) {
	return s.accessor.Repositories(s.snapshot)
}

// RepositoryExists reports whether a repository is present.
func (s *Service) RepositoryExists(repo string) (bool, error) {
	return s.accessor.RepositoryExists(s.snapshot, repo)
}

// PackagesInRepository lists package names within one repository.
func (s *Service) PackagesInRepository(repo string) ([]string, error) {
	return s.accessor.PackagesInRepository(s.snapshot, repo)
}

// PackageVersions lists a package's published versions.
func (s *Service) PackageVersions(name string) ([]version.ID, error) {
	return s.accessor.PackageVersions(s.snapshot, name)
}

// FindCompatibleVersion picks the highest version of name satisfying
// constraint; a zero constraint selects the latest release.
func (s *Service) FindCompatibleVersion(name string, c version.Constraint) (version.ID, error) {
	return s.accessor.FindCompatibleVersion(s.snapshot, name, c)
}

// PackageURI returns the release artifact location.
func (s *Service) PackageURI(name string, v version.ID) (string, error) {
	return s.accessor.PackageURI(s.snapshot, name, v)
}

// PackageDependencies reconstructs a release's dependency view.
func (s *Service) PackageDependencies(name string, v version.ID) (hatchval.DependencyView, error) {
	return s.accessor.PackageDependencies(s.snapshot, name, v)
}

// Resolve implements depgraph.Resolver: it parses the constraint (empty
// selects latest) and picks the highest satisfying release.
func (s *Service) Resolve(name, constraint string) (version.ID, error) {
	var c version.Constraint
	if constraint != "" {
		parsed, err := version.ParseConstraint(constraint)
		if err != nil {
			return version.ID{}, err
		}
		c = parsed
	}
	return s.accessor.FindCompatibleVersion(s.snapshot, name, c)
}

// Dependencies implements depgraph.Resolver with the hatch-package edges of
// one release.
func (s *Service) Dependencies(name string, v version.ID) ([]hatchval.Dependency, error) {
	view, err := s.accessor.PackageDependencies(s.snapshot, name, v)
	if err != nil {
		return nil, err
	}
	return view[hatchval.DepHatch], nil
}
