// Package registry provides version-independent access to registry-index
// snapshots through a chain of version-specific accessors, mirroring the
// delegation shape of the metadata accessors in pkgmeta.
package registry

import (
	"fmt"
	"strings"

	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/chain"
	"github.com/crackingshells/hatchval/version"
)

// Operations of the registry accessor family contract.
const (
	OpSchemaVersion       chain.Op = "schema_version"
	OpPackageNames        chain.Op = "package_names"
	OpPackageExists       chain.Op = "package_exists"
	OpRepositories        chain.Op = "repositories"
	OpRepositoryExists    chain.Op = "repository_exists"
	OpPackagesInRepo      chain.Op = "packages_in_repository"
	OpPackageVersions     chain.Op = "package_versions"
	OpFindCompatible      chain.Op = "find_compatible_version"
	OpPackageURI          chain.Op = "package_uri"
	OpPackageDependencies chain.Op = "package_dependencies"
)

// Contract returns the registry accessor family's full operation set.
func Contract() []chain.Op {
	return []chain.Op{
		OpSchemaVersion, OpPackageNames, OpPackageExists, OpRepositories,
		OpRepositoryExists, OpPackagesInRepo, OpPackageVersions,
		OpFindCompatible, OpPackageURI, OpPackageDependencies,
	}
}

// NotFoundError reports a package or release absent from a registry
// snapshot.
type NotFoundError struct {
	Package string
	Version string // empty when the package itself is missing
}

func (e *NotFoundError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("package %q not found in registry", e.Package)
	}
	return fmt.Sprintf("package %q has no release %s", e.Package, e.Version)
}

// CyclicBaseChainError reports base_version links in a snapshot that loop
// back on themselves. It is a defect of the snapshot data, not of the
// machinery, so dependency strategies surface it as a finding.
type CyclicBaseChainError struct {
	Package string
	Path    []string
}

func (e *CyclicBaseChainError) Error() string {
	return fmt.Sprintf("package %q has cyclic base_version links: %s",
		e.Package, strings.Join(e.Path, " -> "))
}

// Accessor adapts access to a registry snapshot for one registry schema
// version.
type Accessor interface {
	chain.Handler

	// SchemaVersion reads the snapshot's declared registry schema version.
	SchemaVersion(reg hatchval.Document) (version.ID, error)
	// PackageNames lists every package name across all repositories.
	PackageNames(reg hatchval.Document) ([]string, error)
	// PackageExists reports whether name exists; a non-empty repo restricts
	// the lookup to that repository.
	PackageExists(reg hatchval.Document, name, repo string) (bool, error)
	// Repositories lists repository names.
	Repositories(reg hatchval.Document) ([]string, error)
	// RepositoryExists reports whether a repository is present.
	RepositoryExists(reg hatchval.Document, repo string) (bool, error)
	// PackagesInRepository lists package names within one repository.
	PackagesInRepository(reg hatchval.Document, repo string) ([]string, error)
	// PackageVersions lists a package's published versions, oldest first as
	// stored.
	PackageVersions(reg hatchval.Document, name string) ([]version.ID, error)
	// FindCompatibleVersion picks the highest version of name satisfying
	// constraint; a zero constraint selects the latest release.
	FindCompatibleVersion(reg hatchval.Document, name string, c version.Constraint) (version.ID, error)
	// PackageURI returns the release artifact location for an exact version.
	PackageURI(reg hatchval.Document, name string, v version.ID) (string, error)
	// PackageDependencies reconstructs the complete dependency view of one
	// release from the registry's differential storage.
	PackageDependencies(reg hatchval.Document, name string, v version.ID) (hatchval.DependencyView, error)
}

// NewRegistry catalogs every supported registry accessor version.
func NewRegistry() (*chain.Registry[Accessor], error) {
	return chain.NewRegistry("registry-accessor", Contract(),
		chain.Descriptor[Accessor]{Version: v110, New: newAccessor110},
	)
}

var v110 = version.MustParse("1.1.0")

// core carries the predecessor link and default forwarding, same shape as
// the other families.
type core struct {
	version version.ID
	next    Accessor
}

func (c *core) Version() version.ID         { return c.version }
func (c *core) CanHandle(v version.ID) bool { return c.version.Equal(v) }
func (c *core) unsupported(op chain.Op) error {
	return &chain.UnsupportedOperationError{Family: "registry-accessor", Version: c.version, Op: op}
}

func (c *core) SchemaVersion(reg hatchval.Document) (version.ID, error) {
	if c.next != nil {
		return c.next.SchemaVersion(reg)
	}
	return version.ID{}, c.unsupported(OpSchemaVersion)
}

func (c *core) PackageNames(reg hatchval.Document) ([]string, error) {
	if c.next != nil {
		return c.next.PackageNames(reg)
	}
	return nil, c.unsupported(OpPackageNames)
}

func (c *core) PackageExists(reg hatchval.Document, name, repo string) (bool, error) {
	if c.next != nil {
		return c.next.PackageExists(reg, name, repo)
	}
	return false, c.unsupported(OpPackageExists)
}

func (c *core) Repositories(reg hatchval.Document) ([]string, error) {
	if c.next != nil {
		return c.next.Repositories(reg)
	}
	return nil, c.unsupported(OpRepositories)
}

func (c *core) RepositoryExists(reg hatchval.Document, repo string) (bool, error) {
	if c.next != nil {
		return c.next.RepositoryExists(reg, repo)
	}
	return false, c.unsupported(OpRepositoryExists)
}

func (c *core) PackagesInRepository(reg hatchval.Document, repo string) ([]string, error) {
	if c.next != nil {
		return c.next.PackagesInRepository(reg, repo)
	}
	return nil, c.unsupported(OpPackagesInRepo)
}

func (c *core) PackageVersions(reg hatchval.Document, name string) ([]version.ID, error) {
	if c.next != nil {
		return c.next.PackageVersions(reg, name)
	}
	return nil, c.unsupported(OpPackageVersions)
}

func (c *core) FindCompatibleVersion(reg hatchval.Document, name string, constraint version.Constraint) (version.ID, error) {
	if c.next != nil {
		return c.next.FindCompatibleVersion(reg, name, constraint)
	}
	return version.ID{}, c.unsupported(OpFindCompatible)
}

func (c *core) PackageURI(reg hatchval.Document, name string, v version.ID) (string, error) {
	if c.next != nil {
		return c.next.PackageURI(reg, name, v)
	}
	return "", c.unsupported(OpPackageURI)
}

func (c *core) PackageDependencies(reg hatchval.Document, name string, v version.ID) (hatchval.DependencyView, error) {
	if c.next != nil {
		return c.next.PackageDependencies(reg, name, v)
	}
	return nil, c.unsupported(OpPackageDependencies)
}
