package registry

import (
	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/chain"
	"github.com/crackingshells/hatchval/version"
)

// accessor110 is the terminal registry accessor. Registry schema 1.1.0
// stores repositories of packages whose releases are kept differentially:
// each release records only the dependency changes against its declared
// base_version, so reading a release's dependencies means walking the base
// chain and replaying added/removed/modified entries oldest first.
type accessor110 struct {
	core
}

func newAccessor110(next Accessor) Accessor {
	return &accessor110{core: core{version: v110, next: next}}
}

func (a *accessor110) Declares() chain.OpSet {
	return chain.NewOpSet(Contract()...)
}

func (a *accessor110) SchemaVersion(reg hatchval.Document) (version.ID, error) {
	declared, _, err := reg.DeclaredRegistryVersion()
	return declared, err
}

func (a *accessor110) Repositories(reg hatchval.Document) ([]string, error) {
	var names []string
	for _, repo := range reg.Slice("repositories") {
		r, ok := repo.(map[string]any)
		if !ok {
			continue
		}
		if name, _ := r["name"].(string); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (a *accessor110) RepositoryExists(reg hatchval.Document, repo string) (bool, error) {
	names, err := a.Repositories(reg)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == repo {
			return true, nil
		}
	}
	return false, nil
}

func (a *accessor110) PackagesInRepository(reg hatchval.Document, repo string) ([]string, error) {
	var names []string
	a.eachPackage(reg, repo, func(_ string, pkg map[string]any) bool {
		if name, _ := pkg["name"].(string); name != "" {
			names = append(names, name)
		}
		return true
	})
	return names, nil
}

func (a *accessor110) PackageNames(reg hatchval.Document) ([]string, error) {
	seen := map[string]bool{}
	var names []string
	a.eachPackage(reg, "", func(_ string, pkg map[string]any) bool {
		name, _ := pkg["name"].(string)
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		return true
	})
	return names, nil
}

func (a *accessor110) PackageExists(reg hatchval.Document, name, repo string) (bool, error) {
	found := false
	a.eachPackage(reg, repo, func(_ string, pkg map[string]any) bool {
		if n, _ := pkg["name"].(string); n == name {
			found = true
			return false
		}
		return true
	})
	return found, nil
}

func (a *accessor110) PackageVersions(reg hatchval.Document, name string) ([]version.ID, error) {
	pkg := a.findPackage(reg, name)
	if pkg == nil {
		return nil, &NotFoundError{Package: name}
	}
	var ids []version.ID
	for _, release := range releases(pkg) {
		raw, _ := release["version"].(string)
		if raw == "" {
			continue
		}
		id, err := version.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (a *accessor110) FindCompatibleVersion(reg hatchval.Document, name string, constraint version.Constraint) (version.ID, error) {
	ids, err := a.PackageVersions(reg, name)
	if err != nil {
		return version.ID{}, err
	}
	if constraint.IsZero() {
		latest := version.Highest(ids)
		if latest.IsZero() {
			return version.ID{}, &NotFoundError{Package: name}
		}
		return latest, nil
	}
	return version.FindCompatible(ids, constraint)
}

func (a *accessor110) PackageURI(reg hatchval.Document, name string, v version.ID) (string, error) {
	pkg := a.findPackage(reg, name)
	if pkg == nil {
		return "", &NotFoundError{Package: name}
	}
	release := findRelease(pkg, v)
	if release == nil {
		return "", &NotFoundError{Package: name, Version: v.String()}
	}
	uri, _ := release["release_uri"].(string)
	return uri, nil
}

func (a *accessor110) PackageDependencies(reg hatchval.Document, name string, v version.ID) (hatchval.DependencyView, error) {
	pkg := a.findPackage(reg, name)
	if pkg == nil {
		return nil, &NotFoundError{Package: name}
	}
	var target map[string]any
	if v.IsZero() {
		all := releases(pkg)
		if len(all) == 0 {
			return nil, &NotFoundError{Package: name}
		}
		target = all[len(all)-1]
	} else if target = findRelease(pkg, v); target == nil {
		return nil, &NotFoundError{Package: name, Version: v.String()}
	}

	// Follow base_version links back to the root release, newest first.
	// A release revisited on its own base chain means the snapshot's
	// base_version links loop, so bail out instead of walking forever.
	baseChain := []map[string]any{}
	walked := map[string]bool{}
	var chainPath []string
	for release := target; release != nil; {
		raw, _ := release["version"].(string)
		if walked[raw] {
			return nil, &CyclicBaseChainError{
				Package: name,
				Path:    append(chainPath, raw),
			}
		}
		walked[raw] = true
		chainPath = append(chainPath, raw)
		baseChain = append(baseChain, release)
		base, _ := release["base_version"].(string)
		if base == "" {
			break
		}
		baseID, err := version.Parse(base)
		if err != nil {
			return nil, err
		}
		release = findRelease(pkg, baseID)
	}

	view := hatchval.DependencyView{
		hatchval.DepHatch:  []hatchval.Dependency{},
		hatchval.DepPython: []hatchval.Dependency{},
	}
	// Replay the diffs oldest first.
	for i := len(baseChain) - 1; i >= 0; i-- {
		release := baseChain[i]
		view[hatchval.DepHatch] = applyDiff(view[hatchval.DepHatch], release, "hatch_dependencies")
		view[hatchval.DepPython] = applyDiff(view[hatchval.DepPython], release, "python_dependencies")
	}
	return view, nil
}

// applyDiff replays one release's added/removed/modified entries for a
// dependency field family onto deps.
func applyDiff(deps []hatchval.Dependency, release map[string]any, field string) []hatchval.Dependency {
	if added, ok := release[field+"_added"].([]any); ok {
		deps = append(deps, decodeDeps(added)...)
	}
	if removed, ok := release[field+"_removed"].([]any); ok {
		for _, r := range removed {
			name, _ := r.(string)
			deps = deleteDep(deps, name)
		}
	}
	if modified, ok := release[field+"_modified"].([]any); ok {
		for _, m := range decodeDeps(modified) {
			for i := range deps {
				if deps[i].Name == m.Name {
					deps[i] = m
					break
				}
			}
		}
	}
	return deps
}

func deleteDep(deps []hatchval.Dependency, name string) []hatchval.Dependency {
	out := deps[:0]
	for _, d := range deps {
		if d.Name != name {
			out = append(out, d)
		}
	}
	return out
}

func decodeDeps(raw []any) []hatchval.Dependency {
	out := make([]hatchval.Dependency, 0, len(raw))
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
		out = append(out, dep)
	}
	return out
}

// eachPackage walks packages, optionally restricted to one repository.
// Returning false from fn stops the walk.
func (a *accessor110) eachPackage(reg hatchval.Document, repo string, fn func(repoName string, pkg map[string]any) bool) {
	for _, rawRepo := range reg.Slice("repositories") {
		r, ok := rawRepo.(map[string]any)
		if !ok {
			continue
		}
		repoName, _ := r["name"].(string)
		if repo != "" && repoName != repo {
			continue
		}
		pkgs, _ := r["packages"].([]any)
		for _, rawPkg := range pkgs {
			pkg, ok := rawPkg.(map[string]any)
			if !ok {
				continue
			}
			if !fn(repoName, pkg) {
				return
			}
		}
	}
}

func (a *accessor110) findPackage(reg hatchval.Document, name string) map[string]any {
	var found map[string]any
	a.eachPackage(reg, "", func(_ string, pkg map[string]any) bool {
		if n, _ := pkg["name"].(string); n == name {
			found = pkg
			return false
		}
		return true
	})
	return found
}

func releases(pkg map[string]any) []map[string]any {
	raw, _ := pkg["versions"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if release, ok := item.(map[string]any); ok {
			out = append(out, release)
		}
	}
	return out
}

func findRelease(pkg map[string]any, v version.ID) map[string]any {
	for _, release := range releases(pkg) {
		raw, _ := release["version"].(string)
		if id, err := version.Parse(raw); err == nil && id.Equal(v) {
			return release
		}
	}
	return nil
}
