package validator

import (
	"errors"
	"fmt"

	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/chain"
	"github.com/crackingshells/hatchval/depgraph"
	"github.com/crackingshells/hatchval/pkgmeta"
	"github.com/crackingshells/hatchval/registry"
	"github.com/crackingshells/hatchval/version"
)

// validator120 overrides the concerns schema 1.2.0 changed: the document
// schema itself and the unified dependencies object. Entry point and tools
// kept their 1.1.0 rules and forward down the chain.
type validator120 struct {
	core
	schema  schemaStrategy
	depsStr unifiedDependencyStrategy
}

func newValidator120(deps Deps, next Validator) Validator {
	return &validator120{
		core:   core{version: v120, next: next, deps: deps},
		schema: schemaStrategy{version: v120, deps: deps},
	}
}

func (v *validator120) Declares() chain.OpSet {
	return chain.NewOpSet(OpValidate, OpSchema, OpDependencies)
}

func (v *validator120) Strategies() []Strategy {
	return []Strategy{v.schema, v.depsStr}
}

func (v *validator120) Validate(doc hatchval.Document, ctx *hatchval.ValidationContext) (hatchval.Outcome, error) {
	return runValidate(v, doc, ctx)
}

func (v *validator120) CheckSchema(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	return v.schema.Check(doc, ctx)
}

func (v *validator120) CheckDependencies(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	return v.depsStr.Check(doc, ctx)
}

// unifiedDependencyStrategy validates the unified dependencies object
// introduced in 1.2.0. Hatch dependencies require a registry snapshot for
// existence, satisfiability and cycle checks; the unified schema dropped the
// local-resolution marker, so there is no local-dependency path here.
type unifiedDependencyStrategy struct{}

func (unifiedDependencyStrategy) Concern() hatchval.Concern { return hatchval.ConcernDependencies }

func (unifiedDependencyStrategy) Check(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	view := depgraph.Normalize(pkgmeta.DecodeUnifiedDependencies(doc))
	var findings []string

	for _, cat := range []hatchval.DependencyCategory{hatchval.DepPython, hatchval.DepSystem, hatchval.DepDocker} {
		for _, dep := range view[cat] {
			if dep.Name == "" {
				findings = append(findings, fmt.Sprintf("%s dependency with empty name", cat))
				continue
			}
			findings, _, _ = checkConstraintFormat(findings, dep.Name, dep.Constraint)
		}
	}

	hatchDeps := view[hatchval.DepHatch]
	findings = checkConflictingDuplicates(findings, hatchDeps)
	if len(hatchDeps) == 0 {
		return len(findings) == 0, findings, nil
	}

	svc, err := registryService(ctx)
	if err != nil {
		return false, nil, err
	}
	if svc == nil {
		findings = append(findings, "no registry data available for dependency validation")
		return false, findings, nil
	}

	// Only dependencies that pass the per-entry checks feed the graph walk.
	var resolvable []hatchval.Dependency
	for _, dep := range hatchDeps {
		if dep.Name == "" {
			findings = append(findings, "hatch dependency with empty name")
			continue
		}
		var ok bool
		findings, _, ok = checkConstraintFormat(findings, dep.Name, dep.Constraint)
		if !ok {
			continue
		}
		before := len(findings)
		findings, err = checkAgainstRegistry(findings, svc, dep)
		if err != nil {
			return false, nil, err
		}
		if len(findings) == before {
			resolvable = append(resolvable, dep)
		}
	}

	if len(resolvable) > 0 {
		findings, err = checkDependencyCycles(findings, doc.String("name"), resolvable, svc)
		if err != nil {
			return false, nil, err
		}
	}
	return len(findings) == 0, findings, nil
}

// checkDependencyCycles expands the dependency graph through the registry
// and reports every cycle. Registry gaps discovered during expansion are
// findings, not failures.
func checkDependencyCycles(findings []string, root string, direct []hatchval.Dependency, svc *registry.Service) ([]string, error) {
	if root == "" {
		root = "(unnamed package)"
	}
	g, err := depgraph.GraphFrom(root, direct, svc, depgraph.DefaultMaxDepth)
	if err != nil {
		var notFound *registry.NotFoundError
		var noMatch *version.NoCompatibleVersionError
		var badChain *registry.CyclicBaseChainError
		var tooDeep *depgraph.TooDeepError
		switch {
		case errors.As(err, &notFound):
			return append(findings, "transitive dependency missing from registry: "+notFound.Error()), nil
		case errors.As(err, &noMatch):
			return append(findings, "transitive dependency unsatisfiable: "+noMatch.Error()), nil
		case errors.As(err, &badChain):
			return append(findings, "registry data defect: "+badChain.Error()), nil
		case errors.As(err, &tooDeep):
			return append(findings, tooDeep.Error()), nil
		}
		return nil, err
	}
	for _, cycle := range g.DetectCycles() {
		findings = append(findings, (&depgraph.CircularDependencyError{Path: cycle}).Error())
	}
	return findings, nil
}
