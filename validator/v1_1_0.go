package validator

import (
	"fmt"

	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/chain"
	"github.com/crackingshells/hatchval/pkgmeta"
)

// validator110 is the terminal validator. Schema 1.1.0 keeps dependencies
// in split hatch_dependencies/python_dependencies lists, a single string
// entry point and flat tool entries, and it is the only version whose
// dependency descriptors carry a local-resolution marker.
type validator110 struct {
	core
	schema  schemaStrategy
	depsStr legacyDependencyStrategy
	entry   singleEntryPointStrategy
	tools   toolsStrategy
}

func newValidator110(deps Deps, next Validator) Validator {
	return &validator110{
		core:   core{version: v110, next: next, deps: deps},
		schema: schemaStrategy{version: v110, deps: deps},
	}
}

func (v *validator110) Declares() chain.OpSet {
	return chain.NewOpSet(Contract()...)
}

func (v *validator110) Strategies() []Strategy {
	return []Strategy{v.schema, v.depsStr, v.entry, v.tools}
}

func (v *validator110) Validate(doc hatchval.Document, ctx *hatchval.ValidationContext) (hatchval.Outcome, error) {
	return runValidate(v, doc, ctx)
}

func (v *validator110) CheckSchema(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	return v.schema.Check(doc, ctx)
}

func (v *validator110) CheckDependencies(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	return v.depsStr.Check(doc, ctx)
}

func (v *validator110) CheckEntryPoint(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	return v.entry.Check(doc, ctx)
}

func (v *validator110) CheckTools(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	return v.tools.Check(doc, ctx)
}

// legacyDependencyStrategy validates the split pre-1.2.0 dependency lists.
// Hatch dependencies are checked for constraint format, the local-resolution
// policy and, when a registry snapshot is available, existence and
// constraint satisfiability. Python dependencies get format checks only.
type legacyDependencyStrategy struct{}

func (legacyDependencyStrategy) Concern() hatchval.Concern { return hatchval.ConcernDependencies }

func (legacyDependencyStrategy) Check(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	view := pkgmeta.DecodeLegacyDependencies(doc)
	var findings []string
	findings = checkConflictingDuplicates(findings, view[hatchval.DepHatch])

	svc, err := registryService(ctx)
	if err != nil {
		return false, nil, err
	}

	for _, dep := range view[hatchval.DepHatch] {
		if dep.Name == "" {
			findings = append(findings, "hatch dependency with empty name")
			continue
		}
		if dep.IsLocal() {
			if !ctx.AllowLocalDependencies {
				findings = append(findings, fmt.Sprintf("dependency %s: local dependencies are not allowed", dep.Name))
			}
			// Local dependencies resolve from the filesystem, never the
			// registry.
			continue
		}
		var (
			constraint = dep.Constraint
			ok         bool
		)
		findings, _, ok = checkConstraintFormat(findings, dep.Name, constraint)
		if !ok || svc == nil {
			continue
		}
		findings, err = checkAgainstRegistry(findings, svc, dep)
		if err != nil {
			return false, nil, err
		}
	}

	for _, dep := range view[hatchval.DepPython] {
		if dep.Name == "" {
			findings = append(findings, "python dependency with empty name")
			continue
		}
		findings, _, _ = checkConstraintFormat(findings, dep.Name, dep.Constraint)
	}

	return len(findings) == 0, findings, nil
}

// singleEntryPointStrategy requires the pre-1.2.1 string entry point.
type singleEntryPointStrategy struct{}

func (singleEntryPointStrategy) Concern() hatchval.Concern { return hatchval.ConcernEntryPoint }

func (singleEntryPointStrategy) Check(doc hatchval.Document, _ *hatchval.ValidationContext) (bool, []string, error) {
	raw, present := doc["entry_point"]
	if !present {
		return false, []string{"entry_point is required"}, nil
	}
	ep, ok := raw.(string)
	if !ok {
		return false, []string{"entry_point must be a string"}, nil
	}
	if ep == "" {
		return false, []string{"entry_point must not be empty"}, nil
	}
	return true, nil, nil
}

// toolsStrategy requires each declared tool to carry a name and description.
// A package without tools is valid.
type toolsStrategy struct{}

func (toolsStrategy) Concern() hatchval.Concern { return hatchval.ConcernTools }

func (toolsStrategy) Check(doc hatchval.Document, _ *hatchval.ValidationContext) (bool, []string, error) {
	var findings []string
	for i, raw := range doc.Slice("tools") {
		tool, ok := raw.(map[string]any)
		if !ok {
			findings = append(findings, fmt.Sprintf("tools[%d]: entry must be an object", i))
			continue
		}
		if name, _ := tool["name"].(string); name == "" {
			findings = append(findings, fmt.Sprintf("tools[%d]: name is required", i))
		}
		if desc, _ := tool["description"].(string); desc == "" {
			findings = append(findings, fmt.Sprintf("tools[%d]: description is required", i))
		}
	}
	return len(findings) == 0, findings, nil
}
