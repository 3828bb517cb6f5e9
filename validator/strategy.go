package validator

import (
	"errors"
	"fmt"
	"strconv"

	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/registry"
	"github.com/crackingshells/hatchval/version"
)

// Strategy checks one concern of one schema version. Strategies are
// stateless; per-call state travels in the ValidationContext.
type Strategy interface {
	// Concern names the concern this strategy covers.
	Concern() hatchval.Concern
	// Check returns (valid, findings, err). Findings describe what the
	// document gets wrong; err reports machinery failures and aborts the
	// surrounding Validate call.
	Check(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error)
}

// schemaStrategy validates the document against the schema for one version.
// Every validator version owns one, bound to its own schema document.
type schemaStrategy struct {
	version version.ID
	deps    Deps
}

func (s schemaStrategy) Concern() hatchval.Concern { return hatchval.ConcernSchema }

func (s schemaStrategy) Check(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	schema, err := s.deps.Provider.GetSchema(hatchval.SchemaKindPackage, s.version)
	if err != nil {
		return false, nil, err
	}
	violations, err := s.deps.Checker.Check(doc, schema)
	if err != nil {
		return false, nil, err
	}
	return len(violations) == 0, violations, nil
}

const registryServiceKey = "validator.registry-service"

// registryService returns a registry service for the context's snapshot,
// building it once per validation call. It returns nil without error when
// the context carries no snapshot.
func registryService(ctx *hatchval.ValidationContext) (*registry.Service, error) {
	if ctx.Registry == nil {
		return nil, nil
	}
	if cached, ok := ctx.Data(registryServiceKey); ok {
		return cached.(*registry.Service), nil
	}
	svc, err := registry.NewService(ctx.Registry)
	if err != nil {
		return nil, err
	}
	ctx.SetData(registryServiceKey, svc)
	return svc, nil
}

// checkConstraintFormat appends a finding when the constraint fails to
// parse. An empty constraint is acceptable and selects the latest release.
func checkConstraintFormat(findings []string, depName, constraint string) ([]string, version.Constraint, bool) {
	if constraint == "" {
		return findings, version.Constraint{}, true
	}
	c, err := version.ParseConstraint(constraint)
	if err != nil {
		return append(findings, "dependency "+depName+": invalid version constraint "+strconv.Quote(constraint)), version.Constraint{}, false
	}
	return findings, c, true
}

// checkConflictingDuplicates reports duplicate dependency names whose
// constraints admit no common version.
func checkConflictingDuplicates(findings []string, deps []hatchval.Dependency) []string {
	byName := map[string]hatchval.Dependency{}
	for _, dep := range deps {
		prev, seen := byName[dep.Name]
		if !seen {
			byName[dep.Name] = dep
			continue
		}
		if prev.Constraint == "" || dep.Constraint == "" {
			continue
		}
		a, errA := version.ParseConstraint(prev.Constraint)
		b, errB := version.ParseConstraint(dep.Constraint)
		if errA != nil || errB != nil {
			// Format findings are reported by the per-entry checks.
			continue
		}
		if !version.Overlaps(a, b) {
			findings = append(findings, fmt.Sprintf(
				"dependency %s: duplicate entries with conflicting constraints %q and %q",
				dep.Name, prev.Constraint, dep.Constraint))
		}
	}
	return findings
}

// checkAgainstRegistry verifies that dep exists in the registry and that at
// least one release satisfies its constraint. Absence and unsatisfiable
// constraints are findings; anything else is a machinery error.
func checkAgainstRegistry(findings []string, svc *registry.Service, dep hatchval.Dependency) ([]string, error) {
	exists, err := svc.PackageExists(dep.Name, "")
	if err != nil {
		return nil, err
	}
	if !exists {
		return append(findings, fmt.Sprintf("dependency %s: package not found in registry", dep.Name)), nil
	}
	if _, err := svc.Resolve(dep.Name, dep.Constraint); err != nil {
		var notFound *registry.NotFoundError
		var noMatch *version.NoCompatibleVersionError
		if errors.As(err, &notFound) || errors.As(err, &noMatch) {
			return append(findings, fmt.Sprintf("dependency %s: no release satisfies constraint %q", dep.Name, dep.Constraint)), nil
		}
		return nil, err
	}
	return findings, nil
}
