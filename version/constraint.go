package version

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Constraint is a parsed version-range expression such as ">=1.0.0" or
// "^2.1". Constraints are stateless once parsed and safe to reuse across
// concurrent resolution calls.
type Constraint struct {
	raw  string
	spec *semver.Constraints
}

// NoCompatibleVersionError reports that no candidate satisfied a constraint.
type NoCompatibleVersionError struct {
	Constraint string
	Candidates []string
}

func (e *NoCompatibleVersionError) Error() string {
	return fmt.Sprintf("no version satisfying %q among candidates [%s]",
		e.Constraint, strings.Join(e.Candidates, ", "))
}

// ParseConstraint parses a range expression. Malformed expressions fail with
// InvalidFormatError.
func ParseConstraint(s string) (Constraint, error) {
	spec, err := semver.NewConstraint(s)
	if err != nil {
		return Constraint{}, &InvalidFormatError{Input: s, Kind: "constraint", Err: err}
	}
	return Constraint{raw: s, spec: spec}, nil
}

// MustParseConstraint is ParseConstraint for trusted literals.
func MustParseConstraint(s string) Constraint {
	c, err := ParseConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsZero reports whether the constraint is the unparsed zero value.
func (c Constraint) IsZero() bool { return c.spec == nil }

// String returns the original expression.
func (c Constraint) String() string { return c.raw }

// Check reports whether v satisfies the constraint.
func (c Constraint) Check(v ID) bool {
	if c.spec == nil || v.v == nil {
		return false
	}
	return c.spec.Check(v.v)
}

// FindCompatible returns the highest candidate satisfying the constraint.
// When no candidate satisfies it the call fails with
// NoCompatibleVersionError naming the constraint and the full candidate set.
func FindCompatible(candidates []ID, c Constraint) (ID, error) {
	best := ID{}
	for _, cand := range candidates {
		if !c.Check(cand) {
			continue
		}
		if best.IsZero() || cand.Compare(best) > 0 {
			best = cand
		}
	}
	if best.IsZero() {
		return ID{}, &NoCompatibleVersionError{Constraint: c.String(), Candidates: Strings(candidates)}
	}
	return best, nil
}

// Highest returns the newest version in candidates, or a zero ID for an
// empty set.
func Highest(candidates []ID) ID {
	best := ID{}
	for _, cand := range candidates {
		if best.IsZero() || cand.Compare(best) > 0 {
			best = cand
		}
	}
	return best
}

var embeddedVersions = regexp.MustCompile(`\d+(?:\.\d+){0,2}`)

// Overlaps reports whether two constraints admit at least one common
// version. The check is probe-based: it samples the versions embedded in
// both expressions together with nearby bumps, which covers the interval
// arithmetic used by package constraints in practice.
func Overlaps(a, b Constraint) bool {
	if a.spec == nil || b.spec == nil {
		return false
	}
	for _, probe := range overlapProbes(a.raw, b.raw) {
		if a.Check(probe) && b.Check(probe) {
			return true
		}
	}
	return false
}

func overlapProbes(raws ...string) []ID {
	seen := map[string]bool{}
	var probes []ID
	add := func(s string) {
		if seen[s] {
			return
		}
		seen[s] = true
		if id, err := Parse(s); err == nil {
			probes = append(probes, id)
		}
	}
	for _, raw := range raws {
		for _, m := range embeddedVersions.FindAllString(raw, -1) {
			// Pad partial versions to full triples.
			switch strings.Count(m, ".") {
			case 0:
				m += ".0.0"
			case 1:
				m += ".0"
			}
			add(m)
			if id, err := Parse(m); err == nil {
				add(fmt.Sprintf("%d.%d.%d", id.Major(), id.Minor(), id.Patch()+1))
				add(fmt.Sprintf("%d.%d.%d", id.Major(), id.Minor()+1, 0))
				add(fmt.Sprintf("%d.%d.%d", id.Major()+1, 0, 0))
			}
		}
	}
	for _, common := range []string{"0.0.1", "1.0.0", "2.0.0", "10.0.0"} {
		add(common)
	}
	return probes
}
