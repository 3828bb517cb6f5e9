// Package validator implements package-metadata validation as a chain of
// version-specific validators. Each validator owns strategies only for the
// concerns whose rules changed in its schema version and forwards the rest
// to the next-older validator; the 1.1.0 validator is terminal and covers
// the full contract.
package validator

import (
	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/chain"
	"github.com/crackingshells/hatchval/version"
)

// Operations of the validator family contract.
const (
	OpValidate     chain.Op = "validate"
	OpSchema       chain.Op = "schema"
	OpDependencies chain.Op = "dependencies"
	OpEntryPoint   chain.Op = "entry_point"
	OpTools        chain.Op = "tools"
)

// Contract returns the validator family's full operation set.
func Contract() []chain.Op {
	return []chain.Op{OpValidate, OpSchema, OpDependencies, OpEntryPoint, OpTools}
}

// Deps are the capabilities validators draw on. Both are required.
type Deps struct {
	Provider hatchval.SchemaProvider
	Checker  hatchval.SchemaChecker
}

// Validator validates documents for one schema version. Check methods
// return (valid, findings, err): findings are problems with the document,
// err is reserved for failures of the validation machinery itself and
// aborts the call.
type Validator interface {
	chain.Handler

	// Validate runs every concern against doc and aggregates the outcome.
	// A failing concern never suppresses later concerns.
	Validate(doc hatchval.Document, ctx *hatchval.ValidationContext) (hatchval.Outcome, error)

	CheckSchema(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error)
	CheckDependencies(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error)
	CheckEntryPoint(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error)
	CheckTools(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error)

	// Strategies lists the concern strategies this version owns directly.
	Strategies() []Strategy
}

// NewRegistry catalogs every supported validator version, newest to oldest.
func NewRegistry(deps Deps) (*chain.Registry[Validator], error) {
	return chain.NewRegistry("package-validator", Contract(),
		chain.Descriptor[Validator]{Version: v121, New: func(next Validator) Validator { return newValidator121(deps, next) }},
		chain.Descriptor[Validator]{Version: v120, New: func(next Validator) Validator { return newValidator120(deps, next) }},
		chain.Descriptor[Validator]{Version: v110, New: func(next Validator) Validator { return newValidator110(deps, next) }},
	)
}

var (
	v110 = version.MustParse("1.1.0")
	v120 = version.MustParse("1.2.0")
	v121 = version.MustParse("1.2.1")
)

// core carries the predecessor link and default forwarding shared by all
// validator versions.
type core struct {
	version version.ID
	next    Validator
	deps    Deps
}

func (c *core) Version() version.ID         { return c.version }
func (c *core) CanHandle(v version.ID) bool { return c.version.Equal(v) }
func (c *core) unsupported(op chain.Op) error {
	return &chain.UnsupportedOperationError{Family: "package-validator", Version: c.version, Op: op}
}

func (c *core) CheckSchema(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	if c.next != nil {
		return c.next.CheckSchema(doc, ctx)
	}
	return false, nil, c.unsupported(OpSchema)
}

func (c *core) CheckDependencies(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	if c.next != nil {
		return c.next.CheckDependencies(doc, ctx)
	}
	return false, nil, c.unsupported(OpDependencies)
}

func (c *core) CheckEntryPoint(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	if c.next != nil {
		return c.next.CheckEntryPoint(doc, ctx)
	}
	return false, nil, c.unsupported(OpEntryPoint)
}

func (c *core) CheckTools(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	if c.next != nil {
		return c.next.CheckTools(doc, ctx)
	}
	return false, nil, c.unsupported(OpTools)
}

// runValidate is the Validate body shared by every version: resolve the
// version to validate against, route to the owning validator, then run every
// concern in canonical order. Concern findings accumulate; a machinery error
// aborts immediately.
func runValidate(self Validator, doc hatchval.Document, ctx *hatchval.ValidationContext) (hatchval.Outcome, error) {
	if ctx == nil {
		ctx = &hatchval.ValidationContext{}
	}
	declared, present, err := doc.DeclaredVersion()
	if err != nil {
		return hatchval.Outcome{}, err
	}
	if !present {
		declared = ctx.FallbackVersion
		if declared.IsZero() {
			outcome := hatchval.NewOutcome()
			outcome.Set(hatchval.ConcernSchema, false,
				[]string{"document declares no " + hatchval.FieldPackageSchemaVersion + " and no fallback version is configured"})
			return outcome, nil
		}
	}
	if !self.CanHandle(declared) {
		if next := nextOf(self); next != nil {
			return next.Validate(doc, ctx)
		}
		outcome := hatchval.NewOutcome()
		outcome.Set(hatchval.ConcernSchema, false,
			[]string{"schema version " + declared.String() + " is not handled by this validation chain"})
		return outcome, nil
	}

	type check func(hatchval.Document, *hatchval.ValidationContext) (bool, []string, error)
	concerns := []struct {
		concern hatchval.Concern
		run     check
	}{
		{hatchval.ConcernSchema, self.CheckSchema},
		{hatchval.ConcernDependencies, self.CheckDependencies},
		{hatchval.ConcernEntryPoint, self.CheckEntryPoint},
		{hatchval.ConcernTools, self.CheckTools},
	}
	outcome := hatchval.NewOutcome()
	for _, c := range concerns {
		valid, findings, err := c.run(doc, ctx)
		if err != nil {
			return hatchval.Outcome{}, err
		}
		outcome.Set(c.concern, valid, findings)
	}
	return outcome, nil
}

// nextOf exposes the predecessor link for runValidate's routing.
func nextOf(v Validator) Validator {
	type linked interface{ nextValidator() Validator }
	if l, ok := v.(linked); ok {
		return l.nextValidator()
	}
	return nil
}

func (c *core) nextValidator() Validator { return c.next }

// source adapts a validator registry to hatchval.ValidatorSource.
type source struct {
	reg *chain.Registry[Validator]
}

// NewSource wires the default validator registry into a form the
// orchestrator consumes.
func NewSource(deps Deps) (hatchval.ValidatorSource, error) {
	reg, err := NewRegistry(deps)
	if err != nil {
		return nil, err
	}
	return &source{reg: reg}, nil
}

func (s *source) Build(target version.ID) (hatchval.DocumentValidator, error) {
	head, err := s.reg.Build(target)
	if err != nil {
		return nil, err
	}
	return head, nil
}

func (s *source) SupportedVersions() []version.ID { return s.reg.Versions() }
