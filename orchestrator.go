package hatchval

import (
	"fmt"

	gocache "github.com/patrickmn/go-cache"

	"github.com/crackingshells/hatchval/version"
)

// DocumentValidator is the head of a validator chain: it validates a whole
// document against the version it was built for, delegating down the chain
// as needed.
type DocumentValidator interface {
	Validate(doc Document, ctx *ValidationContext) (Outcome, error)
}

// ValidatorSource builds validator chains per target version. The validator
// subpackage provides the canonical implementation; tests may substitute
// their own.
type ValidatorSource interface {
	// Build returns the chain head for target, or a chain.UnknownVersionError
	// when target is not registered.
	Build(target version.ID) (DocumentValidator, error)
	// SupportedVersions lists registered versions newest to oldest.
	SupportedVersions() []version.ID
}

// Orchestrator is the top-level validation entry point. It is safe for
// concurrent use: built chains are immutable and per-call state lives in
// the caller's ValidationContext.
type Orchestrator struct {
	source         ValidatorSource
	defaultVersion version.ID
	chains         *gocache.Cache
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithDefaultVersion overrides the fallback used for documents that declare
// no schema version. The default policy is the oldest supported version.
func WithDefaultVersion(v version.ID) OrchestratorOption {
	return func(o *Orchestrator) { o.defaultVersion = v }
}

// NewOrchestrator wires an orchestrator over a validator source. Chains are
// cached per version; a chain is a pure function of (version, registry
// contents) and never expires.
func NewOrchestrator(source ValidatorSource, opts ...OrchestratorOption) (*Orchestrator, error) {
	versions := source.SupportedVersions()
	if len(versions) == 0 {
		return nil, fmt.Errorf("validator source supports no versions")
	}
	o := &Orchestrator{
		source:         source,
		defaultVersion: versions[len(versions)-1],
		chains:         gocache.New(gocache.NoExpiration, 0),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// DefaultVersion is the documented fallback applied when a document declares
// no package_schema_version.
func (o *Orchestrator) DefaultVersion() version.ID { return o.defaultVersion }

// ValidatePackage validates one package-metadata document.
//
// The declared version is read from package_schema_version; a document
// without one is validated against DefaultVersion rather than rejected. A
// present but malformed version, an unregistered version, and an incomplete
// chain abort the call with a typed error; everything the document itself
// gets wrong lands in the returned Outcome.
func (o *Orchestrator) ValidatePackage(doc Document, ctx *ValidationContext) (Outcome, error) {
	declared, present, err := doc.DeclaredVersion()
	if err != nil {
		return Outcome{}, err
	}
	if !present {
		declared = o.defaultVersion
	}

	head, err := o.chainFor(declared)
	if err != nil {
		return Outcome{}, err
	}

	if ctx == nil {
		ctx = &ValidationContext{}
	}
	if ctx.FallbackVersion.IsZero() {
		ctx.FallbackVersion = o.defaultVersion
	}
	return head.Validate(doc, ctx)
}

func (o *Orchestrator) chainFor(v version.ID) (DocumentValidator, error) {
	key := v.String()
	if cached, ok := o.chains.Get(key); ok {
		return cached.(DocumentValidator), nil
	}
	head, err := o.source.Build(v)
	if err != nil {
		return nil, err
	}
	o.chains.SetDefault(key, head)
	return head, nil
}
