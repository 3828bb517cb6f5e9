package hatchval

import (
	"fmt"

	"github.com/crackingshells/hatchval/version"
)

// SchemaKind selects which schema family a provider is asked for.
type SchemaKind string

const (
	SchemaKindPackage  SchemaKind = "package"
	SchemaKindRegistry SchemaKind = "registry"
)

// SchemaProvider supplies the schema document for a (kind, version) pair.
// Fetching and caching schema documents is the provider's business; the
// core only consumes already-resolved documents.
type SchemaProvider interface {
	GetSchema(kind SchemaKind, v version.ID) (map[string]any, error)
}

// SchemaChecker evaluates a document against a schema document and returns
// the ordered list of violations. An empty list means the document conforms.
// The error return is reserved for evaluation failures (unusable schema),
// not for document violations.
type SchemaChecker interface {
	Check(doc Document, schema map[string]any) ([]string, error)
}

// SchemaUnavailableError reports that a provider could not supply the schema
// for a (kind, version) pair. The core propagates it without retrying.
type SchemaUnavailableError struct {
	Kind    SchemaKind
	Version version.ID
	Err     error
}

func (e *SchemaUnavailableError) Error() string {
	return fmt.Sprintf("%s schema %s unavailable: %v", e.Kind, e.Version, e.Err)
}

func (e *SchemaUnavailableError) Unwrap() error { return e.Err }
