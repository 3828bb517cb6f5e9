package hatchval

import (
	"github.com/crackingshells/hatchval/version"
)

// Document is a decoded metadata or registry document. The library treats
// documents as read-only: no handler or strategy mutates an input document.
type Document map[string]any

// Version-detection fields. These are the sole version signals; a document
// missing its field falls back to the orchestrator's documented default.
const (
	FieldPackageSchemaVersion  = "package_schema_version"
	FieldRegistrySchemaVersion = "registry_schema_version"
)

// DeclaredVersion extracts and parses the document's declared package schema
// version. The second return is false when the field is absent or empty;
// a present but malformed value fails with version.InvalidFormatError.
func (d Document) DeclaredVersion() (version.ID, bool, error) {
	return d.declaredVersion(FieldPackageSchemaVersion)
}

// DeclaredRegistryVersion is DeclaredVersion for registry snapshots.
func (d Document) DeclaredRegistryVersion() (version.ID, bool, error) {
	return d.declaredVersion(FieldRegistrySchemaVersion)
}

func (d Document) declaredVersion(field string) (version.ID, bool, error) {
	raw, ok := d[field]
	if !ok {
		return version.ID{}, false, nil
	}
	s, _ := raw.(string)
	if s == "" {
		return version.ID{}, false, nil
	}
	id, err := version.Parse(s)
	if err != nil {
		return version.ID{}, true, err
	}
	return id, true, nil
}

// String returns the value of key when it is a string, and "" otherwise.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Map returns the value of key when it is an object, and nil otherwise.
func (d Document) Map(key string) map[string]any {
	m, _ := d[key].(map[string]any)
	return m
}

// Slice returns the value of key when it is an array, and nil otherwise.
func (d Document) Slice(key string) []any {
	s, _ := d[key].([]any)
	return s
}

// Has reports whether key is present.
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}
