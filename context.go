package hatchval

import "github.com/crackingshells/hatchval/version"

// ValidationContext carries request-scoped state through one validation
// call. A context is owned by exactly one call: concurrent callers each
// allocate their own, and a context is discarded when the call returns.
type ValidationContext struct {
	// Registry is an optional registry snapshot used by dependency
	// strategies for existence and constraint checks. Nil disables
	// registry-backed checks and is reported as a dependency finding.
	Registry Document

	// AllowLocalDependencies permits locally-resolved (filesystem)
	// dependencies. When false, local dependencies are validation errors.
	AllowLocalDependencies bool

	// FallbackVersion is the version validated against when the document
	// declares none. The orchestrator sets it to its configured default;
	// callers driving a chain directly may set it themselves.
	FallbackVersion version.ID

	data map[string]any
}

// SetData stores auxiliary state shared between strategies within this call.
func (c *ValidationContext) SetData(key string, value any) {
	if c.data == nil {
		c.data = make(map[string]any)
	}
	c.data[key] = value
}

// Data retrieves auxiliary state stored with SetData.
func (c *ValidationContext) Data(key string) (any, bool) {
	v, ok := c.data[key]
	return v, ok
}
