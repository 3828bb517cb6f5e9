// Package schemaprov supplies the schema documents for every supported
// (kind, version) pair. Schemas ship embedded in the binary, so providers
// need no network or filesystem access at validation time.
package schemaprov

import (
	"embed"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/version"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Provider implements hatchval.SchemaProvider over the embedded schema set.
// Decoded schemas are cached; a Provider is safe for concurrent use.
type Provider struct {
	mu    sync.Mutex
	cache map[string]map[string]any
}

// New returns a provider over the embedded schemas.
func New() *Provider {
	return &Provider{cache: map[string]map[string]any{}}
}

// GetSchema returns the schema document for (kind, v). Unknown pairs fail
// with hatchval.SchemaUnavailableError.
func (p *Provider) GetSchema(kind hatchval.SchemaKind, v version.ID) (map[string]any, error) {
	key := fmt.Sprintf("schemas/%s-%s.json", kind, v)

	p.mu.Lock()
	defer p.mu.Unlock()
	if schema, ok := p.cache[key]; ok {
		return schema, nil
	}

	raw, err := schemaFS.ReadFile(key)
	if err != nil {
		return nil, &hatchval.SchemaUnavailableError{Kind: kind, Version: v, Err: err}
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, &hatchval.SchemaUnavailableError{Kind: kind, Version: v, Err: err}
	}
	p.cache[key] = schema
	return schema, nil
}
