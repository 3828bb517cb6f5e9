// Package schemacheck evaluates documents against JSON Schema documents. It
// implements hatchval.SchemaChecker on top of santhosh-tekuri/jsonschema.
package schemacheck

import (
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	hatchval "github.com/crackingshells/hatchval"
)

// Checker compiles schema documents and reports violations as ordered
// strings. Compiled schemas are cached by their $id; a Checker is safe for
// concurrent use.
type Checker struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// New returns an empty checker.
func New() *Checker {
	return &Checker{compiled: map[string]*jsonschema.Schema{}}
}

// Check validates doc against schema. Violations come back as one string per
// failed assertion; the error return reports an unusable schema.
func (c *Checker) Check(doc hatchval.Document, schema map[string]any) ([]string, error) {
	compiled, err := c.compile(schema)
	if err != nil {
		return nil, err
	}
	err = compiled.Validate(map[string]any(doc))
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, err
	}
	var violations []string
	flatten(ve, &violations)
	return violations, nil
}

func (c *Checker) compile(schema map[string]any) (*jsonschema.Schema, error) {
	id, _ := schema["$id"].(string)
	if id == "" {
		id = "mem://anonymous/schema.json"
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if compiled, ok := c.compiled[id]; ok {
		return compiled, nil
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(id, map[string]any(schema)); err != nil {
		return nil, fmt.Errorf("register schema %s: %w", id, err)
	}
	compiled, err := compiler.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", id, err)
	}
	c.compiled[id] = compiled
	return compiled, nil
}

// flatten walks the cause tree and keeps leaf assertions, which carry the
// instance location in their rendered message.
func flatten(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		*out = append(*out, ve.Error())
		return
	}
	for _, cause := range ve.Causes {
		flatten(cause, out)
	}
}
