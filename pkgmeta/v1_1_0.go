package pkgmeta

import (
	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/chain"
)

// accessor110 is the terminal accessor. Schema 1.1.0 keeps dependencies in
// the split hatch_dependencies/python_dependencies arrays and a single
// string entry point; as the end of every chain it implements the complete
// family contract.
type accessor110 struct {
	core
}

func newAccessor110(next Accessor) Accessor {
	return &accessor110{core: core{version: v110, next: next}}
}

func (a *accessor110) Declares() chain.OpSet {
	return chain.NewOpSet(Contract()...)
}

func (a *accessor110) Dependencies(doc hatchval.Document) (hatchval.DependencyView, error) {
	return DecodeLegacyDependencies(doc), nil
}

func (a *accessor110) EntryPoint(doc hatchval.Document) (string, error) {
	return doc.String("entry_point"), nil
}

// MCPEntryPoint returns the single entry point: 1.1.0 predates the
// server/wrapper split, so the one file plays both roles.
func (a *accessor110) MCPEntryPoint(doc hatchval.Document) (string, error) {
	return a.EntryPoint(doc)
}

// HatchMCPEntryPoint correctly declines: there is no wrapper concept in
// 1.1.0. This is valid data, not a missing operation.
func (a *accessor110) HatchMCPEntryPoint(doc hatchval.Document) (string, error) {
	return "", nil
}

func (a *accessor110) Tools(doc hatchval.Document) ([]hatchval.Tool, error) {
	raw := doc.Slice("tools")
	tools := make([]hatchval.Tool, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		desc, _ := entry["description"].(string)
		tools = append(tools, hatchval.Tool{Name: name, Description: desc})
	}
	return tools, nil
}

func (a *accessor110) IsLocalDependency(dep hatchval.Dependency) (bool, error) {
	return dep.IsLocal(), nil
}

// metadataFields is the set of top-level fields the 1.1.0 shape defines.
var metadataFields = map[string]bool{
	"name": true, "version": true, "description": true, "tags": true,
	"author": true, "contributors": true, "license": true,
	"repository": true, "documentation": true, "compatibility": true,
	"citations": true, hatchval.FieldPackageSchemaVersion: true,
}

func (a *accessor110) Get(doc hatchval.Document, field string) (any, error) {
	if !metadataFields[field] {
		return nil, a.unsupported(chain.Op("field:" + field))
	}
	return doc[field], nil
}
