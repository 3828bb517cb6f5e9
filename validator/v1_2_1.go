package validator

import (
	"fmt"

	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/chain"
)

// validator121 overrides the concerns schema 1.2.1 changed: the document
// schema, the dual entry-point object and the tool uniqueness rule.
// Dependencies kept their 1.2.0 rules and forward down the chain.
type validator121 struct {
	core
	schema schemaStrategy
	entry  dualEntryPointStrategy
	tools  uniqueToolsStrategy
}

func newValidator121(deps Deps, next Validator) Validator {
	return &validator121{
		core:   core{version: v121, next: next, deps: deps},
		schema: schemaStrategy{version: v121, deps: deps},
	}
}

func (v *validator121) Declares() chain.OpSet {
	return chain.NewOpSet(OpValidate, OpSchema, OpEntryPoint, OpTools)
}

func (v *validator121) Strategies() []Strategy {
	return []Strategy{v.schema, v.entry, v.tools}
}

func (v *validator121) Validate(doc hatchval.Document, ctx *hatchval.ValidationContext) (hatchval.Outcome, error) {
	return runValidate(v, doc, ctx)
}

func (v *validator121) CheckSchema(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	return v.schema.Check(doc, ctx)
}

func (v *validator121) CheckEntryPoint(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	return v.entry.Check(doc, ctx)
}

func (v *validator121) CheckTools(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	return v.tools.Check(doc, ctx)
}

// dualEntryPointStrategy requires the 1.2.1 entry-point object with both the
// MCP server and its wrapper declared.
type dualEntryPointStrategy struct{}

func (dualEntryPointStrategy) Concern() hatchval.Concern { return hatchval.ConcernEntryPoint }

func (dualEntryPointStrategy) Check(doc hatchval.Document, _ *hatchval.ValidationContext) (bool, []string, error) {
	raw, present := doc["entry_point"]
	if !present {
		return false, []string{"entry_point is required"}, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return false, []string{"entry_point must be an object with mcp_server and hatch_mcp_server"}, nil
	}
	var findings []string
	if mcp, _ := obj["mcp_server"].(string); mcp == "" {
		findings = append(findings, "entry_point.mcp_server is required")
	}
	if wrapper, _ := obj["hatch_mcp_server"].(string); wrapper == "" {
		findings = append(findings, "entry_point.hatch_mcp_server is required")
	}
	return len(findings) == 0, findings, nil
}

// uniqueToolsStrategy keeps the 1.1.0 per-entry rules and additionally
// rejects duplicate tool names.
type uniqueToolsStrategy struct{}

func (uniqueToolsStrategy) Concern() hatchval.Concern { return hatchval.ConcernTools }

func (uniqueToolsStrategy) Check(doc hatchval.Document, ctx *hatchval.ValidationContext) (bool, []string, error) {
	valid, findings, err := toolsStrategy{}.Check(doc, ctx)
	if err != nil {
		return false, nil, err
	}
	seen := map[string]bool{}
	for i, raw := range doc.Slice("tools") {
		tool, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := tool["name"].(string)
		if name == "" {
			continue
		}
		if seen[name] {
			findings = append(findings, fmt.Sprintf("tools[%d]: duplicate tool name %q", i, name))
			valid = false
		}
		seen[name] = true
	}
	return valid && len(findings) == 0, findings, nil
}
