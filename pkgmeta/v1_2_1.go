package pkgmeta

import (
	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/chain"
)

// accessor121 covers schema 1.2.1, which replaced the string entry point
// with a dual object: mcp_server (the MCP server file) and hatch_mcp_server
// (the wrapper). Dependencies are unchanged from 1.2.0 and forward.
type accessor121 struct {
	core
}

func newAccessor121(next Accessor) Accessor {
	return &accessor121{core: core{version: v121, next: next}}
}

func (a *accessor121) Declares() chain.OpSet {
	return chain.NewOpSet(OpEntryPoint, OpMCPEntryPoint, OpHatchMCPEntryPoint)
}

// EntryPoint returns the MCP server file; from 1.2.1 the primary entry
// point and the MCP entry point are the same field.
func (a *accessor121) EntryPoint(doc hatchval.Document) (string, error) {
	ep := doc.Map("entry_point")
	s, _ := ep["mcp_server"].(string)
	return s, nil
}

func (a *accessor121) MCPEntryPoint(doc hatchval.Document) (string, error) {
	return a.EntryPoint(doc)
}

func (a *accessor121) HatchMCPEntryPoint(doc hatchval.Document) (string, error) {
	ep := doc.Map("entry_point")
	s, _ := ep["hatch_mcp_server"].(string)
	return s, nil
}
