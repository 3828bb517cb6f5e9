package pkgmeta

import (
	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/chain"
)

// accessor120 covers schema 1.2.0, which unified the split dependency
// arrays into one dependencies object with hatch, python, system and docker
// categories and dropped the per-dependency resolution marker. Everything
// else forwards to 1.1.0.
type accessor120 struct {
	core
}

func newAccessor120(next Accessor) Accessor {
	return &accessor120{core: core{version: v120, next: next}}
}

func (a *accessor120) Declares() chain.OpSet {
	return chain.NewOpSet(OpDependencies, OpLocalDependency)
}

func (a *accessor120) Dependencies(doc hatchval.Document) (hatchval.DependencyView, error) {
	return DecodeUnifiedDependencies(doc), nil
}

// IsLocalDependency is always false from 1.2.0 on: the schema dropped the
// resolution-type marker, so descriptors carry no local signal.
func (a *accessor120) IsLocalDependency(dep hatchval.Dependency) (bool, error) {
	return false, nil
}
