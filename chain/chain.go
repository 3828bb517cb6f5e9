// Package chain implements the version-delegation machinery shared by the
// validator, metadata-accessor and registry-accessor handler families.
//
// A Registry is an immutable, ordered catalog of handler constructors keyed
// by version. Build instantiates one handler per version from the requested
// target down to the oldest registered version and links each handler to its
// next-older predecessor, producing a singly linked chain whose head is the
// newest handler. Handlers answer the operations they override for their
// version and forward everything else down the chain; the oldest (terminal)
// handler must declare every operation of the family contract, which Build
// verifies before returning.
package chain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crackingshells/hatchval/version"
)

// Op names one operation of a handler family's contract.
type Op string

// OpSet is the set of operations a handler implements directly, as opposed
// to forwarding to its predecessor. Which operations a version declares is a
// structural fact about what changed in that version.
type OpSet map[Op]struct{}

// NewOpSet builds an OpSet from the given operations.
func NewOpSet(ops ...Op) OpSet {
	s := make(OpSet, len(ops))
	for _, op := range ops {
		s[op] = struct{}{}
	}
	return s
}

// Contains reports whether op is in the set.
func (s OpSet) Contains(op Op) bool {
	_, ok := s[op]
	return ok
}

// Missing returns the operations of contract absent from the set, in
// contract order.
func (s OpSet) Missing(contract []Op) []Op {
	var missing []Op
	for _, op := range contract {
		if !s.Contains(op) {
			missing = append(missing, op)
		}
	}
	return missing
}

// Handler is the shape every chain handler exposes regardless of family.
type Handler interface {
	// Version is the schema version this handler was registered for.
	Version() version.ID
	// CanHandle reports whether this handler answers for the given declared
	// version. It is a pure predicate with no side effects.
	CanHandle(v version.ID) bool
	// Declares lists the operations this handler implements directly.
	Declares() OpSet
}

// Descriptor pairs a version with the constructor for its handler. The
// constructor receives the next-older handler in the chain, or the family
// interface's nil value when the handler is terminal.
type Descriptor[H Handler] struct {
	Version version.ID
	New     func(next H) H
}

// UnknownVersionError reports a Build target absent from the registry.
type UnknownVersionError struct {
	Family  string
	Version version.ID
	Known   []version.ID
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("%s: unknown schema version %q (registered: %s)",
		e.Family, e.Version, strings.Join(version.Strings(e.Known), ", "))
}

// UnsupportedOperationError reports an operation that reached the end of a
// chain without any handler implementing it. Surfacing at Build time it is a
// configuration defect of the registry; surfacing at call time it means a
// chain was assembled outside Build without the terminal completeness check.
type UnsupportedOperationError struct {
	Family  string
	Version version.ID
	Op      Op
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s: operation %q not implemented by terminal handler %s", e.Family, e.Op, e.Version)
}

// Registry is an ordered, immutable catalog of handler descriptors for one
// family. It is safe for concurrent use once constructed.
type Registry[H Handler] struct {
	family   string
	contract []Op
	descs    []Descriptor[H] // newest to oldest
}

// NewRegistry assembles a registry from descriptors, ordering them newest to
// oldest. Duplicate versions and empty descriptor sets are rejected.
func NewRegistry[H Handler](family string, contract []Op, descs ...Descriptor[H]) (*Registry[H], error) {
	if len(descs) == 0 {
		return nil, fmt.Errorf("%s: registry needs at least one handler descriptor", family)
	}
	ordered := make([]Descriptor[H], len(descs))
	copy(ordered, descs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Version.Compare(ordered[j].Version) > 0
	})
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Version.Equal(ordered[i-1].Version) {
			return nil, fmt.Errorf("%s: duplicate descriptor for version %s", family, ordered[i].Version)
		}
	}
	return &Registry[H]{family: family, contract: append([]Op(nil), contract...), descs: ordered}, nil
}

// Family returns the family name the registry was constructed with.
func (r *Registry[H]) Family() string { return r.family }

// Contract returns the family's full operation set in canonical order.
func (r *Registry[H]) Contract() []Op { return append([]Op(nil), r.contract...) }

// Versions lists registered versions newest to oldest.
func (r *Registry[H]) Versions() []version.ID {
	out := make([]version.ID, len(r.descs))
	for i, d := range r.descs {
		out[i] = d.Version
	}
	return out
}

// Latest returns the newest registered version.
func (r *Registry[H]) Latest() version.ID { return r.descs[0].Version }

// Oldest returns the oldest registered version. It is the documented
// fallback for documents that declare no schema version.
func (r *Registry[H]) Oldest() version.ID { return r.descs[len(r.descs)-1].Version }

// Build instantiates the chain for target: one handler per registered
// version from target down to the oldest, each linked to its next-older
// predecessor. Versions newer than target are never instantiated. The head
// (newest) handler is returned.
//
// Build fails with UnknownVersionError when target is not registered, and
// with UnsupportedOperationError when the terminal handler does not declare
// the complete family contract. Construction is idempotent: two Build calls
// for the same target yield independent, behaviorally identical chains.
func (r *Registry[H]) Build(target version.ID) (H, error) {
	var zero H
	head := -1
	for i, d := range r.descs {
		if d.Version.Equal(target) {
			head = i
			break
		}
	}
	if head < 0 {
		return zero, &UnknownVersionError{Family: r.family, Version: target, Known: r.Versions()}
	}

	var next H
	for i := len(r.descs) - 1; i >= head; i-- {
		h := r.descs[i].New(next)
		if i == len(r.descs)-1 {
			if missing := h.Declares().Missing(r.contract); len(missing) > 0 {
				return zero, &UnsupportedOperationError{Family: r.family, Version: h.Version(), Op: missing[0]}
			}
		}
		next = h
	}
	return next, nil
}
