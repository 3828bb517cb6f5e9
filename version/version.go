// Package version provides parsing, ordering and constraint matching for
// the schema and package versions used throughout hatchval.
//
// A version is a strict major.minor.patch triple. A leading "v" marker is
// accepted on input and stripped during normalization, so "v1.2.0" and
// "1.2.0" denote the same ID.
package version

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ID is a parsed, normalized version identifier. The zero value is not a
// valid version; use Parse or MustParse to obtain one.
type ID struct {
	v *semver.Version
}

// InvalidFormatError reports a version or constraint string that could not
// be parsed.
type InvalidFormatError struct {
	Input string
	Kind  string // "version" or "constraint"
	Err   error
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid %s format %q: %v", e.Kind, e.Input, e.Err)
}

func (e *InvalidFormatError) Unwrap() error { return e.Err }

// Parse parses a strict major.minor.patch version string, tolerating a
// single leading "v" marker.
func Parse(s string) (ID, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "v")
	v, err := semver.StrictNewVersion(trimmed)
	if err != nil {
		return ID{}, &InvalidFormatError{Input: s, Kind: "version", Err: err}
	}
	return ID{v: v}, nil
}

// MustParse is Parse for trusted literals; it panics on malformed input.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether the ID is the unparsed zero value.
func (id ID) IsZero() bool { return id.v == nil }

// String renders the normalized form without any leading marker.
func (id ID) String() string {
	if id.v == nil {
		return ""
	}
	return id.v.String()
}

// Major returns the major component.
func (id ID) Major() uint64 { return id.v.Major() }

// Minor returns the minor component.
func (id ID) Minor() uint64 { return id.v.Minor() }

// Patch returns the patch component.
func (id ID) Patch() uint64 { return id.v.Patch() }

// Compare orders two IDs: -1 when id < other, 0 when equal, +1 when greater.
// A zero ID orders before every parsed version.
func (id ID) Compare(other ID) int {
	switch {
	case id.v == nil && other.v == nil:
		return 0
	case id.v == nil:
		return -1
	case other.v == nil:
		return 1
	}
	return id.v.Compare(other.v)
}

// Equal reports whether two IDs denote the same version.
func (id ID) Equal(other ID) bool { return id.Compare(other) == 0 }

// SortDescending orders ids in place from newest to oldest.
func SortDescending(ids []ID) {
	sort.SliceStable(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) > 0 })
}

// SortAscending orders ids in place from oldest to newest.
func SortAscending(ids []ID) {
	sort.SliceStable(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
}

// Strings renders a slice of IDs, preserving order.
func Strings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// ParseAll parses every element of raw, failing on the first malformed entry.
func ParseAll(raw []string) ([]ID, error) {
	ids := make([]ID, 0, len(raw))
	for _, s := range raw {
		id, err := Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
