// Package hatchval validates package-metadata and registry-index documents
// against one of several historical schema versions behind a single,
// version-independent API.
//
// - Documents carry their schema version in package_schema_version (or
//   registry_schema_version for registry snapshots); callers never branch on
//   version strings.
// - Version-specific behavior lives in handler chains (see chain/): one
//   handler per version, newest to oldest, each overriding only what changed
//   in its version and forwarding everything else to its predecessor.
// - Validation concerns (schema, dependencies, entry_point, tools) are
//   composed into per-version validators as strategies (see validator/).
// - The Orchestrator is the top-level entry point: it detects a document's
//   declared version, builds (and caches) the validator chain for it, and
//   aggregates per-concern results into one Outcome.
//
// Design policy:
// - Keep only public API and shared data types in the root package; handler
//   families live in their own subpackages, the CLI under cmd/hatchval.
// - The library never logs; it returns structured results and typed errors,
//   leaving presentation to callers.
// - Structural errors (unknown version, incomplete chain, malformed version
//   strings) abort a call; data-quality findings are collected into the
//   Outcome so one bad concern never hides another.
//
// Typical usage:
//
//	src, err := validator.NewSource(validator.Deps{Provider: schemaprov.New(), Checker: schemacheck.New()})
//	orch, err := hatchval.NewOrchestrator(src)
//	outcome, err := orch.ValidatePackage(doc, &hatchval.ValidationContext{Registry: snapshot})
package hatchval
