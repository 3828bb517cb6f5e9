package validator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/schemacheck"
	"github.com/crackingshells/hatchval/schemaprov"
	"github.com/crackingshells/hatchval/validator"
	"github.com/crackingshells/hatchval/version"
)

func newDeps() validator.Deps {
	return validator.Deps{Provider: schemaprov.New(), Checker: schemacheck.New()}
}

func buildValidator(t *testing.T, target string) validator.Validator {
	t.Helper()
	reg, err := validator.NewRegistry(newDeps())
	require.NoError(t, err)
	head, err := reg.Build(version.MustParse(target))
	require.NoError(t, err)
	return head
}

func doc110() hatchval.Document {
	return hatchval.Document{
		"package_schema_version": "1.1.0",
		"name":                   "weather-tools",
		"version":                "0.1.0",
		"entry_point":            "server.py",
		"hatch_dependencies": []any{
			map[string]any{"name": "base-pkg", "version_constraint": ">=1.0.0"},
		},
		"python_dependencies": []any{
			map[string]any{"name": "requests", "version_constraint": ">=2.0.0"},
		},
		"tools": []any{
			map[string]any{"name": "get_forecast", "description": "Fetch a forecast"},
		},
	}
}

func doc120() hatchval.Document {
	return hatchval.Document{
		"package_schema_version": "1.2.0",
		"name":                   "weather-tools",
		"version":                "0.2.0",
		"entry_point":            "server.py",
		"dependencies": map[string]any{
			"python": []any{
				map[string]any{"name": "requests", "version_constraint": ">=2.0.0"},
			},
		},
	}
}

func doc121() hatchval.Document {
	return hatchval.Document{
		"package_schema_version": "1.2.1",
		"name":                   "weather-tools",
		"version":                "0.3.0",
		"entry_point": map[string]any{
			"mcp_server":       "server.py",
			"hatch_mcp_server": "wrapper.py",
		},
		"dependencies": map[string]any{},
		"tools": []any{
			map[string]any{"name": "get_forecast", "description": "Fetch a forecast"},
			map[string]any{"name": "get_alerts", "description": "Fetch alerts"},
		},
	}
}

func snapshot() hatchval.Document {
	return hatchval.Document{
		"registry_schema_version": "1.1.0",
		"repositories": []any{
			map[string]any{
				"name": "main",
				"packages": []any{
					map[string]any{
						"name": "base-pkg",
						"versions": []any{
							map[string]any{"version": "1.0.0"},
							map[string]any{"version": "1.4.0"},
						},
					},
				},
			},
		},
	}
}

func TestValidDocumentsPerVersion(t *testing.T) {
	cases := []struct {
		target string
		doc    hatchval.Document
		ctx    *hatchval.ValidationContext
	}{
		{"1.1.0", doc110(), &hatchval.ValidationContext{Registry: snapshot()}},
		{"1.2.0", doc120(), &hatchval.ValidationContext{}},
		{"1.2.1", doc121(), &hatchval.ValidationContext{}},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			head := buildValidator(t, tc.target)
			outcome, err := head.Validate(tc.doc, tc.ctx)
			require.NoError(t, err)
			require.True(t, outcome.OK, "findings: %v", outcome.AllErrors())
			require.Len(t, outcome.Concerns, 4, "every concern must be reported")
		})
	}
}

func TestSchemaViolationDoesNotShortCircuit(t *testing.T) {
	head := buildValidator(t, "1.1.0")
	doc := doc110()
	delete(doc, "version") // schema violation
	doc["tools"] = []any{map[string]any{"name": "get_forecast"}}

	outcome, err := head.Validate(doc, &hatchval.ValidationContext{})
	require.NoError(t, err)
	require.False(t, outcome.OK)
	require.False(t, outcome.Concerns[hatchval.ConcernSchema].Valid)
	// Later concerns still ran and reported their own findings.
	require.False(t, outcome.Concerns[hatchval.ConcernTools].Valid)
	require.True(t, outcome.Concerns[hatchval.ConcernEntryPoint].Valid)
}

func TestLocalDependencyPolicy(t *testing.T) {
	doc := doc110()
	doc["hatch_dependencies"] = []any{
		map[string]any{
			"name": "local-pkg",
			"type": map[string]any{"type": "local", "uri": "file:///tmp/local-pkg"},
		},
	}
	head := buildValidator(t, "1.1.0")

	outcome, err := head.Validate(doc, &hatchval.ValidationContext{AllowLocalDependencies: false})
	require.NoError(t, err)
	require.False(t, outcome.Concerns[hatchval.ConcernDependencies].Valid)

	outcome, err = head.Validate(doc, &hatchval.ValidationContext{AllowLocalDependencies: true})
	require.NoError(t, err)
	require.True(t, outcome.OK, "findings: %v", outcome.AllErrors())
}

func TestRegistryBackedDependencyChecks(t *testing.T) {
	head := buildValidator(t, "1.1.0")

	t.Run("unknown package", func(t *testing.T) {
		doc := doc110()
		doc["hatch_dependencies"] = []any{
			map[string]any{"name": "missing-pkg", "version_constraint": ">=1.0.0"},
		}
		outcome, err := head.Validate(doc, &hatchval.ValidationContext{Registry: snapshot()})
		require.NoError(t, err)
		res := outcome.Concerns[hatchval.ConcernDependencies]
		require.False(t, res.Valid)
		require.Contains(t, res.Errors[0], "not found in registry")
	})

	t.Run("unsatisfiable constraint", func(t *testing.T) {
		doc := doc110()
		doc["hatch_dependencies"] = []any{
			map[string]any{"name": "base-pkg", "version_constraint": ">=9.0.0"},
		}
		outcome, err := head.Validate(doc, &hatchval.ValidationContext{Registry: snapshot()})
		require.NoError(t, err)
		res := outcome.Concerns[hatchval.ConcernDependencies]
		require.False(t, res.Valid)
		require.Contains(t, res.Errors[0], "no release satisfies")
	})

	t.Run("conflicting duplicate entries", func(t *testing.T) {
		doc := doc110()
		doc["hatch_dependencies"] = []any{
			map[string]any{"name": "base-pkg", "version_constraint": "^1.0.0"},
			map[string]any{"name": "base-pkg", "version_constraint": "^2.0.0"},
		}
		outcome, err := head.Validate(doc, &hatchval.ValidationContext{})
		require.NoError(t, err)
		res := outcome.Concerns[hatchval.ConcernDependencies]
		require.False(t, res.Valid)
		require.Contains(t, res.Errors[0], "conflicting constraints")
	})

	t.Run("malformed constraint", func(t *testing.T) {
		doc := doc110()
		doc["hatch_dependencies"] = []any{
			map[string]any{"name": "base-pkg", "version_constraint": "not-a-range"},
		}
		outcome, err := head.Validate(doc, &hatchval.ValidationContext{Registry: snapshot()})
		require.NoError(t, err)
		res := outcome.Concerns[hatchval.ConcernDependencies]
		require.False(t, res.Valid)
		require.Contains(t, res.Errors[0], "invalid version constraint")
	})
}

func TestUnifiedDependenciesRequireRegistry(t *testing.T) {
	doc := doc120()
	doc["dependencies"] = map[string]any{
		"hatch": []any{map[string]any{"name": "base-pkg", "version_constraint": ">=1.0.0"}},
	}
	head := buildValidator(t, "1.2.0")

	outcome, err := head.Validate(doc, &hatchval.ValidationContext{})
	require.NoError(t, err)
	res := outcome.Concerns[hatchval.ConcernDependencies]
	require.False(t, res.Valid)
	require.Contains(t, res.Errors[0], "no registry data available")

	outcome, err = head.Validate(doc, &hatchval.ValidationContext{Registry: snapshot()})
	require.NoError(t, err)
	require.True(t, outcome.OK, "findings: %v", outcome.AllErrors())
}

func TestDependencyCycleFinding(t *testing.T) {
	// base-pkg's release depends back on weather-tools.
	snap := snapshot()
	repos := snap.Slice("repositories")
	repo := repos[0].(map[string]any)
	pkgs := repo["packages"].([]any)
	pkg := pkgs[0].(map[string]any)
	releases := pkg["versions"].([]any)
	release := releases[1].(map[string]any)
	release["hatch_dependencies_added"] = []any{
		map[string]any{"name": "weather-tools", "version_constraint": ">=0.1.0"},
	}

	doc := doc120()
	doc["dependencies"] = map[string]any{
		"hatch": []any{map[string]any{"name": "base-pkg", "version_constraint": ">=1.0.0"}},
	}
	head := buildValidator(t, "1.2.0")
	outcome, err := head.Validate(doc, &hatchval.ValidationContext{Registry: snap})
	require.NoError(t, err)
	res := outcome.Concerns[hatchval.ConcernDependencies]
	require.False(t, res.Valid)
	joined := strings.Join(res.Errors, "\n")
	require.Contains(t, joined, "circular dependency")
	require.Contains(t, joined, "weather-tools")
	require.Contains(t, joined, "base-pkg")
}

func TestCyclicBaseChainBecomesFinding(t *testing.T) {
	// base-pkg's releases name each other as base_version. Reconstructing
	// its dependencies during graph expansion must surface a finding, not
	// abort the call.
	snap := snapshot()
	repos := snap.Slice("repositories")
	repo := repos[0].(map[string]any)
	pkgs := repo["packages"].([]any)
	pkg := pkgs[0].(map[string]any)
	releases := pkg["versions"].([]any)
	releases[0].(map[string]any)["base_version"] = "1.4.0"
	releases[1].(map[string]any)["base_version"] = "1.0.0"

	doc := doc120()
	doc["dependencies"] = map[string]any{
		"hatch": []any{map[string]any{"name": "base-pkg", "version_constraint": ">=1.0.0"}},
	}
	head := buildValidator(t, "1.2.0")
	outcome, err := head.Validate(doc, &hatchval.ValidationContext{Registry: snap})
	require.NoError(t, err)
	res := outcome.Concerns[hatchval.ConcernDependencies]
	require.False(t, res.Valid)
	joined := strings.Join(res.Errors, "\n")
	require.Contains(t, joined, "registry data defect")
	require.Contains(t, joined, "cyclic base_version")
}

func TestDualEntryPointRules(t *testing.T) {
	head := buildValidator(t, "1.2.1")

	t.Run("string form rejected", func(t *testing.T) {
		doc := doc121()
		doc["entry_point"] = "server.py"
		outcome, err := head.Validate(doc, &hatchval.ValidationContext{})
		require.NoError(t, err)
		res := outcome.Concerns[hatchval.ConcernEntryPoint]
		require.False(t, res.Valid)
		require.Contains(t, res.Errors[0], "must be an object")
	})

	t.Run("wrapper required", func(t *testing.T) {
		doc := doc121()
		doc["entry_point"] = map[string]any{"mcp_server": "server.py"}
		outcome, err := head.Validate(doc, &hatchval.ValidationContext{})
		require.NoError(t, err)
		res := outcome.Concerns[hatchval.ConcernEntryPoint]
		require.False(t, res.Valid)
		require.Contains(t, strings.Join(res.Errors, "\n"), "hatch_mcp_server is required")
	})
}

func TestDuplicateToolNames(t *testing.T) {
	doc := doc121()
	doc["tools"] = []any{
		map[string]any{"name": "get_forecast", "description": "a"},
		map[string]any{"name": "get_forecast", "description": "b"},
	}
	head := buildValidator(t, "1.2.1")
	outcome, err := head.Validate(doc, &hatchval.ValidationContext{})
	require.NoError(t, err)
	res := outcome.Concerns[hatchval.ConcernTools]
	require.False(t, res.Valid)
	require.Contains(t, res.Errors[0], "duplicate tool name")
}

func TestValidateRoutesDeclaredVersionDownChain(t *testing.T) {
	// A 1.2.1 head receiving a 1.1.0 document must route the whole call to
	// the 1.1.0 validator, not apply 1.2.1 rules.
	head := buildValidator(t, "1.2.1")
	outcome, err := head.Validate(doc110(), &hatchval.ValidationContext{})
	require.NoError(t, err)
	require.True(t, outcome.OK, "findings: %v", outcome.AllErrors())
}

func TestMissingVersionUsesFallback(t *testing.T) {
	doc := doc110()
	delete(doc, "package_schema_version")
	head := buildValidator(t, "1.2.1")

	t.Run("no fallback configured", func(t *testing.T) {
		outcome, err := head.Validate(doc, &hatchval.ValidationContext{})
		require.NoError(t, err)
		require.False(t, outcome.OK)
		require.Contains(t, outcome.Concerns[hatchval.ConcernSchema].Errors[0], "no fallback version")
	})

	t.Run("fallback routes to its validator", func(t *testing.T) {
		ctx := &hatchval.ValidationContext{FallbackVersion: version.MustParse("1.1.0")}
		outcome, err := head.Validate(doc, ctx)
		require.NoError(t, err)
		// The document is valid 1.1.0 apart from the schema's own required
		// package_schema_version field.
		require.False(t, outcome.Concerns[hatchval.ConcernSchema].Valid)
		require.True(t, outcome.Concerns[hatchval.ConcernEntryPoint].Valid)
		require.True(t, outcome.Concerns[hatchval.ConcernTools].Valid)
	})
}

func TestSourceSupportedVersions(t *testing.T) {
	src, err := validator.NewSource(newDeps())
	require.NoError(t, err)
	got := version.Strings(src.SupportedVersions())
	require.Equal(t, []string{"1.2.1", "1.2.0", "1.1.0"}, got)
}
