package hatchval_test

import (
	"testing"

	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/chain"
	"github.com/crackingshells/hatchval/version"
)

// countingSource records how often each chain is built so caching behavior
// is observable.
type countingSource struct {
	versions []version.ID
	builds   map[string]int
}

func newCountingSource(versions ...string) *countingSource {
	ids, _ := version.ParseAll(versions)
	version.SortDescending(ids)
	return &countingSource{versions: ids, builds: map[string]int{}}
}

func (s *countingSource) Build(target version.ID) (hatchval.DocumentValidator, error) {
	for _, v := range s.versions {
		if v.Equal(target) {
			s.builds[target.String()]++
			return stubValidator{version: target}, nil
		}
	}
	return nil, &chain.UnknownVersionError{Family: "package-validator", Version: target, Known: s.versions}
}

func (s *countingSource) SupportedVersions() []version.ID { return s.versions }

// stubValidator reports the version it was built for through the outcome so
// tests can observe routing.
type stubValidator struct {
	version version.ID
}

func (v stubValidator) Validate(doc hatchval.Document, ctx *hatchval.ValidationContext) (hatchval.Outcome, error) {
	outcome := hatchval.NewOutcome()
	outcome.Set(hatchval.ConcernSchema, true, []string{"validated-as:" + v.version.String()})
	if !ctx.FallbackVersion.IsZero() {
		outcome.Set(hatchval.ConcernDependencies, true, []string{"fallback:" + ctx.FallbackVersion.String()})
	}
	return outcome, nil
}

func validatedAs(t *testing.T, outcome hatchval.Outcome) string {
	t.Helper()
	errs := outcome.Concerns[hatchval.ConcernSchema].Errors
	if len(errs) != 1 {
		t.Fatalf("stub outcome malformed: %+v", outcome)
	}
	return errs[0]
}

func TestValidatePackageRoutesDeclaredVersion(t *testing.T) {
	source := newCountingSource("1.1.0", "1.2.0", "1.2.1")
	orch, err := hatchval.NewOrchestrator(source)
	if err != nil {
		t.Fatal(err)
	}
	doc := hatchval.Document{"package_schema_version": "1.2.0"}
	outcome, err := orch.ValidatePackage(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := validatedAs(t, outcome); got != "validated-as:1.2.0" {
		t.Fatalf("routed to %s", got)
	}
}

func TestValidatePackageFallsBackToOldest(t *testing.T) {
	source := newCountingSource("1.1.0", "1.2.0", "1.2.1")
	orch, err := hatchval.NewOrchestrator(source)
	if err != nil {
		t.Fatal(err)
	}
	if orch.DefaultVersion().String() != "1.1.0" {
		t.Fatalf("default = %s, want oldest", orch.DefaultVersion())
	}
	outcome, err := orch.ValidatePackage(hatchval.Document{"name": "x"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := validatedAs(t, outcome); got != "validated-as:1.1.0" {
		t.Fatalf("routed to %s", got)
	}
}

func TestValidatePackageDefaultOverride(t *testing.T) {
	source := newCountingSource("1.1.0", "1.2.0", "1.2.1")
	orch, err := hatchval.NewOrchestrator(source, hatchval.WithDefaultVersion(version.MustParse("1.2.1")))
	if err != nil {
		t.Fatal(err)
	}
	outcome, err := orch.ValidatePackage(hatchval.Document{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := validatedAs(t, outcome); got != "validated-as:1.2.1" {
		t.Fatalf("routed to %s", got)
	}
}

func TestValidatePackageMalformedVersionAborts(t *testing.T) {
	source := newCountingSource("1.1.0")
	orch, err := hatchval.NewOrchestrator(source)
	if err != nil {
		t.Fatal(err)
	}
	_, err = orch.ValidatePackage(hatchval.Document{"package_schema_version": "not-a-version"}, nil)
	if err == nil {
		t.Fatal("malformed declared version must abort")
	}
}

func TestValidatePackageUnknownVersionAborts(t *testing.T) {
	source := newCountingSource("1.1.0")
	orch, err := hatchval.NewOrchestrator(source)
	if err != nil {
		t.Fatal(err)
	}
	_, err = orch.ValidatePackage(hatchval.Document{"package_schema_version": "4.0.0"}, nil)
	if err == nil {
		t.Fatal("unknown declared version must abort")
	}
}

func TestChainsAreCachedPerVersion(t *testing.T) {
	source := newCountingSource("1.1.0", "1.2.0")
	orch, err := hatchval.NewOrchestrator(source)
	if err != nil {
		t.Fatal(err)
	}
	doc := hatchval.Document{"package_schema_version": "1.2.0"}
	for i := 0; i < 5; i++ {
		if _, err := orch.ValidatePackage(doc, nil); err != nil {
			t.Fatal(err)
		}
	}
	if source.builds["1.2.0"] != 1 {
		t.Fatalf("chain built %d times, want 1", source.builds["1.2.0"])
	}
}

func TestValidatePackageSetsFallbackOnContext(t *testing.T) {
	source := newCountingSource("1.1.0", "1.2.0")
	orch, err := hatchval.NewOrchestrator(source)
	if err != nil {
		t.Fatal(err)
	}
	doc := hatchval.Document{"package_schema_version": "1.2.0"}
	outcome, err := orch.ValidatePackage(doc, &hatchval.ValidationContext{})
	if err != nil {
		t.Fatal(err)
	}
	errs := outcome.Concerns[hatchval.ConcernDependencies].Errors
	if len(errs) != 1 || errs[0] != "fallback:1.1.0" {
		t.Fatalf("context fallback not populated: %v", errs)
	}
}
