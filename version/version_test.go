package version_test

import (
	"errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/crackingshells/hatchval/version"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1.2.0", want: "1.2.0"},
		{in: "v1.2.0", want: "1.2.0"},
		{in: "  1.0.0 ", want: "1.0.0"},
		{in: "1.2", wantErr: true},
		{in: "1", wantErr: true},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1.2.x", wantErr: true},
	}
	for _, tc := range cases {
		id, err := version.Parse(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): want error, got %v", tc.in, id)
				continue
			}
			var ife *version.InvalidFormatError
			if !errors.As(err, &ife) {
				t.Errorf("Parse(%q): error %v is not InvalidFormatError", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.in, err)
			continue
		}
		if id.String() != tc.want {
			t.Errorf("Parse(%q) = %q, want %q", tc.in, id.String(), tc.want)
		}
	}
}

func TestCompareZeroOrdersFirst(t *testing.T) {
	zero := version.ID{}
	v := version.MustParse("1.0.0")
	if zero.Compare(v) != -1 || v.Compare(zero) != 1 || zero.Compare(version.ID{}) != 0 {
		t.Fatal("zero ID must order before every parsed version")
	}
}

func TestSortDescending(t *testing.T) {
	ids, err := version.ParseAll([]string{"1.1.0", "1.2.1", "1.2.0"})
	if err != nil {
		t.Fatal(err)
	}
	version.SortDescending(ids)
	got := version.Strings(ids)
	want := []string{"1.2.1", "1.2.0", "1.1.0"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortDescending = %v, want %v", got, want)
		}
	}
}

func TestFindCompatible(t *testing.T) {
	candidates, _ := version.ParseAll([]string{"1.0.0", "1.1.0", "1.2.0", "2.0.0"})

	t.Run("picks highest match", func(t *testing.T) {
		got, err := version.FindCompatible(candidates, version.MustParseConstraint(">=1.0.0, <2.0.0"))
		if err != nil {
			t.Fatal(err)
		}
		if got.String() != "1.2.0" {
			t.Fatalf("got %s, want 1.2.0", got)
		}
	})

	t.Run("no match", func(t *testing.T) {
		_, err := version.FindCompatible(candidates, version.MustParseConstraint(">=3.0.0"))
		var nc *version.NoCompatibleVersionError
		if !errors.As(err, &nc) {
			t.Fatalf("want NoCompatibleVersionError, got %v", err)
		}
		if nc.Constraint != ">=3.0.0" {
			t.Fatalf("error names constraint %q", nc.Constraint)
		}
	})
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{">=1.0.0", "<2.0.0", true},
		{">=1.0.0, <1.5.0", ">=1.4.0", true},
		{">=2.0.0", "<1.0.0", false},
		{"^1.2.0", "^1.3.0", true},
		{"^1.0.0", "^2.0.0", false},
	}
	for _, tc := range cases {
		a := version.MustParseConstraint(tc.a)
		b := version.MustParseConstraint(tc.b)
		if got := version.Overlaps(a, b); got != tc.want {
			t.Errorf("Overlaps(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCompareIsTotalOrder(t *testing.T) {
	gen := rapid.Custom(func(t *rapid.T) version.ID {
		major := rapid.Uint64Range(0, 20).Draw(t, "major")
		minor := rapid.Uint64Range(0, 20).Draw(t, "minor")
		patch := rapid.Uint64Range(0, 20).Draw(t, "patch")
		return version.MustParse(fmt.Sprintf("%d.%d.%d", major, minor, patch))
	})
	rapid.Check(t, func(t *rapid.T) {
		a := gen.Draw(t, "a")
		b := gen.Draw(t, "b")
		c := gen.Draw(t, "c")
		if a.Compare(b) != -b.Compare(a) {
			t.Fatalf("antisymmetry violated for %s, %s", a, b)
		}
		if a.Compare(b) <= 0 && b.Compare(c) <= 0 && a.Compare(c) > 0 {
			t.Fatalf("transitivity violated for %s, %s, %s", a, b, c)
		}
	})
}

func TestFindCompatibleReturnsMaximum(t *testing.T) {
	gen := rapid.Custom(func(t *rapid.T) version.ID {
		major := rapid.Uint64Range(0, 5).Draw(t, "major")
		minor := rapid.Uint64Range(0, 5).Draw(t, "minor")
		return version.MustParse(fmt.Sprintf("%d.%d.0", major, minor))
	})
	constraint := version.MustParseConstraint(">=1.0.0")
	rapid.Check(t, func(t *rapid.T) {
		candidates := rapid.SliceOfN(gen, 1, 12).Draw(t, "candidates")
		best, err := version.FindCompatible(candidates, constraint)
		if err != nil {
			var nc *version.NoCompatibleVersionError
			if !errors.As(err, &nc) {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, c := range candidates {
				if constraint.Check(c) {
					t.Fatalf("reported no match but %s satisfies", c)
				}
			}
			return
		}
		if !constraint.Check(best) {
			t.Fatalf("result %s does not satisfy constraint", best)
		}
		for _, c := range candidates {
			if constraint.Check(c) && c.Compare(best) > 0 {
				t.Fatalf("candidate %s beats reported best %s", c, best)
			}
		}
	})
}
