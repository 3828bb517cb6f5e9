package chain_test

import (
	"errors"
	"testing"

	"github.com/crackingshells/hatchval/chain"
	"github.com/crackingshells/hatchval/version"
)

// A tiny handler family for exercising the machinery: one operation,
// "greet", owned by whichever versions declare it.
const opGreet chain.Op = "greet"

type greeter interface {
	chain.Handler
	Greet() (string, error)
}

type greetHandler struct {
	version  version.ID
	next     greeter
	declares chain.OpSet
	message  string
}

func (h *greetHandler) Version() version.ID         { return h.version }
func (h *greetHandler) CanHandle(v version.ID) bool { return h.version.Equal(v) }
func (h *greetHandler) Declares() chain.OpSet       { return h.declares }

func (h *greetHandler) Greet() (string, error) {
	if h.message != "" {
		return h.message, nil
	}
	if h.next != nil {
		return h.next.Greet()
	}
	return "", &chain.UnsupportedOperationError{Family: "greeter", Version: h.version, Op: opGreet}
}

func descriptor(v string, message string, declares ...chain.Op) chain.Descriptor[greeter] {
	id := version.MustParse(v)
	return chain.Descriptor[greeter]{
		Version: id,
		New: func(next greeter) greeter {
			return &greetHandler{version: id, next: next, declares: chain.NewOpSet(declares...), message: message}
		},
	}
}

func newTestRegistry(t *testing.T) *chain.Registry[greeter] {
	t.Helper()
	reg, err := chain.NewRegistry("greeter", []chain.Op{opGreet},
		descriptor("3.0.0", ""),
		descriptor("2.0.0", ""),
		descriptor("1.0.0", "hello from 1.0.0", opGreet),
	)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestBuildChainLength(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("newest target links every older version", func(t *testing.T) {
		head, err := reg.Build(version.MustParse("3.0.0"))
		if err != nil {
			t.Fatal(err)
		}
		if got := head.Version().String(); got != "3.0.0" {
			t.Fatalf("head version = %s", got)
		}
		depth := 0
		for h := head.(*greetHandler); h != nil; depth++ {
			h, _ = h.next.(*greetHandler)
		}
		if depth != 3 {
			t.Fatalf("chain depth = %d, want 3", depth)
		}
	})

	t.Run("oldest target is a single node", func(t *testing.T) {
		head, err := reg.Build(version.MustParse("1.0.0"))
		if err != nil {
			t.Fatal(err)
		}
		h := head.(*greetHandler)
		if h.next != nil {
			t.Fatal("terminal build must not have a predecessor")
		}
	})
}

func TestBuildDelegation(t *testing.T) {
	reg := newTestRegistry(t)
	head, err := reg.Build(version.MustParse("3.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	// Neither 3.0.0 nor 2.0.0 implements greet; the call must reach 1.0.0.
	got, err := head.Greet()
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello from 1.0.0" {
		t.Fatalf("Greet() = %q", got)
	}
}

func TestBuildUnknownVersion(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Build(version.MustParse("9.9.9"))
	var unknown *chain.UnknownVersionError
	if !errors.As(err, &unknown) {
		t.Fatalf("want UnknownVersionError, got %v", err)
	}
	if len(unknown.Known) != 3 {
		t.Fatalf("error lists %d known versions, want 3", len(unknown.Known))
	}
}

func TestBuildRejectsIncompleteTerminal(t *testing.T) {
	reg, err := chain.NewRegistry("greeter", []chain.Op{opGreet},
		descriptor("2.0.0", "", opGreet),
		descriptor("1.0.0", ""), // terminal without the full contract
	)
	if err != nil {
		t.Fatal(err)
	}
	_, err = reg.Build(version.MustParse("2.0.0"))
	var unsupported *chain.UnsupportedOperationError
	if !errors.As(err, &unsupported) {
		t.Fatalf("want UnsupportedOperationError, got %v", err)
	}
	if unsupported.Op != opGreet {
		t.Fatalf("error names op %q", unsupported.Op)
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := chain.NewRegistry("greeter", []chain.Op{opGreet},
		descriptor("1.0.0", "a", opGreet),
		descriptor("1.0.0", "b", opGreet),
	)
	if err == nil {
		t.Fatal("duplicate versions must be rejected")
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	reg := newTestRegistry(t)
	target := version.MustParse("3.0.0")
	first, err := reg.Build(target)
	if err != nil {
		t.Fatal(err)
	}
	second, err := reg.Build(target)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("builds must yield independent chains")
	}
	a, _ := first.Greet()
	b, _ := second.Greet()
	if a != b {
		t.Fatalf("chains disagree: %q vs %q", a, b)
	}
}

func TestRegistryOrdering(t *testing.T) {
	reg := newTestRegistry(t)
	got := version.Strings(reg.Versions())
	want := []string{"3.0.0", "2.0.0", "1.0.0"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Versions() = %v, want %v", got, want)
		}
	}
	if reg.Latest().String() != "3.0.0" || reg.Oldest().String() != "1.0.0" {
		t.Fatal("Latest/Oldest disagree with ordering")
	}
}
