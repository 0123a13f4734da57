package term

import (
	"testing"

	"github.com/vic/optinet/pkg/core"
)

func mustParse(t *testing.T, src string) Term {
	t.Helper()
	tm, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return tm
}

func TestResolveIdentityProducesVarZero(t *testing.T) {
	ct, err := Resolve(mustParse(t, "x: x"))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	abs, ok := ct.(core.Abs)
	if !ok {
		t.Fatalf("expected core.Abs, got %T", ct)
	}
	v, ok := abs.Body.(core.Var)
	if !ok || v.Index != 0 {
		t.Fatalf("expected Var{0}, got %#v", abs.Body)
	}
}

func TestResolveNestedBinderIndices(t *testing.T) {
	// x: y: x should resolve the outer x to De Bruijn index 1 from y's body.
	ct, err := Resolve(mustParse(t, "x: y: x"))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	outer := ct.(core.Abs)
	inner := outer.Body.(core.Abs)
	v := inner.Body.(core.Var)
	if v.Index != 1 {
		t.Fatalf("expected index 1, got %d", v.Index)
	}
}

func TestResolveFreeVariableFails(t *testing.T) {
	_, err := Resolve(mustParse(t, "x: y"))
	if err == nil {
		t.Fatal("expected a free-variable error")
	}
	if _, ok := err.(*FreeVariableError); !ok {
		t.Fatalf("expected *FreeVariableError, got %T", err)
	}
}

func TestResolveLetDesugarsToApplication(t *testing.T) {
	ct, err := Resolve(mustParse(t, "let id = x: x; in id"))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if _, ok := ct.(core.App); !ok {
		t.Fatalf("expected desugared App, got %T", ct)
	}
}
