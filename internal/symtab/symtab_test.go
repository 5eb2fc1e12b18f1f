package symtab

import (
	"testing"

	"github.com/gmofishsauce/jvmcc/internal/types"
)

func TestNewTableSeedsRuntime(t *testing.T) {
	tb := NewTable()
	for _, name := range []string{"putint", "putchar", "putfloat", "putstring", "getint", "getchar", "getfloat"} {
		if tb.LookupFunction(name) == nil {
			t.Errorf("runtime function %s should be pre-seeded", name)
		}
	}
	if tb.LookupFunction("nope") != nil {
		t.Error("LookupFunction should return nil for an unknown name")
	}
}

func TestAddVariableGlobalVsLocal(t *testing.T) {
	tb := NewTable()
	g := tb.AddVariable("count", types.IntType, true, nil)
	if !g.IsGlobal || len(tb.Globals) != 1 {
		t.Fatalf("expected count registered as a global")
	}

	fn := &Function{Name: "f"}
	l := tb.AddVariable("x", types.IntType, false, fn)
	if l.IsGlobal || len(fn.Locals) != 1 {
		t.Fatalf("expected x registered as a local of fn")
	}
}

func TestDeclaredInScope(t *testing.T) {
	tb := NewTable()
	tb.AddVariable("g", types.IntType, true, nil)

	if !tb.DeclaredInScope("g", true, nil) {
		t.Error("g should be reported as already declared at global scope")
	}
	if tb.DeclaredInScope("h", true, nil) {
		t.Error("h should not be reported as declared at global scope")
	}

	fn := &Function{Name: "f", Params: []*VarSymbol{{Name: "a"}}, Locals: []*VarSymbol{{Name: "local"}}}
	if !tb.DeclaredInScope("a", false, fn) {
		t.Error("a param name should be reported as already declared in its function's scope")
	}
	if !tb.DeclaredInScope("local", false, fn) {
		t.Error("a local name should be reported as already declared in its function's scope")
	}
	if tb.DeclaredInScope("g", false, fn) {
		t.Error("a global should not count as declared within a function's own scope, so it may be shadowed")
	}
}

func TestLookupVariablePrefersLocalsAndParams(t *testing.T) {
	tb := NewTable()
	tb.AddVariable("x", types.IntType, true, nil)

	fn := &Function{Name: "f", Params: []*VarSymbol{{Name: "x", Type: types.FloatType}}}
	found := tb.LookupVariable("x", fn)
	if found == nil || found.Type != types.FloatType {
		t.Fatalf("expected the param x to shadow the global, got %+v", found)
	}

	fn2 := &Function{Name: "g"}
	if found := tb.LookupVariable("x", fn2); found == nil || found.Type != types.IntType {
		t.Fatalf("expected fallback to the global x, got %+v", found)
	}
}

func TestSignatureEqual(t *testing.T) {
	a := &Function{ReturnType: types.IntType, Params: []*VarSymbol{{Type: types.IntType}}}
	b := &Function{ReturnType: types.IntType, Params: []*VarSymbol{{Type: types.IntType}}}
	c := &Function{ReturnType: types.FloatType, Params: []*VarSymbol{{Type: types.IntType}}}
	d := &Function{ReturnType: types.IntType, Params: []*VarSymbol{{Type: types.IntType}, {Type: types.CharType}}}

	if !SignatureEqual(a, b) {
		t.Error("identical signatures should be equal")
	}
	if SignatureEqual(a, c) {
		t.Error("differing return types should not be equal")
	}
	if SignatureEqual(a, d) {
		t.Error("differing param counts should not be equal")
	}
}

func TestFinalizeLocalsOrdersParamsThenLocals(t *testing.T) {
	fn := &Function{
		Params: []*VarSymbol{{Name: "a"}, {Name: "b"}},
		Locals: []*VarSymbol{{Name: "sum"}, {Name: "tmp"}},
	}
	FinalizeLocals(fn)

	want := map[string]int{"a": 0, "b": 1, "sum": 2, "tmp": 3}
	for _, p := range fn.Params {
		if p.LocalIndex != want[p.Name] {
			t.Errorf("param %s LocalIndex = %d; want %d", p.Name, p.LocalIndex, want[p.Name])
		}
	}
	for _, l := range fn.Locals {
		if l.LocalIndex != want[l.Name] {
			t.Errorf("local %s LocalIndex = %d; want %d", l.Name, l.LocalIndex, want[l.Name])
		}
	}
}

func TestStructDefFindMember(t *testing.T) {
	s := &StructDef{Name: "Point", Members: []VarSymbol{{Name: "x", Type: types.IntType}, {Name: "y", Type: types.IntType}}}
	if m := s.FindMember("y"); m == nil || m.Name != "y" {
		t.Fatalf("expected to find member y, got %+v", m)
	}
	if m := s.FindMember("z"); m != nil {
		t.Errorf("expected nil for a missing member, got %+v", m)
	}
}

func TestAddAndLookupStruct(t *testing.T) {
	tb := NewTable()
	tb.AddStruct(&StructDef{Name: "Point"})
	if tb.LookupStruct("Point") == nil {
		t.Error("expected to find the registered struct")
	}
	if tb.LookupStruct("Rect") != nil {
		t.Error("expected nil for an unregistered struct")
	}
}
