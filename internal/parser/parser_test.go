package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gmofishsauce/jvmcc/internal/ast"
	"github.com/gmofishsauce/jvmcc/internal/compiler"
	"github.com/gmofishsauce/jvmcc/internal/config"
	"github.com/gmofishsauce/jvmcc/internal/lexer"
)

func parseSource(t *testing.T, src string) (*ast.Program, *compiler.Compiler, error) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "t.c")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	c := compiler.New(path, config.Default())
	lx, err := lexer.Open(path, nil, c.Diag)
	if err != nil {
		t.Fatal(err)
	}
	defer lx.Close()
	p := New(lx, c)
	prog, err := p.Parse()
	return prog, c, err
}

func TestParseGlobalsAndFunction(t *testing.T) {
	src := `
int counter = 0;

int add(int a, int b) {
    int sum;
    sum = a + b;
    return sum;
}
`
	prog, c, err := parseSource(t, src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if c.Diag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", c.Diag.Errors())
	}
	if len(prog.Globals) != 1 || prog.Globals[0].Name != "counter" {
		t.Fatalf("globals = %+v; want one global named counter", prog.Globals)
	}
	if len(prog.Funcs) != 1 || prog.Funcs[0].Name != "add" {
		t.Fatalf("funcs = %+v; want one function named add", prog.Funcs)
	}
	fn := c.Symbols.LookupFunction("add")
	if fn == nil || !fn.Defined {
		t.Fatal("function add should be registered and marked defined")
	}
	if len(fn.Locals) != 1 || fn.Locals[0].LocalIndex != 2 {
		t.Errorf("local sum should be assigned slot 2 (after the two params); got %+v", fn.Locals)
	}
}

func TestParseStructDef(t *testing.T) {
	src := `
struct Point {
    int x, y;
};

int main() {
    return 0;
}
`
	prog, c, err := parseSource(t, src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(prog.Structs) != 1 || len(prog.Structs[0].Members) != 2 {
		t.Fatalf("structs = %+v; want one struct with two members", prog.Structs)
	}
	if c.Symbols.LookupStruct("Point") == nil {
		t.Error("struct Point should be registered in the symbol table")
	}
}

func TestUndeclaredIdentifierIsTypeError(t *testing.T) {
	src := `
int main() {
    return missing;
}
`
	_, c, err := parseSource(t, src)
	if err == nil {
		t.Fatal("expected a type error for an undeclared identifier")
	}
	if !c.Diag.HasErrors() {
		t.Fatal("expected the diagnostic to be recorded in the sink")
	}
}

func TestNarrowingAssignmentRequiresCast(t *testing.T) {
	src := `
int main() {
    int x;
    float y;
    y = 1.5;
    x = y;
    return 0;
}
`
	_, _, err := parseSource(t, src)
	if err == nil {
		t.Fatal("expected a type error assigning float to int without a cast")
	}
}

func TestExplicitCastNarrows(t *testing.T) {
	src := `
int main() {
    int x;
    float y;
    y = 1.5;
    x = (int) y;
    return 0;
}
`
	_, c, err := parseSource(t, src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if c.Diag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", c.Diag.Errors())
	}
}

func TestMissingSemicolonIsSyntaxError(t *testing.T) {
	src := `
int main() {
    int x
    return 0;
}
`
	_, _, err := parseSource(t, src)
	if err == nil {
		t.Fatal("expected a syntax error for a missing semicolon")
	}
}

func TestFunctionPrototypeThenDefinitionMustAgree(t *testing.T) {
	src := `
int square(int n);

float square(float n) {
    return n * n;
}
`
	_, _, err := parseSource(t, src)
	if err == nil {
		t.Fatal("expected a type error for a prototype/definition signature mismatch")
	}
}

func TestForLoopWithBreak(t *testing.T) {
	src := `
int main() {
    int i;
    for (i = 0; i < 10; i = i + 1) {
        if (i == 5) {
            break;
        }
    }
    return i;
}
`
	prog, c, err := parseSource(t, src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if c.Diag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", c.Diag.Errors())
	}
	if len(prog.Funcs) != 1 {
		t.Fatalf("expected one function, got %d", len(prog.Funcs))
	}
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	src := `
int main() {
    break;
    return 0;
}
`
	_, _, err := parseSource(t, src)
	if err == nil {
		t.Fatal("expected an error for break outside any loop")
	}
}

func TestDuplicateGlobalIsError(t *testing.T) {
	src := `
int counter;
float counter;

int main() { return 0; }
`
	_, _, err := parseSource(t, src)
	if err == nil {
		t.Fatal("expected an error for a global redeclared in the same scope")
	}
}

func TestDuplicateLocalIsError(t *testing.T) {
	src := `
int main() {
    int x;
    float x;
    return 0;
}
`
	_, _, err := parseSource(t, src)
	if err == nil {
		t.Fatal("expected an error for a local redeclared in the same scope")
	}
}

func TestLocalMayShadowGlobal(t *testing.T) {
	src := `
int x;

int main() {
    int x;
    return x;
}
`
	_, c, err := parseSource(t, src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if c.Diag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", c.Diag.Errors())
	}
}

func TestParamAndLocalWithSameNameIsError(t *testing.T) {
	src := `
int f(int x) {
    int x;
    return x;
}
`
	_, _, err := parseSource(t, src)
	if err == nil {
		t.Fatal("expected an error for a local shadowing its own function's parameter")
	}
}
