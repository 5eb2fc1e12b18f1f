package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompileErrorText(t *testing.T) {
	e := NewAt(Lexer, "a.c", 3, "@", "unrecognized character")
	want := "lexer error in file a.c line 3 at text @: unrecognized character"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
}

func TestCompileErrorTextNoLexeme(t *testing.T) {
	e := New(Type, "a.c", 10, "cannot widen char[] to int")
	want := "type error in file a.c line 10: cannot widen char[] to int"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
}

func TestSinkAccumulates(t *testing.T) {
	var s Sink
	if s.HasErrors() {
		t.Fatal("HasErrors() = true on an empty sink")
	}
	s.Report(New(Parser, "a.c", 1, "expected ;"))
	s.Report(New(Type, "a.c", 2, "undeclared identifier x"))

	if !s.HasErrors() {
		t.Fatal("HasErrors() = false after two reports")
	}
	if len(s.Errors()) != 2 {
		t.Fatalf("len(Errors()) = %d; want 2", len(s.Errors()))
	}
	if first := s.First(); first.Line != 1 {
		t.Errorf("First().Line = %d; want 1", first.Line)
	}

	var buf bytes.Buffer
	s.WriteTo(&buf)
	if got := buf.String(); !strings.Contains(got, "expected ;") || !strings.Contains(got, "undeclared identifier x") {
		t.Errorf("WriteTo output missing an expected message: %q", got)
	}
}

func TestSinkFirstEmpty(t *testing.T) {
	var s Sink
	if s.First() != nil {
		t.Error("First() on an empty sink should be nil")
	}
}
