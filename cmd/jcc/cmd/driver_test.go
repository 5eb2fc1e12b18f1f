package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gmofishsauce/jvmcc/internal/config"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBaseName(t *testing.T) {
	if got := baseName("prog.c"); got != "prog" {
		t.Errorf("baseName(prog.c) = %q; want prog", got)
	}
	if got := baseName("dir/prog.c"); got != "dir/prog" {
		t.Errorf("baseName(dir/prog.c) = %q; want dir/prog", got)
	}
}

func TestClassNameFor(t *testing.T) {
	if got := classNameFor("prog.c"); got != "prog" {
		t.Errorf("classNameFor(prog.c) = %q; want prog", got)
	}
	if got := classNameFor("a/b/prog.c"); got != "prog" {
		t.Errorf("classNameFor(a/b/prog.c) = %q; want prog", got)
	}
}

func TestOutputPathDefaultsAlongsideInput(t *testing.T) {
	cfg := config.Default()
	if got := outputPath(cfg, "dir/prog.c", ".lexer"); got != "dir/prog.lexer" {
		t.Errorf("outputPath with no OutputDir = %q; want dir/prog.lexer", got)
	}
}

func TestOutputPathHonorsConfiguredDir(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = "build/out"
	if got := outputPath(cfg, "dir/prog.c", ".j"); got != filepath.Join("build/out", "prog.j") {
		t.Errorf("outputPath with OutputDir set = %q; want build/out/prog.j", got)
	}
}

func TestCreateOutputCommit(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "prog.lexer")

	out, err := createOutput(final)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := out.file.WriteString("hello\n"); err != nil {
		t.Fatal(err)
	}
	if err := out.commit(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(final)
	if err != nil {
		t.Fatalf("expected committed output at %s: %v", final, err)
	}
	if string(data) != "hello\n" {
		t.Errorf("committed content = %q; want %q", data, "hello\n")
	}
	if _, err := os.Stat(out.tmp); !os.IsNotExist(err) {
		t.Errorf("expected the temp file %s to be gone after commit", out.tmp)
	}
}

func TestPendingOutputAbortRemovesTmp(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "prog.lexer")

	keepPartial = false
	out, err := createOutput(final)
	if err != nil {
		t.Fatal(err)
	}
	tmp := out.tmp
	out.abort()
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Error("abort should remove the temp file when keep-partial is off")
	}
	if _, err := os.Stat(final); !os.IsNotExist(err) {
		t.Error("abort should never produce the final file")
	}
}

func TestPendingOutputAbortKeepsPartial(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "prog.lexer")

	keepPartial = true
	defer func() { keepPartial = false }()

	out, err := createOutput(final)
	if err != nil {
		t.Fatal(err)
	}
	tmp := out.tmp
	out.abort()
	if _, err := os.Stat(tmp); err != nil {
		t.Error("abort should keep the temp file when keep-partial is set")
	}
	os.Remove(tmp)
}

func TestRunLexWritesTokenListing(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "prog.c", "int x = 1;\n")

	if err := runLex(src); err != nil {
		t.Fatalf("runLex: %v", err)
	}
	data, err := os.ReadFile(baseName(src) + ".lexer")
	if err != nil {
		t.Fatalf("expected a .lexer file: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected a non-empty token listing")
	}
}

func TestRunLexAbortsOnUnknownCharacter(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "bad.c", "int x = 1 @ 2;\n")

	if err := runLex(src); err == nil {
		t.Fatal("expected runLex to fail on an unrecognized character")
	}
	if _, err := os.Stat(baseName(src) + ".lexer"); !os.IsNotExist(err) {
		t.Error("a failed lex should not leave a .lexer file behind")
	}
}

func TestRunEmitProducesAssembly(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "prog.c", "int main(){ return 0; }\n")

	if err := runEmit(src); err != nil {
		t.Fatalf("runEmit: %v", err)
	}
	data, err := os.ReadFile(baseName(src) + ".j")
	if err != nil {
		t.Fatalf("expected a .j file: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty assembly output")
	}
}

func TestRunEmitAbortsOnTypeError(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "bad.c", "int main(){ return missing; }\n")

	if err := runEmit(src); err == nil {
		t.Fatal("expected runEmit to fail on an undeclared identifier")
	}
	if _, err := os.Stat(baseName(src) + ".j"); !os.IsNotExist(err) {
		t.Error("a failed emit should not leave a .j file behind")
	}
}

func TestRequireFile(t *testing.T) {
	if _, err := requireFile(nil); err == nil {
		t.Error("expected an error with no file argument")
	}
	if _, err := requireFile([]string{"a.c", "b.c"}); err == nil {
		t.Error("expected an error with more than one file argument")
	}
	got, err := requireFile([]string{"a.c"})
	if err != nil || got != "a.c" {
		t.Errorf("requireFile([a.c]) = %q, %v; want a.c, nil", got, err)
	}
}
