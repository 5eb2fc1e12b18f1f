package lexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gmofishsauce/jvmcc/internal/diag"
	"github.com/gmofishsauce/jvmcc/internal/token"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func allTokens(t *testing.T, l *Lexer) []token.Token {
	t.Helper()
	var toks []token.Token
	for {
		tok := l.Next()
		if tok.ID == token.END {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func TestScanOperatorsAndPunctuators(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "ops.c", "int x = 1 + 2 * 3; x += 1; x == 2 && x != 3;\n")

	var sink diag.Sink
	l, err := Open(path, nil, &sink)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	toks := allTokens(t, l)
	if sink.HasErrors() {
		t.Fatalf("unexpected lexer errors: %v", sink.Errors())
	}

	var ids []token.ID
	for _, tk := range toks {
		ids = append(ids, tk.ID)
	}
	want := []token.ID{
		token.TYPE, token.IDENT, token.ID('='), token.INT, token.ID('+'), token.INT,
		token.ID('*'), token.INT, token.ID(';'),
		token.IDENT, token.ADDEQ, token.INT, token.ID(';'),
		token.IDENT, token.EQEQ, token.INT, token.ANDAND, token.IDENT, token.NE, token.INT, token.ID(';'),
	}
	if len(ids) != len(want) {
		t.Fatalf("token count = %d; want %d\ngot: %v", len(ids), len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("token[%d] = %d; want %d", i, ids[i], want[i])
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "c.c", "// line comment\nint /* block \n comment */ x;\n")

	var sink diag.Sink
	l, err := Open(path, nil, &sink)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	toks := allTokens(t, l)
	if sink.HasErrors() {
		t.Fatalf("unexpected lexer errors: %v", sink.Errors())
	}
	if len(toks) != 3 {
		t.Fatalf("got %d tokens; want 3 (int, x, ;)", len(toks))
	}
	if toks[2].Line != 3 {
		t.Errorf("';' on line %d; want 3 (block comment spans a line)", toks[2].Line)
	}
}

func TestUnterminatedBlockCommentIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "bad.c", "/* never closes\n")

	var sink diag.Sink
	l, err := Open(path, nil, &sink)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	allTokens(t, l)
	if !sink.HasErrors() {
		t.Fatal("expected a lexer error for an unterminated block comment")
	}
	if sink.First().Kind != diag.Lexer {
		t.Errorf("error kind = %v; want Lexer", sink.First().Kind)
	}
}

func TestIncludeIsInlinedRecursively(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "inner.h", "int y;\n")
	path := writeTemp(t, dir, "outer.c", "#include \"inner.h\"\nint x;\n")
	// #include paths resolve against the working directory.
	t.Chdir(dir)

	var sink diag.Sink
	l, err := Open(path, nil, &sink)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	toks := allTokens(t, l)
	if sink.HasErrors() {
		t.Fatalf("unexpected lexer errors: %v", sink.Errors())
	}
	if len(toks) != 6 {
		t.Fatalf("got %d tokens; want 6 (int y ; int x ;)", len(toks))
	}
	if filepath.Base(toks[1].File) != "inner.h" {
		t.Errorf("identifier y has File %q; want it tagged with inner.h", toks[1].File)
	}
	if filepath.Base(toks[4].File) != "outer.c" {
		t.Errorf("identifier x has File %q; want it tagged with outer.c", toks[4].File)
	}
}

func TestNumericLiterals(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "n.c", "1 0x1F 3.14 2.5e-3\n")

	var sink diag.Sink
	l, err := Open(path, nil, &sink)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	toks := allTokens(t, l)
	if sink.HasErrors() {
		t.Fatalf("unexpected lexer errors: %v", sink.Errors())
	}
	wantIDs := []token.ID{token.INT, token.HEX, token.REAL, token.REAL}
	if len(toks) != len(wantIDs) {
		t.Fatalf("got %d tokens; want %d", len(toks), len(wantIDs))
	}
	for i, id := range wantIDs {
		if toks[i].ID != id {
			t.Errorf("token[%d].ID = %d; want %d (text %q)", i, toks[i].ID, id, toks[i].Text)
		}
	}
}

func TestStringAndCharEscapes(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "s.c", "\"hi\\n\" '\\a'\n")

	var sink diag.Sink
	l, err := Open(path, nil, &sink)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	toks := allTokens(t, l)
	if sink.HasErrors() {
		t.Fatalf("unexpected lexer errors: %v", sink.Errors())
	}
	if len(toks) != 2 || toks[0].ID != token.STRING || toks[1].ID != token.CHAR {
		t.Fatalf("unexpected token stream: %v", toks)
	}
}

func TestUnknownCharacterIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "bad.c", "int x = 1 @ 2;\n")

	var sink diag.Sink
	l, err := Open(path, nil, &sink)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	allTokens(t, l)
	if !sink.HasErrors() {
		t.Fatal("expected a lexer error for an unrecognized character")
	}
}
