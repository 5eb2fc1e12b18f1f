// Package lexer implements the hand-written character-to-token scanner:
// whitespace and comment skipping, recursive #include inlining, and the
// literal/identifier/operator scanning rules of §4.1.
package lexer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gmofishsauce/jvmcc/internal/diag"
	"github.com/gmofishsauce/jvmcc/internal/token"
)

const (
	maxIdentLen = 47
	maxNumLen   = 47
	maxStringLen = 1023
)

// frame is one level of the #include stack: a single open file plus its
// own line counter and one-byte putback buffer.
type frame struct {
	file    string
	r       *bufio.Reader
	closer  io.Closer
	line    int
	pending byte
	hasPut  bool
}

func (f *frame) readByte() (byte, bool) {
	if f.hasPut {
		f.hasPut = false
		return f.pending, true
	}
	b, err := f.r.ReadByte()
	if err != nil {
		return 0, false
	}
	return b, true
}

// unread pushes back exactly one byte; the spec's putback buffer holds
// only one, so a second unread without an intervening read would be a
// lexer bug, not a user-facing condition.
func (f *frame) unread(b byte) {
	f.pending = b
	f.hasPut = true
}

// Lexer drives the #include stack and produces one token at a time. It
// holds no package-level state; every field lives on the Lexer value.
type Lexer struct {
	stack       []*frame
	includeDirs []string
	diag        *diag.Sink
}

// Open opens path as the top-level source file. includeDirs is searched,
// after the current working directory, when resolving #include targets.
func Open(path string, includeDirs []string, sink *diag.Sink) (*Lexer, error) {
	f, err := openFrame(path)
	if err != nil {
		return nil, err
	}
	return &Lexer{stack: []*frame{f}, includeDirs: includeDirs, diag: sink}, nil
}

func openFrame(path string) (*frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &frame{file: path, r: bufio.NewReader(fh), closer: fh, line: 1}, nil
}

// Close releases every open file on the include stack.
func (l *Lexer) Close() {
	for _, f := range l.stack {
		if f.closer != nil {
			f.closer.Close()
		}
	}
}

func (l *Lexer) top() *frame {
	if len(l.stack) == 0 {
		return nil
	}
	return l.stack[len(l.stack)-1]
}

func (l *Lexer) fail(kind func(file string, line int, text, msg string) *diag.CompileError, text, msg string, args ...interface{}) token.Token {
	f := l.top()
	file, line := "<eof>", 0
	if f != nil {
		file, line = f.file, f.line
	}
	l.diag.Report(kind(file, line, text, fmt.Sprintf(msg, args...)))
	return token.Token{ID: token.END, File: file, Line: line}
}

func lexFail(file string, line int, text, msg string) *diag.CompileError {
	if text == "" {
		return diag.New(diag.Lexer, file, line, "%s", msg)
	}
	return diag.NewAt(diag.Lexer, file, line, text, "%s", msg)
}

// Next returns the next token in the flattened, include-expanded stream,
// or an END token once the outermost file is exhausted or a fatal lexer
// error has been reported.
func (l *Lexer) Next() token.Token {
	for {
		f := l.top()
		if f == nil {
			return token.Token{ID: token.END}
		}
		b, ok := f.readByte()
		if !ok {
			l.stack = l.stack[:len(l.stack)-1]
			if f.closer != nil {
				f.closer.Close()
			}
			continue
		}
		if l.diag.HasErrors() {
			return token.Token{ID: token.END}
		}

		switch {
		case b == '\n':
			f.line++
			continue
		case b == ' ' || b == '\t' || b == '\r':
			continue
		case b == '/' && l.peekIs(f, '/'):
			f.readByte() // consume second '/'
			l.skipToEOL(f)
			continue
		case b == '/' && l.peekIs(f, '*'):
			f.readByte()
			if !l.skipBlockComment(f) {
				return l.fail(lexFail, "", "unterminated block comment")
			}
			continue
		case b == '#':
			if tok, handled := l.handleDirective(f); handled {
				if tok.ID != 0 || l.diag.HasErrors() {
					return tok
				}
				continue
			}
			continue
		default:
			return l.scanToken(f, b)
		}
	}
}

func (l *Lexer) peekIs(f *frame, want byte) bool {
	b, ok := f.readByte()
	if !ok {
		return false
	}
	f.unread(b)
	return b == want
}

func (l *Lexer) skipToEOL(f *frame) {
	for {
		b, ok := f.readByte()
		if !ok || b == '\n' {
			if ok {
				f.unread(b)
			}
			return
		}
	}
}

func (l *Lexer) skipBlockComment(f *frame) bool {
	for {
		b, ok := f.readByte()
		if !ok {
			return false
		}
		if b == '\n' {
			f.line++
			continue
		}
		if b == '*' {
			b2, ok := f.readByte()
			if !ok {
				return false
			}
			if b2 == '/' {
				return true
			}
			f.unread(b2)
		}
	}
}

// handleDirective processes a line starting with '#'. Only "#include
// \"path\"" is recognized; any other directive is silently skipped to end
// of line, per §4.1. Always returns handled=true. On success the token is
// zero-valued; for an #include the included file's frame has been pushed,
// so the next read comes from it. On error the token is the END token
// returned by fail.
func (l *Lexer) handleDirective(f *frame) (token.Token, bool) {
	word := l.scanBareWord(f)
	if word != "include" {
		l.skipToEOL(f)
		return token.Token{}, true
	}
	l.skipSpaces(f)
	path, ok := l.scanQuotedPath(f)
	if !ok {
		return l.fail(lexFail, "", "malformed #include directive"), true
	}
	resolved, err := l.resolveInclude(path)
	if err != nil {
		return l.fail(lexFail, path, "cannot open include file"), true
	}
	nf, err := openFrame(resolved)
	if err != nil {
		return l.fail(lexFail, path, "cannot open include file"), true
	}
	l.stack = append(l.stack, nf)
	return token.Token{}, true
}

func (l *Lexer) resolveInclude(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	for _, dir := range l.includeDirs {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("include file %q not found", path)
}

func (l *Lexer) scanBareWord(f *frame) string {
	var sb strings.Builder
	for {
		b, ok := f.readByte()
		if !ok {
			break
		}
		if isAlnum(b) {
			sb.WriteByte(b)
		} else {
			f.unread(b)
			break
		}
	}
	return sb.String()
}

func (l *Lexer) skipSpaces(f *frame) {
	for {
		b, ok := f.readByte()
		if !ok {
			return
		}
		if b != ' ' && b != '\t' {
			f.unread(b)
			return
		}
	}
}

func (l *Lexer) scanQuotedPath(f *frame) (string, bool) {
	b, ok := f.readByte()
	if !ok || b != '"' {
		if ok {
			f.unread(b)
		}
		return "", false
	}
	var sb strings.Builder
	for {
		b, ok := f.readByte()
		if !ok || b == '\n' {
			return "", false
		}
		if b == '"' {
			return sb.String(), true
		}
		sb.WriteByte(b)
	}
}

func isAlpha(b byte) bool { return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlnum(b byte) bool { return isAlpha(b) || isDigit(b) }
func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (l *Lexer) scanToken(f *frame, first byte) token.Token {
	line := f.line
	switch {
	case isAlpha(first):
		return l.scanIdentifier(f, first, line)
	case isDigit(first):
		return l.scanNumber(f, first, line)
	case first == '\'':
		return l.scanChar(f, line)
	case first == '"':
		return l.scanString(f, line)
	default:
		return l.scanOperator(f, first, line)
	}
}

func (l *Lexer) scanIdentifier(f *frame, first byte, line int) token.Token {
	var sb strings.Builder
	sb.WriteByte(first)
	for {
		b, ok := f.readByte()
		if !ok {
			break
		}
		if isAlnum(b) {
			sb.WriteByte(b)
		} else {
			f.unread(b)
			break
		}
	}
	name := sb.String()
	if len(name) > maxIdentLen {
		return l.fail(lexFail, name, "identifier too long")
	}
	if kw, ok := token.LookupKeyword(name); ok {
		return token.Token{ID: kw, Text: name, Line: line, File: f.file}
	}
	if token.IsTypeName(name) {
		return token.Token{ID: token.TYPE, Text: name, Line: line, File: f.file}
	}
	return token.Token{ID: token.IDENT, Text: name, Line: line, File: f.file}
}

func (l *Lexer) scanNumber(f *frame, first byte, line int) token.Token {
	if first == '0' {
		if b, ok := f.readByte(); ok {
			if b == 'x' || b == 'X' {
				return l.scanHex(f, line)
			}
			f.unread(b)
		}
	}
	var sb strings.Builder
	sb.WriteByte(first)
	isReal := false
	for {
		b, ok := f.readByte()
		if !ok {
			break
		}
		if isDigit(b) {
			sb.WriteByte(b)
			continue
		}
		if b == '.' && !isReal {
			isReal = true
			sb.WriteByte(b)
			continue
		}
		if (b == 'e' || b == 'E') && !strings.ContainsAny(sb.String(), "eE") {
			isReal = true
			sb.WriteByte(b)
			b2, ok := f.readByte()
			if ok {
				if b2 == '+' || b2 == '-' {
					sb.WriteByte(b2)
				} else {
					f.unread(b2)
				}
			}
			continue
		}
		f.unread(b)
		break
	}
	text := sb.String()
	if len(text) > maxNumLen {
		return l.fail(lexFail, text, "numeric literal too long")
	}
	id := token.INT
	if isReal {
		id = token.REAL
	}
	return token.Token{ID: id, Text: text, Line: line, File: f.file}
}

func (l *Lexer) scanHex(f *frame, line int) token.Token {
	var sb strings.Builder
	for {
		b, ok := f.readByte()
		if !ok {
			break
		}
		if isHexDigit(b) {
			sb.WriteByte(b)
		} else {
			f.unread(b)
			break
		}
	}
	if sb.Len() == 0 {
		return l.fail(lexFail, "0x", "hexadecimal literal requires at least one digit")
	}
	text := "0x" + sb.String()
	if len(text) > maxNumLen {
		return l.fail(lexFail, text, "numeric literal too long")
	}
	return token.Token{ID: token.HEX, Text: text, Line: line, File: f.file}
}

var charEscapes = map[byte]byte{'a': 7, 'b': 8, 'n': '\n', 'r': '\r', '\\': '\\', '\'': '\''}
var stringEscapes = map[byte]byte{'n': '\n', 't': '\t', 'r': '\r', 'a': 7, 'b': 8, '\\': '\\', '"': '"'}

func (l *Lexer) scanChar(f *frame, line int) token.Token {
	b, ok := f.readByte()
	if !ok {
		return l.fail(lexFail, "", "unterminated character literal")
	}
	raw := "'"
	if b == '\\' {
		esc, ok := f.readByte()
		if !ok {
			return l.fail(lexFail, "", "unterminated character literal")
		}
		if _, known := charEscapes[esc]; !known {
			return l.fail(lexFail, string([]byte{'\\', esc}), "unrecognized escape sequence")
		}
		raw += string([]byte{'\\', esc})
	} else {
		raw += string(b)
	}
	closeB, ok := f.readByte()
	if !ok || closeB != '\'' {
		return l.fail(lexFail, raw, "missing closing quote on character literal")
	}
	raw += "'"
	return token.Token{ID: token.CHAR, Text: raw, Line: line, File: f.file}
}

func (l *Lexer) scanString(f *frame, line int) token.Token {
	var sb strings.Builder
	sb.WriteByte('"')
	n := 0
	for {
		b, ok := f.readByte()
		if !ok {
			return l.fail(lexFail, sb.String(), "unterminated string literal")
		}
		if b == '"' {
			sb.WriteByte('"')
			break
		}
		if b == '\\' {
			esc, ok := f.readByte()
			if !ok {
				return l.fail(lexFail, sb.String(), "unterminated string literal")
			}
			if _, known := stringEscapes[esc]; !known {
				return l.fail(lexFail, string([]byte{'\\', esc}), "unrecognized escape sequence")
			}
			sb.WriteByte('\\')
			sb.WriteByte(esc)
			n++
			continue
		}
		sb.WriteByte(b)
		n++
		if n > maxStringLen {
			return l.fail(lexFail, "", "string literal too long")
		}
	}
	return token.Token{ID: token.STRING, Text: sb.String(), Line: line, File: f.file}
}

// compoundPairs maps a lead byte to the second byte and resulting ID for
// each of the ten potentially-compound operators.
var compoundPairs = map[byte]map[byte]token.ID{
	'=': {'=': token.EQEQ},
	'!': {'=': token.NE},
	'>': {'=': token.GE},
	'<': {'=': token.LE},
	'+': {'+': token.INC, '=': token.ADDEQ},
	'-': {'-': token.DEC, '=': token.SUBEQ},
	'|': {'|': token.OROR},
	'&': {'&': token.ANDAND},
	'*': {'=': token.MULEQ},
	'/': {'=': token.DIVEQ},
}

func (l *Lexer) scanOperator(f *frame, first byte, line int) token.Token {
	if pairs, ok := compoundPairs[first]; ok {
		if next, ok2 := f.readByte(); ok2 {
			if id, matched := pairs[next]; matched {
				return token.Token{ID: id, Text: string([]byte{first, next}), Line: line, File: f.file}
			}
			f.unread(next)
		}
	}
	switch first {
	case '(', ')', '{', '}', '[', ']', ';', ',', '.', '?', ':', '~', '=', '!', '>', '<', '+', '-', '*', '/', '%', '&', '|':
		return token.Token{ID: token.ID(first), Text: string(first), Line: line, File: f.file}
	default:
		return l.fail(lexFail, string(first), "unrecognized character")
	}
}
