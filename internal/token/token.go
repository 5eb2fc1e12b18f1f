// Package token defines the lexical token representation shared by the
// lexer, parser, and listing writers.
package token

import "fmt"

// ID identifies a token's lexical class. The space partitions the way the
// language's own lexer table does: single ASCII punctuators keep their
// character code, everything else lives above ASCII range.
type ID int

// Single-character punctuators use their own ASCII value as the ID, so
// '(' is ID('(') and so on; they are not enumerated here.

const (
	END ID = 0 // sentinel returned once the input is exhausted

	// Two-character operators.
	EQEQ  ID = 351 // ==
	NE    ID = 352 // !=
	GE    ID = 353 // >=
	LE    ID = 354 // <=
	INC   ID = 355 // ++
	DEC   ID = 356 // --
	OROR  ID = 357 // ||
	ANDAND ID = 358 // &&
	ADDEQ ID = 359 // +=
	SUBEQ ID = 360 // -=
	MULEQ ID = 361 // *=
	DIVEQ ID = 362 // /=

	// Literal classes.
	CHAR   ID = 302
	INT    ID = 303
	REAL   ID = 304
	STRING ID = 305
	HEX    ID = 307

	IDENT ID = 306
	TYPE  ID = 301 // type keyword: void, char, int, float

	// Reserved keywords. The ID space reserves 401-413 for keywords; this
	// grammar uses ten of them, the remainder are reserved and unassigned.
	KW_CONST    ID = 401
	KW_STRUCT   ID = 402
	KW_IF       ID = 403
	KW_ELSE     ID = 404
	KW_WHILE    ID = 405
	KW_DO       ID = 406
	KW_FOR      ID = 407
	KW_RETURN   ID = 408
	KW_BREAK    ID = 409
	KW_CONTINUE ID = 410
)

var keywords = map[string]ID{
	"const":    KW_CONST,
	"struct":   KW_STRUCT,
	"if":       KW_IF,
	"else":     KW_ELSE,
	"while":    KW_WHILE,
	"do":       KW_DO,
	"for":      KW_FOR,
	"return":   KW_RETURN,
	"break":    KW_BREAK,
	"continue": KW_CONTINUE,
}

var typeNames = map[string]bool{
	"void":  true,
	"char":  true,
	"int":   true,
	"float": true,
}

// LookupKeyword reports whether name is one of the ten keywords this
// grammar assigns, returning its ID if so.
func LookupKeyword(name string) (ID, bool) {
	id, ok := keywords[name]
	return id, ok
}

// IsTypeName reports whether name is one of the 4 built-in type names.
func IsTypeName(name string) bool {
	return typeNames[name]
}

// Token is a single lexical unit: a class tag, optional literal text, and
// the source line it started on. Tokens are produced, consumed once by the
// parser, and discarded; nothing in the pipeline retains a token past the
// statement or declaration it belongs to.
type Token struct {
	ID   ID
	Text string
	Line int
	File string
}

// String renders a token the way the `-1` lexer listing requires:
// "File <f> Line <n> Token <id> Text <lexeme>".
func (t Token) String() string {
	return fmt.Sprintf("File %s Line %d Token %d Text %s", t.File, t.Line, int(t.ID), t.Text)
}
