// Package parser implements the recursive-descent parser that builds the
// typed AST, populates the symbol tables, and performs type inference and
// checking in one pass, per §4.3. Every error is immediately fatal: unlike
// a panic-mode recovery parser that keeps going to report many errors at
// once, this spec treats every lexer/parser/type error as terminal, so the
// parser returns on the first one rather than resynchronizing and
// continuing.
package parser

import (
	"github.com/gmofishsauce/jvmcc/internal/ast"
	"github.com/gmofishsauce/jvmcc/internal/compiler"
	"github.com/gmofishsauce/jvmcc/internal/diag"
	"github.com/gmofishsauce/jvmcc/internal/lexer"
	"github.com/gmofishsauce/jvmcc/internal/symtab"
	"github.com/gmofishsauce/jvmcc/internal/token"
)

// Parser consumes a Lexer's token stream through a small staging buffer
// (up to 3 tokens of lookahead) and builds a Program against a Compiler
// context.
type Parser struct {
	lex     *lexer.Lexer
	c       *compiler.Compiler
	buf     []token.Token // staging/lookahead queue, refilled lazily
	curFunc *symtab.Function
}

// New creates a parser reading from lex and recording symbols/diagnostics
// on c.
func New(lex *lexer.Lexer, c *compiler.Compiler) *Parser {
	return &Parser{lex: lex, c: c}
}

func (p *Parser) fill(n int) {
	for len(p.buf) <= n {
		p.buf = append(p.buf, p.lex.Next())
	}
}

// peek returns the token n positions ahead (0 = current).
func (p *Parser) peek(n int) token.Token {
	p.fill(n)
	return p.buf[n]
}

func (p *Parser) cur() token.Token { return p.peek(0) }

func (p *Parser) advance() token.Token {
	p.fill(0)
	t := p.buf[0]
	p.buf = p.buf[1:]
	return t
}

func (p *Parser) errorAt(t token.Token, msg string, args ...interface{}) error {
	e := diag.NewAt(diag.Parser, t.File, t.Line, displayText(t), msg, args...)
	p.c.Diag.Report(e)
	return e
}

func (p *Parser) typeErrorAt(line int, file, text, msg string, args ...interface{}) error {
	e := diag.NewAt(diag.Type, file, line, text, msg, args...)
	p.c.Diag.Report(e)
	return e
}

func (p *Parser) typeError(line int, file, msg string, args ...interface{}) error {
	e := diag.New(diag.Type, file, line, msg, args...)
	p.c.Diag.Report(e)
	return e
}

func displayText(t token.Token) string {
	if t.Text != "" {
		return t.Text
	}
	if t.ID == token.END {
		return ""
	}
	return string(rune(t.ID))
}

func (p *Parser) expect(id token.ID, what string) (token.Token, error) {
	t := p.cur()
	if t.ID != id {
		return t, p.errorAt(t, "expected %s", what)
	}
	return p.advance(), nil
}

// Parse consumes the whole token stream and returns the program, or the
// first fatal error encountered.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.cur().ID != token.END {
		if err := p.parseTopLevel(prog); err != nil {
			return prog, err
		}
	}
	return prog, nil
}
