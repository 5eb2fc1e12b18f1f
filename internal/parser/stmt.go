package parser

import (
	"github.com/gmofishsauce/jvmcc/internal/ast"
	"github.com/gmofishsauce/jvmcc/internal/token"
	"github.com/gmofishsauce/jvmcc/internal/types"
)

// parseCompound parses a "{ ... }" block. Declarations and statements may
// appear in any order.
func (p *Parser) parseCompound() (*ast.CompoundStmt, error) {
	lb, err := p.expect(token.ID('{'), "'{'")
	if err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for p.cur().ID != token.ID('}') {
		if p.cur().ID == token.END {
			return nil, p.errorAt(p.cur(), "'}'")
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	p.advance() // '}'
	return ast.NewCompound(lb.Line, stmts), nil
}

// isDeclStart reports whether the current position begins a local
// variable declaration rather than a statement.
func (p *Parser) isDeclStart() bool {
	switch p.cur().ID {
	case token.KW_CONST, token.TYPE:
		return true
	case token.KW_STRUCT:
		// "struct IDENT {" at statement scope would be a nested struct
		// definition, which this grammar does not support; "struct IDENT"
		// otherwise is a variable declaration using a struct type.
		return p.peek(1).ID == token.IDENT && p.peek(2).ID != token.ID('{')
	default:
		return false
	}
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	if p.isDeclStart() {
		return p.parseLocalDecl()
	}
	switch p.cur().ID {
	case token.ID(';'):
		p.advance()
		return nil, nil
	case token.ID('{'):
		return p.parseCompound()
	case token.KW_IF:
		return p.parseIf()
	case token.KW_WHILE:
		return p.parseWhile()
	case token.KW_DO:
		return p.parseDo()
	case token.KW_FOR:
		return p.parseFor()
	case token.KW_RETURN:
		return p.parseReturn()
	case token.KW_BREAK:
		t := p.advance()
		if !p.c.InLoop() {
			return nil, p.errorAt(t, "break not inside a loop")
		}
		if _, err := p.expect(token.ID(';'), "';'"); err != nil {
			return nil, err
		}
		return ast.NewBreak(t.Line), nil
	case token.KW_CONTINUE:
		t := p.advance()
		if !p.c.InLoop() {
			return nil, p.errorAt(t, "continue not inside a loop")
		}
		if _, err := p.expect(token.ID(';'), "';'"); err != nil {
			return nil, err
		}
		return ast.NewContinue(t.Line), nil
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseLocalDecl() (ast.Stmt, error) {
	line := p.cur().Line
	baseType, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT, "an identifier")
	if err != nil {
		return nil, err
	}
	decls, err := p.parseDeclaratorTail(baseType, nameTok, false)
	if err != nil {
		return nil, err
	}
	return ast.NewDeclStmt(line, decls), nil
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	line := p.cur().Line
	x, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ID(';'), "';'"); err != nil {
		return nil, err
	}
	return ast.NewExprStmt(line, x), nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	t := p.advance()
	if _, err := p.expect(token.ID('('), "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ID(')'), "')'"); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	if p.cur().ID == token.KW_ELSE {
		p.advance()
		els, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIf(t.Line, cond, then, els), nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	t := p.advance()
	if _, err := p.expect(token.ID('('), "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ID(')'), "')'"); err != nil {
		return nil, err
	}
	p.c.EnterLoop()
	body, err := p.parseStatement()
	p.c.ExitLoop()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(t.Line, cond, body), nil
}

func (p *Parser) parseDo() (ast.Stmt, error) {
	t := p.advance()
	p.c.EnterLoop()
	body, err := p.parseStatement()
	p.c.ExitLoop()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KW_WHILE, "'while'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ID('('), "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ID(')'), "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ID(';'), "';'"); err != nil {
		return nil, err
	}
	return ast.NewDo(t.Line, body, cond), nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	t := p.advance()
	if _, err := p.expect(token.ID('('), "'('"); err != nil {
		return nil, err
	}
	var init, cond, post ast.Expr
	var err error
	if p.cur().ID != token.ID(';') {
		init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.ID(';'), "';'"); err != nil {
		return nil, err
	}
	if p.cur().ID != token.ID(';') {
		cond, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.ID(';'), "';'"); err != nil {
		return nil, err
	}
	if p.cur().ID != token.ID(')') {
		post, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.ID(')'), "')'"); err != nil {
		return nil, err
	}
	p.c.EnterLoop()
	body, err := p.parseStatement()
	p.c.ExitLoop()
	if err != nil {
		return nil, err
	}
	return ast.NewFor(t.Line, init, cond, post, body), nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	t := p.advance()
	var value ast.Expr
	if p.cur().ID != token.ID(';') {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		value = v
	}
	if _, err := p.expect(token.ID(';'), "';'"); err != nil {
		return nil, err
	}
	var retType *types.Type
	if p.curFunc != nil {
		retType = p.curFunc.ReturnType
	}
	if value == nil {
		if retType != nil && retType.Base != types.Void {
			return nil, p.typeError(t.Line, t.File, "missing return value")
		}
	} else {
		if retType == nil {
			return nil, p.typeError(t.Line, t.File, "return outside a function")
		}
		if !value.Type().Equal(retType) && !types.CanWiden(value.Type(), retType) {
			return nil, p.typeError(t.Line, t.File, "return type mismatch")
		}
	}
	return ast.NewReturn(t.Line, value), nil
}
