package parser

import (
	"strconv"
	"strings"

	"github.com/gmofishsauce/jvmcc/internal/ast"
	"github.com/gmofishsauce/jvmcc/internal/token"
	"github.com/gmofishsauce/jvmcc/internal/types"
)

// parseExpression parses a full expression at the top of the precedence
// chain (assignment).
func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	lhs, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	op, isAssign := assignOp(p.cur().ID)
	if !isAssign {
		return lhs, nil
	}
	opTok := p.advance()
	rhs, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if !isLvalue(lhs) {
		return nil, p.typeError(opTok.Line, opTok.File, "assignment target is not an lvalue")
	}
	lt := lhs.Type()
	if lt.IsConst {
		return nil, p.typeError(opTok.Line, opTok.File, "assignment to a const variable")
	}
	if op == ast.PlainAssign {
		if lt.IsArray {
			return nil, p.typeError(opTok.Line, opTok.File, "assignment to an array")
		}
		if !rhs.Type().Equal(lt) && !types.CanWiden(rhs.Type(), lt) {
			return nil, p.typeError(opTok.Line, opTok.File, "incompatible types in assignment")
		}
	} else {
		if !lt.IsNumeric() {
			return nil, p.typeError(opTok.Line, opTok.File, "compound assignment requires a numeric lvalue")
		}
		if !rhs.Type().IsNumeric() {
			return nil, p.typeError(opTok.Line, opTok.File, "compound assignment requires a numeric operand")
		}
	}
	a := ast.NewAssign(opTok.Line, op, lhs, rhs)
	a.SetType(lt)
	return a, nil
}

func assignOp(id token.ID) (ast.CompoundAssignOp, bool) {
	switch id {
	case token.ID('='):
		return ast.PlainAssign, true
	case token.ADDEQ:
		return ast.AddAssign, true
	case token.SUBEQ:
		return ast.SubAssign, true
	case token.MULEQ:
		return ast.MulAssign, true
	case token.DIVEQ:
		return ast.DivAssign, true
	default:
		return 0, false
	}
}

func isLvalue(e ast.Expr) bool {
	switch e.(type) {
	case *ast.IdentExpr, *ast.IndexExpr, *ast.MemberExpr:
		return true
	default:
		return false
	}
}

func (p *Parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.cur().ID != token.ID('?') {
		return cond, nil
	}
	qTok := p.advance()
	if cond.Type().Base == types.Void {
		return nil, p.typeError(qTok.Line, qTok.File, "ternary condition must not be void")
	}
	then, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ID(':'), "':'"); err != nil {
		return nil, err
	}
	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	unified := unify(then.Type(), els.Type())
	if unified == nil {
		return nil, p.typeError(qTok.Line, qTok.File, "ternary branches have incompatible types")
	}
	t := ast.NewTernary(qTok.Line, cond, then, els)
	t.SetType(unified)
	return t, nil
}

func unify(a, b *types.Type) *types.Type {
	if a.Equal(b) {
		return a
	}
	if types.CanWiden(a, b) {
		return b
	}
	if types.CanWiden(b, a) {
		return a
	}
	return nil
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseLogicalAnd, map[token.ID]ast.BinaryOp{token.OROR: ast.LOr})
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseEquality, map[token.ID]ast.BinaryOp{token.ANDAND: ast.LAnd})
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseRelational, map[token.ID]ast.BinaryOp{token.EQEQ: ast.Eq, token.NE: ast.Ne})
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseAdditive, map[token.ID]ast.BinaryOp{
		token.ID('<'): ast.Lt, token.ID('>'): ast.Gt, token.LE: ast.Le, token.GE: ast.Ge,
	})
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseMultiplicative, map[token.ID]ast.BinaryOp{
		token.ID('+'): ast.Add, token.ID('-'): ast.Sub,
	})
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseUnary, map[token.ID]ast.BinaryOp{
		token.ID('*'): ast.Mul, token.ID('/'): ast.Div, token.ID('%'): ast.Mod,
	})
}

func (p *Parser) parseLeftAssoc(next func() (ast.Expr, error), ops map[token.ID]ast.BinaryOp) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.cur().ID]
		if !ok {
			return left, nil
		}
		opTok := p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		resultType, err := p.checkBinary(opTok, op, left, right)
		if err != nil {
			return nil, err
		}
		node := ast.NewBinary(opTok.Line, op, left, right)
		node.SetType(resultType)
		left = node
	}
}

func (p *Parser) checkBinary(opTok token.Token, op ast.BinaryOp, left, right ast.Expr) (*types.Type, error) {
	lt, rt := left.Type(), right.Type()
	if lt.Base == types.Void || rt.Base == types.Void {
		return nil, p.typeError(opTok.Line, opTok.File, "operand of %s must not be void", op)
	}
	if op.IsLogical() || op.IsComparison() {
		return types.IntType, nil
	}
	if !lt.IsNumeric() || !rt.IsNumeric() {
		return nil, p.typeError(opTok.Line, opTok.File, "operands of %s must be numeric", op)
	}
	wide := types.Wider(lt, rt)
	if wide == nil {
		if lt.Equal(rt) {
			wide = lt
		} else {
			return nil, p.typeError(opTok.Line, opTok.File, "incompatible operand types for %s", op)
		}
	}
	if op == ast.Mod && wide.Base == types.Float {
		return nil, p.typeError(opTok.Line, opTok.File, "%% is not permitted on float operands")
	}
	return wide, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	t := p.cur()
	switch t.ID {
	case token.ID('-'):
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if !operand.Type().IsNumeric() {
			return nil, p.typeError(t.Line, t.File, "unary - requires a numeric operand")
		}
		u := ast.NewUnary(t.Line, ast.Neg, operand)
		u.SetType(operand.Type())
		return u, nil
	case token.ID('!'):
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if operand.Type().Base == types.Void {
			return nil, p.typeError(t.Line, t.File, "! requires a non-void operand")
		}
		u := ast.NewUnary(t.Line, ast.Not, operand)
		u.SetType(types.IntType)
		return u, nil
	case token.ID('~'):
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if operand.Type().Base != types.Int {
			return nil, p.typeError(t.Line, t.File, "~ requires an int operand")
		}
		u := ast.NewUnary(t.Line, ast.BitNot, operand)
		u.SetType(types.IntType)
		return u, nil
	case token.INC, token.DEC:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if !isLvalue(operand) || operand.Type().IsConst || !operand.Type().IsNumeric() {
			return nil, p.typeError(t.Line, t.File, "++/-- requires a non-const numeric lvalue")
		}
		op := ast.PreInc
		if t.ID == token.DEC {
			op = ast.PreDec
		}
		u := ast.NewUnary(t.Line, op, operand)
		u.SetType(operand.Type())
		return u, nil
	case token.ID('('):
		if p.isCastAhead() {
			return p.parseCast()
		}
	}
	return p.parsePostfix()
}

// isCastAhead reports whether the token after the current '(' begins a
// type specifier, distinguishing "(int)x" from "(x + y)".
func (p *Parser) isCastAhead() bool {
	next := p.peek(1)
	return next.ID == token.TYPE || next.ID == token.KW_STRUCT || next.ID == token.KW_CONST
}

func (p *Parser) parseCast() (ast.Expr, error) {
	lp := p.advance() // '('
	target, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ID(')'), "')'"); err != nil {
		return nil, err
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if !types.CanCast(operand.Type(), target) {
		return nil, p.typeError(lp.Line, lp.File, "illegal cast from %s to %s", operand.Type(), target)
	}
	c := ast.NewCast(lp.Line, target, operand)
	c.SetType(target)
	return c, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().ID {
		case token.ID('('):
			ident, ok := expr.(*ast.IdentExpr)
			if !ok {
				return nil, p.typeError(p.cur().Line, p.cur().File, "only a function name may be called")
			}
			expr, err = p.finishCall(ident)
			if err != nil {
				return nil, err
			}
		case token.ID('['):
			expr, err = p.finishIndex(expr)
			if err != nil {
				return nil, err
			}
		case token.ID('.'):
			expr, err = p.finishMember(expr)
			if err != nil {
				return nil, err
			}
		case token.INC, token.DEC:
			t := p.advance()
			if !isLvalue(expr) || expr.Type().IsConst || !expr.Type().IsNumeric() {
				return nil, p.typeError(t.Line, t.File, "++/-- requires a non-const numeric lvalue")
			}
			op := ast.PostInc
			if t.ID == token.DEC {
				op = ast.PostDec
			}
			node := ast.NewPostfix(t.Line, op, expr)
			node.SetType(expr.Type())
			return node, nil
		default:
			if id, ok := expr.(*ast.IdentExpr); ok && p.c.Symbols.LookupVariable(id.Name, p.curFunc) == nil {
				return nil, p.typeErrorAt(id.Line(), p.cur().File, id.Name, "function %s used without a call", id.Name)
			}
			return expr, nil
		}
	}
}

func (p *Parser) finishCall(ident *ast.IdentExpr) (ast.Expr, error) {
	lp := p.advance() // '('
	fn := p.c.Symbols.LookupFunction(ident.Name)
	if fn == nil {
		return nil, p.typeErrorAt(lp.Line, lp.File, ident.Name, "call to undeclared function %s", ident.Name)
	}
	var args []ast.Expr
	for p.cur().ID != token.ID(')') {
		if len(args) > 0 {
			if _, err := p.expect(token.ID(','), "','"); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if _, err := p.expect(token.ID(')'), "')'"); err != nil {
		return nil, err
	}
	if len(args) != len(fn.Params) {
		return nil, p.typeErrorAt(lp.Line, lp.File, ident.Name, "call to %s has %d arguments, expected %d", ident.Name, len(args), len(fn.Params))
	}
	for i, arg := range args {
		want := fn.Params[i].Type
		if !arg.Type().Equal(want) && !types.CanWiden(arg.Type(), want) {
			return nil, p.typeErrorAt(lp.Line, lp.File, ident.Name, "argument %d to %s has incompatible type", i+1, ident.Name)
		}
	}
	call := ast.NewCall(lp.Line, ident.Name, args)
	call.SetType(fn.ReturnType)
	return call, nil
}

func (p *Parser) finishIndex(arr ast.Expr) (ast.Expr, error) {
	lb := p.advance() // '['
	if !arr.Type().IsArray {
		return nil, p.typeError(lb.Line, lb.File, "indexing target is not an array")
	}
	idx, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if idx.Type().Base != types.Int {
		return nil, p.typeError(lb.Line, lb.File, "array index must be int")
	}
	if _, err := p.expect(token.ID(']'), "']'"); err != nil {
		return nil, err
	}
	node := ast.NewIndex(lb.Line, arr, idx)
	node.SetType(arr.Type().Element())
	return node, nil
}

func (p *Parser) finishMember(obj ast.Expr) (ast.Expr, error) {
	dot := p.advance() // '.'
	nameTok, err := p.expect(token.IDENT, "a member name")
	if err != nil {
		return nil, err
	}
	if obj.Type().Base != types.Struct {
		return nil, p.typeError(dot.Line, dot.File, "member selection on a non-struct value")
	}
	def := p.c.Symbols.LookupStruct(obj.Type().StructName)
	if def == nil {
		return nil, p.typeErrorAt(dot.Line, dot.File, obj.Type().StructName, "unknown struct %s", obj.Type().StructName)
	}
	member := def.FindMember(nameTok.Text)
	if member == nil {
		return nil, p.typeErrorAt(nameTok.Line, nameTok.File, nameTok.Text, "struct %s has no member %s", def.Name, nameTok.Text)
	}
	mt := member.Type
	if obj.Type().IsConst {
		mt = mt.WithConst()
	}
	node := ast.NewMember(dot.Line, obj, nameTok.Text)
	node.SetType(mt)
	return node, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	t := p.cur()
	switch t.ID {
	case token.INT:
		p.advance()
		v, _ := strconv.ParseInt(t.Text, 10, 64)
		lit := ast.NewLiteral(t.Line, ast.IntLit)
		lit.IntVal = v
		lit.SetType(types.IntType)
		return lit, nil
	case token.HEX:
		p.advance()
		v, _ := strconv.ParseInt(strings.TrimPrefix(t.Text, "0x"), 16, 64)
		lit := ast.NewLiteral(t.Line, ast.IntLit)
		lit.IntVal = v
		lit.SetType(types.IntType)
		return lit, nil
	case token.REAL:
		p.advance()
		v, _ := strconv.ParseFloat(t.Text, 64)
		lit := ast.NewLiteral(t.Line, ast.FloatLit)
		lit.FltVal = v
		lit.SetType(types.FloatType)
		return lit, nil
	case token.CHAR:
		p.advance()
		lit := ast.NewLiteral(t.Line, ast.CharLit)
		lit.StrVal = t.Text
		lit.IntVal = int64(decodeCharLiteral(t.Text))
		lit.SetType(types.CharType)
		return lit, nil
	case token.STRING:
		p.advance()
		lit := ast.NewLiteral(t.Line, ast.StringLit)
		lit.StrVal = t.Text
		lit.SetType(types.CharType.WithArray().WithConst())
		return lit, nil
	case token.IDENT:
		p.advance()
		ident := ast.NewIdent(t.Line, t.Text)
		sym := p.c.Symbols.LookupVariable(t.Text, p.curFunc)
		if sym != nil {
			ident.SetType(sym.Type)
			return ident, nil
		}
		if p.c.Symbols.LookupFunction(t.Text) != nil {
			// Bare reference to a function name outside a call position is
			// not a value in this language; let the caller (parsePostfix)
			// decide: if '(' follows this is a call, otherwise it's an error.
			ident.SetType(types.VoidType)
			return ident, nil
		}
		return nil, p.typeErrorAt(t.Line, t.File, t.Text, "undeclared identifier %s", t.Text)
	case token.ID('('):
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ID(')'), "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, p.errorAt(t, "an expression")
	}
}

func decodeCharLiteral(raw string) byte {
	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "'"), "'")
	if len(inner) == 1 {
		return inner[0]
	}
	if len(inner) == 2 && inner[0] == '\\' {
		switch inner[1] {
		case 'a':
			return 7
		case 'b':
			return 8
		case 'n':
			return '\n'
		case 'r':
			return '\r'
		case '\\':
			return '\\'
		case '\'':
			return '\''
		}
	}
	return 0
}
