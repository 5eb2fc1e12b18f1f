package parser

import (
	"github.com/gmofishsauce/jvmcc/internal/ast"
	"github.com/gmofishsauce/jvmcc/internal/symtab"
	"github.com/gmofishsauce/jvmcc/internal/token"
	"github.com/gmofishsauce/jvmcc/internal/types"
)

// parseTopLevel implements the TOP state machine of §4.3: a leading
// 'struct IDENT {' is a struct definition, otherwise a typeSpec followed
// by IDENT is either a function (next token '(') or one or more variable
// declarations.
func (p *Parser) parseTopLevel(prog *ast.Program) error {
	if p.cur().ID == token.KW_STRUCT && p.peek(1).ID == token.IDENT && p.peek(2).ID == token.ID('{') {
		sd, err := p.parseStructDef()
		if err != nil {
			return err
		}
		prog.Structs = append(prog.Structs, sd)
		return nil
	}

	baseType, err := p.parseTypeSpec()
	if err != nil {
		return err
	}
	nameTok, err := p.expect(token.IDENT, "an identifier")
	if err != nil {
		return err
	}

	if p.cur().ID == token.ID('(') {
		fd, err := p.parseFuncDef(baseType, nameTok)
		if err != nil {
			return err
		}
		prog.Funcs = append(prog.Funcs, fd)
		return nil
	}

	decls, err := p.parseDeclaratorTail(baseType, nameTok, true)
	if err != nil {
		return err
	}
	prog.Globals = append(prog.Globals, decls...)
	return nil
}

// parseTypeSpec parses 'const'? (TYPE | 'struct' IDENT) 'const'?.
func (p *Parser) parseTypeSpec() (*types.Type, error) {
	isConst := false
	if p.cur().ID == token.KW_CONST {
		p.advance()
		isConst = true
	}

	var t *types.Type
	switch p.cur().ID {
	case token.TYPE:
		tok := p.advance()
		t = baseTypeFromName(tok.Text)
	case token.KW_STRUCT:
		p.advance()
		nameTok, err := p.expect(token.IDENT, "a struct name")
		if err != nil {
			return nil, err
		}
		t = types.NewStruct(nameTok.Text)
	default:
		return nil, p.errorAt(p.cur(), "expected a type")
	}

	if p.cur().ID == token.KW_CONST {
		p.advance()
		isConst = true
	}
	if isConst {
		t = t.WithConst()
	}
	return t, nil
}

func baseTypeFromName(name string) *types.Type {
	switch name {
	case "void":
		return &types.Type{Base: types.Void}
	case "char":
		return &types.Type{Base: types.Char}
	case "int":
		return &types.Type{Base: types.Int}
	case "float":
		return &types.Type{Base: types.Float}
	default:
		return &types.Type{Base: types.Void}
	}
}

// parseDeclaratorTail parses, having already consumed a typeSpec and the
// first IDENT, the remainder of a declaration list:
// ('[' INT ']')? ('=' assignExpr)? (',' IDENT ...)* ';'.
func (p *Parser) parseDeclaratorTail(baseType *types.Type, firstName token.Token, isGlobal bool) ([]*ast.VarDecl, error) {
	var decls []*ast.VarDecl
	name := firstName
	for {
		vd, err := p.parseOneDeclarator(baseType, name, isGlobal)
		if err != nil {
			return decls, err
		}
		decls = append(decls, vd)
		if p.cur().ID == token.ID(',') {
			p.advance()
			nameTok, err := p.expect(token.IDENT, "an identifier")
			if err != nil {
				return decls, err
			}
			name = nameTok
			continue
		}
		break
	}
	if _, err := p.expect(token.ID(';'), "';'"); err != nil {
		return decls, err
	}
	return decls, nil
}

func (p *Parser) parseOneDeclarator(baseType *types.Type, nameTok token.Token, isGlobal bool) (*ast.VarDecl, error) {
	declType := baseType
	if p.cur().ID == token.ID('[') {
		p.advance()
		if _, err := p.expect(token.INT, "an array length"); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ID(']'), "']'"); err != nil {
			return nil, err
		}
		declType = baseType.WithArray()
	}

	vd := &ast.VarDecl{Name: nameTok.Text, Type: declType, Line: nameTok.Line, File: nameTok.File}
	if p.cur().ID == token.ID('=') {
		p.advance()
		init, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if err := p.checkAssignable(declType, init, nameTok.Line, nameTok.File); err != nil {
			return nil, err
		}
		vd.Init = init
		vd.HasInit = true
	}

	if p.c.Symbols.DeclaredInScope(vd.Name, isGlobal, p.curFunc) {
		return nil, p.typeErrorAt(nameTok.Line, nameTok.File, nameTok.Text, "duplicate declaration of %s", vd.Name)
	}

	sym := p.c.Symbols.AddVariable(vd.Name, declType, isGlobal, p.curFunc)
	if vd.HasInit {
		sym.HasInit = true
	}
	return vd, nil
}

func (p *Parser) parseStructDef() (*ast.StructDecl, error) {
	line := p.cur().Line
	p.advance() // 'struct'
	nameTok, err := p.expect(token.IDENT, "a struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ID('{'), "'{'"); err != nil {
		return nil, err
	}
	sd := &ast.StructDecl{Name: nameTok.Text, Line: line, File: nameTok.File}
	def := &symtab.StructDef{Name: nameTok.Text}
	seen := map[string]bool{}
	for p.cur().ID != token.ID('}') {
		memberType, err := p.parseTypeSpec()
		if err != nil {
			return nil, err
		}
		first := true
		for {
			var memberName token.Token
			if first {
				memberName, err = p.expect(token.IDENT, "a member name")
				first = false
			} else {
				p.advance() // ','
				memberName, err = p.expect(token.IDENT, "a member name")
			}
			if err != nil {
				return nil, err
			}
			mt := memberType
			if p.cur().ID == token.ID('[') {
				p.advance()
				if _, err := p.expect(token.INT, "an array length"); err != nil {
					return nil, err
				}
				if _, err := p.expect(token.ID(']'), "']'"); err != nil {
					return nil, err
				}
				mt = memberType.WithArray()
			}
			if seen[memberName.Text] {
				return nil, p.typeErrorAt(memberName.Line, memberName.File, memberName.Text, "duplicate member name in struct %s", nameTok.Text)
			}
			seen[memberName.Text] = true
			sd.Members = append(sd.Members, ast.StructMember{Name: memberName.Text, Type: mt, Line: memberName.Line, File: memberName.File})
			def.Members = append(def.Members, symtab.VarSymbol{Name: memberName.Text, Type: mt})
			if p.cur().ID != token.ID(',') {
				break
			}
		}
		if _, err := p.expect(token.ID(';'), "';'"); err != nil {
			return nil, err
		}
	}
	p.advance() // '}'
	if _, err := p.expect(token.ID(';'), "';'"); err != nil {
		return nil, err
	}
	if p.c.Symbols.LookupStruct(nameTok.Text) != nil {
		return nil, p.typeErrorAt(line, nameTok.File, nameTok.Text, "duplicate struct definition")
	}
	p.c.Symbols.AddStruct(def)
	return sd, nil
}

func (p *Parser) parseFuncDef(retType *types.Type, nameTok token.Token) (*ast.FuncDecl, error) {
	p.advance() // '('
	fd := &ast.FuncDecl{Name: nameTok.Text, ReturnType: retType, Line: nameTok.Line, File: nameTok.File}
	fn := &symtab.Function{Name: nameTok.Text, ReturnType: retType}

	for p.cur().ID != token.ID(')') {
		if len(fn.Params) > 0 {
			if _, err := p.expect(token.ID(','), "','"); err != nil {
				return nil, err
			}
		}
		pt, err := p.parseTypeSpec()
		if err != nil {
			return nil, err
		}
		pnTok, err := p.expect(token.IDENT, "a parameter name")
		if err != nil {
			return nil, err
		}
		if p.cur().ID == token.ID('[') {
			p.advance()
			if _, err := p.expect(token.ID(']'), "']'"); err != nil {
				return nil, err
			}
			pt = pt.WithArray()
		}
		fd.Params = append(fd.Params, ast.Param{Name: pnTok.Text, Type: pt, Line: pnTok.Line, File: pnTok.File})
		fn.Params = append(fn.Params, &symtab.VarSymbol{Name: pnTok.Text, Type: pt, LocalIndex: len(fn.Params)})
	}
	if _, err := p.expect(token.ID(')'), "')'"); err != nil {
		return nil, err
	}

	existing := p.c.Symbols.LookupFunction(nameTok.Text)
	if existing != nil {
		if !symtab.SignatureEqual(existing, fn) {
			return nil, p.typeErrorAt(nameTok.Line, nameTok.File, nameTok.Text, "prototype for %s differs from previous declaration", nameTok.Text)
		}
	} else {
		p.c.Symbols.AddFunction(fn)
		existing = fn
	}

	if p.cur().ID == token.ID(';') {
		p.advance()
		return fd, nil
	}

	if existing.Defined {
		return nil, p.typeErrorAt(nameTok.Line, nameTok.File, nameTok.Text, "redefinition of function %s", nameTok.Text)
	}

	prevFunc := p.curFunc
	p.curFunc = existing
	body, err := p.parseCompound()
	p.curFunc = prevFunc
	if err != nil {
		return nil, err
	}
	body.Func = fd
	fd.Body = body
	existing.Defined = true
	symtab.FinalizeLocals(existing)
	return fd, nil
}
