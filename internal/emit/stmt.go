package emit

import (
	"github.com/gmofishsauce/jvmcc/internal/ast"
	"github.com/gmofishsauce/jvmcc/internal/diag"
	"github.com/gmofishsauce/jvmcc/internal/types"
)

// emitStmt lowers one statement. Statements leave the operand stack at
// the same depth they found it, except where a sub-expression's value is
// deliberately discarded (an ExprStmt pops what its expression pushed).
func (fe *funcEmitter) emitStmt(s ast.Stmt) error {
	switch st := s.(type) {
	case *ast.CompoundStmt:
		for _, inner := range st.Stmts {
			if err := fe.emitStmt(inner); err != nil {
				return err
			}
			if _, returned := inner.(*ast.ReturnStmt); returned {
				break
			}
		}
		return nil
	case *ast.DeclStmt:
		return fe.emitDeclStmt(st)
	case *ast.ExprStmt:
		if st.X == nil {
			return nil
		}
		if err := fe.emitExpr(st.X); err != nil {
			return err
		}
		if st.X.Type().Base != types.Void {
			fe.instr0("pop")
			fe.pop()
		}
		return nil
	case *ast.ReturnStmt:
		return fe.emitReturn(st)
	case *ast.IfStmt:
		return fe.emitIf(st)
	case *ast.WhileStmt:
		return fe.emitWhile(st)
	case *ast.DoStmt:
		return fe.emitDo(st)
	case *ast.ForStmt:
		return fe.emitFor(st)
	case *ast.BreakStmt:
		fe.instr1("goto", fe.currentBreak())
		return nil
	case *ast.ContinueStmt:
		fe.instr1("goto", fe.currentContinue())
		return nil
	default:
		return diag.New(diag.Internal, fe.c.File, s.Line(), "unhandled statement node in emitter")
	}
}

func (fe *funcEmitter) emitDeclStmt(d *ast.DeclStmt) error {
	for _, vd := range d.Decls {
		if !vd.HasInit {
			continue
		}
		sym := fe.c.Symbols.LookupVariable(vd.Name, fe.fn)
		if sym == nil {
			return diag.New(diag.Internal, fe.c.File, vd.Line, "local %s unresolved at emission", vd.Name)
		}
		if err := fe.emitExpr(vd.Init); err != nil {
			return err
		}
		fe.emitConvert(vd.Init.Type(), sym.Type)
		fe.instr1(slotPrefix(sym.Type)+"store", sym.LocalIndex)
		fe.pop()
	}
	return nil
}

func (fe *funcEmitter) emitReturn(r *ast.ReturnStmt) error {
	if r.Value == nil {
		fe.instr0("return")
		return nil
	}
	if err := fe.emitExpr(r.Value); err != nil {
		return err
	}
	retType := types.VoidType
	if fe.fn != nil {
		retType = fe.fn.ReturnType
	}
	fe.emitConvert(r.Value.Type(), retType)
	fe.instr0(slotPrefix(retType) + "return")
	fe.pop()
	return nil
}

func (fe *funcEmitter) emitIf(st *ast.IfStmt) error {
	elseLbl := fe.newLabel("ifelse")
	endLbl := fe.newLabel("ifend")

	if err := fe.emitExpr(st.Cond); err != nil {
		return err
	}
	fe.instr1("ifeq", elseLbl)
	fe.pop()
	if err := fe.emitStmt(st.Then); err != nil {
		return err
	}
	if st.Else != nil {
		fe.instr1("goto", endLbl)
		fe.label(elseLbl)
		if err := fe.emitStmt(st.Else); err != nil {
			return err
		}
		fe.label(endLbl)
	} else {
		fe.label(elseLbl)
	}
	return nil
}

func (fe *funcEmitter) emitWhile(st *ast.WhileStmt) error {
	topLbl := fe.newLabel("whiletop")
	endLbl := fe.newLabel("whileend")

	fe.label(topLbl)
	if err := fe.emitExpr(st.Cond); err != nil {
		return err
	}
	fe.instr1("ifeq", endLbl)
	fe.pop()

	fe.pushLoop(endLbl, topLbl)
	err := fe.emitStmt(st.Body)
	fe.popLoop()
	if err != nil {
		return err
	}
	fe.instr1("goto", topLbl)
	fe.label(endLbl)
	return nil
}

func (fe *funcEmitter) emitDo(st *ast.DoStmt) error {
	topLbl := fe.newLabel("dotop")
	contLbl := fe.newLabel("docont")
	endLbl := fe.newLabel("doend")

	fe.label(topLbl)
	fe.pushLoop(endLbl, contLbl)
	err := fe.emitStmt(st.Body)
	fe.popLoop()
	if err != nil {
		return err
	}
	fe.label(contLbl)
	if err := fe.emitExpr(st.Cond); err != nil {
		return err
	}
	fe.instr1("ifne", topLbl)
	fe.pop()
	fe.label(endLbl)
	return nil
}

func (fe *funcEmitter) emitFor(st *ast.ForStmt) error {
	topLbl := fe.newLabel("fortop")
	contLbl := fe.newLabel("forcont")
	endLbl := fe.newLabel("forend")

	if st.Init != nil {
		if err := fe.emitExpr(st.Init); err != nil {
			return err
		}
		if st.Init.Type().Base != types.Void {
			fe.instr0("pop")
			fe.pop()
		}
	}

	fe.label(topLbl)
	if st.Cond != nil {
		if err := fe.emitExpr(st.Cond); err != nil {
			return err
		}
		fe.instr1("ifeq", endLbl)
		fe.pop()
	}

	fe.pushLoop(endLbl, contLbl)
	err := fe.emitStmt(st.Body)
	fe.popLoop()
	if err != nil {
		return err
	}

	fe.label(contLbl)
	if st.Post != nil {
		if err := fe.emitExpr(st.Post); err != nil {
			return err
		}
		if st.Post.Type().Base != types.Void {
			fe.instr0("pop")
			fe.pop()
		}
	}
	fe.instr1("goto", topLbl)
	fe.label(endLbl)
	return nil
}
