package emit

import (
	"fmt"

	"github.com/gmofishsauce/jvmcc/internal/ast"
	"github.com/gmofishsauce/jvmcc/internal/diag"
	"github.com/gmofishsauce/jvmcc/internal/types"
)

// emitExpr lowers e, leaving exactly one value of e.Type()'s JVM
// representation on top of the operand stack.
func (fe *funcEmitter) emitExpr(e ast.Expr) error {
	switch x := e.(type) {
	case *ast.LiteralExpr:
		return fe.emitLiteral(x)
	case *ast.IdentExpr:
		return fe.emitIdentLoad(x)
	case *ast.BinaryExpr:
		return fe.emitBinary(x)
	case *ast.UnaryExpr:
		return fe.emitUnary(x)
	case *ast.PostfixExpr:
		return fe.emitPostfix(x)
	case *ast.AssignExpr:
		return fe.emitAssign(x)
	case *ast.CastExpr:
		return fe.emitCast(x)
	case *ast.CallExpr:
		return fe.emitCall(x)
	case *ast.IndexExpr:
		return fe.emitIndexLoad(x)
	case *ast.MemberExpr:
		return diag.New(diag.Internal, fe.c.File, x.Line(), "struct member codegen is not supported by this backend")
	case *ast.TernaryExpr:
		return fe.emitTernary(x)
	default:
		return diag.New(diag.Internal, fe.c.File, e.Line(), "unhandled expression node in emitter")
	}
}

func (fe *funcEmitter) emitLiteral(lit *ast.LiteralExpr) error {
	switch lit.Kind {
	case ast.IntLit, ast.CharLit:
		fe.pushIntConst(lit.IntVal)
	case ast.FloatLit:
		fe.pushFloatConst(lit.FltVal)
		fe.push()
	case ast.StringLit:
		// StrVal is the literal's source text, quotes and escapes included,
		// which is already the assembler's string syntax.
		fe.instr1("ldc", lit.StrVal)
		fe.push()
		fe.instr1("invokestatic", methodRef(fe.runtimeClass, "java2c", "(Ljava/lang/String;)[C"))
	}
	return nil
}

// pushIntConst emits the shortest literal-int form: iconst_<n> for
// -1..5, bipush for the rest of the signed byte range, else ldc.
func (fe *funcEmitter) pushIntConst(v int64) {
	switch {
	case v >= -1 && v <= 5:
		if v == -1 {
			fe.instr0("iconst_m1")
		} else {
			fe.instr0(fmt.Sprintf("iconst_%d", v))
		}
	case v >= -128 && v <= 127:
		fe.instr1("bipush", v)
	default:
		fe.instr1("ldc", v)
	}
	fe.push()
}

func (fe *funcEmitter) pushFloatConst(v float64) {
	switch v {
	case 0:
		fe.instr0("fconst_0")
	case 1:
		fe.instr0("fconst_1")
	case 2:
		fe.instr0("fconst_2")
	default:
		fe.instr1("ldc", fmt.Sprintf("%gf", v))
	}
}

func (fe *funcEmitter) emitIdentLoad(id *ast.IdentExpr) error {
	if fe.fn != nil {
		if sym := fe.c.Symbols.LookupVariable(id.Name, fe.fn); sym != nil && !sym.IsGlobal {
			fe.instr1(slotPrefix(sym.Type)+"load", sym.LocalIndex)
			fe.push()
			return nil
		}
	}
	sym := fe.c.Symbols.LookupVariable(id.Name, nil)
	if sym == nil {
		return diag.New(diag.Internal, fe.c.File, id.Line(), "identifier %s unresolved at emission", id.Name)
	}
	fe.instr1("getstatic", fieldRef(fe.className, sym.Name, sym.Type.JVMDescriptor()))
	fe.push()
	return nil
}

// emitConvert inserts the widening/narrowing instruction to turn a value
// of type from, already on the stack, into a value of type to. A no-op
// when the representations coincide (char and int share one).
func (fe *funcEmitter) emitConvert(from, to *types.Type) {
	if from.Base == to.Base {
		return
	}
	switch {
	case from.Base == types.Char && to.Base == types.Int:
		// same int-width representation, nothing to do
	case from.Base == types.Int && to.Base == types.Char:
		fe.instr0("i2c")
	case (from.Base == types.Int || from.Base == types.Char) && to.Base == types.Float:
		fe.instr0("i2f")
	case from.Base == types.Float && to.Base == types.Int:
		fe.instr0("f2i")
	case from.Base == types.Float && to.Base == types.Char:
		fe.instr0("f2i")
		fe.instr0("i2c")
	}
}

func (fe *funcEmitter) emitBinary(b *ast.BinaryExpr) error {
	if b.Op.IsLogical() {
		return fe.emitLogical(b)
	}
	if b.Op.IsComparison() {
		return fe.emitComparison(b)
	}
	wide := b.Type()
	if err := fe.emitExpr(b.Left); err != nil {
		return err
	}
	fe.emitConvert(b.Left.Type(), wide)
	if err := fe.emitExpr(b.Right); err != nil {
		return err
	}
	fe.emitConvert(b.Right.Type(), wide)
	prefix := slotPrefix(wide)
	switch b.Op {
	case ast.Add:
		fe.instr0(prefix + "add")
	case ast.Sub:
		fe.instr0(prefix + "sub")
	case ast.Mul:
		fe.instr0(prefix + "mul")
	case ast.Div:
		fe.instr0(prefix + "div")
	case ast.Mod:
		fe.instr0(prefix + "rem")
	}
	fe.pop() // two operands consumed, one result produced: net -1
	return nil
}

func (fe *funcEmitter) emitComparison(b *ast.BinaryExpr) error {
	wide := types.Wider(b.Left.Type(), b.Right.Type())
	if wide == nil {
		wide = b.Left.Type()
	}
	if err := fe.emitExpr(b.Left); err != nil {
		return err
	}
	fe.emitConvert(b.Left.Type(), wide)
	if err := fe.emitExpr(b.Right); err != nil {
		return err
	}
	fe.emitConvert(b.Right.Type(), wide)

	trueLbl := fe.newLabel("cmptrue")
	endLbl := fe.newLabel("cmpend")

	if wide.Base == types.Float {
		fe.instr0("fcmpl")
		fe.popN(2)
		fe.push() // fcmpl leaves one int comparison result
		fe.instr1(cmpZeroOp(b.Op), trueLbl)
		fe.pop()
	} else {
		fe.instr1(cmpIntOp(b.Op), trueLbl)
		fe.popN(2)
	}
	fe.instr0("iconst_0")
	fe.push()
	fe.instr1("goto", endLbl)
	fe.pop() // the two branches are mutually exclusive at runtime
	fe.label(trueLbl)
	fe.instr0("iconst_1")
	fe.push()
	fe.label(endLbl)
	return nil
}

func cmpIntOp(op ast.BinaryOp) string {
	switch op {
	case ast.Eq:
		return "if_icmpeq"
	case ast.Ne:
		return "if_icmpne"
	case ast.Lt:
		return "if_icmplt"
	case ast.Le:
		return "if_icmple"
	case ast.Gt:
		return "if_icmpgt"
	default:
		return "if_icmpge"
	}
}

func cmpZeroOp(op ast.BinaryOp) string {
	switch op {
	case ast.Eq:
		return "ifeq"
	case ast.Ne:
		return "ifne"
	case ast.Lt:
		return "iflt"
	case ast.Le:
		return "ifle"
	case ast.Gt:
		return "ifgt"
	default:
		return "ifge"
	}
}

func (fe *funcEmitter) emitLogical(b *ast.BinaryExpr) error {
	shortLbl := fe.newLabel("short")
	endLbl := fe.newLabel("end")
	branchOp := "ifeq" // && : short-circuit to false when left is 0
	if b.Op == ast.LOr {
		branchOp = "ifne" // || : short-circuit to true when left is nonzero
	}

	if err := fe.emitExpr(b.Left); err != nil {
		return err
	}
	fe.instr1(branchOp, shortLbl)
	fe.pop()
	if err := fe.emitExpr(b.Right); err != nil {
		return err
	}
	fe.instr1(branchOp, shortLbl)
	fe.pop()

	if b.Op == ast.LAnd {
		fe.instr0("iconst_1")
	} else {
		fe.instr0("iconst_0")
	}
	fe.push()
	fe.instr1("goto", endLbl)
	fe.pop()
	fe.label(shortLbl)
	if b.Op == ast.LAnd {
		fe.instr0("iconst_0")
	} else {
		fe.instr0("iconst_1")
	}
	fe.push()
	fe.label(endLbl)
	return nil
}

func (fe *funcEmitter) emitUnary(u *ast.UnaryExpr) error {
	switch u.Op {
	case ast.Neg:
		if err := fe.emitExpr(u.Operand); err != nil {
			return err
		}
		fe.instr0(slotPrefix(u.Type()) + "neg")
		return nil
	case ast.Not:
		if err := fe.emitExpr(u.Operand); err != nil {
			return err
		}
		falseLbl := fe.newLabel("nottrue")
		endLbl := fe.newLabel("notend")
		fe.instr1("ifne", falseLbl)
		fe.pop()
		fe.instr0("iconst_1")
		fe.push()
		fe.instr1("goto", endLbl)
		fe.pop()
		fe.label(falseLbl)
		fe.instr0("iconst_0")
		fe.push()
		fe.label(endLbl)
		return nil
	case ast.BitNot:
		if err := fe.emitExpr(u.Operand); err != nil {
			return err
		}
		fe.instr0("iconst_m1")
		fe.push()
		fe.instr0("ixor")
		fe.pop()
		return nil
	case ast.PreInc, ast.PreDec:
		return fe.emitIncDec(u.Operand, u.Op == ast.PreInc, true)
	default:
		return diag.New(diag.Internal, fe.c.File, u.Line(), "unhandled unary operator")
	}
}

func (fe *funcEmitter) emitPostfix(p *ast.PostfixExpr) error {
	return fe.emitIncDec(p.Operand, p.Op == ast.PostInc, false)
}

// emitIncDec lowers ++/-- on a numeric lvalue. A local int/char uses
// iinc directly on the slot, leaving the pre- or post-value on the
// stack by ordering the reload relative to the iinc. Everything else
// (globals, local floats) uses an explicit load/compute/store sequence.
func (fe *funcEmitter) emitIncDec(operand ast.Expr, isInc, isPrefix bool) error {
	delta := 1
	if !isInc {
		delta = -1
	}
	id, isIdent := operand.(*ast.IdentExpr)
	if isIdent && fe.fn != nil {
		if sym := fe.c.Symbols.LookupVariable(id.Name, fe.fn); sym != nil && !sym.IsGlobal && sym.Type.Base != types.Float {
			if isPrefix {
				fe.instr2("iinc", sym.LocalIndex, delta)
				fe.instr1("iload", sym.LocalIndex)
				fe.push()
			} else {
				fe.instr1("iload", sym.LocalIndex)
				fe.push()
				fe.instr2("iinc", sym.LocalIndex, delta)
			}
			return nil
		}
	}
	return fe.emitGenericIncDec(operand, delta, isPrefix)
}

// emitGenericIncDec handles globals and local floats via an explicit
// load/dup/const/op/[dup]/store sequence, since iinc only operates on
// int-slotted local variables. The prefix form dups the freshly computed
// value before storing, so the stored copy and the result copy are the
// same value; the postfix form dups the original value before computing,
// so the result copy is the pre-update value.
func (fe *funcEmitter) emitGenericIncDec(operand ast.Expr, delta int, isPrefix bool) error {
	id, ok := operand.(*ast.IdentExpr)
	if !ok {
		return diag.New(diag.Internal, fe.c.File, operand.Line(), "++/-- on an indexed or member lvalue is not supported by this backend")
	}
	t := operand.Type()
	prefix := slotPrefix(t)
	opName := prefix + "add"
	if delta < 0 {
		opName = prefix + "sub"
	}
	if err := fe.emitExpr(operand); err != nil {
		return err
	}
	if !isPrefix {
		fe.instr0("dup")
		fe.push()
	}
	if t.Base == types.Float {
		fe.pushFloatConst(1)
		fe.push()
	} else {
		fe.pushIntConst(1)
	}
	fe.instr0(opName)
	fe.popN(2)
	fe.push()
	if isPrefix {
		fe.instr0("dup")
		fe.push()
	}
	return fe.storeLvalue(id)
}

// storeLvalue pops the top-of-stack value and stores it into operand.
// Any value the caller wants to retain as an expression result must
// already be duplicated below it before calling storeLvalue.
func (fe *funcEmitter) storeLvalue(operand ast.Expr) error {
	id, ok := operand.(*ast.IdentExpr)
	if !ok {
		return diag.New(diag.Internal, fe.c.File, operand.Line(), "++/-- lvalue must be an identifier")
	}
	if fe.fn != nil {
		if sym := fe.c.Symbols.LookupVariable(id.Name, fe.fn); sym != nil && !sym.IsGlobal {
			fe.instr1(slotPrefix(sym.Type)+"store", sym.LocalIndex)
			fe.pop()
			return nil
		}
	}
	sym := fe.c.Symbols.LookupVariable(id.Name, nil)
	if sym == nil {
		return diag.New(diag.Internal, fe.c.File, operand.Line(), "identifier %s unresolved at emission", id.Name)
	}
	fe.instr1("putstatic", fieldRef(fe.className, sym.Name, sym.Type.JVMDescriptor()))
	fe.pop()
	return nil
}

func (fe *funcEmitter) emitAssign(a *ast.AssignExpr) error {
	if a.Op == ast.PlainAssign {
		return fe.emitStoreComputed(a.LHS, a.RHS)
	}
	// Compound assignment to an indexed lvalue must evaluate the array and
	// index once, not once for the read and again for the write, so this
	// doesn't go through the synthetic-binary-expression path below.
	if ix, ok := a.LHS.(*ast.IndexExpr); ok {
		return fe.emitIndexCompoundAssign(ix, a.Op.ToBinary(), a.RHS)
	}
	bin := ast.NewBinary(a.Line(), a.Op.ToBinary(), a.LHS, a.RHS)
	bin.SetType(a.LHS.Type())
	return fe.emitStoreComputed(a.LHS, bin)
}

// emitIndexCompoundAssign lowers a[i] op= rhs. dup2 duplicates the just-
// evaluated arrayref/index pair so the element can be loaded for the read
// half and the original pair still remains underneath for the store half;
// a and i are each emitted exactly once, per the "one evaluation of x"
// contract compound assignment operators carry.
func (fe *funcEmitter) emitIndexCompoundAssign(ix *ast.IndexExpr, op ast.BinaryOp, rhs ast.Expr) error {
	wide := ix.Type()
	if err := fe.emitExpr(ix.Array); err != nil {
		return err
	}
	if err := fe.emitExpr(ix.Index); err != nil {
		return err
	}
	fe.instr0("dup2")
	fe.pushN(2)
	fe.instr0(elementPrefix(ix.Type()) + "aload")
	fe.popN(2)
	fe.push()

	if err := fe.emitExpr(rhs); err != nil {
		return err
	}
	fe.emitConvert(rhs.Type(), wide)
	prefix := slotPrefix(wide)
	switch op {
	case ast.Add:
		fe.instr0(prefix + "add")
	case ast.Sub:
		fe.instr0(prefix + "sub")
	case ast.Mul:
		fe.instr0(prefix + "mul")
	case ast.Div:
		fe.instr0(prefix + "div")
	case ast.Mod:
		fe.instr0(prefix + "rem")
	}
	fe.pop()

	fe.instr0("dup_x2")
	fe.push()
	fe.instr0(elementPrefix(ix.Type()) + "astore")
	fe.popN(3)
	return nil
}

// emitStoreComputed evaluates value, converts it to lhs's type if it
// widens, stores it into lhs, and leaves one copy of the stored value on
// the stack (assignment is itself an expression).
func (fe *funcEmitter) emitStoreComputed(lhs ast.Expr, value ast.Expr) error {
	switch t := lhs.(type) {
	case *ast.IdentExpr:
		if err := fe.emitExpr(value); err != nil {
			return err
		}
		fe.emitConvert(value.Type(), lhs.Type())
		fe.instr0("dup")
		fe.push()
		return fe.storeLvalue(t)
	case *ast.IndexExpr:
		return fe.emitIndexStore(t, value)
	default:
		return diag.New(diag.Internal, fe.c.File, lhs.Line(), "unsupported assignment target")
	}
}

func (fe *funcEmitter) emitIndexLoad(ix *ast.IndexExpr) error {
	if err := fe.emitExpr(ix.Array); err != nil {
		return err
	}
	if err := fe.emitExpr(ix.Index); err != nil {
		return err
	}
	fe.instr0(elementPrefix(ix.Type()) + "aload")
	fe.pop() // array + index consumed, one element produced: net -1
	return nil
}

// emitIndexStore lowers ix = value. <x>astore wants the stack ordered
// arrayref, index, value; dup_x2 then plants a copy of value below that
// triple so one copy survives as the assignment expression's result.
func (fe *funcEmitter) emitIndexStore(ix *ast.IndexExpr, value ast.Expr) error {
	if err := fe.emitExpr(ix.Array); err != nil {
		return err
	}
	if err := fe.emitExpr(ix.Index); err != nil {
		return err
	}
	if err := fe.emitExpr(value); err != nil {
		return err
	}
	fe.emitConvert(value.Type(), ix.Type())
	fe.instr0("dup_x2")
	fe.push()
	fe.instr0(elementPrefix(ix.Type()) + "astore")
	fe.popN(3)
	return nil
}

func (fe *funcEmitter) emitCast(c *ast.CastExpr) error {
	if err := fe.emitExpr(c.Operand); err != nil {
		return err
	}
	fe.emitConvert(c.Operand.Type(), c.Target)
	return nil
}

func (fe *funcEmitter) emitCall(call *ast.CallExpr) error {
	fn := fe.c.Symbols.LookupFunction(call.Callee)
	if fn == nil {
		return diag.New(diag.Internal, fe.c.File, call.Line(), "call to unresolved function %s", call.Callee)
	}
	for i, arg := range call.Args {
		if err := fe.emitExpr(arg); err != nil {
			return err
		}
		fe.emitConvert(arg.Type(), fn.Params[i].Type)
	}
	owner := fe.className
	if isRuntimeFunc(call.Callee) {
		owner = fe.runtimeClass
	}
	fe.instr1("invokestatic", methodRef(owner, call.Callee, methodSignature(fn)))
	fe.popN(len(call.Args))
	if fn.ReturnType.Base != types.Void {
		fe.push()
	}
	return nil
}

func isRuntimeFunc(name string) bool {
	switch name {
	case "putint", "putchar", "putfloat", "putstring", "getint", "getchar", "getfloat":
		return true
	default:
		return false
	}
}

func (fe *funcEmitter) emitTernary(t *ast.TernaryExpr) error {
	elseLbl := fe.newLabel("terelse")
	endLbl := fe.newLabel("terend")

	if err := fe.emitExpr(t.Cond); err != nil {
		return err
	}
	fe.instr1("ifeq", elseLbl)
	fe.pop()
	if err := fe.emitExpr(t.Then); err != nil {
		return err
	}
	fe.emitConvert(t.Then.Type(), t.Type())
	fe.instr1("goto", endLbl)
	fe.pop()
	fe.label(elseLbl)
	if err := fe.emitExpr(t.Else); err != nil {
		return err
	}
	fe.emitConvert(t.Else.Type(), t.Type())
	fe.label(endLbl)
	return nil
}
