package emit

import (
	"bufio"
	"bytes"
	"fmt"

	"github.com/gmofishsauce/jvmcc/internal/ast"
	"github.com/gmofishsauce/jvmcc/internal/compiler"
	"github.com/gmofishsauce/jvmcc/internal/symtab"
	"github.com/gmofishsauce/jvmcc/internal/types"
)

// funcEmitter lowers one function body (or, with fn == nil, the <clinit>
// initializer sequence) to JVM assembly text, tracking the operand stack
// depth as it goes so the enclosing .code directive can report the
// observed maximum.
type funcEmitter struct {
	c            *compiler.Compiler
	fn           *symtab.Function
	className    string
	runtimeClass string

	body       *bytes.Buffer
	buf        *writer
	cur, max   int
	labelSeq   int
	breakLbl   []string
	continueLbl []string
}

func newFuncEmitter(c *compiler.Compiler, fn *symtab.Function, className, runtimeClass string) *funcEmitter {
	b := &bytes.Buffer{}
	return &funcEmitter{
		c:            c,
		fn:           fn,
		className:    className,
		runtimeClass: runtimeClass,
		body:         b,
		buf:          &writer{out: bufio.NewWriter(b)},
	}
}

func (fe *funcEmitter) bodyBytes() []byte {
	fe.buf.out.Flush()
	return fe.body.Bytes()
}

func (fe *funcEmitter) push()     { fe.pushN(1) }
func (fe *funcEmitter) pop()      { fe.popN(1) }
func (fe *funcEmitter) pushN(n int) {
	fe.cur += n
	if fe.cur > fe.max {
		fe.max = fe.cur
	}
}
func (fe *funcEmitter) popN(n int) { fe.cur -= n }

func (fe *funcEmitter) instr0(op string)              { fe.buf.instr0(op) }
func (fe *funcEmitter) instr1(op string, a interface{}) { fe.buf.instr1(op, a) }
func (fe *funcEmitter) instr2(op string, a, b interface{}) { fe.buf.instr2(op, a, b) }
func (fe *funcEmitter) label(name string)             { fe.buf.label(name) }

// newLabel returns a fresh label name unique within this function's body,
// labels being scoped to one method's code in Krakatau-style assembly.
func (fe *funcEmitter) newLabel(prefix string) string {
	fe.labelSeq++
	return fmt.Sprintf("L%s%d", prefix, fe.labelSeq)
}

func (fe *funcEmitter) pushLoop(brk, cont string) {
	fe.breakLbl = append(fe.breakLbl, brk)
	fe.continueLbl = append(fe.continueLbl, cont)
}

func (fe *funcEmitter) popLoop() {
	fe.breakLbl = fe.breakLbl[:len(fe.breakLbl)-1]
	fe.continueLbl = fe.continueLbl[:len(fe.continueLbl)-1]
}

func (fe *funcEmitter) currentBreak() string    { return fe.breakLbl[len(fe.breakLbl)-1] }
func (fe *funcEmitter) currentContinue() string { return fe.continueLbl[len(fe.continueLbl)-1] }

// slotPrefix returns the JVM load/store mnemonic prefix for t: "f" for
// float, "a" for arrays and structs (object references), "i" otherwise
// (int and char both occupy an int-width local slot).
func slotPrefix(t *types.Type) string {
	if t.IsArray || t.Base == types.Struct {
		return "a"
	}
	if t.Base == types.Float {
		return "f"
	}
	return "i"
}

func elementPrefix(elem *types.Type) string {
	switch elem.Base {
	case types.Float:
		return "f"
	case types.Char:
		return "c"
	case types.Struct:
		return "a"
	default:
		return "i"
	}
}

// emitFunction lowers one user-defined function to a .method block.
func emitFunction(w *writer, fd *ast.FuncDecl, fn *symtab.Function, c *compiler.Compiler, className, runtimeClass string) error {
	fe := newFuncEmitter(c, fn, className, runtimeClass)
	if err := fe.emitStmt(fd.Body); err != nil {
		return err
	}
	if fn.ReturnType.Base == types.Void {
		fe.instr0("return")
	}

	numLocals := len(fn.Params) + len(fn.Locals)
	if numLocals == 0 {
		numLocals = 1
	}

	w.directive(".method public static %s : %s", fd.Name, methodSignature(fn))
	w.directive(".code stack %d locals %d", stackFloor(fe.max), numLocals)
	w.out.Write(fe.bodyBytes())
	w.directive(".end code")
	w.directive(".end method")
	w.blank()
	return nil
}
