// Package emit lowers a typed Program to Krakatau-style textual JVM
// assembly: static fields for globals, one static method per user
// function, a synthetic main wrapper, a default constructor, and an
// optional <clinit> for globals with initializers.
package emit

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gmofishsauce/jvmcc/internal/ast"
	"github.com/gmofishsauce/jvmcc/internal/compiler"
	"github.com/gmofishsauce/jvmcc/internal/diag"
	"github.com/gmofishsauce/jvmcc/internal/symtab"
)

// writer is the small set of line-emission primitives every assembly
// producer in this package goes through, mirroring the one-helper-per-
// mnemonic style of a hand-written assembler backend: callers never
// fmt.Fprint directly, they call a named helper so the indentation and
// directive/label column conventions stay in one place.
type writer struct {
	out *bufio.Writer
}

func (w *writer) directive(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

func (w *writer) blank() {
	fmt.Fprintln(w.out)
}

func (w *writer) label(name string) {
	fmt.Fprintf(w.out, "%s:\n", name)
}

func (w *writer) instr0(op string) {
	fmt.Fprintf(w.out, "    %s\n", op)
}

func (w *writer) instr1(op string, a interface{}) {
	fmt.Fprintf(w.out, "    %s %v\n", op, a)
}

func (w *writer) instr2(op string, a, b interface{}) {
	fmt.Fprintf(w.out, "    %s %v, %v\n", op, a, b)
}

// EmitProgram writes the complete .j class for prog to out. className is
// the input filename with its two-character extension stripped (§4.4).
// runtimeClass is normally "lib440" but may be overridden by configuration.
func EmitProgram(out io.Writer, prog *ast.Program, c *compiler.Compiler, className, runtimeClass string) error {
	w := &writer{out: bufio.NewWriter(out)}
	defer w.out.Flush()

	w.directive(".class public %s", className)
	w.directive(".super java/lang/Object")
	w.blank()

	for _, g := range c.Symbols.Globals {
		w.directive(".field public static %s %s", g.Name, g.Type.JVMDescriptor())
	}
	w.blank()

	if needsClinit(prog) {
		if err := emitClinit(w, prog, c, className, runtimeClass); err != nil {
			return err
		}
	}

	for _, fd := range prog.Funcs {
		if fd.Body == nil {
			continue // prototype only, nothing to emit
		}
		fn := c.Symbols.LookupFunction(fd.Name)
		if fn == nil {
			return diag.New(diag.Internal, fd.File, fd.Line, "function %s missing from symbol table at emission", fd.Name)
		}
		if err := emitFunction(w, fd, fn, c, className, runtimeClass); err != nil {
			return err
		}
	}

	emitMainWrapper(w, className, prog)
	emitDefaultCtor(w)
	return nil
}

// needsClinit reports whether any global carries an initializer, the
// decided Open Question rule for when <clinit> is emitted.
func needsClinit(prog *ast.Program) bool {
	for _, g := range prog.Globals {
		if g.HasInit {
			return true
		}
	}
	return false
}

func emitClinit(w *writer, prog *ast.Program, c *compiler.Compiler, className, runtimeClass string) error {
	fe := newFuncEmitter(c, nil, className, runtimeClass)
	for _, g := range prog.Globals {
		if !g.HasInit {
			continue
		}
		if err := fe.emitExpr(g.Init); err != nil {
			return err
		}
		fe.instr1("putstatic", fieldRef(className, g.Name, g.Type.JVMDescriptor()))
		fe.pop()
	}
	fe.buf.instr0("return")

	w.directive(".method static <clinit> : ()V")
	w.directive(".code stack %d locals 0", stackFloor(fe.max))
	w.out.Write(fe.bodyBytes())
	w.directive(".end code")
	w.directive(".end method")
	w.blank()
	return nil
}

func fieldRef(class, name, desc string) string {
	return fmt.Sprintf("Field %s %s %s", class, name, desc)
}

func methodRef(class, name, sig string) string {
	return fmt.Sprintf("Method %s %s %s", class, name, sig)
}

func methodSignature(fn *symtab.Function) string {
	params := ""
	for _, p := range fn.Params {
		params += p.Type.JVMDescriptor()
	}
	return fmt.Sprintf("(%s)%s", params, fn.ReturnType.JVMDescriptor())
}

func stackFloor(max int) int {
	if max < 2 {
		return 2
	}
	return max
}

func emitMainWrapper(w *writer, className string, prog *ast.Program) {
	w.directive(".method public static main : ([Ljava/lang/String;)V")
	w.directive(".code stack 1 locals 1")
	w.instr1("invokestatic", methodRef(className, "main", "()I"))
	w.instr1("invokestatic", methodRef("java/lang/System", "exit", "(I)V"))
	w.instr0("return")
	w.directive(".end code")
	w.directive(".end method")
	w.blank()
}

func emitDefaultCtor(w *writer) {
	w.directive(".method public <init> : ()V")
	w.directive(".code stack 1 locals 1")
	w.instr1("aload", 0)
	w.instr1("invokespecial", methodRef("java/lang/Object", "<init>", "()V"))
	w.instr0("return")
	w.directive(".end code")
	w.directive(".end method")
}
