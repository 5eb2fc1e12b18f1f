package parser

import (
	"fmt"
	"io"

	"github.com/gmofishsauce/jvmcc/internal/ast"
)

// WriteDeclListing implements the `-2` mode: one line per declaration or
// parameter, "File <f> Line <n>: <kind> <name>".
func WriteDeclListing(w io.Writer, prog *ast.Program) {
	for _, g := range prog.Globals {
		fmt.Fprintf(w, "File %s Line %d: global variable %s\n", g.File, g.Line, g.Name)
	}
	for _, sd := range prog.Structs {
		fmt.Fprintf(w, "File %s Line %d: struct %s\n", sd.File, sd.Line, sd.Name)
		for _, m := range sd.Members {
			fmt.Fprintf(w, "File %s Line %d: member %s\n", m.File, m.Line, m.Name)
		}
	}
	for _, fd := range prog.Funcs {
		fmt.Fprintf(w, "File %s Line %d: function %s\n", fd.File, fd.Line, fd.Name)
		for _, param := range fd.Params {
			fmt.Fprintf(w, "File %s Line %d: parameter %s\n", param.File, param.Line, param.Name)
		}
		if fd.Body != nil {
			writeLocalDecls(w, fd.Body)
		}
	}
}

func writeLocalDecls(w io.Writer, s ast.Stmt) {
	switch st := s.(type) {
	case *ast.CompoundStmt:
		for _, inner := range st.Stmts {
			writeLocalDecls(w, inner)
		}
	case *ast.DeclStmt:
		for _, vd := range st.Decls {
			fmt.Fprintf(w, "File %s Line %d: local variable %s\n", vd.File, vd.Line, vd.Name)
		}
	case *ast.IfStmt:
		writeLocalDecls(w, st.Then)
		if st.Else != nil {
			writeLocalDecls(w, st.Else)
		}
	case *ast.WhileStmt:
		writeLocalDecls(w, st.Body)
	case *ast.DoStmt:
		writeLocalDecls(w, st.Body)
	case *ast.ForStmt:
		writeLocalDecls(w, st.Body)
	}
}

// WriteTypeListing implements the `-3` mode: one line, "File <f> Line <n>:
// expression has type <T>", per expression statement, initializer, returned
// value, if/while/do condition, and present for init/condition/update.
func WriteTypeListing(w io.Writer, prog *ast.Program) {
	for _, g := range prog.Globals {
		if g.HasInit {
			fmt.Fprintf(w, "File %s Line %d: expression has type %s\n", g.File, g.Line, g.Init.Type())
		}
	}
	for _, fd := range prog.Funcs {
		if fd.Body != nil {
			writeStmtTypes(w, fd.Body, fd.File)
		}
	}
}

func writeStmtTypes(w io.Writer, s ast.Stmt, file string) {
	switch st := s.(type) {
	case *ast.CompoundStmt:
		for _, inner := range st.Stmts {
			writeStmtTypes(w, inner, file)
		}
	case *ast.DeclStmt:
		for _, vd := range st.Decls {
			if vd.HasInit {
				fmt.Fprintf(w, "File %s Line %d: expression has type %s\n", vd.File, vd.Line, vd.Init.Type())
			}
		}
	case *ast.ExprStmt:
		if st.X != nil {
			fmt.Fprintf(w, "File %s Line %d: expression has type %s\n", file, st.Line(), st.X.Type())
		}
	case *ast.ReturnStmt:
		if st.Value != nil {
			fmt.Fprintf(w, "File %s Line %d: expression has type %s\n", file, st.Line(), st.Value.Type())
		}
	case *ast.IfStmt:
		fmt.Fprintf(w, "File %s Line %d: expression has type %s\n", file, st.Line(), st.Cond.Type())
		writeStmtTypes(w, st.Then, file)
		if st.Else != nil {
			writeStmtTypes(w, st.Else, file)
		}
	case *ast.WhileStmt:
		fmt.Fprintf(w, "File %s Line %d: expression has type %s\n", file, st.Line(), st.Cond.Type())
		writeStmtTypes(w, st.Body, file)
	case *ast.DoStmt:
		writeStmtTypes(w, st.Body, file)
		fmt.Fprintf(w, "File %s Line %d: expression has type %s\n", file, st.Line(), st.Cond.Type())
	case *ast.ForStmt:
		if st.Init != nil {
			fmt.Fprintf(w, "File %s Line %d: expression has type %s\n", file, st.Line(), st.Init.Type())
		}
		if st.Cond != nil {
			fmt.Fprintf(w, "File %s Line %d: expression has type %s\n", file, st.Line(), st.Cond.Type())
		}
		if st.Post != nil {
			fmt.Fprintf(w, "File %s Line %d: expression has type %s\n", file, st.Line(), st.Post.Type())
		}
		writeStmtTypes(w, st.Body, file)
	}
}
