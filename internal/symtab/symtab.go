// Package symtab implements the three process-scoped symbol collections:
// variables (globals and per-function locals), functions, and struct
// definitions. All three are owned by a Compiler context (see package
// compiler), never by package-level state.
package symtab

import "github.com/gmofishsauce/jvmcc/internal/types"

// VarSymbol describes one declared variable, global or local.
type VarSymbol struct {
	Name       string
	Type       *types.Type
	IsGlobal   bool
	LocalIndex int // -1 until assigned; globals keep it -1 forever
	HasInit    bool
}

// Function describes a function prototype or definition.
type Function struct {
	Name             string
	ReturnType       *types.Type
	Params           []*VarSymbol
	Locals           []*VarSymbol
	Defined          bool
	MaxStackObserved int
}

// StructDef describes a struct type's ordered members.
type StructDef struct {
	Name    string
	Members []VarSymbol
}

// FindMember returns the member named name, or nil if absent.
func (s *StructDef) FindMember(name string) *VarSymbol {
	for i := range s.Members {
		if s.Members[i].Name == name {
			return &s.Members[i]
		}
	}
	return nil
}

// Table holds the three ordered symbol collections for one compilation.
type Table struct {
	Globals   []*VarSymbol
	Functions []*Function
	Structs   []*StructDef
}

// NewTable builds an empty table and seeds it with the lib440 I/O runtime
// prototypes, per §4.2.
func NewTable() *Table {
	t := &Table{}
	t.seedRuntime()
	return t
}

func (t *Table) seedRuntime() {
	def := func(name string, ret *types.Type, params ...*types.Type) {
		f := &Function{Name: name, ReturnType: ret, Defined: true}
		for i, pt := range params {
			f.Params = append(f.Params, &VarSymbol{Name: paramName(i), Type: pt, LocalIndex: i})
		}
		t.Functions = append(t.Functions, f)
	}
	def("putint", types.VoidType, types.IntType)
	def("putchar", types.IntType, types.IntType)
	def("putfloat", types.VoidType, types.FloatType)
	def("putstring", types.VoidType, types.CharType.WithArray())
	def("getint", types.IntType)
	def("getchar", types.IntType)
	def("getfloat", types.FloatType)
}

func paramName(i int) string {
	names := []string{"a", "b", "c", "d", "e", "f"}
	if i < len(names) {
		return names[i]
	}
	return "p"
}

// AddVariable adds a variable to the table, at global scope if isGlobal is
// set or cur is nil, otherwise to cur's locals. Duplicate names within the same scope are an
// error left to the caller (the parser), which has the source location to
// report.
func (t *Table) AddVariable(name string, typ *types.Type, isGlobal bool, cur *Function) *VarSymbol {
	sym := &VarSymbol{Name: name, Type: typ, IsGlobal: isGlobal, LocalIndex: -1}
	if isGlobal || cur == nil {
		t.Globals = append(t.Globals, sym)
	} else {
		cur.Locals = append(cur.Locals, sym)
	}
	return sym
}

// DeclaredInScope reports whether name is already declared in the scope
// AddVariable(name, ..., isGlobal, cur) would add to: the globals when
// isGlobal or cur is nil, otherwise cur's own params and locals. It never
// looks outside that one scope, so a local is free to shadow a global.
func (t *Table) DeclaredInScope(name string, isGlobal bool, cur *Function) bool {
	if isGlobal || cur == nil {
		for _, g := range t.Globals {
			if g.Name == name {
				return true
			}
		}
		return false
	}
	for _, p := range cur.Params {
		if p.Name == name {
			return true
		}
	}
	for _, l := range cur.Locals {
		if l.Name == name {
			return true
		}
	}
	return false
}

// LookupVariable resolves name against cur's locals first (if cur is
// non-nil), then the globals, matching the spec's lookup order.
func (t *Table) LookupVariable(name string, cur *Function) *VarSymbol {
	if cur != nil {
		for _, p := range cur.Params {
			if p.Name == name {
				return p
			}
		}
		for _, l := range cur.Locals {
			if l.Name == name {
				return l
			}
		}
	}
	for _, g := range t.Globals {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// AddFunction registers a new function prototype/definition. The caller
// must have already checked for signature conflicts with LookupFunction.
func (t *Table) AddFunction(f *Function) {
	t.Functions = append(t.Functions, f)
}

// LookupFunction performs a linear scan by name.
func (t *Table) LookupFunction(name string) *Function {
	for _, f := range t.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// AddStruct registers a new struct definition.
func (t *Table) AddStruct(s *StructDef) {
	t.Structs = append(t.Structs, s)
}

// LookupStruct performs a linear scan by name.
func (t *Table) LookupStruct(name string) *StructDef {
	for _, s := range t.Structs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// SignatureEqual reports whether two functions have the same return type
// and element-wise equal parameter types, the rule used to validate
// prototype/redefinition agreement.
func SignatureEqual(a, b *Function) bool {
	if !a.ReturnType.Equal(b.ReturnType) {
		return false
	}
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !a.Params[i].Type.Equal(b.Params[i].Type) {
			return false
		}
	}
	return true
}

// FinalizeLocals assigns local slot indices to a function's parameters and
// locals in declaration order: parameters occupy 0..numParams-1, then each
// local gets the next free index. This replaces the source pattern of an
// out-parameter-plus-(-1)-sentinel with construction-time assignment, per
// the Design Notes.
func FinalizeLocals(f *Function) {
	idx := 0
	for _, p := range f.Params {
		p.LocalIndex = idx
		idx++
	}
	for _, l := range f.Locals {
		l.LocalIndex = idx
		idx++
	}
}
