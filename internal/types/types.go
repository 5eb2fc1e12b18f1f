// Package types models the small type system of the source language: the
// four base types, structs, const/array qualifiers, implicit widening, and
// the JVM descriptor each type lowers to.
package types

import "fmt"

// Base is one of the fixed base kinds a Type can carry.
type Base int

const (
	Void Base = iota
	Char
	Int
	Float
	Struct
)

func (b Base) String() string {
	switch b {
	case Void:
		return "void"
	case Char:
		return "char"
	case Int:
		return "int"
	case Float:
		return "float"
	case Struct:
		return "struct"
	default:
		return "<invalid>"
	}
}

// Type is the full type of a declaration or expression. Two types are
// equal iff Base, IsArray, and (for Struct) StructName match; IsConst is
// not part of equality, matching the source language's assignment rules.
type Type struct {
	Base         Base
	IsConst      bool
	IsArray      bool
	StructName   string // set when Base == Struct
	LineDeclared int
}

// Void, Char, Int, Float are the predefined non-struct, non-array, non-const
// base types, convenient for literal/default construction.
var (
	VoidType  = &Type{Base: Void}
	CharType  = &Type{Base: Char}
	IntType   = &Type{Base: Int}
	FloatType = &Type{Base: Float}
)

// NewStruct builds a (non-const, non-array) struct type reference.
func NewStruct(name string) *Type {
	return &Type{Base: Struct, StructName: name}
}

// WithArray returns a copy of t marked as an array of t.
func (t *Type) WithArray() *Type {
	cp := *t
	cp.IsArray = true
	return &cp
}

// WithConst returns a copy of t marked const.
func (t *Type) WithConst() *Type {
	cp := *t
	cp.IsConst = true
	return &cp
}

// Element returns a copy of t with IsArray cleared, i.e. the type of one
// element of an array of t. Used when indexing.
func (t *Type) Element() *Type {
	cp := *t
	cp.IsArray = false
	return &cp
}

// Equal reports structural equality per the spec's rule: Base, IsArray, and
// (for structs) StructName must match; IsConst is ignored.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Base != other.Base || t.IsArray != other.IsArray {
		return false
	}
	if t.Base == Struct {
		return t.StructName == other.StructName
	}
	return true
}

// CanWiden reports whether a value of type from may be implicitly widened
// to type to. Arrays never widen. Per the decided Open Question, narrowing
// (int -> char) is never implicit; only explicit casts narrow.
func CanWiden(from, to *Type) bool {
	if from == nil || to == nil {
		return false
	}
	if from.IsArray || to.IsArray {
		return from.Equal(to)
	}
	if from.Equal(to) {
		return true
	}
	switch from.Base {
	case Char:
		return to.Base == Int || to.Base == Float
	case Int:
		return to.Base == Float
	default:
		return false
	}
}

// Wider returns the wider of two numeric types per the reflexive-closure
// widening chain char -> int -> float, or nil if neither widens to the
// other (the caller has already rejected that case).
func Wider(a, b *Type) *Type {
	if CanWiden(a, b) {
		return b
	}
	if CanWiden(b, a) {
		return a
	}
	return nil
}

// IsNumeric reports whether t is char, int, or float.
func (t *Type) IsNumeric() bool {
	return t != nil && (t.Base == Char || t.Base == Int || t.Base == Float)
}

// CanCast reports whether an explicit cast (T)e is legal: only among
// int/float/char, in either direction, never involving arrays or structs.
func CanCast(from, to *Type) bool {
	if from == nil || to == nil {
		return false
	}
	if from.IsArray || to.IsArray || from.Base == Struct || to.Base == Struct {
		return false
	}
	return from.IsNumeric() && to.IsNumeric()
}

// String renders the canonical type formatting used by the `-3` type
// listing: "const? base [struct <name>]? []?".
func (t *Type) String() string {
	if t == nil {
		return "<unknown>"
	}
	s := ""
	if t.IsConst {
		s += "const "
	}
	if t.Base == Struct {
		s += fmt.Sprintf("struct %s", t.StructName)
	} else {
		s += t.Base.String()
	}
	if t.IsArray {
		s += "[]"
	}
	return s
}

// JVMDescriptor renders the JVM field/parameter descriptor for t, per the
// §4.4 type mapping: int->I, char->C, float->F, void->V, struct->Ljava/lang/Object;,
// T[]->[T for primitive T, struct[]->[Ljava/lang/Object;.
func (t *Type) JVMDescriptor() string {
	base := baseDescriptor(t)
	if t.IsArray {
		return "[" + base
	}
	return base
}

func baseDescriptor(t *Type) string {
	switch t.Base {
	case Void:
		return "V"
	case Char:
		return "C"
	case Int:
		return "I"
	case Float:
		return "F"
	case Struct:
		return "Ljava/lang/Object;"
	default:
		return "V"
	}
}
