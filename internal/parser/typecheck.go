package parser

import (
	"github.com/gmofishsauce/jvmcc/internal/ast"
	"github.com/gmofishsauce/jvmcc/internal/types"
)

// checkAssignable validates that init's value may initialize a declaration
// of type declType, per the assignment rule in §4.3: equal-typed or
// widenable.
func (p *Parser) checkAssignable(declType *types.Type, init ast.Expr, line int, file string) error {
	if init.Type().Equal(declType) {
		return nil
	}
	if types.CanWiden(init.Type(), declType) {
		return nil
	}
	return p.typeError(line, file, "incompatible initializer type")
}
