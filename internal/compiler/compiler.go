// Package compiler provides the single context struct threaded through the
// lexer, parser, and emitter for one compile invocation, replacing the
// process-global mutable symbol tables the source pattern used.
package compiler

import (
	"github.com/gmofishsauce/jvmcc/internal/config"
	"github.com/gmofishsauce/jvmcc/internal/diag"
	"github.com/gmofishsauce/jvmcc/internal/symtab"
)

// Compiler owns everything shared across the phases of one compile: the
// symbol tables, the accumulated diagnostics, and the resolved
// configuration. No package in this module keeps equivalent state at
// package scope; two Compiler values may be used concurrently from
// different goroutines without interfering, though no phase within one
// Compiler runs concurrently with another (§5).
type Compiler struct {
	Symbols *symtab.Table
	Diag    *diag.Sink
	Config  config.Config

	// File is the name of the top-level source file being compiled, used
	// to stamp tokens and diagnostics that don't originate from an
	// #include.
	File string

	loopDepth int
}

// New creates a Compiler ready to lex and parse file under the given
// configuration.
func New(file string, cfg config.Config) *Compiler {
	return &Compiler{
		Symbols: symtab.NewTable(),
		Diag:    &diag.Sink{},
		Config:  cfg,
		File:    file,
	}
}

// EnterLoop and ExitLoop track loop nesting so break/continue can be
// rejected outside a loop, per §4.3.
func (c *Compiler) EnterLoop() { c.loopDepth++ }
func (c *Compiler) ExitLoop()  { c.loopDepth-- }
func (c *Compiler) InLoop() bool { return c.loopDepth > 0 }
