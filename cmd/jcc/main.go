// Command jcc is the ahead-of-time compiler driver: lex, parse, type check,
// and emit stages, selected by the -0..-4 mode flags or the equivalent named
// subcommand.
package main

import "github.com/gmofishsauce/jvmcc/cmd/jcc/cmd"

func main() {
	cmd.Execute()
}
