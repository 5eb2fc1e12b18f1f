// Package cmd implements the jcc command-line driver: a cobra root command
// carrying the mandated -0..-4 mode shorthands, plus one named subcommand
// per mode for scripting convenience.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	verbose     bool
	keepPartial bool

	modeBanner bool
	modeLex    bool
	modeParse  bool
	modeTypes  bool
	modeEmit   bool
)

// Root is the jcc root command.
var Root = &cobra.Command{
	Use:   "jcc [file]",
	Short: "ahead-of-time compiler for the lib440 teaching language, targeting JVM textual assembly",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRoot,
}

func init() {
	Root.PersistentFlags().StringVar(&configPath, "config", "", "path to a .jcc.yaml configuration file")
	Root.PersistentFlags().BoolVar(&verbose, "verbose", false, "dump the AST and symbol tables to stderr as each stage completes")
	Root.PersistentFlags().BoolVarP(&keepPartial, "keep-partial", "k", false, "keep a stage's output file even when that stage fails")

	Root.Flags().BoolVarP(&modeBanner, "banner", "0", false, "print the version banner and exit")
	Root.Flags().BoolVarP(&modeLex, "lex", "1", false, "lex only, writing <base>.lexer")
	Root.Flags().BoolVarP(&modeParse, "parse", "2", false, "parse and write the declaration listing <base>.parser")
	Root.Flags().BoolVarP(&modeTypes, "types", "3", false, "parse, type check, and write the type listing <base>.types")
	Root.Flags().BoolVarP(&modeEmit, "emit", "4", false, "compile to JVM assembly, writing <base>.j")

	Root.AddCommand(bannerCmd, lexCmd, parseCmd, typesCmd, emitCmd)
}

func runRoot(c *cobra.Command, args []string) error {
	selected := 0
	for _, b := range []bool{modeBanner, modeLex, modeParse, modeTypes, modeEmit} {
		if b {
			selected++
		}
	}
	if modeBanner {
		runBanner()
		if selected > 1 {
			return fmt.Errorf("-0 is exclusive of every other mode flag")
		}
		return nil
	}
	if selected == 0 {
		return fmt.Errorf("exactly one of -0, -1, -2, -3, -4 is required (see --help)")
	}
	if selected > 1 {
		return fmt.Errorf("exactly one of -1, -2, -3, -4 may be given at a time")
	}
	file, err := requireFile(args)
	if err != nil {
		return err
	}
	switch {
	case modeLex:
		return runLex(file)
	case modeParse:
		return runParse(file)
	case modeTypes:
		return runTypes(file)
	case modeEmit:
		return runEmit(file)
	}
	return nil
}

func requireFile(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("a source file argument is required")
	}
	return args[0], nil
}

// Execute runs the root command, printing any returned error and mapping it
// to a nonzero process exit per the CLI's failure semantics.
func Execute() {
	if err := Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
