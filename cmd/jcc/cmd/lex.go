package cmd

import "github.com/spf13/cobra"

var lexCmd = &cobra.Command{
	Use:   "lex <file>",
	Short: "lex only, writing <base>.lexer",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return runLex(args[0])
	},
}
