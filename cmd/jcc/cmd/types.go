package cmd

import "github.com/spf13/cobra"

var typesCmd = &cobra.Command{
	Use:   "types <file>",
	Short: "parse, type check, and write the type listing <base>.types",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return runTypes(args[0])
	},
}
