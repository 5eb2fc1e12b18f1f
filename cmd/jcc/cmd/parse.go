package cmd

import "github.com/spf13/cobra"

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "parse and write the declaration listing <base>.parser",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return runParse(args[0])
	},
}
