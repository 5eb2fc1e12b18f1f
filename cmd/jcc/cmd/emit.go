package cmd

import "github.com/spf13/cobra"

var emitCmd = &cobra.Command{
	Use:   "emit <file>",
	Short: "compile to JVM assembly, writing <base>.j",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return runEmit(args[0])
	},
}
