package cmd

import "github.com/spf13/cobra"

var bannerCmd = &cobra.Command{
	Use:   "banner",
	Short: "print the version banner",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		runBanner()
		return nil
	},
}
