package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rmirandamx/agentspend/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive first-run configuration",
	RunE: func(_ *cobra.Command, _ []string) error {
		_, err := tui.RunSetup()
		return err
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
