package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rmirandamx/agentspend/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard of fleet spend",
	RunE: func(_ *cobra.Command, _ []string) error {
		rc, err := newRunContext()
		if err != nil {
			return err
		}

		cfg := rc.cfg
		if flagSessionsDir != "" {
			cfg.General.SessionsDir = flagSessionsDir
		}
		if flagDataDir != "" {
			cfg.General.DataDir = flagDataDir
		}
		return tui.Run(cfg, rc.days)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
