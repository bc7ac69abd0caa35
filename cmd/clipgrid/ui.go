package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipgrid/internal/tui"
)

func newUICmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive grid",
		Long: `Shows the grid of the running daemon and keeps it up to date.

  arrows / hjkl   move
  enter, click    put the slot back on the clipboard
  d, right-click  evict the slot
  t               toggle tracking
  q               leave the UI
  Q               stop the daemon`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := dialDaemon(v, "ui")
			if err != nil {
				return err
			}
			defer c.Close()
			return tui.Run(c)
		},
	}

	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}
