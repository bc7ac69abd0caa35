package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipgrid/internal/control"
)

func newTrackCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:       "track on|off",
		Short:     "Turn clipboard tracking on or off",
		Long:      `While tracking is off, clipboard changes are ignored and the grid is left as it is.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		PreRunE:   func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			return withClient(v, func(ctx context.Context, c *control.Client) error {
				g, err := c.SetTracking(ctx, on)
				if err != nil {
					return err
				}
				return printGrid(cmd.OutOrStdout(), v, g)
			})
		},
	}

	addOutputFlags(cmd)
	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}
