package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipgrid/internal/control"
)

func newGridCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Show the slot grid",
		Long: `Prints the nine slots of the running daemon with a preview of each entry,
the tracking state and the slot whose entry is on the clipboard.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(v, func(ctx context.Context, c *control.Client) error {
				g, err := c.Grid(ctx)
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
