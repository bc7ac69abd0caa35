package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipgrid/internal/control"
)

func newQuitCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "quit",
		Short:   "Stop the daemon",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, _ []string) error {
			return withClient(v, func(ctx context.Context, c *control.Client) error {
				return c.Quit(ctx)
			})
		},
	}

	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}
