package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipgrid/internal/control"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy [TEXT...]",
		Short: "Put text on the daemon's clipboard (like pbcopy)",
		Long: `Puts TEXT on the clipboard the daemon watches, or stdin when no TEXT is
given. The daemon sees the change like any other copy and fills a slot.

Against a "clipgrid run --headless" daemon this is the only way to feed the
grid, which makes the headless daemon usable from scripts.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := copyInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if text == "" {
				return nil
			}
			return withClient(v, func(ctx context.Context, c *control.Client) error {
				return c.Copy(ctx, text)
			})
		},
	}

	addSocketFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

// copyInput joins args with spaces, or reads all of stdin when there are none.
func copyInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
