package main

import (
	"context"

	"github.com/spf13/cobra"

	"go.klb.dev/clipgrid/internal/control"
)

func newSelectCmd() *cobra.Command {
	return slotCmd("select", "Put a slot's entry back on the clipboard",
		`Writes the entry in slot N (0-8) to the system clipboard and marks the slot
active. The clipboard change this causes is not recorded as a new entry.`,
		func(ctx context.Context, c *control.Client, i int) (*control.GridReply, error) {
			return c.Select(ctx, i)
		})
}

func newEvictCmd() *cobra.Command {
	return slotCmd("evict", "Free a slot",
		`Removes the entry in slot N (0-8). The next new clipboard entry fills the
lowest free slot.`,
		func(ctx context.Context, c *control.Client, i int) (*control.GridReply, error) {
			return c.Evict(ctx, i)
		})
}
