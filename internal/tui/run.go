package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"go.klb.dev/clipgrid/internal/control"
)

// pushMsg carries a grid streamed by the daemon.
type pushMsg struct{ grid *control.GridReply }

// Run starts the TUI against a daemon. It returns when the user leaves.
func Run(c *control.Client) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan tea.Msg)
	go func() {
		defer close(updates)
		err := c.Watch(ctx, func(g *control.GridReply) error {
			select {
			case updates <- pushMsg{g}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && ctx.Err() == nil {
			select {
			case updates <- errStatus(err):
			case <-ctx.Done():
			}
		}
	}()

	p := tea.NewProgram(New(c, updates), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
