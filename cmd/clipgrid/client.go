package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipgrid/internal/control"
	"go.klb.dev/clipgrid/internal/ipc"
	"go.klb.dev/clipgrid/internal/render"
)

const callTimeout = 10 * time.Second

// dialDaemon connects to the running daemon, failing fast when nothing
// listens on the socket.
func dialDaemon(v *viper.Viper, source string) (*control.Client, error) {
	path := socketPath(v)
	if !ipc.IsRunning(path) {
		return nil, fmt.Errorf("no clipgrid daemon on %s (start one with \"clipgrid run\")", path)
	}
	return control.Dial(path, source)
}

// withClient runs fn against the daemon under a call timeout.
func withClient(v *viper.Viper, fn func(context.Context, *control.Client) error) error {
	c, err := dialDaemon(v, "cli")
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := fn(ctx, c); err != nil {
		return errors.New(control.Describe(err))
	}
	return nil
}

// addOutputFlags adds the flags shared by commands that print the grid.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "output raw JSON")
	cmd.Flags().Bool("quiet", false, "print nothing on success")
}

func printGrid(w io.Writer, v *viper.Viper, g *control.GridReply) error {
	if v.GetBool("quiet") {
		return nil
	}
	if v.GetBool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	}
	_, err := fmt.Fprintln(w, render.Grid(g, render.Options{Focus: render.NoFocus}))
	return err
}

// slotCmd builds the select and evict commands, which differ only in the call.
func slotCmd(use, short, long string, call func(context.Context, *control.Client, int) (*control.GridReply, error)) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     use + " N",
		Short:   short,
		Long:    long,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			return withClient(v, func(ctx context.Context, c *control.Client) error {
				g, err := call(ctx, c, i)
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

func parseSlot(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("slot %q: want a number from 0 to 8", s)
	}
	return i, nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("%q: want on or off", s)
}
