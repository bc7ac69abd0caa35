// clipgrid: clipboard history in a 3×3 grid.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/clipgrid/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clipgrid",
		Short: "Clipboard history in a 3×3 grid",
		Long: `clipgrid watches the system clipboard and keeps the nine most recent
distinct text and image snippets in a 3×3 grid of slots. Selecting a slot puts
its snippet back on the clipboard; evicting a slot frees it for the next copy.

Run "clipgrid run" to start the daemon. The other commands talk to it over a
local socket. Slots are numbered 0-8, left to right, top to bottom.

Config file search order (first found wins):
  /etc/clipgrid/clipgrid.toml
  $HOME/.config/clipgrid/clipgrid.toml
  path supplied via --config

All flags can be set via CLIPGRID_<FLAG> env vars or config-file keys.
See "clipgrid run --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newGridCmd(),
		newCopyCmd(),
		newSelectCmd(),
		newEvictCmd(),
		newTrackCmd(),
		newQuitCmd(),
		newUICmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clipgrid %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
