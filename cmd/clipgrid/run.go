package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"go.klb.dev/clipgrid/internal/clip"
	"go.klb.dev/clipgrid/internal/control"
	"go.klb.dev/clipgrid/internal/ipc"
	"go.klb.dev/clipgrid/internal/slots"
)

const shutdownGrace = 2 * time.Second

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the clipboard watcher daemon",
		Long: `Starts the clipgrid daemon. It listens for clipboard changes, fills the
slot grid and serves the control API on the local IPC socket.

On Windows the daemon registers a message-only window for clipboard update
notifications. On macOS and Linux the clipboard is polled every
--poll-interval. With --headless an in-process clipboard is used instead;
feed it with "clipgrid copy" and read it back with "clipgrid grid".

The daemon exits with status 0 on "clipgrid quit", SIGINT or SIGTERM.

Config file search order:
  /etc/clipgrid/clipgrid.toml
  $HOME/.config/clipgrid/clipgrid.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → CLIPGRID_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runDaemon(v) },
	}

	f := cmd.Flags()
	f.Bool("tracking", true, "accept new clipboard entries at startup")
	f.Duration("poll-interval", clip.DefaultPollInterval, "clipboard change detection interval (macOS, Linux)")
	f.Bool("headless", false, "use an in-process clipboard instead of the system one")
	addSocketFlag(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(v *viper.Viper) error {
	setupLogging(v)

	path := socketPath(v)
	tracking := v.GetBool("tracking")

	slog.Info("clipgrid starting",
		"version", Version,
		"socket", path,
		"tracking", tracking,
		"headless", v.GetBool("headless"),
	)

	backend, err := newBackend(v)
	if err != nil {
		return err
	}
	defer backend.Close()
	slog.Info("clipboard backend", "name", backend.Name())

	ln, err := ipc.Listen(path)
	if err != nil {
		return err
	}
	slog.Info("IPC socket listening", "path", path)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var srv *control.Server
	mgr := slots.NewManager(backend,
		slots.WithTracking(tracking),
		slots.WithObserver(func(slots.Event, []slots.Effect) { srv.Notify() }),
	)
	srv = control.NewServer(mgr, cancel)

	gs := grpc.NewServer()
	srv.Register(gs)
	go func() {
		if err := gs.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			slog.Error("control server failed", "err", err)
			cancel()
		}
	}()

	mgr.Run(ctx)

	stopServer(gs)
	slog.Info("clipgrid stopped")
	return nil
}

// newBackend picks the clipboard implementation for this run.
func newBackend(v *viper.Viper) (clip.Backend, error) {
	if v.GetBool("headless") {
		return clip.NewMemory(), nil
	}
	b, err := clip.New(clip.Options{PollInterval: v.GetDuration("poll-interval")})
	if err != nil {
		return nil, fmt.Errorf("clipboard: %w", err)
	}
	return b, nil
}

// stopServer lets in-flight calls (including the Quit reply) finish, then
// drops whatever is still open, such as UI watch streams.
func stopServer(gs *grpc.Server) {
	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownGrace):
		gs.Stop()
	}
}
