// Package ipc locates and opens the local socket that the clipgrid daemon
// serves its control API on. The CLI sub-commands and the terminal UI dial
// it; only one daemon may listen on a given path.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

// SocketEnv overrides the socket path.
const SocketEnv = "CLIPGRID_SOCKET"

const socketName = "clipgrid.sock"

// ErrRunning is returned by Listen when another daemon answers on the path.
var ErrRunning = errors.New("clipgrid daemon already running")

// SocketPath returns the socket path, honoring $CLIPGRID_SOCKET.
//
//   - Linux:   $XDG_RUNTIME_DIR/clipgrid.sock, else $TMPDIR/clipgrid.sock
//   - macOS:   $TMPDIR/clipgrid.sock
//   - Windows: %LOCALAPPDATA%\clipgrid\clipgrid.sock (AF_UNIX)
func SocketPath() string {
	if s := os.Getenv(SocketEnv); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a daemon appears to be listening on path. It does
// a cheap dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	c, err := net.DialTimeout("unix", path, 500*time.Millisecond)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen opens the socket at path. A stale socket file left by a crashed
// daemon is removed; a live one yields ErrRunning.
func Listen(path string) (net.Listener, error) {
	if IsRunning(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrRunning)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	return ln, nil
}

// Dial connects to the socket at path.
func Dial(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
