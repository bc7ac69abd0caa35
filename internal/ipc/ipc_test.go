package ipc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tempSocket returns a short socket path; macOS caps sun_path at 104 bytes.
func tempSocket(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "cg")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func TestSocketPath_Override(t *testing.T) {
	t.Setenv(SocketEnv, "/tmp/custom.sock")
	assert.Equal(t, "/tmp/custom.sock", SocketPath())

	t.Setenv(SocketEnv, "")
	assert.Equal(t, socketName, filepath.Base(SocketPath()))
}

func TestListen_DialAndSingleInstance(t *testing.T) {
	path := tempSocket(t)
	assert.False(t, IsRunning(path))

	ln, err := Listen(path)
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()

	assert.True(t, IsRunning(path))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c, err := Dial(ctx, path)
	require.NoError(t, err)
	_ = c.Close()

	_, err = Listen(path)
	assert.ErrorIs(t, err, ErrRunning)
}

func TestListen_RemovesStaleSocket(t *testing.T) {
	path := tempSocket(t)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	ln, err := Listen(path)
	require.NoError(t, err)
	_ = ln.Close()
}
