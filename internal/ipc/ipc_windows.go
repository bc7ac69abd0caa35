//go:build windows

package ipc

import (
	"os"
	"path/filepath"
)

func socketPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "clipgrid", socketName)
	}
	return filepath.Join(os.TempDir(), socketName)
}
