//go:build !windows

package listener

import (
	"errors"
	"fmt"
)

type unsupportedRegistrar struct{}

func (unsupportedRegistrar) Register(uintptr) error {
	return fmt.Errorf("clipboard format listener: %w", errors.ErrUnsupported)
}

func (unsupportedRegistrar) Unregister(uintptr) error { return nil }

// platformRegistrar returns a registrar that always fails: only Windows
// delivers WM_CLIPBOARDUPDATE. Other platforms detect changes by polling in
// package clip.
func platformRegistrar() Registrar { return unsupportedRegistrar{} }
