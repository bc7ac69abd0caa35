// Package listener bridges OS "clipboard contents changed" window messages
// into a single application-level event.
//
// A Subscription is attached to a host Window that already has a native
// handle. The hook it installs intercepts WM_CLIPBOARDUPDATE and raises a
// payload-free signal on Subscription.C. The notification carries no data:
// receivers re-read the clipboard themselves.
package listener

import (
	"errors"
	"fmt"
	"sync"
)

// WMClipboardUpdate is the Win32 message id sent to registered windows when
// the clipboard contents change.
const WMClipboardUpdate uint32 = 0x031D

// ErrNotInitialized is returned by Attach when the host window has no native
// handle yet. It is a programmer error and not recoverable at runtime.
var ErrNotInitialized = errors.New("listener: host window is not initialized")

// Hook inspects one window message and reports whether it was handled.
type Hook func(msg uint32, wParam, lParam uintptr) bool

// Window is the host window a listener attaches to.
type Window interface {
	// Handle returns the native window handle, or 0 if the window has not
	// been realized.
	Handle() uintptr

	// AddHook installs h into the window's message pump and returns a
	// function that removes it again.
	AddHook(h Hook) (remove func())
}

// Registrar registers and unregisters a window handle for clipboard
// notifications with the OS.
type Registrar interface {
	Register(hwnd uintptr) error
	Unregister(hwnd uintptr) error
}

// Subscription delivers ClipboardChanged signals for one host window.
type Subscription struct {
	// C receives one value per clipboard replacement. At most one signal is
	// pending at a time; bursts coalesce.
	C <-chan struct{}

	c      chan struct{}
	hwnd   uintptr
	reg    Registrar
	remove func()
	once   sync.Once
}

// Attach registers w for clipboard-update notifications using the platform
// registrar and starts intercepting its message pump.
func Attach(w Window) (*Subscription, error) {
	return AttachWith(w, platformRegistrar())
}

// AttachWith is Attach with an explicit Registrar.
func AttachWith(w Window, reg Registrar) (*Subscription, error) {
	if w == nil || w.Handle() == 0 {
		return nil, ErrNotInitialized
	}
	hwnd := w.Handle()

	c := make(chan struct{}, 1)
	s := &Subscription{C: c, c: c, hwnd: hwnd, reg: reg}
	s.remove = w.AddHook(s.intercept)

	if err := reg.Register(hwnd); err != nil {
		s.remove()
		return nil, fmt.Errorf("listener: register clipboard listener: %w", err)
	}
	return s, nil
}

func (s *Subscription) intercept(msg uint32, _, _ uintptr) bool {
	if msg != WMClipboardUpdate {
		return false
	}
	select {
	case s.c <- struct{}{}:
	default:
	}
	return true
}

// Close unregisters the window and removes the hook. C is not closed.
func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		s.remove()
		err = s.reg.Unregister(s.hwnd)
	})
	return err
}
