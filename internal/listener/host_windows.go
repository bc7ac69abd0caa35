//go:build windows

package listener

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procAddClipboardFormatListener    = user32.NewProc("AddClipboardFormatListener")
	procRemoveClipboardFormatListener = user32.NewProc("RemoveClipboardFormatListener")
	procRegisterClassExW              = user32.NewProc("RegisterClassExW")
	procCreateWindowExW               = user32.NewProc("CreateWindowExW")
	procDefWindowProcW                = user32.NewProc("DefWindowProcW")
	procGetMessageW                   = user32.NewProc("GetMessageW")
	procTranslateMessage              = user32.NewProc("TranslateMessage")
	procDispatchMessageW              = user32.NewProc("DispatchMessageW")
	procPostMessageW                  = user32.NewProc("PostMessageW")
	procPostQuitMessage               = user32.NewProc("PostQuitMessage")
	procGetModuleHandleW              = kernel32.NewProc("GetModuleHandleW")
)

const (
	wmDestroy = 0x0002
	wmClose   = 0x0010

	// HWND_MESSAGE, (HWND)-3: parent for message-only windows.
	hwndMessage = ^uintptr(2)
)

type wndClassEx struct {
	size       uint32
	style      uint32
	wndProc    uintptr
	clsExtra   int32
	wndExtra   int32
	instance   uintptr
	icon       uintptr
	cursor     uintptr
	background uintptr
	menuName   *uint16
	className  *uint16
	iconSm     uintptr
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

var (
	classOnce sync.Once
	classErr  error
	className *uint16
	instance  uintptr

	hostsMu sync.RWMutex
	hosts   = make(map[uintptr]*Host)
)

func registerClass() error {
	classOnce.Do(func() {
		className, classErr = windows.UTF16PtrFromString("ClipgridListener")
		if classErr != nil {
			return
		}
		instance, _, _ = procGetModuleHandleW.Call(0)
		wc := wndClassEx{
			wndProc:   windows.NewCallback(wndProc),
			instance:  instance,
			className: className,
		}
		wc.size = uint32(unsafe.Sizeof(wc))
		atom, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc)))
		if atom == 0 {
			classErr = fmt.Errorf("RegisterClassEx: %w", err)
		}
	})
	return classErr
}

func wndProc(hwnd, message, wParam, lParam uintptr) uintptr {
	hostsMu.RLock()
	h := hosts[hwnd]
	hostsMu.RUnlock()

	if h != nil && h.dispatch(uint32(message), wParam, lParam) {
		return 0
	}
	if message == wmDestroy {
		hostsMu.Lock()
		delete(hosts, hwnd)
		hostsMu.Unlock()
		procPostQuitMessage.Call(0)
		return 0
	}
	r, _, _ := procDefWindowProcW.Call(hwnd, message, wParam, lParam)
	return r
}

// Host is a message-only window whose message pump runs on a dedicated,
// locked OS thread.
type Host struct {
	hwnd uintptr
	done chan struct{}

	mu    sync.Mutex
	hooks map[int]Hook
	next  int
}

// NewHost creates the window and returns once it has a native handle.
func NewHost() (*Host, error) {
	h := &Host{
		done:  make(chan struct{}),
		hooks: make(map[int]Hook),
	}
	errCh := make(chan error, 1)
	go h.pump(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Host) pump(errCh chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(h.done)

	if err := registerClass(); err != nil {
		errCh <- err
		return
	}
	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		0,
		0,
		0, 0, 0, 0,
		hwndMessage,
		0,
		instance,
		0,
	)
	if hwnd == 0 {
		errCh <- fmt.Errorf("CreateWindowEx: %w", err)
		return
	}

	hostsMu.Lock()
	hosts[hwnd] = h
	hostsMu.Unlock()
	h.hwnd = hwnd
	errCh <- nil

	var m msg
	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		// 0 is WM_QUIT, -1 is an error.
		if int32(r) <= 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func (h *Host) dispatch(message uint32, wParam, lParam uintptr) bool {
	h.mu.Lock()
	hooks := make([]Hook, 0, len(h.hooks))
	for _, hk := range h.hooks {
		hooks = append(hooks, hk)
	}
	h.mu.Unlock()

	for _, hk := range hooks {
		if hk(message, wParam, lParam) {
			return true
		}
	}
	return false
}

// Handle implements Window.
func (h *Host) Handle() uintptr { return h.hwnd }

// AddHook implements Window.
func (h *Host) AddHook(hk Hook) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.hooks[id] = hk
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.hooks, id)
		h.mu.Unlock()
	}
}

// Close destroys the window and waits for its message pump to exit.
func (h *Host) Close() {
	procPostMessageW.Call(h.hwnd, wmClose, 0, 0)
	<-h.done
}

type win32Registrar struct{}

func (win32Registrar) Register(hwnd uintptr) error {
	if r, _, err := procAddClipboardFormatListener.Call(hwnd); r == 0 {
		return fmt.Errorf("AddClipboardFormatListener: %w", err)
	}
	return nil
}

func (win32Registrar) Unregister(hwnd uintptr) error {
	if r, _, err := procRemoveClipboardFormatListener.Call(hwnd); r == 0 {
		return fmt.Errorf("RemoveClipboardFormatListener: %w", err)
	}
	return nil
}

func platformRegistrar() Registrar { return win32Registrar{} }
