package listener

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	hwnd  uintptr
	hooks []Hook
}

func (w *fakeWindow) Handle() uintptr { return w.hwnd }

func (w *fakeWindow) AddHook(h Hook) func() {
	w.hooks = append(w.hooks, h)
	idx := len(w.hooks) - 1
	return func() { w.hooks[idx] = nil }
}

// send pumps one message through the installed hooks the way a window
// procedure would.
func (w *fakeWindow) send(msg uint32) bool {
	for _, h := range w.hooks {
		if h != nil && h(msg, 0, 0) {
			return true
		}
	}
	return false
}

type fakeRegistrar struct {
	registered   []uintptr
	unregistered []uintptr
	err          error
}

func (r *fakeRegistrar) Register(hwnd uintptr) error {
	if r.err != nil {
		return r.err
	}
	r.registered = append(r.registered, hwnd)
	return nil
}

func (r *fakeRegistrar) Unregister(hwnd uintptr) error {
	r.unregistered = append(r.unregistered, hwnd)
	return nil
}

func pending(s *Subscription) int {
	n := 0
	for {
		select {
		case <-s.C:
			n++
		default:
			return n
		}
	}
}

func TestAttach_NotInitialized(t *testing.T) {
	reg := &fakeRegistrar{}

	_, err := AttachWith(&fakeWindow{}, reg)
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = AttachWith(nil, reg)
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.Empty(t, reg.registered)
}

func TestAttach_RaisesOnClipboardUpdate(t *testing.T) {
	w := &fakeWindow{hwnd: 0x42}
	reg := &fakeRegistrar{}

	s, err := AttachWith(w, reg)
	require.NoError(t, err)
	assert.Equal(t, []uintptr{0x42}, reg.registered)

	assert.True(t, w.send(WMClipboardUpdate))
	assert.Equal(t, 1, pending(s))
}

func TestAttach_PassesOtherMessages(t *testing.T) {
	w := &fakeWindow{hwnd: 1}
	s, err := AttachWith(w, &fakeRegistrar{})
	require.NoError(t, err)

	assert.False(t, w.send(0x0010))
	assert.Equal(t, 0, pending(s))
}

func TestAttach_Coalesces(t *testing.T) {
	w := &fakeWindow{hwnd: 1}
	s, err := AttachWith(w, &fakeRegistrar{})
	require.NoError(t, err)

	for range 5 {
		w.send(WMClipboardUpdate)
	}
	assert.Equal(t, 1, pending(s))

	w.send(WMClipboardUpdate)
	assert.Equal(t, 1, pending(s))
}

func TestAttach_RegisterFailureRemovesHook(t *testing.T) {
	w := &fakeWindow{hwnd: 1}
	boom := errors.New("access denied")

	_, err := AttachWith(w, &fakeRegistrar{err: boom})
	require.ErrorIs(t, err, boom)
	assert.False(t, w.send(WMClipboardUpdate))
}

func TestSubscription_Close(t *testing.T) {
	w := &fakeWindow{hwnd: 7}
	reg := &fakeRegistrar{}
	s, err := AttachWith(w, reg)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, []uintptr{7}, reg.unregistered)

	assert.False(t, w.send(WMClipboardUpdate))
	assert.Equal(t, 0, pending(s))
}
