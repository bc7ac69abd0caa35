// Package clip provides a unified interface to the system clipboard across
// platforms. Build constraints select the appropriate implementation:
//
//	clip_windows.go  golang.design/x/clipboard + a native WM_CLIPBOARDUPDATE listener
//	clip_poll.go     macOS and Linux via golang.design/x/clipboard, polling only
//	clip_other.go    headless stub for everything else
//	memory.go        in-process clipboard for tests and --headless runs
package clip

import (
	"bytes"
	"time"
)

const (
	MIMEText = "text/plain"
	MIMEPNG  = "image/png"
)

// DefaultPollInterval is how often polling backends sample the clipboard.
const DefaultPollInterval = 250 * time.Millisecond

// Item is a single clipboard representation with a MIME type.
type Item struct {
	MIME string
	Data []byte
}

// TextItem returns a text/plain Item.
func TextItem(s string) Item { return Item{MIME: MIMEText, Data: []byte(s)} }

// ImageItem returns an image/png Item.
func ImageItem(png []byte) Item { return Item{MIME: MIMEPNG, Data: png} }

// Find returns the first item of the given MIME type.
func Find(items []Item, mime string) (Item, bool) {
	for _, it := range items {
		if it.MIME == mime {
			return it, true
		}
	}
	return Item{}, false
}

func equalItems(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].MIME != b[i].MIME || !bytes.Equal(a[i].Data, b[i].Data) {
			return false
		}
	}
	return true
}

// Options configures New.
type Options struct {
	// PollInterval applies to backends without native change notification.
	PollInterval time.Duration
}

func (o Options) pollInterval() time.Duration {
	if o.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return o.PollInterval
}

// Backend is the interface that all platform clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard contents as a slice of typed items.
	// Returns nil, nil if the clipboard is empty or contains only unsupported types.
	Read() ([]Item, error)

	// Write replaces the clipboard contents with the provided items.
	Write(items []Item) error

	// Watch returns a channel that receives a signal whenever the clipboard
	// changes, including changes made through Write. The channel is never
	// closed and holds at most one pending signal. The caller should call
	// Read() when it receives from the channel.
	Watch() <-chan struct{}

	// Close releases any resources held by the backend.
	Close()
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
