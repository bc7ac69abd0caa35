//go:build darwin || linux

package clip

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.design/x/clipboard"
)

// board is the system clipboard as the poller sees it.
type board interface {
	read(f clipboard.Format) []byte
	write(f clipboard.Format, data []byte)
}

type systemBoard struct{}

func (systemBoard) read(f clipboard.Format) []byte        { return clipboard.Read(f) }
func (systemBoard) write(f clipboard.Format, data []byte) { clipboard.Write(f, data) }

type pollBackend struct {
	board    board
	interval time.Duration
	watchCh  chan struct{}
	done     chan struct{}

	mu   sync.Mutex // serializes Write against the poll comparison
	last []Item
}

// New returns the clipboard backend, or a headless no-op backend if the
// display environment is unavailable (e.g. a headless server without X11
// or Wayland).
func New(opts Options) (Backend, error) {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return newHeadless(), nil
	}
	return newPollBackend(systemBoard{}, opts.pollInterval()), nil
}

func newPollBackend(bd board, interval time.Duration) *pollBackend {
	b := &pollBackend{
		board:    bd,
		interval: interval,
		watchCh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	b.last = b.readItems()
	go b.poll()
	return b
}

func (b *pollBackend) Name() string { return "golang.design clipboard (poll " + b.interval.String() + ")" }

func (b *pollBackend) poll() {
	t := time.NewTicker(b.interval)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			b.mu.Lock()
			items := b.readItems()
			changed := !equalItems(items, b.last)
			if changed {
				b.last = items
			}
			b.mu.Unlock()
			if changed {
				notify(b.watchCh)
			}
		}
	}
}

func (b *pollBackend) Read() ([]Item, error) { return b.readItems(), nil }

func (b *pollBackend) readItems() []Item {
	var items []Item
	if text := b.board.read(clipboard.FmtText); text != nil {
		items = append(items, Item{MIME: MIMEText, Data: text})
	}
	if img := b.board.read(clipboard.FmtImage); img != nil {
		items = append(items, Item{MIME: MIMEPNG, Data: img})
	}
	return items
}

// Write replaces the clipboard and raises exactly one change signal, even
// when the new contents equal the old. The poller then treats what is on
// the clipboard as already seen.
func (b *pollBackend) Write(items []Item) error {
	for _, it := range items {
		if it.MIME != MIMEText && it.MIME != MIMEPNG {
			return fmt.Errorf("unsupported MIME type: %s", it.MIME)
		}
	}

	b.mu.Lock()
	for _, it := range items {
		if it.MIME == MIMEText {
			b.board.write(clipboard.FmtText, it.Data)
		} else {
			b.board.write(clipboard.FmtImage, it.Data)
		}
	}
	b.last = b.readItems()
	b.mu.Unlock()

	notify(b.watchCh)
	return nil
}

func (b *pollBackend) Watch() <-chan struct{} { return b.watchCh }
func (b *pollBackend) Close()                 { close(b.done) }
