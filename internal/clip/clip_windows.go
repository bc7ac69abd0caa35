//go:build windows

package clip

import (
	"fmt"
	"log/slog"

	"golang.design/x/clipboard"

	"go.klb.dev/clipgrid/internal/listener"
)

type windowsBackend struct {
	host *listener.Host
	sub  *listener.Subscription
}

// New returns the Windows clipboard backend. Change notification comes from
// AddClipboardFormatListener on a message-only window, so opts.PollInterval
// is unused.
func New(_ Options) (Backend, error) {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return newHeadless(), nil
	}
	host, err := listener.NewHost()
	if err != nil {
		return nil, fmt.Errorf("listener window: %w", err)
	}
	sub, err := listener.Attach(host)
	if err != nil {
		host.Close()
		return nil, err
	}
	return &windowsBackend{host: host, sub: sub}, nil
}

func (b *windowsBackend) Name() string { return "Windows clipboard (WM_CLIPBOARDUPDATE)" }

func (b *windowsBackend) Read() ([]Item, error) {
	var items []Item
	if text := clipboard.Read(clipboard.FmtText); text != nil {
		items = append(items, Item{MIME: MIMEText, Data: text})
	}
	if img := clipboard.Read(clipboard.FmtImage); img != nil {
		items = append(items, Item{MIME: MIMEPNG, Data: img})
	}
	return items, nil
}

func (b *windowsBackend) Write(items []Item) error {
	for _, it := range items {
		switch it.MIME {
		case MIMEText:
			clipboard.Write(clipboard.FmtText, it.Data)
		case MIMEPNG:
			clipboard.Write(clipboard.FmtImage, it.Data)
		default:
			return fmt.Errorf("unsupported MIME type: %s", it.MIME)
		}
	}
	return nil
}

func (b *windowsBackend) Watch() <-chan struct{} { return b.sub.C }

func (b *windowsBackend) Close() {
	if err := b.sub.Close(); err != nil {
		slog.Warn("clipboard listener close failed", "err", err)
	}
	b.host.Close()
}
