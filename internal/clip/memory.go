package clip

import "sync"

// Memory is an in-process clipboard. Every Write replaces the contents and
// raises a change signal, including writes made by the watcher itself, the
// way an OS clipboard does.
type Memory struct {
	mu       sync.Mutex
	items    []Item
	readErr  error
	writeErr error
	watchCh  chan struct{}
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory {
	return &Memory{watchCh: make(chan struct{}, 1)}
}

func (m *Memory) Name() string { return "in-memory" }

func (m *Memory) Read() ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return cloneItems(m.items), nil
}

func (m *Memory) Write(items []Item) error {
	m.mu.Lock()
	if m.writeErr != nil {
		err := m.writeErr
		m.mu.Unlock()
		return err
	}
	m.items = cloneItems(items)
	m.mu.Unlock()
	notify(m.watchCh)
	return nil
}

// CopyText simulates another process copying text.
func (m *Memory) CopyText(s string) { _ = m.Write([]Item{TextItem(s)}) }

// CopyImage simulates another process copying a PNG image.
func (m *Memory) CopyImage(png []byte) { _ = m.Write([]Item{ImageItem(png)}) }

// FailReads makes subsequent Reads return err. A nil err restores reads.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// FailWrites makes subsequent Writes return err. A nil err restores writes.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}

func (m *Memory) Watch() <-chan struct{} { return m.watchCh }
func (m *Memory) Close()                 {}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{MIME: it.MIME, Data: append([]byte(nil), it.Data...)}
	}
	return out
}
