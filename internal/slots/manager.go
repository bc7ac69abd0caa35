package slots

import (
	"context"
	"log/slog"
	"time"

	"go.klb.dev/clipgrid/internal/clip"
	"go.klb.dev/clipgrid/internal/imagehash"
)

// View is a read-only copy of the grid for rendering.
type View struct {
	Slots         [Size]Slot
	Cursor        int
	Tracking      bool
	Active        int
	PendingEchoes int
}

// Option configures a Manager.
type Option func(*Manager)

// WithTracking sets the initial tracking toggle. Default: on.
func WithTracking(on bool) Option {
	return func(m *Manager) { m.state.Tracking = on }
}

// WithObserver registers fn to receive every applied event with its effects.
// fn runs on the event loop and must not block.
func WithObserver(fn func(Event, []Effect)) Option {
	return func(m *Manager) { m.observer = fn }
}

// WithClock overrides time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

type command struct {
	ev    Event       // nil = view only
	write []clip.Item // put on the clipboard as an outside copy
	reply chan result
}

type result struct {
	view View
	err  error
}

// Manager owns the slot State and the clipboard backend. All state
// transitions run on the goroutine executing Run.
type Manager struct {
	backend  clip.Backend
	state    State
	observer func(Event, []Effect)
	now      func() time.Time

	cmds chan command
	done chan struct{}
}

// NewManager returns a Manager with an empty grid. Call Run to start it.
func NewManager(backend clip.Backend, opts ...Option) *Manager {
	m := &Manager{
		backend: backend,
		state:   NewState(true),
		now:     time.Now,
		cmds:    make(chan command),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Run is the event loop. It blocks until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	defer close(m.done)

	slog.Info("slot manager started",
		"backend", m.backend.Name(),
		"tracking", m.state.Tracking,
	)

	watch := m.backend.Watch()
	for {
		select {
		case <-ctx.Done():
			slog.Info("slot manager stopped")
			return
		case <-watch:
			m.handleChange()
		case c := <-m.cmds:
			var r result
			switch {
			case c.write != nil:
				r.err = m.copy(c.write)
			case c.ev != nil:
				_, r.err = m.apply(c.ev)
			}
			r.view = m.view()
			c.reply <- r
		}
	}
}

// Select writes slot i's entry back to the clipboard.
func (m *Manager) Select(ctx context.Context, i int) error {
	_, err := m.do(ctx, Select{Index: i})
	return err
}

// Evict frees slot i.
func (m *Manager) Evict(ctx context.Context, i int) error {
	_, err := m.do(ctx, Evict{Index: i})
	return err
}

// SetTracking turns acceptance of new clipboard entries on or off.
func (m *Manager) SetTracking(ctx context.Context, on bool) error {
	_, err := m.do(ctx, SetTracking{On: on})
	return err
}

// View returns a copy of the current grid.
func (m *Manager) View(ctx context.Context) (View, error) {
	return m.do(ctx, nil)
}

// Copy puts text on the clipboard as if another program had copied it. No
// echo is recorded, so the resulting change fills a slot like any other. The
// change is handled after Copy returns.
func (m *Manager) Copy(ctx context.Context, text string) error {
	_, err := m.send(ctx, command{write: []clip.Item{clip.TextItem(text)}})
	return err
}

func (m *Manager) do(ctx context.Context, ev Event) (View, error) {
	return m.send(ctx, command{ev: ev})
}

func (m *Manager) send(ctx context.Context, c command) (View, error) {
	c.reply = make(chan result, 1)
	select {
	case m.cmds <- c:
	case <-m.done:
		return View{}, ErrStopped
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
	select {
	case r := <-c.reply:
		return r.view, r.err
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// handleChange processes one clipboard notification. Read failures drop the
// event without touching state.
func (m *Manager) handleChange() {
	var ev Changed
	if m.state.NeedsSnapshot() {
		var err error
		ev, err = m.snapshot()
		if err != nil {
			slog.Warn("clipboard change dropped", "err", err)
			_, _ = m.apply(ReadFailed{Err: err})
			return
		}
	}
	_, _ = m.apply(ev)
}

func (m *Manager) copy(items []clip.Item) error {
	if err := m.backend.Write(items); err != nil {
		slog.Warn("clipboard copy failed", "err", err)
		return &ClipboardAccessError{Op: "write", Err: err}
	}
	slog.Debug("text copied to clipboard")
	return nil
}

func (m *Manager) snapshot() (Changed, error) {
	items, err := m.backend.Read()
	if err != nil {
		return Changed{}, &ClipboardAccessError{Op: "read", Err: err}
	}
	now := m.now()

	var ev Changed
	if it, ok := clip.Find(items, clip.MIMEText); ok && len(it.Data) > 0 {
		ev.Text = NewTextEntry(string(it.Data), now)
	}
	if it, ok := clip.Find(items, clip.MIMEPNG); ok && len(it.Data) > 0 {
		hash, err := imagehash.Digest(it.Data)
		if err != nil {
			return Changed{}, &ClipboardAccessError{Op: "digest", Err: err}
		}
		ev.Image = NewImageEntry(it.Data, hash, now)
	}
	return ev, nil
}

// apply runs Reduce and carries out its Write effects.
func (m *Manager) apply(ev Event) ([]Effect, error) {
	next, effects, err := Reduce(m.state, ev)
	if err != nil {
		return nil, err
	}
	m.state = next

	for _, eff := range effects {
		w, ok := eff.(Write)
		if !ok {
			continue
		}
		if werr := m.backend.Write(w.Entry.Items()); werr != nil {
			err = &ClipboardAccessError{Op: "write", Err: werr}
			var more []Effect
			m.state, more, _ = Reduce(m.state, WriteFailed{Token: w.Token})
			effects = append(effects, more...)
			break
		}
	}

	logEffects(effects)
	if m.observer != nil {
		m.observer(ev, effects)
	}
	return effects, err
}

func (m *Manager) view() View {
	return View{
		Slots:         m.state.Slots,
		Cursor:        m.state.Cursor,
		Tracking:      m.state.Tracking,
		Active:        m.state.Active,
		PendingEchoes: m.state.PendingEchoes(),
	}
}

// logEffects logs at INFO for grid changes and DEBUG for everything that
// leaves the grid untouched. Text previews only appear at DEBUG.
func logEffects(effects []Effect) {
	cancelled := make(map[Token]bool)
	for _, eff := range effects {
		if e, ok := eff.(EchoCancelled); ok {
			cancelled[e.Token] = true
		}
	}
	for _, eff := range effects {
		switch e := eff.(type) {
		case Filled:
			slog.Info("slot filled", "slot", e.Index, "kind", e.Entry.Kind.String(), "id", e.Entry.ID)
			logPreview(e.Entry)
		case Write:
			if cancelled[e.Token] {
				continue
			}
			slog.Info("slot restored to clipboard", "slot", e.Index, "kind", e.Entry.Kind.String(), "token", e.Token)
		case Freed:
			slog.Info("slot evicted", "slot", e.Index)
		case TrackingChanged:
			slog.Info("tracking changed", "on", e.On)
		case EchoCancelled:
			slog.Warn("clipboard write failed, echo cancelled", "token", e.Token)
		case Dropped:
			if e.Reason == ReasonGridFull {
				slog.Info("entry dropped", "kind", e.Kind.String(), "reason", e.Reason)
			} else {
				slog.Debug("entry dropped", "reason", e.Reason)
			}
		case Duplicate:
			slog.Debug("duplicate ignored", "kind", e.Kind.String())
		case Suppressed:
			slog.Debug("self-echo suppressed", "token", e.Token)
		case Untracked:
			slog.Debug("tracking off, change ignored")
		}
	}
}

const previewRunes = 120

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func logPreview(e *Entry) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if e.Kind == KindText {
		slog.Debug("entry", "id", e.ID, "preview", truncate(e.Text, previewRunes))
		return
	}
	slog.Debug("entry", "id", e.ID, "size_bytes", len(e.Image), "md5", e.Hash)
}
