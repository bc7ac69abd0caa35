// Package tui provides the BubbleTea-based terminal user interface.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go.klb.dev/clipgrid/internal/control"
	"go.klb.dev/clipgrid/internal/render"
	"go.klb.dev/clipgrid/internal/slots"
)

const callTimeout = 5 * time.Second

// Client is the part of control.Client the UI needs.
type Client interface {
	Grid(ctx context.Context) (*control.GridReply, error)
	Select(ctx context.Context, i int) (*control.GridReply, error)
	Evict(ctx context.Context, i int) (*control.GridReply, error)
	SetTracking(ctx context.Context, on bool) (*control.GridReply, error)
	Quit(ctx context.Context) error
}

// Model is the main TUI model.
type Model struct {
	client  Client
	updates <-chan tea.Msg

	grid   *control.GridReply
	focus  int
	render render.Options

	keys     KeyMap
	help     help.Model
	quitting bool

	// Status message
	statusMsg string
	statusErr bool
}

// New returns a Model. updates, if non-nil, delivers pushed grids from the
// daemon.
func New(c Client, updates <-chan tea.Msg) Model {
	return Model{
		client:  c,
		updates: updates,
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
}

type gridMsg struct{ grid *control.GridReply }

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// Focus returns the slot under the keyboard cursor.
func (m Model) Focus() int { return m.focus }

// Init loads the grid and starts listening for pushes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch, m.waitForUpdate)
}

func (m Model) fetch() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	g, err := m.client.Grid(ctx)
	if err != nil {
		return errStatus(err)
	}
	return gridMsg{g}
}

func (m Model) waitForUpdate() tea.Msg {
	if m.updates == nil {
		return nil
	}
	msg, ok := <-m.updates
	if !ok {
		return statusMsg{text: "daemon disconnected", isErr: true}
	}
	return msg
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case gridMsg:
		m.grid = msg.grid
		return m, nil

	case pushMsg:
		m.grid = msg.grid
		return m, m.waitForUpdate

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.QuitApp):
		return m, m.quitApp
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.focus >= slots.Columns {
			m.focus -= slots.Columns
		}
	case key.Matches(msg, m.keys.Down):
		if m.focus+slots.Columns < slots.Size {
			m.focus += slots.Columns
		}
	case key.Matches(msg, m.keys.Left):
		if m.focus%slots.Columns > 0 {
			m.focus--
		}
	case key.Matches(msg, m.keys.Right):
		if m.focus%slots.Columns < slots.Columns-1 {
			m.focus++
		}
	case key.Matches(msg, m.keys.Select):
		return m, m.selectSlot(m.focus)
	case key.Matches(msg, m.keys.Evict):
		return m, m.evictSlot(m.focus)
	case key.Matches(msg, m.keys.Track):
		if m.grid != nil {
			return m, m.setTracking(!m.grid.Tracking)
		}
	}
	return m, nil
}

// handleMouse maps a left click to select and a right click to evict.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	i := render.CellAt(msg.X, msg.Y, m.render)
	if i == render.NoFocus {
		return m, nil
	}
	m.focus = i
	switch msg.Button {
	case tea.MouseButtonLeft:
		return m, m.selectSlot(i)
	case tea.MouseButtonRight:
		return m, m.evictSlot(i)
	}
	return m, nil
}

func (m Model) selectSlot(i int) tea.Cmd {
	return m.call(func(ctx context.Context) (*control.GridReply, error) {
		return m.client.Select(ctx, i)
	})
}

func (m Model) evictSlot(i int) tea.Cmd {
	return m.call(func(ctx context.Context) (*control.GridReply, error) {
		return m.client.Evict(ctx, i)
	})
}

func (m Model) setTracking(on bool) tea.Cmd {
	return m.call(func(ctx context.Context) (*control.GridReply, error) {
		return m.client.SetTracking(ctx, on)
	})
}

func (m Model) call(fn func(context.Context) (*control.GridReply, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		g, err := fn(ctx)
		if err != nil {
			return errStatus(err)
		}
		return gridMsg{g}
	}
}

type quitMsg struct{}

func (m Model) quitApp() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := m.client.Quit(ctx); err != nil {
		return errStatus(err)
	}
	return quitMsg{}
}

func errStatus(err error) tea.Msg {
	return statusMsg{text: control.Describe(err), isErr: true}
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.grid == nil {
		if m.statusMsg != "" {
			return m.statusMsg + "\n"
		}
		return "Connecting...\n"
	}

	o := m.render
	o.Focus = m.focus
	s := render.Grid(m.grid, o) + "\n"
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		return s + statusStyle.Render(m.statusMsg)
	}
	return s + m.help.View(m.keys)
}
