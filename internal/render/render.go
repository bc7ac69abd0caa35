// Package render draws the slot grid for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"go.klb.dev/clipgrid/internal/control"
	"go.klb.dev/clipgrid/internal/slots"
)

// NoFocus disables the focus highlight.
const NoFocus = -1

// Options tunes Grid. Zero sizes take defaults.
type Options struct {
	CellWidth int // content width of one cell; default 24
	Lines     int // preview lines per cell; default 3
	Focus     int // cell drawn with a heavy border, or NoFocus
	Now       time.Time
}

func (o Options) withDefaults() Options {
	if o.CellWidth <= 0 {
		o.CellWidth = 24
	}
	if o.Lines <= 0 {
		o.Lines = 3
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

var (
	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	activeBorder = lipgloss.Color("10")
	focusBorder  = lipgloss.Color("12")

	labelStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	offStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	onStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// Grid renders the status line followed by the 3×3 grid.
func Grid(g *control.GridReply, o Options) string {
	o = o.withDefaults()
	rows := make([]string, 0, slots.Rows)
	for r := range slots.Rows {
		cells := make([]string, 0, slots.Columns)
		for c := range slots.Columns {
			sl, _ := g.Slot(r*slots.Columns + c)
			cells = append(cells, Cell(sl, g.Active == sl.Index && sl.Occupied, o))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return Status(g) + "\n" + lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Cell renders one slot.
func Cell(sl control.SlotInfo, active bool, o Options) string {
	o = o.withDefaults()
	style := cellStyle.Width(o.CellWidth + 2)
	switch {
	case o.Focus == sl.Index:
		style = style.Border(lipgloss.ThickBorder()).BorderForeground(focusBorder)
	case active:
		style = style.BorderForeground(activeBorder)
	}

	label := labelStyle.Render(fmt.Sprintf("%d", sl.Index))
	if !sl.Occupied {
		body := dimStyle.Render("empty") + strings.Repeat("\n", o.Lines-1)
		return style.Render(label + "\n" + body)
	}

	meta := Preview(sl.Kind+" · "+humanize.RelTime(sl.CopiedAt, o.Now, "ago", "from now"), o.CellWidth-2)
	header := label + " " + dimStyle.Render(meta)
	var body string
	switch sl.Kind {
	case slots.KindImage.String():
		body = fmt.Sprintf("image, %s\nmd5 %s", humanize.Bytes(uint64(sl.ImageSize)), shortHash(sl.Hash))
	default:
		body = Preview(sl.Text, o.CellWidth*o.Lines)
	}
	body = lipgloss.NewStyle().Width(o.CellWidth).Height(o.Lines).MaxHeight(o.Lines).Render(body)
	return style.Render(header + "\n" + body)
}

// Status summarizes tracking, occupancy and the active slot.
func Status(g *control.GridReply) string {
	used := 0
	for _, sl := range g.Slots {
		if sl.Occupied {
			used++
		}
	}
	parts := []string{onStyle.Render("tracking on")}
	if !g.Tracking {
		parts[0] = offStyle.Render("tracking off")
	}
	parts = append(parts, fmt.Sprintf("%d/%d used", used, len(g.Slots)))
	if g.Active != slots.NoSlot {
		parts = append(parts, fmt.Sprintf("slot %d on clipboard", g.Active))
	}
	if g.PendingEchoes > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d echo pending", g.PendingEchoes)))
	}
	return strings.Join(parts, "  ")
}

// Preview collapses whitespace in s and cuts it to max runes, appending an
// ellipsis when anything was removed.
func Preview(s string, max int) string {
	if max <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}

// CellSize is the outer size of one rendered cell, borders included.
func CellSize(o Options) (width, height int) {
	o = o.withDefaults()
	return o.CellWidth + 4, o.Lines + 3
}

// CellAt maps a position in Grid's output to a slot index. Row 0 is the
// status line. It returns NoFocus outside the grid.
func CellAt(x, y int, o Options) int {
	w, h := CellSize(o)
	y--
	if x < 0 || y < 0 {
		return NoFocus
	}
	r, c := y/h, x/w
	if r >= slots.Rows || c >= slots.Columns {
		return NoFocus
	}
	return r*slots.Columns + c
}
