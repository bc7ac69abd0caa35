package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.klb.dev/clipgrid/internal/control"
	"go.klb.dev/clipgrid/internal/slots"
)

var now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func grid() *control.GridReply {
	var v slots.View
	for i := range v.Slots {
		v.Slots[i].Index = i
	}
	v.Slots[0] = slots.Slot{Index: 0, Occupied: true, Entry: slots.NewTextEntry("hello\n  world", now.Add(-3*time.Minute))}
	v.Slots[4] = slots.Slot{Index: 4, Occupied: true, Entry: slots.NewImageEntry(make([]byte, 2048), "0123456789abcdef", now.Add(-time.Hour))}
	v.Tracking = true
	v.Active = 4
	v.Cursor = 5
	return control.NewGridReply(v)
}

func TestPreview(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"a  b\n\tc", 10, "a b c"},
		{"hello world", 6, "hello…"},
		{"héllo wörld", 4, "hél…"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Preview(tt.in, tt.max), "%q/%d", tt.in, tt.max)
	}
}

func TestStatus(t *testing.T) {
	g := grid()
	s := Status(g)
	assert.Contains(t, s, "tracking on")
	assert.Contains(t, s, "2/9 used")
	assert.Contains(t, s, "slot 4 on clipboard")

	g.Tracking = false
	g.Active = slots.NoSlot
	s = Status(g)
	assert.Contains(t, s, "tracking off")
	assert.NotContains(t, s, "on clipboard")
}

func TestGrid(t *testing.T) {
	out := Grid(grid(), Options{Now: now, Focus: NoFocus})

	assert.Contains(t, out, "hello world")
	assert.Contains(t, out, "3 minutes ago")
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "md5 01234567")
	assert.Equal(t, 7, strings.Count(out, "empty"))

	// Status line, then three rows of boxes: border, label, three preview
	// lines, border.
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 1+slots.Rows*6)
}

func TestCell_EmptyAndFocused(t *testing.T) {
	sl := control.SlotInfo{Index: 7, Row: 2, Col: 1}
	plain := Cell(sl, false, Options{Focus: NoFocus})
	focused := Cell(sl, false, Options{Focus: 7})

	assert.Contains(t, plain, "7")
	assert.Contains(t, plain, "empty")
	assert.Contains(t, plain, "╭")
	assert.NotContains(t, focused, "╭")
	assert.Equal(t, strings.Count(plain, "\n"), strings.Count(focused, "\n"))
}

func TestCellAt(t *testing.T) {
	o := Options{CellWidth: 10, Lines: 2}
	w, h := CellSize(o)
	assert.Equal(t, 14, w)
	assert.Equal(t, 5, h)

	tests := []struct {
		x, y int
		want int
	}{
		{0, 0, NoFocus}, // status line
		{0, 1, 0},
		{13, 5, 0},
		{14, 1, 1},
		{41, 1, 2},
		{42, 1, NoFocus},
		{0, 6, 3},
		{20, 11, 7},
		{41, 15, 8},
		{0, 16, NoFocus},
		{-1, 3, NoFocus},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CellAt(tt.x, tt.y, o), "(%d,%d)", tt.x, tt.y)
	}
}
