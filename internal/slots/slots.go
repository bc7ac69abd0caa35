// Package slots implements the 3×3 slot grid and its dedup buffer.
//
// All transitions live in Reduce, a pure function from (State, Event) to
// (State, effects). Manager owns one State and drives Reduce from a single
// event loop fed by clipboard change notifications and user commands.
package slots

import (
	"time"

	"github.com/oklog/ulid/v2"

	"go.klb.dev/clipgrid/internal/clip"
)

const (
	Columns = 3
	Rows    = 3
	Size    = Columns * Rows
)

// NoSlot marks the absence of a slot index.
const NoSlot = -1

// Kind is the content kind of an entry.
type Kind int

const (
	KindText Kind = iota
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Entry is one remembered clipboard value. Entries are immutable once created.
type Entry struct {
	ID       string
	Kind     Kind
	Text     string // KindText only
	Image    []byte // KindImage only: the clipboard's original image bytes
	Hash     string // KindImage only: see imagehash.Digest
	CopiedAt time.Time
}

// NewTextEntry returns a text entry stamped with at.
func NewTextEntry(text string, at time.Time) *Entry {
	return &Entry{ID: newID(at), Kind: KindText, Text: text, CopiedAt: at}
}

// NewImageEntry returns an image entry with a precomputed digest.
func NewImageEntry(image []byte, hash string, at time.Time) *Entry {
	return &Entry{ID: newID(at), Kind: KindImage, Image: image, Hash: hash, CopiedAt: at}
}

func newID(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String()
}

// Items returns the clipboard representation used to restore the entry.
func (e *Entry) Items() []clip.Item {
	if e.Kind == KindImage {
		return []clip.Item{clip.ImageItem(e.Image)}
	}
	return []clip.Item{clip.TextItem(e.Text)}
}

// Slot is one of the Size fixed grid positions.
type Slot struct {
	Index    int
	Occupied bool
	Entry    *Entry
}

func (s Slot) Row() int { return s.Index / Columns }
func (s Slot) Col() int { return s.Index % Columns }

// Token tags one clipboard write made on behalf of a selection.
type Token uint64

// echo is a pending self-inflicted change notification. remaining counts how
// many change events the write is allowed to swallow. prevActive is the
// highlight to restore if the write never happens.
type echo struct {
	token      Token
	remaining  int
	slot       int
	prevActive int
}

// State is the complete slot manager state. The zero value is not usable;
// start from NewState.
type State struct {
	Slots    [Size]Slot
	Cursor   int  // next candidate index; Size means past the last row
	Tracking bool // whether new entries are accepted
	Active   int  // slot whose entry is believed to be on the clipboard, or NoSlot

	lastText  string
	lastImage string
	echoes    []echo
	nextToken Token
}

// NewState returns an empty grid.
func NewState(tracking bool) State {
	s := State{Tracking: tracking, Active: NoSlot}
	for i := range s.Slots {
		s.Slots[i].Index = i
	}
	return s
}

// CursorRow and CursorCol give the next candidate position. CursorRow equals
// Rows once the grid has been filled through its last slot.
func (s State) CursorRow() int { return s.Cursor / Columns }
func (s State) CursorCol() int { return s.Cursor % Columns }

// LastText is the text dedup buffer.
func (s State) LastText() string { return s.lastText }

// LastImageHash is the image dedup buffer.
func (s State) LastImageHash() string { return s.lastImage }

// PendingEchoes is the number of change events that will be swallowed as
// self-echoes.
func (s State) PendingEchoes() int {
	n := 0
	for _, e := range s.echoes {
		n += e.remaining
	}
	return n
}

// NeedsSnapshot reports whether the next change event will consult the
// clipboard contents at all.
func (s State) NeedsSnapshot() bool { return len(s.echoes) == 0 && s.Tracking }

// Occupied returns the number of filled slots.
func (s State) Occupied() int {
	n := 0
	for _, sl := range s.Slots {
		if sl.Occupied {
			n++
		}
	}
	return n
}

// FirstFree returns the lowest free slot index.
func (s State) FirstFree() (int, bool) {
	for i, sl := range s.Slots {
		if !sl.Occupied {
			return i, true
		}
	}
	return NoSlot, false
}
