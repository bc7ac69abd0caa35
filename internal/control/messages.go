package control

import (
	"time"

	"go.klb.dev/clipgrid/internal/slots"
)

// Empty is the request or reply of calls that carry nothing.
type Empty struct{}

// SlotRequest names one slot by index.
type SlotRequest struct {
	Index int `json:"index"`
}

// TrackingRequest sets the tracking toggle.
type TrackingRequest struct {
	On bool `json:"on"`
}

// CopyRequest carries text to put on the clipboard.
type CopyRequest struct {
	Text string `json:"text"`
}

// SlotInfo describes one grid position. Image bytes stay in the daemon.
type SlotInfo struct {
	Index     int       `json:"index"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Occupied  bool      `json:"occupied"`
	Kind      string    `json:"kind,omitempty"`
	ID        string    `json:"id,omitempty"`
	Text      string    `json:"text,omitempty"`
	ImageSize int       `json:"image_size,omitempty"`
	Hash      string    `json:"hash,omitempty"`
	CopiedAt  time.Time `json:"copied_at,omitzero"`
}

// GridReply is a snapshot of the whole grid.
type GridReply struct {
	Slots         []SlotInfo `json:"slots"`
	Cursor        int        `json:"cursor"`
	Tracking      bool       `json:"tracking"`
	Active        int        `json:"active"`
	PendingEchoes int        `json:"pending_echoes"`
}

// Slot returns the entry at i, or false if i is out of range.
func (g *GridReply) Slot(i int) (SlotInfo, bool) {
	if i < 0 || i >= len(g.Slots) {
		return SlotInfo{}, false
	}
	return g.Slots[i], true
}

// NewGridReply converts a manager view to its wire form.
func NewGridReply(v slots.View) *GridReply {
	g := &GridReply{
		Slots:         make([]SlotInfo, len(v.Slots)),
		Cursor:        v.Cursor,
		Tracking:      v.Tracking,
		Active:        v.Active,
		PendingEchoes: v.PendingEchoes,
	}
	for i, sl := range v.Slots {
		info := SlotInfo{Index: sl.Index, Row: sl.Row(), Col: sl.Col(), Occupied: sl.Occupied}
		if e := sl.Entry; sl.Occupied && e != nil {
			info.Kind = e.Kind.String()
			info.ID = e.ID
			info.CopiedAt = e.CopiedAt
			switch e.Kind {
			case slots.KindText:
				info.Text = e.Text
			case slots.KindImage:
				info.ImageSize = len(e.Image)
				info.Hash = e.Hash
			}
		}
		g.Slots[i] = info
	}
	return g
}
