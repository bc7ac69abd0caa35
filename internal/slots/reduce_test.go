package slots

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func text(s string) *Entry { return NewTextEntry(s, t0) }

func img(data, hash string) *Entry { return NewImageEntry([]byte(data), hash, t0) }

// step applies ev and fails the test on error.
func step(t *testing.T, s State, ev Event) (State, []Effect) {
	t.Helper()
	next, effects, err := Reduce(s, ev)
	require.NoError(t, err)
	return next, effects
}

func copyText(t *testing.T, s State, v string) (State, []Effect) {
	t.Helper()
	return step(t, s, Changed{Text: text(v)})
}

func TestReduce_RepeatedTextAllocatesOnce(t *testing.T) {
	s := NewState(true)
	for range 5 {
		s, _ = copyText(t, s, "same")
	}
	assert.Equal(t, 1, s.Occupied())
	assert.Equal(t, "same", s.Slots[0].Entry.Text)

	_, effects := copyText(t, s, "same")
	assert.Equal(t, []Effect{Duplicate{Kind: KindText}}, effects)
}

func TestReduce_GridSaturates(t *testing.T) {
	s := NewState(true)
	var effects []Effect
	for i := range 10 {
		s, effects = copyText(t, s, fmt.Sprintf("value %d", i))
	}

	assert.Equal(t, Size, s.Occupied())
	assert.Equal(t, []Effect{Dropped{Kind: KindText, Reason: ReasonGridFull}}, effects)
	for i, sl := range s.Slots {
		assert.Equal(t, fmt.Sprintf("value %d", i), sl.Entry.Text)
	}
	// The dedup buffer still moves to the dropped value.
	assert.Equal(t, "value 9", s.LastText())
}

func TestReduce_FillsInIndexOrderAndAdvancesCursor(t *testing.T) {
	s := NewState(true)
	for i := range Size {
		var effects []Effect
		s, effects = copyText(t, s, fmt.Sprintf("v%d", i))
		require.Len(t, effects, 1)
		f, ok := effects[0].(Filled)
		require.True(t, ok)
		assert.Equal(t, i, f.Index)
		assert.Equal(t, i, s.Active)
		assert.Equal(t, i+1, s.Cursor)
	}
	assert.Equal(t, Rows, s.CursorRow())
	assert.Equal(t, 0, s.CursorCol())

	s = NewState(true)
	s, _ = copyText(t, s, "a")
	s, _ = copyText(t, s, "b")
	s, _ = copyText(t, s, "c")
	assert.Equal(t, 1, s.CursorRow())
	assert.Equal(t, 0, s.CursorCol())
	assert.Equal(t, 2, s.Slots[2].Col())
	assert.Equal(t, 0, s.Slots[2].Row())
	assert.Equal(t, 1, s.Slots[4].Row())
}

func TestReduce_SelectWritesAndSuppressesEcho(t *testing.T) {
	s := NewState(true)
	s, _ = copyText(t, s, "first")
	s, _ = copyText(t, s, "second")

	s, effects := step(t, s, Select{Index: 0})
	require.Len(t, effects, 1)
	w, ok := effects[0].(Write)
	require.True(t, ok)
	assert.Equal(t, 0, w.Index)
	assert.Equal(t, "first", w.Entry.Text)
	assert.Equal(t, 1, s.PendingEchoes())
	assert.Equal(t, 0, s.Active)
	assert.False(t, s.NeedsSnapshot())

	// The clipboard now holds "first", which differs from the text buffer.
	s, effects = copyText(t, s, "first")
	assert.Equal(t, []Effect{Suppressed{Token: w.Token}}, effects)
	assert.Equal(t, 2, s.Occupied())
	assert.Equal(t, 0, s.PendingEchoes())
	assert.Equal(t, "second", s.LastText())
}

func TestReduce_ImageSelectSuppressesTwice(t *testing.T) {
	s := NewState(true)
	s, _ = step(t, s, Changed{Image: img("png-a", "hash-a")})
	s, _ = copyText(t, s, "note")

	s, effects := step(t, s, Select{Index: 0})
	w := effects[0].(Write)
	assert.Equal(t, KindImage, w.Entry.Kind)
	assert.Equal(t, 2, s.PendingEchoes())

	s, effects = step(t, s, Changed{Image: img("png-a", "hash-a")})
	assert.Equal(t, []Effect{Suppressed{Token: w.Token}}, effects)

	// The second unit swallows an unrelated change as well.
	s, effects = copyText(t, s, "unrelated")
	assert.Equal(t, []Effect{Suppressed{Token: w.Token}}, effects)
	assert.Equal(t, 2, s.Occupied())

	s, effects = copyText(t, s, "unrelated")
	require.Len(t, effects, 1)
	assert.IsType(t, Filled{}, effects[0])
	assert.Equal(t, 3, s.Occupied())
}

func TestReduce_EchoesQueueInOrder(t *testing.T) {
	s := NewState(true)
	s, _ = copyText(t, s, "a")
	s, _ = copyText(t, s, "b")

	s, e1 := step(t, s, Select{Index: 0})
	s, e2 := step(t, s, Select{Index: 1})
	tok1 := e1[0].(Write).Token
	tok2 := e2[0].(Write).Token
	assert.NotEqual(t, tok1, tok2)

	s, effects := step(t, s, Changed{})
	assert.Equal(t, []Effect{Suppressed{Token: tok1}}, effects)
	s, effects = step(t, s, Changed{})
	assert.Equal(t, []Effect{Suppressed{Token: tok2}}, effects)
	assert.True(t, s.NeedsSnapshot())
}

func TestReduce_WriteFailedCancelsEcho(t *testing.T) {
	s := NewState(true)
	s, _ = copyText(t, s, "a")
	s, effects := step(t, s, Select{Index: 0})
	tok := effects[0].(Write).Token

	s, effects = step(t, s, WriteFailed{Token: tok})
	assert.Equal(t, []Effect{EchoCancelled{Token: tok}}, effects)
	assert.Equal(t, 0, s.PendingEchoes())

	s, effects = copyText(t, s, "b")
	assert.IsType(t, Filled{}, effects[0])
	assert.Equal(t, 2, s.Occupied())
}

func TestReduce_WriteFailedRestoresHighlight(t *testing.T) {
	s := NewState(true)
	s, _ = copyText(t, s, "a")
	s, _ = copyText(t, s, "b")
	require.Equal(t, 1, s.Active)

	s, effects := step(t, s, Select{Index: 0})
	assert.Equal(t, 0, s.Active)
	s, _ = step(t, s, WriteFailed{Token: effects[0].(Write).Token})
	assert.Equal(t, 1, s.Active)

	// A later selection owns the highlight; cancelling the earlier one leaves it.
	s, e1 := step(t, s, Select{Index: 0})
	s, _ = step(t, s, Select{Index: 1})
	s, _ = step(t, s, WriteFailed{Token: e1[0].(Write).Token})
	assert.Equal(t, 1, s.Active)
	assert.Equal(t, 1, s.PendingEchoes())
}

func TestReduce_EvictFreesLowestIndex(t *testing.T) {
	s := NewState(true)
	for i := range 5 {
		s, _ = copyText(t, s, fmt.Sprintf("v%d", i))
	}

	s, effects := step(t, s, Evict{Index: 2})
	assert.Equal(t, []Effect{Freed{Index: 2}}, effects)
	assert.False(t, s.Slots[2].Occupied)
	assert.Nil(t, s.Slots[2].Entry)
	assert.Equal(t, 2, s.Slots[2].Index)

	s, effects = copyText(t, s, "new")
	assert.Equal(t, Filled{Index: 2, Entry: s.Slots[2].Entry}, effects[0])
	assert.Equal(t, 3, s.Cursor)
}

func TestReduce_EvictResetsTextBufferOnly(t *testing.T) {
	s := NewState(true)
	s, _ = step(t, s, Changed{Image: img("png", "hash-1")})
	s, _ = copyText(t, s, "words")

	s, _ = step(t, s, Evict{Index: 1})
	assert.Equal(t, "", s.LastText())
	assert.Equal(t, "hash-1", s.LastImageHash())

	s, effects := copyText(t, s, "words")
	assert.IsType(t, Filled{}, effects[0])

	s, _ = step(t, s, Evict{Index: 0})
	s, effects = step(t, s, Changed{Image: img("png", "hash-1")})
	assert.Equal(t, []Effect{Duplicate{Kind: KindImage}}, effects)
	assert.False(t, s.Slots[0].Occupied)
}

func TestReduce_EvictClearsActive(t *testing.T) {
	s := NewState(true)
	s, _ = copyText(t, s, "a")
	require.Equal(t, 0, s.Active)
	s, _ = step(t, s, Evict{Index: 0})
	assert.Equal(t, NoSlot, s.Active)
}

func TestReduce_TrackingToggle(t *testing.T) {
	s := NewState(true)
	s, effects := step(t, s, SetTracking{On: false})
	assert.Equal(t, []Effect{TrackingChanged{On: false}}, effects)
	assert.False(t, s.NeedsSnapshot())

	s, effects = copyText(t, s, "while off")
	assert.Equal(t, []Effect{Untracked{}}, effects)
	assert.Equal(t, 0, s.Occupied())
	assert.Equal(t, "", s.LastText())

	s, _ = step(t, s, SetTracking{On: true})
	s, _ = copyText(t, s, "while off")
	assert.Equal(t, 1, s.Occupied())
	s, _ = copyText(t, s, "while off")
	assert.Equal(t, 1, s.Occupied())
}

func TestReduce_TrackingOffClearsHighlight(t *testing.T) {
	s := NewState(true)
	s, _ = copyText(t, s, "a")
	s, _ = step(t, s, SetTracking{On: false})
	s, _ = copyText(t, s, "b")
	assert.Equal(t, NoSlot, s.Active)
}

func TestReduce_ImageDedupByHash(t *testing.T) {
	s := NewState(true)
	s, _ = step(t, s, Changed{Image: img("encoding one", "same-digest")})
	s, effects := step(t, s, Changed{Image: img("encoding two", "same-digest")})

	assert.Equal(t, []Effect{Duplicate{Kind: KindImage}}, effects)
	assert.Equal(t, 1, s.Occupied())
	assert.Equal(t, []byte("encoding one"), s.Slots[0].Entry.Image)
}

func TestReduce_TextAndImageTogether(t *testing.T) {
	s := NewState(true)
	s, effects := step(t, s, Changed{Text: text("caption"), Image: img("p", "h")})
	require.Len(t, effects, 2)
	assert.Equal(t, KindText, s.Slots[0].Entry.Kind)
	assert.Equal(t, KindImage, s.Slots[1].Entry.Kind)
	assert.Equal(t, 1, s.Active)

	// A repeated text stops the event before the image is looked at.
	s, effects = step(t, s, Changed{Text: text("caption"), Image: img("q", "h2")})
	assert.Equal(t, []Effect{Duplicate{Kind: KindText}}, effects)
	assert.Equal(t, "h", s.LastImageHash())
	assert.Equal(t, 2, s.Occupied())
}

func TestReduce_UnsupportedContent(t *testing.T) {
	s := NewState(true)
	s, effects := step(t, s, Changed{})
	assert.Equal(t, []Effect{Dropped{Reason: ReasonUnsupported}}, effects)
	assert.Equal(t, 0, s.Occupied())
}

func TestReduce_CommandErrors(t *testing.T) {
	s := NewState(true)
	s, _ = copyText(t, s, "a")

	tests := []struct {
		name string
		ev   Event
		want error
	}{
		{"select empty", Select{Index: 4}, ErrEmptySlot},
		{"evict empty", Evict{Index: 4}, ErrEmptySlot},
		{"select negative", Select{Index: -1}, ErrSlotRange},
		{"evict past end", Evict{Index: Size}, ErrSlotRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, effects, err := Reduce(s, tt.ev)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, effects)
			assert.Equal(t, s, next)
		})
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := NewState(true)
	s, _ = step(t, s, Changed{Image: img("p", "h")})
	s, _ = step(t, s, Select{Index: 0})
	before := s.PendingEchoes()

	_, _ = step(t, s, Changed{})
	_, _ = step(t, s, WriteFailed{Token: 1})
	_, _ = step(t, s, Select{Index: 0})
	_, _ = step(t, s, Evict{Index: 0})

	assert.Equal(t, before, s.PendingEchoes())
	assert.True(t, s.Slots[0].Occupied)
}
