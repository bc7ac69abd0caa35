package slots

import "fmt"

// Event is an input to Reduce.
type Event interface{ isEvent() }

// Changed is one clipboard change notification. Text and Image are the
// clipboard contents read for it; both nil means neither kind was present
// (or the contents were not consulted, see State.NeedsSnapshot).
type Changed struct {
	Text  *Entry
	Image *Entry
}

// Select restores the entry in slot Index to the clipboard.
type Select struct{ Index int }

// Evict frees slot Index.
type Evict struct{ Index int }

// SetTracking turns acceptance of new entries on or off.
type SetTracking struct{ On bool }

// WriteFailed reports that the clipboard write for Token did not happen. The
// selection is undone apart from the token it consumed.
type WriteFailed struct{ Token Token }

// ReadFailed reports a change notification whose contents could not be read.
type ReadFailed struct{ Err error }

func (Changed) isEvent()     {}
func (Select) isEvent()      {}
func (Evict) isEvent()       {}
func (SetTracking) isEvent() {}
func (WriteFailed) isEvent() {}
func (ReadFailed) isEvent()  {}

// Effect is an output of Reduce.
type Effect interface{ isEffect() }

// Reason explains a Dropped effect.
type Reason string

const (
	ReasonGridFull    Reason = "grid full"
	ReasonUnsupported Reason = "unsupported content"
	ReasonUnreadable  Reason = "clipboard unreadable"
)

// Suppressed: a change event was consumed as the echo of write Token.
type Suppressed struct{ Token Token }

// Untracked: tracking is off and the change was ignored.
type Untracked struct{}

// Duplicate: the content equals the dedup buffer for Kind.
type Duplicate struct{ Kind Kind }

// Dropped: the content was not placed.
type Dropped struct {
	Kind   Kind
	Reason Reason
}

// Filled: Entry now occupies slot Index.
type Filled struct {
	Index int
	Entry *Entry
}

// Write: Entry must be written to the clipboard, tagged with Token.
type Write struct {
	Token Token
	Index int
	Entry *Entry
}

// Freed: slot Index was evicted.
type Freed struct{ Index int }

// EchoCancelled: the echo for Token will not arrive.
type EchoCancelled struct{ Token Token }

// TrackingChanged: the tracking toggle moved to On.
type TrackingChanged struct{ On bool }

func (Suppressed) isEffect()      {}
func (Untracked) isEffect()       {}
func (Duplicate) isEffect()       {}
func (Dropped) isEffect()         {}
func (Filled) isEffect()          {}
func (Write) isEffect()           {}
func (Freed) isEffect()           {}
func (EchoCancelled) isEffect()   {}
func (TrackingChanged) isEffect() {}

// Reduce applies ev to s. s is never modified; the returned State is the
// successor. On error the returned State equals s.
func Reduce(s State, ev Event) (State, []Effect, error) {
	switch ev := ev.(type) {
	case Changed:
		next, effects := changed(s, ev)
		return next, effects, nil
	case Select:
		return selectSlot(s, ev.Index)
	case Evict:
		return evict(s, ev.Index)
	case SetTracking:
		s.Tracking = ev.On
		return s, []Effect{TrackingChanged{On: ev.On}}, nil
	case WriteFailed:
		return cancelEcho(s, ev.Token), []Effect{EchoCancelled{Token: ev.Token}}, nil
	case ReadFailed:
		return s, []Effect{Dropped{Reason: ReasonUnreadable}}, nil
	default:
		return s, nil, fmt.Errorf("unknown event %T", ev)
	}
}

func changed(s State, ev Changed) (State, []Effect) {
	if len(s.echoes) > 0 {
		s.echoes = append([]echo(nil), s.echoes...)
		tok := s.echoes[0].token
		s.echoes[0].remaining--
		if s.echoes[0].remaining <= 0 {
			s.echoes = s.echoes[1:]
		}
		return s, []Effect{Suppressed{Token: tok}}
	}

	if !s.Tracking {
		s.Active = NoSlot
		return s, []Effect{Untracked{}}
	}

	if ev.Text == nil && ev.Image == nil {
		return s, []Effect{Dropped{Reason: ReasonUnsupported}}
	}

	var effects []Effect
	if ev.Text != nil {
		// A repeated text ends processing of the whole event.
		if ev.Text.Text == s.lastText {
			return s, []Effect{Duplicate{Kind: KindText}}
		}
		s.lastText = ev.Text.Text
		var eff Effect
		s, eff = place(s, ev.Text)
		effects = append(effects, eff)
	}
	if ev.Image != nil {
		if ev.Image.Hash == s.lastImage {
			return s, append(effects, Duplicate{Kind: KindImage})
		}
		s.lastImage = ev.Image.Hash
		var eff Effect
		s, eff = place(s, ev.Image)
		effects = append(effects, eff)
	}
	return s, effects
}

func place(s State, e *Entry) (State, Effect) {
	i, ok := s.FirstFree()
	if !ok {
		return s, Dropped{Kind: e.Kind, Reason: ReasonGridFull}
	}
	s.Slots[i] = Slot{Index: i, Occupied: true, Entry: e}
	s.Cursor = i + 1
	s.Active = i
	return s, Filled{Index: i, Entry: e}
}

func selectSlot(s State, i int) (State, []Effect, error) {
	if err := checkIndex(i); err != nil {
		return s, nil, err
	}
	sl := s.Slots[i]
	if !sl.Occupied {
		return s, nil, fmt.Errorf("select slot %d: %w", i, ErrEmptySlot)
	}

	// Restoring a non-text entry swallows two change events instead of one.
	budget := 1
	if sl.Entry.Kind != KindText {
		budget = 2
	}
	s.nextToken++
	tok := s.nextToken
	s.echoes = append(append([]echo(nil), s.echoes...), echo{
		token:      tok,
		remaining:  budget,
		slot:       i,
		prevActive: s.Active,
	})
	s.Active = i
	return s, []Effect{Write{Token: tok, Index: i, Entry: sl.Entry}}, nil
}

func evict(s State, i int) (State, []Effect, error) {
	if err := checkIndex(i); err != nil {
		return s, nil, err
	}
	if !s.Slots[i].Occupied {
		return s, nil, fmt.Errorf("evict slot %d: %w", i, ErrEmptySlot)
	}
	s.Slots[i] = Slot{Index: i}
	// Only the text buffer resets; the image digest survives eviction.
	s.lastText = ""
	if s.Active == i {
		s.Active = NoSlot
	}
	return s, []Effect{Freed{Index: i}}, nil
}

// cancelEcho drops the echo for tok. The highlight goes back to where it was
// before the selection unless something else has moved it since.
func cancelEcho(s State, tok Token) State {
	out := make([]echo, 0, len(s.echoes))
	for _, e := range s.echoes {
		if e.token != tok {
			out = append(out, e)
			continue
		}
		if s.Active == e.slot {
			s.Active = e.prevActive
		}
	}
	s.echoes = out
	return s
}
