package slots

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotRange is returned for an index outside 0..Size-1.
	ErrSlotRange = errors.New("slot index out of range")

	// ErrEmptySlot is returned when selecting or evicting a free slot.
	ErrEmptySlot = errors.New("slot is empty")

	// ErrStopped is returned by Manager commands once Run has returned.
	ErrStopped = errors.New("slot manager stopped")
)

// ClipboardAccessError wraps a transient failure reading or writing the
// clipboard. The triggering event is dropped without changing state.
type ClipboardAccessError struct {
	Op  string
	Err error
}

func (e *ClipboardAccessError) Error() string {
	return fmt.Sprintf("clipboard %s: %v", e.Op, e.Err)
}

func (e *ClipboardAccessError) Unwrap() error { return e.Err }

func checkIndex(i int) error {
	if i < 0 || i >= Size {
		return fmt.Errorf("slot %d: %w", i, ErrSlotRange)
	}
	return nil
}
