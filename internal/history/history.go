// Package history keeps per-riff undo and redo stacks.
package history

// DefaultMaxUndo bounds each stack unless a caller picks another cap
const DefaultMaxUndo = 256

// Snapshot is the restorable state of one riff slot
type Snapshot struct {
	Notes    []string `json:"notes"`
	Duration string   `json:"duration"`
	CScale   int      `json:"c_scale"`
	Strum    bool     `json:"strum"`
	Text     string   `json:"text"`
}

// Copy returns a deep copy so stacked entries never alias live riffs
func (s Snapshot) Copy() Snapshot {
	c := s
	if s.Notes != nil {
		c.Notes = make([]string, len(s.Notes))
		copy(c.Notes, s.Notes)
	}
	return c
}

// Equal reports whether two snapshots describe the same riff state
func (s Snapshot) Equal(o Snapshot) bool {
	if s.Duration != o.Duration || s.CScale != o.CScale || s.Strum != o.Strum || s.Text != o.Text {
		return false
	}
	if len(s.Notes) != len(o.Notes) {
		return false
	}
	for i := range s.Notes {
		if s.Notes[i] != o.Notes[i] {
			return false
		}
	}
	return true
}

// History is an undo/redo pair for a single riff.
// The bottom of the undo stack is the baseline and is never popped past.
// History is not safe for concurrent use; callers serialize access.
type History struct {
	undo []Snapshot
	redo []Snapshot
	max  int
}

// New returns an empty history capped at max entries per stack.
// A max below 2 falls back to DefaultMaxUndo.
func New(max int) *History {
	if max < 2 {
		max = DefaultMaxUndo
	}
	return &History{max: max}
}

// Save pushes a copy of s and discards any pending redo entries
func (h *History) Save(s Snapshot) {
	if len(h.undo) >= h.max {
		h.undo = h.undo[1:]
	}
	h.undo = append(h.undo, s.Copy())
	h.redo = h.redo[:0]
}

// Undo moves the top entry to the redo stack and returns the state to
// restore. It reports false and changes nothing when only the baseline is
// left.
func (h *History) Undo() (Snapshot, bool) {
	if len(h.undo) <= 1 {
		return Snapshot{}, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	if len(h.redo) >= h.max {
		h.redo = h.redo[1:]
	}
	h.redo = append(h.redo, top)
	return h.undo[len(h.undo)-1].Copy(), true
}

// Redo pushes the most recently undone entry back and returns it
func (h *History) Redo() (Snapshot, bool) {
	if len(h.redo) == 0 {
		return Snapshot{}, false
	}
	s := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	if len(h.undo) >= h.max {
		h.undo = h.undo[1:]
	}
	h.undo = append(h.undo, s)
	return s.Copy(), true
}

// Clear empties both stacks
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// Top returns the newest undo entry
func (h *History) Top() (Snapshot, bool) {
	if len(h.undo) == 0 {
		return Snapshot{}, false
	}
	return h.undo[len(h.undo)-1].Copy(), true
}

func (h *History) CanUndo() bool { return len(h.undo) > 1 }

func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the sizes of the undo and redo stacks
func (h *History) Depth() (undo, redo int) {
	return len(h.undo), len(h.redo)
}
