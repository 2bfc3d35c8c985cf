package editor

import "bytes"

// DefaultHistoryDepth is the number of snapshots kept for undo. It is also
// the most any history holds.
const DefaultHistoryDepth = 50

// Snapshot is a full copy of the canvas pixels. Pix holds premultiplied RGBA
// bytes, row-major, Width*Height*4 long.
type Snapshot struct {
	Width  int
	Height int
	Pix    []uint8
}

func (s Snapshot) clone() Snapshot {
	pix := make([]uint8, len(s.Pix))
	copy(pix, s.Pix)
	return Snapshot{Width: s.Width, Height: s.Height, Pix: pix}
}

// Equal reports whether two snapshots hold identical pixels.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Width == o.Width && s.Height == o.Height && bytes.Equal(s.Pix, o.Pix)
}

// History is a bounded list of snapshots with a cursor marking the one on
// screen. Entries after the cursor can be redone until the next Push.
type History struct {
	entries []Snapshot
	cursor  int
	limit   int
}

func NewHistory(limit int) *History {
	if limit <= 0 || limit > DefaultHistoryDepth {
		limit = DefaultHistoryDepth
	}
	return &History{cursor: -1, limit: limit}
}

// Push drops everything after the cursor and appends s. When the history is
// full the oldest entry goes and the cursor keeps pointing at s.
func (h *History) Push(s Snapshot) {
	if h.cursor < len(h.entries)-1 {
		clear(h.entries[h.cursor+1:])
		h.entries = h.entries[:h.cursor+1]
	}
	h.entries = append(h.entries, s)
	h.cursor++
	if len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = append(h.entries[:0:0], h.entries[drop:]...)
		h.cursor -= drop
	}
}

// Reset replaces the whole history with a single entry.
func (h *History) Reset(s Snapshot) {
	h.entries = []Snapshot{s}
	h.cursor = 0
}

// Undo moves the cursor back one entry and returns it. The cursor never goes
// below the first entry.
func (h *History) Undo() (Snapshot, bool) {
	if h.cursor <= 0 {
		return Snapshot{}, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Redo moves the cursor forward one entry and returns it.
func (h *History) Redo() (Snapshot, bool) {
	if h.cursor >= len(h.entries)-1 {
		return Snapshot{}, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }
func (h *History) Len() int      { return len(h.entries) }
func (h *History) Cursor() int   { return h.cursor }
func (h *History) Limit() int    { return h.limit }
