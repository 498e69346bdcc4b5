package state

import "slices"

// DefaultRedoLimit bounds the redo pool when no limit is configured.
const DefaultRedoLimit = 100

// History is the ordered log of committed strokes plus the pool of strokes
// removed by Undo. Appending does not clear the redo pool.
//
// History is not safe for concurrent use; the owning canvas serializes access.
type History struct {
	strokes   []Stroke
	redo      []Stroke
	redoLimit int
}

// NewHistory returns an empty history whose redo pool holds at most
// redoLimit strokes. When the pool is full the oldest undone stroke is
// dropped.
func NewHistory(redoLimit int) *History {
	if redoLimit <= 0 {
		redoLimit = DefaultRedoLimit
	}
	return &History{redoLimit: redoLimit}
}

// Append pushes s onto the history.
func (h *History) Append(s Stroke) {
	h.strokes = append(h.strokes, s)
}

// Undo moves the newest stroke into the redo pool. It reports false and
// changes nothing when the history is empty.
func (h *History) Undo() (Stroke, bool) {
	n := len(h.strokes)
	if n == 0 {
		return nil, false
	}
	s := h.strokes[n-1]
	h.strokes[n-1] = nil
	h.strokes = h.strokes[:n-1]
	h.pushRedo(s)
	return s, true
}

// Redo moves the most recently undone stroke back onto the history. It
// reports false and changes nothing when the redo pool is empty.
func (h *History) Redo() (Stroke, bool) {
	n := len(h.redo)
	if n == 0 {
		return nil, false
	}
	s := h.redo[n-1]
	h.redo[n-1] = nil
	h.redo = h.redo[:n-1]
	h.strokes = append(h.strokes, s)
	return s, true
}

// Clear empties both the history and the redo pool.
func (h *History) Clear() {
	h.strokes = nil
	h.redo = nil
}

// Strokes returns a copy of the committed strokes, oldest first.
func (h *History) Strokes() []Stroke {
	return slices.Clone(h.strokes)
}

// RedoStrokes returns a copy of the redo pool, bottom of the stack first.
func (h *History) RedoStrokes() []Stroke {
	return slices.Clone(h.redo)
}

func (h *History) Len() int     { return len(h.strokes) }
func (h *History) RedoLen() int { return len(h.redo) }

func (h *History) pushRedo(s Stroke) {
	if len(h.redo) >= h.redoLimit {
		copy(h.redo, h.redo[1:])
		h.redo[len(h.redo)-1] = s
		return
	}
	h.redo = append(h.redo, s)
}
