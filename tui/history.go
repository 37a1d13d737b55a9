// Package tui provides a Bubble Tea terminal UI for driving the
// improvement engine.
package tui

// History holds submitted command lines for up/down recall. Navigation
// is counted in steps back from the newest entry: zero means fresh
// input, len(entries) means the oldest line.
type History struct {
	entries []string
	limit   int
	back    int
}

// NewHistory creates a history buffer keeping at most limit lines.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Push records a submitted line. Repeating the previous line is not
// recorded twice; the oldest line falls off past the limit.
func (h *History) Push(cmd string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.limit {
		h.entries = h.entries[1:]
	}
}

// Prev steps one line back and returns it. At the oldest line it stays
// put; on an empty history it reports false.
func (h *History) Prev() (string, bool) {
	if h.back < len(h.entries) {
		h.back++
	}
	if h.back == 0 {
		return "", false
	}
	return h.entries[len(h.entries)-h.back], true
}

// Next steps one line forward. Stepping past the newest line returns to
// fresh input, reported as false.
func (h *History) Next() (string, bool) {
	if h.back == 0 {
		return "", false
	}
	h.back--
	if h.back == 0 {
		return "", false
	}
	return h.entries[len(h.entries)-h.back], true
}

// ResetCursor returns navigation to the fresh-input state.
func (h *History) ResetCursor() {
	h.back = 0
}
