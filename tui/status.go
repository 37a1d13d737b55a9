package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// scenario, marked target count, busy workers, and the tick counter.
func (m Model) renderStatusBar() string {
	scen := m.session.Defs.Scenario
	title := scen.Title
	if title == "" {
		title = "refit"
	}

	marked := m.session.Engine.States.Marked()
	busy := 0
	for _, wk := range m.session.World.WorkerList() {
		if wk.Building() != "" {
			busy++
		}
	}

	left := fmt.Sprintf(" %s | Marked: %d | Building: %d/%d",
		title, len(marked), busy, len(m.session.World.WorkerList()))
	right := fmt.Sprintf("T:%d ", m.session.World.Tick())

	// Show marked IDs if they fit, otherwise just the count.
	if len(marked) > 0 {
		candidate := fmt.Sprintf("%s | T:%d ", strings.Join(marked, ", "), m.session.World.Tick())
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
