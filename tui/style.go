package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	stylePlain = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40"))

	styleWarning = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleListing = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindPlain lineKind = iota
	kindSuccess
	kindWarning
	kindSystem
	kindListing
)

// classifyLine determines what kind of output line this is, based on the
// session's output conventions.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[+]"):
		return kindSuccess
	case strings.HasPrefix(line, "[!]"):
		return kindWarning
	case strings.HasPrefix(line, "[i]"):
		return kindSystem
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "  "):
		return kindListing
	default:
		return kindPlain
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindSuccess:
		return styleSuccess.Render(line)
	case kindWarning:
		return styleWarning.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindListing:
		return styleListing.Render(line)
	default:
		return stylePlain.Render(line)
	}
}
