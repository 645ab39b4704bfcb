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

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleMap = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleReward = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindMap
	kindSystem
	kindError
	kindReward
)

// mapGlyphs are the characters a rendered tile row may contain.
const mapGlyphs = ".#~DGLSO@?"

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case isMapRow(line):
		return kindMap
	case strings.Contains(line, "level up") || strings.Contains(line, "mark of grace"):
		return kindReward
	case strings.HasPrefix(line, "You can't"),
		strings.HasPrefix(line, "usage:"),
		strings.HasPrefix(line, "unknown command"):
		return kindError
	default:
		return kindNarrative
	}
}

// isMapRow reports whether a line consists only of tile glyphs.
func isMapRow(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, r := range line {
		if !strings.ContainsRune(mapGlyphs, r) {
			return false
		}
	}
	return true
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindMap:
		return styleMap.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindReward:
		return styleReward.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
