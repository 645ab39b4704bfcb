package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing
// position, hitpoints, run energy, prayer points, and agility progress.
func (m Model) renderStatusBar() string {
	st := m.engine.Status(m.playerID)

	area := st.AreaName
	if area == "" {
		area = st.Area
	}
	left := fmt.Sprintf(" %s (%d,%d) | HP %d/%d | Run %.0f%%",
		area, st.Pos.X, st.Pos.Y, st.Hitpoints, st.MaxHitpoints, st.RunEnergy)
	if st.Running {
		left += "*"
	}
	if st.Wilderness {
		left += " | WILD"
	}

	right := fmt.Sprintf("Pray %.1f | Agi %d | Marks %d ",
		st.PrayerPoints, st.AgilityLevel, st.Marks)
	if st.Course != "" {
		candidate := fmt.Sprintf("%s %d/%d | %s", st.CourseName,
			st.ObstacleIndex+1, st.CourseLength, right)
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
