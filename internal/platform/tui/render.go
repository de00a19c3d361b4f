package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// colorStyles holds one lipgloss style per palette colour.
var colorStyles = func() map[core.Color]lipgloss.Style {
	styles := make(map[core.Color]lipgloss.Style)
	for _, c := range core.Palette() {
		st := lipgloss.NewStyle()
		if code := c.ANSI(); code != "" {
			st = st.Foreground(lipgloss.Color(code))
		}
		styles[c] = st
	}
	return styles
}()

// Shared styles for the menu and results screens.
var (
	accent = lipgloss.Color("229")
	dim    = lipgloss.Color("241")
	edge   = lipgloss.Color("240")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	pickStyle  = titleStyle
	hintStyle  = lipgloss.NewStyle().Foreground(dim)
	emptyStyle = hintStyle.Italic(true).Padding(2, 4)
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(edge).Padding(0, 1)
)

// tableStyles underlines the header and highlights the cursor row.
func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(edge)
	s.Selected = s.Selected.Bold(false).Foreground(accent).Background(lipgloss.Color("57"))
	return s
}

// RenderScreen turns a screen buffer into styled terminal output, one style
// run per stretch of same-coloured cells.
func RenderScreen(s *core.Screen) string {
	rows := make([]string, s.Height())
	var run strings.Builder

	for y := range rows {
		var line strings.Builder
		flush := func(c core.Color) {
			if run.Len() == 0 {
				return
			}
			line.WriteString(styleFor(c).Render(run.String()))
			run.Reset()
		}

		current := core.ColorDefault
		for x := range s.Width() {
			cell := s.GetCell(x, y)
			if cell.Color != current {
				flush(current)
				current = cell.Color
			}
			run.WriteRune(cell.Rune)
		}
		flush(current)
		rows[y] = line.String()
	}
	return strings.Join(rows, "\n")
}

func styleFor(c core.Color) lipgloss.Style {
	if st, ok := colorStyles[c]; ok {
		return st
	}
	return colorStyles[core.ColorDefault]
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	if lipgloss.Width(text) >= width {
		return text
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
}
