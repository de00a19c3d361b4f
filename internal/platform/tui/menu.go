package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pong/internal/config"
)

// MenuItem is one entry of the mode picker.
type MenuItem struct {
	Title      string
	VsCPU      bool
	Difficulty config.DifficultyPreset
	Results    bool // Opens the results browser instead of a match
	Online     bool // Opens the online lobby
}

// DefaultMenuItems returns the picker entries. Two players share one
// keyboard, so the entry is left out where that makes no sense; online play
// needs a server to meet on.
func DefaultMenuItems(twoPlayers, online bool) []MenuItem {
	items := []MenuItem{
		{Title: "Vs CPU - easy", VsCPU: true, Difficulty: config.DifficultyEasy},
		{Title: "Vs CPU - normal", VsCPU: true, Difficulty: config.DifficultyNormal},
		{Title: "Vs CPU - hard", VsCPU: true, Difficulty: config.DifficultyHard},
	}
	if twoPlayers {
		items = append(items, MenuItem{Title: "Two players", Difficulty: config.DifficultyNormal})
	}
	if online {
		items = append(items, MenuItem{Title: "Online: host or join", Online: true})
	}
	return append(items, MenuItem{Title: "Results", Results: true})
}

// MenuModel is the mode picker. It opens on normal difficulty.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	keys     ListKeyMap
	help     help.Model
	width    int
	quitting bool
	selected *MenuItem
}

func NewMenuModel(items []MenuItem, width, _ int) MenuModel {
	return MenuModel{
		items:  items,
		cursor: max(min(1, len(items)-1), 0),
		keys:   MenuKeyMap(),
		help:   help.New(),
		width:  width,
	}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.cursor = max(m.cursor-1, 0)
		case key.Matches(msg, m.keys.Down):
			m.cursor = min(m.cursor+1, len(m.items)-1)
		case key.Matches(msg, m.keys.Select) && len(m.items) > 0:
			item := m.items[m.cursor]
			m.selected = &item
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	lines := []string{
		"",
		titleStyle.Render("  P O N G  "),
		"",
		"Select a mode",
		"",
	}
	for i, item := range m.items {
		if i == m.cursor {
			lines = append(lines, pickStyle.Render("> "+item.Title))
		} else {
			lines = append(lines, "  "+item.Title)
		}
	}
	lines = append(lines, "", hintStyle.Render(m.help.View(m.keys)))

	for i, l := range lines {
		lines[i] = centerText(l, m.width)
	}
	return strings.Join(lines, "\n") + "\n"
}

// Selected returns the picked entry, or nil while the menu is open.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

func (m MenuModel) IsQuitting() bool {
	return m.quitting
}
