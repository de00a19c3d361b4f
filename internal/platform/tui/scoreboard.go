package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pong/internal/storage"
)

// DefaultResultsLimit is how many matches the browser loads.
const DefaultResultsLimit = 100

// ResultColumns are the column titles shared by the table and plain output.
var ResultColumns = []string{"When", "Mode", "Players", "Score", "Winner", "Rally", "Time", "Engine"}

var resultWidths = []int{12, 5, 20, 7, 8, 5, 7, 9}

const playersColumn = 2

// ResultRow formats a match for display, one cell per ResultColumns entry.
func ResultRow(r storage.MatchResult) []string {
	winner := "-"
	if r.Winner == 1 {
		winner = r.Player1
	} else if r.Winner == 2 {
		winner = r.Player2
	}
	return []string{
		r.CreatedAt.Local().Format("Jan 02 15:04"),
		r.Mode,
		r.Player1 + " v " + r.Player2,
		fmt.Sprintf("%d-%d", r.Score1, r.Score2),
		winner,
		strconv.Itoa(r.LongestRally),
		FormatDuration(r.Duration),
		r.Backend,
	}
}

// FormatDuration renders simulated seconds as m:ss.
func FormatDuration(seconds float64) string {
	total := int(time.Duration(seconds * float64(time.Second)).Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatTotals renders the aggregate line above the table.
func FormatTotals(t storage.Totals) string {
	parts := []string{
		fmt.Sprintf("%d matches", t.Matches),
		fmt.Sprintf("goals %d-%d", t.Goals1, t.Goals2),
		fmt.Sprintf("wins %d-%d", t.Wins1, t.Wins2),
		fmt.Sprintf("longest rally %d", t.LongestRally),
		"played " + FormatDuration(t.PlayedTime),
	}
	return strings.Join(parts, "  |  ")
}

// ResultsModel browses the stored matches, newest first.
type ResultsModel struct {
	store   *storage.Store
	limit   int
	results []storage.MatchResult
	totals  storage.Totals
	loadErr error

	table table.Model
	help  help.Model
	keys  ListKeyMap
	width int

	quitting  bool
	goingBack bool
}

// NewResultsModel creates a browser showing up to limit matches. A nil
// store shows the empty screen.
func NewResultsModel(store *storage.Store, limit, width, height int) ResultsModel {
	if limit <= 0 {
		limit = DefaultResultsLimit
	}
	m := ResultsModel{
		store: store,
		limit: limit,
		keys:  ResultsKeyMap(),
		help:  help.New(),
	}
	m.resize(width, height)
	m.reload()
	return m
}

// resize rebuilds the table for the terminal size. Spare width goes to the
// players column.
func (m *ResultsModel) resize(width, height int) {
	m.width = width
	m.help.Width = width

	cols := make([]table.Column, len(ResultColumns))
	used := 0
	for i, title := range ResultColumns {
		cols[i] = table.Column{Title: title, Width: resultWidths[i]}
		used += resultWidths[i] + 2
	}
	if spare := width - 6 - used; spare > 0 {
		cols[playersColumn].Width += min(spare, 20)
	}

	m.table = table.New(
		table.WithColumns(cols),
		table.WithHeight(max(height-9, 3)),
		table.WithFocused(true),
		table.WithStyles(tableStyles()),
	)
}

// reload refreshes the rows and totals from the store.
func (m *ResultsModel) reload() {
	m.results, m.loadErr = nil, nil
	if m.store != nil {
		if m.results, m.loadErr = m.store.RecentMatches(m.limit); m.loadErr == nil {
			m.totals, m.loadErr = m.store.Totals()
		}
	}

	rows := make([]table.Row, 0, len(m.results))
	for _, r := range m.results {
		rows = append(rows, ResultRow(r))
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m ResultsModel) Init() tea.Cmd {
	return nil
}

func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.reload()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Back) {
			m.goingBack = true
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Refresh) {
			m.reload()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ResultsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var body string
	switch {
	case m.loadErr != nil:
		body = panelStyle.Render("Could not load results:\n" + m.loadErr.Error())
	case len(m.results) == 0:
		body = panelStyle.Render(emptyStyle.Render("No matches recorded yet.\nFinish a rally to see it here!"))
	default:
		body = hintStyle.Render(FormatTotals(m.totals)) + "\n" + panelStyle.Render(m.table.View())
	}

	return strings.Join([]string{
		centerText(titleStyle.Render("RESULTS"), m.width),
		"",
		centerText(body, m.width),
		hintStyle.Render(m.help.View(m.keys)),
	}, "\n")
}

// IsGoingBack reports whether the user asked for the menu.
func (m ResultsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting reports whether the user asked to quit.
func (m ResultsModel) IsQuitting() bool {
	return m.quitting
}

// RunResults runs the results browser on its own.
func RunResults(store *storage.Store, limit, width, height int) error {
	_, err := tea.NewProgram(NewResultsModel(store, limit, width, height), tea.WithAltScreen()).Run()
	return err
}
