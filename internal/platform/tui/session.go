package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/audio"
	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/multiplayer"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

// SessionConfig describes one interactive session.
type SessionConfig struct {
	Match      config.PongConfig
	Store      *storage.Store
	Sound      *audio.Player
	Logger     *log.Logger
	Username   string // Player 1 name; empty uses the default label
	Mode       string // Stored with results; empty derives it per match
	TwoPlayers bool   // Offer a shared-keyboard match
	TickRate   int
	Seed       int64 // 0 = fresh seed per match
	Width      int
	Height     int

	// Online play is offered when both are set. Link carries the
	// coordinator's events for this session.
	Coordinator *multiplayer.Coordinator
	Link        *multiplayer.ChannelSession
}

func (c SessionConfig) online() bool {
	return c.Coordinator != nil && c.Link != nil
}

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenMatch
	screenResults
	screenOnline
)

// SessionModel manages the session flow: menu -> match or results -> menu.
type SessionModel struct {
	cfg      SessionConfig
	screen   sessionScreen
	menu     MenuModel
	game     Model
	results  ResultsModel
	lobby    OnlineModel
	err      error
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(cfg SessionConfig) SessionModel {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return SessionModel{
		cfg:  cfg,
		menu: NewMenuModel(DefaultMenuItems(cfg.TwoPlayers, cfg.online()), cfg.Width, cfg.Height),
	}
}

// Init initializes the session. Online sessions start listening for
// coordinator events and keep listening until the session closes.
func (m SessionModel) Init() tea.Cmd {
	if m.cfg.online() {
		return tea.Batch(m.menu.Init(), waitForEvent(m.cfg.Link))
	}
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.cfg.Width = wsm.Width
		m.cfg.Height = wsm.Height
	}

	if evt, ok := msg.(multiplayer.SessionEvent); ok {
		return m.updateEvent(evt)
	}

	switch m.screen {
	case screenMatch:
		return m.updateMatch(msg)
	case screenOnline:
		return m.updateOnline(msg)
	case screenResults:
		return m.updateResults(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}

	if selected.Online {
		m.lobby = NewOnlineModel(m.cfg.Coordinator, m.cfg.Link, m.cfg.Width, m.cfg.Height)
		m.screen = screenOnline
		return m, m.lobby.Init()
	}

	if selected.Results {
		m.results = NewResultsModel(m.cfg.Store, DefaultResultsLimit, m.cfg.Width, m.cfg.Height)
		m.screen = screenResults
		return m, m.results.Init()
	}

	game, err := NewModel(m.matchOptions(*selected))
	if err != nil {
		m.cfg.Logger.Error("cannot start match", "err", err)
		m.err = err
		m.quitting = true
		return m, tea.Quit
	}
	m.game = game
	m.screen = screenMatch
	return m, m.game.Init()
}

// matchOptions builds the options for a match picked from the menu.
func (m SessionModel) matchOptions(item MenuItem) Options {
	cfg := m.cfg.Match
	config.ApplyPreset(&cfg, item.Difficulty)

	seed := m.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return Options{
		Match: cfg,
		Runtime: core.RuntimeConfig{
			ScreenW:  m.cfg.Width,
			ScreenH:  m.cfg.Height,
			TickRate: m.cfg.TickRate,
			Seed:     seed,
		},
		VsCPU:   item.VsCPU,
		Mode:    m.cfg.Mode,
		Players: [2]string{m.cfg.Username, ""},
		Store:   m.cfg.Store,
		Sound:   m.cfg.Sound,
		Logger:  m.cfg.Logger,
	}
}

// updateMatch handles updates while a match runs.
func (m SessionModel) updateMatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(Model); ok {
		m.game = gameModel
	}

	if m.game.BackToMenu() {
		return m.backToMenu()
	}
	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// updateEvent hands a coordinator event to the lobby and waits for the
// next one. Events that arrive outside the lobby are stale and dropped.
func (m SessionModel) updateEvent(evt multiplayer.SessionEvent) (tea.Model, tea.Cmd) {
	next := waitForEvent(m.cfg.Link)
	if m.screen != screenOnline {
		return m, next
	}
	model, _ := m.updateOnline(evt)
	return model, next
}

// updateOnline handles updates in the online lobby and match.
func (m SessionModel) updateOnline(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.lobby.Update(msg)
	if lobby, ok := newModel.(OnlineModel); ok {
		m.lobby = lobby
	}

	if m.lobby.BackToMenu() {
		return m.backToMenu()
	}
	if m.lobby.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// updateResults handles updates in the results browser.
func (m SessionModel) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.results.Update(msg)
	if resultsModel, ok := newModel.(ResultsModel); ok {
		m.results = resultsModel
	}

	if m.results.IsGoingBack() {
		return m.backToMenu()
	}
	if m.results.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.menu = NewMenuModel(DefaultMenuItems(m.cfg.TwoPlayers, m.cfg.online()), m.cfg.Width, m.cfg.Height)
	return m, m.menu.Init()
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenMatch:
		return m.game.View()
	case screenResults:
		return m.results.View()
	case screenOnline:
		return m.lobby.View()
	default:
		return m.menu.View()
	}
}

// Err returns the error that ended the session, if any.
func (m SessionModel) Err() error {
	return m.err
}

// RunSession runs the menu-driven session locally.
func RunSession(cfg SessionConfig) error {
	p := tea.NewProgram(
		NewSessionModel(cfg),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if sm, ok := final.(SessionModel); ok {
		return sm.Err()
	}
	return nil
}
