package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/match"
	"github.com/vovakirdan/tui-pong/internal/multiplayer"
	"github.com/vovakirdan/tui-pong/internal/render"
)

// OnlineState is the step of the online flow a session is on.
type OnlineState int

const (
	OnlineChoose    OnlineState = iota // Host or join
	OnlineHosting                      // Waiting for someone to enter our code
	OnlineEnterCode                    // Typing a code
	OnlineJoining                      // Code sent, waiting for the coordinator
	OnlinePlaying                      // Match running
	OnlineEnded                        // Match over, showing the result
)

// codeAlphabet holds the characters lobby codes are made of.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// waitForEvent returns a command that delivers the next coordinator event
// for a session, or nothing once the session is closed.
func waitForEvent(link *multiplayer.ChannelSession) tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-link.Events():
			return evt
		case <-link.Done():
			return nil
		}
	}
}

// OnlineModel hosts or joins a head-to-head match and plays it. The match
// itself runs on the coordinator; this model only sends input and draws
// the snapshots it receives.
type OnlineModel struct {
	state     OnlineState
	coord     *multiplayer.Coordinator
	link      multiplayer.SessionHandle
	lobbyKeys LobbyKeyMap
	keys      KeyMap
	help      help.Model
	screen    *core.Screen
	width     int

	code   string // Hosted or typed lobby code
	errMsg string

	matchID multiplayer.MatchID
	side    core.PlayerID
	labels  [2]string
	snap    match.MatchSnapshot
	live    bool // At least one snapshot arrived
	ended   multiplayer.MatchEndedEvent

	backToMenu bool
	quitting   bool
}

// NewOnlineModel creates the lobby for the session behind link. Events for
// link must be fed to Update; SessionModel does that with waitForEvent.
func NewOnlineModel(coord *multiplayer.Coordinator, link multiplayer.SessionHandle, width, height int) OnlineModel {
	m := OnlineModel{
		coord:     coord,
		link:      link,
		lobbyKeys: DefaultLobbyKeyMap(),
		keys:      OnlineKeyMap(),
		help:      help.New(),
		screen:    core.NewScreen(width, max(height-1, 1)),
		width:     width,
	}
	m.setState(OnlineChoose)
	return m
}

func (m OnlineModel) Init() tea.Cmd {
	return nil
}

// setState switches step and enables the lobby keys that apply to it.
func (m *OnlineModel) setState(s OnlineState) {
	m.state = s
	k := &m.lobbyKeys
	k.Host.SetEnabled(s == OnlineChoose)
	k.Join.SetEnabled(s == OnlineChoose)
	k.Submit.SetEnabled(s == OnlineEnterCode || s == OnlineEnded)
	k.Back.SetEnabled(s != OnlineEnded)
	k.Quit.SetEnabled(s != OnlineEnterCode)

	k.Submit.SetHelp("enter", "connect")
	if s == OnlineEnded {
		k.Submit.SetHelp("enter", "menu")
	}
}

func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.screen.Resize(msg.Width, max(msg.Height-1, 1))
		m.help.Width = msg.Width

	case tea.KeyMsg:
		return m.handleKey(msg)

	case multiplayer.LobbyCreatedEvent:
		m.code = msg.Code
		m.errMsg = ""
		m.setState(OnlineHosting)

	case multiplayer.LobbyErrorEvent:
		m.errMsg = msg.Message
		switch m.state {
		case OnlineHosting:
			m.setState(OnlineChoose)
		case OnlineJoining:
			m.setState(OnlineEnterCode)
		}

	case multiplayer.MatchStartedEvent:
		m.start(msg)

	case multiplayer.SnapshotEvent:
		if m.state == OnlinePlaying && msg.MatchID == m.matchID {
			m.snap = msg.Snapshot
			m.live = true
		}

	case multiplayer.MatchEndedEvent:
		if m.state == OnlinePlaying && msg.MatchID == m.matchID {
			m.ended = msg
			m.setState(OnlineEnded)
		}
	}
	return m, nil
}

func (m *OnlineModel) start(msg multiplayer.MatchStartedEvent) {
	m.matchID = msg.MatchID
	m.side = msg.Side
	m.code = msg.Code
	m.live = false
	m.errMsg = ""

	me := m.link.Name() + " (you)"
	m.labels = [2]string{me, msg.Opponent}
	if msg.Side == core.Player2 {
		m.labels = [2]string{msg.Opponent, me}
	}
	m.setState(OnlinePlaying)
}

func (m OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case OnlinePlaying:
		return m.handlePlayingKey(msg)
	case OnlineEnterCode:
		return m.handleCodeKey(msg)
	}

	k := m.lobbyKeys
	switch {
	case key.Matches(msg, k.Quit):
		if m.state == OnlineHosting {
			m.coord.Send(multiplayer.CancelLobbyMsg{SessionID: m.link.ID(), Code: m.code})
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, k.Host):
		m.errMsg = ""
		m.coord.Send(multiplayer.CreateLobbyMsg{SessionID: m.link.ID()})

	case key.Matches(msg, k.Join):
		m.code = ""
		m.errMsg = ""
		m.setState(OnlineEnterCode)

	case key.Matches(msg, k.Submit):
		m.backToMenu = true
		return m, tea.Quit

	case key.Matches(msg, k.Back):
		switch m.state {
		case OnlineHosting:
			m.coord.Send(multiplayer.CancelLobbyMsg{SessionID: m.link.ID(), Code: m.code})
			m.setState(OnlineChoose)
		case OnlineJoining:
			m.setState(OnlineEnterCode)
		default:
			m.backToMenu = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// handleCodeKey edits the join code. Letters are code characters here, so
// only ctrl+c quits.
func (m OnlineModel) handleCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		m.errMsg = ""
		m.setState(OnlineChoose)
	case tea.KeyEnter:
		if len(m.code) == multiplayer.CodeLength {
			m.errMsg = ""
			m.setState(OnlineJoining)
			m.coord.Send(multiplayer.JoinLobbyMsg{SessionID: m.link.ID(), Code: m.code})
		}
	case tea.KeyBackspace:
		if m.code != "" {
			m.code = m.code[:len(m.code)-1]
		}
	case tea.KeyRunes:
		for _, r := range strings.ToUpper(string(msg.Runes)) {
			if len(m.code) < multiplayer.CodeLength && strings.ContainsRune(codeAlphabet, r) {
				m.code += string(r)
			}
		}
	}
	return m, nil
}

// handlePlayingKey forwards paddle and serve keys to the match. Leaving
// hands the match to the opponent.
func (m OnlineModel) handlePlayingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	frame := core.NewInputFrame()
	quit := m.keys.MapKeyToFrame(msg, &frame)

	if quit || frame.Has(core.ActionBack) {
		m.coord.Send(multiplayer.LeaveMatchMsg{SessionID: m.link.ID(), MatchID: m.matchID})
		m.quitting = quit
		m.backToMenu = !quit
		return m, tea.Quit
	}
	if len(frame.Actions) > 0 {
		m.coord.Send(multiplayer.PlayerInputMsg{
			MatchID: m.matchID,
			Player:  m.side,
			Input:   multiplayer.ForSide(frame, m.side),
		})
	}
	return m, nil
}

func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}
	if m.state == OnlinePlaying && m.live {
		render.Draw(m.screen, render.Frame{
			Snapshot: m.snap,
			Labels:   m.labels,
			OverHint: "wait for the result",
		})
		return RenderScreen(m.screen) + "\n" + hintStyle.Render(m.help.View(m.keys))
	}

	lines := []string{"", titleStyle.Render("  O N L I N E  "), ""}
	switch m.state {
	case OnlineChoose:
		lines = append(lines, "Play someone on this server", "", "[H] Host a match", "[J] Join with a code")
	case OnlineHosting:
		lines = append(lines, "Share this code with your opponent", "", pickStyle.Render("[ "+m.code+" ]"), "", "Waiting for a player to join...")
	case OnlineEnterCode:
		lines = append(lines, "Enter the match code", "", pickStyle.Render("[ "+codeField(m.code)+" ]"))
	case OnlineJoining:
		lines = append(lines, "Joining "+m.code+"...")
	case OnlinePlaying:
		lines = append(lines, "Match "+m.code+" starting...")
	case OnlineEnded:
		lines = append(lines, m.endLines()...)
	}
	if m.errMsg != "" {
		lines = append(lines, "", "Error: "+m.errMsg)
	}
	lines = append(lines, "", hintStyle.Render(m.lobbyHelp()))

	for i, l := range lines {
		lines[i] = centerText(l, m.width)
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m OnlineModel) lobbyHelp() string {
	if m.state == OnlineEnterCode {
		return m.help.View(m.lobbyKeys) + "  ctrl+c quit"
	}
	return m.help.View(m.lobbyKeys)
}

// codeField pads a partial code with a cursor and blanks.
func codeField(code string) string {
	if len(code) >= multiplayer.CodeLength {
		return code
	}
	return code + "_" + strings.Repeat(" ", multiplayer.CodeLength-len(code)-1)
}

func (m OnlineModel) endLines() []string {
	e := m.ended
	outcome := "No winner"
	switch {
	case e.Winner == m.side:
		outcome = "You win!"
	case e.Winner.Valid():
		outcome = "You lose"
	}
	return []string{
		pickStyle.Render(outcome),
		"",
		fmt.Sprintf("%s %d - %d %s", m.labels[1], e.Score2, e.Score1, m.labels[0]),
		e.Reason.String(),
	}
}

// State returns the current step of the online flow.
func (m OnlineModel) State() OnlineState {
	return m.state
}

// Code returns the hosted or typed lobby code.
func (m OnlineModel) Code() string {
	return m.code
}

// Side returns the paddle this session plays once a match started.
func (m OnlineModel) Side() core.PlayerID {
	return m.side
}

func (m OnlineModel) BackToMenu() bool {
	return m.backToMenu
}

func (m OnlineModel) IsQuitting() bool {
	return m.quitting
}
