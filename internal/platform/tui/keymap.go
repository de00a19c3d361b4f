package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// bind builds a binding. An empty helpKey leaves it out of the help view.
func bind(helpKey, desc string, keys ...string) key.Binding {
	opts := []key.BindingOpt{key.WithKeys(keys...)}
	if helpKey != "" {
		opts = append(opts, key.WithHelp(helpKey, desc))
	}
	return key.NewBinding(opts...)
}

// KeyMap holds the match key bindings. Player 1 guards the east wall with
// the arrow keys, player 2 the west wall with W/S.
type KeyMap struct {
	P1Up    key.Binding
	P1Down  key.Binding
	P2Up    key.Binding
	P2Down  key.Binding
	Launch  key.Binding
	Pause   key.Binding
	Restart key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the match bindings. With vsCPU the W/S bindings are
// disabled because the CPU owns player 2.
func DefaultKeyMap(vsCPU bool) KeyMap {
	k := KeyMap{
		P1Up:    bind("↑/↓", "right paddle", "up"),
		P1Down:  bind("", "", "down"),
		P2Up:    bind("w/s", "left paddle", "w"),
		P2Down:  bind("", "", "s"),
		Launch:  bind("space", "launch", " ", "space", "enter"),
		Pause:   bind("p", "pause", "p"),
		Restart: bind("r", "reset", "r"),
		Back:    bind("esc", "menu", "esc", "b"),
		Quit:    bind("q", "quit", "q", "ctrl+c"),
	}
	if vsCPU {
		k.P2Up.SetEnabled(false)
		k.P2Down.SetEnabled(false)
	}
	return k
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.P1Up, k.P2Up, k.Launch, k.Pause, k.Restart, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.P1Up, k.P1Down, k.P2Up, k.P2Down},
		{k.Launch, k.Pause, k.Restart, k.Back, k.Quit},
	}
}

// Action translates a key message to a match action. Quit wins over
// everything else.
func (k KeyMap) Action(msg tea.KeyMsg) core.Action {
	ordered := []struct {
		b key.Binding
		a core.Action
	}{
		{k.Quit, core.ActionQuit},
		{k.P1Up, core.ActionP1Up},
		{k.P1Down, core.ActionP1Down},
		{k.P2Up, core.ActionP2Up},
		{k.P2Down, core.ActionP2Down},
		{k.Launch, core.ActionLaunch},
		{k.Pause, core.ActionPause},
		{k.Restart, core.ActionRestart},
		{k.Back, core.ActionBack},
	}
	for _, e := range ordered {
		if key.Matches(msg, e.b) {
			return e.a
		}
	}
	return core.ActionNone
}

// MapKeyToFrame records the action for a key message in frame.
// Returns true if the key was a quit request.
func (k KeyMap) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action := k.Action(msg)
	if action != core.ActionNone {
		frame.Set(action)
	}
	return action == core.ActionQuit
}

// ListKeyMap drives the list screens: the mode picker and the results
// browser. Each screen disables what it does not use.
type ListKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Refresh key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// MenuKeyMap returns the mode picker bindings.
func MenuKeyMap() ListKeyMap {
	k := ListKeyMap{
		Up:      bind("↑/w", "up", "up", "w", "k"),
		Down:    bind("↓/s", "down", "down", "s", "j"),
		Select:  bind("enter", "select", "enter", " ", "space"),
		Refresh: bind("", "", "r"),
		Back:    bind("", "", "esc", "b"),
		Quit:    bind("q", "quit", "q", "ctrl+c"),
	}
	k.Refresh.SetEnabled(false)
	return k
}

// ResultsKeyMap returns the results browser bindings. Up and down are
// handled by the table itself and only listed for help.
func ResultsKeyMap() ListKeyMap {
	k := ListKeyMap{
		Up:      bind("↑/k", "scroll up", "up", "k"),
		Down:    bind("↓/j", "scroll down", "down", "j"),
		Select:  bind("", "", "enter"),
		Refresh: bind("r", "reload", "r"),
		Back:    bind("esc/b", "back", "esc", "b"),
		Quit:    bind("q", "quit", "q", "ctrl+c"),
	}
	k.Select.SetEnabled(false)
	return k
}

func (k ListKeyMap) ShortHelp() []key.Binding {
	var out []key.Binding
	for _, b := range []key.Binding{k.Up, k.Down, k.Select, k.Refresh, k.Back, k.Quit} {
		if b.Help().Key != "" {
			out = append(out, b)
		}
	}
	return out
}

func (k ListKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// OnlineKeyMap returns the bindings for a networked match. Each player
// steers their own paddle with either the arrows or W/S; pausing and
// resetting would stop the opponent's game too, so they are disabled.
func OnlineKeyMap() KeyMap {
	k := DefaultKeyMap(true)
	k.P1Up = bind("↑/↓", "your paddle", "up", "w")
	k.P1Down = bind("", "", "down", "s")
	k.Back = bind("esc", "leave", "esc")
	k.Pause.SetEnabled(false)
	k.Restart.SetEnabled(false)
	return k
}

// LobbyKeyMap drives the online lobby screens. The lobby enables the
// bindings that apply to its current step.
type LobbyKeyMap struct {
	Host   key.Binding
	Join   key.Binding
	Submit key.Binding
	Back   key.Binding
	Quit   key.Binding
}

func DefaultLobbyKeyMap() LobbyKeyMap {
	return LobbyKeyMap{
		Host:   bind("h", "host", "h", "1"),
		Join:   bind("j", "join", "j", "2"),
		Submit: bind("enter", "connect", "enter"),
		Back:   bind("esc", "back", "esc"),
		Quit:   bind("q", "quit", "q", "ctrl+c"),
	}
}

func (k LobbyKeyMap) ShortHelp() []key.Binding {
	var out []key.Binding
	for _, b := range []key.Binding{k.Host, k.Join, k.Submit, k.Back, k.Quit} {
		if b.Enabled() && b.Help().Key != "" {
			out = append(out, b)
		}
	}
	return out
}

func (k LobbyKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
