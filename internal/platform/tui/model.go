package tui

import (
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/audio"
	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/match"
	"github.com/vovakirdan/tui-pong/internal/render"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

// Modes recorded with saved results.
const (
	ModeLocal = "local"
	ModeCPU   = "cpu"
	ModeSSH   = "ssh"
)

// keyRepeatSeconds is the paddle travel credited to one key event, in
// seconds at paddle speed. Terminals repeat held keys at roughly 30 Hz.
const keyRepeatSeconds = 1.0 / 30

// Options configures a match front end.
type Options struct {
	Match   config.PongConfig
	Runtime core.RuntimeConfig
	VsCPU   bool      // CPU drives player 2
	Mode    string    // Stored with the result; derived from VsCPU when empty
	Players [2]string // Names for player 1 and player 2
	Store   *storage.Store
	Sound   *audio.Player
	Logger  *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Runtime.TickRate <= 0 {
		o.Runtime.TickRate = 60
	}
	if o.Mode == "" {
		o.Mode = ModeLocal
		if o.VsCPU {
			o.Mode = ModeCPU
		}
	}
	if o.Players[0] == "" {
		o.Players[0] = core.Player1.String()
	}
	if o.Players[1] == "" {
		o.Players[1] = core.Player2.String()
		if o.VsCPU {
			o.Players[1] = "CPU"
		}
	}
	return o
}

// Model is the Bubble Tea model for one match.
type Model struct {
	match      *match.Match
	cpu        *match.CPU
	screen     *core.Screen
	opts       Options
	keys       KeyMap
	help       help.Model
	input      core.InputFrame
	lastTick   time.Time
	paused     bool
	saved      bool // Whether the current match has been recorded
	quitting   bool
	backToMenu bool
}

// NewModel creates a match and the model that drives it.
func NewModel(opts Options) (Model, error) {
	opts = opts.withDefaults()

	m, err := match.New(opts.Match,
		match.WithLogger(opts.Logger),
		match.WithSeed(opts.Runtime.Seed),
	)
	if err != nil {
		return Model{}, err
	}
	opts.Sound.Attach(m)

	var cpu *match.CPU
	if opts.VsCPU {
		cpu = match.NewCPU(core.Player2, opts.Match.CPU.Skill)
	}

	return Model{
		match:  m,
		cpu:    cpu,
		screen: core.NewScreen(opts.Runtime.ScreenW, max(opts.Runtime.ScreenH-1, 1)),
		opts:   opts,
		keys:   DefaultKeyMap(opts.VsCPU),
		help:   help.New(),
		input:  core.NewInputFrame(),
	}, nil
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.Runtime.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.opts.Runtime.ScreenW = msg.Width
		m.opts.Runtime.ScreenH = msg.Height
		// Last row is the help bar
		m.screen.Resize(msg.Width, max(msg.Height-1, 1))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey records actions for the next frame. Quit and back act at once.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keys.MapKeyToFrame(msg, &m.input) {
		m.saveResult()
		m.quitting = true
		return m, tea.Quit
	}
	if m.input.Has(core.ActionBack) {
		m.saveResult()
		m.backToMenu = true
		return m, tea.Quit
	}
	return m, nil
}

// handleTick applies the frame's input and advances the match by the wall
// time since the previous tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	elapsed := frameElapsed(m.lastTick, now)
	m.lastTick = now

	if m.input.Has(core.ActionRestart) {
		m.saveResult()
		m.match.Reset()
		m.saved = false
		m.paused = false
	}
	if m.input.Count(core.ActionPause)%2 == 1 && m.match.State() != match.Over {
		m.paused = !m.paused
	}

	if !m.paused {
		m.applyInput(elapsed)
		m.match.Update(elapsed)
		if m.match.State() == match.Over {
			m.saveResult()
		}
	}

	m.input.Clear()
	return m, tickCmd(m.opts.Runtime.TickRate)
}

// applyInput moves the paddles and serves. Held keys arrive as repeated
// events, so each event moves the paddle a fixed distance.
func (m *Model) applyInput(elapsed float64) {
	nudge := m.opts.Match.Paddles.Speed * keyRepeatSeconds

	dy := m.input.Count(core.ActionP1Up) - m.input.Count(core.ActionP1Down)
	if dy != 0 {
		m.match.MovePaddle(core.Player1, float64(dy)*nudge)
	}

	if m.cpu != nil {
		m.cpu.Drive(m.match, elapsed)
	} else if dy2 := m.input.Count(core.ActionP2Up) - m.input.Count(core.ActionP2Down); dy2 != 0 {
		m.match.MovePaddle(core.Player2, float64(dy2)*nudge)
	}

	if m.input.Has(core.ActionLaunch) && m.match.State() == match.AtRest {
		m.match.LaunchBall()
	}
}

// saveResult records the match once. Matches without a single goal are not
// worth a row.
func (m *Model) saveResult() {
	if m.saved || m.opts.Store == nil {
		return
	}
	s := m.match.Summary()
	if s.Score1+s.Score2 == 0 {
		return
	}

	r := storage.FromSummary(s, m.opts.Mode, m.opts.Players[0], m.opts.Players[1])
	id, err := m.opts.Store.SaveMatch(r)
	if err != nil {
		m.opts.Logger.Warn("could not save result", "err", err)
		return
	}
	m.saved = true
	m.opts.Logger.Info("result saved", "match", id, "score1", s.Score1, "score2", s.Score2, "reason", r.EndReason)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	render.Draw(m.screen, render.Frame{
		Snapshot: m.match.GetObjectPositions(),
		Labels:   m.opts.Players,
		Paused:   m.paused,
	})

	return RenderScreen(m.screen) + "\n" + hintStyle.Render(m.help.View(m.keys))
}

// Match returns the match the model drives.
func (m Model) Match() *match.Match {
	return m.match
}

// Paused reports whether the match is paused.
func (m Model) Paused() bool {
	return m.paused
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts a local Bubble Tea program for one match.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
