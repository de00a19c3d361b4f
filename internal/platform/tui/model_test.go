package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/match"
	_ "github.com/vovakirdan/tui-pong/internal/physics/kinematic"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, mutate func(*Options)) Model {
	t.Helper()
	cfg := config.Default()
	cfg.Physics.Backend = config.BackendKinematic
	opts := Options{
		Match:   cfg,
		Runtime: core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1},
	}
	if mutate != nil {
		mutate(&opts)
	}
	m, err := NewModel(opts)
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	return m
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		if m, ok = next.(Model); !ok {
			t.Fatalf("Update returned %T", next)
		}
	}
	return m
}

// ticks sends n ticks spaced step apart, starting at start.
func ticks(t *testing.T, m Model, start time.Time, step time.Duration, n int) Model {
	t.Helper()
	for i := range n {
		m = send(t, m, TickMsg(start.Add(time.Duration(i)*step)))
	}
	return m
}

func TestFrameElapsed(t *testing.T) {
	base := time.Unix(1000, 0)
	tests := []struct {
		name       string
		prev, now  time.Time
		wantSecond float64
	}{
		{"first frame", time.Time{}, base, 0},
		{"one frame", base, base.Add(time.Second / 60), 1.0 / 60},
		{"clock went back", base, base.Add(-time.Second), 0},
		{"stall is capped", base, base.Add(5 * time.Second), maxFrameSeconds},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := frameElapsed(tc.prev, tc.now)
			if diff := got - tc.wantSecond; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("frameElapsed() = %v, expected %v", got, tc.wantSecond)
			}
		})
	}
}

func TestKeyMapActions(t *testing.T) {
	tests := []struct {
		name  string
		msg   tea.KeyMsg
		vsCPU bool
		want  core.Action
	}{
		{"up arrow", tea.KeyMsg{Type: tea.KeyUp}, false, core.ActionP1Up},
		{"down arrow", tea.KeyMsg{Type: tea.KeyDown}, false, core.ActionP1Down},
		{"w", runes("w"), false, core.ActionP2Up},
		{"s", runes("s"), false, core.ActionP2Down},
		{"w vs cpu", runes("w"), true, core.ActionNone},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, false, core.ActionLaunch},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, false, core.ActionLaunch},
		{"p", runes("p"), false, core.ActionPause},
		{"r", runes("r"), false, core.ActionRestart},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, false, core.ActionBack},
		{"q", runes("q"), false, core.ActionQuit},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, true, core.ActionQuit},
		{"unbound", runes("x"), false, core.ActionNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DefaultKeyMap(tc.vsCPU).Action(tc.msg); got != tc.want {
				t.Errorf("Action() = %v, expected %v", got, tc.want)
			}
		})
	}
}

func TestModelLaunchMovesBall(t *testing.T) {
	m := newTestModel(t, nil)
	start := time.Unix(0, 0)

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = ticks(t, m, start, time.Second/60, 31)

	if m.Match().State() != match.InPlay {
		t.Fatalf("state = %v, expected in play", m.Match().State())
	}
	// 30 frames of 1/60s at 300 units/s
	if x := m.Match().BallPosition().X; x < 449 || x > 451 {
		t.Errorf("ball x = %v, expected about 450", x)
	}
}

func TestModelPauseFreezesBall(t *testing.T) {
	m := newTestModel(t, nil)
	start := time.Unix(0, 0)

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = ticks(t, m, start, time.Second/60, 10)
	m = send(t, m, runes("p"))
	m = ticks(t, m, start.Add(time.Second), time.Second/60, 1)
	if !m.Paused() {
		t.Fatal("model should be paused")
	}

	before := m.Match().BallPosition()
	m = ticks(t, m, start.Add(2*time.Second), time.Second/60, 20)
	if after := m.Match().BallPosition(); after != before {
		t.Errorf("ball moved while paused: %v -> %v", before, after)
	}

	m = send(t, m, runes("p"))
	m = ticks(t, m, start.Add(3*time.Second), time.Second/60, 5)
	if m.Paused() {
		t.Error("second P should resume")
	}
	if after := m.Match().BallPosition(); after == before {
		t.Error("ball should move after resuming")
	}
}

func TestModelPaddleKeys(t *testing.T) {
	m := newTestModel(t, nil)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyUp}, runes("s"))
	m = ticks(t, m, time.Unix(0, 0), time.Second/60, 1)

	nudge := m.opts.Match.Paddles.Speed * keyRepeatSeconds
	if got := m.Match().PaddleTarget(core.Player1); got != 300+2*nudge {
		t.Errorf("P1 target = %v, expected %v", got, 300+2*nudge)
	}
	if got := m.Match().PaddleTarget(core.Player2); got != 300-nudge {
		t.Errorf("P2 target = %v, expected %v", got, 300-nudge)
	}
}

func TestModelSavesFinishedMatch(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	m := newTestModel(t, func(o *Options) {
		o.Match.Gameplay.WinScore = 1
		o.Store = store
		o.Players = [2]string{"alice", "bob"}
	})

	// Lift player 1's paddle out of the ball's path, then serve east
	for range 30 {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = ticks(t, m, time.Unix(0, 0), 100*time.Millisecond, 30)

	if m.Match().State() != match.Over {
		t.Fatalf("state = %v, expected over", m.Match().State())
	}

	results, err := store.RecentMatches(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("saved %d results, expected 1", len(results))
	}
	r := results[0]
	if r.Score2 != 1 || r.Winner != 2 || r.Player2 != "bob" || r.Mode != ModeLocal {
		t.Errorf("unexpected result %+v", r)
	}
	if r.EndReason != storage.EndCompleted {
		t.Errorf("end reason = %q, expected %q", r.EndReason, storage.EndCompleted)
	}

	// Quitting afterwards does not save the same match twice
	m = send(t, m, runes("q"))
	if results, _ = store.RecentMatches(10); len(results) != 1 {
		t.Errorf("quit saved again, have %d results", len(results))
	}
	if !m.IsQuitting() {
		t.Error("q should quit")
	}
}

func TestModelQuitCommand(t *testing.T) {
	m := newTestModel(t, nil)

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command should produce tea.QuitMsg")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t, func(o *Options) { o.VsCPU = true })

	view := m.View()
	if !strings.Contains(view, "CPU") {
		t.Error("view should label the CPU player")
	}
	if !strings.Contains(view, "launch") {
		t.Error("view should include the help bar")
	}
}

func TestSessionMenuToMatchAndBack(t *testing.T) {
	cfg := config.Default()
	cfg.Physics.Backend = config.BackendKinematic

	s := NewSessionModel(SessionConfig{Match: cfg, TickRate: 60, Width: 80, Height: 24, Seed: 7})

	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	s = next.(SessionModel)
	if s.screen != screenMatch {
		t.Fatalf("screen = %v, expected match", s.screen)
	}
	if s.game.cpu == nil {
		t.Error("default selection should be a CPU match")
	}

	next, _ = s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	s = next.(SessionModel)
	if s.screen != screenMenu {
		t.Fatalf("screen = %v, expected menu after esc", s.screen)
	}
	if s.quitting {
		t.Error("esc in a match should not end the session")
	}
}

func TestSessionResultsScreen(t *testing.T) {
	s := NewSessionModel(SessionConfig{Match: config.Default(), Width: 100, Height: 30})

	// Results is the last entry
	for range len(DefaultMenuItems(false, false)) {
		next, _ := s.Update(tea.KeyMsg{Type: tea.KeyDown})
		s = next.(SessionModel)
	}
	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	s = next.(SessionModel)

	if s.screen != screenResults {
		t.Fatalf("screen = %v, expected results", s.screen)
	}
	if !strings.Contains(s.View(), "No matches recorded yet") {
		t.Error("results without a store should show the empty message")
	}
}

func TestResultRow(t *testing.T) {
	r := storage.MatchResult{
		Mode:         ModeCPU,
		Player1:      "alice",
		Player2:      "CPU",
		Score1:       5,
		Score2:       3,
		Winner:       1,
		LongestRally: 7,
		Duration:     75.4,
		Backend:      "box2d",
		CreatedAt:    time.Now(),
	}

	row := ResultRow(r)
	if len(row) != len(ResultColumns) {
		t.Fatalf("row has %d cells, expected %d", len(row), len(ResultColumns))
	}
	if row[3] != "5-3" || row[4] != "alice" || row[6] != "1:15" {
		t.Errorf("unexpected row %v", row)
	}
}

func TestMenuNavigation(t *testing.T) {
	m := NewMenuModel(DefaultMenuItems(true, false), 80, 24)

	step := func(msg tea.KeyMsg) {
		next, _ := m.Update(msg)
		m = next.(MenuModel)
	}

	step(runes("w"))
	step(runes("w"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, expected to stop at 0", m.cursor)
	}
	for range 10 {
		step(runes("j"))
	}
	if last := len(DefaultMenuItems(true, false)) - 1; m.cursor != last {
		t.Errorf("cursor = %d, expected to stop at %d", m.cursor, last)
	}
	step(tea.KeyMsg{Type: tea.KeyEnter})
	if sel := m.Selected(); sel == nil || !sel.Results {
		t.Errorf("Selected() = %+v, expected the results entry", sel)
	}
}

func TestListKeyMapHelp(t *testing.T) {
	for _, b := range ResultsKeyMap().ShortHelp() {
		if b.Help().Key == "" {
			t.Error("short help should skip bindings without help text")
		}
	}
	if ResultsKeyMap().Select.Enabled() {
		t.Error("results browser has nothing to select")
	}
	if MenuKeyMap().Refresh.Enabled() {
		t.Error("menu has nothing to reload")
	}
}
