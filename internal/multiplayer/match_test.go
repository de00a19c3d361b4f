package multiplayer

import (
	"testing"
	"time"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/match"
)

const step = 1.0 / 60.0

func newTestOnlineMatch(t *testing.T, mutate func(*config.PongConfig)) (*OnlineMatch, *ChannelSession, *ChannelSession) {
	t.Helper()
	cfg := testMatchConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	game, err := match.New(cfg, match.WithSeed(7))
	if err != nil {
		t.Fatalf("match.New() failed: %v", err)
	}
	p1 := NewChannelSession("p1", "alice", 1024)
	p2 := NewChannelSession("p2", "bob", 1024)
	return NewOnlineMatch("m-1", "ABCDEF", game, p1, p2, 60), p1, p2
}

func frameOf(actions ...core.Action) core.InputFrame {
	f := core.NewInputFrame()
	for _, a := range actions {
		f.Set(a)
	}
	return f
}

func TestOnlineMatchPlayersMoveOnlyTheirPaddle(t *testing.T) {
	om, p1, p2 := newTestOnlineMatch(t, nil)
	start := om.game.PaddleTarget(Player2)

	// Player 1 tries to steer the west paddle; player 2 steers it for real
	om.SendInput(Player1, frameOf(core.ActionP2Up, core.ActionP2Up))
	om.SendInput(Player2, frameOf(core.ActionP2Up, core.ActionP2Up, core.ActionP2Up))
	om.tick(step)

	if got, want := om.game.PaddleTarget(Player2), start+3*om.nudge; got != want {
		t.Errorf("player 2 paddle target = %v, expected %v", got, want)
	}
	if got := om.game.PaddleTarget(Player1); got != start {
		t.Errorf("player 1 paddle target = %v, expected it unmoved at %v", got, start)
	}

	for _, s := range []*ChannelSession{p1, p2} {
		snap := waitFor[SnapshotEvent](t, s)
		if snap.MatchID != om.ID() || snap.Snapshot.Tick != 1 {
			t.Errorf("%s: snapshot %q tick %d, expected %q tick 1", s.Name(), snap.MatchID, snap.Snapshot.Tick, om.ID())
		}
	}
}

func TestOnlineMatchInputIsConsumedOnce(t *testing.T) {
	om, _, _ := newTestOnlineMatch(t, nil)
	start := om.game.PaddleTarget(Player1)

	om.SendInput(Player1, frameOf(core.ActionP1Down))
	om.tick(step)
	om.tick(step)

	if got, want := om.game.PaddleTarget(Player1), start-om.nudge; got != want {
		t.Errorf("paddle target = %v after two ticks, expected one nudge to %v", got, want)
	}
}

func TestOnlineMatchPlaysToWinScore(t *testing.T) {
	om, _, _ := newTestOnlineMatch(t, func(c *config.PongConfig) {
		c.Gameplay.WinScore = 1
	})

	// Player 1 parks the east paddle out of the ball's path, player 2 serves
	om.SendInput(Player1, frameOf(repeat(core.ActionP1Up, 50)...))
	om.SendInput(Player2, frameOf(core.ActionLaunch))

	var result MatchResult
	over := false
	for i := 0; i < 600 && !over; i++ {
		result, over = om.tick(step)
	}

	if !over {
		t.Fatalf("no winner after 600 ticks, ball at %+v", om.game.BallPosition())
	}
	if result.Reason != MatchEndReasonCompleted || result.Winner != Player2 {
		t.Errorf("result %v won by %v, expected completed by P2", result.Reason, result.Winner)
	}
	if result.Summary.Score2 != 1 || result.Summary.Score1 != 0 {
		t.Errorf("score %d-%d, expected 0-1", result.Summary.Score1, result.Summary.Score2)
	}
}

func repeat(a core.Action, n int) []core.Action {
	out := make([]core.Action, n)
	for i := range out {
		out[i] = a
	}
	return out
}

func TestOnlineMatchForfeitOnClosedSession(t *testing.T) {
	om, p1, p2 := newTestOnlineMatch(t, nil)

	results := make(chan MatchResult, 1)
	go om.Run(func(r MatchResult) { results <- r })

	p2.Close()

	select {
	case r := <-results:
		if r.Reason != MatchEndReasonDisconnect || r.Winner != Player1 {
			t.Errorf("result %v won by %v, expected a disconnect won by P1", r.Reason, r.Winner)
		}
	case <-time.After(waitTimeout):
		t.Fatal("match kept running after a player left")
	}

	// Closed sessions receive nothing further
	p2.Send(LobbyErrorEvent{Message: "late"})
	p1.Close()
}

func TestOnlineMatchStopSkipsResult(t *testing.T) {
	om, _, _ := newTestOnlineMatch(t, nil)

	finished := make(chan struct{})
	called := false
	go func() {
		om.Run(func(MatchResult) { called = true })
		close(finished)
	}()

	om.Stop()
	select {
	case <-finished:
	case <-time.After(waitTimeout):
		t.Fatal("Run did not return after Stop")
	}
	if called {
		t.Error("stopped match reported a result")
	}
}

func TestForSide(t *testing.T) {
	in := frameOf(core.ActionP1Up, core.ActionP2Up, core.ActionP1Down, core.ActionLaunch)

	tests := []struct {
		side       PlayerID
		up, down   core.Action
		other      core.Action
		otherCount int
	}{
		{Player1, core.ActionP1Up, core.ActionP1Down, core.ActionP2Up, 0},
		{Player2, core.ActionP2Up, core.ActionP2Down, core.ActionP1Up, 0},
	}

	for _, tc := range tests {
		t.Run(tc.side.String(), func(t *testing.T) {
			out := ForSide(in, tc.side)
			if out.Count(tc.up) != 2 || out.Count(tc.down) != 1 {
				t.Errorf("up %d down %d, expected 2 and 1", out.Count(tc.up), out.Count(tc.down))
			}
			if out.Count(tc.other) != tc.otherCount {
				t.Errorf("%v count %d, expected %d", tc.other, out.Count(tc.other), tc.otherCount)
			}
			if !out.Has(core.ActionLaunch) {
				t.Error("launch dropped")
			}
		})
	}

	if in.Count(core.ActionP1Up) != 1 {
		t.Error("ForSide modified its input")
	}
}

func TestChannelSessionDropsOldest(t *testing.T) {
	s := NewChannelSession("s", "alice", 2)
	for _, msg := range []string{"a", "b", "c"} {
		s.Send(LobbyErrorEvent{Message: msg})
	}

	var got []string
	for len(s.Events()) > 0 {
		got = append(got, (<-s.Events()).(LobbyErrorEvent).Message)
	}
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("events %v, expected [b c]", got)
	}

	s.Close()
	s.Close()
	s.Send(LobbyErrorEvent{Message: "d"})
	if len(s.Events()) != 0 {
		t.Error("closed session accepted an event")
	}
}

func TestSessionRegistry(t *testing.T) {
	r := NewSessionRegistry()
	s := NewChannelSession("s", "alice", 1)

	r.Register(s)
	if got, ok := r.Get("s"); !ok || got.Name() != "alice" || r.Count() != 1 {
		t.Fatalf("Get() = %v, %v; Count() = %d", got, ok, r.Count())
	}
	r.Unregister("s")
	if _, ok := r.Get("s"); ok || r.Count() != 0 {
		t.Error("session still registered")
	}
}
