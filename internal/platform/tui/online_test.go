package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/multiplayer"
)

func newTestCoordinator(t *testing.T) (*multiplayer.Coordinator, *multiplayer.ChannelSession, *multiplayer.ChannelSession) {
	t.Helper()
	cfg := multiplayer.DefaultCoordinatorConfig()
	cfg.Match = config.Default()
	cfg.Match.Physics.Backend = config.BackendKinematic

	reg := multiplayer.NewSessionRegistry()
	alice := multiplayer.NewChannelSession("alice-1", "alice", 256)
	bob := multiplayer.NewChannelSession("bob-1", "bob", 256)
	reg.Register(alice)
	reg.Register(bob)

	c := multiplayer.NewCoordinator(cfg, reg, nil)
	c.Start()
	t.Cleanup(c.Stop)
	return c, alice, bob
}

// nextEvent waits for the next event of type T on a session.
func nextEvent[T multiplayer.SessionEvent](t *testing.T, s *multiplayer.ChannelSession) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-s.Events():
			if e, ok := evt.(T); ok {
				return e
			}
		case <-deadline:
			var zero T
			t.Fatalf("%s: no %T arrived", s.Name(), zero)
			return zero
		}
	}
}

func sendOnline(t *testing.T, m OnlineModel, msgs ...tea.Msg) OnlineModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		if m, ok = next.(OnlineModel); !ok {
			t.Fatalf("Update returned %T", next)
		}
	}
	return m
}

func TestOnlineHostJoinAndLeave(t *testing.T) {
	c, alice, bob := newTestCoordinator(t)
	host := NewOnlineModel(c, alice, 80, 24)
	guest := NewOnlineModel(c, bob, 80, 24)

	host = sendOnline(t, host, runes("h"))
	host = sendOnline(t, host, nextEvent[multiplayer.LobbyCreatedEvent](t, alice))
	if host.State() != OnlineHosting || len(host.Code()) != multiplayer.CodeLength {
		t.Fatalf("state %v code %q, expected hosting with a code", host.State(), host.Code())
	}
	if !strings.Contains(host.View(), host.Code()) {
		t.Error("hosting view should show the code")
	}

	guest = sendOnline(t, guest, runes("j"), runes(strings.ToLower(host.Code())), tea.KeyMsg{Type: tea.KeyEnter})
	if guest.State() != OnlineJoining {
		t.Fatalf("guest state %v, expected joining", guest.State())
	}

	host = sendOnline(t, host, nextEvent[multiplayer.MatchStartedEvent](t, alice))
	guest = sendOnline(t, guest, nextEvent[multiplayer.MatchStartedEvent](t, bob))
	if host.Side() != core.Player1 || guest.Side() != core.Player2 {
		t.Fatalf("sides %v/%v, expected P1/P2", host.Side(), guest.Side())
	}

	guest = sendOnline(t, guest, nextEvent[multiplayer.SnapshotEvent](t, bob))
	view := guest.View()
	if !strings.Contains(view, "bob (you)") || !strings.Contains(view, "alice") {
		t.Error("match view should label both players")
	}

	guest = sendOnline(t, guest, tea.KeyMsg{Type: tea.KeyEsc})
	if !guest.BackToMenu() {
		t.Error("esc should leave the match for the menu")
	}

	host = sendOnline(t, host, nextEvent[multiplayer.MatchEndedEvent](t, alice))
	if host.State() != OnlineEnded {
		t.Fatalf("host state %v, expected ended", host.State())
	}
	if !strings.Contains(host.View(), "You win!") {
		t.Error("the player who stayed should win")
	}

	host = sendOnline(t, host, tea.KeyMsg{Type: tea.KeyEnter})
	if !host.BackToMenu() {
		t.Error("enter after the result should return to the menu")
	}
}

func TestOnlineCodeEntry(t *testing.T) {
	// No coordinator: nothing here may reach it
	m := NewOnlineModel(nil, multiplayer.NewChannelSession("s", "alice", 1), 80, 24)

	m = sendOnline(t, m, runes("j"))
	if m.State() != OnlineEnterCode {
		t.Fatalf("state %v, expected code entry", m.State())
	}

	// Only base32 characters count, lower case is folded
	m = sendOnline(t, m, runes("ab1c!"), runes("q"))
	if m.Code() != "ABCQ" {
		t.Errorf("code %q, expected ABCQ", m.Code())
	}
	if m.IsQuitting() {
		t.Error("q is a code character while typing")
	}

	m = sendOnline(t, m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Code() != "ABC" || m.State() != OnlineEnterCode {
		t.Errorf("code %q state %v, expected ABC still in entry", m.Code(), m.State())
	}

	m = sendOnline(t, m, runes("DEFGH"))
	if m.Code() != "ABCDEF" {
		t.Errorf("code %q, expected it capped at six characters", m.Code())
	}

	m = sendOnline(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.State() != OnlineChoose {
		t.Errorf("state %v, expected back at host or join", m.State())
	}
	m = sendOnline(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() {
		t.Error("esc on the first step should return to the menu")
	}
}

func TestOnlineIgnoresOtherMatches(t *testing.T) {
	m := NewOnlineModel(nil, multiplayer.NewChannelSession("s", "alice", 1), 80, 24)
	m = sendOnline(t, m, multiplayer.MatchStartedEvent{MatchID: "mine", Side: core.Player1, Opponent: "bob"})

	m = sendOnline(t, m, multiplayer.MatchEndedEvent{MatchID: "other", Winner: core.Player2})
	if m.State() != OnlinePlaying {
		t.Errorf("state %v, expected an unrelated result to be ignored", m.State())
	}

	m = sendOnline(t, m, multiplayer.MatchEndedEvent{MatchID: "mine", Winner: core.Player2, Reason: multiplayer.MatchEndReasonCompleted})
	if !strings.Contains(m.View(), "You lose") {
		t.Error("losing side should be told so")
	}
}

func TestSessionOffersOnlineWithLink(t *testing.T) {
	c, alice, _ := newTestCoordinator(t)

	plain := NewSessionModel(SessionConfig{Match: config.Default(), Width: 80, Height: 24})
	if strings.Contains(plain.View(), "Online") {
		t.Error("sessions without a coordinator should not offer online play")
	}

	s := NewSessionModel(SessionConfig{
		Match:       config.Default(),
		Width:       80,
		Height:      24,
		Coordinator: c,
		Link:        alice,
	})
	if !strings.Contains(s.View(), "Online") {
		t.Fatal("online sessions should list the online entry")
	}

	// Events outside the lobby are dropped but keep the listener running
	next, cmd := s.Update(multiplayer.LobbyErrorEvent{Message: "stale"})
	s = next.(SessionModel)
	if cmd == nil || s.screen != screenMenu {
		t.Errorf("screen %v, expected to stay in the menu and keep listening", s.screen)
	}

	// Online sits just above Results, the last entry
	for _, k := range []tea.KeyType{tea.KeyDown, tea.KeyDown, tea.KeyDown, tea.KeyDown, tea.KeyUp, tea.KeyEnter} {
		next, _ = s.Update(tea.KeyMsg{Type: k})
		s = next.(SessionModel)
	}
	if s.screen != screenOnline {
		t.Fatalf("screen %v, expected the online lobby", s.screen)
	}

	next, _ = s.Update(multiplayer.LobbyErrorEvent{Message: "Lobby not found"})
	s = next.(SessionModel)
	if !strings.Contains(s.View(), "Lobby not found") {
		t.Error("lobby errors should be shown")
	}
}
