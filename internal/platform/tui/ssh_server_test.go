package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/tui-pong/internal/multiplayer"
)

func TestResolveHostKeyPathCreatesDir(t *testing.T) {
	want := filepath.Join(t.TempDir(), "keys", "nested", "host_key")

	got, err := resolveHostKeyPath(want)
	if err != nil {
		t.Fatalf("resolveHostKeyPath() failed: %v", err)
	}
	if got != want {
		t.Errorf("path = %q, expected %q", got, want)
	}
	info, err := os.Stat(filepath.Dir(want))
	if err != nil || !info.IsDir() {
		t.Errorf("key directory was not created: %v", err)
	}
}

func TestResolveHostKeyPathDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	got, err := resolveHostKeyPath("")
	if err != nil {
		t.Fatalf("resolveHostKeyPath() failed: %v", err)
	}
	if filepath.Base(got) != "host_key" || filepath.Base(filepath.Dir(got)) != ".pong" {
		t.Errorf("default path = %q, expected ~/.pong/host_key", got)
	}
}

func TestNewSSHServerWithoutDatabase(t *testing.T) {
	cfg := DefaultSSHServerConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.HostKeyPath = filepath.Join(t.TempDir(), "host_key")
	cfg.DBPath = filepath.Join(t.TempDir(), "results.db")

	s, err := NewSSHServer(cfg)
	if err != nil {
		t.Fatalf("NewSSHServer() failed: %v", err)
	}
	if s.ActiveSessions() != 0 {
		t.Errorf("ActiveSessions() = %d, expected 0", s.ActiveSessions())
	}
	if s.store == nil {
		t.Error("results store should be open")
	}
	s.closeStore()
	if s.store != nil {
		t.Error("closeStore should drop the store")
	}
}

func TestSSHServerLinksSessionsToLobby(t *testing.T) {
	cfg := DefaultSSHServerConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.HostKeyPath = filepath.Join(t.TempDir(), "host_key")
	cfg.DBPath = filepath.Join(t.TempDir(), "results.db")

	s, err := NewSSHServer(cfg)
	if err != nil {
		t.Fatalf("NewSSHServer() failed: %v", err)
	}
	s.Coordinator().Start()
	t.Cleanup(func() {
		s.Coordinator().Stop()
		s.closeStore()
	})

	done := make(chan struct{})
	link := s.link("alice", done)
	if _, ok := s.registry.Get(link.ID()); !ok {
		t.Fatal("link was not registered")
	}

	s.Coordinator().Send(multiplayer.CreateLobbyMsg{SessionID: link.ID()})
	nextEvent[multiplayer.LobbyCreatedEvent](t, link)

	// Hanging up closes the link and the lobby it hosted
	close(done)
	deadline := time.After(2 * time.Second)
	for s.Coordinator().LobbyCount() != 0 || s.registry.Count() != 0 {
		select {
		case <-deadline:
			t.Fatalf("lobbies %d sessions %d after hang-up, expected none", s.Coordinator().LobbyCount(), s.registry.Count())
		case <-time.After(10 * time.Millisecond):
		}
	}
	select {
	case <-link.Done():
	default:
		t.Error("link still open after hang-up")
	}
}
