package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/multiplayer"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

// shutdownGrace bounds how long open sessions get to finish on shutdown.
const shutdownGrace = 10 * time.Second

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the host key file, generated on first start.
	// Empty means ~/.pong/host_key.
	HostKeyPath string

	// DBPath is the results database shared by all sessions.
	DBPath string

	// IdleTimeout closes connections without input for this long.
	IdleTimeout time.Duration

	// TickRate is the frame rate of every session and online match.
	TickRate int

	// LobbyTimeout closes hosted online lobbies nobody joined.
	LobbyTimeout time.Duration

	// Match is the base configuration; sessions apply their difficulty on top.
	Match config.PongConfig

	// Logger receives server and match logs. Defaults to stderr.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:      ":23234",
		DBPath:       "~/.pong/results.db",
		IdleTimeout:  30 * time.Minute,
		TickRate:     60,
		LobbyTimeout: multiplayer.DefaultCoordinatorConfig().LobbyTimeout,
		Match:        config.Default(),
	}
}

// SSHServer serves Pong over SSH. Each connection runs its own session:
// matches against the CPU stay inside it, while online matches between two
// connections run on the shared coordinator. Results go to one store.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	store    *storage.Store
	registry *multiplayer.SessionRegistry
	coord    *multiplayer.Coordinator
	logger   *log.Logger
	sessions atomic.Int64
}

// NewSSHServer prepares the server without listening yet. A results
// database that cannot be opened only disables saving.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "pong-ssh",
		})
	}

	hostKeyPath, err := resolveHostKeyPath(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}

	s := &SSHServer{
		config:   cfg,
		logger:   cfg.Logger,
		registry: multiplayer.NewSessionRegistry(),
	}

	if s.store, err = storage.Open(cfg.DBPath); err != nil {
		s.logger.Warn("results disabled, could not open database", "path", cfg.DBPath, "error", err)
		s.store = nil
	}

	coordCfg := multiplayer.DefaultCoordinatorConfig()
	coordCfg.Match = cfg.Match
	coordCfg.TickRate = cfg.TickRate
	if cfg.LobbyTimeout > 0 {
		coordCfg.LobbyTimeout = cfg.LobbyTimeout
	}
	s.coord = multiplayer.NewCoordinator(coordCfg, s.registry, s.logger.With("component", "lobby"))
	if s.store != nil {
		s.coord.SetResultSaver(s.store)
	}

	s.server, err = wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(s.teaHandler),
			activeterm.Middleware(),
			s.trackSessions,
		),
	)
	if err != nil {
		s.closeStore()
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	return s, nil
}

// resolveHostKeyPath fills in the default key location and makes sure its
// directory exists.
func resolveHostKeyPath(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot get home directory: %w", err)
		}
		path = filepath.Join(home, ".pong", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("cannot create host key directory: %w", err)
	}
	return path, nil
}

// teaHandler builds the session model for a connection. activeterm has
// already rejected connections without a PTY.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sess.Pty()

	model := NewSessionModel(SessionConfig{
		Match:       s.config.Match,
		Store:       s.store,
		Logger:      s.logger.With("user", sess.User()),
		Username:    sess.User(),
		Mode:        ModeSSH,
		TickRate:    s.config.TickRate,
		Width:       pty.Window.Width,
		Height:      pty.Window.Height,
		Coordinator: s.coord,
		Link:        s.link(sess.User(), sess.Context().Done()),
	})

	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// link registers a coordinator handle for a connection and tears it down
// once done closes.
func (s *SSHServer) link(user string, done <-chan struct{}) *multiplayer.ChannelSession {
	id := multiplayer.SessionID(fmt.Sprintf("%s-%d", user, time.Now().UnixNano()))
	link := multiplayer.NewChannelSession(id, user, 64)
	s.registry.Register(link)

	go func() {
		<-done
		link.Close()
		s.registry.Unregister(id)
		s.coord.Send(multiplayer.SessionDisconnectedMsg{SessionID: id})
	}()
	return link
}

// trackSessions logs connects and disconnects with the live session count.
func (s *SSHServer) trackSessions(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		start := time.Now()
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
			"active", s.sessions.Add(1),
		)
		defer func() {
			s.logger.Info("session ended",
				"user", sess.User(),
				"remote", sess.RemoteAddr().String(),
				"duration", time.Since(start).Round(time.Second),
				"active", s.sessions.Add(-1),
			)
		}()
		next(sess)
	}
}

// ListenAndServe accepts connections until ctx is cancelled, then shuts
// down gracefully.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "backend", s.config.Match.Physics.Backend)
	s.coord.Start()

	errc := make(chan error, 1)
	go func() {
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.coord.Stop()
		s.closeStore()
		if errors.Is(err, ssh.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("ssh server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...", "active", s.sessions.Load())
	return s.Shutdown()
}

// Shutdown stops accepting connections, waits up to shutdownGrace for open
// sessions, stops online matches and closes the results store.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.coord.Stop()
	s.closeStore()
	if errors.Is(err, ssh.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *SSHServer) closeStore() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing results database", "error", err)
	}
	s.store = nil
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// Coordinator returns the lobby shared by all sessions.
func (s *SSHServer) Coordinator() *multiplayer.Coordinator {
	return s.coord
}

// ActiveSessions returns the number of connected sessions.
func (s *SSHServer) ActiveSessions() int64 {
	return s.sessions.Load()
}
