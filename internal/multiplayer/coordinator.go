package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/match"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

// CodeLength is the number of characters in a lobby code.
const CodeLength = 6

// Lobby is a hosted match waiting for a second player.
type Lobby struct {
	Code      string
	Host      SessionHandle
	CreatedAt time.Time
}

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	Match         config.PongConfig
	LobbyTimeout  time.Duration // How long a lobby waits for a joiner
	TickRate      int           // Match ticks per second
	CleanupPeriod time.Duration // How often expired lobbies are swept
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		Match:         config.Default(),
		LobbyTimeout:  5 * time.Minute,
		TickRate:      60,
		CleanupPeriod: 30 * time.Second,
	}
}

// ResultSaver stores finished online matches. *storage.Store satisfies it.
type ResultSaver interface {
	SaveMatch(r storage.MatchResult) (string, error)
}

// Coordinator manages lobbies and active matches. Messages are handled one
// at a time on the coordinator goroutine.
type Coordinator struct {
	config   CoordinatorConfig
	sessions *SessionRegistry
	saver    ResultSaver // Optional
	logger   *log.Logger

	mu      sync.RWMutex
	lobbies map[string]*Lobby
	matches map[MatchID]*OnlineMatch

	sessionLobby map[SessionID]string
	sessionMatch map[SessionID]MatchID

	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a coordinator. A nil logger discards output.
func NewCoordinator(cfg CoordinatorConfig, sessions *SessionRegistry, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = DefaultCoordinatorConfig().CleanupPeriod
	}
	return &Coordinator{
		config:       cfg,
		sessions:     sessions,
		logger:       logger,
		lobbies:      make(map[string]*Lobby),
		matches:      make(map[MatchID]*OnlineMatch),
		sessionLobby: make(map[SessionID]string),
		sessionMatch: make(map[SessionID]MatchID),
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
}

// SetResultSaver sets where finished matches are recorded.
func (c *Coordinator) SetResultSaver(saver ResultSaver) {
	c.saver = saver
}

// Sessions returns the registry sessions are looked up in.
func (c *Coordinator) Sessions() *SessionRegistry {
	return c.sessions
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop shuts down the coordinator and every running match.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, om := range c.matches {
		om.Stop()
		for _, s := range om.sessions {
			s.Send(MatchEndedEvent{MatchID: id, Reason: MatchEndReasonCancelled})
		}
	}
}

// Send queues a message for the coordinator goroutine.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateLobbyMsg:
		c.handleCreateLobby(m)
	case JoinLobbyMsg:
		c.handleJoinLobby(m)
	case CancelLobbyMsg:
		c.handleCancelLobby(m)
	case LeaveMatchMsg:
		c.handleLeaveMatch(m)
	case PlayerInputMsg:
		c.handlePlayerInput(m)
	case SessionDisconnectedMsg:
		c.handleSessionDisconnected(m)
	}
}

func (c *Coordinator) handleCreateLobby(msg CreateLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(msg.SessionID) {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby or match"})
		return
	}

	code := c.generateUniqueCode()
	c.lobbies[code] = &Lobby{Code: code, Host: session, CreatedAt: time.Now()}
	c.sessionLobby[msg.SessionID] = code

	c.logger.Info("lobby created", "code", code, "host", session.Name())
	session.Send(LobbyCreatedEvent{Code: code})
}

func (c *Coordinator) handleJoinLobby(msg JoinLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(msg.SessionID) {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby or match"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(msg.Code))
	lobby, exists := c.lobbies[code]
	if !exists {
		session.Send(LobbyErrorEvent{Message: "Lobby not found"})
		return
	}
	if lobby.Host.ID() == msg.SessionID {
		session.Send(LobbyErrorEvent{Message: "Cannot join your own lobby"})
		return
	}

	c.startMatch(lobby, session)
}

// busy reports whether a session already hosts a lobby or plays a match.
// Must be called with the lock held.
func (c *Coordinator) busy(id SessionID) bool {
	_, inLobby := c.sessionLobby[id]
	_, inMatch := c.sessionMatch[id]
	return inLobby || inMatch
}

// startMatch turns a lobby into a running match. Must be called with the
// lock held.
func (c *Coordinator) startMatch(lobby *Lobby, joiner SessionHandle) {
	host := lobby.Host

	game, err := match.New(c.config.Match,
		match.WithLogger(c.logger),
		match.WithSeed(time.Now().UnixNano()),
	)
	if err != nil {
		c.logger.Error("cannot create online match", "code", lobby.Code, "err", err)
		host.Send(LobbyErrorEvent{Message: "Failed to create match"})
		joiner.Send(LobbyErrorEvent{Message: "Failed to create match"})
		return
	}

	id := MatchID(uuid.NewString())
	om := NewOnlineMatch(id, lobby.Code, game, host, joiner, c.config.TickRate)

	c.matches[id] = om
	delete(c.lobbies, lobby.Code)
	delete(c.sessionLobby, host.ID())
	c.sessionMatch[host.ID()] = id
	c.sessionMatch[joiner.ID()] = id

	c.logger.Info("online match started", "match", id, "code", lobby.Code,
		"player1", host.Name(), "player2", joiner.Name())

	host.Send(MatchStartedEvent{MatchID: id, Code: lobby.Code, Side: Player1, Opponent: joiner.Name()})
	joiner.Send(MatchStartedEvent{MatchID: id, Code: lobby.Code, Side: Player2, Opponent: host.Name()})

	go om.Run(func(result MatchResult) {
		c.handleMatchEnded(result)
	})
}

// handleMatchEnded records the result and tells both players. It runs on
// the match goroutine.
func (c *Coordinator) handleMatchEnded(result MatchResult) {
	c.mu.Lock()
	om, exists := c.matches[result.MatchID]
	if exists {
		delete(c.matches, result.MatchID)
		for _, s := range om.sessions {
			delete(c.sessionMatch, s.ID())
		}
	}
	c.mu.Unlock()

	if !exists {
		return
	}

	c.saveResult(om, result)

	s := result.Summary
	c.logger.Info("online match ended", "match", result.MatchID, "reason", result.Reason,
		"winner", result.Winner, "score1", s.Score1, "score2", s.Score2)

	evt := MatchEndedEvent{
		MatchID: result.MatchID,
		Reason:  result.Reason,
		Winner:  result.Winner,
		Score1:  s.Score1,
		Score2:  s.Score2,
	}
	for _, sess := range om.sessions {
		sess.Send(evt)
	}
}

func (c *Coordinator) saveResult(om *OnlineMatch, result MatchResult) {
	if c.saver == nil {
		return
	}

	r := storage.FromSummary(result.Summary, ModeOnline, om.sessions[0].Name(), om.sessions[1].Name())
	r.MatchID = string(result.MatchID)
	r.Winner = int(result.Winner)
	r.EndReason = storage.EndCompleted
	if result.Reason != MatchEndReasonCompleted {
		r.EndReason = storage.EndLeft
	}

	if _, err := c.saver.SaveMatch(r); err != nil {
		c.logger.Warn("could not save online result", "match", result.MatchID, "err", err)
	}
}

func (c *Coordinator) handleCancelLobby(msg CancelLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[strings.ToUpper(msg.Code)]
	if !exists || lobby.Host.ID() != msg.SessionID {
		return
	}
	delete(c.lobbies, lobby.Code)
	delete(c.sessionLobby, msg.SessionID)
	c.logger.Debug("lobby cancelled", "code", lobby.Code)
}

func (c *Coordinator) handleLeaveMatch(msg LeaveMatchMsg) {
	c.mu.RLock()
	om, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if exists {
		om.PlayerDisconnected(msg.SessionID)
	}
}

func (c *Coordinator) handlePlayerInput(msg PlayerInputMsg) {
	c.mu.RLock()
	om, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if exists {
		om.SendInput(msg.Player, msg.Input)
	}
}

func (c *Coordinator) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		delete(c.lobbies, code)
		delete(c.sessionLobby, msg.SessionID)
		c.logger.Debug("lobby closed, host disconnected", "code", code)
	}

	if id, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		if om, exists := c.matches[id]; exists {
			om.PlayerDisconnected(msg.SessionID)
		}
	}
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			c.cleanupExpiredLobbies(now)
		case <-c.done:
			return
		}
	}
}

// cleanupExpiredLobbies closes lobbies older than the lobby timeout.
func (c *Coordinator) cleanupExpiredLobbies(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for code, lobby := range c.lobbies {
		if now.Sub(lobby.CreatedAt) > c.config.LobbyTimeout {
			lobby.Host.Send(LobbyErrorEvent{Message: "Lobby expired"})
			delete(c.sessionLobby, lobby.Host.ID())
			delete(c.lobbies, code)
		}
	}
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.lobbies[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a CodeLength character code from the base32
// alphabet (A-Z, 2-7).
func generateJoinCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return base32.StdEncoding.EncodeToString(b)[:CodeLength]
}

// Lobby returns a lobby by code.
func (c *Coordinator) Lobby(code string) (*Lobby, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lobbies[strings.ToUpper(code)]
	return l, ok
}

// Match returns a running match by ID.
func (c *Coordinator) Match(id MatchID) (*OnlineMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[id]
	return m, ok
}

// LobbyCount returns the number of open lobbies.
func (c *Coordinator) LobbyCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lobbies)
}

// MatchCount returns the number of running matches.
func (c *Coordinator) MatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}
