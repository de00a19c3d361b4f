package multiplayer

import (
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/match"
)

// SessionEvent represents an event sent from the coordinator to a session.
type SessionEvent interface {
	sessionEvent()
}

// LobbyCreatedEvent is sent when a lobby is successfully created.
type LobbyCreatedEvent struct {
	Code string
}

func (LobbyCreatedEvent) sessionEvent() {}

// LobbyErrorEvent is sent when a lobby operation fails.
type LobbyErrorEvent struct {
	Message string
}

func (LobbyErrorEvent) sessionEvent() {}

// MatchStartedEvent is sent to both players when the joiner arrives.
type MatchStartedEvent struct {
	MatchID  MatchID
	Code     string
	Side     PlayerID // Which paddle this session owns
	Opponent string
}

func (MatchStartedEvent) sessionEvent() {}

// MatchEndedEvent is sent when the match ends, or when the host of a
// lobby the session joined goes away.
type MatchEndedEvent struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  PlayerID // 0 if no winner
	Score1  int
	Score2  int
}

func (MatchEndedEvent) sessionEvent() {}

// SnapshotEvent carries the match state after a tick.
type SnapshotEvent struct {
	MatchID  MatchID
	Snapshot match.MatchSnapshot
}

func (SnapshotEvent) sessionEvent() {}

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateLobbyMsg requests creation of a new lobby.
type CreateLobbyMsg struct {
	SessionID SessionID
}

func (CreateLobbyMsg) coordinatorMessage() {}

// JoinLobbyMsg requests joining an existing lobby.
type JoinLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (JoinLobbyMsg) coordinatorMessage() {}

// CancelLobbyMsg requests cancellation of a hosted lobby.
type CancelLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (CancelLobbyMsg) coordinatorMessage() {}

// LeaveMatchMsg requests leaving an active match. The opponent wins.
type LeaveMatchMsg struct {
	SessionID SessionID
	MatchID   MatchID
}

func (LeaveMatchMsg) coordinatorMessage() {}

// PlayerInputMsg sends player input to a match.
type PlayerInputMsg struct {
	MatchID MatchID
	Player  PlayerID
	Input   core.InputFrame
}

func (PlayerInputMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
