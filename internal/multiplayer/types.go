// Package multiplayer pairs SSH sessions into head-to-head Pong matches.
// A Coordinator hands out lobby codes and starts an OnlineMatch once a
// second player joins; the OnlineMatch goroutine is the only writer of its
// match and broadcasts snapshots to both sessions.
package multiplayer

import "github.com/vovakirdan/tui-pong/internal/core"

// PlayerID is an alias to core.PlayerID for convenience.
// The host plays Player1 (east paddle), the joiner Player2.
type PlayerID = core.PlayerID

// Re-export player constants for convenience.
const (
	Player1 = core.Player1
	Player2 = core.Player2
)

// ModeOnline is the mode stored with online results.
const ModeOnline = "online"

// SessionID uniquely identifies a player's session (an SSH connection).
type SessionID string

// MatchID uniquely identifies an online match.
type MatchID string

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted  MatchEndReason = iota // A player reached the win score
	MatchEndReasonDisconnect                       // Opponent disconnected or left
	MatchEndReasonCancelled                        // Server shut the match down
	MatchEndReasonHostLeft                         // Host left the lobby
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "Match completed"
	case MatchEndReasonDisconnect:
		return "Opponent disconnected"
	case MatchEndReasonCancelled:
		return "Match cancelled"
	case MatchEndReasonHostLeft:
		return "Host left"
	default:
		return "Unknown"
	}
}

// upDown returns the actions that move a player's paddle.
func upDown(p PlayerID) (up, down core.Action) {
	if p == Player2 {
		return core.ActionP2Up, core.ActionP2Down
	}
	return core.ActionP1Up, core.ActionP1Down
}

// ForSide rewrites the paddle actions of an input frame for the given side.
// Each online player steers with their own keys; the match only reads the
// actions of the paddle a player owns.
func ForSide(in core.InputFrame, side PlayerID) core.InputFrame {
	out := core.NewInputFrame()
	up, down := upDown(side)
	for a, n := range in.Actions {
		switch a {
		case core.ActionP1Up, core.ActionP2Up:
			a = up
		case core.ActionP1Down, core.ActionP2Down:
			a = down
		}
		out.Actions[a] += n
	}
	return out
}
