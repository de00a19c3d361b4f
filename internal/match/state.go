package match

import "github.com/vovakirdan/tui-pong/internal/core"

// State is the ball state of a match.
type State int

const (
	// AtRest means the ball sits at the centre with zero velocity, waiting
	// for LaunchBall.
	AtRest State = iota
	// InPlay means the ball is moving.
	InPlay
	// Over means a player reached the win score. LaunchBall and Update do
	// nothing until Reset.
	Over
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case AtRest:
		return "at rest"
	case InPlay:
		return "in play"
	case Over:
		return "over"
	default:
		return "unknown"
	}
}

// HitEvent describes one registered paddle hit.
type HitEvent struct {
	Player   core.PlayerID
	Tick     uint64
	Rally    int       // Hits in the current rally, including this one
	Position core.Vec2 // Ball position after the bounce
	Velocity core.Vec2 // Ball velocity after the bounce
}

// GoalEvent describes a goal after scores were updated.
type GoalEvent struct {
	Scorer core.PlayerID
	Score1 int
	Score2 int
	Tick   uint64
	Rally  int           // Hits in the rally that ended
	Winner core.PlayerID // NoPlayer unless the goal ended the match
}
