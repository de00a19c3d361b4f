package match

import (
	"github.com/vovakirdan/tui-pong/internal/core"
)

// BallSnapshot is the ball part of a MatchSnapshot.
type BallSnapshot struct {
	Position core.Vec2
	Velocity core.Vec2
	Radius   float64
}

// PaddleSnapshot is one paddle in a MatchSnapshot.
type PaddleSnapshot struct {
	Player   core.PlayerID
	Position core.Vec2 // Centre
	Width    float64
	Height   float64
}

// Box returns the paddle's extent.
func (p PaddleSnapshot) Box() core.Box {
	return core.NewBox(p.Position, p.Width, p.Height)
}

// MatchSnapshot is a copy of everything a renderer needs for one frame.
// Changing it has no effect on the match.
type MatchSnapshot struct {
	Ball    BallSnapshot
	Paddles [2]PaddleSnapshot // Index 0 is player 1

	TableWidth  float64
	TableHeight float64
	EastWallX   float64
	WestWallX   float64
	WallWidth   float64

	Score1 int
	Score2 int
	State  State
	Winner core.PlayerID

	Tick    uint64
	SimTime float64
	Lag     float64 // Elapsed seconds not yet simulated, under one step
	Alpha   float64 // Lag as a fraction of the step, in [0, 1)

	Rally        int
	LongestRally int
	Hits         [2]int
}

// BallAt returns where the ball is after the unsimulated Lag, for drawing
// between steps. It is the simulated position unless the ball is in play.
func (s MatchSnapshot) BallAt() core.Vec2 {
	if s.State != InPlay {
		return s.Ball.Position
	}
	return s.Ball.Position.Add(s.Ball.Velocity.Scale(s.Lag))
}

// Paddle returns the snapshot of a player's paddle.
func (s MatchSnapshot) Paddle(p core.PlayerID) PaddleSnapshot {
	if !p.Valid() {
		return PaddleSnapshot{}
	}
	return s.Paddles[p-1]
}

// GetObjectPositions returns the current positions of the ball and both
// paddles together with scores and counters. It does not modify the match
// and may be called at any rate.
func (m *Match) GetObjectPositions() MatchSnapshot {
	c := m.cfg
	snap := MatchSnapshot{
		Ball: BallSnapshot{
			Position: m.engine.Position(m.ball),
			Velocity: m.engine.Velocity(m.ball),
			Radius:   c.Ball.Radius,
		},
		TableWidth:   c.Table.Width,
		TableHeight:  c.Table.Height,
		EastWallX:    c.Walls.East.X,
		WestWallX:    c.Walls.West.X,
		WallWidth:    c.Walls.Width,
		Score1:       m.scores[0],
		Score2:       m.scores[1],
		State:        m.state,
		Winner:       m.winner,
		Tick:         m.tick,
		SimTime:      m.simTime,
		Lag:          m.accumulator,
		Alpha:        m.accumulator / c.Physics.Step,
		Rally:        m.rally,
		LongestRally: m.longestRally,
		Hits:         m.hits,
	}
	for i, id := range m.paddles {
		snap.Paddles[i] = PaddleSnapshot{
			Player:   core.PlayerID(i + 1),
			Position: m.engine.Position(id),
			Width:    c.Paddles.Width,
			Height:   c.Paddles.Height,
		}
	}
	return snap
}

// BallPosition returns the ball centre.
func (m *Match) BallPosition() core.Vec2 {
	return m.engine.Position(m.ball)
}

// BallVelocity returns the ball velocity in world units per second.
func (m *Match) BallVelocity() core.Vec2 {
	return m.engine.Velocity(m.ball)
}

// Summary returns the end-of-match counters used when saving results.
func (m *Match) Summary() Summary {
	return Summary{
		Score1:       m.scores[0],
		Score2:       m.scores[1],
		Winner:       m.winner,
		Hits1:        m.hits[0],
		Hits2:        m.hits[1],
		LongestRally: m.longestRally,
		Ticks:        m.tick,
		Duration:     m.simTime,
		Backend:      m.engine.Name(),
		Seed:         m.seed,
	}
}

// Summary is a compact record of a match.
type Summary struct {
	Score1       int
	Score2       int
	Winner       core.PlayerID
	Hits1        int
	Hits2        int
	LongestRally int
	Ticks        uint64
	Duration     float64 // Simulated seconds
	Backend      string
	Seed         int64
}
