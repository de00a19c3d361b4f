package match

import (
	"math"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// CPU steers one paddle toward the ball. It only chases a ball that is
// coming toward its side and drifts back to the middle otherwise.
type CPU struct {
	Player core.PlayerID
	Skill  float64 // 0-1, fraction of paddle speed used
}

// NewCPU creates a CPU opponent for a player.
func NewCPU(p core.PlayerID, skill float64) *CPU {
	return &CPU{
		Player: p,
		Skill:  core.ClampF(skill, 0, 1),
	}
}

// Drive moves the CPU paddle target for elapsed seconds of play. Call it
// before Update.
func (c *CPU) Drive(m *Match, elapsed float64) {
	if elapsed <= 0 || !c.Player.Valid() || m.State() == Over {
		return
	}

	cfg := m.Config()
	paddleX := cfg.Paddles.Player1.X
	if c.Player == core.Player2 {
		paddleX = cfg.Paddles.Player2.X
	}

	ball := m.BallPosition()
	vel := m.BallVelocity()

	// Ball heading toward us: track it, otherwise return to the middle
	target := cfg.Table.Height / 2
	if (paddleX-ball.X)*vel.X > 0 {
		target = ball.Y
	}

	diff := target - m.PaddleTarget(c.Player)
	moveSpeed := cfg.Paddles.Speed * c.Skill * elapsed
	if math.Abs(diff) <= moveSpeed {
		m.MovePaddle(c.Player, diff)
		return
	}
	m.MovePaddle(c.Player, math.Copysign(moveSpeed, diff))
}
