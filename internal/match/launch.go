package match

import (
	"math"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
)

// LaunchBall sets the ball moving at the configured launch speed. In fixed
// mode the direction is launch.angle_deg (0 = east); in random mode it
// deviates by up to launch.spread_deg and picks a side at random.
// Launching a ball that is already in play overwrites its velocity.
func (m *Match) LaunchBall() {
	if m.state == Over {
		m.logger.Debug("ignoring launch, match is over")
		return
	}

	v := m.launchVelocity()
	m.engine.SetVelocity(m.ball, v)
	m.state = InPlay
	m.serveTimer = 0

	m.logger.Debug("launch", "vx", v.X, "vy", v.Y, "tick", m.tick)
}

func (m *Match) launchVelocity() core.Vec2 {
	l := m.cfg.Launch
	deg := l.AngleDeg
	if l.Mode == config.LaunchRandom {
		deg += (m.rng.Float64()*2 - 1) * l.SpreadDeg
		if m.rng.Intn(2) == 1 {
			deg += 180
		}
	}
	return core.FromAngle(deg*math.Pi/180, l.Speed)
}
