package match

import (
	"math"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/physics"
)

// Update advances the match by elapsed seconds.
//
// Elapsed time feeds a fixed-step accumulator: the engine is stepped in
// physics.step increments, and leftover time carries over to the next call.
// Positions therefore trail the elapsed total by up to one step; the
// snapshot reports that remainder as Lag and Alpha. At most
// physics.max_substeps steps run per call; time beyond that is dropped.
// Negative, NaN and infinite values are ignored.
func (m *Match) Update(elapsed float64) {
	if elapsed < 0 || math.IsNaN(elapsed) || math.IsInf(elapsed, 0) {
		m.logger.Debug("ignoring invalid elapsed time", "elapsed", elapsed)
		return
	}
	if m.state == Over {
		return
	}

	m.applyPaddles()
	m.serve(elapsed)

	step := m.cfg.Physics.Step
	maxSteps := m.cfg.Physics.MaxSubsteps
	m.accumulator += elapsed

	steps := 0
	for m.accumulator >= step-stepEpsilon {
		if maxSteps > 0 && steps >= maxSteps {
			dropped := m.accumulator
			m.accumulator = math.Mod(m.accumulator, step)
			m.logger.Debug("dropping simulation time", "seconds", dropped-m.accumulator, "steps", steps)
			break
		}

		from := m.engine.Position(m.ball)
		m.engine.Step(step)
		m.accumulator -= step
		m.tick++
		m.simTime += step
		steps++

		m.resolveStep(from)
		m.checkBounds()

		if m.state == Over {
			m.accumulator = 0
			break
		}
	}
	if m.accumulator < 0 {
		m.accumulator = 0
	}
}

// applyPaddles moves the paddle bodies to their clamped targets.
func (m *Match) applyPaddles() {
	starts := [2]float64{m.cfg.Paddles.Player1.X, m.cfg.Paddles.Player2.X}
	for i, id := range m.paddles {
		y := m.clampPaddle(m.targets[i])
		if m.engine.Position(id) == core.V(starts[i], y) {
			continue
		}
		m.engine.SetPosition(id, core.V(starts[i], y))
	}
}

// serve counts down the auto-launch delay while the ball is at rest.
func (m *Match) serve(elapsed float64) {
	if m.state != AtRest || m.cfg.Serve.AutoLaunchDelay <= 0 {
		return
	}
	m.serveTimer -= elapsed
	if m.serveTimer <= 0 {
		m.LaunchBall()
	}
}

// collect is the engine contact listener. It only queues events involving
// the ball; they are resolved once the engine step has returned.
func (m *Match) collect(ev physics.ContactEvent) {
	if !ev.Involves(m.ball) {
		return
	}
	m.pending = append(m.pending, ev)
}

// resolveStep settles one engine step. from is the ball centre before the
// step.
//
// The ball's path is swept against the paddles and rails first, so a fast
// ball cannot pass through a paddle between two steps, and a contact that
// the engine reports a step late is still resolved where it happened. When
// the sweep bounces the ball, the begin events of the step describe a
// position the ball no longer has and are dropped.
func (m *Match) resolveStep(from core.Vec2) {
	events := m.pending
	defer func() { m.pending = events[:0] }()

	for _, ev := range events {
		if ev.Begin {
			continue
		}
		if i := m.paddleIndex(ev.Other(m.ball)); i >= 0 {
			m.touching[i] = false
		}
	}

	if m.sweep(from) {
		return
	}
	m.resolveBegins(events)
}

// resolveBegins handles begin events in precedence order: paddles, goal
// walls, rails. A goal discards whatever else the step reported.
func (m *Match) resolveBegins(events []physics.ContactEvent) {
	var wallHit *wall
	var rails []physics.BodyID
	for _, ev := range events {
		if !ev.Begin {
			continue
		}
		other := ev.Other(m.ball)
		switch m.roles[other] {
		case rolePaddle:
			m.paddleContact(m.paddleIndex(other))
		case roleWall:
			if wallHit == nil {
				if w, ok := m.wallFor(other); ok {
					wallHit = &w
				}
			}
		case roleRail:
			rails = append(rails, other)
		}
	}

	if wallHit != nil {
		if m.state == InPlay {
			m.goal(wallHit.scorer)
		}
		return
	}

	for _, id := range rails {
		m.bounce(m.boxOf(id))
	}
}

// sweep moves the ball back to the first paddle or rail its path entered
// during the last step and bounces it there. On a tie the paddle wins. It
// reports whether the ball bounced.
func (m *Match) sweep(from core.Vec2) bool {
	if m.state != InPlay {
		return false
	}
	to := m.engine.Position(m.ball)
	vel := m.engine.Velocity(m.ball)
	r := m.cfg.Ball.Radius

	best, paddle := math.Inf(1), -1
	var normal core.Vec2
	var target physics.BodyID = physics.NoBody
	consider := func(id physics.BodyID, i int) {
		t, n, ok := core.SweepBox(from, to, m.boxOf(id).Grow(r))
		if !ok || vel.Dot(n) >= 0 {
			return
		}
		if t < best {
			best, normal, target, paddle = t, n, id, i
		}
	}
	for i, id := range m.paddles {
		consider(id, i)
	}
	for _, id := range m.rails {
		consider(id, -1)
	}
	if target == physics.NoBody {
		return false
	}

	contact := from.Add(to.Sub(from).Scale(best))
	if paddle >= 0 {
		m.hitPaddle(paddle, contact, vel, normal, 0)
	} else {
		m.engine.SetPosition(m.ball, contact.Add(normal.Scale(pushOut)))
		m.engine.SetVelocity(m.ball, vel.Reflect(normal))
	}
	return true
}

// paddleContact handles the start of a ball-paddle contact reported by the
// engine. A contact produces at most one hit, and only while the ball moves
// into the paddle.
func (m *Match) paddleContact(i int) {
	if i < 0 || m.touching[i] {
		return
	}
	m.touching[i] = true
	if m.state != InPlay {
		return
	}

	box := m.boxOf(m.paddles[i])
	pos := m.engine.Position(m.ball)
	vel := m.engine.Velocity(m.ball)
	r := m.cfg.Ball.Radius

	n, depth := core.CircleBoxNormal(pos, r, box)
	if depth >= r && vel.X != 0 {
		// Centre already inside the paddle: leave through the face the ball
		// came in by.
		n = core.V(-math.Copysign(1, vel.X), 0)
		depth = box.HalfW + r - (pos.X-box.Center.X)*n.X
	}
	if vel.Dot(n) >= 0 {
		return
	}
	m.hitPaddle(i, pos, vel, n, depth)
}

// hitPaddle bounces the ball off paddle i at pos, depth inside it along n,
// and registers the hit.
func (m *Match) hitPaddle(i int, pos, vel, n core.Vec2, depth float64) {
	box := m.boxOf(m.paddles[i])

	newVel := vel.Reflect(n)
	if m.cfg.Paddles.EnglishDeg > 0 && math.Abs(n.X) > math.Abs(n.Y) {
		offset := core.ClampF((pos.Y-box.Center.Y)/box.HalfH, -1, 1)
		angle := offset * m.cfg.Paddles.EnglishDeg * math.Pi / 180
		dir := core.FromAngle(angle, vel.Len())
		newVel = core.V(math.Copysign(dir.X, n.X), dir.Y)
	}

	m.engine.SetPosition(m.ball, pos.Add(n.Scale(math.Max(depth, 0)+pushOut)))
	m.engine.SetVelocity(m.ball, newVel)
	m.RegisterHit(core.PlayerID(i + 1))
}

// bounce reflects the ball off a static box it is moving into.
func (m *Match) bounce(box core.Box) {
	if m.state != InPlay {
		return
	}
	pos := m.engine.Position(m.ball)
	vel := m.engine.Velocity(m.ball)

	n, depth := core.CircleBoxNormal(pos, m.cfg.Ball.Radius, box)
	if vel.Dot(n) >= 0 {
		return
	}
	m.engine.SetPosition(m.ball, pos.Add(n.Scale(math.Max(depth, 0)+pushOut)))
	m.engine.SetVelocity(m.ball, vel.Reflect(n))
}

// checkBounds scores a ball that left the table without a wall contact,
// which can only happen when a step carries it past a wall. A ball that
// escapes vertically is re-centred without a score.
func (m *Match) checkBounds() {
	if m.state != InPlay {
		return
	}
	pos := m.engine.Position(m.ball)
	r := m.cfg.Ball.Radius
	t := m.cfg.Table

	switch {
	case pos.X > t.Width+r:
		m.goal(m.walls[0].scorer)
	case pos.X < -r:
		m.goal(m.walls[1].scorer)
	case pos.Y > t.Height+r || pos.Y < -r:
		m.logger.Debug("dead ball", "x", pos.X, "y", pos.Y)
		m.rest()
	}
}

// RegisterHit records a paddle hit by p and notifies hit hooks. Update calls
// it exactly once per paddle contact.
func (m *Match) RegisterHit(p core.PlayerID) {
	if !p.Valid() {
		return
	}
	m.hits[p-1]++
	m.rally++
	m.longestRally = max(m.longestRally, m.rally)

	ev := HitEvent{
		Player:   p,
		Tick:     m.tick,
		Rally:    m.rally,
		Position: m.engine.Position(m.ball),
		Velocity: m.engine.Velocity(m.ball),
	}
	m.logger.Debug("hit", "player", p, "rally", m.rally, "tick", m.tick)
	for _, fn := range m.onHit {
		fn(ev)
	}
}

// goal credits scorer, puts the ball back at rest and ends the match when
// the win score is reached.
func (m *Match) goal(scorer core.PlayerID) {
	if !scorer.Valid() {
		return
	}
	m.scores[scorer-1]++
	rally := m.rally
	m.rest()

	if ws := m.cfg.Gameplay.WinScore; ws > 0 && m.scores[scorer-1] >= ws {
		m.state = Over
		m.winner = scorer
	}

	ev := GoalEvent{
		Scorer: scorer,
		Score1: m.scores[0],
		Score2: m.scores[1],
		Tick:   m.tick,
		Rally:  rally,
		Winner: m.winner,
	}
	m.logger.Info("goal", "scorer", scorer, "score", [2]int{ev.Score1, ev.Score2}, "rally", rally)
	if m.winner.Valid() {
		m.logger.Info("match over", "winner", m.winner)
	}
	for _, fn := range m.onGoal {
		fn(ev)
	}
}

// rest re-centres the ball with zero velocity.
func (m *Match) rest() {
	m.engine.SetPosition(m.ball, core.V(m.cfg.Ball.X, m.cfg.Ball.Y))
	m.engine.SetVelocity(m.ball, core.Vec2{})
	m.state = AtRest
	m.rally = 0
	m.serveTimer = m.cfg.Serve.AutoLaunchDelay
}

func (m *Match) boxOf(id physics.BodyID) core.Box {
	pos := m.engine.Position(id)
	c := m.cfg

	switch m.roles[id] {
	case rolePaddle:
		return core.NewBox(pos, c.Paddles.Width, c.Paddles.Height)
	case roleWall:
		return core.NewBox(pos, c.Walls.Width, c.Table.Height)
	case roleRail:
		return core.NewBox(pos, c.Table.Width, c.Rails.Thickness)
	default:
		return core.Box{Center: pos}
	}
}
