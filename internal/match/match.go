// Package match implements the Pong match simulation: ball, paddles, goal
// walls and scores on top of a pluggable physics engine.
//
// A Match is driven by one caller, typically a frame loop: write paddle
// targets, call Update with the elapsed time, then read GetObjectPositions
// and the scores. It is not safe for concurrent use.
package match

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/physics"
)

// pushOut is the gap left between the ball and a surface it bounced off.
const pushOut = 0.01

// stepEpsilon absorbs rounding when elapsed times are sums of the step.
const stepEpsilon = 1e-9

type role int

const (
	roleNone role = iota
	rolePaddle
	roleWall
	roleRail
)

type wall struct {
	id     physics.BodyID
	scorer core.PlayerID
}

// Match is a running Pong match.
type Match struct {
	cfg    config.PongConfig
	logger *log.Logger
	seed   int64
	rng    *rand.Rand

	engine  physics.Engine
	ball    physics.BodyID
	paddles [2]physics.BodyID
	walls   [2]wall
	rails   []physics.BodyID
	roles   map[physics.BodyID]role

	state       State
	scores      [2]int
	winner      core.PlayerID
	targets     [2]float64
	touching    [2]bool
	pending     []physics.ContactEvent
	accumulator float64
	serveTimer  float64

	tick         uint64
	simTime      float64
	hits         [2]int
	rally        int
	longestRally int

	onHit  []func(HitEvent)
	onGoal []func(GoalEvent)
}

// Option configures a Match.
type Option func(*Match)

// WithLogger sets the logger. Goals are logged at info level, hits and
// ignored input at debug level.
func WithLogger(l *log.Logger) Option {
	return func(m *Match) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithSeed seeds the random launch direction. 0 seeds from the clock.
func WithSeed(seed int64) Option {
	return func(m *Match) {
		m.seed = seed
	}
}

// New creates a match from a configuration and resets it.
func New(cfg config.PongConfig, opts ...Option) (*Match, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}
	if !physics.Exists(cfg.Physics.Backend) {
		return nil, fmt.Errorf("match: %w %q (registered: %v)",
			physics.ErrUnknownBackend, cfg.Physics.Backend, physics.List())
	}

	m := &Match{
		cfg:    cfg,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.seed == 0 {
		m.seed = time.Now().UnixNano()
	}

	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reset rebuilds the physics world and starts a new match: ball centred and
// at rest, paddles at their start positions, scores zero. Hooks survive.
func (m *Match) Reset() {
	if err := m.reset(); err != nil {
		// The backend was checked in New; keep the old world if it vanished.
		m.logger.Error("reset failed", "err", err)
	}
}

func (m *Match) reset() error {
	engine, err := physics.Create(m.cfg.Physics.Backend, physics.Settings{
		VelocityIterations: m.cfg.Physics.VelocityIterations,
		PositionIterations: m.cfg.Physics.PositionIterations,
		PixelsPerMeter:     m.cfg.Physics.PixelsPerMeter,
	})
	if err != nil {
		return fmt.Errorf("match: %w", err)
	}

	m.engine = engine
	m.rng = rand.New(rand.NewSource(m.seed))
	m.roles = make(map[physics.BodyID]role)
	m.rails = m.rails[:0]
	m.buildWorld()
	m.engine.SetContactListener(m.collect)

	m.state = AtRest
	m.scores = [2]int{}
	m.winner = core.NoPlayer
	m.touching = [2]bool{}
	m.pending = m.pending[:0]
	m.accumulator = 0
	m.serveTimer = m.cfg.Serve.AutoLaunchDelay
	m.tick = 0
	m.simTime = 0
	m.hits = [2]int{}
	m.rally = 0
	m.longestRally = 0

	m.logger.Debug("match reset", "backend", engine.Name(), "seed", m.seed)
	return nil
}

func (m *Match) buildWorld() {
	c := m.cfg
	tableH := c.Table.Height

	m.ball = m.engine.CreateDynamicBody(physics.BodyDef{
		Position: core.V(c.Ball.X, c.Ball.Y),
		Shape:    physics.Circle(c.Ball.Radius),
	})

	starts := [2]config.PaddleStart{c.Paddles.Player1, c.Paddles.Player2}
	for i, s := range starts {
		m.targets[i] = s.Y
		m.paddles[i] = m.engine.CreateKinematicBody(physics.BodyDef{
			Position: core.V(s.X, m.clampPaddle(s.Y)),
			Shape:    physics.Rectangle(c.Paddles.Width, c.Paddles.Height),
		})
		m.roles[m.paddles[i]] = rolePaddle
	}

	for i, w := range [2]config.WallConfig{c.Walls.East, c.Walls.West} {
		id := m.engine.CreateStaticBody(physics.BodyDef{
			Position: core.V(w.X, tableH/2),
			Shape:    physics.Rectangle(c.Walls.Width, tableH),
		})
		m.walls[i] = wall{id: id, scorer: core.PlayerID(w.Scorer)}
		m.roles[id] = roleWall
	}

	if c.Rails.Enabled {
		t := c.Rails.Thickness
		for _, y := range []float64{-t / 2, tableH + t/2} {
			id := m.engine.CreateStaticBody(physics.BodyDef{
				Position: core.V(c.Table.Width/2, y),
				Shape:    physics.Rectangle(c.Table.Width, t),
			})
			m.rails = append(m.rails, id)
			m.roles[id] = roleRail
		}
	}
}

// OnHit registers a hook called after every registered paddle hit.
func (m *Match) OnHit(fn func(HitEvent)) {
	m.onHit = append(m.onHit, fn)
}

// OnGoal registers a hook called after every goal.
func (m *Match) OnGoal(fn func(GoalEvent)) {
	m.onGoal = append(m.onGoal, fn)
}

// Config returns the configuration the match runs with.
func (m *Match) Config() config.PongConfig {
	return m.cfg
}

// Seed returns the seed of the launch RNG.
func (m *Match) Seed() int64 {
	return m.seed
}

// Backend returns the physics backend name.
func (m *Match) Backend() string {
	return m.engine.Name()
}

// State returns the ball state.
func (m *Match) State() State {
	return m.state
}

// Player1Score returns player 1's score.
func (m *Match) Player1Score() int {
	return m.scores[0]
}

// Player2Score returns player 2's score.
func (m *Match) Player2Score() int {
	return m.scores[1]
}

// Score returns a player's score, 0 for NoPlayer.
func (m *Match) Score(p core.PlayerID) int {
	if !p.Valid() {
		return 0
	}
	return m.scores[p-1]
}

// Winner returns the player who reached the win score, or NoPlayer.
func (m *Match) Winner() core.PlayerID {
	return m.winner
}

// Tick returns the number of physics steps taken since Reset.
func (m *Match) Tick() uint64 {
	return m.tick
}

// SimulatedTime returns the seconds of simulation stepped since Reset.
func (m *Match) SimulatedTime() float64 {
	return m.simTime
}

// SetPaddleTarget sets where a player's paddle centre should be. The value
// is clamped to the travel bounds during Update.
func (m *Match) SetPaddleTarget(p core.PlayerID, y float64) {
	if !p.Valid() {
		m.logger.Debug("ignoring paddle target", "player", p)
		return
	}
	m.targets[p-1] = y
}

// MovePaddle shifts a player's paddle target by dy. The target itself is
// kept within bounds so held keys do not wind up past the rail.
func (m *Match) MovePaddle(p core.PlayerID, dy float64) {
	if !p.Valid() {
		return
	}
	m.targets[p-1] = m.clampPaddle(m.targets[p-1] + dy)
}

// PaddleTarget returns a player's current paddle target.
func (m *Match) PaddleTarget(p core.PlayerID) float64 {
	if !p.Valid() {
		return 0
	}
	return m.targets[p-1]
}

func (m *Match) clampPaddle(y float64) float64 {
	return core.ClampF(y, m.cfg.Paddles.MinY, m.cfg.Paddles.MaxY)
}

func (m *Match) paddleIndex(id physics.BodyID) int {
	for i, p := range m.paddles {
		if p == id {
			return i
		}
	}
	return -1
}

func (m *Match) wallFor(id physics.BodyID) (wall, bool) {
	for _, w := range m.walls {
		if w.id == id {
			return w, true
		}
	}
	return wall{}, false
}
