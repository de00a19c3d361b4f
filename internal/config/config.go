// Package config provides YAML-based match configuration loading and
// difficulty presets. Every constant the simulation needs (table size, ball,
// paddles, walls, physics stepping) lives here as runtime data.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// PongConfig contains all configuration for a match.
type PongConfig struct {
	Table    TableConfig    `yaml:"table"`
	Ball     BallConfig     `yaml:"ball"`
	Launch   LaunchConfig   `yaml:"launch"`
	Paddles  PaddlesConfig  `yaml:"paddles"`
	Walls    WallsConfig    `yaml:"walls"`
	Rails    RailsConfig    `yaml:"rails"`
	Serve    ServeConfig    `yaml:"serve"`
	Gameplay GameplayConfig `yaml:"gameplay"`
	Physics  PhysicsConfig  `yaml:"physics"`
	CPU      CPUConfig      `yaml:"cpu"`
}

// TableConfig is the playing area in world units, origin bottom-left.
type TableConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// BallConfig places the ball at match start and after every goal.
type BallConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

// Launch modes.
const (
	LaunchFixed  = "fixed"
	LaunchRandom = "random"
)

// LaunchConfig defines ball speed and direction policy.
type LaunchConfig struct {
	Speed     float64 `yaml:"speed"`      // World units per second
	Mode      string  `yaml:"mode"`       // "fixed" or "random"
	AngleDeg  float64 `yaml:"angle_deg"`  // Direction for fixed mode, 0 = east
	SpreadDeg float64 `yaml:"spread_deg"` // Max deviation from the horizontal in random mode
}

// PaddleStart is a paddle's fixed x and starting y.
type PaddleStart struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// PaddlesConfig defines paddle geometry and travel.
type PaddlesConfig struct {
	Width      float64     `yaml:"width"`
	Height     float64     `yaml:"height"`
	Speed      float64     `yaml:"speed"`       // Keyboard/CPU travel, world units per second
	MinY       float64     `yaml:"min_y"`       // Lowest allowed center
	MaxY       float64     `yaml:"max_y"`       // Highest allowed center
	EnglishDeg float64     `yaml:"english_deg"` // Max deflection from an off-center hit, 0 = pure reflection
	Player1    PaddleStart `yaml:"player1"`
	Player2    PaddleStart `yaml:"player2"`
}

// WallConfig is one goal wall. Scorer is the player credited when the ball
// reaches it.
type WallConfig struct {
	X      float64 `yaml:"x"`
	Scorer int     `yaml:"scorer"`
}

// WallsConfig defines the east and west goal walls. Walls span the full
// table height.
type WallsConfig struct {
	Width float64    `yaml:"width"`
	East  WallConfig `yaml:"east"`
	West  WallConfig `yaml:"west"`
}

// RailsConfig defines the top and bottom rails the ball bounces off.
type RailsConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Thickness float64 `yaml:"thickness"`
}

// ServeConfig controls what happens after a goal.
type ServeConfig struct {
	AutoLaunchDelay float64 `yaml:"auto_launch_delay"` // Seconds, 0 = wait for LaunchBall
}

// GameplayConfig defines match length.
type GameplayConfig struct {
	WinScore int `yaml:"win_score"` // 0 = endless
}

// Physics backends.
const (
	BackendBox2D     = "box2d"
	BackendKinematic = "kinematic"
)

// Box2DMaxTravel is the furthest, in meters, Box2D lets a body move in one
// step. Faster bodies are silently slowed.
const Box2DMaxTravel = 2.0

// PhysicsConfig selects and tunes the physics engine.
type PhysicsConfig struct {
	Backend            string  `yaml:"backend"`
	Step               float64 `yaml:"step"`         // Fixed step in seconds
	MaxSubsteps        int     `yaml:"max_substeps"` // Per Update call, 0 = unlimited
	VelocityIterations int     `yaml:"velocity_iterations"`
	PositionIterations int     `yaml:"position_iterations"`
	PixelsPerMeter     float64 `yaml:"pixels_per_meter"`
}

// CPUConfig tunes the computer opponent.
type CPUConfig struct {
	Skill float64 `yaml:"skill"` // 0-1, fraction of paddle speed the CPU may use
}

// Validate checks the configuration for values the simulation cannot run with.
func (c PongConfig) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Table.Width > 0 && c.Table.Height > 0, "table size must be positive")
	check(c.Ball.Radius > 0, "ball radius must be positive, got %v", c.Ball.Radius)
	check(c.Launch.Speed > 0, "launch speed must be positive, got %v", c.Launch.Speed)
	check(c.Launch.Mode == LaunchFixed || c.Launch.Mode == LaunchRandom,
		"launch mode must be %q or %q, got %q", LaunchFixed, LaunchRandom, c.Launch.Mode)
	check(c.Paddles.Width > 0 && c.Paddles.Height > 0, "paddle size must be positive")
	check(c.Paddles.MinY <= c.Paddles.MaxY, "paddle min_y %v above max_y %v", c.Paddles.MinY, c.Paddles.MaxY)
	check(c.Walls.Width > 0, "wall width must be positive")
	check(c.Walls.East.X > c.Walls.West.X, "east wall must be right of west wall")
	check(validScorer(c.Walls.East.Scorer), "east wall scorer must be 1 or 2, got %d", c.Walls.East.Scorer)
	check(validScorer(c.Walls.West.Scorer), "west wall scorer must be 1 or 2, got %d", c.Walls.West.Scorer)
	check(!c.Rails.Enabled || c.Rails.Thickness > 0, "rail thickness must be positive")
	check(c.Serve.AutoLaunchDelay >= 0, "auto launch delay must not be negative")
	check(c.Gameplay.WinScore >= 0, "win score must not be negative")
	check(c.Physics.Step > 0, "physics step must be positive, got %v", c.Physics.Step)
	check(c.Physics.MaxSubsteps >= 0, "max substeps must not be negative")
	check(c.Physics.Backend != BackendBox2D || c.Physics.PixelsPerMeter > 0,
		"pixels_per_meter must be positive for the box2d backend")
	if c.Physics.Backend == BackendBox2D && c.Physics.PixelsPerMeter > 0 {
		travel := c.Launch.Speed * c.Physics.Step / c.Physics.PixelsPerMeter
		check(travel < Box2DMaxTravel,
			"launch speed %v moves %.2fm per step, box2d caps travel at %vm", c.Launch.Speed, travel, Box2DMaxTravel)
	}
	check(c.CPU.Skill >= 0 && c.CPU.Skill <= 1, "cpu skill must be within [0, 1], got %v", c.CPU.Skill)

	return errors.Join(errs...)
}

func validScorer(p int) bool {
	return p == 1 || p == 2
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParsePreset validates a preset name. Empty means no preset.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "", DifficultyEasy, DifficultyNormal, DifficultyHard:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal or hard)", s)
	}
}

// ApplyPreset scales ball speed and CPU skill for a difficulty preset.
func ApplyPreset(cfg *PongConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Launch.Speed *= 0.75
		cfg.CPU.Skill = 0.5
	case DifficultyHard:
		cfg.Launch.Speed *= 1.5
		cfg.CPU.Skill = 0.9
	}
}
