package config

import (
	_ "embed"
)

//go:embed defaults/pong.yaml
var defaultPongYAML []byte

// DefaultPongConfig returns the built-in configuration. It mirrors
// defaults/pong.yaml and is used when the embedded file cannot be parsed.
func DefaultPongConfig() PongConfig {
	return PongConfig{
		Table: TableConfig{Width: 800, Height: 600},
		Ball:  BallConfig{X: 400, Y: 300, Radius: 10},
		Launch: LaunchConfig{
			Speed:     300,
			Mode:      LaunchFixed,
			AngleDeg:  0,
			SpreadDeg: 30,
		},
		Paddles: PaddlesConfig{
			Width:   10,
			Height:  150,
			Speed:   420,
			MinY:    75,
			MaxY:    525,
			Player1: PaddleStart{X: 750, Y: 300},
			Player2: PaddleStart{X: 50, Y: 300},
		},
		Walls: WallsConfig{
			Width: 20,
			East:  WallConfig{X: 790, Scorer: 2},
			West:  WallConfig{X: 10, Scorer: 1},
		},
		Rails: RailsConfig{Enabled: true, Thickness: 20},
		Physics: PhysicsConfig{
			Backend:            BackendBox2D,
			Step:               1.0 / 60.0,
			MaxSubsteps:        120,
			VelocityIterations: 8,
			PositionIterations: 3,
			PixelsPerMeter:     100,
		},
		CPU: CPUConfig{Skill: 0.7},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultPongYAML
}
