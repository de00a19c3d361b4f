// Package physics defines the narrow rigid-body interface the match
// simulation is written against. Backends live in sub-packages and register
// themselves by name in init(), so any 2D engine or a hand-rolled collision
// routine can be swapped in without touching match logic.
//
// Engines only detect overlaps. Bodies never push each other apart; the
// caller receives contact events and decides how to respond.
package physics

import (
	"github.com/vovakirdan/tui-pong/internal/core"
)

// BodyID identifies a body within one engine. IDs are assigned in creation
// order starting at 0.
type BodyID int

// NoBody is returned by lookups that find nothing.
const NoBody BodyID = -1

// BodyKind describes how a body moves.
type BodyKind int

const (
	// Static bodies never move.
	Static BodyKind = iota
	// Kinematic bodies move only when the caller sets their position or velocity.
	Kinematic
	// Dynamic bodies are integrated from their velocity every step.
	Dynamic
)

// String returns the kind's name.
func (k BodyKind) String() string {
	switch k {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// ShapeKind selects the collision shape of a body.
type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
)

// Shape is a circle (Radius) or an axis-aligned box (Width x Height) centered
// on the body position.
type Shape struct {
	Kind   ShapeKind
	Radius float64
	Width  float64
	Height float64
}

// Circle returns a circle shape.
func Circle(radius float64) Shape {
	return Shape{Kind: ShapeCircle, Radius: radius}
}

// Rectangle returns a box shape with full width and height.
func Rectangle(w, h float64) Shape {
	return Shape{Kind: ShapeBox, Width: w, Height: h}
}

// BodyDef describes a body to create.
type BodyDef struct {
	Position core.Vec2
	Shape    Shape
}

// ContactEvent reports that two bodies started (Begin) or stopped touching.
// A is always the body with the lower ID.
type ContactEvent struct {
	A, B  BodyID
	Begin bool
}

// Involves reports whether id is one of the two bodies.
func (e ContactEvent) Involves(id BodyID) bool {
	return e.A == id || e.B == id
}

// Other returns the body paired with id, or NoBody if id is not involved.
func (e ContactEvent) Other(id BodyID) BodyID {
	switch id {
	case e.A:
		return e.B
	case e.B:
		return e.A
	default:
		return NoBody
	}
}

// ContactListener receives contact events while an engine steps. Listeners
// must not call back into the engine.
type ContactListener func(ContactEvent)

// Engine is a 2D rigid-body world without gravity.
type Engine interface {
	// Name returns the backend name the engine was registered under.
	Name() string

	CreateStaticBody(def BodyDef) BodyID
	CreateKinematicBody(def BodyDef) BodyID
	CreateDynamicBody(def BodyDef) BodyID

	// Step advances the world by dt seconds. Callers are expected to pass
	// a constant dt.
	Step(dt float64)

	Position(id BodyID) core.Vec2
	SetPosition(id BodyID, p core.Vec2)
	Velocity(id BodyID) core.Vec2
	SetVelocity(id BodyID, v core.Vec2)

	// SetContactListener replaces the contact listener. nil disables events.
	SetContactListener(l ContactListener)
}

// Settings tunes a backend. Backends ignore fields they have no use for.
type Settings struct {
	VelocityIterations int
	PositionIterations int
	// PixelsPerMeter converts world units to engine meters for backends
	// that assume meter-scale objects.
	PixelsPerMeter float64
}

// DefaultSettings returns settings suitable for an 800x600 table.
func DefaultSettings() Settings {
	return Settings{
		VelocityIterations: 8,
		PositionIterations: 3,
		PixelsPerMeter:     100,
	}
}
