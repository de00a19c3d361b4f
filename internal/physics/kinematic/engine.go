// Package kinematic is a hand-rolled physics backend: explicit Euler
// integration of velocities plus exact circle/box overlap tracking. It has
// no solver, which is all a table of sensors needs.
package kinematic

import (
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/physics"
)

// Name is the backend name used in configuration.
const Name = "kinematic"

func init() {
	physics.Register(Name, func(physics.Settings) physics.Engine {
		return New()
	})
}

type body struct {
	kind  physics.BodyKind
	pos   core.Vec2
	vel   core.Vec2
	shape physics.Shape
}

type pair struct {
	a, b physics.BodyID
}

// Engine implements physics.Engine.
type Engine struct {
	bodies   []body
	touching map[pair]bool
	listener physics.ContactListener
}

// New creates an empty world.
func New() *Engine {
	return &Engine{
		touching: make(map[pair]bool),
	}
}

// Name returns the backend name.
func (e *Engine) Name() string {
	return Name
}

func (e *Engine) create(kind physics.BodyKind, def physics.BodyDef) physics.BodyID {
	e.bodies = append(e.bodies, body{kind: kind, pos: def.Position, shape: def.Shape})
	return physics.BodyID(len(e.bodies) - 1)
}

// CreateStaticBody adds a body that never moves.
func (e *Engine) CreateStaticBody(def physics.BodyDef) physics.BodyID {
	return e.create(physics.Static, def)
}

// CreateKinematicBody adds a body moved by the caller.
func (e *Engine) CreateKinematicBody(def physics.BodyDef) physics.BodyID {
	return e.create(physics.Kinematic, def)
}

// CreateDynamicBody adds a body integrated from its velocity.
func (e *Engine) CreateDynamicBody(def physics.BodyDef) physics.BodyID {
	return e.create(physics.Dynamic, def)
}

// Step integrates positions, then reports overlaps that began or ended.
// Only pairs with at least one dynamic body are tested.
func (e *Engine) Step(dt float64) {
	if dt <= 0 {
		return
	}

	for i := range e.bodies {
		b := &e.bodies[i]
		if b.kind == physics.Static {
			continue
		}
		b.pos = b.pos.Add(b.vel.Scale(dt))
	}

	for i := range e.bodies {
		for j := i + 1; j < len(e.bodies); j++ {
			a, b := &e.bodies[i], &e.bodies[j]
			if a.kind != physics.Dynamic && b.kind != physics.Dynamic {
				continue
			}

			key := pair{physics.BodyID(i), physics.BodyID(j)}
			now := overlaps(a, b)
			if now == e.touching[key] {
				continue
			}

			if now {
				e.touching[key] = true
			} else {
				delete(e.touching, key)
			}
			if e.listener != nil {
				e.listener(physics.ContactEvent{A: key.a, B: key.b, Begin: now})
			}
		}
	}
}

func overlaps(a, b *body) bool {
	switch {
	case a.shape.Kind == physics.ShapeCircle && b.shape.Kind == physics.ShapeCircle:
		return core.CirclesOverlap(a.pos, a.shape.Radius, b.pos, b.shape.Radius)
	case a.shape.Kind == physics.ShapeCircle:
		return core.CircleOverlapsBox(a.pos, a.shape.Radius, boxOf(b))
	case b.shape.Kind == physics.ShapeCircle:
		return core.CircleOverlapsBox(b.pos, b.shape.Radius, boxOf(a))
	default:
		return boxOf(a).Overlaps(boxOf(b))
	}
}

func boxOf(b *body) core.Box {
	return core.NewBox(b.pos, b.shape.Width, b.shape.Height)
}

func (e *Engine) valid(id physics.BodyID) bool {
	return id >= 0 && int(id) < len(e.bodies)
}

// Position returns the body center. Unknown IDs yield the zero vector.
func (e *Engine) Position(id physics.BodyID) core.Vec2 {
	if !e.valid(id) {
		return core.Vec2{}
	}
	return e.bodies[id].pos
}

// SetPosition teleports a body. Contacts are re-evaluated on the next Step.
func (e *Engine) SetPosition(id physics.BodyID, p core.Vec2) {
	if e.valid(id) {
		e.bodies[id].pos = p
	}
}

// Velocity returns the body velocity in world units per second.
func (e *Engine) Velocity(id physics.BodyID) core.Vec2 {
	if !e.valid(id) {
		return core.Vec2{}
	}
	return e.bodies[id].vel
}

// SetVelocity sets a body velocity. Static bodies ignore it.
func (e *Engine) SetVelocity(id physics.BodyID, v core.Vec2) {
	if e.valid(id) && e.bodies[id].kind != physics.Static {
		e.bodies[id].vel = v
	}
}

// SetContactListener replaces the contact listener.
func (e *Engine) SetContactListener(l physics.ContactListener) {
	e.listener = l
}
