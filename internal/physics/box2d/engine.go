// Package box2d is the physics backend built on the Go port of Box2D.
//
// Every fixture is a sensor: Box2D detects overlaps and reports them through
// its contact listener, and the caller resolves the response. World units are
// divided by Settings.PixelsPerMeter on the way in so a table measured in
// pixels stays within the engine's per-step translation limit.
package box2d

import (
	b2 "github.com/ByteArena/box2d"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/physics"
)

// Name is the backend name used in configuration.
const Name = "box2d"

func init() {
	physics.Register(Name, func(s physics.Settings) physics.Engine {
		return New(s)
	})
}

// Engine implements physics.Engine on a b2.B2World.
type Engine struct {
	world    *b2.B2World
	bodies   []*b2.B2Body
	settings physics.Settings
	listener physics.ContactListener
}

// New creates a world with zero gravity.
func New(s physics.Settings) *Engine {
	def := physics.DefaultSettings()
	if s.VelocityIterations <= 0 {
		s.VelocityIterations = def.VelocityIterations
	}
	if s.PositionIterations <= 0 {
		s.PositionIterations = def.PositionIterations
	}
	if s.PixelsPerMeter <= 0 {
		s.PixelsPerMeter = def.PixelsPerMeter
	}

	world := b2.MakeB2World(b2.MakeB2Vec2(0, 0))
	e := &Engine{
		world:    &world,
		settings: s,
	}
	e.world.SetContactListener(&contactListener{engine: e})
	return e
}

// Name returns the backend name.
func (e *Engine) Name() string {
	return Name
}

func (e *Engine) toMeters(v core.Vec2) b2.B2Vec2 {
	return b2.MakeB2Vec2(v.X/e.settings.PixelsPerMeter, v.Y/e.settings.PixelsPerMeter)
}

func (e *Engine) fromMeters(v b2.B2Vec2) core.Vec2 {
	return core.V(v.X*e.settings.PixelsPerMeter, v.Y*e.settings.PixelsPerMeter)
}

func (e *Engine) create(bodyType uint8, def physics.BodyDef) physics.BodyID {
	id := physics.BodyID(len(e.bodies))

	bd := b2.MakeB2BodyDef()
	bd.Type = bodyType
	bd.Position = e.toMeters(def.Position)
	bd.FixedRotation = true
	bd.AllowSleep = false
	bd.Bullet = bodyType == b2.B2BodyType.B2_dynamicBody

	body := e.world.CreateBody(&bd)
	body.SetUserData(id)

	fd := b2.MakeB2FixtureDef()
	fd.IsSensor = true
	fd.Density = 1
	fd.Friction = 0
	fd.Restitution = 1

	ppm := e.settings.PixelsPerMeter
	switch def.Shape.Kind {
	case physics.ShapeCircle:
		circle := b2.MakeB2CircleShape()
		circle.M_radius = def.Shape.Radius / ppm
		fd.Shape = &circle
	default:
		box := b2.MakeB2PolygonShape()
		box.SetAsBox(def.Shape.Width/2/ppm, def.Shape.Height/2/ppm)
		fd.Shape = &box
	}
	body.CreateFixtureFromDef(&fd)

	e.bodies = append(e.bodies, body)
	return id
}

// CreateStaticBody adds a body that never moves.
func (e *Engine) CreateStaticBody(def physics.BodyDef) physics.BodyID {
	return e.create(b2.B2BodyType.B2_staticBody, def)
}

// CreateKinematicBody adds a body moved by the caller.
func (e *Engine) CreateKinematicBody(def physics.BodyDef) physics.BodyID {
	return e.create(b2.B2BodyType.B2_kinematicBody, def)
}

// CreateDynamicBody adds a body integrated from its velocity.
func (e *Engine) CreateDynamicBody(def physics.BodyDef) physics.BodyID {
	return e.create(b2.B2BodyType.B2_dynamicBody, def)
}

// Step advances the world. Box2D reports contacts found by the broad phase
// at the start of the following step, so events may trail the overlap by
// one step.
func (e *Engine) Step(dt float64) {
	if dt <= 0 {
		return
	}
	e.world.Step(dt, e.settings.VelocityIterations, e.settings.PositionIterations)
}

func (e *Engine) body(id physics.BodyID) *b2.B2Body {
	if id < 0 || int(id) >= len(e.bodies) {
		return nil
	}
	return e.bodies[id]
}

// Position returns the body center. Unknown IDs yield the zero vector.
func (e *Engine) Position(id physics.BodyID) core.Vec2 {
	b := e.body(id)
	if b == nil {
		return core.Vec2{}
	}
	return e.fromMeters(b.GetPosition())
}

// SetPosition teleports a body.
func (e *Engine) SetPosition(id physics.BodyID, p core.Vec2) {
	if b := e.body(id); b != nil {
		b.SetTransform(e.toMeters(p), 0)
	}
}

// Velocity returns the body velocity in world units per second.
func (e *Engine) Velocity(id physics.BodyID) core.Vec2 {
	b := e.body(id)
	if b == nil {
		return core.Vec2{}
	}
	return e.fromMeters(b.GetLinearVelocity())
}

// SetVelocity sets a body velocity. Box2D ignores it for static bodies.
func (e *Engine) SetVelocity(id physics.BodyID, v core.Vec2) {
	if b := e.body(id); b != nil {
		b.SetLinearVelocity(e.toMeters(v))
	}
}

// SetContactListener replaces the contact listener.
func (e *Engine) SetContactListener(l physics.ContactListener) {
	e.listener = l
}

// contactListener adapts b2.B2ContactListenerInterface to a
// physics.ContactListener.
type contactListener struct {
	engine *Engine
}

func (c *contactListener) BeginContact(contact b2.B2ContactInterface) {
	c.emit(contact, true)
}

func (c *contactListener) EndContact(contact b2.B2ContactInterface) {
	c.emit(contact, false)
}

func (c *contactListener) PreSolve(contact b2.B2ContactInterface, oldManifold b2.B2Manifold) {}

func (c *contactListener) PostSolve(contact b2.B2ContactInterface, impulse *b2.B2ContactImpulse) {}

func (c *contactListener) emit(contact b2.B2ContactInterface, begin bool) {
	if c.engine.listener == nil {
		return
	}

	a, okA := contact.GetFixtureA().GetBody().GetUserData().(physics.BodyID)
	b, okB := contact.GetFixtureB().GetBody().GetUserData().(physics.BodyID)
	if !okA || !okB {
		return
	}
	if b < a {
		a, b = b, a
	}

	c.engine.listener(physics.ContactEvent{A: a, B: b, Begin: begin})
}
