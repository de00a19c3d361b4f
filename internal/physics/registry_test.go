package physics

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-pong/internal/core"
)

type stubEngine struct{ name string }

func (s *stubEngine) Name() string                       { return s.name }
func (s *stubEngine) CreateStaticBody(BodyDef) BodyID    { return 0 }
func (s *stubEngine) CreateKinematicBody(BodyDef) BodyID { return 0 }
func (s *stubEngine) CreateDynamicBody(BodyDef) BodyID   { return 0 }
func (s *stubEngine) Step(float64)                       {}
func (s *stubEngine) Position(BodyID) core.Vec2          { return core.Vec2{} }
func (s *stubEngine) SetPosition(BodyID, core.Vec2)      {}
func (s *stubEngine) Velocity(BodyID) core.Vec2          { return core.Vec2{} }
func (s *stubEngine) SetVelocity(BodyID, core.Vec2)      {}
func (s *stubEngine) SetContactListener(ContactListener) {}

func TestRegistry(t *testing.T) {
	var got Settings
	Register("stub-registry-test", func(s Settings) Engine {
		got = s
		return &stubEngine{name: "stub-registry-test"}
	})

	if !Exists("stub-registry-test") {
		t.Fatal("registered backend should exist")
	}

	found := false
	for _, name := range List() {
		if name == "stub-registry-test" {
			found = true
		}
	}
	if !found {
		t.Error("List() should include the registered backend")
	}

	want := Settings{VelocityIterations: 4, PositionIterations: 2, PixelsPerMeter: 50}
	e, err := Create("stub-registry-test", want)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if e.Name() != "stub-registry-test" {
		t.Errorf("Name() = %q", e.Name())
	}
	if got != want {
		t.Errorf("factory received %+v, expected %+v", got, want)
	}
}

func TestRegistryUnknownBackend(t *testing.T) {
	_, err := Create("no-such-engine", DefaultSettings())
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Create() error = %v, expected ErrUnknownBackend", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("stub-duplicate", func(Settings) Engine { return &stubEngine{} })

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("stub-duplicate", func(Settings) Engine { return &stubEngine{} })
}

func TestContactEventOther(t *testing.T) {
	e := ContactEvent{A: 1, B: 4, Begin: true}

	if e.Other(1) != 4 || e.Other(4) != 1 {
		t.Error("Other() should return the paired body")
	}
	if e.Other(2) != NoBody {
		t.Error("Other() of an uninvolved body should be NoBody")
	}
	if !e.Involves(4) || e.Involves(3) {
		t.Error("Involves() mismatch")
	}
}
