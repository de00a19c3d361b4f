package core

import "testing"

func TestInputFrameCounts(t *testing.T) {
	f := NewInputFrame()

	if f.Has(ActionLaunch) {
		t.Error("empty frame should not have actions")
	}

	f.Set(ActionP1Up)
	f.Set(ActionP1Up)
	f.Set(ActionLaunch)

	if got := f.Count(ActionP1Up); got != 2 {
		t.Errorf("Count(P1Up) = %d, expected 2", got)
	}
	if !f.Has(ActionLaunch) {
		t.Error("frame should have Launch")
	}

	f.Clear()
	if f.Has(ActionP1Up) || f.Has(ActionLaunch) {
		t.Error("Clear should remove all actions")
	}
}

func TestInputFrameZeroValue(t *testing.T) {
	var f InputFrame
	if f.Has(ActionQuit) {
		t.Error("zero frame should not report actions")
	}
	f.Set(ActionQuit)
	if !f.Has(ActionQuit) {
		t.Error("Set on zero frame should allocate")
	}
}

func TestPlayerID(t *testing.T) {
	if Player1.Opponent() != Player2 || Player2.Opponent() != Player1 {
		t.Error("Opponent() should swap players")
	}
	if NoPlayer.Valid() || !Player1.Valid() || !Player2.Valid() {
		t.Error("Valid() mismatch")
	}
	if Player2.String() != "P2" {
		t.Errorf("String() = %q, expected P2", Player2.String())
	}
}
