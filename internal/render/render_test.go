package render

import (
	"strings"
	"testing"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/match"
	_ "github.com/vovakirdan/tui-pong/internal/physics/kinematic"
)

func testSnapshot(t *testing.T) match.MatchSnapshot {
	t.Helper()
	cfg := config.Default()
	cfg.Physics.Backend = "kinematic"
	m, err := match.New(cfg, match.WithSeed(1))
	if err != nil {
		t.Fatalf("match.New() failed: %v", err)
	}
	return m.GetObjectPositions()
}

func TestViewportProjection(t *testing.T) {
	vp := NewViewport(80, 24, 800, 600)

	tests := []struct {
		name     string
		x, y     float64
		col, row int
	}{
		{"centre", 400, 300, 40, 12},
		{"bottom-left corner", 0, 0, 1, 21},
		{"top-right corner", 800, 600, 78, 2},
		{"outside clamps", -100, 900, 1, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := vp.Col(tc.x); got != tc.col {
				t.Errorf("Col(%v) = %d, expected %d", tc.x, got, tc.col)
			}
			if got := vp.Row(tc.y); got != tc.row {
				t.Errorf("Row(%v) = %d, expected %d", tc.y, got, tc.row)
			}
		})
	}
}

func TestDrawPlacesBallAndPaddles(t *testing.T) {
	snap := testSnapshot(t)
	screen := core.NewScreen(80, 24)

	Draw(screen, Frame{Snapshot: snap})

	ball := GlyphOf(ElemBall)
	if got := screen.GetCell(40, 12); got.Rune != ball.Rune || got.Color != ball.Color {
		t.Errorf("cell (40, 12) = %+v, expected the ball", got)
	}

	// Player 1 paddle spans y 225..375 at x=750
	p1 := GlyphOf(ElemPaddle1)
	for row := 9; row <= 14; row++ {
		if got := screen.GetCell(74, row); got != (core.Cell{Rune: p1.Rune, Color: p1.Color}) {
			t.Errorf("cell (74, %d) = %+v, expected player 1 paddle", row, got)
		}
	}
	if screen.Get(74, 8) == p1.Rune || screen.Get(74, 15) == p1.Rune {
		t.Error("paddle drawn beyond its extent")
	}

	// Player 2 paddle at x=50
	if got := screen.GetCell(5, 12); got.Color != GlyphOf(ElemPaddle2).Color {
		t.Errorf("cell (5, 12) = %+v, expected player 2 paddle", got)
	}
}

func TestDrawBallAheadByLag(t *testing.T) {
	snap := testSnapshot(t)
	snap.State = match.InPlay
	snap.Ball.Velocity = core.V(3000, 0)
	snap.Lag = 0.01
	screen := core.NewScreen(80, 24)

	Draw(screen, Frame{Snapshot: snap})

	vp := NewViewport(80, 24, snap.TableWidth, snap.TableHeight)
	col, row := vp.Col(430), vp.Row(300)
	if col == vp.Col(400) {
		t.Fatalf("lag too small to move the ball a column")
	}
	if got := screen.Get(col, row); got != GlyphOf(ElemBall).Rune {
		t.Errorf("cell (%d, %d) = %q, expected the ball drawn 30 units ahead", col, row, got)
	}
	if got := screen.Get(vp.Col(400), row); got == GlyphOf(ElemBall).Rune {
		t.Error("ball drawn at its last simulated position")
	}
}

func TestDrawHUDAndStatus(t *testing.T) {
	snap := testSnapshot(t)
	snap.Score1 = 3
	snap.Score2 = 7
	screen := core.NewScreen(80, 24)

	Draw(screen, Frame{Snapshot: snap, Labels: [2]string{"YOU", "CPU"}})

	hud := screen.Row(0)
	if !strings.Contains(hud, "7  :  3") {
		t.Errorf("HUD %q should show player 2's score first", hud)
	}
	if !strings.HasPrefix(strings.TrimSpace(hud), "CPU") || !strings.HasSuffix(strings.TrimSpace(hud), "YOU") {
		t.Errorf("HUD %q should label west CPU and east YOU", hud)
	}
	if status := screen.Row(23); !strings.Contains(status, "serve") {
		t.Errorf("status %q should prompt to serve", status)
	}

	Draw(screen, Frame{Snapshot: snap, Status: "custom status"})
	if status := screen.Row(23); !strings.Contains(status, "custom status") {
		t.Errorf("status %q should use the override", status)
	}
}

func TestDrawBanners(t *testing.T) {
	snap := testSnapshot(t)
	screen := core.NewScreen(80, 24)

	Draw(screen, Frame{Snapshot: snap, Paused: true})
	if !strings.Contains(screen.String(), "PAUSED") {
		t.Error("paused frame should show PAUSED")
	}

	snap.State = match.Over
	snap.Winner = core.Player2
	Draw(screen, Frame{Snapshot: snap, Labels: [2]string{"YOU", "CPU"}})
	out := screen.String()
	if !strings.Contains(out, "CPU WINS!") {
		t.Error("finished match should name the winner")
	}
	if strings.ContainsRune(out, GlyphOf(ElemBall).Rune) {
		t.Error("ball should be hidden once the match is over")
	}
	if !strings.Contains(out, "R to restart") {
		t.Error("finished match should offer a restart")
	}

	Draw(screen, Frame{Snapshot: snap, OverHint: "ESC for menu"})
	if out := screen.String(); !strings.Contains(out, "ESC for menu") || strings.Contains(out, "R to restart") {
		t.Errorf("banner should carry the override hint, got %q", out)
	}
}

func TestDrawTooSmall(t *testing.T) {
	screen := core.NewScreen(19, 4)
	Draw(screen, Frame{Snapshot: testSnapshot(t)})

	if !strings.Contains(screen.String(), "too small") {
		t.Errorf("expected a size warning, got %q", screen.String())
	}
}

func TestGlyphTable(t *testing.T) {
	if GlyphOf(Element(99)).Rune != '?' {
		t.Error("unknown elements should fall back to '?'")
	}
	if PaddleElement(core.Player2) != ElemPaddle2 || PaddleElement(core.Player1) != ElemPaddle1 {
		t.Error("PaddleElement mismatch")
	}
	for e := ElemBall; e <= ElemBanner; e++ {
		if GlyphOf(e).Rune == '?' {
			t.Errorf("element %d has no glyph", e)
		}
	}
}
