// Package render draws a match snapshot into a core.Screen. The table is
// scaled to whatever screen size the platform provides: one HUD row on top,
// the bordered table, and a status row at the bottom.
package render

import (
	"fmt"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/match"
)

// Minimum screen size the layout needs.
const (
	MinWidth  = 20
	MinHeight = 8
)

// Frame is everything drawn in one frame.
type Frame struct {
	Snapshot match.MatchSnapshot
	Labels   [2]string // Player 1, player 2; defaults to "P1" and "P2"
	Paused   bool
	Status   string // Overrides the default status line when set
	OverHint string // Replaces "R to restart" under the winner banner
}

// Viewport maps world coordinates onto the inner area of the table.
type Viewport struct {
	Left, Top     int // First inner cell
	Width, Height int // Inner size in cells
	tableW        float64
	tableH        float64
}

// NewViewport fits a table of tableW x tableH world units into a screen.
func NewViewport(screenW, screenH int, tableW, tableH float64) Viewport {
	return Viewport{
		Left:   1,
		Top:    2,
		Width:  max(screenW-2, 1),
		Height: max(screenH-4, 1),
		tableW: tableW,
		tableH: tableH,
	}
}

// Col returns the screen column of world x.
func (v Viewport) Col(x float64) int {
	c := int(x / v.tableW * float64(v.Width))
	return v.Left + core.Clamp(c, 0, v.Width-1)
}

// Row returns the screen row of world y. World y grows upward, rows grow
// downward.
func (v Viewport) Row(y float64) int {
	r := int((v.tableH - y) / v.tableH * float64(v.Height))
	return v.Top + core.Clamp(r, 0, v.Height-1)
}

// Draw renders a frame into dst, clearing it first.
func Draw(dst *core.Screen, f Frame) {
	dst.Clear()

	w, h := dst.Width(), dst.Height()
	if w < MinWidth || h < MinHeight {
		dst.DrawTextCentered(h/2, "terminal too small", GlyphOf(ElemStatus).Color)
		return
	}

	s := f.Snapshot
	vp := NewViewport(w, h, s.TableWidth, s.TableHeight)
	labels := f.Labels
	if labels[0] == "" {
		labels[0] = core.Player1.String()
	}
	if labels[1] == "" {
		labels[1] = core.Player2.String()
	}

	drawHUD(dst, s, labels)

	dst.DrawBox(core.NewRect(0, 1, w, h-2), GlyphOf(ElemBorder).Color)
	drawWalls(dst, vp, s)

	net := GlyphOf(ElemNet)
	dst.DrawVLine(vp.Col(s.TableWidth/2), vp.Top, vp.Height, net.Rune, net.Color, true)

	for _, p := range s.Paddles {
		drawPaddle(dst, vp, p)
	}

	if s.State != match.Over {
		ball := GlyphOf(ElemBall)
		at := s.BallAt()
		dst.SetColored(vp.Col(at.X), vp.Row(at.Y), ball.Rune, ball.Color)
	}

	status := f.Status
	if status == "" {
		status = defaultStatus(s)
	}
	dst.DrawTextColored(1, h-1, status, GlyphOf(ElemStatus).Color)

	switch {
	case s.State == match.Over:
		winner := labels[0]
		if s.Winner == core.Player2 {
			winner = labels[1]
		}
		hint := f.OverHint
		if hint == "" {
			hint = "R to restart"
		}
		drawBanner(dst, winner+" WINS!", fmt.Sprintf("%d - %d  |  %s", s.Score1, s.Score2, hint))
	case f.Paused:
		drawBanner(dst, "PAUSED", "P to resume")
	}
}

// drawHUD writes the scores on the top row. Player 2 guards the west wall,
// so its score is on the left.
func drawHUD(dst *core.Screen, s match.MatchSnapshot, labels [2]string) {
	c := GlyphOf(ElemScore).Color
	dst.DrawTextCentered(0, fmt.Sprintf("%d  :  %d", s.Score2, s.Score1), c)
	dst.DrawTextColored(1, 0, labels[1], GlyphOf(ElemPaddle2).Color)
	dst.DrawTextColored(dst.Width()-1-len([]rune(labels[0])), 0, labels[0], GlyphOf(ElemPaddle1).Color)
}

func drawWalls(dst *core.Screen, vp Viewport, s match.MatchSnapshot) {
	g := GlyphOf(ElemWall)
	half := s.WallWidth / 2
	for _, x := range []float64{s.WestWallX, s.EastWallX} {
		for col := vp.Col(x - half); col <= vp.Col(x+half); col++ {
			dst.DrawVLine(col, vp.Top, vp.Height, g.Rune, g.Color, false)
		}
	}
}

func drawPaddle(dst *core.Screen, vp Viewport, p match.PaddleSnapshot) {
	g := GlyphOf(PaddleElement(p.Player))
	box := p.Box()
	top := vp.Row(box.Max().Y)
	bottom := vp.Row(box.Min().Y)
	col := vp.Col(p.Position.X)
	for row := top; row <= bottom; row++ {
		dst.SetColored(col, row, g.Rune, g.Color)
	}
}

func defaultStatus(s match.MatchSnapshot) string {
	switch s.State {
	case match.AtRest:
		return "SPACE serve  ·  Q quit"
	case match.InPlay:
		return fmt.Sprintf("rally %d  ·  best %d", s.Rally, s.LongestRally)
	default:
		return "match over"
	}
}

// drawBanner draws a message box in the centre of the screen.
func drawBanner(dst *core.Screen, title, subtitle string) {
	w, h := dst.Width(), dst.Height()

	boxW := min(max(len([]rune(title)), len([]rune(subtitle)))+4, w)
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	c := GlyphOf(ElemBanner).Color
	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ', core.ColorDefault)
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH), c)
	dst.DrawTextCentered(boxY+1, title, c)
	dst.DrawTextCentered(boxY+3, subtitle, GlyphOf(ElemStatus).Color)
}
