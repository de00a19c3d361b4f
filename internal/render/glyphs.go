package render

import "github.com/vovakirdan/tui-pong/internal/core"

// Element is something the renderer draws.
type Element int

const (
	ElemBall Element = iota
	ElemPaddle1
	ElemPaddle2
	ElemNet
	ElemBorder
	ElemWall
	ElemScore
	ElemStatus
	ElemBanner
)

// Glyph is the rune and colour an element is drawn with. Elements drawn as
// text or box outlines only use the colour.
type Glyph struct {
	Rune  rune
	Color core.Color
}

// glyphs is never written after initialization; use GlyphOf.
var glyphs = [...]Glyph{
	ElemBall:    {'●', core.ColorBrightYellow},
	ElemPaddle1: {'█', core.ColorBrightCyan},
	ElemPaddle2: {'█', core.ColorBrightMagenta},
	ElemNet:     {'┊', core.ColorGray},
	ElemBorder:  {0, core.ColorWhite},
	ElemWall:    {'░', core.ColorGray},
	ElemScore:   {0, core.ColorBrightWhite},
	ElemStatus:  {0, core.ColorGray},
	ElemBanner:  {0, core.ColorBrightGreen},
}

// GlyphOf returns the glyph for an element.
func GlyphOf(e Element) Glyph {
	if e < 0 || int(e) >= len(glyphs) {
		return Glyph{'?', core.ColorDefault}
	}
	return glyphs[e]
}

// PaddleElement returns the element for a player's paddle.
func PaddleElement(p core.PlayerID) Element {
	if p == core.Player2 {
		return ElemPaddle2
	}
	return ElemPaddle1
}
