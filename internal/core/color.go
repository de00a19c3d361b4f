package core

// Color is a foreground colour for a screen cell.
type Color uint8

// Palette used by the table renderer. ColorDefault keeps the terminal's own
// foreground.
const (
	ColorDefault Color = iota
	ColorWhite
	ColorGray
	ColorRed
	ColorBrightWhite
	ColorBrightYellow
	ColorBrightGreen
	ColorBrightCyan
	ColorBrightMagenta

	numColors
)

// ansiCodes holds the ANSI 256-colour code of each palette entry.
var ansiCodes = [numColors]string{
	ColorWhite:         "7",
	ColorGray:          "245",
	ColorRed:           "1",
	ColorBrightWhite:   "15",
	ColorBrightYellow:  "11",
	ColorBrightGreen:   "10",
	ColorBrightCyan:    "14",
	ColorBrightMagenta: "13",
}

// ANSI returns the colour's ANSI 256-colour code, or "" for ColorDefault
// and values outside the palette.
func (c Color) ANSI() string {
	if c >= numColors {
		return ""
	}
	return ansiCodes[c]
}

// Palette returns every colour, ColorDefault first.
func Palette() []Color {
	p := make([]Color, numColors)
	for i := range p {
		p[i] = Color(i)
	}
	return p
}
