package core

// RuntimeConfig contains settings handed to a match front end at startup.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Render frames per second (default 60)
	Seed     int64 // RNG seed for launch directions
}

// PlayerID identifies one side of a match.
type PlayerID int

const (
	NoPlayer PlayerID = iota
	Player1
	Player2
)

// String returns a short label for the player.
func (p PlayerID) String() string {
	switch p {
	case Player1:
		return "P1"
	case Player2:
		return "P2"
	default:
		return "none"
	}
}

// Valid reports whether p names one of the two players.
func (p PlayerID) Valid() bool {
	return p == Player1 || p == Player2
}

// Opponent returns the other player.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return NoPlayer
	}
}
