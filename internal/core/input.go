package core

// Action represents a semantic input action, abstracted from physical key presses.
type Action int

const (
	ActionNone    Action = iota
	ActionP1Up           // Up arrow - player 1 paddle up
	ActionP1Down         // Down arrow - player 1 paddle down
	ActionP2Up           // W - player 2 paddle up
	ActionP2Down         // S - player 2 paddle down
	ActionLaunch         // Space, Enter - launch the ball
	ActionPause          // P - pause/unpause
	ActionRestart        // R - reset the match
	ActionBack           // B, Escape - back to menu
	ActionQuit           // Q, Ctrl+C - exit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionP1Up:
		return "P1Up"
	case ActionP1Down:
		return "P1Down"
	case ActionP2Up:
		return "P2Up"
	case ActionP2Down:
		return "P2Down"
	case ActionLaunch:
		return "Launch"
	case ActionPause:
		return "Pause"
	case ActionRestart:
		return "Restart"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame collects the actions triggered between two frames.
type InputFrame struct {
	// Actions maps action types to how many times they fired this frame.
	// Held keys repeat, so a count lets paddles move proportionally.
	Actions map[Action]int
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]int),
	}
}

// Set records one occurrence of an action for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]int)
	}
	f.Actions[a]++
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return f.Count(a) > 0
}

// Count returns how many times the action was triggered this frame.
func (f InputFrame) Count(a Action) int {
	if f.Actions == nil {
		return 0
	}
	return f.Actions[a]
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}
