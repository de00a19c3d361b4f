// Package tui runs Pong matches in the terminal through Bubble Tea, locally
// or over SSH. It owns the frame loop, key bindings, the mode picker and the
// results browser.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxFrameSeconds caps the time credited to one frame, so a stalled
// terminal or a suspended process does not fast-forward the match.
const maxFrameSeconds = 0.25

// TickMsg is sent to trigger a frame.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// frameElapsed returns the seconds between two tick timestamps. The first
// frame has no predecessor and counts as zero.
func frameElapsed(prev, now time.Time) float64 {
	if prev.IsZero() || now.Before(prev) {
		return 0
	}
	return min(now.Sub(prev).Seconds(), maxFrameSeconds)
}
