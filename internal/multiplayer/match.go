package multiplayer

import (
	"sync"
	"time"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/match"
)

const (
	// nudgeSeconds is the paddle travel credited to one key event, in
	// seconds at paddle speed. Terminals repeat held keys at roughly 30 Hz.
	nudgeSeconds = 1.0 / 30

	// maxTickSeconds caps the time credited to one tick after a stall.
	maxTickSeconds = 0.25
)

// MatchResult contains the outcome of a finished match.
type MatchResult struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  PlayerID
	Summary match.Summary
}

// OnlineMatch runs one head-to-head match. Its Run goroutine is the only
// code that touches the underlying match; sessions talk to it through
// SendInput and PlayerDisconnected.
type OnlineMatch struct {
	id   MatchID
	code string
	game *match.Match

	sessions [2]SessionHandle // Index 0 plays Player1

	inputs   chan playerInput
	pending  [2]core.InputFrame
	nudge    float64
	tickRate int
	lastTick time.Time
	done     chan struct{}
	doneOnce sync.Once
	leaving  chan SessionID
}

type playerInput struct {
	player PlayerID
	input  core.InputFrame
}

// NewOnlineMatch wraps game for the two sessions. p1 owns the east paddle.
func NewOnlineMatch(id MatchID, code string, game *match.Match, p1, p2 SessionHandle, tickRate int) *OnlineMatch {
	if tickRate <= 0 {
		tickRate = 60
	}
	return &OnlineMatch{
		id:       id,
		code:     code,
		game:     game,
		sessions: [2]SessionHandle{p1, p2},
		inputs:   make(chan playerInput, 64),
		pending:  [2]core.InputFrame{core.NewInputFrame(), core.NewInputFrame()},
		nudge:    game.Config().Paddles.Speed * nudgeSeconds,
		tickRate: tickRate,
		done:     make(chan struct{}),
		leaving:  make(chan SessionID, 2),
	}
}

func (m *OnlineMatch) ID() MatchID {
	return m.id
}

// Code returns the lobby code the match was created from.
func (m *OnlineMatch) Code() string {
	return m.code
}

// Session returns the session playing p.
func (m *OnlineMatch) Session(p PlayerID) SessionHandle {
	if !p.Valid() {
		return nil
	}
	return m.sessions[p-1]
}

// SendInput queues player input for the next tick. It never blocks; input
// beyond the buffer is dropped.
func (m *OnlineMatch) SendInput(player PlayerID, input core.InputFrame) {
	if !player.Valid() {
		return
	}
	select {
	case m.inputs <- playerInput{player: player, input: input}:
	default:
	}
}

// PlayerDisconnected signals that a session left the match.
func (m *OnlineMatch) PlayerDisconnected(id SessionID) {
	select {
	case m.leaving <- id:
	default:
	}
}

// Run drives the match at the tick rate until it ends, a player leaves, or
// Stop is called. onComplete is not called after Stop.
func (m *OnlineMatch) Run(onComplete func(MatchResult)) {
	defer m.Stop()

	ticker := time.NewTicker(time.Second / time.Duration(m.tickRate))
	defer ticker.Stop()

	go m.monitorSessions()

	for {
		select {
		case now := <-ticker.C:
			if result, over := m.tick(m.elapsed(now)); over {
				if onComplete != nil {
					onComplete(result)
				}
				return
			}

		case id := <-m.leaving:
			if onComplete != nil {
				onComplete(m.forfeit(id))
			}
			return

		case <-m.done:
			return
		}
	}
}

// elapsed returns the seconds since the previous tick.
func (m *OnlineMatch) elapsed(now time.Time) float64 {
	prev := m.lastTick
	m.lastTick = now
	if prev.IsZero() || now.Before(prev) {
		return 1 / float64(m.tickRate)
	}
	return min(now.Sub(prev).Seconds(), maxTickSeconds)
}

// tick applies queued input, advances the match by elapsed seconds and
// broadcasts the result.
func (m *OnlineMatch) tick(elapsed float64) (MatchResult, bool) {
	m.drainInputs()
	m.applyInputs()
	m.game.Update(elapsed)

	evt := SnapshotEvent{MatchID: m.id, Snapshot: m.game.GetObjectPositions()}
	for _, s := range m.sessions {
		s.Send(evt)
	}

	if m.game.State() != match.Over {
		return MatchResult{}, false
	}
	return MatchResult{
		MatchID: m.id,
		Reason:  MatchEndReasonCompleted,
		Winner:  m.game.Winner(),
		Summary: m.game.Summary(),
	}, true
}

// drainInputs merges everything queued since the last tick.
func (m *OnlineMatch) drainInputs() {
	for {
		select {
		case pi := <-m.inputs:
			frame := &m.pending[pi.player-1]
			for a, n := range pi.input.Actions {
				frame.Actions[a] += n
			}
		default:
			return
		}
	}
}

// applyInputs moves each paddle by its owner's keys. Either player may serve.
func (m *OnlineMatch) applyInputs() {
	for i := range m.pending {
		p := PlayerID(i + 1)
		in := &m.pending[i]
		up, down := upDown(p)
		if dy := in.Count(up) - in.Count(down); dy != 0 {
			m.game.MovePaddle(p, float64(dy)*m.nudge)
		}
		if in.Has(core.ActionLaunch) && m.game.State() == match.AtRest {
			m.game.LaunchBall()
		}
		in.Clear()
	}
}

// forfeit ends the match in favour of the player who stayed.
func (m *OnlineMatch) forfeit(id SessionID) MatchResult {
	winner := Player1
	if id == m.sessions[0].ID() {
		winner = Player2
	}
	return MatchResult{
		MatchID: m.id,
		Reason:  MatchEndReasonDisconnect,
		Winner:  winner,
		Summary: m.game.Summary(),
	}
}

func (m *OnlineMatch) monitorSessions() {
	select {
	case <-m.sessions[0].Done():
		m.PlayerDisconnected(m.sessions[0].ID())
	case <-m.sessions[1].Done():
		m.PlayerDisconnected(m.sessions[1].ID())
	case <-m.done:
	}
}

// Stop ends the match loop without a result.
func (m *OnlineMatch) Stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}
