// Package audio plays short procedural cues for paddle hits and goals
// through oto. A nil *Player is valid and silent, so callers can leave sound
// off without branching.
package audio

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"github.com/vovakirdan/tui-pong/internal/match"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
	format       = 0 // 32-bit float (oto.FormatFloat32LE)
	frameBytes   = 4 * ChannelCount
)

// Sound identifies a cue.
type Sound int

const (
	SoundHit Sound = iota
	SoundGoal
	SoundWin
)

// Player owns the oto context. Only one may exist per process.
type Player struct {
	ctx     *oto.Context
	ready   chan struct{}
	volume  float64
	samples map[Sound][]byte
}

// New opens the audio device. volume is clamped to [0, 1].
func New(volume float64) (*Player, error) {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, format)
	if err != nil {
		return nil, fmt.Errorf("audio: cannot open device: %w", err)
	}
	return &Player{
		ctx:     ctx,
		ready:   ready,
		volume:  math.Max(0, math.Min(1, volume)),
		samples: Cues(),
	}, nil
}

// Cues renders every cue once.
func Cues() map[Sound][]byte {
	return map[Sound][]byte{
		SoundHit:  Sweep(880, 660, 0.06, 0.5),
		SoundGoal: Sweep(440, 220, 0.25, 0.5),
		SoundWin:  Sweep(523, 1046, 0.6, 0.45),
	}
}

// Play starts a cue and returns immediately. Cues requested before the
// device is ready are dropped.
func (p *Player) Play(s Sound) {
	if p == nil {
		return
	}
	select {
	case <-p.ready:
	default:
		return
	}
	data, ok := p.samples[s]
	if !ok {
		return
	}

	go func() {
		player := p.ctx.NewPlayer(&soundReader{data: data})
		player.SetVolume(p.volume)
		player.Play()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		_ = player.Close()
	}()
}

// Attach plays hit and goal cues for a match.
func (p *Player) Attach(m *match.Match) {
	if p == nil {
		return
	}
	m.OnHit(func(match.HitEvent) { p.Play(SoundHit) })
	m.OnGoal(func(ev match.GoalEvent) {
		if ev.Winner.Valid() {
			p.Play(SoundWin)
			return
		}
		p.Play(SoundGoal)
	})
}

// Sweep renders a stereo float32 tone gliding from one frequency to another
// with a short attack and linear decay. gain is the peak amplitude.
func Sweep(fromHz, toHz, seconds, gain float64) []byte {
	n := int(seconds * SampleRate)
	buf := make([]byte, n*frameBytes)
	phase := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		freq := fromHz + (toHz-fromHz)*p
		phase += 2 * math.Pi * freq / SampleRate

		env := 1 - p
		if p < 0.05 {
			env = p / 0.05
		}
		putStereoF32(buf, i, math.Sin(phase)*env*gain)
	}
	return buf
}

// putStereoF32 writes a [-1,1] sample as float32 LE to both channels of frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	for ch := 0; ch < ChannelCount; ch++ {
		o := i*frameBytes + ch*4
		buf[o] = byte(v)
		buf[o+1] = byte(v >> 8)
		buf[o+2] = byte(v >> 16)
		buf[o+3] = byte(v >> 24)
	}
}

type soundReader struct {
	data []byte
	pos  int
}

func (r *soundReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
