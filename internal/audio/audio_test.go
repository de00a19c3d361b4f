package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

func sampleAt(buf []byte, frame, ch int) float64 {
	o := frame*frameBytes + ch*4
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[o:])))
}

func TestSweepShape(t *testing.T) {
	buf := Sweep(440, 880, 0.1, 0.5)

	frames := int(0.1 * SampleRate)
	if len(buf) != frames*frameBytes {
		t.Fatalf("len = %d, expected %d", len(buf), frames*frameBytes)
	}

	peak := 0.0
	for i := 0; i < frames; i++ {
		l, r := sampleAt(buf, i, 0), sampleAt(buf, i, 1)
		if l != r {
			t.Fatalf("frame %d: channels differ (%v, %v)", i, l, r)
		}
		peak = math.Max(peak, math.Abs(l))
	}

	if peak > 0.5+1e-6 {
		t.Errorf("peak %v exceeds gain", peak)
	}
	if peak < 0.1 {
		t.Errorf("peak %v, expected an audible tone", peak)
	}
	if first := sampleAt(buf, 0, 0); first != 0 {
		t.Errorf("first sample %v, expected silence at the attack start", first)
	}
}

func TestCuesAllRendered(t *testing.T) {
	cues := Cues()
	for _, s := range []Sound{SoundHit, SoundGoal, SoundWin} {
		if len(cues[s]) == 0 {
			t.Errorf("cue %d is empty", s)
		}
	}
	if len(cues[SoundHit]) >= len(cues[SoundGoal]) {
		t.Error("the hit cue should be shorter than the goal cue")
	}
}

func TestSoundReader(t *testing.T) {
	r := &soundReader{data: []byte{1, 2, 3, 4, 5}}
	p := make([]byte, 3)

	n, err := r.Read(p)
	if n != 3 || err != nil {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	n, err = r.Read(p)
	if n != 2 || err != nil {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	if _, err = r.Read(p); !errors.Is(err, io.EOF) {
		t.Errorf("Read() at end = %v, expected EOF", err)
	}
}

func TestNilPlayerIsSilent(t *testing.T) {
	var p *Player
	p.Play(SoundHit)
	p.Attach(nil)
}
