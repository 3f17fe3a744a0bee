// Package audio turns match cues into short synthesized sounds.
package audio

import (
	"math"
	"math/rand"
	"time"

	"hopskip/internal/game"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Wave selects an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveNoise
)

// killNotes rise with the kill chain (C5 E5 G5 B5 D6).
var killNotes = [game.MaxKillChain + 1]float64{523.25, 659.25, 783.99, 987.77, 1174.66}

// tone is a fixed-length oscillator with an optional linear pitch sweep.
type tone struct {
	from, to float64
	wave     Wave
	rate     beep.SampleRate
	total    int
	pos      int
	phase    float64
	rng      *rand.Rand
}

func newTone(from, to float64, d time.Duration, wave Wave, rate beep.SampleRate) *tone {
	return &tone{
		from:  from,
		to:    to,
		wave:  wave,
		rate:  rate,
		total: rate.N(d),
		rng:   rand.New(rand.NewSource(int64(from*1000) + int64(d))),
	}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if t.pos >= t.total {
			return i, i > 0
		}

		var v float64
		switch t.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * t.phase)
		case WaveSquare:
			v = 1
			if t.phase >= 0.5 {
				v = -1
			}
		case WaveNoise:
			v = t.rng.Float64()*2 - 1
		}
		samples[i] = [2]float64{v, v}

		freq := t.from + (t.to-t.from)*float64(t.pos)/float64(t.total)
		t.phase += freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// envelope fades a stream in over attack and out over release.
type envelope struct {
	s                       beep.Streamer
	attack, release, length int
	pos                     int
}

func newEnvelope(s beep.Streamer, length, attack, release time.Duration, rate beep.SampleRate) *envelope {
	return &envelope{s: s, attack: rate.N(attack), release: rate.N(release), length: rate.N(length)}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		g := 1.0
		if e.pos < e.attack {
			g = float64(e.pos) / float64(e.attack)
		}
		if left := e.length - e.pos; left < e.release {
			g = math.Max(0, float64(left)/float64(e.release))
		}
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

func shaped(from, to float64, d time.Duration, wave Wave, gain float64, rate beep.SampleRate) beep.Streamer {
	s := newEnvelope(newTone(from, to, d, wave, rate), d, 5*time.Millisecond, d/2, rate)
	return scaled(s, gain)
}

// scaled applies a linear gain through beep's logarithmic volume effect.
func scaled(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// CueSound builds the sound for a cue:
// turn is a short upward whoosh, kill a note that rises with the chain,
// hit a burst of noise and countdown a plain beep.
func CueSound(c game.Cue, rate beep.SampleRate) beep.Streamer {
	switch c.Kind {
	case game.CueTurn:
		return shaped(220, 660, 90*time.Millisecond, WaveSine, 0.5, rate)
	case game.CueKill:
		chain := c.Chain
		if chain < 0 {
			chain = 0
		}
		if chain > game.MaxKillChain {
			chain = game.MaxKillChain
		}
		n := killNotes[chain]
		return beep.Seq(
			shaped(n, n, 70*time.Millisecond, WaveSquare, 0.25, rate),
			shaped(n*1.5, n*1.5, 110*time.Millisecond, WaveSquare, 0.2, rate),
		)
	case game.CueHit:
		return beep.Mix(
			shaped(0, 0, 350*time.Millisecond, WaveNoise, 0.4, rate),
			shaped(180, 60, 350*time.Millisecond, WaveSine, 0.6, rate),
		)
	case game.CueCountdown:
		return shaped(880, 880, 100*time.Millisecond, WaveSine, 0.4, rate)
	default:
		return beep.Silence(0)
	}
}
