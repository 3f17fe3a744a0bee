package audio

import (
	"encoding/binary"
	"sync"
	"time"

	"hopskip/internal/config"
	"hopskip/internal/game"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// maxPendingSounds bounds cues waiting for a free voice.
const maxPendingSounds = 32

// Mixer plays cue sounds on a bounded number of voices. Cues that arrive
// while every voice is busy wait their turn; the oldest waiting cue is
// dropped when the backlog fills up.
//
// Mixer is a beep.Streamer for the speaker and an io.Reader of 16-bit
// little-endian stereo PCM for players that pull raw bytes.
type Mixer struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	volume  float64
	voices  int
	active  []beep.Streamer
	pending []game.Cue
	scratch [][2]float64
}

// NewMixer creates a mixer from audio settings.
func NewMixer(cfg config.AudioConfig) *Mixer {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.Voices <= 0 {
		cfg.Voices = 1
	}
	return &Mixer{
		rate:   beep.SampleRate(cfg.SampleRate),
		volume: cfg.Volume,
		voices: cfg.Voices,
	}
}

// SampleRate returns the output rate.
func (m *Mixer) SampleRate() beep.SampleRate { return m.rate }

// Play queues sounds for cues in order.
func (m *Mixer) Play(cues ...game.Cue) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range cues {
		if len(m.pending) >= maxPendingSounds {
			m.pending = m.pending[1:]
		}
		m.pending = append(m.pending, c)
	}
	m.startPending()
}

// startPending moves waiting cues onto free voices. Caller holds mu.
func (m *Mixer) startPending() {
	for len(m.active) < m.voices && len(m.pending) > 0 {
		m.active = append(m.active, CueSound(m.pending[0], m.rate))
		m.pending = m.pending[1:]
	}
}

// Active returns the number of sounding voices.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Pending returns the number of cues waiting for a voice.
func (m *Mixer) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Stream mixes the active voices into samples. It never runs dry; silence
// fills the gaps between cues.
func (m *Mixer) Stream(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range samples {
		samples[i] = [2]float64{}
	}
	if cap(m.scratch) < len(samples) {
		m.scratch = make([][2]float64, len(samples))
	}
	buf := m.scratch[:len(samples)]

	alive := m.active[:0]
	for _, s := range m.active {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			samples[i][0] += buf[i][0] * m.volume
			samples[i][1] += buf[i][1] * m.volume
		}
		if ok && n == len(buf) {
			alive = append(alive, s)
		}
	}
	for i := len(alive); i < len(m.active); i++ {
		m.active[i] = nil
	}
	m.active = alive
	m.startPending()

	return len(samples), true
}

func (m *Mixer) Err() error { return nil }

// Read fills p with 16-bit little-endian stereo PCM. Mixed output is soft
// limited above ±30000 before the final clamp.
func (m *Mixer) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}
	mix := make([][2]float64, frames)
	m.Stream(mix)

	for i, f := range mix {
		for ch := 0; ch < 2; ch++ {
			binary.LittleEndian.PutUint16(p[i*4+ch*2:], uint16(pcm16(f[ch])))
		}
	}
	return frames * 4, nil
}

func pcm16(v float64) int16 {
	sample := int32(v * 32767)

	if sample > 30000 {
		sample = 30000 + (sample-30000)/4
	} else if sample < -30000 {
		sample = -30000 + (sample+30000)/4
	}

	if sample > 32767 {
		sample = 32767
	} else if sample < -32768 {
		sample = -32768
	}
	return int16(sample)
}

// StartSpeaker opens the default output device and plays m on it.
func StartSpeaker(m *Mixer) error {
	if err := speaker.Init(m.rate, m.rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(m)
	return nil
}

// CloseSpeaker stops playback started by StartSpeaker.
func CloseSpeaker() {
	speaker.Clear()
	speaker.Close()
}
