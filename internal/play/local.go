// Package play drives a match on the local machine for the terminal and
// desktop clients. The client owns the frame loop; Local steps the engine
// once per frame and forwards cues to the mixer.
package play

import (
	"log"
	"math"

	"hopskip/internal/game"
	"hopskip/internal/game/spatial"
)

// Source tags local input in the event log.
const Source = "local"

// DifficultyStep is how far one key press moves the minimum bullet time.
const DifficultyStep = 0.1

// CuePlayer receives the feedback cues of each frame.
type CuePlayer interface {
	Play(cues ...game.Cue)
}

// Local owns an engine that is stepped by the client instead of its ticker.
type Local struct {
	engine *game.Engine
	sound  CuePlayer
	aim    float64
}

// New creates a local game. sound may be nil to play silently.
func New(cfg game.EngineConfig, sound CuePlayer) *Local {
	return &Local{
		engine: game.NewEngine(cfg),
		sound:  sound,
	}
}

// Engine exposes the underlying engine.
func (l *Local) Engine() *game.Engine { return l.engine }

// Frame advances the match by dt seconds and returns the new snapshot.
func (l *Local) Frame(dt float64) *game.MatchSnapshot {
	l.engine.Step(dt)
	if cues := l.engine.DrainCues(); len(cues) > 0 && l.sound != nil {
		l.sound.Play(cues...)
	}
	return l.engine.GetSnapshot()
}

// Aim returns the current aim angle in radians.
func (l *Local) Aim() float64 { return l.aim }

// SetAim points the shadow at angle, wrapped into [-π, π]. Non-finite
// angles aim at 0.
func (l *Local) SetAim(angle float64) {
	l.aim = spatial.NormalizeAngle(spatial.SanitizeAngle(angle))
	l.engine.SetAim(l.aim)
}

// Rotate turns the aim by delta radians.
func (l *Local) Rotate(delta float64) {
	l.SetAim(l.aim + delta)
}

// AimAt points the aim along the screen offset (dx, dy) from the player.
// A zero offset keeps the current aim.
func (l *Local) AimAt(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	l.SetAim(math.Atan2(dy, dx))
}

// Teleport jumps along the current aim.
func (l *Local) Teleport() (game.TurnResult, error) {
	return l.engine.Teleport(l.aim, Source)
}

// TogglePause pauses a playing match or resumes a paused one.
func (l *Local) TogglePause() {
	if l.engine.Phase() == game.PhasePaused {
		l.engine.Resume(Source)
		return
	}
	l.engine.Pause(Source)
}

// Restart abandons the current match and starts the next.
func (l *Local) Restart() {
	id := l.engine.Restart(Source)
	log.Printf("🔄 New match %s", id)
}

// AdjustDifficulty nudges the minimum bullet time and returns the new value.
func (l *Local) AdjustDifficulty(delta float64) float64 {
	cur := l.engine.GetSnapshot().Difficulty
	return l.engine.SetDifficulty(math.Round((cur+delta)*10)/10, Source)
}
