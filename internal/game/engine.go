package game

import (
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"hopskip/internal/game/spatial"
)

// MaxDeltaTime clamps the measured frame time so a stalled ticker does not
// turn into one giant simulation step.
const MaxDeltaTime = 0.06

// Teleport outcomes reported to observers and the event log
const (
	OutcomeKill     = "kill"
	OutcomeMiss     = "miss"
	OutcomeInvalid  = "invalid"
	OutcomeNotReady = "not_ready"
	OutcomeOver     = "over"
)

// EngineConfig configures the threaded host.
type EngineConfig struct {
	TickRate int
	Session  SessionConfig
	Seed     int64 // 0 seeds from the clock
}

// TickStats is reported to the tick observer after every tick.
type TickStats struct {
	Duration    time.Duration
	Delta       float64
	Projectiles int
	Enemies     int
	Bursts      int
	Phase       Phase
	Mode        TimeMode
}

// Engine owns a Session and steps its current match on a ticker. All
// access to the simulation goes through the engine's lock; readers that
// only need state use GetSnapshot.
type Engine struct {
	mu      sync.RWMutex
	session *Session
	aim     float64

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	lastTick time.Time

	// Cues waiting for a client to drain them
	pendingCues []Cue

	snapshots *SnapshotStore

	// Event sourcing for debugging
	eventLog *EventLog

	rng     *rand.Rand
	rngSeed int64

	onTick     func(TickStats)
	onTeleport func(outcome string)
}

// NewEngine creates an engine with its first match ready.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.Session.Match.Limits.MaxProjectiles <= 0 {
		cfg.Session.Match.Limits = DefaultLimits
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	e := &Engine{
		session:   NewSession(cfg.Session, rng),
		tickRate:  cfg.TickRate,
		stopChan:  make(chan struct{}),
		snapshots: NewSnapshotStore(cfg.Session.Match.Limits),
		eventLog:  NewEventLog(),
		rng:       rng,
		rngSeed:   seed,
	}
	e.emitMatchStart("")
	e.produceSnapshot()
	return e
}

// Start begins the game loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.lastTick = time.Now()
	e.mu.Unlock()

	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))

	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.tick()
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("🎮 Game engine started at %d TPS (seed %d)", e.tickRate, e.rngSeed)
}

// Stop stops the game loop
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 Game engine stopped")
}

// IsRunning reports whether the loop is active.
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// tick measures wall time since the previous tick and steps the match.
func (e *Engine) tick() {
	now := time.Now()
	e.mu.Lock()
	dt := now.Sub(e.lastTick).Seconds()
	e.lastTick = now
	e.mu.Unlock()

	e.Step(dt)
}

// Step advances the current match by dt seconds, clamped to MaxDeltaTime.
func (e *Engine) Step(dt float64) {
	if dt > MaxDeltaTime {
		dt = MaxDeltaTime
	}

	e.mu.Lock()
	start := time.Now()

	m := e.session.Match()
	before := m.Phase()
	ended := e.session.Tick(dt, e.aim)
	after := m.Phase()

	if before == PhasePlaying && after == PhaseDying {
		p := m.Player()
		score := m.ScoreState().Score
		e.eventLog.EmitSimple(EventTypeDeath, m.TickCount(), m.ID, "",
			DeathPayload{X: p.Pos.X, Y: p.Pos.Y, Score: score})
		log.Printf("💀 Player hit at (%.0f, %.0f) with %.0f points", p.Pos.X, p.Pos.Y, score)
	}
	if ended {
		st := e.session.ScoreState()
		e.eventLog.EmitSimple(EventTypeMatchOver, m.TickCount(), m.ID, "",
			MatchOverPayload{Score: st.Score, Highscore: st.Highscore, Tutorial: m.Tutorial(), Ticks: m.TickCount()})
		log.Printf("🏁 Match %s over: score %.0f, highscore %.0f", shortID(m.ID), st.Score, st.Highscore)
	}

	e.collectCues(m)
	e.produceSnapshot()

	stats := TickStats{
		Duration:    time.Since(start),
		Delta:       dt,
		Projectiles: len(m.Projectiles()),
		Enemies:     m.Roster().Len(),
		Bursts:      len(m.Bursts()),
		Phase:       m.Phase(),
		Mode:        m.Mode(),
	}
	observer := e.onTick
	e.mu.Unlock()

	if observer != nil {
		observer(stats)
	}
}

func (e *Engine) collectCues(m *Match) {
	e.pendingCues = append(e.pendingCues, m.DrainCues()...)
	if over := len(e.pendingCues) - maxPendingCues; over > 0 {
		e.pendingCues = append(e.pendingCues[:0], e.pendingCues[over:]...)
	}
}

// SetAim stores the aim angle used by subsequent ticks.
func (e *Engine) SetAim(angle float64) {
	e.mu.Lock()
	e.aim = spatial.SanitizeAngle(angle)
	e.mu.Unlock()
}

// Aim returns the stored aim angle.
func (e *Engine) Aim() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.aim
}

// Teleport aims and jumps in one step. source identifies the client for
// event rate limiting.
func (e *Engine) Teleport(angle float64, source string) (TurnResult, error) {
	angle = spatial.SanitizeAngle(angle)
	e.mu.Lock()
	e.aim = angle
	m := e.session.Match()
	scoreBefore := m.ScoreState()
	res, err := m.Teleport(angle)

	outcome := teleportOutcome(res, err)
	payload := TeleportPayload{
		Angle:   angle,
		FromX:   res.From.X,
		FromY:   res.From.Y,
		ToX:     res.To.X,
		ToY:     res.To.Y,
		Kills:   res.Kills,
		Outcome: outcome,
	}
	e.eventLog.EmitSimple(EventTypeTeleport, m.TickCount(), m.ID, source, payload)

	if err == nil && res.Kills > 0 {
		chain := scoreBefore.KillChain
		after := m.ScoreState()
		for i := 0; i < res.Kills; i++ {
			e.eventLog.EmitSimple(EventTypeKill, m.TickCount(), m.ID, source, KillPayload{Chain: chain, Score: after.Score})
			if chain < MaxKillChain {
				chain++
			}
		}
	}
	if err == nil {
		e.collectCues(m)
		e.produceSnapshot()
	}
	observer := e.onTeleport
	e.mu.Unlock()

	if observer != nil {
		observer(outcome)
	}
	return res, err
}

func teleportOutcome(res TurnResult, err error) string {
	switch {
	case err == nil && res.Kills > 0:
		return OutcomeKill
	case err == nil:
		return OutcomeMiss
	case errors.Is(err, ErrOutOfBounds):
		return OutcomeInvalid
	case errors.Is(err, ErrMatchOver):
		return OutcomeOver
	default:
		return OutcomeNotReady
	}
}

// SetDifficulty sets the minimum bullet time for this and later matches
// and returns the clamped value.
func (e *Engine) SetDifficulty(minimumBulletTime float64, source string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := e.session.SetDifficulty(minimumBulletTime)
	m := e.session.Match()
	e.eventLog.EmitSimple(EventTypeDifficulty, m.TickCount(), m.ID, source, DifficultyPayload{MinimumBulletTime: v})
	log.Printf("🎚️ Minimum bullet time set to %.2f", v)
	e.produceSnapshot()
	return v
}

// Pause suspends the current match. Returns false if it cannot be paused.
func (e *Engine) Pause(source string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.session.Match()
	if !m.Pause() {
		return false
	}
	e.eventLog.EmitSimple(EventTypePause, m.TickCount(), m.ID, source, nil)
	e.produceSnapshot()
	return true
}

// Resume restarts the countdown of a paused match.
func (e *Engine) Resume(source string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.session.Match()
	if !m.Resume() {
		return false
	}
	e.eventLog.EmitSimple(EventTypeResume, m.TickCount(), m.ID, source, nil)
	e.produceSnapshot()
	return true
}

// Restart replaces the current match and returns the new match ID.
func (e *Engine) Restart(source string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.session.Restart()
	e.pendingCues = e.pendingCues[:0]
	e.emitMatchStart(source)
	e.produceSnapshot()
	return m.ID
}

// RepositionEnemies random-walks every enemy and returns how many moved.
func (e *Engine) RepositionEnemies() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.session.Match()
	m.RepositionEnemies()
	e.produceSnapshot()
	return m.Roster().Len()
}

func (e *Engine) emitMatchStart(source string) {
	m := e.session.Match()
	e.eventLog.EmitSimple(EventTypeMatchStart, 0, m.ID, source, MatchStartPayload{
		Tutorial:          m.Tutorial(),
		Enemies:           m.Roster().Len(),
		MinimumBulletTime: m.Difficulty(),
	})
	kind := "default"
	if m.Tutorial() {
		kind = "tutorial"
	}
	log.Printf("🆕 Match %s started (%s, %d enemies)", shortID(m.ID), kind, m.Roster().Len())
}

// ScoreState returns the current score with the session highscore.
func (e *Engine) ScoreState() ScoreState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.ScoreState()
}

// Phase returns the current match phase.
func (e *Engine) Phase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.Match().Phase()
}

// DrainCues hands the pending cues to a single consumer.
func (e *Engine) DrainCues() []Cue {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pendingCues) == 0 {
		return nil
	}
	out := make([]Cue, len(e.pendingCues))
	copy(out, e.pendingCues)
	e.pendingCues = e.pendingCues[:0]
	return out
}

// SetTickObserver registers a callback run after every tick, outside the lock.
func (e *Engine) SetTickObserver(fn func(TickStats)) {
	e.mu.Lock()
	e.onTick = fn
	e.mu.Unlock()
}

// SetTeleportObserver registers a callback run after every teleport attempt.
func (e *Engine) SetTeleportObserver(fn func(outcome string)) {
	e.mu.Lock()
	e.onTeleport = fn
	e.mu.Unlock()
}

// GetSnapshot returns the latest published snapshot without locking. The
// snapshot must not be modified.
func (e *Engine) GetSnapshot() *MatchSnapshot {
	return e.snapshots.Latest()
}

// produceSnapshot publishes the current match state. Caller holds the lock.
func (e *Engine) produceSnapshot() {
	snap := e.snapshots.Next()
	e.session.Match().WriteSnapshot(snap)
	snap.Score.Highscore = e.session.Highscore()
	e.snapshots.Publish(snap)
}

// StartEventLog initializes the event logging system
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog gracefully stops the event logging system
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// GetEventLogStats returns event log counters for monitoring.
func (e *Engine) GetEventLogStats() EventLogStats {
	return e.eventLog.Stats()
}

// GetLimits returns the resource limits
func (e *Engine) GetLimits() ResourceLimits {
	return e.snapshots.Limits()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
