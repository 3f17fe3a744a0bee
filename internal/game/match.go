package game

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"hopskip/internal/game/spatial"
)

// Match timing and arena defaults
const (
	DefaultBoundaryRadius = 1000.0
	DefaultEnemyCount     = 5
	CountdownDuration     = 5.0 // Seconds before play starts or resumes
	DeathCountdown        = 2.0 // Seconds of death effects before the match ends

	gridCellSize = 50.0
)

// Phase is the lifecycle stage of a match.
type Phase uint8

const (
	PhaseCountdown Phase = iota
	PhasePlaying
	PhasePaused
	PhaseDying
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseCountdown:
		return "countdown"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseDying:
		return "dying"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// MatchConfig configures a single match.
type MatchConfig struct {
	BoundaryRadius    float64
	MinimumBulletTime float64 // Difficulty in [0, 1]
	Countdown         float64 // 0 starts the match already playing
	DeathCountdown    float64
	Limits            ResourceLimits
}

// DefaultMatchConfig returns the standard arena and timings.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		BoundaryRadius: DefaultBoundaryRadius,
		Countdown:      CountdownDuration,
		DeathCountdown: DeathCountdown,
		Limits:         DefaultLimits,
	}
}

// TurnResult describes a resolved teleport.
type TurnResult struct {
	Kills int          `json:"kills"`
	From  spatial.Vec2 `json:"from"`
	To    spatial.Vec2 `json:"to"`
}

// Match is one run of the game: a player, the enemy roster, every live
// projectile and particle burst, and the clock that dilates their time.
// A Match is not safe for concurrent use; Engine serializes access.
type Match struct {
	ID string

	cfg    MatchConfig
	rng    *rand.Rand
	clock  *TimeController
	player *Player
	roster *Roster
	score  *Scoreboard
	grid   *spatial.Grid

	projectiles []*Projectile
	bursts      []*Burst
	cues        cueQueue
	shake       ScreenShake

	phase          Phase
	countdown      float64
	deathCountdown float64
	tutorial       bool
	minBulletTime  float64

	tickCount uint64
	elapsed   float64
	dropped   uint64 // Projectiles and bursts discarded at the caps
}

// NewMatch creates a match with the player at the origin and no enemies.
func NewMatch(cfg MatchConfig, rng *rand.Rand) *Match {
	if cfg.BoundaryRadius <= 0 {
		cfg.BoundaryRadius = DefaultBoundaryRadius
	}
	if cfg.Limits.MaxProjectiles <= 0 {
		cfg.Limits = DefaultLimits
	}

	m := &Match{
		ID:             uuid.NewString(),
		cfg:            cfg,
		rng:            rng,
		clock:          NewTimeController(),
		score:          NewScoreboard(),
		grid:           spatial.NewGrid(cfg.BoundaryRadius+2*MoveSpeed, gridCellSize, cfg.Limits.MaxProjectiles),
		projectiles:    make([]*Projectile, 0, cfg.Limits.MaxProjectiles),
		bursts:         make([]*Burst, 0, cfg.Limits.MaxBursts),
		countdown:      cfg.Countdown,
		deathCountdown: cfg.DeathCountdown,
		minBulletTime:  clamp01(cfg.MinimumBulletTime),
	}
	m.player = NewPlayer(spatial.Vec2{}, rng, m.addBurst)
	m.roster = NewRoster(rng, m.addProjectile, cfg.Limits.MaxEnemies)

	if m.countdown <= 0 {
		m.phase = PhasePlaying
	}
	return m
}

// SpawnDefault rings n randomized enemies around the player.
func (m *Match) SpawnDefault(n int) {
	m.tutorial = false
	m.roster.StartingConfig(n)
}

// SpawnTutorial lines up the fixed onboarding layout.
func (m *Match) SpawnTutorial() {
	m.tutorial = true
	m.roster.TutorialConfig()
}

func (m *Match) addProjectile(p *Projectile) {
	if len(m.projectiles) >= m.cfg.Limits.MaxProjectiles {
		m.dropped++
		return
	}
	m.projectiles = append(m.projectiles, p)
}

func (m *Match) addBurst(b *Burst) {
	if len(m.bursts) >= m.cfg.Limits.MaxBursts {
		m.dropped++
		return
	}
	m.bursts = append(m.bursts, b)
}

// Tick advances the match by one frame of rawDt wall seconds with the
// player aiming along aim.
func (m *Match) Tick(rawDt, aim float64) {
	if rawDt <= 0 || math.IsNaN(rawDt) || math.IsInf(rawDt, 0) {
		return
	}

	switch m.phase {
	case PhaseCountdown:
		m.tickCountdown(rawDt)
		m.player.UpdateShadow(aim)
	case PhasePlaying:
		m.tickPlaying(rawDt, aim)
	case PhaseDying:
		m.tickDying(rawDt)
	default:
		return
	}
	m.tickCount++
	m.elapsed += rawDt
}

func (m *Match) tickCountdown(raw float64) {
	m.updateBursts(raw)

	prev := m.countdown
	m.countdown -= raw
	if math.Ceil(prev) != math.Ceil(m.countdown) {
		m.cues.push(Cue{Kind: CueCountdown})
	}
	if m.countdown <= 0 {
		m.countdown = 0
		m.phase = PhasePlaying
	}
}

func (m *Match) tickPlaying(raw, aim float64) {
	m.shake.Update(m.rng, raw)

	step, entered := m.clock.Advance(raw)
	if entered {
		m.player.BulletTime = true
	}

	if step.Enemy > 0 {
		m.roster.Update(step.Enemy, m.player.Pos)
	}

	m.updateProjectiles(step.World)
	m.updateBursts(raw)

	m.grid.Reset()
	for i, p := range m.projectiles {
		m.grid.Add(uint32(i), p.Pos)
	}
	if m.player.CheckHit(m.projectiles, m.grid) {
		m.cues.push(Cue{Kind: CueHit})
		m.clock.EnterRealTime()
		m.phase = PhaseDying
		return
	}

	m.player.UpdateShadow(aim)
}

func (m *Match) tickDying(raw float64) {
	m.updateBursts(raw)
	m.player.Death.Spawn(m.rng)
	m.player.Death.Update(raw)

	m.shake.Remaining = 0
	m.shake.OffsetX = (m.rng.Float64()*2 - 1) * ShakeMagnitude
	m.shake.OffsetY = (m.rng.Float64()*2 - 1) * ShakeMagnitude

	m.deathCountdown -= raw
	if m.deathCountdown < 0 {
		m.phase = PhaseOver
	}
}

// updateProjectiles integrates every projectile and drops the expired ones
// in place.
func (m *Match) updateProjectiles(dt float64) {
	n := 0
	for _, p := range m.projectiles {
		if dt > 0 {
			p.Update(dt)
		}
		if !p.IsDead() {
			m.projectiles[n] = p
			n++
		}
	}
	for i := n; i < len(m.projectiles); i++ {
		m.projectiles[i] = nil
	}
	m.projectiles = m.projectiles[:n]
}

// updateBursts advances bursts and swap-removes the finished ones.
func (m *Match) updateBursts(dt float64) {
	for i := 0; i < len(m.bursts); {
		if m.bursts[i].Update(dt) {
			i++
			continue
		}
		last := len(m.bursts) - 1
		m.bursts[i] = m.bursts[last]
		m.bursts[last] = nil
		m.bursts = m.bursts[:last]
	}
}

// Teleport commits a jump along aim. It requires the playing phase and
// bullet time. On success the time controller and scoreboard react to the
// kill count; ErrOutOfBounds leaves the match unchanged.
func (m *Match) Teleport(aim float64) (TurnResult, error) {
	switch m.phase {
	case PhasePlaying:
	case PhaseDying, PhaseOver:
		return TurnResult{}, ErrMatchOver
	default:
		return TurnResult{}, ErrNotReady
	}
	if !m.player.BulletTime {
		return TurnResult{}, ErrNotReady
	}

	m.player.UpdateShadow(aim)
	from := m.player.Pos
	kills, err := m.player.TakeTurn(m.roster, m.cfg.BoundaryRadius)
	if err != nil {
		return TurnResult{}, err
	}

	m.cues.push(Cue{Kind: CueTurn})
	m.clock.OnTurn(kills, m.minBulletTime)
	if kills == 0 {
		m.score.ResetChain()
	} else {
		m.score.RecordKills(kills, m.minBulletTime, func(chain int) {
			m.cues.push(Cue{Kind: CueKill, Chain: chain})
		})
	}
	m.shake.Start()

	return TurnResult{Kills: kills, From: from, To: m.player.Pos}, nil
}

// Pause suspends a counting-down or playing match.
func (m *Match) Pause() bool {
	if m.phase != PhaseCountdown && m.phase != PhasePlaying {
		return false
	}
	m.phase = PhasePaused
	return true
}

// Resume restarts the countdown of a paused match.
func (m *Match) Resume() bool {
	if m.phase != PhasePaused {
		return false
	}
	m.countdown = m.cfg.Countdown
	if m.countdown <= 0 {
		m.countdown = 0
		m.phase = PhasePlaying
	} else {
		m.phase = PhaseCountdown
	}
	return true
}

// RepositionEnemies random-walks every enemy one step.
func (m *Match) RepositionEnemies() {
	m.roster.Wander()
}

// SetDifficulty sets the minimum bullet time banked by a kill, clamped to
// [0, 1].
func (m *Match) SetDifficulty(minimumBulletTime float64) {
	m.minBulletTime = clamp01(minimumBulletTime)
}

// DrainCues returns and clears the pending feedback cues.
func (m *Match) DrainCues() []Cue {
	return m.cues.drain()
}

func (m *Match) IsPlayerDead() bool {
	return m.phase == PhaseDying || m.phase == PhaseOver
}

func (m *Match) ScoreState() ScoreState     { return m.score.State() }
func (m *Match) Mode() TimeMode             { return m.clock.Mode() }
func (m *Match) Phase() Phase               { return m.phase }
func (m *Match) Tutorial() bool             { return m.tutorial }
func (m *Match) Difficulty() float64        { return m.minBulletTime }
func (m *Match) Player() *Player            { return m.player }
func (m *Match) Roster() *Roster            { return m.roster }
func (m *Match) Projectiles() []*Projectile { return m.projectiles }
func (m *Match) Bursts() []*Burst           { return m.bursts }
func (m *Match) Clock() *TimeController     { return m.clock }
func (m *Match) Shake() ScreenShake         { return m.shake }
func (m *Match) Countdown() float64         { return m.countdown }
func (m *Match) BoundaryRadius() float64    { return m.cfg.BoundaryRadius }
func (m *Match) TickCount() uint64          { return m.tickCount }
func (m *Match) Dropped() uint64            { return m.dropped }

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
