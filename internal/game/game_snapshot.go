package game

import (
	"sync/atomic"
	"time"
)

// ResourceLimits defines hard caps on live entities and snapshot sizes
type ResourceLimits struct {
	MaxProjectiles int // Live projectile cap; new volleys beyond it are dropped
	MaxBursts      int // Live particle burst cap
	MaxEnemies     int // Roster cap
	MaxParticles   int // Per snapshot particle limit
}

// DefaultLimits provides production-safe default limits
var DefaultLimits = ResourceLimits{
	MaxProjectiles: 2000,
	MaxBursts:      64,
	MaxEnemies:     200,
	MaxParticles:   600,
}

// ShakeSnapshot captures screen shake state
type ShakeSnapshot struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// MatchSnapshot is a complete immutable match state for rendering.
// All slices are pre-allocated and capped to prevent memory attacks.
type MatchSnapshot struct {
	Sequence   uint64    `json:"sequence"` // Monotonic sequence for ordering
	Timestamp  time.Time `json:"timestamp"`
	TickNumber uint64    `json:"tick"`

	MatchID        string  `json:"matchId"`
	Phase          string  `json:"phase"`
	Mode           string  `json:"mode"`
	Tutorial       bool    `json:"tutorial"`
	Countdown      float64 `json:"countdown"`
	BoundaryRadius float64 `json:"boundaryRadius"`
	Difficulty     float64 `json:"minimumBulletTime"`
	Banked         float64 `json:"bankedBulletTime"`

	Player      PlayerSnapshot       `json:"player"`
	Enemies     []EnemySnapshot      `json:"enemies"`
	Projectiles []ProjectileSnapshot `json:"projectiles"`
	Particles   []ParticleSnapshot   `json:"particles"`
	Shake       ShakeSnapshot        `json:"shake"`
	Score       ScoreState           `json:"score"`
}

// WriteSnapshot copies the match state into snap, respecting the
// snapshot's preallocated capacities.
func (m *Match) WriteSnapshot(snap *MatchSnapshot) {
	limits := m.cfg.Limits

	snap.TickNumber = m.tickCount
	snap.MatchID = m.ID
	snap.Phase = m.phase.String()
	snap.Mode = m.clock.Mode().String()
	snap.Tutorial = m.tutorial
	snap.Countdown = m.countdown
	snap.BoundaryRadius = m.cfg.BoundaryRadius
	snap.Difficulty = m.minBulletTime
	snap.Banked = m.clock.Spent()
	snap.Player = m.player.ToSnapshot()
	snap.Shake = ShakeSnapshot{OffsetX: m.shake.OffsetX, OffsetY: m.shake.OffsetY}
	snap.Score = m.score.State()

	for _, e := range m.roster.Enemies() {
		snap.Enemies = append(snap.Enemies, e.ToSnapshot())
	}
	for _, p := range m.projectiles {
		snap.Projectiles = append(snap.Projectiles, p.ToSnapshot())
	}

	// Death sparks first so they survive the cap
	for _, p := range m.player.Death.Particles {
		if len(snap.Particles) >= limits.MaxParticles {
			return
		}
		snap.Particles = append(snap.Particles, p.toSnapshot())
	}
	for _, b := range m.bursts {
		for _, p := range b.Particles {
			if len(snap.Particles) >= limits.MaxParticles {
				return
			}
			snap.Particles = append(snap.Particles, p.toSnapshot())
		}
	}
}

// SnapshotStore publishes immutable snapshots. Every Next returns a fresh
// snapshot sized after the last published one; a published snapshot is
// never written again, so readers may keep it as long as they like.
type SnapshotStore struct {
	limits   ResourceLimits
	latest   atomic.Pointer[MatchSnapshot]
	sequence atomic.Uint64
}

// NewSnapshotStore creates a store holding an empty snapshot.
func NewSnapshotStore(limits ResourceLimits) *SnapshotStore {
	s := &SnapshotStore{limits: limits}
	s.latest.Store(&MatchSnapshot{})
	return s
}

// Next returns an unpublished snapshot. Producer only.
func (s *SnapshotStore) Next() *MatchSnapshot {
	prev := s.latest.Load()
	return &MatchSnapshot{
		Sequence:    s.sequence.Add(1),
		Timestamp:   time.Now(),
		Enemies:     make([]EnemySnapshot, 0, len(prev.Enemies)),
		Projectiles: make([]ProjectileSnapshot, 0, len(prev.Projectiles)),
		Particles:   make([]ParticleSnapshot, 0, min(len(prev.Particles), s.limits.MaxParticles)),
	}
}

// Publish makes snap the latest snapshot. Snapshots older than the current
// one are ignored.
func (s *SnapshotStore) Publish(snap *MatchSnapshot) {
	for {
		cur := s.latest.Load()
		if cur.Sequence >= snap.Sequence && cur.Sequence != 0 {
			return
		}
		if s.latest.CompareAndSwap(cur, snap) {
			return
		}
	}
}

// Latest returns the most recently published snapshot.
func (s *SnapshotStore) Latest() *MatchSnapshot {
	return s.latest.Load()
}

func (s *SnapshotStore) Limits() ResourceLimits {
	return s.limits
}
