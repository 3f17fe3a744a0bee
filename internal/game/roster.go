package game

import (
	"fmt"
	"math"
	"math/rand"

	"hopskip/internal/game/spatial"
)

// Roster constants
const (
	SpawnInterval      = 1.0   // Seconds between random spawns
	SpawnHalfExtent    = 250.0 // Random spawns land in [-250, 250]²
	StartingRingRadius = 200.0
	TutorialEnemies    = 5
)

// Roster owns the live enemies of a match.
type Roster struct {
	enemies    []*Enemy
	spawnTimer float64
	maxEnemies int // 0 means unbounded
	rng        *rand.Rand
	emit       func(*Projectile)
}

// NewRoster creates an empty roster. emit receives every projectile the
// enemies fire.
func NewRoster(rng *rand.Rand, emit func(*Projectile), maxEnemies int) *Roster {
	return &Roster{
		enemies:    make([]*Enemy, 0, 16),
		maxEnemies: maxEnemies,
		rng:        rng,
		emit:       emit,
	}
}

// Enemies returns the live enemies. The slice is owned by the roster.
func (r *Roster) Enemies() []*Enemy { return r.enemies }

// Len returns the number of live enemies.
func (r *Roster) Len() int { return len(r.enemies) }

func (r *Roster) randomArchetype() Archetype {
	return Archetype(r.rng.Intn(int(archetypeCount)))
}

// Spawn adds an enemy with a random archetype at pos. Returns false when
// the roster is full.
func (r *Roster) Spawn(pos spatial.Vec2) bool {
	return r.SpawnKind(pos, r.randomArchetype())
}

// SpawnKind adds an enemy of a given archetype at pos.
func (r *Roster) SpawnKind(pos spatial.Vec2, kind Archetype) bool {
	if r.maxEnemies > 0 && len(r.enemies) >= r.maxEnemies {
		return false
	}
	r.enemies = append(r.enemies, NewEnemy(pos, kind))
	return true
}

// SpawnRandom adds an enemy somewhere in the spawn square.
func (r *Roster) SpawnRandom() bool {
	pos := spatial.Vec2{
		X: (r.rng.Float64()*2 - 1) * SpawnHalfExtent,
		Y: (r.rng.Float64()*2 - 1) * SpawnHalfExtent,
	}
	return r.Spawn(pos)
}

// StartingConfig places n enemies evenly on a ring around the origin.
func (r *Roster) StartingConfig(n int) {
	if n <= 0 {
		return
	}
	step := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		r.Spawn(spatial.Polar(StartingRingRadius, step*float64(i)))
	}
}

// TutorialConfig lines five enemies up along the positive x axis.
func (r *Roster) TutorialConfig() {
	for i := 0; i < TutorialEnemies; i++ {
		r.Spawn(spatial.Vec2{X: 100 + 150*float64(i)})
	}
}

// Update advances every enemy toward its next volley and runs the spawn
// timer.
func (r *Roster) Update(dt float64, target spatial.Vec2) {
	for _, e := range r.enemies {
		e.Update(dt, target, r.emit)
	}

	r.spawnTimer += dt
	if r.spawnTimer >= SpawnInterval {
		r.SpawnRandom()
		r.spawnTimer = 0
	}
}

// Kill removes the enemies at the given indices in one pass. Indices refer
// to the roster as it is before the call; duplicates are ignored.
// An out-of-range index is a caller bug and panics.
func (r *Roster) Kill(indices []int) {
	if len(indices) == 0 {
		return
	}
	dead := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(r.enemies) {
			panic(fmt.Sprintf("roster: kill index %d out of range [0,%d)", idx, len(r.enemies)))
		}
		dead[idx] = struct{}{}
	}

	n := 0
	for i, e := range r.enemies {
		if _, ok := dead[i]; ok {
			continue
		}
		r.enemies[n] = e
		n++
	}
	for i := n; i < len(r.enemies); i++ {
		r.enemies[i] = nil
	}
	r.enemies = r.enemies[:n]
}

// Wander random-walks every enemy by one step.
func (r *Roster) Wander() {
	for _, e := range r.enemies {
		e.Wander(r.rng)
	}
}

// Clear drops every enemy and resets the spawn timer.
func (r *Roster) Clear() {
	for i := range r.enemies {
		r.enemies[i] = nil
	}
	r.enemies = r.enemies[:0]
	r.spawnTimer = 0
}
