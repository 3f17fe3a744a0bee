package game

import (
	"math"
	"math/rand"

	"hopskip/internal/game/spatial"
)

// Particle effect constants
const (
	burstParticlesPerGroup = 5
	particleLifetime       = 0.5
	sparkMajorAxis         = 20.0
	sparkMinorAxis         = 5.0

	ShakeDuration  = 0.5 // Seconds of camera shake after a teleport
	ShakeMagnitude = 4.0 // Max offset per axis
)

// Particle is a single velocity-integrated spark.
type Particle struct {
	Pos  spatial.Vec2
	Vel  spatial.Vec2
	Life float64 // Remaining lifetime in seconds
}

func (p *Particle) update(dt float64) {
	p.Pos = p.Pos.Add(p.Vel.Scale(dt))
	p.Life -= dt
}

// compactParticles advances every particle and swap-removes the expired ones.
func compactParticles(ps []Particle, dt float64) []Particle {
	for i := 0; i < len(ps); {
		ps[i].update(dt)
		if ps[i].Life <= 0 {
			last := len(ps) - 1
			ps[i] = ps[last]
			ps = ps[:last]
			continue
		}
		i++
	}
	return ps
}

// Burst is a group of sparks thrown backwards from an anchor, opposite to
// angle. Teleports spawn one at the landing point; hits spawn one at the
// victim.
type Burst struct {
	Anchor    spatial.Vec2
	Angle     float64
	Particles []Particle
}

// NewBurst spawns groups×5 wide slow sparks and groups×5 narrow fast ones.
func NewBurst(rng *rand.Rand, anchor spatial.Vec2, angle float64, groups int) *Burst {
	if groups < 1 {
		groups = 1
	}
	angle = spatial.SanitizeAngle(angle)
	n := burstParticlesPerGroup * groups
	b := &Burst{
		Anchor:    anchor,
		Angle:     angle,
		Particles: make([]Particle, 0, 2*n),
	}

	for i := 0; i < n; i++ {
		a := angle + math.Pi + rng.Float64()*math.Pi - math.Pi/2
		dir := spatial.FromAngle(a)
		b.Particles = append(b.Particles, Particle{
			Pos:  anchor.Add(dir.Scale(sparkMajorAxis * 2 / 3)),
			Vel:  dir.Scale(50 + rng.Float64()*25),
			Life: particleLifetime,
		})
	}
	for i := 0; i < n; i++ {
		a := angle + math.Pi + rng.Float64()*math.Pi/4 - math.Pi/8
		dir := spatial.FromAngle(a)
		b.Particles = append(b.Particles, Particle{
			Pos:  anchor.Add(dir.Scale(sparkMajorAxis * 3 / 4)),
			Vel:  dir.Scale(200 + rng.Float64()*25),
			Life: particleLifetime * (0.75 + rng.Float64()*0.5),
		})
	}
	return b
}

// Update advances the burst and reports whether any spark is still alive.
func (b *Burst) Update(dt float64) bool {
	b.Particles = compactParticles(b.Particles, dt)
	return len(b.Particles) > 0
}

// Done reports whether every spark has expired.
func (b *Burst) Done() bool {
	return len(b.Particles) == 0
}

// DeathParticles streams sparks out of the player while the death
// countdown runs. Spawn adds one spark per call.
type DeathParticles struct {
	Anchor    spatial.Vec2
	Particles []Particle
}

// SetAnchor moves the emission point.
func (d *DeathParticles) SetAnchor(p spatial.Vec2) {
	d.Anchor = p
}

// Spawn emits a single spark in a uniformly random direction.
func (d *DeathParticles) Spawn(rng *rand.Rand) {
	dir := spatial.FromAngle(rng.Float64() * 2 * math.Pi)
	d.Particles = append(d.Particles, Particle{
		Pos:  d.Anchor.Add(dir.Scale(sparkMajorAxis)),
		Vel:  dir.Scale(200 + rng.Float64()*50),
		Life: particleLifetime * (0.5 + rng.Float64()*0.5),
	})
}

// Update advances every spark by dt.
func (d *DeathParticles) Update(dt float64) {
	d.Particles = compactParticles(d.Particles, dt)
}

// Reset drops all sparks.
func (d *DeathParticles) Reset() {
	d.Particles = d.Particles[:0]
}

// ScreenShake jitters the camera after a teleport.
type ScreenShake struct {
	Remaining float64 // Seconds left
	OffsetX   float64 // Current X offset (computed each tick)
	OffsetY   float64 // Current Y offset (computed each tick)
}

// Start (re)arms the shake for its full duration.
func (s *ScreenShake) Start() {
	s.Remaining = ShakeDuration
}

// Update draws a new offset while shake remains, then counts down by dt.
func (s *ScreenShake) Update(rng *rand.Rand, dt float64) {
	if s.Remaining <= 0 {
		s.OffsetX, s.OffsetY = 0, 0
		return
	}
	s.OffsetX = (rng.Float64()*2 - 1) * ShakeMagnitude
	s.OffsetY = (rng.Float64()*2 - 1) * ShakeMagnitude
	s.Remaining -= dt
}

// ParticleSnapshot is an immutable copy of a spark for rendering
type ParticleSnapshot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"` // Direction of travel
	Life  float64 `json:"life"`
}

func (p Particle) toSnapshot() ParticleSnapshot {
	return ParticleSnapshot{
		X:     p.Pos.X,
		Y:     p.Pos.Y,
		Angle: p.Vel.Angle(),
		Life:  p.Life,
	}
}
