package game

import (
	"hopskip/internal/game/spatial"
)

// Projectile system constants
const (
	ProjectileLifespan = 5.0 // Simulated seconds of flight before expiry
	ProjectileRadius   = 5.0 // Render radius; hit detection uses EntityRadius
	ProjectileColor    = "#c80000"
)

// Projectile is an enemy bullet. While Delay is positive it sits frozen at
// its spawn point; once launched it travels in a straight line at Speed and
// ages until ProjectileLifespan.
type Projectile struct {
	Pos   spatial.Vec2
	Angle float64 // Direction of travel (radians)
	Speed float64 // World units per simulated second
	Kind  Archetype
	Color string

	Age   float64 // Flight time since launch
	Delay float64 // Remaining launch delay
}

// NewProjectile creates a projectile from a pattern spawn spec.
func NewProjectile(spec SpawnSpec, kind Archetype) *Projectile {
	delay := spec.Delay
	if delay < 0 {
		delay = 0
	}
	return &Projectile{
		Pos:   spec.Origin,
		Angle: spatial.SanitizeAngle(spec.Angle),
		Speed: spec.Speed,
		Kind:  kind,
		Color: ProjectileColor,
		Delay: delay,
	}
}

// Update advances the projectile by dt simulated seconds.
// Time spent waiting out the launch delay is not carried into flight.
func (p *Projectile) Update(dt float64) {
	if p.Delay > 0 {
		p.Delay -= dt
		if p.Delay < 0 {
			p.Delay = 0
		}
		return
	}
	p.Pos = p.Pos.Add(spatial.Polar(p.Speed*dt, p.Angle))
	p.Age += dt
}

// Launched reports whether the launch delay has elapsed.
func (p *Projectile) Launched() bool {
	return p.Delay <= 0
}

// IsDead reports whether the projectile has outlived its lifespan.
func (p *Projectile) IsDead() bool {
	return p.Age >= ProjectileLifespan
}

// ProjectileSnapshot is an immutable copy of projectile state for rendering
type ProjectileSnapshot struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Angle    float64 `json:"angle"`
	Kind     string  `json:"kind"`
	Color    string  `json:"color"`
	Launched bool    `json:"launched"`
}

// ToSnapshot creates an immutable snapshot for rendering
func (p *Projectile) ToSnapshot() ProjectileSnapshot {
	return ProjectileSnapshot{
		X:        p.Pos.X,
		Y:        p.Pos.Y,
		Angle:    p.Angle,
		Kind:     p.Kind.String(),
		Color:    p.Color,
		Launched: p.Launched(),
	}
}
