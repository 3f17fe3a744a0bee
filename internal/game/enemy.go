package game

import (
	"math"
	"math/rand"

	"hopskip/internal/game/spatial"
)

// Entity constants shared by the player and enemies
const (
	EntityRadius = 20.0  // Hit radius; bounding boxes are 2×radius square
	MoveSpeed    = 150.0 // Player jump length and enemy step length
	EnemyColor   = "#ff0000"
	PlayerColor  = "#0000ff"
)

// Enemy is a stationary turret that fires its archetype's volley at the
// player every attack interval.
type Enemy struct {
	Pos         spatial.Vec2
	Kind        Archetype
	AttackTimer float64
	Interval    float64
}

// NewEnemy creates an enemy with the catalog interval for kind.
func NewEnemy(pos spatial.Vec2, kind Archetype) *Enemy {
	return &Enemy{
		Pos:      pos,
		Kind:     kind,
		Interval: PatternFor(kind).Interval,
	}
}

// Bounds returns the enemy's bounding box.
func (e *Enemy) Bounds() spatial.Rect {
	return spatial.RectAround(e.Pos, 2*EntityRadius, 2*EntityRadius)
}

// Update accrues the attack timer; once it exceeds the interval the enemy
// fires at target and the timer resets.
func (e *Enemy) Update(dt float64, target spatial.Vec2, emit func(*Projectile)) {
	e.AttackTimer += dt
	if e.AttackTimer <= e.Interval {
		return
	}
	aim := target.Sub(e.Pos).Angle()
	for _, p := range Volley(e.Kind, e.Pos, aim) {
		emit(p)
	}
	e.AttackTimer = 0
}

// Wander steps the enemy one move length in a uniformly random direction.
func (e *Enemy) Wander(rng *rand.Rand) {
	e.Pos = e.Pos.Add(spatial.Polar(MoveSpeed, rng.Float64()*2*math.Pi))
}

// EnemySnapshot is an immutable copy of enemy state for rendering
type EnemySnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Kind   string  `json:"kind"`
	Charge float64 `json:"charge"` // Attack timer as a fraction of the interval
	Color  string  `json:"color"`
}

// ToSnapshot creates an immutable snapshot for rendering
func (e *Enemy) ToSnapshot() EnemySnapshot {
	charge := 0.0
	if e.Interval > 0 {
		charge = math.Min(e.AttackTimer/e.Interval, 1)
	}
	return EnemySnapshot{
		X:      e.Pos.X,
		Y:      e.Pos.Y,
		Kind:   e.Kind.String(),
		Charge: charge,
		Color:  EnemyColor,
	}
}
