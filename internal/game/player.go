package game

import (
	"errors"
	"math/rand"

	"hopskip/internal/game/spatial"
)

var (
	// ErrOutOfBounds is returned when the aimed landing point lies on or
	// beyond the arena boundary. Nothing changes.
	ErrOutOfBounds = errors.New("teleport target outside arena")

	// ErrNotReady is returned when a teleport is attempted outside bullet
	// time or before the match is playing.
	ErrNotReady = errors.New("teleport not available")

	// ErrMatchOver is returned for actions on a dead player or finished match.
	ErrMatchOver = errors.New("match is over")
)

// Player is the teleporting protagonist. Shadow is the live preview of the
// landing point for the current aim; it carries no state between frames.
type Player struct {
	Pos        spatial.Vec2
	Shadow     spatial.Vec2
	BulletTime bool
	MoveSpeed  float64

	Death DeathParticles

	rng      *rand.Rand
	addBurst func(*Burst)
	nearby   []uint32 // grid candidates, reused
}

// NewPlayer creates a player at pos, already in bullet time. addBurst
// receives the particle bursts the player spawns.
func NewPlayer(pos spatial.Vec2, rng *rand.Rand, addBurst func(*Burst)) *Player {
	return &Player{
		Pos:        pos,
		Shadow:     pos,
		BulletTime: true,
		MoveSpeed:  MoveSpeed,
		Death:      DeathParticles{Anchor: pos},
		rng:        rng,
		addBurst:   addBurst,
	}
}

// Bounds returns the player's bounding box.
func (p *Player) Bounds() spatial.Rect {
	return spatial.RectAround(p.Pos, 2*EntityRadius, 2*EntityRadius)
}

// UpdateShadow places the shadow one jump length along aim.
func (p *Player) UpdateShadow(aim float64) {
	p.Shadow = p.Pos.Add(spatial.Polar(p.MoveSpeed, spatial.SanitizeAngle(aim)))
}

// TakeTurn teleports the player to the shadow, killing every enemy whose
// box the jump sweeps through. It returns the kill count, or
// ErrOutOfBounds with no state change when the shadow lies outside the
// arena of the given radius.
func (p *Player) TakeTurn(roster *Roster, boundaryRadius float64) (int, error) {
	if p.Shadow.LenSq() >= boundaryRadius*boundaryRadius {
		return 0, ErrOutOfBounds
	}

	jump := p.Shadow.Sub(p.Pos)
	angle := jump.Angle()
	reach := p.MoveSpeed + 2*EntityRadius
	mover := p.Bounds()

	var kills []int
	for i, e := range roster.Enemies() {
		if e.Pos.DistSq(p.Pos) >= reach*reach {
			continue
		}
		if spatial.SweptAABB(jump, mover, e.Bounds()) {
			kills = append(kills, i)
		}
	}
	roster.Kill(kills)

	p.Pos = p.Shadow
	if p.addBurst != nil {
		p.addBurst(NewBurst(p.rng, p.Pos, angle, 1))
	}
	if len(kills) == 0 {
		p.BulletTime = false
	}
	return len(kills), nil
}

// CheckHit reports whether any launched projectile touches the player. On a
// hit it spawns an impact burst along the projectile's heading and anchors
// the death particles on the player.
func (p *Player) CheckHit(projectiles []*Projectile, grid *spatial.Grid) bool {
	const r2 = EntityRadius * EntityRadius

	hit := func(proj *Projectile) bool {
		if proj.Pos.DistSq(p.Pos) > r2 {
			return false
		}
		if p.addBurst != nil {
			p.addBurst(NewBurst(p.rng, p.Pos, proj.Angle, 1))
		}
		p.Death.SetAnchor(p.Pos)
		return true
	}

	if grid == nil {
		for _, proj := range projectiles {
			if hit(proj) {
				return true
			}
		}
		return false
	}

	p.nearby = grid.Near(p.nearby[:0], p.Pos, EntityRadius)
	for _, id := range p.nearby {
		if int(id) < len(projectiles) && hit(projectiles[id]) {
			return true
		}
	}
	return false
}

// PlayerSnapshot is an immutable copy of player state for rendering
type PlayerSnapshot struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	ShadowX    float64 `json:"shadowX"`
	ShadowY    float64 `json:"shadowY"`
	BulletTime bool    `json:"bulletTime"`
	Color      string  `json:"color"`
}

// ToSnapshot creates an immutable snapshot for rendering
func (p *Player) ToSnapshot() PlayerSnapshot {
	return PlayerSnapshot{
		X:          p.Pos.X,
		Y:          p.Pos.Y,
		ShadowX:    p.Shadow.X,
		ShadowY:    p.Shadow.Y,
		BulletTime: p.BulletTime,
		Color:      PlayerColor,
	}
}
