package game

import (
	"math"

	"hopskip/internal/game/spatial"
)

// Archetype identifies an enemy's attack pattern.
type Archetype uint8

const (
	ArchetypeShotgun Archetype = iota
	ArchetypeFull
	ArchetypeSingle
	ArchetypeMulti
	ArchetypeSpiral
	ArchetypeWave
	ArchetypeCircle

	archetypeCount
)

// Pattern constants
const (
	shotgunBullets = 5
	fullBullets    = 20
	multiBullets   = 5
	spiralBullets  = 10
	waveBullets    = 10
	circleBullets  = 10

	shotgunSpread  = math.Pi / 12
	volleyStagger  = 0.05 // Seconds between staggered launches
	waveAmplitude  = 20.0
	circleRadius   = 30.0
	circleDistance = 30.0 // Ring center sits this far ahead along the aim
)

// SpawnSpec describes one projectile produced by a pattern.
type SpawnSpec struct {
	Origin spatial.Vec2
	Angle  float64
	Speed  float64
	Delay  float64
}

// PatternFunc generates a volley from an origin aimed along aim.
type PatternFunc func(origin spatial.Vec2, aim float64) []SpawnSpec

// Pattern pairs an attack cadence with its volley generator.
type Pattern struct {
	Interval float64 // Seconds between volleys
	Generate PatternFunc
}

// patterns is indexed by Archetype.
var patterns = [archetypeCount]Pattern{
	ArchetypeShotgun: {Interval: 1, Generate: shotgunPattern},
	ArchetypeFull:    {Interval: 1.5, Generate: fullPattern},
	ArchetypeSingle:  {Interval: 0.5, Generate: singlePattern},
	ArchetypeMulti:   {Interval: 0.75, Generate: multiPattern},
	ArchetypeSpiral:  {Interval: 1.25, Generate: spiralPattern},
	ArchetypeWave:    {Interval: 1, Generate: wavePattern},
	ArchetypeCircle:  {Interval: 1, Generate: circlePattern},
}

var archetypeNames = [archetypeCount]string{
	ArchetypeShotgun: "shotgun",
	ArchetypeFull:    "full",
	ArchetypeSingle:  "single",
	ArchetypeMulti:   "multi",
	ArchetypeSpiral:  "spiral",
	ArchetypeWave:    "wave",
	ArchetypeCircle:  "circle",
}

// String returns the catalog name of the archetype.
func (a Archetype) String() string {
	if a >= archetypeCount {
		return "unknown"
	}
	return archetypeNames[a]
}

// ParseArchetype resolves a catalog name.
func ParseArchetype(name string) (Archetype, bool) {
	for i, n := range archetypeNames {
		if n == name {
			return Archetype(i), true
		}
	}
	return 0, false
}

// Archetypes returns every catalog entry in declaration order.
func Archetypes() []Archetype {
	all := make([]Archetype, archetypeCount)
	for i := range all {
		all[i] = Archetype(i)
	}
	return all
}

// PatternFor returns the catalog entry for an archetype.
func PatternFor(a Archetype) Pattern {
	if a >= archetypeCount {
		return patterns[ArchetypeSingle]
	}
	return patterns[a]
}

// Volley generates the projectiles one attack of archetype a produces.
func Volley(a Archetype, origin spatial.Vec2, aim float64) []*Projectile {
	specs := PatternFor(a).Generate(origin, spatial.SanitizeAngle(aim))
	out := make([]*Projectile, len(specs))
	for i, s := range specs {
		out[i] = NewProjectile(s, a)
	}
	return out
}

func singlePattern(origin spatial.Vec2, aim float64) []SpawnSpec {
	return []SpawnSpec{{Origin: origin, Angle: aim, Speed: 200}}
}

// shotgunPattern fans five shots at aim ± k·π/12, k from +2 down to -2.
func shotgunPattern(origin spatial.Vec2, aim float64) []SpawnSpec {
	specs := make([]SpawnSpec, shotgunBullets)
	for i := range specs {
		k := float64(shotgunBullets/2 - i)
		specs[i] = SpawnSpec{Origin: origin, Angle: aim + k*shotgunSpread, Speed: 150}
	}
	return specs
}

func fullPattern(origin spatial.Vec2, aim float64) []SpawnSpec {
	return ringPattern(origin, aim, fullBullets, 100, 0)
}

func spiralPattern(origin spatial.Vec2, aim float64) []SpawnSpec {
	return ringPattern(origin, aim, spiralBullets, 150, volleyStagger)
}

// ringPattern spaces n shots evenly around the full circle starting at aim.
func ringPattern(origin spatial.Vec2, aim float64, n int, speed, stagger float64) []SpawnSpec {
	specs := make([]SpawnSpec, n)
	step := 2 * math.Pi / float64(n)
	for i := range specs {
		specs[i] = SpawnSpec{
			Origin: origin,
			Angle:  aim + float64(i)*step,
			Speed:  speed,
			Delay:  stagger * float64(i),
		}
	}
	return specs
}

func multiPattern(origin spatial.Vec2, aim float64) []SpawnSpec {
	specs := make([]SpawnSpec, multiBullets)
	for i := range specs {
		specs[i] = SpawnSpec{Origin: origin, Angle: aim, Speed: 175, Delay: volleyStagger * float64(i)}
	}
	return specs
}

// wavePattern staggers shots along the aim, each displaced sideways on a
// sine of its index.
func wavePattern(origin spatial.Vec2, aim float64) []SpawnSpec {
	normal := spatial.FromAngle(aim + math.Pi/2)
	specs := make([]SpawnSpec, waveBullets)
	for i := range specs {
		offset := waveAmplitude * math.Sin(2*math.Pi*float64(i)/waveBullets)
		specs[i] = SpawnSpec{
			Origin: origin.Add(normal.Scale(offset)),
			Angle:  aim,
			Speed:  150,
			Delay:  volleyStagger * float64(i),
		}
	}
	return specs
}

// circlePattern launches a ring of shots, centered ahead of the origin,
// that all travel along the aim.
func circlePattern(origin spatial.Vec2, aim float64) []SpawnSpec {
	center := origin.Add(spatial.Polar(circleDistance, aim))
	specs := make([]SpawnSpec, circleBullets)
	for i := range specs {
		ringAngle := 2*math.Pi*float64(i)/circleBullets + aim
		specs[i] = SpawnSpec{
			Origin: center.Add(spatial.Polar(circleRadius, ringAngle)),
			Angle:  aim,
			Speed:  125,
		}
	}
	return specs
}
