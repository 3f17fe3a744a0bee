package game

import (
	"math"
	"testing"

	"hopskip/internal/game/spatial"
)

const tol = 1e-9

// TestProjectileExpiry checks the lifespan boundary
func TestProjectileExpiry(t *testing.T) {
	tests := []struct {
		name string
		age  float64
		dead bool
	}{
		{"full lifespan", 5.0, true},
		{"just short", 4.999, false},
		{"past lifespan", 6.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProjectile(SpawnSpec{Angle: 0, Speed: 100}, ArchetypeSingle)
			p.Update(tt.age)
			if p.IsDead() != tt.dead {
				t.Errorf("IsDead() after %.3fs = %v, want %v", tt.age, p.IsDead(), tt.dead)
			}
		})
	}
}

// TestProjectileDelay verifies a delayed projectile is frozen until launch
func TestProjectileDelay(t *testing.T) {
	origin := spatial.Vec2{X: 10, Y: 10}
	p := NewProjectile(SpawnSpec{Origin: origin, Angle: 0, Speed: 100, Delay: 0.25}, ArchetypeMulti)

	p.Update(0.125)
	if p.Pos != origin || p.Age != 0 {
		t.Fatalf("Expected frozen projectile, got pos %v age %f", p.Pos, p.Age)
	}
	if p.Launched() {
		t.Error("Projectile should not be launched yet")
	}

	p.Update(0.125)
	if !p.Launched() {
		t.Fatal("Projectile should be launched after its delay")
	}
	if p.Pos != origin {
		t.Error("Launch tick should not move the projectile")
	}

	p.Update(0.5)
	if math.Abs(p.Pos.X-60) > tol || math.Abs(p.Age-0.5) > tol {
		t.Errorf("Expected x=60 age=0.5, got x=%f age=%f", p.Pos.X, p.Age)
	}
}

// TestFullPatternCardinality verifies 20 evenly spaced shots from the aim
func TestFullPatternCardinality(t *testing.T) {
	aim := 0.3
	volley := Volley(ArchetypeFull, spatial.Vec2{}, aim)
	if len(volley) != 20 {
		t.Fatalf("Expected 20 projectiles, got %d", len(volley))
	}
	for i, p := range volley {
		want := aim + float64(i)*2*math.Pi/20
		if math.Abs(p.Angle-want) > tol {
			t.Errorf("projectile %d angle = %f, want %f", i, p.Angle, want)
		}
		if p.Speed != 100 || p.Delay != 0 {
			t.Errorf("projectile %d speed/delay = %f/%f", i, p.Speed, p.Delay)
		}
	}
}

// TestShotgunPatternFan verifies the five-shot fan centered on the aim
func TestShotgunPatternFan(t *testing.T) {
	aim := -1.0
	volley := Volley(ArchetypeShotgun, spatial.Vec2{}, aim)
	if len(volley) != 5 {
		t.Fatalf("Expected 5 projectiles, got %d", len(volley))
	}

	sum := 0.0
	for i, p := range volley {
		want := aim + float64(2-i)*math.Pi/12
		if math.Abs(p.Angle-want) > tol {
			t.Errorf("projectile %d angle = %f, want %f", i, p.Angle, want)
		}
		sum += p.Angle
	}
	if mean := sum / 5; math.Abs(mean-aim) > tol {
		t.Errorf("fan centered on %f, want %f", mean, aim)
	}
	if span := volley[0].Angle - volley[4].Angle; math.Abs(span-4*math.Pi/12) > tol {
		t.Errorf("fan span = %f, want %f", span, 4*math.Pi/12)
	}
}

// TestPatternCatalog checks counts, speeds and delays for every archetype
func TestPatternCatalog(t *testing.T) {
	tests := []struct {
		kind     Archetype
		count    int
		speed    float64
		interval float64
		stagger  float64
	}{
		{ArchetypeSingle, 1, 200, 0.5, 0},
		{ArchetypeShotgun, 5, 150, 1, 0},
		{ArchetypeFull, 20, 100, 1.5, 0},
		{ArchetypeMulti, 5, 175, 0.75, 0.05},
		{ArchetypeSpiral, 10, 150, 1.25, 0.05},
		{ArchetypeWave, 10, 150, 1, 0.05},
		{ArchetypeCircle, 10, 125, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := PatternFor(tt.kind).Interval; got != tt.interval {
				t.Errorf("interval = %f, want %f", got, tt.interval)
			}
			volley := Volley(tt.kind, spatial.Vec2{X: 5, Y: -5}, 0.5)
			if len(volley) != tt.count {
				t.Fatalf("count = %d, want %d", len(volley), tt.count)
			}
			for i, p := range volley {
				if p.Speed != tt.speed {
					t.Errorf("projectile %d speed = %f, want %f", i, p.Speed, tt.speed)
				}
				if want := tt.stagger * float64(i); math.Abs(p.Delay-want) > tol {
					t.Errorf("projectile %d delay = %f, want %f", i, p.Delay, want)
				}
				if p.Kind != tt.kind {
					t.Errorf("projectile %d kind = %v, want %v", i, p.Kind, tt.kind)
				}
			}
		})
	}
}

// TestWavePatternOffsets verifies sideways displacement along the normal
func TestWavePatternOffsets(t *testing.T) {
	volley := Volley(ArchetypeWave, spatial.Vec2{}, 0)
	for i, p := range volley {
		wantY := 20 * math.Sin(2*math.Pi*float64(i)/10)
		if math.Abs(p.Pos.X) > tol || math.Abs(p.Pos.Y-wantY) > tol {
			t.Errorf("projectile %d origin = %v, want (0, %f)", i, p.Pos, wantY)
		}
		if p.Angle != 0 {
			t.Errorf("projectile %d angle = %f, want 0", i, p.Angle)
		}
	}
}

// TestCirclePatternRing verifies the ring sits 30 units ahead of the origin
func TestCirclePatternRing(t *testing.T) {
	aim := math.Pi / 2
	volley := Volley(ArchetypeCircle, spatial.Vec2{}, aim)
	center := spatial.Vec2{X: 0, Y: 30}
	for i, p := range volley {
		if d := p.Pos.Sub(center).Len(); math.Abs(d-30) > 1e-6 {
			t.Errorf("projectile %d is %f from ring center, want 30", i, d)
		}
		if p.Angle != aim {
			t.Errorf("projectile %d angle = %f, want aim", i, p.Angle)
		}
	}
}

// TestDegenerateAim falls back to angle 0
func TestDegenerateAim(t *testing.T) {
	volley := Volley(ArchetypeSingle, spatial.Vec2{}, math.NaN())
	if volley[0].Angle != 0 {
		t.Errorf("NaN aim produced angle %f, want 0", volley[0].Angle)
	}

	aim := spatial.Vec2{}.Sub(spatial.Vec2{}).Angle()
	if aim != 0 {
		t.Errorf("zero-length aim vector angle = %f, want 0", aim)
	}
}

// TestParseArchetype round-trips catalog names
func TestParseArchetype(t *testing.T) {
	for _, a := range Archetypes() {
		got, ok := ParseArchetype(a.String())
		if !ok || got != a {
			t.Errorf("ParseArchetype(%q) = %v, %v", a.String(), got, ok)
		}
	}
	if _, ok := ParseArchetype("laser"); ok {
		t.Error("unknown archetype should not parse")
	}
}
