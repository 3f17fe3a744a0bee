package spatial

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestSweptAABB(t *testing.T) {
	mover := RectAround(Vec2{0, 0}, 40, 40)
	move := Vec2{150, 0}

	tests := []struct {
		name   string
		target Rect
		want   bool
	}{
		{"crossed mid path", RectAround(Vec2{100, 0}, 20, 20), true},
		{"touching at path start", Rect{MinX: 20, MinY: -10, MaxX: 40, MaxY: 10}, true},
		{"reached near path end", Rect{MinX: 169, MinY: -10, MaxX: 189, MaxY: 10}, true},
		{"just beyond path end", Rect{MinX: 171, MinY: -10, MaxX: 191, MaxY: 10}, false},
		{"behind the mover", RectAround(Vec2{-100, 0}, 20, 20), false},
		{"off path above", RectAround(Vec2{100, -60}, 20, 20), false},
		{"off path far away", RectAround(Vec2{100, 5000}, 20, 20), false},
		{"grazing the side", Rect{MinX: 80, MinY: 20, MaxX: 100, MaxY: 40}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SweptAABB(move, mover, tt.target); got != tt.want {
				t.Errorf("SweptAABB() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSweptAABBDiagonal(t *testing.T) {
	mover := RectAround(Vec2{0, 0}, 40, 40)
	move := Polar(150, math.Pi/4)

	onPath := RectAround(Vec2{70, 70}, 20, 20)
	if !SweptAABB(move, mover, onPath) {
		t.Error("box on the diagonal should be hit")
	}

	offPath := RectAround(Vec2{100, -40}, 20, 20)
	if SweptAABB(move, mover, offPath) {
		t.Error("box beside the diagonal should be missed")
	}
}

func TestSweptAABBVerticalAndNegative(t *testing.T) {
	mover := RectAround(Vec2{0, 0}, 40, 40)

	if !SweptAABB(Vec2{0, -150}, mover, RectAround(Vec2{0, -100}, 20, 20)) {
		t.Error("upward jump should hit box above")
	}
	if SweptAABB(Vec2{0, -150}, mover, RectAround(Vec2{60, -100}, 20, 20)) {
		t.Error("box outside the vertical lane should be missed")
	}
	if !SweptAABB(Vec2{-150, 0}, mover, RectAround(Vec2{-120, 5}, 20, 20)) {
		t.Error("leftward jump should hit box on the left")
	}
}

func TestSweepEntry(t *testing.T) {
	mover := RectAround(Vec2{0, 0}, 40, 40)
	enter, ok := SweepEntry(Vec2{150, 0}, mover, RectAround(Vec2{100, 0}, 20, 20))
	if !ok {
		t.Fatal("expected a hit")
	}
	if want := 70.0 / 150.0; math.Abs(enter-want) > eps {
		t.Errorf("entry = %f, want %f", enter, want)
	}
}

func TestVecAngle(t *testing.T) {
	if got := (Vec2{}).Angle(); got != 0 {
		t.Errorf("zero vector angle = %f, want 0", got)
	}
	if got := (Vec2{0, 1}).Angle(); math.Abs(got-math.Pi/2) > eps {
		t.Errorf("angle = %f, want π/2", got)
	}
	if got := SanitizeAngle(math.NaN()); got != 0 {
		t.Errorf("SanitizeAngle(NaN) = %f, want 0", got)
	}
	if got := SanitizeAngle(math.Inf(-1)); got != 0 {
		t.Errorf("SanitizeAngle(-Inf) = %f, want 0", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > eps {
			t.Errorf("NormalizeAngle(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestGridNear(t *testing.T) {
	g := NewGrid(1000, 100, 64)
	if g.Side() != 20 {
		t.Fatalf("side = %d, want 20", g.Side())
	}

	g.Add(0, Vec2{0, 0})
	g.Add(1, Vec2{50, 50})
	g.Add(2, Vec2{-900, 900})
	g.Add(3, Vec2{5000, 0}) // clamped into the border

	tests := []struct {
		name    string
		center  Vec2
		radius  float64
		want    []uint32
		notWant []uint32
	}{
		{"origin", Vec2{10, 10}, 30, []uint32{0, 1}, []uint32{2, 3}},
		{"border clamp", Vec2{990, 0}, 5, []uint32{3}, []uint32{0, 1, 2}},
		{"corner", Vec2{-900, 900}, 10, []uint32{2}, []uint32{0, 1, 3}},
		{"whole arena", Vec2{}, 2000, []uint32{0, 1, 2, 3}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := map[uint32]bool{}
			for _, id := range g.Near(nil, tt.center, tt.radius) {
				found[id] = true
			}
			for _, id := range tt.want {
				if !found[id] {
					t.Errorf("missing %d in %v", id, found)
				}
			}
			for _, id := range tt.notWant {
				if found[id] {
					t.Errorf("unexpected %d in %v", id, found)
				}
			}
		})
	}
}

func TestGridResetAndAppend(t *testing.T) {
	g := NewGrid(100, 10, 4)
	g.Add(7, Vec2{1, 1})

	dst := g.Near([]uint32{42}, Vec2{}, 5)
	if len(dst) != 2 || dst[0] != 42 || dst[1] != 7 {
		t.Errorf("Near should append to dst, got %v", dst)
	}

	g.Reset()
	if g.Len() != 0 {
		t.Errorf("Len after Reset = %d", g.Len())
	}
	if n := len(g.Near(nil, Vec2{}, 200)); n != 0 {
		t.Errorf("reset grid returned %d candidates", n)
	}

	g.Add(9, Vec2{-99, -99})
	if got := g.Near(nil, Vec2{-95, -95}, 1); len(got) != 1 || got[0] != 9 {
		t.Errorf("rebuilt grid = %v, want [9]", got)
	}
}
