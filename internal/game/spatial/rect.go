package spatial

import "math"

// Rect is an axis-aligned box stored by its edges.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// RectAround builds a w×h box centered on c.
func RectAround(c Vec2, w, h float64) Rect {
	return Rect{
		MinX: c.X - w/2,
		MinY: c.Y - h/2,
		MaxX: c.X + w/2,
		MaxY: c.Y + h/2,
	}
}

// Center returns the midpoint of the box.
func (r Rect) Center() Vec2 {
	return Vec2{(r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Overlaps reports whether r and o share interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// SweptAABB reports whether mover, displaced by move, passes through target.
//
// Per axis it computes the fraction of the displacement at which the boxes
// start and stop overlapping. An axis with no motion contributes an
// unbounded interval when the boxes already overlap on it and an empty one
// when they do not. The boxes collide when the latest entry comes no later
// than the earliest exit and that entry lies within [0, 1].
func SweptAABB(move Vec2, mover, target Rect) bool {
	enter, exit := sweepTimes(move, mover, target)
	if enter > exit {
		return false
	}
	return enter >= 0 && enter <= 1
}

// SweepEntry returns the entry fraction of a swept test, or false on a miss.
func SweepEntry(move Vec2, mover, target Rect) (float64, bool) {
	enter, exit := sweepTimes(move, mover, target)
	if enter > exit || enter < 0 || enter > 1 {
		return 0, false
	}
	return enter, true
}

func sweepTimes(move Vec2, mover, target Rect) (enter, exit float64) {
	txEnter, txExit := axisTimes(move.X, mover.MinX, mover.MaxX, target.MinX, target.MaxX)
	tyEnter, tyExit := axisTimes(move.Y, mover.MinY, mover.MaxY, target.MinY, target.MaxY)
	return math.Max(txEnter, tyEnter), math.Min(txExit, tyExit)
}

func axisTimes(d, moverMin, moverMax, targetMin, targetMax float64) (enter, exit float64) {
	if d == 0 {
		if moverMax < targetMin || targetMax < moverMin {
			return math.Inf(1), math.Inf(-1)
		}
		return math.Inf(-1), math.Inf(1)
	}

	var dEnter, dExit float64
	if d > 0 {
		dEnter = targetMin - moverMax
		dExit = targetMax - moverMin
	} else {
		dEnter = targetMax - moverMin
		dExit = targetMin - moverMax
	}
	return dEnter / d, dExit / d
}
