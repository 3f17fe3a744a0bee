package spatial

import "math"

type gridEntry struct {
	id   uint32
	cell int32
}

// Grid buckets point entities into square cells covering
// [-halfExtent, halfExtent]² for broad-phase radius queries. Points outside
// that square land in the border cells, so a query can return extra
// candidates but never misses one.
//
// Entries are collected with Add and sorted into cells by a counting sort
// on the first query after a change.
type Grid struct {
	half    float64
	invCell float64
	side    int

	entries []gridEntry
	start   []int32 // start[c]..start[c+1] indexes ids for cell c
	ids     []uint32
	dirty   bool
}

// NewGrid creates a grid. capacity presizes the entry storage.
func NewGrid(halfExtent, cellSize float64, capacity int) *Grid {
	side := int(math.Ceil(2 * halfExtent / cellSize))
	if side < 1 {
		side = 1
	}
	return &Grid{
		half:    halfExtent,
		invCell: 1 / cellSize,
		side:    side,
		entries: make([]gridEntry, 0, capacity),
		start:   make([]int32, side*side+1),
		ids:     make([]uint32, 0, capacity),
	}
}

// Reset removes every entity and keeps the storage.
func (g *Grid) Reset() {
	g.entries = g.entries[:0]
	g.dirty = true
}

// Add places entity id at p.
func (g *Grid) Add(id uint32, p Vec2) {
	g.entries = append(g.entries, gridEntry{id: id, cell: int32(g.row(p.Y)*g.side + g.col(p.X))})
	g.dirty = true
}

// Len returns the number of entities added since the last Reset.
func (g *Grid) Len() int { return len(g.entries) }

// Side returns the number of cells along each axis.
func (g *Grid) Side() int { return g.side }

func (g *Grid) axis(v float64) int {
	i := int(math.Floor((v + g.half) * g.invCell))
	return max(0, min(i, g.side-1))
}

func (g *Grid) col(x float64) int { return g.axis(x) }
func (g *Grid) row(y float64) int { return g.axis(y) }

func (g *Grid) build() {
	clear(g.start)
	for _, e := range g.entries {
		g.start[e.cell+1]++
	}
	for c := 1; c < len(g.start); c++ {
		g.start[c] += g.start[c-1]
	}

	g.ids = g.ids[:len(g.entries)]
	fill := make([]int32, len(g.start)-1)
	copy(fill, g.start)
	for _, e := range g.entries {
		g.ids[fill[e.cell]] = e.id
		fill[e.cell]++
	}
	g.dirty = false
}

// Near appends to dst the ids in every cell touched by the square around c
// with half side radius. Callers do the exact distance test.
func (g *Grid) Near(dst []uint32, c Vec2, radius float64) []uint32 {
	if len(g.entries) == 0 {
		return dst
	}
	if g.dirty {
		g.build()
	}

	c0, c1 := g.col(c.X-radius), g.col(c.X+radius)
	for r := g.row(c.Y - radius); r <= g.row(c.Y+radius); r++ {
		lo := g.start[r*g.side+c0]
		hi := g.start[r*g.side+c1+1]
		dst = append(dst, g.ids[lo:hi]...)
	}
	return dst
}
