package hexmap

// Coord is a hex position in odd-row offset coordinates: odd rows are
// shifted half a cell to the right.
type Coord struct {
	Col, Row int
}

// Offset is a coordinate delta between two adjacent hexes. Because the
// layout is parity-dependent, an Offset is only meaningful relative to the
// row it was computed from.
type Offset struct {
	DCol, DRow int
}

// Neighbor offset tables, indexed by direction: E, NE, NW, W, SW, SE.
// The order is the canonical iteration order for the whole engine; flow
// field tie-breaking and slot ring layout both depend on it staying fixed.
var (
	evenRowOffsets = [6]Offset{
		{1, 0}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1},
	}
	oddRowOffsets = [6]Offset{
		{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {0, 1}, {1, 1},
	}
)

// NeighborOffsets returns the six direction offsets valid for this
// coordinate's row parity, in canonical order.
func (c Coord) NeighborOffsets() [6]Offset {
	if c.Row&1 != 0 {
		return oddRowOffsets
	}
	return evenRowOffsets
}

// Add applies an offset to a coordinate.
func (c Coord) Add(o Offset) Coord {
	return Coord{Col: c.Col + o.DCol, Row: c.Row + o.DRow}
}

// Sub returns the offset from other to c.
func (c Coord) Sub(other Coord) Offset {
	return Offset{DCol: c.Col - other.Col, DRow: c.Row - other.Row}
}

// Neighbors returns the six adjacent coordinates in canonical order.
// Callers still need Grid.IsValid to filter map-boundary neighbors.
func (c Coord) Neighbors() [6]Coord {
	offs := c.NeighborOffsets()
	var result [6]Coord
	for i, o := range offs {
		result[i] = c.Add(o)
	}
	return result
}

// axial converts odd-row offset coordinates to axial (q, r).
func (c Coord) axial() (q, r int) {
	return c.Col - (c.Row-(c.Row&1))/2, c.Row
}

// Distance returns the hex distance in steps between two coordinates.
func Distance(a, b Coord) int {
	aq, ar := a.axial()
	bq, br := b.axial()
	dq := aq - bq
	dr := ar - br
	ds := -dq - dr
	if dq < 0 {
		dq = -dq
	}
	if dr < 0 {
		dr = -dr
	}
	if ds < 0 {
		ds = -ds
	}
	return (dq + dr + ds) / 2
}

// WorldPos returns the cell center in world units for a pointy-top layout
// with unit horizontal spacing.
func (c Coord) WorldPos() (x, y float64) {
	x = float64(c.Col)
	if c.Row&1 != 0 {
		x += 0.5
	}
	y = float64(c.Row) * 0.866
	return
}
