package hexmap

// Params are the immutable grid tuning constants, fixed at construction.
type Params struct {
	// RoadCost replaces terrain cost on cells with a completed road.
	RoadCost float64
	// DensityMultiplier is the extra traversal cost per friendly unit
	// already on a cell.
	DensityMultiplier float64
}

// DefaultParams mirrors the shipped tuning file.
func DefaultParams() Params {
	return Params{RoadCost: 0.7, DensityMultiplier: 5.0}
}

// Grid owns all cells and their adjacency. Topology is fixed after
// Finalize; only per-cell state mutates during a match.
type Grid struct {
	params    Params
	cells     map[Coord]*Cell
	finalized bool
}

// NewGrid creates an empty grid with the given tuning constants.
func NewGrid(params Params) *Grid {
	return &Grid{
		params: params,
		cells:  make(map[Coord]*Cell),
	}
}

// Params returns the grid tuning constants.
func (g *Grid) Params() Params {
	return g.params
}

// AddCell registers a cell during map generation. Calling AddCell after
// Finalize is a programming error and panics.
func (g *Grid) AddCell(coord Coord, terrain TerrainType, wx, wy float64) *Cell {
	if g.finalized {
		panic("hexmap: AddCell after Finalize")
	}
	c := &Cell{
		Coord:    coord,
		Terrain:  terrain,
		BaseCost: TerrainCost(terrain),
		Walkable: TerrainWalkable(terrain),
		WorldX:   wx,
		WorldY:   wy,
		params:   &g.params,
	}
	g.cells[coord] = c
	return c
}

// Finalize wires neighbor references in canonical order. The grid topology
// is immutable afterwards.
func (g *Grid) Finalize() {
	for coord, cell := range g.cells {
		cell.neighbors = cell.neighbors[:0]
		for _, nc := range coord.Neighbors() {
			if n, ok := g.cells[nc]; ok {
				cell.neighbors = append(cell.neighbors, n)
			}
		}
	}
	g.finalized = true
}

// IsValid reports whether a coordinate is on the map.
func (g *Grid) IsValid(coord Coord) bool {
	_, ok := g.cells[coord]
	return ok
}

// CellAt returns the cell at a coordinate, or nil for coordinates off the
// map. Speculative probes from camera and AI code are normal, so an
// invalid coordinate is not an error.
func (g *Grid) CellAt(coord Coord) *Cell {
	return g.cells[coord]
}

// CellCount returns the number of cells on the map.
func (g *Grid) CellCount() int {
	return len(g.cells)
}

// Cells calls fn for every cell. Iteration order is unspecified.
func (g *Grid) Cells(fn func(*Cell)) {
	for _, c := range g.cells {
		fn(c)
	}
}

// Neighbors returns the valid adjacent coordinates in canonical order.
func (g *Grid) Neighbors(coord Coord) []Coord {
	var out []Coord
	for _, nc := range coord.Neighbors() {
		if g.IsValid(nc) {
			out = append(out, nc)
		}
	}
	return out
}

// BFSReachable returns the set of walkable coordinates connected to start,
// ignoring structures and occupancy. Used for build placement legality.
func (g *Grid) BFSReachable(start Coord) map[Coord]bool {
	reached := make(map[Coord]bool)
	cell := g.CellAt(start)
	if cell == nil || !cell.Walkable {
		return reached
	}
	reached[start] = true
	queue := []Coord{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nc := range cur.Neighbors() {
			if reached[nc] {
				continue
			}
			n := g.cells[nc]
			if n == nil || !n.Walkable {
				continue
			}
			reached[nc] = true
			queue = append(queue, nc)
		}
	}
	return reached
}

// NearestWalkable returns the walkable cell closest to from by hex
// distance, or nil when the grid has none. Spawn placement uses it to
// snap a nominal coordinate onto usable terrain.
func (g *Grid) NearestWalkable(from Coord) *Cell {
	if c := g.CellAt(from); c != nil && c.Walkable {
		return c
	}
	var found *Cell
	best := -1
	g.Cells(func(c *Cell) {
		if !c.Walkable {
			return
		}
		d := Distance(from, c.Coord)
		switch {
		case best < 0 || d < best:
			best, found = d, c
		case d == best && (c.Coord.Row < found.Coord.Row ||
			(c.Coord.Row == found.Coord.Row && c.Coord.Col < found.Coord.Col)):
			found = c
		}
	})
	return found
}

// FindPath returns the shortest path by hop count from a to b inclusive,
// or nil when unreachable. With walkableOnly false the search crosses any
// terrain, which road planning relies on: a route over water is legal
// because a bridge can be built there later.
func (g *Grid) FindPath(a, b Coord, walkableOnly bool) []Coord {
	if g.CellAt(a) == nil || g.CellAt(b) == nil {
		return nil
	}
	if a == b {
		return []Coord{a}
	}
	came := make(map[Coord]Coord)
	seen := map[Coord]bool{a: true}
	queue := []Coord{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nc := range cur.Neighbors() {
			if seen[nc] {
				continue
			}
			n := g.cells[nc]
			if n == nil {
				continue
			}
			if walkableOnly && !n.Traversable() {
				continue
			}
			seen[nc] = true
			came[nc] = cur
			if nc == b {
				return reconstruct(came, a, b)
			}
			queue = append(queue, nc)
		}
	}
	return nil
}

func reconstruct(came map[Coord]Coord, a, b Coord) []Coord {
	path := []Coord{b}
	cur := b
	for cur != a {
		cur = came[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
