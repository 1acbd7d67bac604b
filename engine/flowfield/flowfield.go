// Package flowfield computes per-faction cost and direction fields over the
// hex grid. A field is built once by Calculate and read-only afterwards;
// the Registry swaps whole fields on its recompute interval so readers
// never observe a half-built one.
package flowfield

import (
	"github.com/hexforge/rts-core/engine/hexmap"
)

// Field holds the integration cost and descend direction for every cell
// reachable from the target set.
type Field struct {
	Faction hexmap.Faction

	cost map[hexmap.Coord]float64
	dir  map[hexmap.Coord]hexmap.Offset
}

// New creates an empty field for a faction. It reports every cell as
// unreachable until Calculate runs.
func New(f hexmap.Faction) *Field {
	return &Field{
		Faction: f,
		cost:    make(map[hexmap.Coord]float64),
		dir:     make(map[hexmap.Coord]hexmap.Offset),
	}
}

// Calculate populates the field from a set of target cells with seed
// priorities. Lower priority is more attractive; plain targets use 0.
//
// The solver is a FIFO label-correcting relaxation rather than heap
// Dijkstra. The grid is small and fields rebuild only every few seconds,
// and the relaxation order fixes the deterministic tie-break the tests
// rely on.
func (f *Field) Calculate(g *hexmap.Grid, targets map[hexmap.Coord]float64) {
	seeds := make(map[hexmap.Coord]float64, len(targets))
	for c, p := range targets {
		if g.IsValid(c) {
			seeds[c] = p
		}
	}

	// Every cell holding enemy presence is an implicit priority-0 target;
	// "attack the nearest enemy" falls out of the field shape.
	g.Cells(func(c *hexmap.Cell) {
		if _, ok := seeds[c.Coord]; ok {
			return
		}
		if c.IsHostileTo(f.Faction) {
			seeds[c.Coord] = 0
		}
	})

	// Materialize every node reachable from a target through raw topology,
	// ignoring cost. Blocked cells still get a direction this way, so a
	// unit stuck behind a jammed formation can point somewhere useful.
	nodes := make(map[hexmap.Coord]bool, g.CellCount())
	var queue []hexmap.Coord
	for c := range seeds {
		nodes[c] = true
		queue = append(queue, c)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nc := range cur.Neighbors() {
			if nodes[nc] || !g.IsValid(nc) {
				continue
			}
			nodes[nc] = true
			queue = append(queue, nc)
		}
	}

	for c := range nodes {
		f.cost[c] = hexmap.Impassable
	}
	queue = queue[:0]
	for c, p := range seeds {
		f.cost[c] = p
		queue = append(queue, c)
	}

	// Relax until no label improves. Non-negative edge costs guarantee
	// termination.
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curCost := f.cost[cur]
		for _, nc := range cur.Neighbors() {
			cell := g.CellAt(nc)
			if cell == nil {
				continue
			}
			candidate := curCost + cell.FlowCost(f.Faction)
			if candidate < f.cost[nc] {
				f.cost[nc] = candidate
				queue = append(queue, nc)
			}
		}
	}

	// Direction pass: each node points at its globally cheapest neighbor,
	// strict improvement only. Ties resolve to the first minimum in
	// canonical neighbor order. Targets, local minima, and unreachable
	// nodes keep no direction.
	for c := range nodes {
		own := f.cost[c]
		best := own
		var bestOff hexmap.Offset
		found := false
		for _, off := range c.NeighborOffsets() {
			nc := c.Add(off)
			ncost, ok := f.cost[nc]
			if !ok {
				continue
			}
			if ncost < best {
				best = ncost
				bestOff = off
				found = true
			}
		}
		if found {
			f.dir[c] = bestOff
		}
	}
}

// Cost returns the integration cost at a coordinate, Impassable when the
// coordinate is unreachable or off the field. A nil field answers every
// query with Impassable; the registry returns nil for unknown factions.
func (f *Field) Cost(c hexmap.Coord) float64 {
	if f == nil {
		return hexmap.Impassable
	}
	if v, ok := f.cost[c]; ok {
		return v
	}
	return hexmap.Impassable
}

// Direction returns the descend offset at a coordinate. ok is false at
// targets, local minima, and unreachable cells.
func (f *Field) Direction(c hexmap.Coord) (hexmap.Offset, bool) {
	if f == nil {
		return hexmap.Offset{}, false
	}
	off, ok := f.dir[c]
	return off, ok
}

// NextCell resolves the direction at a coordinate to the neighbor cell to
// step into, or nil when the field gives no direction there.
func (f *Field) NextCell(c hexmap.Coord, g *hexmap.Grid) *hexmap.Cell {
	if f == nil {
		return nil
	}
	off, ok := f.dir[c]
	if !ok {
		return nil
	}
	return g.CellAt(c.Add(off))
}
