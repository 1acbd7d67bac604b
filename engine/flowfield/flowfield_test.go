package flowfield

import (
	"testing"

	"github.com/hexforge/rts-core/engine/hexmap"
)

func uniformGrid(w, h int) *hexmap.Grid {
	g := hexmap.NewGrid(hexmap.DefaultParams())
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			c := hexmap.Coord{Col: col, Row: row}
			x, y := c.WorldPos()
			g.AddCell(c, hexmap.TerrainGrass, x, y)
		}
	}
	g.Finalize()
	return g
}

func TestUniformCostEqualsHexDistance(t *testing.T) {
	g := uniformGrid(20, 20)
	f := New(0)
	target := hexmap.Coord{Col: 15, Row: 15}
	f.Calculate(g, map[hexmap.Coord]float64{target: 0})

	if got := f.Cost(target); got != 0 {
		t.Fatalf("target cost = %v, want 0", got)
	}
	// On an empty uniform-cost-1 map the integration cost is exactly the
	// hex step distance.
	for _, c := range []hexmap.Coord{
		{Col: 5, Row: 15}, {Col: 15, Row: 5}, {Col: 5, Row: 5}, {Col: 0, Row: 0}, {Col: 14, Row: 15},
	} {
		want := float64(hexmap.Distance(c, target))
		if got := f.Cost(c); got != want {
			t.Errorf("cost at %v = %v, want %v", c, got, want)
		}
	}
}

func TestCostMonotoneAlongDirection(t *testing.T) {
	g := uniformGrid(20, 20)
	f := New(0)
	f.Calculate(g, map[hexmap.Coord]float64{{Col: 15, Row: 15}: 0})

	g.Cells(func(cell *hexmap.Cell) {
		next := f.NextCell(cell.Coord, g)
		if next == nil {
			return
		}
		if f.Cost(next.Coord) >= f.Cost(cell.Coord) {
			t.Errorf("direction at %v climbs: %v -> %v",
				cell.Coord, f.Cost(cell.Coord), f.Cost(next.Coord))
		}
	})
}

func TestDirectionChainsTerminate(t *testing.T) {
	g := uniformGrid(16, 16)
	f := New(0)
	f.Calculate(g, map[hexmap.Coord]float64{{Col: 8, Row: 8}: 0})

	limit := g.CellCount()
	g.Cells(func(cell *hexmap.Cell) {
		cur := cell.Coord
		for i := 0; ; i++ {
			if i > limit {
				t.Fatalf("direction chain from %v did not terminate", cell.Coord)
			}
			off, ok := f.Direction(cur)
			if !ok {
				return // target or local minimum
			}
			cur = cur.Add(off)
		}
	})
}

func TestHostileCellsBecomeTargets(t *testing.T) {
	g := uniformGrid(12, 12)
	enemy := hexmap.Coord{Col: 9, Row: 9}
	g.CellAt(enemy).ClaimSlot(1, 1)

	f := New(0)
	// No explicit targets at all: the enemy unit alone shapes the field.
	f.Calculate(g, nil)

	if got := f.Cost(enemy); got != 0 {
		t.Fatalf("hostile cell cost = %v, want 0", got)
	}
	far := hexmap.Coord{Col: 1, Row: 9}
	if got, want := f.Cost(far), float64(hexmap.Distance(far, enemy)); got != want {
		t.Fatalf("cost at %v = %v, want %v", far, got, want)
	}
	// The enemy's own field sees nothing hostile and stays empty.
	ef := New(1)
	ef.Calculate(g, nil)
	if got := ef.Cost(far); got != hexmap.Impassable {
		t.Fatalf("enemy field cost = %v, want Impassable", got)
	}
}

func TestEnemyStructureAttracts(t *testing.T) {
	g := uniformGrid(10, 10)
	site := hexmap.Coord{Col: 7, Row: 2}
	g.CellAt(site).SetStructure(&hexmap.Structure{Owner: 1, HP: 100, MaxHP: 100})

	f := New(0)
	f.Calculate(g, nil)
	if got := f.Cost(site); got != 0 {
		t.Fatalf("enemy structure cost = %v, want 0", got)
	}
	if next := f.NextCell(hexmap.Coord{Col: 5, Row: 2}, g); next == nil {
		t.Fatal("no direction toward enemy structure")
	}
}

func TestUnreachableStaysImpassable(t *testing.T) {
	// Water column splits the map; the far side never reaches the target.
	g := hexmap.NewGrid(hexmap.DefaultParams())
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			terrain := hexmap.TerrainGrass
			if col == 4 {
				terrain = hexmap.TerrainWater
			}
			c := hexmap.Coord{Col: col, Row: row}
			x, y := c.WorldPos()
			g.AddCell(c, terrain, x, y)
		}
	}
	g.Finalize()

	f := New(0)
	f.Calculate(g, map[hexmap.Coord]float64{{Col: 1, Row: 1}: 0})

	if got := f.Cost(hexmap.Coord{Col: 6, Row: 1}); got != hexmap.Impassable {
		t.Fatalf("cost across water = %v, want Impassable", got)
	}
	if _, ok := f.Direction(hexmap.Coord{Col: 6, Row: 1}); ok {
		t.Fatal("unreachable cell has a direction")
	}
	if got := f.Cost(hexmap.Coord{Col: 4, Row: 1}); got != hexmap.Impassable {
		t.Fatalf("water cell cost = %v, want Impassable", got)
	}
}

func TestBlockedCellStillGetsDirection(t *testing.T) {
	g := uniformGrid(8, 8)
	jammed := g.CellAt(hexmap.Coord{Col: 4, Row: 4})
	for i := 0; i < hexmap.SlotCapacity; i++ {
		jammed.ClaimSlot(hexmap.AgentID(i+1), 0)
	}

	f := New(0)
	f.Calculate(g, map[hexmap.Coord]float64{{Col: 0, Row: 4}: 0})

	// The jammed cell is expensive but materialized, and a unit standing
	// on it still gets a way out.
	if _, ok := f.Direction(hexmap.Coord{Col: 4, Row: 4}); !ok {
		t.Fatal("jammed cell has no direction")
	}
	// Its cost reflects the density penalty paid to enter it.
	if got := f.Cost(hexmap.Coord{Col: 4, Row: 4}); got <= 4 {
		t.Fatalf("jammed cell cost = %v, want above plain distance", got)
	}
}

func TestTieBreakDeterministic(t *testing.T) {
	for run := 0; run < 5; run++ {
		g := uniformGrid(9, 9)
		f := New(0)
		f.Calculate(g, map[hexmap.Coord]float64{{Col: 4, Row: 4}: 0})
		// (4,2) has two equally cheap descend neighbors; canonical order
		// picks SW before SE on an even row.
		off, ok := f.Direction(hexmap.Coord{Col: 4, Row: 2})
		if !ok {
			t.Fatal("no direction at tied cell")
		}
		if off != (hexmap.Offset{DCol: -1, DRow: 1}) {
			t.Fatalf("run %d: tie broke to %v", run, off)
		}
	}
}

func TestNextCellAtTarget(t *testing.T) {
	g := uniformGrid(5, 5)
	f := New(0)
	target := hexmap.Coord{Col: 2, Row: 2}
	f.Calculate(g, map[hexmap.Coord]float64{target: 0})
	if next := f.NextCell(target, g); next != nil {
		t.Fatalf("target has next cell %v", next.Coord)
	}
	if next := f.NextCell(hexmap.Coord{Col: 0, Row: 0}, g); next == nil {
		t.Fatal("reachable cell has no next cell")
	}
}

func TestNilFieldQueries(t *testing.T) {
	g := uniformGrid(3, 3)
	var f *Field
	c := hexmap.Coord{Col: 1, Row: 1}
	if got := f.Cost(c); got != hexmap.Impassable {
		t.Fatalf("nil field cost = %v, want Impassable", got)
	}
	if _, ok := f.Direction(c); ok {
		t.Fatal("nil field returned a direction")
	}
	if next := f.NextCell(c, g); next != nil {
		t.Fatalf("nil field returned next cell %v", next.Coord)
	}
}

func TestRegistrySwapIsAtomic(t *testing.T) {
	g := uniformGrid(10, 10)
	reg := NewRegistry(g, []hexmap.Faction{0}, 2.0, func(hexmap.Faction) map[hexmap.Coord]float64 {
		return map[hexmap.Coord]float64{{Col: 9, Row: 9}: 0}
	})

	before := reg.Field(0)
	if got := before.Cost(hexmap.Coord{Col: 0, Row: 0}); got != hexmap.Impassable {
		t.Fatalf("empty field cost = %v, want Impassable", got)
	}

	reg.Tick(1.0) // below interval: no rebuild
	if reg.Field(0) != before {
		t.Fatal("field swapped before interval elapsed")
	}
	reg.Tick(1.0) // crosses interval
	after := reg.Field(0)
	if after == before {
		t.Fatal("field not swapped after interval")
	}
	// A reader that kept the old handle still sees the old complete view.
	if got := before.Cost(hexmap.Coord{Col: 0, Row: 0}); got != hexmap.Impassable {
		t.Fatal("old field mutated by recompute")
	}
	if got := after.Cost(hexmap.Coord{Col: 9, Row: 9}); got != 0 {
		t.Fatalf("new field target cost = %v", got)
	}
}
