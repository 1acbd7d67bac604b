package hexmap

import "testing"

func testGrid(w, h int, terrain TerrainType) *Grid {
	g := NewGrid(DefaultParams())
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			c := Coord{col, row}
			x, y := c.WorldPos()
			g.AddCell(c, terrain, x, y)
		}
	}
	g.Finalize()
	return g
}

func TestFlowCostHostileOverridesEverything(t *testing.T) {
	g := testGrid(4, 4, TerrainRock)
	c := g.CellAt(Coord{1, 1})

	// Enemy unit on expensive terrain: still a free attack target.
	if _, ok := c.ClaimSlot(7, Faction(1)); !ok {
		t.Fatal("claim failed")
	}
	if got := c.FlowCost(Faction(0)); got != 0 {
		t.Fatalf("FlowCost with enemy unit = %v, want 0", got)
	}
	// Same cell seen by the owning faction pays terrain plus density.
	want := 2.0 + 1*g.Params().DensityMultiplier
	if got := c.FlowCost(Faction(1)); got != want {
		t.Fatalf("FlowCost for owner = %v, want %v", got, want)
	}

	// Completed enemy structure is also an attack target.
	c2 := g.CellAt(Coord{2, 2})
	c2.SetStructure(&Structure{Owner: Faction(1), HP: 100, MaxHP: 100})
	if got := c2.FlowCost(Faction(0)); got != 0 {
		t.Fatalf("FlowCost with enemy structure = %v, want 0", got)
	}
	// An unfinished enemy structure is not hostile yet.
	c2.SetStructure(&Structure{Owner: Faction(1), UnderConstruction: true})
	if got := c2.FlowCost(Faction(0)); got != 2.0 {
		t.Fatalf("FlowCost with enemy site = %v, want 2", got)
	}
}

func TestFlowCostDensity(t *testing.T) {
	g := testGrid(12, 12, TerrainGrass)
	c := g.CellAt(Coord{10, 10})
	for i := 0; i < 3; i++ {
		if _, ok := c.ClaimSlot(AgentID(i+1), Faction(0)); !ok {
			t.Fatal("claim failed")
		}
	}
	// Base 1 plus 3 friendly occupants at multiplier 5.
	if got := c.FlowCost(Faction(0)); got != 16.0 {
		t.Fatalf("FlowCost = %v, want 16", got)
	}
}

func TestFlowCostUnwalkable(t *testing.T) {
	g := testGrid(4, 4, TerrainWater)
	c := g.CellAt(Coord{1, 1})
	if got := c.FlowCost(Faction(0)); got != Impassable {
		t.Fatalf("FlowCost on water = %v, want Impassable", got)
	}
}

func TestFlowCostRoadOverWater(t *testing.T) {
	g := testGrid(4, 4, TerrainWater)
	c := g.CellAt(Coord{1, 1})
	c.SetRoad(&RoadState{HP: 50, MaxHP: 50})
	if got := c.FlowCost(Faction(0)); got != g.Params().RoadCost {
		t.Fatalf("FlowCost on bridge = %v, want %v", got, g.Params().RoadCost)
	}
	// A road still being built does not carry anyone.
	c.SetRoad(&RoadState{UnderConstruction: true})
	if got := c.FlowCost(Faction(0)); got != Impassable {
		t.Fatalf("FlowCost on road site over water = %v, want Impassable", got)
	}
}

func TestFlowCostFriendlyStructureBlocks(t *testing.T) {
	g := testGrid(4, 4, TerrainGrass)
	c := g.CellAt(Coord{1, 1})
	c.SetStructure(&Structure{Owner: Faction(0)})
	if got := c.FlowCost(Faction(0)); got != Impassable {
		t.Fatalf("FlowCost with friendly structure = %v, want Impassable", got)
	}
	// Even a road underneath does not open a finished friendly building.
	c.SetRoad(&RoadState{HP: 50, MaxHP: 50})
	if got := c.FlowCost(Faction(0)); got != Impassable {
		t.Fatalf("FlowCost with friendly structure on road = %v, want Impassable", got)
	}
	// Under construction it is still passable ground.
	c.SetStructure(&Structure{Owner: Faction(0), UnderConstruction: true})
	if got := c.FlowCost(Faction(0)); got != g.Params().RoadCost {
		t.Fatalf("FlowCost over site on road = %v, want road cost", got)
	}
}

func TestClaimReleaseInverse(t *testing.T) {
	g := testGrid(3, 3, TerrainGrass)
	c := g.CellAt(Coord{1, 1})
	slot, ok := c.ClaimSlot(1, Faction(0))
	if !ok || slot != 0 {
		t.Fatalf("first claim = (%d, %v), want (0, true)", slot, ok)
	}
	c.ReleaseSlot(slot)
	slot2, ok := c.ClaimSlot(2, Faction(0))
	if !ok || slot2 != 0 {
		t.Fatalf("re-claim by another agent = (%d, %v), want (0, true)", slot2, ok)
	}
}

func TestClaimCapacity(t *testing.T) {
	g := testGrid(3, 3, TerrainGrass)
	c := g.CellAt(Coord{1, 1})
	for i := 0; i < SlotCapacity; i++ {
		slot, ok := c.ClaimSlot(AgentID(i+1), Faction(0))
		if !ok || slot != i {
			t.Fatalf("claim %d = (%d, %v)", i, slot, ok)
		}
	}
	if _, ok := c.ClaimSlot(99, Faction(0)); ok {
		t.Fatal("seventh claim succeeded on a full cell")
	}
	// Free the middle slot: the ring index is reused, not appended.
	c.ReleaseSlot(3)
	slot, ok := c.ClaimSlot(99, Faction(0))
	if !ok || slot != 3 {
		t.Fatalf("claim after release = (%d, %v), want (3, true)", slot, ok)
	}
}

func TestClaimBlockedByCompletedStructure(t *testing.T) {
	g := testGrid(3, 3, TerrainGrass)
	c := g.CellAt(Coord{1, 1})
	c.SetStructure(&Structure{Owner: Faction(0)})
	if _, ok := c.ClaimSlot(1, Faction(0)); ok {
		t.Fatal("claim succeeded on a completed structure")
	}
	c.SetStructure(&Structure{Owner: Faction(0), UnderConstruction: true})
	if _, ok := c.ClaimSlot(1, Faction(0)); !ok {
		t.Fatal("claim failed on an unfinished structure")
	}
}

func TestBuilderOccupancy(t *testing.T) {
	g := testGrid(3, 3, TerrainGrass)
	c := g.CellAt(Coord{1, 1})

	// Builders ignore structures and slot capacity entirely.
	c.SetStructure(&Structure{Owner: Faction(0)})
	for i := 0; i < 10; i++ {
		if !c.AddBuilder(AgentID(100+i), Faction(0)) {
			t.Fatalf("builder %d rejected", i)
		}
	}
	if n := len(c.Builders()); n != 10 {
		t.Fatalf("builder count = %d, want 10", n)
	}
	c.RemoveBuilder(100)
	if n := len(c.Builders()); n != 9 {
		t.Fatalf("builder count after remove = %d, want 9", n)
	}

	// Enemy units are the one thing that stops a builder.
	c2 := g.CellAt(Coord{2, 1})
	c2.ClaimSlot(1, Faction(1))
	if c2.AddBuilder(200, Faction(0)) {
		t.Fatal("builder entered a cell held by enemy units")
	}
	// Snapshot restore bypasses the enemy check: the builder may have
	// been on the cell before the enemy unit claimed its slot.
	c2.RestoreBuilder(200, Faction(0))
	if b := c2.Builders(); len(b) != 1 || b[200] != Faction(0) {
		t.Fatalf("restored builder missing: %v", b)
	}
}

func TestTakeDamage(t *testing.T) {
	g := testGrid(3, 3, TerrainGrass)
	c := g.CellAt(Coord{1, 1})
	c.SetStructure(&Structure{Owner: Faction(1), HP: 30, MaxHP: 30})
	if c.TakeDamage(10) {
		t.Fatal("structure destroyed too early")
	}
	if !c.TakeDamage(25) {
		t.Fatal("structure survived lethal damage")
	}
	if c.Structure() != nil {
		t.Fatal("destroyed structure not cleared")
	}

	c.SetRoad(&RoadState{HP: 10, MaxHP: 10})
	if !c.TakeDamage(10) {
		t.Fatal("road survived lethal damage")
	}
	if c.Road() != nil {
		t.Fatal("destroyed road not cleared")
	}
}

func TestResourceRequests(t *testing.T) {
	r := &RoadState{UnderConstruction: true, PendingResources: 10, InTransitResources: 4}
	if got := r.ResourceRequest(); got != 6 {
		t.Fatalf("road request = %d, want 6", got)
	}
	s := &Structure{UnderConstruction: true, PendingResources: 3, InTransitResources: 5}
	if got := s.ResourceRequest(); got != 0 {
		t.Fatalf("structure request = %d, want 0", got)
	}
}
