package agent

import (
	"testing"

	"github.com/hexforge/rts-core/engine/hexmap"
)

func TestBuilderDeliversAndCompletesRoad(t *testing.T) {
	env := testEnv(6, 1, 0)
	site := env.Grid.CellAt(hexmap.Coord{Col: 4, Row: 0})
	site.SetRoad(&hexmap.RoadState{
		UnderConstruction: true, MaxHP: 50,
		PendingResources: 10,
	})

	start := env.Grid.CellAt(hexmap.Coord{Col: 0, Row: 0})
	b, ok := SpawnBuilder(env, start, 0, env.Tuning.BuilderBaseSpeed)
	if !ok {
		t.Fatal("spawn failed")
	}
	path := env.Grid.FindPath(start.Coord, site.Coord, false)
	b.Assign(site, path, 10)

	if got := site.Road().InTransitResources; got != 10 {
		t.Fatalf("in-transit after assign = %d, want 10", got)
	}
	if got := site.Road().ResourceRequest(); got != 0 {
		t.Fatalf("request with load en route = %d, want 0", got)
	}

	for i := 0; i < 2000 && b.Site != nil; i++ {
		b.Tick(env, 0.05)
	}
	if b.Site != nil {
		t.Fatal("delivery never completed")
	}
	r := site.Road()
	if r.UnderConstruction {
		t.Fatal("road still under construction after full delivery")
	}
	if r.PendingResources != 0 || r.InTransitResources != 0 {
		t.Fatalf("accounting left pending=%d in-transit=%d", r.PendingResources, r.InTransitResources)
	}
	if r.HP != r.MaxHP {
		t.Fatalf("completed road HP = %d, want %d", r.HP, r.MaxHP)
	}
	if b.Cell.Coord != site.Coord {
		t.Fatalf("builder at %v, want on site", b.Cell.Coord)
	}
}

func TestBuilderPassesThroughFriendlyCongestion(t *testing.T) {
	env := testEnv(4, 1, 0)
	mid := env.Grid.CellAt(hexmap.Coord{Col: 1, Row: 0})
	for i := 0; i < hexmap.SlotCapacity; i++ {
		mid.ClaimSlot(hexmap.AgentID(100+i), 0)
	}
	mid.SetStructure(&hexmap.Structure{Owner: 0, UnderConstruction: true, PendingResources: 5})

	start := env.Grid.CellAt(hexmap.Coord{Col: 0, Row: 0})
	b, _ := SpawnBuilder(env, start, 0, 1.5)
	b.Assign(mid, env.Grid.FindPath(start.Coord, mid.Coord, false), 5)

	for i := 0; i < 400 && b.Site != nil; i++ {
		b.Tick(env, 0.05)
	}
	if b.Site != nil {
		t.Fatal("builder blocked by friendly units on the site")
	}
	if mid.Structure().UnderConstruction {
		t.Fatal("structure not completed")
	}
}

func TestBuilderStallsOutAndRefunds(t *testing.T) {
	env := testEnv(4, 1, 0, 1)
	block := env.Grid.CellAt(hexmap.Coord{Col: 1, Row: 0})
	block.ClaimSlot(999, 1) // enemy unit in the way

	site := env.Grid.CellAt(hexmap.Coord{Col: 3, Row: 0})
	site.SetStructure(&hexmap.Structure{Owner: 0, UnderConstruction: true, PendingResources: 8})

	start := env.Grid.CellAt(hexmap.Coord{Col: 0, Row: 0})
	b, _ := SpawnBuilder(env, start, 0, 1.5)
	b.Assign(site, env.Grid.FindPath(start.Coord, site.Coord, false), 8)
	if got := site.Structure().InTransitResources; got != 8 {
		t.Fatalf("in-transit = %d, want 8", got)
	}

	// Enough simulated time to cross the stall timeout.
	deadline := env.Tuning.BuilderStallTimeout + 2
	for elapsed := 0.0; elapsed < deadline && b.State != StateStalled; elapsed += 0.05 {
		b.Tick(env, 0.05)
	}
	if b.State != StateStalled {
		t.Fatalf("state = %v, want stalled", b.State)
	}
	if b.Refund != 8 {
		t.Fatalf("refund = %d, want 8", b.Refund)
	}
	// The rollback reopens the resource request.
	if got := site.Structure().InTransitResources; got != 0 {
		t.Fatalf("in-transit after stall = %d, want 0", got)
	}
	if got := site.Structure().ResourceRequest(); got != 8 {
		t.Fatalf("request after stall = %d, want 8", got)
	}
	if len(start.Builders()) != 0 {
		t.Fatal("stalled builder still registered on its cell")
	}
}

func TestBuilderKillMidTransitRollsBack(t *testing.T) {
	env := testEnv(5, 1, 0)
	site := env.Grid.CellAt(hexmap.Coord{Col: 4, Row: 0})
	site.SetRoad(&hexmap.RoadState{UnderConstruction: true, PendingResources: 6})

	start := env.Grid.CellAt(hexmap.Coord{Col: 0, Row: 0})
	b, _ := SpawnBuilder(env, start, 0, 1.5)
	b.Assign(site, env.Grid.FindPath(start.Coord, site.Coord, false), 6)

	// Advance into the first transit.
	for i := 0; i < 40 && b.State != StateMoving; i++ {
		b.Tick(env, 0.05)
	}
	if b.State != StateMoving {
		t.Fatal("builder never started moving")
	}
	b.Kill(env)
	if b.State != StateDead {
		t.Fatalf("state = %v, want dead", b.State)
	}
	if got := site.Road().InTransitResources; got != 0 {
		t.Fatalf("in-transit after kill = %d, want 0", got)
	}
	occupied := 0
	env.Grid.Cells(func(c *hexmap.Cell) { occupied += len(c.Builders()) })
	if occupied != 0 {
		t.Fatalf("dead builder still occupies %d cells", occupied)
	}
}
