package hexmap

import (
	"math"
	"sync"
)

// AgentID is a unique identifier for units and builders.
type AgentID uint64

// Faction identifies an owning player. FactionNone marks neutral state.
type Faction int

const FactionNone Faction = -1

// SlotCapacity is the fixed number of formation positions per cell.
const SlotCapacity = 6

// Impassable is the cost sentinel for cells no finite path may cross. It is
// larger than any attainable path cost but still well inside float64 range
// so additions never overflow.
const Impassable = 1e20

// TerrainType defines the terrain class of a cell.
type TerrainType uint8

const (
	TerrainGrass TerrainType = iota
	TerrainSand
	TerrainForest
	TerrainRock
	TerrainWater
	TerrainDeepWater
)

// TerrainCost returns the baseline movement cost for a terrain class.
// Unwalkable terrain still has a nominal cost: roads built over it use the
// road cost instead, so the value only matters for road-planning paths.
func TerrainCost(t TerrainType) float64 {
	switch t {
	case TerrainForest:
		return 1.5
	case TerrainSand:
		return 1.3
	case TerrainRock:
		return 2.0
	case TerrainWater, TerrainDeepWater:
		return 4.0
	default:
		return 1.0
	}
}

// TerrainWalkable reports whether units can enter a terrain class without a
// road overlay.
func TerrainWalkable(t TerrainType) bool {
	return t != TerrainWater && t != TerrainDeepWater
}

// SlotOffset returns the sub-cell world offset of a formation slot. Slots
// form a fixed ring around the cell center; the index order matches the
// canonical neighbor direction order.
func SlotOffset(slot int) (dx, dy float64) {
	const radius = 0.28
	angle := float64(slot) * math.Pi / 3
	return radius * math.Cos(angle), radius * math.Sin(angle)
}

// SlotEntry is one formation position. A zero ID means the slot is free.
type SlotEntry struct {
	ID      AgentID
	Faction Faction
}

// RoadState is the road overlay on a cell. A completed road fixes the
// traversal cost and makes the cell passable regardless of base terrain
// (bridges over water).
type RoadState struct {
	UnderConstruction  bool
	HP                 int
	MaxHP              int
	PendingResources   int // resources still required to finish
	InTransitResources int // carried by builders currently en route
	Builders           map[AgentID]bool
}

// ResourceRequest returns how many more resources the economy should
// dispatch: what is still pending minus what is already on the way.
func (r *RoadState) ResourceRequest() int {
	n := r.PendingResources - r.InTransitResources
	if n < 0 {
		return 0
	}
	return n
}

// Structure is a building occupying a cell.
type Structure struct {
	Owner              Faction
	UnderConstruction  bool
	HP                 int
	MaxHP              int
	PendingResources   int
	InTransitResources int
}

// ResourceRequest returns the outstanding construction resource demand.
func (s *Structure) ResourceRequest() int {
	n := s.PendingResources - s.InTransitResources
	if n < 0 {
		return 0
	}
	return n
}

// Cell is the per-hex mutable state. Cells are created once at map
// generation and live for the whole match.
type Cell struct {
	Coord    Coord
	Terrain  TerrainType
	BaseCost float64
	Walkable bool

	// World-space center, supplied by map generation.
	WorldX, WorldY float64

	// Wired once by Grid.Finalize, canonical order, boundary cells have
	// fewer than six entries.
	neighbors []*Cell

	params *Params

	mu       sync.Mutex
	road     *RoadState
	structure *Structure
	slots    [SlotCapacity]SlotEntry
	builders map[AgentID]Faction
}

// Neighbors returns the adjacent cells in canonical order.
func (c *Cell) Neighbors() []*Cell {
	return c.neighbors
}

// Road returns the road overlay, or nil.
func (c *Cell) Road() *RoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.road
}

// SetRoad installs or clears the road overlay. Called by the construction
// subsystem, serialized by the simulation tick.
func (c *Cell) SetRoad(r *RoadState) {
	c.mu.Lock()
	c.road = r
	c.mu.Unlock()
}

// Structure returns the occupying structure, or nil.
func (c *Cell) Structure() *Structure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.structure
}

// SetStructure installs or clears the occupying structure.
func (c *Cell) SetStructure(s *Structure) {
	c.mu.Lock()
	c.structure = s
	c.mu.Unlock()
}

// hasCompletedRoad reports a finished road overlay. Caller holds mu.
func (c *Cell) hasCompletedRoad() bool {
	return c.road != nil && !c.road.UnderConstruction
}

// Slots returns a copy of the formation slot array.
func (c *Cell) Slots() [SlotCapacity]SlotEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots
}

// UnitCount returns how many formation slots are held by the given faction.
func (c *Cell) UnitCount(f Faction) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unitCountLocked(f)
}

func (c *Cell) unitCountLocked(f Faction) int {
	n := 0
	for _, s := range c.slots {
		if s.ID != 0 && s.Faction == f {
			n++
		}
	}
	return n
}

// HasEnemyUnits reports whether any formation slot is held by a different
// faction. This is the only blocking check builders are subject to.
func (c *Cell) HasEnemyUnits(f Faction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasEnemyUnitsLocked(f)
}

func (c *Cell) hasEnemyUnitsLocked(f Faction) bool {
	for _, s := range c.slots {
		if s.ID != 0 && s.Faction != f {
			return true
		}
	}
	return false
}

// IsHostileTo reports whether the cell contains enemy presence that should
// attract the faction's flow field: enemy units, or a completed enemy
// structure. Structures still under construction do not count.
func (c *Cell) IsHostileTo(f Faction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasEnemyUnitsLocked(f) {
		return true
	}
	return c.structure != nil && !c.structure.UnderConstruction && c.structure.Owner != f
}

// FlowCost is the dynamic traversal cost consumed by the flow field solver
// for military units of the given faction. Evaluation order matters;
// the first matching rule wins.
func (c *Cell) FlowCost(f Faction) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Enemy presence is a free-to-enter attack target: it pulls the whole
	// field toward conflict regardless of terrain.
	if c.hasEnemyUnitsLocked(f) {
		return 0
	}
	if c.structure != nil && !c.structure.UnderConstruction && c.structure.Owner != f {
		return 0
	}

	friendlyBlock := c.structure != nil && !c.structure.UnderConstruction && c.structure.Owner == f

	if c.hasCompletedRoad() {
		if friendlyBlock {
			return Impassable
		}
		return c.params.RoadCost + float64(c.unitCountLocked(f))*c.params.DensityMultiplier
	}

	if !c.Walkable || friendlyBlock {
		return Impassable
	}

	return c.BaseCost + float64(c.unitCountLocked(f))*c.params.DensityMultiplier
}

// Traversable reports whether a path may pass through this cell at all:
// walkable terrain or a completed road.
func (c *Cell) Traversable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Walkable || c.hasCompletedRoad()
}

// ClaimSlot reserves the first free formation slot in ring order. It fails
// when a completed structure occupies the cell or all slots are held.
func (c *Cell) ClaimSlot(id AgentID, f Faction) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.structure != nil && !c.structure.UnderConstruction {
		return 0, false
	}
	for i := range c.slots {
		if c.slots[i].ID == 0 {
			c.slots[i] = SlotEntry{ID: id, Faction: f}
			return i, true
		}
	}
	return 0, false
}

// RestoreSlot places an agent into a specific slot index when rebuilding
// occupancy from a snapshot. Claim order is not replayed, so the exact
// ring positions must be reinstated directly.
func (c *Cell) RestoreSlot(slot int, id AgentID, f Faction) {
	if slot < 0 || slot >= SlotCapacity {
		return
	}
	c.mu.Lock()
	c.slots[slot] = SlotEntry{ID: id, Faction: f}
	c.mu.Unlock()
}

// ReleaseSlot frees a formation slot unconditionally.
func (c *Cell) ReleaseSlot(slot int) {
	if slot < 0 || slot >= SlotCapacity {
		return
	}
	c.mu.Lock()
	c.slots[slot] = SlotEntry{}
	c.mu.Unlock()
}

// AddBuilder registers a builder occupant. Builders never contend with
// formation slot capacity and only enemy units block them.
func (c *Cell) AddBuilder(id AgentID, f Faction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasEnemyUnitsLocked(f) {
		return false
	}
	if c.builders == nil {
		c.builders = make(map[AgentID]Faction)
	}
	c.builders[id] = f
	return true
}

// RestoreBuilder reinstates a builder occupant when rebuilding occupancy
// from a snapshot. Unlike AddBuilder it never refuses: a builder can
// coexist with enemy units when the enemy claimed its slot after the
// builder arrived, and restore must reproduce that state exactly.
func (c *Cell) RestoreBuilder(id AgentID, f Faction) {
	c.mu.Lock()
	if c.builders == nil {
		c.builders = make(map[AgentID]Faction)
	}
	c.builders[id] = f
	c.mu.Unlock()
}

// RemoveBuilder drops a builder occupant.
func (c *Cell) RemoveBuilder(id AgentID) {
	c.mu.Lock()
	delete(c.builders, id)
	c.mu.Unlock()
}

// Builders returns a snapshot of the builder occupant set.
func (c *Cell) Builders() map[AgentID]Faction {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[AgentID]Faction, len(c.builders))
	for id, f := range c.builders {
		out[id] = f
	}
	return out
}

// TakeDamage applies damage to the structure or road on the cell, road
// only when no structure is present. It returns true when the hit
// destroyed the occupant, which is then cleared.
func (c *Cell) TakeDamage(amount int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.structure != nil {
		c.structure.HP -= amount
		if c.structure.HP <= 0 {
			c.structure = nil
			return true
		}
		return false
	}
	if c.road != nil {
		c.road.HP -= amount
		if c.road.HP <= 0 {
			c.road = nil
			return true
		}
	}
	return false
}
