// Package occupancy implements the slot-claim protocol that lets agents
// traverse the grid without overlapping. Military units reserve one of six
// fixed formation slots per cell; builders use a separate uncapped
// occupant set and never contend with slot capacity.
package occupancy

import (
	"github.com/hexforge/rts-core/engine/hexmap"
)

// Coordinator mediates every slot claim and release. Claims are
// linearizable per cell through the cell's own lock; no global lock is
// needed because an agent only ever touches its current and destination
// cells.
type Coordinator struct {
	grid *hexmap.Grid
}

// NewCoordinator creates a coordinator for a finalized grid.
func NewCoordinator(g *hexmap.Grid) *Coordinator {
	return &Coordinator{grid: g}
}

// Claim reserves a formation slot on a cell for a unit. It fails when the
// cell carries a completed structure or all slots are held; the caller
// retries on its next idle tick.
func (o *Coordinator) Claim(cell *hexmap.Cell, id hexmap.AgentID, f hexmap.Faction) (int, bool) {
	if cell == nil {
		return 0, false
	}
	return cell.ClaimSlot(id, f)
}

// Release frees a formation slot unconditionally.
func (o *Coordinator) Release(cell *hexmap.Cell, slot int) {
	if cell == nil {
		return
	}
	cell.ReleaseSlot(slot)
}

// Move performs the cell transition for a unit: claim the destination
// slot first, release the origin only on success. The origin slot is
// never freed while the claim could still fail, so no other agent can
// take the vacated position prematurely and the agent never holds zero
// slots.
func (o *Coordinator) Move(id hexmap.AgentID, f hexmap.Faction, from *hexmap.Cell, fromSlot int, to *hexmap.Cell) (int, bool) {
	slot, ok := o.Claim(to, id, f)
	if !ok {
		return 0, false
	}
	o.Release(from, fromSlot)
	return slot, true
}

// Register adds a builder to a cell's occupant set. Builders pass through
// friendly structures and friendly units freely; only enemy units block
// them.
func (o *Coordinator) Register(cell *hexmap.Cell, id hexmap.AgentID, f hexmap.Faction) bool {
	if cell == nil {
		return false
	}
	return cell.AddBuilder(id, f)
}

// Unregister removes a builder from a cell's occupant set.
func (o *Coordinator) Unregister(cell *hexmap.Cell, id hexmap.AgentID) {
	if cell == nil {
		return
	}
	cell.RemoveBuilder(id)
}
