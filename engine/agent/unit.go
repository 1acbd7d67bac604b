package agent

import (
	"github.com/hexforge/rts-core/engine/hexmap"
)

// Unit is a military agent. It follows its faction's flow field one cell
// at a time, reserving a formation slot on every cell it enters.
type Unit struct {
	ID      hexmap.AgentID
	Faction hexmap.Faction
	State   State

	BaseSpeed float64

	// Interpolated world position for rendering.
	X, Y float64

	// Current residence. During a transition the reserved slot lives on
	// transitTo and the origin slot is already released.
	Cell *hexmap.Cell
	Slot int

	transitTo   *hexmap.Cell
	transitSlot int
	progress    float64
	speed       float64
	fromX, fromY float64

	// Engaged is set when an adjacent cell holds enemy units: the unit
	// halts instead of stepping in and the combat subsystem takes over.
	Engaged      bool
	EngageTarget *hexmap.Cell

	idleTimer float64
}

// SpawnUnit places a new unit on a cell, claiming a formation slot. It
// fails when the cell cannot host another unit.
func SpawnUnit(env *Env, cell *hexmap.Cell, faction hexmap.Faction, baseSpeed float64) (*Unit, bool) {
	id := NextID()
	slot, ok := env.Occupancy.Claim(cell, id, faction)
	if !ok {
		return nil, false
	}
	u := &Unit{
		ID:        id,
		Faction:   faction,
		State:     StateIdle,
		BaseSpeed: baseSpeed,
		Cell:      cell,
		Slot:      slot,
	}
	u.X, u.Y = slotPos(cell, slot)
	return u, true
}

// Tick advances the unit by dt seconds.
func (u *Unit) Tick(env *Env, dt float64) {
	switch u.State {
	case StateMoving:
		u.advance(dt)
	case StateIdle, StateArrived:
		u.idleTimer += dt
		if u.idleTimer < env.Tuning.UnitIdleCheck {
			return
		}
		u.idleTimer = 0
		u.decide(env)
	}
}

// decide runs one idle-check: ask the flow field for the next cell,
// attempt the slot transition, or stay put.
func (u *Unit) decide(env *Env) {
	u.State = StateSeekingSlot

	field := env.Fields.Field(u.Faction)
	next := field.NextCell(u.Cell.Coord, env.Grid)
	if next == nil {
		// Target, local minimum, or unreachable: nothing to do here.
		u.State = StateIdle
		return
	}

	// Direct enemy unit presence on the step target halts the approach:
	// the tile is attractive to the field but not enterable. The unit
	// flips into engagement instead.
	if next.HasEnemyUnits(u.Faction) {
		u.Engaged = true
		u.EngageTarget = next
		u.State = StateIdle
		return
	}
	u.Engaged = false
	u.EngageTarget = nil

	// Atomic claim-then-release: the origin slot is freed only once the
	// destination slot is secured.
	slot, ok := env.Occupancy.Move(u.ID, u.Faction, u.Cell, u.Slot, next)
	if !ok {
		// Tile full; retry on the next idle tick.
		u.State = StateIdle
		return
	}

	u.transitTo = next
	u.transitSlot = slot
	u.progress = 0
	u.fromX, u.fromY = u.X, u.Y
	u.speed = speedOn(u.BaseSpeed, next.FlowCost(u.Faction), env.Tuning.SpeedCostFloor)
	u.State = StateMoving
}

// advance interpolates the transit and finishes the transition on arrival.
func (u *Unit) advance(dt float64) {
	u.progress += u.speed * dt
	tx, ty := slotPos(u.transitTo, u.transitSlot)
	if u.progress >= 1 {
		u.Cell = u.transitTo
		u.Slot = u.transitSlot
		u.transitTo = nil
		u.X, u.Y = tx, ty
		u.State = StateArrived
		return
	}
	u.X = u.fromX + (tx-u.fromX)*u.progress
	u.Y = u.fromY + (ty-u.fromY)*u.progress
}

// Kill releases whatever slot the unit holds and marks it dead. Safe to
// call mid-transit.
func (u *Unit) Kill(env *Env) {
	if u.State == StateDead {
		return
	}
	if u.transitTo != nil {
		env.Occupancy.Release(u.transitTo, u.transitSlot)
		u.transitTo = nil
	} else {
		env.Occupancy.Release(u.Cell, u.Slot)
	}
	u.State = StateDead
}

// slotPos returns the world position of a formation slot on a cell.
func slotPos(c *hexmap.Cell, slot int) (float64, float64) {
	dx, dy := hexmap.SlotOffset(slot)
	return c.WorldX + dx, c.WorldY + dy
}
