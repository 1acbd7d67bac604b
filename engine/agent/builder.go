package agent

import (
	"github.com/hexforge/rts-core/engine/hexmap"
)

// Builder is a construction agent. It walks a fixed waypoint list toward a
// specific site rather than following a live flow field, carries resources
// that count as in-transit on the site, and gives up with a refund after a
// prolonged stall.
type Builder struct {
	ID      hexmap.AgentID
	Faction hexmap.Faction
	State   State

	BaseSpeed float64
	X, Y      float64

	Cell    *hexmap.Cell
	Path    []hexmap.Coord
	pathIdx int

	// Site is the construction target; Carrying is booked as in-transit
	// resources on it until delivered or rolled back.
	Site     *hexmap.Cell
	Carrying int

	// Refund holds the rolled-back resources after a stall, for the
	// economy layer to collect before despawn.
	Refund int

	// Completed is set when a delivery finished the construction on the
	// site; the simulation reads and clears it to raise the event.
	Completed *hexmap.Cell

	transitTo *hexmap.Cell
	progress  float64
	speed     float64
	fromX, fromY float64

	idleTimer  float64
	stallTimer float64
}

// SpawnBuilder places a builder on a cell and registers it as an occupant.
func SpawnBuilder(env *Env, cell *hexmap.Cell, faction hexmap.Faction, baseSpeed float64) (*Builder, bool) {
	id := NextID()
	if !env.Occupancy.Register(cell, id, faction) {
		return nil, false
	}
	b := &Builder{
		ID:        id,
		Faction:   faction,
		State:     StateIdle,
		BaseSpeed: baseSpeed,
		Cell:      cell,
		X:         cell.WorldX,
		Y:         cell.WorldY,
	}
	return b, true
}

// Assign gives the builder a delivery task: carry the given resources to
// the site along a path from Grid.FindPath. The load is booked as
// in-transit on the site immediately.
func (b *Builder) Assign(site *hexmap.Cell, path []hexmap.Coord, carrying int) {
	b.Site = site
	b.Path = path
	b.pathIdx = 0
	b.Carrying = carrying
	b.stallTimer = 0
	if carrying > 0 && site != nil {
		addInTransit(site, carrying)
	}
	// Skip the leading waypoint when it is the builder's own cell.
	if len(b.Path) > 0 && b.Path[0] == b.Cell.Coord {
		b.pathIdx = 1
	}
}

// Tick advances the builder by dt seconds.
func (b *Builder) Tick(env *Env, dt float64) {
	switch b.State {
	case StateMoving:
		b.advance(dt)
	case StateIdle, StateArrived:
		b.idleTimer += dt
		if b.idleTimer < env.Tuning.BuilderIdleCheck {
			return
		}
		elapsed := b.idleTimer
		b.idleTimer = 0
		b.step(env, elapsed)
	}
}

func (b *Builder) step(env *Env, elapsed float64) {
	if b.Site == nil {
		b.State = StateIdle
		return
	}
	if b.pathIdx >= len(b.Path) {
		b.deliver()
		return
	}

	next := env.Grid.CellAt(b.Path[b.pathIdx])
	if next == nil || next.HasEnemyUnits(b.Faction) {
		// Blocked. Builders have no rerouting of their own; they wait,
		// and after a configured stall they refund and despawn.
		b.stallTimer += elapsed
		if b.stallTimer >= env.Tuning.BuilderStallTimeout {
			b.stallOut(env)
		}
		return
	}

	// Register on the destination before leaving the origin, mirroring
	// the unit claim-then-release order.
	if !env.Occupancy.Register(next, b.ID, b.Faction) {
		b.stallTimer += elapsed
		if b.stallTimer >= env.Tuning.BuilderStallTimeout {
			b.stallOut(env)
		}
		return
	}
	env.Occupancy.Unregister(b.Cell, b.ID)
	b.stallTimer = 0

	b.transitTo = next
	b.progress = 0
	b.fromX, b.fromY = b.X, b.Y
	b.speed = speedOn(b.BaseSpeed, moveCost(next, env.Tuning.RoadCost), env.Tuning.SpeedCostFloor)
	b.State = StateMoving
}

func (b *Builder) advance(dt float64) {
	b.progress += b.speed * dt
	if b.progress >= 1 {
		b.Cell = b.transitTo
		b.transitTo = nil
		b.X, b.Y = b.Cell.WorldX, b.Cell.WorldY
		b.pathIdx++
		b.State = StateArrived
		return
	}
	b.X = b.fromX + (b.transitTo.WorldX-b.fromX)*b.progress
	b.Y = b.fromY + (b.transitTo.WorldY-b.fromY)*b.progress
}

// deliver hands the carried resources to the site and completes the
// construction when nothing remains pending.
func (b *Builder) deliver() {
	if b.Carrying > 0 && b.Site != nil {
		if settleDelivery(b.Site, b.Carrying) {
			b.Completed = b.Site
		}
	}
	b.Carrying = 0
	b.Site = nil
	b.Path = nil
	b.State = StateIdle
}

// stallOut rolls back the in-transit booking, records the refund, and
// leaves the grid. The owning simulation reaps the builder and returns
// Refund to the player's stock.
func (b *Builder) stallOut(env *Env) {
	if b.Carrying > 0 && b.Site != nil {
		removeInTransit(b.Site, b.Carrying)
		b.Refund = b.Carrying
		b.Carrying = 0
	}
	env.Occupancy.Unregister(b.Cell, b.ID)
	b.State = StateStalled
}

// Kill releases the builder's occupancy and rolls back any in-flight
// resource booking. Safe to call mid-transit.
func (b *Builder) Kill(env *Env) {
	if b.State == StateDead {
		return
	}
	if b.Carrying > 0 && b.Site != nil {
		removeInTransit(b.Site, b.Carrying)
		b.Refund = b.Carrying
		b.Carrying = 0
	}
	if b.transitTo != nil {
		env.Occupancy.Unregister(b.transitTo, b.ID)
		b.transitTo = nil
	}
	env.Occupancy.Unregister(b.Cell, b.ID)
	b.State = StateDead
}

// addInTransit books resources as on the way to whatever is under
// construction on the site cell.
func addInTransit(site *hexmap.Cell, n int) {
	if s := site.Structure(); s != nil && s.UnderConstruction {
		s.InTransitResources += n
		return
	}
	if r := site.Road(); r != nil && r.UnderConstruction {
		r.InTransitResources += n
	}
}

func removeInTransit(site *hexmap.Cell, n int) {
	if s := site.Structure(); s != nil && s.UnderConstruction {
		s.InTransitResources -= n
		if s.InTransitResources < 0 {
			s.InTransitResources = 0
		}
		return
	}
	if r := site.Road(); r != nil && r.UnderConstruction {
		r.InTransitResources -= n
		if r.InTransitResources < 0 {
			r.InTransitResources = 0
		}
	}
}

// settleDelivery moves delivered resources out of both pending and
// in-transit accounting and flips the construction to complete when the
// pending balance reaches zero. It reports whether this delivery finished
// the construction.
func settleDelivery(site *hexmap.Cell, n int) bool {
	if s := site.Structure(); s != nil && s.UnderConstruction {
		s.InTransitResources -= n
		if s.InTransitResources < 0 {
			s.InTransitResources = 0
		}
		s.PendingResources -= n
		if s.PendingResources <= 0 {
			s.PendingResources = 0
			s.UnderConstruction = false
			if s.HP < s.MaxHP {
				s.HP = s.MaxHP
			}
			return true
		}
		return false
	}
	if r := site.Road(); r != nil && r.UnderConstruction {
		r.InTransitResources -= n
		if r.InTransitResources < 0 {
			r.InTransitResources = 0
		}
		r.PendingResources -= n
		if r.PendingResources <= 0 {
			r.PendingResources = 0
			r.UnderConstruction = false
			if r.HP < r.MaxHP {
				r.HP = r.MaxHP
			}
			return true
		}
	}
	return false
}
