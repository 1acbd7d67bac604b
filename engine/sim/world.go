// Package sim wires the grid, flow fields, occupancy, and agents into a
// fixed-tick simulation. All cell mutation happens on the tick goroutine;
// flow field queries are safe from anywhere.
package sim

import (
	"github.com/hexforge/rts-core/engine/agent"
	"github.com/hexforge/rts-core/engine/config"
	"github.com/hexforge/rts-core/engine/flowfield"
	"github.com/hexforge/rts-core/engine/hexmap"
	"github.com/hexforge/rts-core/engine/occupancy"
)

// World holds the complete simulation state.
type World struct {
	Grid      *hexmap.Grid
	Fields    *flowfield.Registry
	Occupancy *occupancy.Coordinator
	Players   *PlayerRegistry
	Events    *EventBus
	Tuning    config.Tuning

	Units    []*agent.Unit
	Builders []*agent.Builder

	TickCount uint64

	env *agent.Env
}

// NewWorld assembles a world over a finalized grid.
func NewWorld(g *hexmap.Grid, players *PlayerRegistry, tuning config.Tuning) *World {
	fields := flowfield.NewRegistry(g, players.Factions(), tuning.RecomputeInterval, nil)
	occ := occupancy.NewCoordinator(g)
	w := &World{
		Grid:      g,
		Fields:    fields,
		Occupancy: occ,
		Players:   players,
		Events:    NewEventBus(),
		Tuning:    tuning,
	}
	w.env = &agent.Env{
		Grid:      g,
		Fields:    fields,
		Occupancy: occ,
		Tuning:    tuning,
	}
	return w
}

// Env exposes the agent environment, mainly for tests and tooling.
func (w *World) Env() *agent.Env {
	return w.env
}

// SpawnUnit creates a unit on a cell. It fails when the cell cannot host
// another unit or the faction has no registered player.
func (w *World) SpawnUnit(coord hexmap.Coord, f hexmap.Faction) (*agent.Unit, bool) {
	cell := w.Grid.CellAt(coord)
	if cell == nil || w.Players.Get(f) == nil {
		return nil, false
	}
	u, ok := agent.SpawnUnit(w.env, cell, f, w.Tuning.UnitBaseSpeed)
	if !ok {
		return nil, false
	}
	w.Units = append(w.Units, u)
	w.Events.Emit(Event{Type: EvtUnitSpawned, Tick: w.TickCount, Payload: u.ID})
	return u, true
}

// SpawnBuilder creates a builder on a cell. Factions without a registered
// player are rejected, as in SpawnUnit.
func (w *World) SpawnBuilder(coord hexmap.Coord, f hexmap.Faction) (*agent.Builder, bool) {
	cell := w.Grid.CellAt(coord)
	if cell == nil || w.Players.Get(f) == nil {
		return nil, false
	}
	b, ok := agent.SpawnBuilder(w.env, cell, f, w.Tuning.BuilderBaseSpeed)
	if !ok {
		return nil, false
	}
	w.Builders = append(w.Builders, b)
	w.Events.Emit(Event{Type: EvtBuilderSpawned, Tick: w.TickCount, Payload: b.ID})
	return b, true
}

// DispatchBuilder routes a builder to a construction site with a resource
// load, using the one-off BFS path rather than the flow field. Routing
// crosses any terrain: the road network may extend over water later.
func (w *World) DispatchBuilder(b *agent.Builder, site hexmap.Coord, carrying int) bool {
	cell := w.Grid.CellAt(site)
	if cell == nil {
		return false
	}
	path := w.Grid.FindPath(b.Cell.Coord, site, false)
	if path == nil {
		return false
	}
	b.Assign(cell, path, carrying)
	return true
}

// KillUnit removes a unit, releasing whatever slot it holds.
func (w *World) KillUnit(u *agent.Unit) {
	u.Kill(w.env)
	w.Events.Emit(Event{Type: EvtUnitDied, Tick: w.TickCount, Payload: u.ID})
}

// Tick advances the whole simulation by dt seconds.
func (w *World) Tick(dt float64) {
	w.Fields.Tick(dt)

	for _, u := range w.Units {
		wasEngaged := u.Engaged
		u.Tick(w.env, dt)
		if u.Engaged && !wasEngaged {
			w.Events.Emit(Event{Type: EvtUnitEngaged, Tick: w.TickCount, Payload: u.ID})
		}
	}
	for _, b := range w.Builders {
		b.Tick(w.env, dt)
		if b.Completed != nil {
			t := EvtStructureCompleted
			if b.Completed.Structure() == nil {
				t = EvtRoadCompleted
			}
			w.Events.Emit(Event{Type: t, Tick: w.TickCount, Payload: b.Completed.Coord})
			b.Completed = nil
		}
	}

	w.reap()
	w.Events.Dispatch()
	w.TickCount++
}

// reap collects dead units and stalled or dead builders, settling refunds
// back to the owning player.
func (w *World) reap() {
	units := w.Units[:0]
	for _, u := range w.Units {
		if u.State == agent.StateDead {
			continue
		}
		units = append(units, u)
	}
	w.Units = units

	builders := w.Builders[:0]
	for _, b := range w.Builders {
		switch b.State {
		case agent.StateStalled:
			if p := w.Players.Get(b.Faction); p != nil {
				p.Credits += b.Refund
			}
			b.Refund = 0
			b.State = agent.StateDead
			w.Events.Emit(Event{Type: EvtBuilderStalled, Tick: w.TickCount, Payload: b.ID})
		case agent.StateDead:
			w.Events.Emit(Event{Type: EvtBuilderDied, Tick: w.TickCount, Payload: b.ID})
		default:
			builders = append(builders, b)
		}
	}
	w.Builders = builders
}
