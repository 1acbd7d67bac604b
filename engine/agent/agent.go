// Package agent implements the per-unit and per-builder movement state
// machines on top of the flow field and the occupancy protocol. Actuation
// and rendering live elsewhere; this package only decides and moves.
package agent

import (
	"sync/atomic"

	"github.com/hexforge/rts-core/engine/config"
	"github.com/hexforge/rts-core/engine/flowfield"
	"github.com/hexforge/rts-core/engine/hexmap"
	"github.com/hexforge/rts-core/engine/occupancy"
)

// State is the movement state of an agent.
type State uint8

const (
	StateIdle State = iota
	StateSeekingSlot
	StateMoving
	StateArrived
	StateStalled // builder gave up; pending refund and despawn
	StateDead
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSeekingSlot:
		return "seeking"
	case StateMoving:
		return "moving"
	case StateArrived:
		return "arrived"
	case StateStalled:
		return "stalled"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

var agentCounter uint64

// NextID generates a unique agent ID. IDs start at 1; zero marks a free
// slot.
func NextID() hexmap.AgentID {
	return hexmap.AgentID(atomic.AddUint64(&agentCounter, 1))
}

// Env bundles the injected dependencies every agent tick needs. Agents
// never reach for globals.
type Env struct {
	Grid      *hexmap.Grid
	Fields    *flowfield.Registry
	Occupancy *occupancy.Coordinator
	Tuning    config.Tuning
}

// moveCost is the plain traversal cost of entering a cell, used to derive
// interpolation speed: a completed road overrides terrain.
func moveCost(c *hexmap.Cell, roadCost float64) float64 {
	if r := c.Road(); r != nil && !r.UnderConstruction {
		return roadCost
	}
	return c.BaseCost
}

func speedOn(base, cost, floor float64) float64 {
	if cost < floor {
		cost = floor
	}
	return base / cost
}
