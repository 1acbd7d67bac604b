package flowfield

import (
	"sync"

	"github.com/hexforge/rts-core/engine/hexmap"
)

// TargetFunc supplies the explicit seed targets for a faction at recompute
// time, for example an attack-move rally cell. Hostile cells are added by
// the solver itself, so returning nil is the common case.
type TargetFunc func(hexmap.Faction) map[hexmap.Coord]float64

// Registry owns the live field per faction. Recomputation is double
// buffered: a new field is calculated off to the side and swapped in under
// the lock, so readers always see either the previous complete field or
// the next one. Between recomputes the field is deliberately stale with
// respect to unit density; that trade-off is part of the design.
type Registry struct {
	grid     *hexmap.Grid
	interval float64
	targets  TargetFunc

	mu      sync.RWMutex
	fields  map[hexmap.Faction]*Field
	elapsed float64
}

// NewRegistry creates a registry for the given factions with empty fields.
// interval is the recompute period in seconds.
func NewRegistry(g *hexmap.Grid, factions []hexmap.Faction, interval float64, targets TargetFunc) *Registry {
	r := &Registry{
		grid:     g,
		interval: interval,
		targets:  targets,
		fields:   make(map[hexmap.Faction]*Field, len(factions)),
	}
	for _, f := range factions {
		r.fields[f] = New(f)
	}
	return r
}

// Field returns the current complete field for a faction. The returned
// field is immutable; callers may hold it across the next swap and keep
// reading a consistent, if stale, view.
func (r *Registry) Field(f hexmap.Faction) *Field {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fields[f]
}

// Tick advances the recompute timer and rebuilds all fields when the
// interval elapses.
func (r *Registry) Tick(dt float64) {
	r.elapsed += dt
	if r.elapsed < r.interval {
		return
	}
	r.elapsed = 0
	r.RecomputeAll()
}

// RecomputeAll rebuilds every faction's field immediately.
func (r *Registry) RecomputeAll() {
	r.mu.RLock()
	factions := make([]hexmap.Faction, 0, len(r.fields))
	for f := range r.fields {
		factions = append(factions, f)
	}
	r.mu.RUnlock()

	fresh := make(map[hexmap.Faction]*Field, len(factions))
	for _, f := range factions {
		field := New(f)
		var seeds map[hexmap.Coord]float64
		if r.targets != nil {
			seeds = r.targets(f)
		}
		field.Calculate(r.grid, seeds)
		fresh[f] = field
	}

	r.mu.Lock()
	for f, field := range fresh {
		r.fields[f] = field
	}
	r.mu.Unlock()
}
