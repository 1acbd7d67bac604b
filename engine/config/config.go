// Package config holds the immutable simulation tuning constants. Values
// are fixed at load time and passed into constructors; nothing in the
// engine reads tuning from ambient state.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hexforge/rts-core/engine/hexmap"
)

// Tuning is the full set of simulation constants.
type Tuning struct {
	TickRate float64 `yaml:"tick_rate"` // simulation ticks per second

	// Grid cost model.
	RoadCost          float64 `yaml:"road_cost"`
	DensityMultiplier float64 `yaml:"density_multiplier"`

	// Flow field.
	RecomputeInterval float64 `yaml:"recompute_interval"` // seconds between field rebuilds

	// Movement.
	UnitIdleCheck  float64 `yaml:"unit_idle_check"`  // seconds between idle decision ticks
	UnitBaseSpeed  float64 `yaml:"unit_base_speed"`  // cells per second on cost-1 terrain
	SpeedCostFloor float64 `yaml:"speed_cost_floor"` // lower clamp on cost when deriving speed

	// Builders.
	BuilderBaseSpeed    float64 `yaml:"builder_base_speed"`
	BuilderIdleCheck    float64 `yaml:"builder_idle_check"`
	BuilderStallTimeout float64 `yaml:"builder_stall_timeout"` // seconds stuck before refund and despawn
}

// Default returns the shipped tuning values. The grid cost model comes
// from hexmap.DefaultParams so the two defaults cannot drift apart.
func Default() Tuning {
	params := hexmap.DefaultParams()
	return Tuning{
		TickRate:            20.0,
		RoadCost:            params.RoadCost,
		DensityMultiplier:   params.DensityMultiplier,
		RecomputeInterval:   2.0,
		UnitIdleCheck:       0.5,
		UnitBaseSpeed:       2.0,
		SpeedCostFloor:      0.5,
		BuilderBaseSpeed:    1.5,
		BuilderIdleCheck:    0.25,
		BuilderStallTimeout: 8.0,
	}
}

// GridParams projects the tuning onto the grid's cost model constants.
func (t Tuning) GridParams() hexmap.Params {
	return hexmap.Params{RoadCost: t.RoadCost, DensityMultiplier: t.DensityMultiplier}
}

// Load reads a tuning file. Fields missing from the file keep their
// default values.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects values the simulation cannot run with.
func (t Tuning) Validate() error {
	if t.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %v", t.TickRate)
	}
	if t.RoadCost < 0 || t.DensityMultiplier < 0 {
		return fmt.Errorf("costs must be non-negative")
	}
	if t.RecomputeInterval <= 0 {
		return fmt.Errorf("recompute_interval must be positive, got %v", t.RecomputeInterval)
	}
	if t.SpeedCostFloor <= 0 {
		return fmt.Errorf("speed_cost_floor must be positive, got %v", t.SpeedCostFloor)
	}
	return nil
}
