package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hexforge/rts-core/engine/hexmap"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default tuning invalid: %v", err)
	}
}

func TestGridParamsMatchDefaults(t *testing.T) {
	if got := Default().GridParams(); got != hexmap.DefaultParams() {
		t.Fatalf("default grid params = %+v, want %+v", got, hexmap.DefaultParams())
	}
}

func TestLoadOverridesPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := []byte("density_multiplier: 2.5\nrecompute_interval: 4\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	tn, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tn.DensityMultiplier != 2.5 {
		t.Fatalf("density_multiplier = %v, want 2.5", tn.DensityMultiplier)
	}
	if tn.RecomputeInterval != 4 {
		t.Fatalf("recompute_interval = %v, want 4", tn.RecomputeInterval)
	}
	// Untouched fields keep their defaults.
	if tn.TickRate != Default().TickRate {
		t.Fatalf("tick_rate = %v, want default", tn.TickRate)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("tick_rate: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("negative tick_rate accepted")
	}
}
