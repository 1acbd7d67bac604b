// Package mapgen generates the initial hex grid from layered simplex
// noise. It is the map-generation collaborator of the movement core: it
// populates cells once, before the grid is finalized, and then steps out
// of the way.
package mapgen

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/hexforge/rts-core/engine/hexmap"
)

// Options controls terrain distribution.
type Options struct {
	Width, Height int
	Seed          int64

	// Noise thresholds on the [-1, 1] elevation output.
	WaterLevel    float64 // below: water
	DeepLevel     float64 // below: deep water
	MountainLevel float64 // above: rock

	// Moisture threshold separating forest from grass.
	ForestMoisture float64

	// Noise frequency per axis; smaller values make larger features.
	Scale float64
}

// DefaultOptions produces a mixed map with lakes and ridges.
func DefaultOptions(w, h int, seed int64) Options {
	return Options{
		Width: w, Height: h, Seed: seed,
		WaterLevel:     -0.35,
		DeepLevel:      -0.6,
		MountainLevel:  0.55,
		ForestMoisture: 0.3,
		Scale:          0.12,
	}
}

// Generate builds and finalizes a grid.
func Generate(opts Options, params hexmap.Params) *hexmap.Grid {
	elevation := opensimplex.NewNormalized(opts.Seed)
	moisture := opensimplex.NewNormalized(opts.Seed + 1)

	g := hexmap.NewGrid(params)
	for row := 0; row < opts.Height; row++ {
		for col := 0; col < opts.Width; col++ {
			c := hexmap.Coord{Col: col, Row: row}
			x, y := c.WorldPos()

			// Normalized noise is in [0, 1]; recenter to [-1, 1] so the
			// threshold options read naturally.
			e := elevation.Eval2(x*opts.Scale, y*opts.Scale)*2 - 1
			m := moisture.Eval2(x*opts.Scale, y*opts.Scale)*2 - 1

			terrain := hexmap.TerrainGrass
			switch {
			case e < opts.DeepLevel:
				terrain = hexmap.TerrainDeepWater
			case e < opts.WaterLevel:
				terrain = hexmap.TerrainWater
			case e > opts.MountainLevel:
				terrain = hexmap.TerrainRock
			case m > opts.ForestMoisture:
				terrain = hexmap.TerrainForest
			case m < -0.5:
				terrain = hexmap.TerrainSand
			}
			g.AddCell(c, terrain, x, y)
		}
	}
	g.Finalize()
	return g
}
