package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/hexforge/rts-core/engine/hexmap"
	"github.com/hexforge/rts-core/engine/sim"
)

// TerrainColors maps terrain types to colors (debug view, no sprites)
var TerrainColors = map[hexmap.TerrainType]color.RGBA{
	hexmap.TerrainGrass:     {34, 139, 34, 255},
	hexmap.TerrainSand:      {238, 214, 175, 255},
	hexmap.TerrainForest:    {0, 100, 0, 255},
	hexmap.TerrainRock:      {128, 128, 128, 255},
	hexmap.TerrainWater:     {30, 144, 255, 255},
	hexmap.TerrainDeepWater: {0, 0, 139, 255},
}

var factionColors = []color.RGBA{
	{220, 40, 40, 255},
	{40, 90, 220, 255},
	{220, 200, 40, 255},
	{40, 200, 120, 255},
}

// FactionColor returns a stable display color for a faction.
func FactionColor(f hexmap.Faction) color.RGBA {
	if f < 0 {
		return color.RGBA{200, 200, 200, 255}
	}
	return factionColors[int(f)%len(factionColors)]
}

// HexRenderer draws the debug view of a simulation: terrain, roads,
// structures, flow directions, and agents.
type HexRenderer struct {
	Camera *Camera

	// ShowField selects which faction's flow field to overlay; nil hides
	// the overlay.
	ShowField *hexmap.Faction
	ShowCosts bool
}

// NewHexRenderer creates a renderer with its own camera.
func NewHexRenderer(screenW, screenH int) *HexRenderer {
	return &HexRenderer{Camera: NewCamera(screenW, screenH)}
}

// hexRadius is the corner radius of a drawn hex in world units.
const hexRadius = 0.56

var costFace = text.NewGoXFace(basicfont.Face7x13)

// Draw renders one frame of the world onto screen.
func (r *HexRenderer) Draw(screen *ebiten.Image, w *sim.World) {
	w.Grid.Cells(func(c *hexmap.Cell) {
		r.drawCell(screen, c)
	})

	if r.ShowField != nil {
		r.drawField(screen, w, *r.ShowField)
	}

	for _, u := range w.Units {
		r.drawAgentDot(screen, u.X, u.Y, FactionColor(u.Faction), 0.16)
	}
	for _, b := range w.Builders {
		clr := FactionColor(b.Faction)
		clr.A = 200
		r.drawAgentDot(screen, b.X, b.Y, clr, 0.11)
	}

	msg := fmt.Sprintf("tick %d  units %d  builders %d", w.TickCount, len(w.Units), len(w.Builders))
	ebitenutil.DebugPrintAt(screen, msg, 8, 8)
}

func (r *HexRenderer) drawCell(screen *ebiten.Image, c *hexmap.Cell) {
	clr, ok := TerrainColors[c.Terrain]
	if !ok {
		clr = color.RGBA{255, 0, 255, 255}
	}
	if road := c.Road(); road != nil {
		if road.UnderConstruction {
			clr = color.RGBA{120, 100, 80, 255}
		} else {
			clr = color.RGBA{169, 169, 169, 255}
		}
	}
	r.fillHex(screen, c.WorldX, c.WorldY, clr)

	if s := c.Structure(); s != nil {
		sc := FactionColor(s.Owner)
		if s.UnderConstruction {
			sc.A = 128
		}
		sx, sy := r.Camera.WorldToScreen(c.WorldX, c.WorldY)
		half := float32(0.3 * r.Camera.Zoom * tilePixels)
		vector.DrawFilledRect(screen, float32(sx)-half, float32(sy)-half, half*2, half*2, sc, false)
	}
}

// fillHex draws a pointy-top hexagon centered at a world position.
func (r *HexRenderer) fillHex(screen *ebiten.Image, wx, wy float64, clr color.RGBA) {
	sx, sy := r.Camera.WorldToScreen(wx, wy)
	rad := hexRadius * r.Camera.Zoom * tilePixels

	var p vector.Path
	for i := 0; i < 6; i++ {
		angle := math.Pi/6 + float64(i)*math.Pi/3
		px := float32(sx + rad*math.Cos(angle))
		py := float32(sy + rad*math.Sin(angle))
		if i == 0 {
			p.MoveTo(px, py)
		} else {
			p.LineTo(px, py)
		}
	}
	p.Close()

	verts, idx := p.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range verts {
		verts[i].SrcX = 1
		verts[i].SrcY = 1
		verts[i].ColorR = float32(clr.R) / 255
		verts[i].ColorG = float32(clr.G) / 255
		verts[i].ColorB = float32(clr.B) / 255
		verts[i].ColorA = float32(clr.A) / 255
	}
	screen.DrawTriangles(verts, idx, whiteSubImage(), nil)
}

func (r *HexRenderer) drawField(screen *ebiten.Image, w *sim.World, faction hexmap.Faction) {
	field := w.Fields.Field(faction)
	if field == nil {
		return
	}
	arrow := FactionColor(faction)
	arrow.A = 180
	w.Grid.Cells(func(c *hexmap.Cell) {
		next := field.NextCell(c.Coord, w.Grid)
		if next == nil {
			return
		}
		x0, y0 := r.Camera.WorldToScreen(c.WorldX, c.WorldY)
		x1, y1 := r.Camera.WorldToScreen(
			c.WorldX+(next.WorldX-c.WorldX)*0.4,
			c.WorldY+(next.WorldY-c.WorldY)*0.4)
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 2, arrow, false)

		if r.ShowCosts {
			cost := field.Cost(c.Coord)
			if cost < hexmap.Impassable {
				op := &text.DrawOptions{}
				op.GeoM.Translate(x0-6, y0-10)
				text.Draw(screen, fmt.Sprintf("%.0f", cost), costFace, op)
			}
		}
	})
}

func (r *HexRenderer) drawAgentDot(screen *ebiten.Image, wx, wy float64, clr color.RGBA, radius float64) {
	sx, sy := r.Camera.WorldToScreen(wx, wy)
	vector.DrawFilledCircle(screen, float32(sx), float32(sy),
		float32(radius*r.Camera.Zoom*tilePixels), clr, false)
}

var white *ebiten.Image

// whiteSubImage returns a 1x1 white texel for untextured triangle fills.
// The interior of a 3x3 image avoids sampling bleed at the edges.
func whiteSubImage() *ebiten.Image {
	if white == nil {
		base := ebiten.NewImage(3, 3)
		base.Fill(color.White)
		white = base.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return white
}
