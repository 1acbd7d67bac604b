package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/hexforge/rts-core/engine/config"
	"github.com/hexforge/rts-core/engine/hexmap"
	"github.com/hexforge/rts-core/engine/input"
	"github.com/hexforge/rts-core/engine/mapgen"
	"github.com/hexforge/rts-core/engine/render"
	"github.com/hexforge/rts-core/engine/sim"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
)

// Game implements ebiten.Game interface
type Game struct {
	world    *sim.World
	loop     *sim.Loop
	renderer *render.HexRenderer
	input    *input.State

	fieldFaction int // -1 = overlay off
	hoverCoord   hexmap.Coord
	hoverValid   bool
}

func NewGame(tuning config.Tuning, width, height int, seed int64) *Game {
	grid := mapgen.Generate(mapgen.DefaultOptions(width, height, seed), tuning.GridParams())

	players := sim.NewPlayerRegistry()
	players.Add(&sim.Player{Faction: 0, Name: "Red", TeamID: 0, Color: 0xDC2828FF, Credits: 1000})
	players.Add(&sim.Player{Faction: 1, Name: "Blue", TeamID: 1, Color: 0x285ADCFF, Credits: 1000, IsAI: true})

	w := sim.NewWorld(grid, players, tuning)

	g := &Game{
		world:        w,
		loop:         sim.NewLoop(w),
		renderer:     render.NewHexRenderer(ScreenWidth, ScreenHeight),
		input:        input.NewState(),
		fieldFaction: 0,
	}

	g.renderer.Camera.SetWorldBounds(float64(width), float64(height))
	g.renderer.Camera.CenterOn(float64(width)/2, float64(height)/2)
	g.showField(0)

	seedDemo(w, width, height)
	w.Fields.RecomputeAll()

	g.loop.Play()
	return g
}

// seedDemo drops an opposing garrison in each corner region so the two
// fields have something to point at.
func seedDemo(w *sim.World, width, height int) {
	redBase := w.Grid.NearestWalkable(hexmap.Coord{Col: width / 6, Row: height / 6})
	blueBase := w.Grid.NearestWalkable(hexmap.Coord{Col: width * 5 / 6, Row: height * 5 / 6})
	if redBase == nil || blueBase == nil {
		return
	}

	redBase.SetStructure(&hexmap.Structure{Owner: 0, HP: 500, MaxHP: 500})
	blueBase.SetStructure(&hexmap.Structure{Owner: 1, HP: 500, MaxHP: 500})

	spawnAround(w, redBase.Coord, 0, 5)
	spawnAround(w, blueBase.Coord, 1, 5)
}

func spawnAround(w *sim.World, center hexmap.Coord, f hexmap.Faction, n int) {
	coords := append([]hexmap.Coord{center}, w.Grid.Neighbors(center)...)
	spawned := 0
	for _, c := range coords {
		if spawned >= n {
			return
		}
		cell := w.Grid.CellAt(c)
		if cell == nil || !cell.Walkable || cell.Structure() != nil {
			continue
		}
		if _, ok := w.SpawnUnit(c, f); ok {
			spawned++
		}
	}
}

func (g *Game) showField(idx int) {
	g.fieldFaction = idx
	if idx < 0 {
		g.renderer.ShowField = nil
		return
	}
	f := hexmap.Faction(idx)
	g.renderer.ShowField = &f
}

func (g *Game) Update() error {
	g.input.Update()
	g.handleCamera()

	// Cycle the flow-field overlay: red, blue, off.
	if g.input.KeyJustPressed(ebiten.KeyF) {
		next := g.fieldFaction + 1
		if next >= len(g.world.Players.Factions()) {
			next = -1
		}
		g.showField(next)
	}
	if g.input.KeyJustPressed(ebiten.KeyC) {
		g.renderer.ShowCosts = !g.renderer.ShowCosts
	}
	if g.input.KeyJustPressed(ebiten.KeySpace) {
		if g.loop.State == sim.StateRunning {
			g.loop.Pause()
		} else {
			g.loop.Play()
		}
	}
	if g.input.KeyJustPressed(ebiten.KeyN) && g.loop.State == sim.StatePaused {
		g.loop.Step(1)
	}

	g.hoverValid = false
	wx, wy := g.renderer.Camera.ScreenToWorld(g.input.MouseX, g.input.MouseY)
	g.world.Grid.Cells(func(c *hexmap.Cell) {
		dx, dy := c.WorldX-wx, c.WorldY-wy
		if dx*dx+dy*dy < 0.3 {
			g.hoverCoord = c.Coord
			g.hoverValid = true
		}
	})

	// Left click drops a unit of the overlay faction on the hovered cell.
	if g.input.LeftJustPressed && g.hoverValid && g.fieldFaction >= 0 {
		g.world.SpawnUnit(g.hoverCoord, hexmap.Faction(g.fieldFaction))
	}

	g.loop.Update()
	return nil
}

func (g *Game) handleCamera() {
	speed := g.renderer.Camera.Speed / 60.0

	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		g.renderer.Camera.Pan(0, -speed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		g.renderer.Camera.Pan(0, speed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		g.renderer.Camera.Pan(-speed, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		g.renderer.Camera.Pan(speed, 0)
	}

	if g.input.ScrollY != 0 {
		g.renderer.Camera.ZoomAt(g.input.ScrollY*0.1, g.input.MouseX, g.input.MouseY)
	}
	if g.input.MiddlePressed {
		g.renderer.Camera.Pan(float64(-g.input.MouseDX), float64(-g.input.MouseDY))
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 30, 255})
	g.renderer.Draw(screen, g.world)

	overlay := "off"
	if g.fieldFaction >= 0 {
		overlay = g.world.Players.Get(hexmap.Faction(g.fieldFaction)).Name
	}
	hover := "-"
	if g.hoverValid {
		hover = fmt.Sprintf("(%d,%d)", g.hoverCoord.Col, g.hoverCoord.Row)
		if g.fieldFaction >= 0 {
			field := g.world.Fields.Field(hexmap.Faction(g.fieldFaction))
			if cost := field.Cost(g.hoverCoord); cost < hexmap.Impassable {
				hover += fmt.Sprintf(" cost %.1f", cost)
			} else {
				hover += " unreachable"
			}
		}
	}
	state := "running"
	if g.loop.State == sim.StatePaused {
		state = "paused"
	}

	info := fmt.Sprintf(
		"FPS: %.0f | %s | field: %s | cell: %s\n"+
			"[WASD] pan [scroll] zoom [F] field [C] costs [Space] pause [N] step [LClick] spawn",
		ebiten.ActualFPS(), state, overlay, hover)
	ebitenutil.DebugPrintAt(screen, info, 8, ScreenHeight-36)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

func main() {
	var (
		cfgPath = flag.String("config", "", "tuning YAML file (defaults apply when empty)")
		width   = flag.Int("width", 48, "map width in cells")
		height  = flag.Int("height", 48, "map height in cells")
		seed    = flag.Int64("seed", 20, "terrain seed")
	)
	flag.Parse()

	tuning := config.Default()
	if *cfgPath != "" {
		var err error
		tuning, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("fieldview")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(NewGame(tuning, *width, *height, *seed)); err != nil {
		log.Fatal(err)
	}
}
