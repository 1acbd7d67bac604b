package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hexforge/rts-core/engine/config"
	"github.com/hexforge/rts-core/engine/hexmap"
	"github.com/hexforge/rts-core/engine/journal"
	"github.com/hexforge/rts-core/engine/mapgen"
	"github.com/hexforge/rts-core/engine/observer"
	"github.com/hexforge/rts-core/engine/persist"
	"github.com/hexforge/rts-core/engine/sim"
)

func main() {
	var (
		cfgPath    = flag.String("config", "", "tuning YAML file (defaults apply when empty)")
		width      = flag.Int("width", 48, "map width in cells")
		height     = flag.Int("height", 48, "map height in cells")
		seed       = flag.Int64("seed", 20, "terrain seed")
		ticks      = flag.Int("ticks", 0, "stop after this many ticks (0 = run until interrupted)")
		listen     = flag.String("listen", ":8080", "observer HTTP address (empty disables)")
		dbPath     = flag.String("db", "", "sqlite snapshot file (empty disables)")
		journalDir = flag.String("journal", "", "event journal directory (empty disables)")
		frameEvery = flag.Int("frame-every", 4, "broadcast a frame every N ticks")
	)
	flag.Parse()
	if *frameEvery < 1 {
		*frameEvery = 1
	}

	logger := log.New(os.Stdout, "sim: ", log.LstdFlags)

	tuning := config.Default()
	if *cfgPath != "" {
		var err error
		tuning, err = config.Load(*cfgPath)
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}
	}

	grid := mapgen.Generate(mapgen.DefaultOptions(*width, *height, *seed), tuning.GridParams())

	players := sim.NewPlayerRegistry()
	players.Add(&sim.Player{Faction: 0, Name: "Red", TeamID: 0, Credits: 1000})
	players.Add(&sim.Player{Faction: 1, Name: "Blue", TeamID: 1, Credits: 1000, IsAI: true})

	world := sim.NewWorld(grid, players, tuning)

	if *journalDir != "" {
		jw, err := journal.NewWriter(*journalDir, "sim")
		if err != nil {
			logger.Fatalf("open journal: %v", err)
		}
		defer jw.Close()
		jw.Attach(world.Events)
	}

	seedScenario(world, *width, *height, logger)
	world.Fields.RecomputeAll()

	var srv *observer.Server
	if *listen != "" {
		srv = observer.NewServer(logger)
		mux := http.NewServeMux()
		srv.Routes(mux, world)
		go func() {
			logger.Printf("observer listening on %s", *listen)
			if err := http.ListenAndServe(*listen, mux); err != nil {
				logger.Fatalf("observer: %v", err)
			}
		}()
	}

	loop := sim.NewLoop(world)
	loop.Play()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	dt := time.Duration(float64(time.Second) / tuning.TickRate)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	logger.Printf("running %dx%d seed=%d tickrate=%.0f", *width, *height, *seed, tuning.TickRate)

run:
	for {
		select {
		case <-sigCh:
			logger.Printf("interrupted at tick %d", world.TickCount)
			break run
		case <-ticker.C:
			loop.Step(1)
			if srv != nil && world.TickCount%uint64(*frameEvery) == 0 {
				srv.Broadcast(observer.BuildFrame(world))
			}
			if world.TickCount%200 == 0 {
				logger.Printf("tick %d units=%d builders=%d", world.TickCount, len(world.Units), len(world.Builders))
			}
			if *ticks > 0 && world.TickCount >= uint64(*ticks) {
				break run
			}
		}
	}

	if *dbPath != "" {
		db, err := persist.Open(*dbPath)
		if err != nil {
			logger.Fatalf("open snapshot db: %v", err)
		}
		defer db.Close()
		id, err := db.SaveSnapshot(world)
		if err != nil {
			logger.Fatalf("save snapshot: %v", err)
		}
		logger.Printf("snapshot %s saved to %s", id, *dbPath)
	}
}

// seedScenario places an opposing base in each corner region, garrisons
// them, and sends red builders out to pave a road toward the blue base.
func seedScenario(w *sim.World, width, height int, logger *log.Logger) {
	redBase := w.Grid.NearestWalkable(hexmap.Coord{Col: width / 6, Row: height / 6})
	blueBase := w.Grid.NearestWalkable(hexmap.Coord{Col: width * 5 / 6, Row: height * 5 / 6})
	if redBase == nil || blueBase == nil {
		logger.Fatal("map has no walkable cells for bases")
	}

	redBase.SetStructure(&hexmap.Structure{Owner: 0, HP: 500, MaxHP: 500})
	blueBase.SetStructure(&hexmap.Structure{Owner: 1, HP: 500, MaxHP: 500})

	spawnAround(w, redBase.Coord, 0, 5)
	spawnAround(w, blueBase.Coord, 1, 5)

	// Pave the direct route between the bases. Sites on water become
	// bridges once complete.
	route := w.Grid.FindPath(redBase.Coord, blueBase.Coord, false)
	if route == nil {
		logger.Print("no route between bases, skipping road plan")
		return
	}
	const loadPerSite = 10
	dispatched := 0
	for _, rc := range route[1 : len(route)-1] {
		cell := w.Grid.CellAt(rc)
		if cell.Road() != nil || cell.Structure() != nil {
			continue
		}
		cell.SetRoad(&hexmap.RoadState{
			UnderConstruction: true,
			MaxHP:             100,
			PendingResources:  loadPerSite,
		})
		b, ok := w.SpawnBuilder(redBase.Coord, 0)
		if !ok {
			continue
		}
		if !w.DispatchBuilder(b, rc, loadPerSite) {
			continue
		}
		dispatched++
	}
	logger.Printf("road plan: %d sites, %d builders dispatched", len(route)-2, dispatched)
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
