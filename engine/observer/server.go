// Package observer exposes a read-only view of a running simulation over
// HTTP and websocket for external viewers. It never mutates the core: the
// sim loop pushes frames in, clients only read.
package observer

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hexforge/rts-core/engine/hexmap"
	"github.com/hexforge/rts-core/engine/sim"
)

// BootstrapResponse carries everything a viewer needs to draw the static
// map once.
type BootstrapResponse struct {
	Tick    uint64          `json:"tick"`
	Params  hexmap.Params   `json:"params"`
	Players []PlayerInfo    `json:"players"`
	Cells   []CellBootstrap `json:"cells"`
}

type PlayerInfo struct {
	Faction hexmap.Faction `json:"faction"`
	Name    string         `json:"name"`
	Color   uint32         `json:"color"`
}

type CellBootstrap struct {
	Col      int     `json:"col"`
	Row      int     `json:"row"`
	Terrain  uint8   `json:"terrain"`
	Walkable bool    `json:"walkable"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Frame is one per-tick state update.
type Frame struct {
	Tick   uint64       `json:"tick"`
	Agents []AgentFrame `json:"agents"`
}

type AgentFrame struct {
	ID      hexmap.AgentID `json:"id"`
	Faction hexmap.Faction `json:"faction"`
	Builder bool           `json:"builder,omitempty"`
	State   string         `json:"state"`
	X       float64        `json:"x"`
	Y       float64        `json:"y"`
}

// Server broadcasts frames to websocket clients. Slow clients drop frames
// rather than backing up the simulation.
type Server struct {
	log      *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]chan Frame
}

// NewServer creates an observer server.
func NewServer(logger *log.Logger) *Server {
	return &Server{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: make(map[string]chan Frame),
	}
}

// BootstrapHandler serves the static map description.
func (s *Server) BootstrapHandler(w *sim.World) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		resp := BootstrapResponse{
			Tick:   w.TickCount,
			Params: w.Grid.Params(),
		}
		for _, f := range w.Players.Factions() {
			p := w.Players.Get(f)
			resp.Players = append(resp.Players, PlayerInfo{Faction: f, Name: p.Name, Color: p.Color})
		}
		w.Grid.Cells(func(c *hexmap.Cell) {
			resp.Cells = append(resp.Cells, CellBootstrap{
				Col: c.Coord.Col, Row: c.Coord.Row,
				Terrain: uint8(c.Terrain), Walkable: c.Walkable,
				X: c.WorldX, Y: c.WorldY,
			})
		})
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// FieldHandler serves a faction's current flow costs. This is the pure
// query surface the AI layer also reads for expansion scoring.
func (s *Server) FieldHandler(w *sim.World) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		var faction int
		if v := r.URL.Query().Get("faction"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				http.Error(rw, "bad faction", http.StatusBadRequest)
				return
			}
			faction = n
		}
		field := w.Fields.Field(hexmap.Faction(faction))
		if field == nil {
			http.Error(rw, "unknown faction", http.StatusNotFound)
			return
		}
		type costEntry struct {
			Col  int     `json:"col"`
			Row  int     `json:"row"`
			Cost float64 `json:"cost"`
		}
		var out []costEntry
		w.Grid.Cells(func(c *hexmap.Cell) {
			cost := field.Cost(c.Coord)
			if cost >= hexmap.Impassable {
				return
			}
			out = append(out, costEntry{Col: c.Coord.Col, Row: c.Coord.Row, Cost: cost})
		})
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(out)
	}
}

// StreamHandler upgrades to websocket and streams frames until the client
// disconnects.
func (s *Server) StreamHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.log.Printf("observer: upgrade failed: %v", err)
			return
		}
		id := uuid.NewString()
		ch := make(chan Frame, 8)
		s.mu.Lock()
		s.clients[id] = ch
		s.mu.Unlock()
		s.log.Printf("observer: client %s connected", id)

		go s.writeLoop(id, conn, ch)

		// Discard inbound messages; close on read error.
		go func() {
			defer s.drop(id)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

func (s *Server) writeLoop(id string, conn *websocket.Conn, ch chan Frame) {
	defer conn.Close()
	for frame := range ch {
		if err := conn.WriteJSON(frame); err != nil {
			s.drop(id)
			return
		}
	}
}

func (s *Server) drop(id string) {
	s.mu.Lock()
	if ch, ok := s.clients[id]; ok {
		delete(s.clients, id)
		close(ch)
		s.log.Printf("observer: client %s disconnected", id)
	}
	s.mu.Unlock()
}

// Broadcast pushes a frame to every connected client. Call it from the
// sim goroutine; clients that cannot keep up skip frames.
func (s *Server) Broadcast(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.clients {
		select {
		case ch <- f:
		default:
		}
	}
}

// ClientCount returns the number of connected observers.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// BuildFrame snapshots agent state for broadcast. Call on the sim
// goroutine between ticks.
func BuildFrame(w *sim.World) Frame {
	f := Frame{Tick: w.TickCount}
	for _, u := range w.Units {
		f.Agents = append(f.Agents, AgentFrame{
			ID: u.ID, Faction: u.Faction, State: u.State.String(), X: u.X, Y: u.Y,
		})
	}
	for _, b := range w.Builders {
		f.Agents = append(f.Agents, AgentFrame{
			ID: b.ID, Faction: b.Faction, Builder: true, State: b.State.String(), X: b.X, Y: b.Y,
		})
	}
	return f
}

// Routes registers the observer endpoints on a mux.
func (s *Server) Routes(mux *http.ServeMux, w *sim.World) {
	mux.HandleFunc("/bootstrap", s.BootstrapHandler(w))
	mux.HandleFunc("/field", s.FieldHandler(w))
	mux.HandleFunc("/ws", s.StreamHandler())
}
