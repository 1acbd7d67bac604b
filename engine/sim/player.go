package sim

import "github.com/hexforge/rts-core/engine/hexmap"

// Player is one faction in a match.
type Player struct {
	Faction hexmap.Faction
	Name    string
	TeamID  int
	Color   uint32 // RGBA
	Credits int
	IsAI    bool
}

// PlayerRegistry maps factions to players. It is handed to whatever needs
// faction lookups instead of any ambient global.
type PlayerRegistry struct {
	players []*Player
}

func NewPlayerRegistry() *PlayerRegistry {
	return &PlayerRegistry{}
}

func (pr *PlayerRegistry) Add(p *Player) {
	pr.players = append(pr.players, p)
}

func (pr *PlayerRegistry) Get(f hexmap.Faction) *Player {
	for _, p := range pr.players {
		if p.Faction == f {
			return p
		}
	}
	return nil
}

// Factions returns all registered factions in add order.
func (pr *PlayerRegistry) Factions() []hexmap.Faction {
	out := make([]hexmap.Faction, len(pr.players))
	for i, p := range pr.players {
		out[i] = p.Faction
	}
	return out
}

// AreAllies checks team membership for two factions.
func (pr *PlayerRegistry) AreAllies(a, b hexmap.Faction) bool {
	pa := pr.Get(a)
	pb := pr.Get(b)
	if pa == nil || pb == nil {
		return false
	}
	return pa.TeamID == pb.TeamID
}
