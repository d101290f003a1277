// Gossip pool — a bounded set of rumors, each shared a capped number of
// times by sociable agents at social locations.
package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// Rumor is one gossip item with a remaining-shares budget.
type Rumor struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Shares    int    `json:"shares"`
	MaxShares int    `json:"max_shares"`
}

// socialPlaces are where gossip gets traded.
var socialPlaces = map[string]bool{
	"tavern": true, "market": true, "town_square": true, "inn": true,
}

// AddRumor seeds a rumor into the pool.
func (e *Engine) AddRumor(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addRumorLocked(text)
}

func (e *Engine) addRumorLocked(text string) {
	e.rumors = append(e.rumors, &Rumor{
		ID:        uuid.NewString(),
		Text:      text,
		MaxShares: e.cfg.Social.GossipShareCap,
	})
	// Oldest rumors fall out when the pool overflows.
	if max := e.cfg.Social.GossipPoolMax; max > 0 && len(e.rumors) > max {
		e.rumors = e.rumors[len(e.rumors)-max:]
	}
}

// Rumors returns the current pool.
func (e *Engine) Rumors() []*Rumor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Rumor(nil), e.rumors...)
}

// gossipPass occasionally has a sociable agent broadcast one rumor,
// spending one of its shares. Exhausted rumors leave the pool.
// Callers hold mu.
func (e *Engine) gossipPass(tick uint64) {
	if len(e.rumors) == 0 || !e.rng.Roll(e.cfg.Social.GossipChance) {
		return
	}

	var tellers []string
	for _, a := range e.agents {
		if a.Alive && a.Personality.Sociability > 0.6 && socialPlaces[a.Location] {
			tellers = append(tellers, a.Name)
		}
	}
	if len(tellers) == 0 {
		return
	}
	teller := tellers[e.rng.IntN(len(tellers))]

	idx := e.rng.IntN(len(e.rumors))
	rumor := e.rumors[idx]
	rumor.Shares++

	e.announce(Event{
		Tick:        tick,
		Category:    "gossip",
		Description: fmt.Sprintf("%s whispers: %q", teller, rumor.Text),
	})

	if rumor.Shares >= rumor.MaxShares {
		e.rumors = append(e.rumors[:idx], e.rumors[idx+1:]...)
	}
}
