// Pregnancy and birth — the population's negative-feedback controller.
// Birth probability shrinks as the population grows and vice versa.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/korvan/duskspire/internal/agents"
	"github.com/korvan/duskspire/internal/chance"
)

// Child is a born-but-not-yet-grown entity attributed to its parents.
// Children are not full agents until they come of age.
type Child struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Sex    agents.Sex     `json:"sex"`
	BornAt time.Time      `json:"born_at"`
	Mother agents.AgentID `json:"mother"`
	Father agents.AgentID `json:"father,omitempty"`
	Soul   float64        `json:"soul"` // accumulated disposition score, signed
}

// checkPregnancy rolls conception for fertile agents. The denominator
// scales with population relative to the target, so a crowded world
// conceives less and a thin one recovers.
func (e *Engine) checkPregnancy(a *agents.Agent, now time.Time, tick uint64) {
	if a.Sex != agents.SexFemale || a.Pregnant() {
		return
	}
	age := a.AgeYears(now, e.cfg.Lifecycle.HoursPerYear)
	lc := e.cfg.Lifecycle
	if age < lc.FertileAgeMin || age > lc.FertileAgeMax {
		return
	}

	pop := e.livingPopulation()
	if pop == 0 || lc.TargetPopulation <= 0 {
		return
	}
	denominator := lc.PregnancyDivisor * float64(pop) / float64(lc.TargetPopulation)
	if denominator < 1 {
		denominator = 1
	}
	if !e.rng.Roll(1 / denominator) {
		return
	}

	a.PregnantDue = now.Add(lc.PregnancyTerm)
	a.PregnancyFather = ""

	// Flirtatious agents may conceive with someone other than the spouse.
	if a.Personality.Flirtatiousness > 0.6 && e.rng.Roll(lc.AffairChance) {
		if lover := e.pickAffairPartner(a, now); lover != nil {
			a.PregnancyFather = lover.ID
		}
	}
}

// pickAffairPartner finds a non-spouse adult male sharing the mother's
// location. Callers hold mu.
func (e *Engine) pickAffairPartner(a *agents.Agent, now time.Time) *agents.Agent {
	var candidates []*agents.Agent
	for _, other := range e.agentsAt(a.Location) {
		if other.ID == a.ID || other.ID == a.Spouse || other.Sex != agents.SexMale {
			continue
		}
		if other.AgeYears(now, e.cfg.Lifecycle.HoursPerYear) < e.cfg.Lifecycle.FertileAgeMin {
			continue
		}
		candidates = append(candidates, other)
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[e.rng.IntN(len(candidates))]
}

// checkBirth delivers a due pregnancy. The father attribution falls back
// to mother-only when the father entity is entirely missing.
func (e *Engine) checkBirth(a *agents.Agent, now time.Time, tick uint64) {
	if !a.Pregnant() || now.Before(a.PregnantDue) {
		return
	}

	fatherID := a.PregnancyFather
	if fatherID == "" {
		fatherID = a.Spouse
	}
	if _, known := e.index[fatherID]; !known {
		fatherID = ""
	}

	sex := agents.SexMale
	if e.rng.Roll(0.5) {
		sex = agents.SexFemale
	}
	child := &Child{
		ID:     uuid.NewString(),
		Name:   e.childName(sex),
		Sex:    sex,
		BornAt: now,
		Mother: a.ID,
		Father: fatherID,
	}
	e.children = append(e.children, child)

	a.PregnantDue = time.Time{}
	a.PregnancyFather = ""
	a.Emotions.Adjust(agents.EmotionJoy, 0.6)
	a.Remember(agents.Memory{
		Tick: tick, Kind: agents.MemChildBorn, Importance: 0.9, EmotionalImpact: 0.9, Detail: child.Name,
	})
	if father := e.index[fatherID]; father != nil {
		father.Remember(agents.Memory{
			Tick: tick, Kind: agents.MemChildBorn, Importance: 0.8, EmotionalImpact: 0.8, Detail: child.Name,
		})
	}

	e.stats.Births++
	e.announce(Event{
		Tick:        tick,
		Category:    "birth",
		Description: fmt.Sprintf("%s is born to %s", child.Name, a.Name),
	})
}

// Children returns the current child records.
func (e *Engine) Children() []*Child {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Child(nil), e.children...)
}

func (e *Engine) childName(sex agents.Sex) string {
	pool := maleNames
	if sex == agents.SexFemale {
		pool = femaleNames
	}
	return pool[e.rng.IntN(len(pool))] + " " + surnames[e.rng.IntN(len(surnames))]
}

// randomPersonality rolls a bounded trait vector for generated citizens.
func randomPersonality(rng *chance.Source) agents.Personality {
	return agents.Personality{
		Aggression:      rng.Float(),
		Sociability:     rng.Float(),
		Greed:           rng.Float(),
		Courage:         rng.Float(),
		Caution:         rng.Float(),
		Ambition:        rng.Float(),
		Loyalty:         rng.Float(),
		Flirtatiousness: rng.Float(),
		Commitment:      rng.Float(),
		Romanticism:     rng.Float(),
		Mysticism:       rng.Float(),
		Patience:        rng.Float(),
		Trustworthiness: rng.Float(),
	}
}

var maleNames = []string{
	"Aldric", "Bram", "Cedric", "Doran", "Erik", "Finn", "Gareth",
	"Halvard", "Ivan", "Jasper", "Kael", "Leif", "Magnus", "Nils",
	"Oswin", "Rowan", "Stellan", "Theron", "Ulric", "Varen", "Yorick",
}

var femaleNames = []string{
	"Astrid", "Brenna", "Calla", "Daria", "Elara", "Freya", "Greta",
	"Helene", "Iris", "Juno", "Kira", "Lena", "Mira", "Nessa",
	"Olwen", "Petra", "Runa", "Senna", "Thea", "Vera", "Willa",
}

var surnames = []string{
	"Voss", "Thornwood", "Blackwood", "Ashford", "Ironhand", "Dunmore",
	"Greenvale", "Stormcrow", "Frostborn", "Hearthstone", "Millward",
	"Ravenmoor", "Silverdale", "Wolfsbane", "Stoneheart", "Brightwater",
}
