package engine

import (
	"fmt"
	"time"

	"github.com/korvan/duskspire/internal/agents"
)

var seedRaces = []agents.Race{
	agents.RaceHuman, agents.RaceHuman, agents.RaceHuman,
	agents.RaceElf, agents.RaceDwarf, agents.RaceHalfling, agents.RaceOrc,
}

var seedClasses = []agents.Class{
	agents.ClassWarrior, agents.ClassMage, agents.ClassThief,
	agents.ClassCleric, agents.ClassRanger, agents.ClassGuard,
}

// SeedPopulation generates n fresh adult citizens spread across the
// town. Used on first boot when the world has no saved state.
func (e *Engine) SeedPopulation(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := 0; i < n; i++ {
		sex := agents.SexMale
		if e.rng.Roll(0.5) {
			sex = agents.SexFemale
		}
		race := seedRaces[e.rng.IntN(len(seedRaces))]
		class := seedClasses[e.rng.IntN(len(seedClasses))]
		level := 1 + e.rng.IntN(8)

		// Ages span from majority to half the race lifespan.
		minYears := float64(e.cfg.Lifecycle.MajorityAge)
		maxYears := float64(e.cfg.MaxLifespan(string(race))) / 2
		years := e.rng.Between(minYears, maxYears)

		p := randomPersonality(e.rng)
		align := agents.AlignNeutral
		switch {
		case p.Trustworthiness > 0.65:
			align = agents.AlignGood
		case p.Greed > 0.65 && p.Trustworthiness < 0.4:
			align = agents.AlignEvil
		}

		a := &agents.Agent{
			ID:          agents.AgentID(fmt.Sprintf("npc_%04d", i+1)),
			Name:        e.childName(sex),
			Sex:         sex,
			Level:       level,
			Class:       class,
			Race:        race,
			Alignment:   align,
			BornAt:      time.Now().Add(-time.Duration(years*e.cfg.Lifecycle.HoursPerYear) * time.Hour),
			Personality: p,
			Gold:        int64(20 + e.rng.IntN(200)),
			Location:    wanderPlaces[e.rng.IntN(len(wanderPlaces))],
			Alive:       true,
		}
		a.Stats = agents.DefaultStats(level, class)
		a.MaxHP = agents.DefaultMaxHP(level, class)
		a.HP = a.MaxHP
		e.addAgentLocked(a)
	}
}
