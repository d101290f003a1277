// Lifecycle pass — aging, death, permadeath rolls, and respawns.
// Runs before any behavior so no agent acts from a stale life-state.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/korvan/duskspire/internal/agents"
)

// DeathContext selects the permadeath base chance for the kind of fight
// that killed the agent.
type DeathContext uint8

const (
	DeathDungeonSolo DeathContext = iota
	DeathDungeonTeam
	DeathNPCFight
	DeathTeamWar
)

// lifecyclePass ages agents, processes due respawns and pregnancies,
// rolls divorces, and pairs up single adults. Callers hold mu.
func (e *Engine) lifecyclePass(tick uint64) {
	now := time.Now()

	for _, a := range e.agents {
		if a.PermanentlyDead {
			continue
		}

		if a.Alive {
			e.checkAgedDeath(a, now, tick)
		}
		if !a.Alive {
			continue
		}

		e.checkDivorce(a, tick)
		e.checkPregnancy(a, now, tick)
		e.checkBirth(a, now, tick)

		a.Emotions.Decay(0.002)
	}

	e.courtshipPass(now, tick)
	e.processRespawns(tick)
}

// checkAgedDeath kills an agent permanently and unconditionally once it
// ages past its race's maximum lifespan.
func (e *Engine) checkAgedDeath(a *agents.Agent, now time.Time, tick uint64) {
	age := a.AgeYears(now, e.cfg.Lifecycle.HoursPerYear)
	if age < e.cfg.MaxLifespan(string(a.Race)) {
		return
	}

	a.Alive = false
	a.AgedDeath = true
	a.PermanentlyDead = true
	a.TemporarilyDead = false
	delete(e.respawnDue, a.ID)

	e.stats.Deaths++
	e.stats.Permadeaths++
	e.announce(Event{
		Tick:        tick,
		Category:    "death",
		Description: fmt.Sprintf("%s has died of old age at %d", a.Name, age),
	})

	e.witnessDeath(a, tick)
	e.afterPermanentDeath(a, tick)
}

// KillAgent records a combat death and rolls permadeath for the context.
// A failed roll queues a timed respawn instead.
func (e *Engine) KillAgent(id agents.AgentID, ctx DeathContext) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a := e.index[id]
	if a == nil {
		return
	}
	e.killAgentLocked(a, ctx, e.tick)
}

func (e *Engine) killAgentLocked(a *agents.Agent, ctx DeathContext, tick uint64) {
	if !a.Alive || a.PermanentlyDead {
		return
	}

	a.Alive = false
	a.HP = 0
	e.stats.Deaths++
	e.witnessDeath(a, tick)

	if e.rollPermadeath(a, ctx) {
		a.PermanentlyDead = true
		a.TemporarilyDead = false
		delete(e.respawnDue, a.ID)
		e.stats.Permadeaths++
		e.announce(Event{
			Tick:        tick,
			Category:    "death",
			Description: fmt.Sprintf("%s has fallen, never to rise again", a.Name),
		})
		e.afterPermanentDeath(a, tick)
		return
	}

	a.TemporarilyDead = true
	e.queueRespawnLocked(a.ID, e.cfg.Lifecycle.RespawnTicks)
	e.emit(Event{
		Tick:        tick,
		Category:    "death",
		Description: fmt.Sprintf("%s was struck down", a.Name),
	})
}

// rollPermadeath computes the final chance and rolls it. Story agents
// are exempt unconditionally; so is everyone while the living population
// sits below the protection floor.
func (e *Engine) rollPermadeath(a *agents.Agent, ctx DeathContext) bool {
	if a.Story {
		return false
	}
	if e.livingPopulation() < e.cfg.Lifecycle.PopulationFloor {
		return false
	}

	pd := e.cfg.Lifecycle.Permadeath
	var base float64
	switch ctx {
	case DeathDungeonSolo:
		base = pd.DungeonSolo
	case DeathDungeonTeam:
		base = pd.DungeonTeam
	case DeathTeamWar:
		base = pd.TeamWar
	default:
		base = pd.NPCFight
	}

	return e.rng.Roll(permadeathChance(base, pd.LevelReduction, a.Level))
}

// permadeathChance applies the level reduction to a context base. The
// result never drops below the 1% floor, even when the reduction product
// goes negative at very high levels.
func permadeathChance(base, levelReduction float64, level int) float64 {
	final := base * (1 - float64(level)*levelReduction)
	if final < 0.01 {
		final = 0.01
	}
	return final
}

// witnessDeath marks the loss on every living agent at the death site.
// Witnessed deaths push agents toward the temple and away from the
// dungeon for as long as the memory stays fresh.
func (e *Engine) witnessDeath(deceased *agents.Agent, tick uint64) {
	for _, w := range e.agentsAt(deceased.Location) {
		w.Remember(agents.Memory{
			Tick:            tick,
			Kind:            agents.MemWitnessedDeath,
			Importance:      0.5,
			EmotionalImpact: -0.4,
			Location:        deceased.Location,
			Other:           deceased.ID,
		})
		w.Emotions.Adjust(agents.EmotionFear, 0.15)
	}
}

// afterPermanentDeath runs bereavement, team removal, and orphan
// detection for a terminally dead agent. Callers hold mu.
func (e *Engine) afterPermanentDeath(a *agents.Agent, tick uint64) {
	if a.Married {
		e.bereave(a, tick)
	}
	if a.Team != "" {
		e.removeFromTeamLocked(a, tick)
	}
	e.detectOrphans(a, tick)
}

// bereave clears both sides of a marriage after a death and records the
// loss for the survivor.
func (e *Engine) bereave(deceased *agents.Agent, tick uint64) {
	survivor := e.index[deceased.Spouse]
	delete(e.marriages, marriageKey(deceased.ID, deceased.Spouse))
	agents.ClearMarriage(deceased, survivor)
	if survivor == nil {
		return
	}
	survivor.Emotions.Adjust(agents.EmotionSadness, 0.6)
	survivor.Remember(agents.Memory{
		Tick:            tick,
		Kind:            agents.MemWidowed,
		Importance:      0.9,
		EmotionalImpact: -0.8,
		Other:           deceased.ID,
	})
}

// checkDivorce rolls the per-tick divorce chance, scaled down by the
// commitment trait.
func (e *Engine) checkDivorce(a *agents.Agent, tick uint64) {
	if !a.Married {
		return
	}
	chance := e.cfg.Lifecycle.DivorceChance * (1 - a.Personality.Commitment)
	if !e.rng.Roll(chance) {
		return
	}

	spouse := e.index[a.Spouse]
	delete(e.marriages, marriageKey(a.ID, a.Spouse))
	agents.ClearMarriage(a, spouse)

	a.Remember(agents.Memory{
		Tick: tick, Kind: agents.MemDivorced, Importance: 0.7, EmotionalImpact: -0.5,
	})
	if spouse != nil {
		spouse.Remember(agents.Memory{
			Tick: tick, Kind: agents.MemDivorced, Importance: 0.7, EmotionalImpact: -0.5, Other: a.ID,
		})
		spouse.Emotions.Adjust(agents.EmotionSadness, 0.4)
		e.announce(Event{
			Tick:        tick,
			Category:    "social",
			Description: fmt.Sprintf("%s and %s have divorced", a.Name, spouse.Name),
		})
	}
}

// Marry links two agents and records the union in the registry.
func (e *Engine) Marry(aID, bID agents.AgentID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.marryLocked(e.index[aID], e.index[bID], e.tick)
}

func (e *Engine) marryLocked(a, b *agents.Agent, tick uint64) {
	if a == nil || b == nil || a.ID == b.ID || a.Married || b.Married {
		return
	}
	a.Married, b.Married = true, true
	a.Spouse, b.Spouse = b.ID, a.ID
	e.marriages[marriageKey(a.ID, b.ID)] = tick
	a.Remember(agents.Memory{Tick: tick, Kind: agents.MemMarried, Importance: 0.9, EmotionalImpact: 0.8, Other: b.ID})
	b.Remember(agents.Memory{Tick: tick, Kind: agents.MemMarried, Importance: 0.9, EmotionalImpact: 0.8, Other: a.ID})
	e.announce(Event{
		Tick:        tick,
		Category:    "social",
		Description: fmt.Sprintf("%s and %s have wed", a.Name, b.Name),
	})
}

// courtshipPass pairs up compatible single adults sharing a location.
// Widows and divorcees re-enter the pool like anyone else. Callers
// hold mu.
func (e *Engine) courtshipPass(now time.Time, tick uint64) {
	for _, a := range e.agents {
		if !a.Alive || a.Married {
			continue
		}
		if a.AgeYears(now, e.cfg.Lifecycle.HoursPerYear) < e.cfg.Lifecycle.MajorityAge {
			continue
		}
		if !e.rng.Roll(e.cfg.Lifecycle.CourtshipChance * (0.5 + a.Personality.Romanticism)) {
			continue
		}
		if match := e.pickSuitor(a, now); match != nil {
			e.marryLocked(a, match, tick)
		}
	}
}

// pickSuitor returns the most compatible single adult of the opposite
// sex at the agent's location, or nil when nobody clears the threshold.
func (e *Engine) pickSuitor(a *agents.Agent, now time.Time) *agents.Agent {
	var best *agents.Agent
	bestScore := e.cfg.Social.CompatibilityThreshold
	for _, other := range e.agentsAt(a.Location) {
		if other.ID == a.ID || other.Married || other.Sex == a.Sex || a.IsEnemy(other.ID) {
			continue
		}
		if other.AgeYears(now, e.cfg.Lifecycle.HoursPerYear) < e.cfg.Lifecycle.MajorityAge {
			continue
		}
		if score := a.Personality.Similarity(other.Personality); score >= bestScore {
			best, bestScore = other, score
		}
	}
	return best
}

func marriageKey(a, b agents.AgentID) string {
	if string(b) < string(a) {
		a, b = b, a
	}
	return string(a) + "|" + string(b)
}

// processRespawns revives agents whose timers have elapsed: corrupted
// base stats are repaired first so the recompute cannot zero anything,
// HP is restored, gold halved, and location reset to the hub.
func (e *Engine) processRespawns(tick uint64) {
	for id, due := range e.respawnDue {
		if tick < due {
			continue
		}
		delete(e.respawnDue, id)

		a := e.index[id]
		if a == nil || a.PermanentlyDead {
			continue
		}

		if a.RepairBaseStats() {
			slog.Warn("repaired corrupted base stats on respawn",
				"agent", string(a.ID), "name", a.Name)
		}
		a.HP = a.MaxHP
		a.Gold /= 2
		a.Location = e.cfg.Lifecycle.RespawnHub
		a.TemporarilyDead = false
		a.Alive = true
		a.CurrentActivity = fmt.Sprintf("%s stumbles back into the world", a.Name)

		e.emit(Event{
			Tick:        tick,
			Category:    "respawn",
			Description: fmt.Sprintf("%s has returned to %s", a.Name, a.Location),
		})
	}
}
