// Rivalry lifecycle — seeding, escalation, and reconciliation. The
// Enemies relation stays symmetric and never self-referential.
package engine

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/korvan/duskspire/internal/agents"
)

// rivalryPass seeds new enmities and escalates existing ones.
// Callers hold mu.
func (e *Engine) rivalryPass(tick uint64) {
	for _, a := range e.agents {
		if !a.Alive {
			continue
		}
		e.maybeSeedRivalry(a, tick)
	}
	e.escalateRivalries(tick)
}

// maybeSeedRivalry lets an aggressive agent pick a new enemy at its
// location, preferring opposing alignment or a personality clash before
// a low-probability random fallback.
func (e *Engine) maybeSeedRivalry(a *agents.Agent, tick uint64) {
	if a.Personality.Aggression < 0.6 {
		return
	}
	if !e.rng.Roll(e.cfg.Social.RivalrySeedChance * a.Personality.Aggression) {
		return
	}

	var preferred, fallback []*agents.Agent
	for _, other := range e.agentsAt(a.Location) {
		if other.ID == a.ID || a.IsEnemy(other.ID) || other.ID == a.Spouse {
			continue
		}
		if a.Team != "" && other.Team == a.Team {
			continue
		}
		clash := other.Alignment != a.Alignment ||
			abs64(other.Personality.Aggression-a.Personality.Aggression) > 0.5
		if clash {
			preferred = append(preferred, other)
		} else {
			fallback = append(fallback, other)
		}
	}

	var target *agents.Agent
	switch {
	case len(preferred) > 0:
		target = preferred[e.rng.IntN(len(preferred))]
	case len(fallback) > 0 && e.rng.Roll(e.cfg.Social.RivalryRandomFallback):
		target = fallback[e.rng.IntN(len(fallback))]
	default:
		return
	}

	agents.MakeEnemies(a, target)
	a.Remember(agents.Memory{
		Tick: tick, Kind: agents.MemMadeEnemy, Importance: 0.6, EmotionalImpact: -0.4,
		Other: target.ID, Location: a.Location,
	})
	target.Remember(agents.Memory{
		Tick: tick, Kind: agents.MemMadeEnemy, Importance: 0.6, EmotionalImpact: -0.4,
		Other: a.ID, Location: a.Location,
	})
	e.stats.Rivalries++

	// Rate-limit the public notice so rivalry churn cannot flood the feed.
	if e.limits.AllowPair("news:"+string(a.ID), "news:"+string(target.ID), tick, e.cfg.Social.PairCooldownTicks) {
		e.announce(Event{
			Tick:        tick,
			Category:    "rivalry",
			Description: fmt.Sprintf("Tensions rise between %s and %s", a.Name, target.Name),
		})
	}
}

// escalateRivalries re-rolls each co-located enemy pair once per tick.
// In persistent mode the pair cooldown and daily combat caps gate the
// escalation so the feed and CPU stay bounded.
func (e *Engine) escalateRivalries(tick uint64) {
	for _, a := range e.agents {
		if !a.Alive {
			continue
		}
		for enemyID := range a.Enemies {
			if string(enemyID) <= string(a.ID) {
				continue // each pair once
			}
			b := e.index[enemyID]
			if b == nil || !b.Alive || b.Location != a.Location {
				continue
			}
			if !e.rng.Roll(e.cfg.Social.EscalationChance) {
				continue
			}

			if e.cfg.Persistent() {
				if !e.limits.AllowPair(string(a.ID), string(b.ID), tick, e.cfg.Social.PairCooldownTicks) {
					continue
				}
				dailyCap := e.cfg.Social.DailyCombatCap
				if !e.limits.CountCombat(string(a.ID), dailyCap) || !e.limits.CountCombat(string(b.ID), dailyCap) {
					continue
				}
			}

			instigator, victim := a, b
			if b.Personality.Aggression > a.Personality.Aggression {
				instigator, victim = b, a
			}
			e.resolveConflict(instigator, victim, tick)
		}
	}
}

// resolveConflict picks the escalation form from the instigator's
// personality: theft for the greedy and sly, a public challenge for the
// bold but not bloodthirsty, a brawl otherwise.
func (e *Engine) resolveConflict(instigator, victim *agents.Agent, tick uint64) {
	p := instigator.Personality
	switch {
	case p.Greed > 0.6 && p.Trustworthiness < 0.4:
		e.conflictTheft(instigator, victim, tick)
	case p.Courage > 0.6 && p.Aggression < 0.5:
		e.conflictChallenge(instigator, victim, tick)
	default:
		e.conflictBrawl(instigator, victim, tick)
	}
}

// conflictTheft transfers a bounded percentage of the victim's gold.
// Both totals stay non-negative.
func (e *Engine) conflictTheft(thief, victim *agents.Agent, tick uint64) {
	pct := e.rng.Between(e.cfg.Social.TheftPercentLo, e.cfg.Social.TheftPercentHi)
	amount := int64(float64(victim.Gold) * pct)
	if amount <= 0 {
		return
	}
	victim.Gold -= amount
	thief.Gold += amount

	victim.Emotions.Adjust(agents.EmotionAnger, 0.4)
	victim.Remember(agents.Memory{
		Tick: tick, Kind: agents.MemRobbed, Importance: 0.7, EmotionalImpact: -0.6,
		Other: thief.ID, Location: victim.Location,
	})
	e.emit(Event{
		Tick:        tick,
		Category:    "rivalry",
		Description: fmt.Sprintf("%s picked %s's pocket for %s gold", thief.Name, victim.Name, humanize.Comma(amount)),
	})
}

// conflictChallenge is a public contest of power with randomness. The
// winner gains confidence and pride, the loser sadness. Always deepens
// the enmity on both sides.
func (e *Engine) conflictChallenge(challenger, challenged *agents.Agent, tick uint64) {
	cRoll := challenger.Power() * e.rng.Between(0.8, 1.2)
	dRoll := challenged.Power() * e.rng.Between(0.8, 1.2)

	winner, loser := challenger, challenged
	if dRoll > cRoll {
		winner, loser = challenged, challenger
	}
	winner.Emotions.Adjust(agents.EmotionConfidence, 0.3)
	winner.Emotions.Adjust(agents.EmotionPride, 0.3)
	loser.Emotions.Adjust(agents.EmotionSadness, 0.3)

	winner.Remember(agents.Memory{
		Tick: tick, Kind: agents.MemVictory, Importance: 0.5, EmotionalImpact: 0.4,
		Other: loser.ID, Location: winner.Location,
	})
	loser.Remember(agents.Memory{
		Tick: tick, Kind: agents.MemDefeat, Importance: 0.5, EmotionalImpact: -0.4,
		Other: winner.ID, Location: loser.Location,
	})
	e.emit(Event{
		Tick:        tick,
		Category:    "rivalry",
		Description: fmt.Sprintf("%s bested %s in a public challenge", winner.Name, loser.Name),
	})
}

// conflictBrawl delegates to the combat resolver. A dead loser goes
// through the normal NPC-fight permadeath roll.
func (e *Engine) conflictBrawl(a, b *agents.Agent, tick uint64) {
	res := e.resolve(e.combatant(a), e.combatant(b), e.rng)
	a.HP -= res.DamageToAttacker
	b.HP -= res.DamageToDefender

	e.emit(Event{
		Tick:        tick,
		Category:    "rivalry",
		Description: fmt.Sprintf("%s and %s came to blows", a.Name, b.Name),
	})

	if b.HP <= 0 {
		b.Remember(agents.Memory{
			Tick: tick, Kind: agents.MemDefeat, Importance: 0.8, EmotionalImpact: -0.7,
			Other: a.ID, Location: b.Location,
		})
		e.killAgentLocked(b, DeathNPCFight, tick)
	}
	if a.HP <= 0 {
		a.Remember(agents.Memory{
			Tick: tick, Kind: agents.MemDefeat, Importance: 0.8, EmotionalImpact: -0.7,
			Other: b.ID, Location: a.Location,
		})
		e.killAgentLocked(a, DeathNPCFight, tick)
	}
}

// reconcilePass runs once per sim-day: low-aggression agents quietly
// drop old enmities. No public announcement.
func (e *Engine) reconcilePass(tick uint64) {
	for _, a := range e.agents {
		if !a.Alive || a.Personality.Aggression >= 0.4 {
			continue
		}
		for enemyID := range a.Enemies {
			if !e.rng.Roll(e.cfg.Social.ReconcileChance) {
				continue
			}
			agents.Reconcile(a, e.index[enemyID])
		}
	}
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
