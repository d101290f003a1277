// Activity selection — the per-tick weighted decision each living agent
// makes, folding personality, time of day, memory, company, and world
// events into one draw.
package engine

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/korvan/duskspire/internal/agents"
	"github.com/korvan/duskspire/internal/chance"
	"github.com/korvan/duskspire/internal/combat"
)

// Activity enumerates what an agent can choose to do with a tick.
type Activity uint8

const (
	ActFreeMove Activity = iota
	ActDungeon
	ActTraining
	ActShopping
	ActTavern
	ActHealing
	ActBanking
	ActWorship
	ActWork
	ActUnderworld
	ActGoHome
	ActVisitLove
)

// activityPlaces maps each activity to the place it happens. Free
// movement and going home resolve their destination in the handler.
var activityPlaces = map[Activity]string{
	ActDungeon:    "dungeon",
	ActTraining:   "arena",
	ActShopping:   "market",
	ActTavern:     "tavern",
	ActHealing:    "healer",
	ActBanking:    "bank",
	ActWorship:    "temple",
	ActWork:       "fields",
	ActUnderworld: "slums",
	ActVisitLove:  "inn",
}

// wanderPlaces are the free-movement destinations.
var wanderPlaces = []string{
	"town_square", "market", "tavern", "fields", "docks", "gates", "slums",
}

type candidate struct {
	act    Activity
	weight float64
}

// activityHandler executes one activity's side effects.
type activityHandler func(e *Engine, a *agents.Agent, tick uint64)

// activityHandlers is the dispatch registry, keeping the weighted
// selection separate from each activity's implementation.
var activityHandlers = map[Activity]activityHandler{
	ActFreeMove:   (*Engine).doFreeMove,
	ActDungeon:    (*Engine).doDungeon,
	ActTraining:   (*Engine).doTraining,
	ActShopping:   (*Engine).doShopping,
	ActTavern:     (*Engine).doTavern,
	ActHealing:    (*Engine).doHealing,
	ActBanking:    (*Engine).doBanking,
	ActWorship:    (*Engine).doWorship,
	ActWork:       (*Engine).doWork,
	ActUnderworld: (*Engine).doUnderworld,
	ActGoHome:     (*Engine).doGoHome,
	ActVisitLove:  (*Engine).doVisitLove,
}

// actAgent runs one agent's decision for the tick. Callers hold mu.
func (e *Engine) actAgent(a *agents.Agent, tick uint64) {
	if !e.rng.Roll(e.cfg.ActChance()) {
		return
	}
	// Persistent pacing: agents also respect a personal action cooldown.
	if e.cfg.Persistent() && !e.limits.AllowAgent(string(a.ID), tick, e.cfg.Social.AgentCooldownTicks) {
		return
	}

	cands := e.buildCandidates(a)
	e.applyPersonality(a, cands)
	e.applyTimeOfDay(tick, cands)
	e.applyMemory(a, tick, cands)
	e.applyPresenceAndEvents(a, cands)

	act := ActFreeMove
	weights := make([]float64, len(cands))
	for i, c := range cands {
		weights[i] = c.weight
	}
	if idx, ok := e.rng.WeightedPick(weights); ok {
		act = cands[idx].act
	}

	if handler, ok := activityHandlers[act]; ok {
		handler(e, a, tick)
	} else {
		e.doFreeMove(a, tick)
	}
}

// buildCandidates assembles the base (activity, weight) list from the
// agent's current stats.
func (e *Engine) buildCandidates(a *agents.Agent) []candidate {
	hpRatio := 1.0
	if a.MaxHP > 0 {
		hpRatio = float64(a.HP) / float64(a.MaxHP)
	}

	cands := []candidate{
		{ActFreeMove, 0.5},
		{ActTavern, 1.0},
		{ActWork, 1.2},
		{ActWorship, 0.4},
		{ActShopping, 0.8},
		{ActDungeon, 0.8},
		{ActTraining, 0.7},
		{ActUnderworld, 0.3},
		{ActGoHome, 0.3},
	}

	if hpRatio < 0.5 {
		cands = append(cands, candidate{ActHealing, 2 + (1-hpRatio)*4})
	}
	if a.Gold > 500 {
		cands = append(cands, candidate{ActBanking, 1.5})
	}
	if a.Gold < 50 {
		for i := range cands {
			if cands[i].act == ActWork {
				cands[i].weight *= 2
			}
		}
	}
	if a.XP >= xpThreshold(a.Level) {
		for i := range cands {
			switch cands[i].act {
			case ActTraining:
				cands[i].weight *= 2.5
			case ActDungeon:
				cands[i].weight *= 1.5
			}
		}
	}
	if a.Team != "" {
		// Teams run dungeons together.
		for i := range cands {
			if cands[i].act == ActDungeon {
				cands[i].weight *= 1.4
			}
		}
	}
	if a.PlayerLove != "" {
		cands = append(cands, candidate{ActVisitLove, 1.5})
	}
	return cands
}

// applyPersonality scales the candidate list in place by trait.
func (e *Engine) applyPersonality(a *agents.Agent, cands []candidate) {
	p := a.Personality
	for i := range cands {
		switch cands[i].act {
		case ActDungeon, ActTraining:
			cands[i].weight *= 1 + p.Aggression
		case ActUnderworld:
			cands[i].weight *= (1 + p.Aggression) * (1 + p.Greed*0.5) * (1 - p.Caution*0.7)
		case ActShopping:
			cands[i].weight *= (1 - p.Aggression*0.5) * (1 + p.Greed*0.5)
		case ActTavern:
			cands[i].weight *= 1 + p.Sociability
		case ActWork, ActBanking:
			cands[i].weight *= 1 + p.Greed
		case ActHealing:
			cands[i].weight *= 1 + p.Caution
		case ActWorship:
			cands[i].weight *= 1 + p.Mysticism
		case ActVisitLove:
			cands[i].weight *= 1 + p.Romanticism
		}
		if cands[i].act == ActDungeon {
			cands[i].weight *= 1 - p.Caution*0.5
		}
	}
}

// applyTimeOfDay scales candidates by the quarter of the sim-day.
func (e *Engine) applyTimeOfDay(tick uint64, cands []candidate) {
	quarter := (tick % e.cfg.Scheduler.SimDayTicks) * 4 / e.cfg.Scheduler.SimDayTicks
	for i := range cands {
		switch quarter {
		case 0: // morning
			switch cands[i].act {
			case ActTraining, ActWorship:
				cands[i].weight *= 1.5
			}
		case 1: // afternoon
			switch cands[i].act {
			case ActDungeon, ActWork, ActShopping:
				cands[i].weight *= 1.4
			}
		case 2: // evening
			switch cands[i].act {
			case ActTavern, ActGoHome:
				cands[i].weight *= 1.6
			case ActUnderworld:
				cands[i].weight *= 1.3
			}
		default: // night
			switch cands[i].act {
			case ActUnderworld:
				cands[i].weight *= 1.8
			case ActTavern, ActGoHome:
				cands[i].weight *= 1.4
			case ActShopping, ActWork:
				cands[i].weight *= 0.3
			case ActDungeon:
				cands[i].weight *= 0.5
			}
		}
	}
}

// applyMemory folds the recent memory window into the weights: defeats
// reduce risk-taking, witnessed deaths push agents to the temple, and a
// bounded per-place sentiment multiplier nudges destinations.
func (e *Engine) applyMemory(a *agents.Agent, tick uint64, cands []candidate) {
	window := e.cfg.Activity.MemoryWindow
	for _, m := range a.RecentMemories(tick, window) {
		switch m.Kind {
		case agents.MemDefeat:
			for i := range cands {
				switch cands[i].act {
				case ActDungeon, ActUnderworld:
					cands[i].weight *= 1 - 0.5*m.Importance
				case ActHealing, ActTraining:
					cands[i].weight *= 1 + 0.5*m.Importance
				}
			}
		case agents.MemWitnessedDeath:
			for i := range cands {
				switch cands[i].act {
				case ActWorship:
					cands[i].weight *= 1.5
				case ActDungeon:
					cands[i].weight *= 0.6
				}
			}
		case agents.MemVictory:
			for i := range cands {
				if cands[i].act == ActDungeon {
					cands[i].weight *= 1 + 0.3*m.Importance
				}
			}
		}
	}

	sentiment := a.LocationSentiment(tick, window)
	lo, hi := e.cfg.Activity.SentimentBoundLo, e.cfg.Activity.SentimentBoundHi
	for i := range cands {
		place, ok := activityPlaces[cands[i].act]
		if !ok {
			continue
		}
		if score, has := sentiment[place]; has {
			cands[i].weight *= chance.Clamp(1+score, lo, hi)
		}
	}
}

// applyPresenceAndEvents boosts activities where friends are and
// suppresses those where enemies are, then layers active world events.
func (e *Engine) applyPresenceAndEvents(a *agents.Agent, cands []candidate) {
	for i := range cands {
		place, ok := activityPlaces[cands[i].act]
		if !ok {
			continue
		}
		friends, enemies := 0, 0
		for _, other := range e.agentsAt(place) {
			if other.ID == a.ID {
				continue
			}
			switch {
			case a.IsEnemy(other.ID):
				enemies++
			case other.ID == a.Spouse, a.Team != "" && other.Team == a.Team:
				friends++
			}
		}
		cands[i].weight *= 1 + 0.2*float64(friends)
		cands[i].weight /= 1 + 0.3*float64(enemies)
	}

	for _, ev := range e.worldEvents {
		for i := range cands {
			switch ev.Kind {
			case EventWar:
				switch cands[i].act {
				case ActDungeon, ActTraining:
					cands[i].weight *= 1 + 0.5*a.Personality.Courage
				case ActShopping:
					cands[i].weight *= 0.7
				}
			case EventPlague:
				switch cands[i].act {
				case ActHealing:
					cands[i].weight *= 2
				case ActTavern:
					cands[i].weight *= 0.5
				}
			case EventFestival:
				switch cands[i].act {
				case ActTavern:
					cands[i].weight *= 2
				case ActWorship:
					cands[i].weight *= 1.3
				}
			case EventThroneCrisis:
				switch cands[i].act {
				case ActUnderworld:
					cands[i].weight *= 1 + a.Personality.Ambition
				case ActWorship:
					cands[i].weight *= 1.2
				}
			}
		}
	}
}

// xpThreshold is the experience needed before the next level-up.
func xpThreshold(level int) int64 {
	return int64(level) * int64(level) * 100
}

// levelUp advances levels while XP clears the threshold, recomputing
// stats and restoring HP at each step.
func (e *Engine) levelUp(a *agents.Agent, tick uint64) {
	for a.XP >= xpThreshold(a.Level) {
		a.Level++
		a.Stats = agents.DefaultStats(a.Level, a.Class)
		a.MaxHP = agents.DefaultMaxHP(a.Level, a.Class)
		a.HP = a.MaxHP
		a.Emotions.Adjust(agents.EmotionPride, 0.3)
		e.emit(Event{
			Tick:        tick,
			Category:    "progress",
			Description: fmt.Sprintf("%s has reached level %d", a.Name, a.Level),
		})
	}
}

// ── activity handlers ────────────────────────────────────────────────

func (e *Engine) doFreeMove(a *agents.Agent, tick uint64) {
	a.Location = wanderPlaces[e.rng.IntN(len(wanderPlaces))]
	a.CurrentActivity = fmt.Sprintf("%s wanders toward the %s", a.Name, a.Location)
}

func (e *Engine) doDungeon(a *agents.Agent, tick uint64) {
	a.Location = activityPlaces[ActDungeon]
	a.CurrentActivity = fmt.Sprintf("%s delves into the dungeon", a.Name)

	monster := combat.Combatant{
		Name:     "dungeon denizen",
		Level:    a.Level + e.rng.IntN(3) - 1,
		HP:       a.MaxHP,
		Strength: a.Stats.Strength + e.rng.IntN(10) - 5,
		Defense:  a.Stats.Defense + e.rng.IntN(10) - 5,
		Speed:    a.Stats.Speed,
	}
	res := e.resolve(e.combatant(a), monster, e.rng)

	a.HP -= res.DamageToAttacker
	switch {
	case res.Outcome == combat.AttackerWins:
		loot := int64(10 + e.rng.IntN(20)*a.Level)
		a.Gold += loot
		a.XP += int64(25 * a.Level)
		a.Emotions.Adjust(agents.EmotionConfidence, 0.2)
		a.Remember(agents.Memory{
			Tick: tick, Kind: agents.MemVictory, Importance: 0.4, EmotionalImpact: 0.4,
			Location: a.Location,
		})
		a.CurrentActivity = fmt.Sprintf("%s emerges from the dungeon %s gold richer",
			a.Name, humanize.Comma(loot))
		e.levelUp(a, tick)
	case a.HP <= 0:
		severity := chance.Clamp01(float64(res.DamageToAttacker) / float64(a.MaxHP))
		a.Remember(agents.Memory{
			Tick: tick, Kind: agents.MemDefeat, Importance: chance.Clamp(severity, 0.5, 1),
			EmotionalImpact: -0.7, Location: a.Location,
		})
		ctx := DeathDungeonSolo
		if a.Team != "" {
			ctx = DeathDungeonTeam
		}
		e.killAgentLocked(a, ctx, tick)
	default:
		a.Emotions.Adjust(agents.EmotionFear, 0.2)
		a.Remember(agents.Memory{
			Tick: tick, Kind: agents.MemDefeat, Importance: 0.3, EmotionalImpact: -0.3,
			Location: a.Location,
		})
		a.CurrentActivity = fmt.Sprintf("%s limps out of the dungeon", a.Name)
	}
}

func (e *Engine) doTraining(a *agents.Agent, tick uint64) {
	a.Location = activityPlaces[ActTraining]
	a.XP += int64(5 * a.Level)
	a.CurrentActivity = fmt.Sprintf("%s trains at the arena", a.Name)
	e.levelUp(a, tick)
}

func (e *Engine) doShopping(a *agents.Agent, tick uint64) {
	a.Location = activityPlaces[ActShopping]
	price := int64(10 + e.rng.IntN(40))
	if a.Gold < price {
		a.CurrentActivity = fmt.Sprintf("%s window-shops at the market", a.Name)
		return
	}
	a.Gold -= price
	item := shopWares[e.rng.IntN(len(shopWares))]
	a.Inventory = append(a.Inventory, item)
	a.CurrentActivity = fmt.Sprintf("%s buys a %s at the market", a.Name, item)
}

func (e *Engine) doTavern(a *agents.Agent, tick uint64) {
	a.Location = activityPlaces[ActTavern]
	if a.Gold >= 2 {
		a.Gold -= 2
	}
	a.Emotions.Adjust(agents.EmotionJoy, 0.15)
	a.CurrentActivity = fmt.Sprintf("%s shares a drink at the tavern", a.Name)
}

func (e *Engine) doHealing(a *agents.Agent, tick uint64) {
	a.Location = activityPlaces[ActHealing]
	cost := int64(5 * a.Level)
	if a.Gold >= cost {
		a.Gold -= cost
		a.HP = a.MaxHP
		a.CurrentActivity = fmt.Sprintf("%s is healed at the temple of mending", a.Name)
		return
	}
	a.HP += a.MaxHP / 10
	if a.HP > a.MaxHP {
		a.HP = a.MaxHP
	}
	a.CurrentActivity = fmt.Sprintf("%s rests and tends their wounds", a.Name)
}

func (e *Engine) doBanking(a *agents.Agent, tick uint64) {
	a.Location = activityPlaces[ActBanking]
	deposit := a.Gold / 2
	a.Gold -= deposit
	a.BankGold += deposit
	a.CurrentActivity = fmt.Sprintf("%s deposits %s gold at the bank",
		a.Name, humanize.Comma(deposit))
}

func (e *Engine) doWorship(a *agents.Agent, tick uint64) {
	a.Location = activityPlaces[ActWorship]
	a.Emotions.Adjust(agents.EmotionFear, -0.2)
	a.Emotions.Adjust(agents.EmotionSadness, -0.1)
	a.CurrentActivity = fmt.Sprintf("%s prays at the temple", a.Name)
}

func (e *Engine) doWork(a *agents.Agent, tick uint64) {
	a.Location = activityPlaces[ActWork]
	earned := int64(3 + e.rng.IntN(5)*a.Level)
	a.Gold += earned
	a.CurrentActivity = fmt.Sprintf("%s puts in an honest day's work", a.Name)
}

func (e *Engine) doUnderworld(a *agents.Agent, tick uint64) {
	a.Location = activityPlaces[ActUnderworld]
	stake := a.Gold / 10
	if stake < 1 {
		a.CurrentActivity = fmt.Sprintf("%s lurks in the slums", a.Name)
		return
	}
	if e.rng.Roll(0.45) {
		a.Gold += stake
		a.Emotions.Adjust(agents.EmotionJoy, 0.1)
		a.CurrentActivity = fmt.Sprintf("%s wins big in a back-alley game", a.Name)
	} else {
		a.Gold -= stake
		a.Emotions.Adjust(agents.EmotionAnger, 0.1)
		a.CurrentActivity = fmt.Sprintf("%s loses a wager in the slums", a.Name)
	}
}

func (e *Engine) doGoHome(a *agents.Agent, tick uint64) {
	a.Location = "home"
	a.HP += a.MaxHP / 20
	if a.HP > a.MaxHP {
		a.HP = a.MaxHP
	}
	a.CurrentActivity = fmt.Sprintf("%s heads home for the night", a.Name)
}

func (e *Engine) doVisitLove(a *agents.Agent, tick uint64) {
	a.Location = activityPlaces[ActVisitLove]
	a.Emotions.Adjust(agents.EmotionJoy, 0.3)
	a.CurrentActivity = fmt.Sprintf("%s steals away to see their beloved", a.Name)
}

// combatant builds the resolver view of an agent.
func (e *Engine) combatant(a *agents.Agent) combat.Combatant {
	return combat.Combatant{
		Name:     a.Name,
		Level:    a.Level,
		HP:       a.HP,
		Strength: a.Stats.Strength,
		Defense:  a.Stats.Defense,
		Speed:    a.Stats.Speed,
	}
}

var shopWares = []string{
	"healing draught", "iron dagger", "travel cloak", "silver ring",
	"lantern", "whetstone", "lockpick set", "dried rations",
}
