// Team dynamics — formation, recruitment, betrayal, dissolution, group
// wars, and turf control. Player-owned teams are protected: the engine
// never autonomously disbands, recruits into, or expels from them.
package engine

import (
	"fmt"
	"sort"

	"github.com/korvan/duskspire/internal/agents"
)

// Team is a named group of agents with a shared turf-control flag.
type Team struct {
	Name      string           `json:"name"`
	Members   []agents.AgentID `json:"members"`
	Turf      bool             `json:"turf"`
	Recruited int              `json:"recruited"`
}

func (t *Team) addMember(id agents.AgentID) {
	for _, m := range t.Members {
		if m == id {
			return
		}
	}
	t.Members = append(t.Members, id)
}

func (t *Team) removeMember(id agents.AgentID) {
	for i, m := range t.Members {
		if m == id {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			return
		}
	}
}

// teamLocked returns the named team, creating it if needed. Callers hold mu.
func (e *Engine) teamLocked(name string) *Team {
	t, ok := e.teams[name]
	if !ok {
		t = &Team{Name: name}
		e.teams[name] = t
	}
	return t
}

// RegisterPlayerTeam marks a team name as player-owned and protected.
func (e *Engine) RegisterPlayerTeam(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playerTeams[name] = struct{}{}
	e.teamLocked(name)
}

// UnregisterPlayerTeam removes the protection from a team name.
func (e *Engine) UnregisterPlayerTeam(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.playerTeams, name)
}

func (e *Engine) playerOwned(name string) bool {
	_, ok := e.playerTeams[name]
	return ok
}

// GetActiveTeams returns a snapshot of all teams.
func (e *Engine) GetActiveTeams() []Team {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Team, 0, len(e.teams))
	for _, t := range e.teams {
		cp := *t
		cp.Members = append([]agents.AgentID(nil), t.Members...)
		out = append(out, cp)
	}
	return out
}

// removeFromTeamLocked pulls an agent out of its team and dissolves the
// team if it falls below viability. Callers hold mu.
func (e *Engine) removeFromTeamLocked(a *agents.Agent, tick uint64) {
	t, ok := e.teams[a.Team]
	a.Team = ""
	if !ok {
		return
	}
	t.removeMember(a.ID)
	e.maybeDissolveLocked(t, tick)
}

// maybeDissolveLocked disbands a team with zero or one NPC member,
// unless a player owns it.
func (e *Engine) maybeDissolveLocked(t *Team, tick uint64) {
	if e.playerOwned(t.Name) || len(t.Members) > 1 {
		return
	}
	for _, id := range t.Members {
		if a := e.index[id]; a != nil {
			a.Team = ""
		}
	}
	delete(e.teams, t.Name)
	if e.turfHolder == t.Name {
		e.turfHolder = ""
	}
	e.emit(Event{
		Tick:        tick,
		Category:    "team",
		Description: fmt.Sprintf("The %s have disbanded", t.Name),
	})
}

// teamPass runs all team dynamics for the tick. Callers hold mu.
func (e *Engine) teamPass(tick uint64) {
	e.teamFormation(tick)
	e.teamBetrayals(tick)
	e.dissolveThinTeams(tick)
	e.teamWars(tick)
	e.turfContest(tick)
}

// teamFormation lets unaffiliated agents join or found teams, and team
// members recruit compatible bystanders.
func (e *Engine) teamFormation(tick uint64) {
	joinChance := e.cfg.Social.TeamJoinChance
	foundChance := e.cfg.Social.TeamFoundChance
	if e.cfg.Persistent() {
		joinChance /= 2
		foundChance /= 2
	}

	for _, a := range e.agents {
		if !a.Alive {
			continue
		}

		if a.Team == "" {
			if e.rng.Roll(joinChance) && e.tryJoinTeam(a, tick) {
				continue
			}
			if e.rng.Roll(foundChance) {
				e.tryFoundTeam(a, tick)
			}
			continue
		}

		// Members occasionally recruit compatible unaffiliated neighbors.
		if !e.playerOwned(a.Team) && e.rng.Roll(joinChance) {
			e.tryRecruit(a, tick)
		}
	}
}

// tryJoinTeam finds a compatible, non-full, non-player team with a
// member at the agent's location.
func (e *Engine) tryJoinTeam(a *agents.Agent, tick uint64) bool {
	if e.cfg.Persistent() && !e.limits.AllowAgent("team:"+string(a.ID), tick, e.cfg.Social.AgentCooldownTicks) {
		return false
	}
	for _, other := range e.agentsAt(a.Location) {
		if other.ID == a.ID || other.Team == "" || e.playerOwned(other.Team) {
			continue
		}
		t := e.teams[other.Team]
		if t == nil || len(t.Members) >= e.cfg.Social.TeamSizeCap {
			continue
		}
		if a.Personality.Similarity(other.Personality) < e.cfg.Social.CompatibilityThreshold {
			continue
		}
		a.Team = t.Name
		t.addMember(a.ID)
		t.Recruited++
		e.emit(Event{
			Tick:        tick,
			Category:    "team",
			Description: fmt.Sprintf("%s has joined the %s", a.Name, t.Name),
		})
		return true
	}
	return false
}

// tryFoundTeam co-founds a new team with a compatible unaffiliated agent.
func (e *Engine) tryFoundTeam(a *agents.Agent, tick uint64) {
	if e.cfg.Persistent() && !e.limits.AllowAgent("team:"+string(a.ID), tick, e.cfg.Social.AgentCooldownTicks) {
		return
	}
	for _, other := range e.agentsAt(a.Location) {
		if other.ID == a.ID || other.Team != "" || a.IsEnemy(other.ID) {
			continue
		}
		if a.Personality.Similarity(other.Personality) < e.cfg.Social.CompatibilityThreshold {
			continue
		}
		name := e.teamName()
		t := e.teamLocked(name)
		a.Team, other.Team = name, name
		t.addMember(a.ID)
		t.addMember(other.ID)
		e.announce(Event{
			Tick:        tick,
			Category:    "team",
			Description: fmt.Sprintf("%s and %s have founded the %s", a.Name, other.Name, name),
		})
		return
	}
}

// tryRecruit pulls one compatible unaffiliated neighbor into the team.
func (e *Engine) tryRecruit(a *agents.Agent, tick uint64) {
	t := e.teams[a.Team]
	if t == nil || len(t.Members) >= e.cfg.Social.TeamSizeCap {
		return
	}
	for _, other := range e.agentsAt(a.Location) {
		if other.ID == a.ID || other.Team != "" {
			continue
		}
		if a.Personality.Similarity(other.Personality) < e.cfg.Social.CompatibilityThreshold {
			continue
		}
		other.Team = t.Name
		t.addMember(other.ID)
		t.Recruited++
		e.emit(Event{
			Tick:        tick,
			Category:    "team",
			Description: fmt.Sprintf("%s recruited %s into the %s", a.Name, other.Name, t.Name),
		})
		return
	}
}

// teamBetrayals has low-loyalty agents walk out on their teams.
func (e *Engine) teamBetrayals(tick uint64) {
	for _, a := range e.agents {
		if !a.Alive || a.Team == "" || e.playerOwned(a.Team) {
			continue
		}
		if a.Personality.Loyalty > 0.3 && a.Personality.Trustworthiness > 0.2 {
			continue
		}
		if !e.rng.Roll(e.cfg.Social.BetrayalChance) {
			continue
		}

		t := e.teams[a.Team]
		teamName := a.Team
		e.removeFromTeamLocked(a, tick)
		if t != nil {
			for _, id := range t.Members {
				if m := e.index[id]; m != nil {
					m.Remember(agents.Memory{
						Tick: tick, Kind: agents.MemBetrayed, Importance: 0.6,
						EmotionalImpact: -0.5, Other: a.ID,
					})
					m.Emotions.Adjust(agents.EmotionAnger, 0.2)
				}
			}
		}
		e.emit(Event{
			Tick:        tick,
			Category:    "team",
			Description: fmt.Sprintf("%s has abandoned the %s", a.Name, teamName),
		})
	}
}

// dissolveThinTeams enforces the viability floor every tick.
func (e *Engine) dissolveThinTeams(tick uint64) {
	for _, t := range e.teams {
		e.maybeDissolveLocked(t, tick)
	}
}

// teamWars lets opposing teams sharing a location clash in a bounded
// turn-based group fight. Deaths on either side go through the same
// permadeath roll as solo combat. Pairings run in name order so a
// full-tie outcome is stable across runs.
func (e *Engine) teamWars(tick uint64) {
	names := make([]string, 0, len(e.teams))
	for name := range e.teams {
		names = append(names, name)
	}
	sort.Strings(names)
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			ta, tb := e.teams[names[i]], e.teams[names[j]]
			if ta == nil || tb == nil {
				continue
			}
			loc := e.sharedBattleground(ta, tb)
			if loc == "" || !e.rng.Roll(e.cfg.Social.TeamWarChance) {
				continue
			}
			if e.cfg.Persistent() {
				if !e.limits.AllowPair("war:"+ta.Name, "war:"+tb.Name, tick, e.cfg.Social.PairCooldownTicks) {
					continue
				}
			}
			e.fightTeamWar(ta, tb, loc, tick)
		}
	}
}

// sharedBattleground returns a location where both teams have living
// members, or "".
func (e *Engine) sharedBattleground(ta, tb *Team) string {
	locs := make(map[string]bool)
	for _, id := range ta.Members {
		if a := e.index[id]; a != nil && a.Alive {
			locs[a.Location] = true
		}
	}
	for _, id := range tb.Members {
		if b := e.index[id]; b != nil && b.Alive && locs[b.Location] {
			return b.Location
		}
	}
	return ""
}

// fightTeamWar runs the round-based group combat. A max-rounds cap
// bounds the simulation so no tick can run away.
func (e *Engine) fightTeamWar(ta, tb *Team, loc string, tick uint64) {
	sideA := e.livingMembersAt(ta, loc)
	sideB := e.livingMembersAt(tb, loc)
	if len(sideA) == 0 || len(sideB) == 0 {
		return
	}
	e.stats.TeamWars++

	for round := 0; round < e.cfg.Social.MaxCombatRounds; round++ {
		if countStanding(sideA) == 0 || countStanding(sideB) == 0 {
			break
		}
		e.warRound(sideA, sideB)
		e.warRound(sideB, sideA)
	}

	survA, survB := countStanding(sideA), countStanding(sideB)
	winner, loser := ta, tb
	switch {
	case survA > survB:
	case survB > survA:
		winner, loser = tb, ta
	default:
		// Tie-break on aggregate remaining HP.
		if aggregateHP(sideB) > aggregateHP(sideA) {
			winner, loser = tb, ta
		}
	}

	// Anyone who dropped in the melee dies, the winning side included.
	for _, side := range [][]*agents.Agent{sideA, sideB} {
		for _, m := range side {
			if m.HP <= 0 && m.Alive {
				e.killAgentLocked(m, DeathTeamWar, tick)
			}
		}
	}
	e.announce(Event{
		Tick:        tick,
		Category:    "war",
		Description: fmt.Sprintf("The %s defeated the %s in a battle at the %s", winner.Name, loser.Name, loc),
	})
}

func (e *Engine) warRound(attackers, defenders []*agents.Agent) {
	standing := make([]*agents.Agent, 0, len(defenders))
	for _, d := range defenders {
		if d.HP > 0 {
			standing = append(standing, d)
		}
	}
	if len(standing) == 0 {
		return
	}
	for _, atk := range attackers {
		if atk.HP <= 0 {
			continue
		}
		target := standing[e.rng.IntN(len(standing))]
		res := e.resolve(e.combatant(atk), e.combatant(target), e.rng)
		atk.HP -= res.DamageToAttacker
		target.HP -= res.DamageToDefender
	}
}

func (e *Engine) livingMembersAt(t *Team, loc string) []*agents.Agent {
	var out []*agents.Agent
	for _, id := range t.Members {
		if a := e.index[id]; a != nil && a.Alive && a.Location == loc {
			out = append(out, a)
		}
	}
	return out
}

func countStanding(side []*agents.Agent) int {
	n := 0
	for _, a := range side {
		if a.HP > 0 {
			n++
		}
	}
	return n
}

func aggregateHP(side []*agents.Agent) int {
	total := 0
	for _, a := range side {
		if a.HP > 0 {
			total += a.HP
		}
	}
	return total
}

// turfContest hands unclaimed turf to the strongest team. A team known
// to be player-owned keeps its turf: the engine cannot observe the
// player, so it never contests them.
func (e *Engine) turfContest(tick uint64) {
	if e.turfHolder != "" {
		if e.playerOwned(e.turfHolder) {
			return
		}
		if _, ok := e.teams[e.turfHolder]; ok {
			return
		}
		e.turfHolder = ""
	}

	var best *Team
	bestPower := 0.0
	for _, t := range e.teams {
		power := 0.0
		for _, id := range t.Members {
			if a := e.index[id]; a != nil && a.Alive {
				power += a.Power()
			}
		}
		if power > bestPower {
			best, bestPower = t, power
		}
	}
	if best == nil {
		return
	}

	for _, t := range e.teams {
		t.Turf = false
	}
	best.Turf = true
	e.turfHolder = best.Name
	e.announce(Event{
		Tick:        tick,
		Category:    "team",
		Description: fmt.Sprintf("The %s now control the turf", best.Name),
	})
}

// TurfHolder returns the name of the team holding turf, or "".
func (e *Engine) TurfHolder() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turfHolder
}

var teamAdjectives = []string{
	"Crimson", "Iron", "Shadow", "Gilded", "Broken", "Silent", "Ashen",
}

var teamNouns = []string{
	"Blades", "Wolves", "Ravens", "Fists", "Serpents", "Lanterns", "Daggers",
}

func (e *Engine) teamName() string {
	for i := 0; i < 20; i++ {
		name := teamAdjectives[e.rng.IntN(len(teamAdjectives))] + " " +
			teamNouns[e.rng.IntN(len(teamNouns))]
		if _, taken := e.teams[name]; !taken {
			return name
		}
	}
	return fmt.Sprintf("Company of the %d", e.tick)
}
