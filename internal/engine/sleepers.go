// Sleeper vulnerability — offline players remain in the world and can
// be attacked by evil NPCs. The fight runs against a persisted save
// snapshot, guard gauntlet first, and writes its outcome back through
// the store so the player finds it on their next login.
package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/korvan/duskspire/internal/agents"
	"github.com/korvan/duskspire/internal/combat"
	"github.com/korvan/duskspire/internal/store"
)

// Sleeper is an offline player still present in the world.
type Sleeper struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	SafeRest bool   `json:"safe_rest"` // paid lodging reduces attack odds
	TeamName string `json:"team_name,omitempty"`
	Dead     bool   `json:"dead"` // killed while sleeping, pending login
}

// PlayerSave is the persisted character snapshot a sleeper fight runs
// against. Guard HP persists across attacks until the player logs in.
type PlayerSave struct {
	Name      string           `json:"name"`
	Class     string           `json:"class"`
	Race      string           `json:"race"`
	Level     int              `json:"level"`
	HP        int              `json:"hp"`
	MaxHP     int              `json:"max_hp"`
	Stats     agents.BaseStats `json:"stats"`
	XP        int64            `json:"xp"`
	Gold      int64            `json:"gold"`
	BankGold  int64            `json:"bank_gold"`
	Inventory []string         `json:"inventory,omitempty"`
	Guards    []agents.Guard   `json:"guards,omitempty"`
}

// RegisterSleeper records a player going offline in place, persisting
// their save snapshot.
func (e *Engine) RegisterSleeper(s Sleeper, save PlayerSave) error {
	doc, err := json.Marshal(save)
	if err != nil {
		return fmt.Errorf("marshal save: %w", err)
	}
	if err := e.st.SaveCharacter(s.PlayerID, doc); err != nil {
		return fmt.Errorf("persist save: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := s
	e.sleepers[s.PlayerID] = &cp
	return nil
}

// WakeSleeper removes the sleeper and returns the possibly-modified save
// along with whether the player was killed while offline.
func (e *Engine) WakeSleeper(playerID string) (PlayerSave, bool, error) {
	e.mu.Lock()
	s, ok := e.sleepers[playerID]
	if ok {
		delete(e.sleepers, playerID)
	}
	e.mu.Unlock()
	if !ok {
		return PlayerSave{}, false, store.ErrNotFound
	}

	doc, err := e.st.LoadCharacter(playerID)
	if err != nil {
		return PlayerSave{}, s.Dead, fmt.Errorf("load save: %w", err)
	}
	var save PlayerSave
	if err := json.Unmarshal(doc, &save); err != nil {
		return PlayerSave{}, s.Dead, fmt.Errorf("decode save: %w", err)
	}
	return save, s.Dead, nil
}

// SleepingAgents returns a snapshot of registered sleepers.
func (e *Engine) SleepingAgents() []Sleeper {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Sleeper, 0, len(e.sleepers))
	for _, s := range e.sleepers {
		out = append(out, *s)
	}
	return out
}

// sleeperPass rolls an attack against each living sleeper. Callers hold mu.
func (e *Engine) sleeperPass(tick uint64) {
	for _, s := range e.sleepers {
		if s.Dead {
			continue
		}
		odds := e.cfg.Sleeper.AttackChance
		if s.SafeRest {
			odds *= e.cfg.Sleeper.SafeRestMultiplier
		}
		if !e.rng.Roll(odds) {
			continue
		}
		attacker := e.pickSleeperAttacker(s)
		if attacker == nil {
			continue
		}
		e.attackSleeper(attacker, s, tick)
	}
}

// pickSleeperAttacker finds an eligible evil NPC at the sleeper's
// location. Teammates and the sleeper's romantic interest never attack.
func (e *Engine) pickSleeperAttacker(s *Sleeper) *agents.Agent {
	var eligible []*agents.Agent
	for _, a := range e.agentsAt(s.Location) {
		if a.Level < e.cfg.Sleeper.MinAttackerLevel || a.Story {
			continue
		}
		if a.Alignment != agents.AlignEvil {
			continue
		}
		if s.TeamName != "" && a.Team == s.TeamName {
			continue
		}
		if a.PlayerLove == s.PlayerID {
			continue
		}
		eligible = append(eligible, a)
	}
	if len(eligible) == 0 {
		return nil
	}
	return eligible[e.rng.IntN(len(eligible))]
}

// attackSleeper runs the full attack: guard gauntlet in hire order, then
// the sleeper snapshot. Every outcome lands in the player's attack log.
func (e *Engine) attackSleeper(attacker *agents.Agent, s *Sleeper, tick uint64) {
	doc, err := e.st.LoadCharacter(s.PlayerID)
	if err != nil {
		slog.Warn("sleeper attack skipped, save unreadable",
			"player", s.PlayerID, "error", err)
		return
	}
	var save PlayerSave
	if err := json.Unmarshal(doc, &save); err != nil {
		slog.Warn("sleeper attack skipped, save corrupt",
			"player", s.PlayerID, "error", err)
		return
	}
	e.stats.SleeperHits++

	atk := e.combatant(attacker)
	if idx, stopped := e.runGuardGauntlet(&atk, save.Guards); stopped {
		attacker.HP = atk.HP
		if attacker.HP < 1 {
			attacker.HP = 1
		}
		e.persistSave(s.PlayerID, &save)
		e.logAttack(s, tick, store.AttackLogEntry{
			Tick: tick, Attacker: attacker.Name, Won: true,
			Body: fmt.Sprintf("%s tried to attack you in your sleep but your guard %s drove them off",
				attacker.Name, save.Guards[idx].Name),
		})
		return
	}

	defender := combat.Combatant{
		Name:     save.Name,
		Level:    save.Level,
		HP:       save.HP,
		Strength: save.Stats.Strength,
		Defense:  save.Stats.Defense,
		Speed:    save.Stats.Speed,
	}
	if s.SafeRest {
		// Rested defenders fight above their weight.
		bonus := e.cfg.Sleeper.SafeRestStatBonus
		defender.Strength = int(float64(defender.Strength) * bonus)
		defender.Defense = int(float64(defender.Defense) * bonus)
		defender.Speed = int(float64(defender.Speed) * bonus)
	}

	res := e.resolve(atk, defender, e.rng)

	// Wounds from the gauntlet and the fight both follow the attacker out.
	atk.HP -= res.DamageToAttacker
	attacker.HP = atk.HP
	if attacker.HP < 1 {
		attacker.HP = 1
	}

	if res.Outcome != combat.AttackerWins {
		e.persistSave(s.PlayerID, &save)
		e.logAttack(s, tick, store.AttackLogEntry{
			Tick: tick, Attacker: attacker.Name, Won: true,
			Body: fmt.Sprintf("%s attacked you in your sleep and you fought them off", attacker.Name),
		})
		return
	}

	e.lootSleeper(attacker, s, &save, tick)
}

// runGuardGauntlet fights the attacker through each guard in hire order.
// Guard HP damage persists in the save. Returns the index of the guard
// that stopped the attacker, or stopped=false when all guards fell.
func (e *Engine) runGuardGauntlet(atk *combat.Combatant, guards []agents.Guard) (int, bool) {
	for i := range guards {
		g := &guards[i]
		if g.HP <= 0 {
			continue
		}
		gc := combat.Combatant{
			Name:     g.Name,
			Level:    g.Level,
			HP:       g.HP,
			Strength: g.Level * 3,
			Defense:  g.Level * 2,
			Speed:    g.Level * 2,
		}
		res := e.resolve(*atk, gc, e.rng)
		g.HP -= res.DamageToDefender
		if g.HP < 0 {
			g.HP = 0
		}
		atk.HP -= res.DamageToAttacker
		if res.Outcome != combat.AttackerWins || atk.HP <= 0 {
			return i, true
		}
	}
	return 0, false
}

// lootSleeper applies a loss: bounded gold theft, one inventory item,
// bounded XP loss, and the dead flag. Banked gold is untouchable.
func (e *Engine) lootSleeper(attacker *agents.Agent, s *Sleeper, save *PlayerSave, tick uint64) {
	goldPct := e.rng.Between(e.cfg.Sleeper.GoldTheftLo, e.cfg.Sleeper.GoldTheftHi)
	stolen := int64(float64(save.Gold) * goldPct)
	save.Gold -= stolen
	attacker.Gold += stolen

	item := ""
	if len(save.Inventory) > 0 {
		idx := e.rng.IntN(len(save.Inventory))
		item = save.Inventory[idx]
		save.Inventory = append(save.Inventory[:idx], save.Inventory[idx+1:]...)
		attacker.Inventory = append(attacker.Inventory, item)
	}

	xpPct := e.rng.Between(e.cfg.Sleeper.XPLossLo, e.cfg.Sleeper.XPLossHi)
	save.XP -= int64(float64(save.XP) * xpPct)
	if save.XP < 0 {
		save.XP = 0
	}
	save.HP = 0
	s.Dead = true

	e.persistSave(s.PlayerID, save)

	body := fmt.Sprintf("%s murdered you in your sleep and took %d gold", attacker.Name, stolen)
	if item != "" {
		body += " and your " + item
	}
	e.logAttack(s, tick, store.AttackLogEntry{
		Tick: tick, Attacker: attacker.Name, Won: false, Body: body,
	})
	e.announce(Event{
		Tick:        tick,
		Category:    "sleeper",
		Description: fmt.Sprintf("%s was attacked at the %s while they slept", s.Name, s.Location),
	})
}

func (e *Engine) persistSave(playerID string, save *PlayerSave) {
	doc, err := json.Marshal(save)
	if err != nil {
		slog.Error("sleeper save marshal failed", "player", playerID, "error", err)
		return
	}
	if err := e.st.SaveCharacter(playerID, doc); err != nil {
		slog.Error("sleeper save persist failed", "player", playerID, "error", err)
	}
}

func (e *Engine) logAttack(s *Sleeper, tick uint64, entry store.AttackLogEntry) {
	if err := e.st.AppendAttackLog(s.PlayerID, entry); err != nil {
		slog.Error("attack log append failed", "player", s.PlayerID, "error", err)
	}
	e.emit(Event{
		Tick:        tick,
		Category:    "sleeper",
		Description: fmt.Sprintf("A scuffle broke out around a sleeping figure at the %s", s.Location),
	})
}
