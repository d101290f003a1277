// Package combat provides the stateless combat resolver consumed by the
// simulation engine. The engine only depends on the Resolve contract so
// the host can swap in its own math.
package combat

import "github.com/korvan/duskspire/internal/chance"

// Outcome is the result classification of a resolved fight.
type Outcome uint8

const (
	AttackerWins Outcome = iota
	DefenderWins
	Draw
)

// Combatant is the minimal stat view the resolver needs.
type Combatant struct {
	Name     string
	Level    int
	HP       int
	Strength int
	Defense  int
	Speed    int
}

// Result reports the winner and the damage dealt to each side.
type Result struct {
	Outcome          Outcome
	DamageToAttacker int
	DamageToDefender int
}

// ResolverFunc matches the Resolve signature for injection.
type ResolverFunc func(attacker, defender Combatant, rng *chance.Source) Result

// Resolve runs one fight as a pure function of the inputs and rng.
// Power difference dominates; variance keeps upsets possible.
func Resolve(attacker, defender Combatant, rng *chance.Source) Result {
	atkPower := float64(attacker.Level)*10 + float64(attacker.Strength)*2 +
		float64(attacker.Speed) + float64(attacker.HP)/4
	defPower := float64(defender.Level)*10 + float64(defender.Strength)*2 +
		float64(defender.Defense)*2 + float64(defender.HP)/4

	atkRoll := atkPower * rng.Between(0.7, 1.3)
	defRoll := defPower * rng.Between(0.7, 1.3)

	dmgToDef := scaleDamage(atkRoll, float64(defender.Defense), rng)
	dmgToAtk := scaleDamage(defRoll, float64(attacker.Defense), rng)

	switch {
	case atkRoll > defRoll*1.05:
		return Result{Outcome: AttackerWins, DamageToAttacker: dmgToAtk / 2, DamageToDefender: dmgToDef}
	case defRoll > atkRoll*1.05:
		return Result{Outcome: DefenderWins, DamageToAttacker: dmgToAtk, DamageToDefender: dmgToDef / 2}
	default:
		return Result{Outcome: Draw, DamageToAttacker: dmgToAtk / 2, DamageToDefender: dmgToDef / 2}
	}
}

func scaleDamage(power, defense float64, rng *chance.Source) int {
	dmg := (power - defense) * rng.Between(0.1, 0.25)
	if dmg < 1 {
		dmg = 1
	}
	return int(dmg)
}

// FromAgentStats builds a Combatant from raw stat values. Kept here so
// callers do not each reinvent the mapping.
func FromAgentStats(name string, level, hp, strength, defense, speed int) Combatant {
	return Combatant{Name: name, Level: level, HP: hp, Strength: strength, Defense: defense, Speed: speed}
}
