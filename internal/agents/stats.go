// Base stat defaults and corruption repair. Saves occasionally come back
// with zeroed attributes; recomputing from level and class keeps the
// corruption from propagating through respawn math.
package agents

// classGrowth is the per-level stat gain for each class.
var classGrowth = map[Class]BaseStats{
	ClassWarrior: {Strength: 3, Defense: 3, Speed: 1, Vitality: 3},
	ClassMage:    {Strength: 1, Defense: 1, Speed: 2, Vitality: 2},
	ClassThief:   {Strength: 2, Defense: 1, Speed: 4, Vitality: 2},
	ClassCleric:  {Strength: 2, Defense: 2, Speed: 1, Vitality: 3},
	ClassRanger:  {Strength: 2, Defense: 2, Speed: 3, Vitality: 2},
	ClassGuard:   {Strength: 3, Defense: 4, Speed: 1, Vitality: 3},
}

// statFloor is the minimum any base attribute can hold at level 1.
const statFloor = 5

// DefaultStats computes the expected base stats for a level and class.
func DefaultStats(level int, class Class) BaseStats {
	if level < 1 {
		level = 1
	}
	g, ok := classGrowth[class]
	if !ok {
		g = classGrowth[ClassWarrior]
	}
	return BaseStats{
		Strength: statFloor + g.Strength*level,
		Defense:  statFloor + g.Defense*level,
		Speed:    statFloor + g.Speed*level,
		Vitality: statFloor + g.Vitality*level,
	}
}

// DefaultMaxHP computes expected max HP for a level and class.
func DefaultMaxHP(level int, class Class) int {
	return 20 + DefaultStats(level, class).Vitality*3
}

// RepairBaseStats recalculates any zero-or-negative base attribute from
// level and class defaults. Returns true if anything was repaired.
func (a *Agent) RepairBaseStats() bool {
	def := DefaultStats(a.Level, a.Class)
	repaired := false
	if a.Stats.Strength <= 0 {
		a.Stats.Strength = def.Strength
		repaired = true
	}
	if a.Stats.Defense <= 0 {
		a.Stats.Defense = def.Defense
		repaired = true
	}
	if a.Stats.Speed <= 0 {
		a.Stats.Speed = def.Speed
		repaired = true
	}
	if a.Stats.Vitality <= 0 {
		a.Stats.Vitality = def.Vitality
		repaired = true
	}
	if a.MaxHP <= 0 {
		a.MaxHP = DefaultMaxHP(a.Level, a.Class)
		repaired = true
	}
	return repaired
}
