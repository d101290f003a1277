// Package agents provides the NPC data model: vitals, personality,
// relationships, marital state, memory, and emotions.
package agents

import (
	"time"
)

// AgentID is a stable unique identifier for an agent.
type AgentID string

// Sex represents biological sex for the demographic simulation.
type Sex uint8

const (
	SexMale   Sex = 0
	SexFemale Sex = 1
)

// Race determines the maximum lifespan an agent can age to.
type Race string

const (
	RaceHuman    Race = "human"
	RaceElf      Race = "elf"
	RaceDwarf    Race = "dwarf"
	RaceHalfling Race = "halfling"
	RaceOrc      Race = "orc"
)

// Class determines base stat growth and orphan graduation outcomes.
type Class string

const (
	ClassWarrior Class = "warrior"
	ClassMage    Class = "mage"
	ClassThief   Class = "thief"
	ClassCleric  Class = "cleric"
	ClassRanger  Class = "ranger"
	ClassGuard   Class = "guard"
)

// Alignment is the moral disposition used for rivalry seeding and
// sleeper attack eligibility.
type Alignment int8

const (
	AlignEvil    Alignment = -1
	AlignNeutral Alignment = 0
	AlignGood    Alignment = 1
)

// Personality is the bounded trait vector driving behavior weights.
// Every trait is in [0, 1].
type Personality struct {
	Aggression      float64 `json:"aggression"`
	Sociability     float64 `json:"sociability"`
	Greed           float64 `json:"greed"`
	Courage         float64 `json:"courage"`
	Caution         float64 `json:"caution"`
	Ambition        float64 `json:"ambition"`
	Loyalty         float64 `json:"loyalty"`
	Flirtatiousness float64 `json:"flirtatiousness"`
	Commitment      float64 `json:"commitment"`
	Romanticism     float64 `json:"romanticism"`
	Mysticism       float64 `json:"mysticism"`
	Patience        float64 `json:"patience"`
	Trustworthiness float64 `json:"trustworthiness"`
}

// Similarity returns a 0..1 score of how alike two personalities are,
// used for team compatibility checks.
func (p Personality) Similarity(o Personality) float64 {
	diff := abs(p.Aggression-o.Aggression) +
		abs(p.Sociability-o.Sociability) +
		abs(p.Greed-o.Greed) +
		abs(p.Courage-o.Courage) +
		abs(p.Loyalty-o.Loyalty) +
		abs(p.Ambition-o.Ambition)
	return 1.0 - diff/6.0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Guard is one hired defender in a sleeping player's gauntlet.
// Order matters: attackers fight guards front to back.
type Guard struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp"`
}

// BaseStats are the recomputable combat attributes. Zero or negative
// values indicate save corruption and are repaired from level and class.
type BaseStats struct {
	Strength int `json:"strength"`
	Defense  int `json:"defense"`
	Speed    int `json:"speed"`
	Vitality int `json:"vitality"`
}

// Agent is a simulated non-player character.
type Agent struct {
	ID   AgentID `json:"id"`
	Name string  `json:"name"`

	// Vitals
	HP    int       `json:"hp"`
	MaxHP int       `json:"max_hp"`
	Level int       `json:"level"`
	XP    int64     `json:"xp"`
	Class Class     `json:"class"`
	Race  Race      `json:"race"`
	Sex   Sex       `json:"sex"`
	Stats BaseStats `json:"stats"`

	// Life state. PermanentlyDead is terminal and never cleared.
	Alive           bool `json:"alive"`
	TemporarilyDead bool `json:"temporarily_dead"`
	AgedDeath       bool `json:"aged_death"`
	PermanentlyDead bool `json:"permanently_dead"`

	BornAt time.Time `json:"born_at"`

	// Social
	Personality Personality          `json:"personality"`
	Alignment   Alignment            `json:"alignment"`
	Enemies     map[AgentID]struct{} `json:"enemies,omitempty"`
	Team        string               `json:"team,omitempty"`
	Story       bool                 `json:"story,omitempty"`       // story characters never permadie
	PlayerLove  string               `json:"player_love,omitempty"` // player ID this NPC is romancing

	// Economy
	Gold      int64    `json:"gold"`
	BankGold  int64    `json:"bank_gold"`
	Inventory []string `json:"inventory,omitempty"`

	// Marital state
	Married         bool      `json:"married"`
	Spouse          AgentID   `json:"spouse,omitempty"`
	PregnantDue     time.Time `json:"pregnant_due,omitzero"`
	PregnancyFather AgentID   `json:"pregnancy_father,omitempty"` // set only for affair conceptions

	// Family
	Mother AgentID `json:"mother,omitempty"`
	Father AgentID `json:"father,omitempty"`

	// Location and presentation
	Location        string `json:"location"`
	CurrentActivity string `json:"current_activity,omitempty"`

	// Memory and mood
	Memories []Memory     `json:"memories,omitempty"`
	Emotions EmotionState `json:"emotions"`
}

// Pregnant reports whether the agent has a pending due timestamp.
func (a *Agent) Pregnant() bool {
	return !a.PregnantDue.IsZero()
}

// AgeYears derives the agent's age from its birth timestamp using the
// accelerated hours-per-year constant.
func (a *Agent) AgeYears(now time.Time, hoursPerYear float64) int {
	if hoursPerYear <= 0 {
		return 0
	}
	hours := now.Sub(a.BornAt).Hours()
	if hours < 0 {
		return 0
	}
	return int(hours / hoursPerYear)
}

// Power is the scalar combat strength used for challenges, team wars,
// and turf contests.
func (a *Agent) Power() float64 {
	return float64(a.Level)*10 +
		float64(a.Stats.Strength) + float64(a.Stats.Defense) +
		float64(a.Stats.Speed)/2 +
		float64(a.HP)/4
}

// IsEnemy reports whether other is in the agent's enemy set.
func (a *Agent) IsEnemy(other AgentID) bool {
	_, ok := a.Enemies[other]
	return ok
}

// MakeEnemies records a symmetric enmity between two distinct agents.
// Self-references are rejected.
func MakeEnemies(a, b *Agent) {
	if a == nil || b == nil || a.ID == b.ID {
		return
	}
	if a.Enemies == nil {
		a.Enemies = make(map[AgentID]struct{})
	}
	if b.Enemies == nil {
		b.Enemies = make(map[AgentID]struct{})
	}
	a.Enemies[b.ID] = struct{}{}
	b.Enemies[a.ID] = struct{}{}
}

// Reconcile removes the enmity between two agents on both sides.
func Reconcile(a, b *Agent) {
	if a == nil || b == nil {
		return
	}
	delete(a.Enemies, b.ID)
	delete(b.Enemies, a.ID)
}

// ClearMarriage drops the marital link on both agents. Safe to call
// with a nil spouse (the record is cleaned one-sided).
func ClearMarriage(a, spouse *Agent) {
	if a != nil {
		a.Married = false
		a.Spouse = ""
	}
	if spouse != nil {
		spouse.Married = false
		spouse.Spouse = ""
	}
}
