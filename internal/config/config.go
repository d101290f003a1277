// Package config holds the engine tuning knobs. Every probability the
// simulation rolls against is a named field here so deployments can
// retune pacing without code changes.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects the pacing profile. Persistent deployments run multiple
// sessions against shared state and need slower, rate-limited pacing.
type Mode string

const (
	ModeStandalone Mode = "standalone"
	ModePersistent Mode = "persistent"
)

// Tuning is the full knob set, loadable from yaml.
type Tuning struct {
	Mode Mode `yaml:"mode"`

	Scheduler SchedulerTuning `yaml:"scheduler"`
	Lifecycle LifecycleTuning `yaml:"lifecycle"`
	Activity  ActivityTuning  `yaml:"activity"`
	Social    SocialTuning    `yaml:"social"`
	Sleeper   SleeperTuning   `yaml:"sleeper"`
}

type SchedulerTuning struct {
	TickInterval    time.Duration `yaml:"tick_interval"`
	SimDayTicks     uint64        `yaml:"sim_day_ticks"`
	LeaderStaleness time.Duration `yaml:"leader_staleness"`
	LeaderLockKey   string        `yaml:"leader_lock_key"`
}

type LifecycleTuning struct {
	HoursPerYear      float64         `yaml:"hours_per_year"` // accelerated aging constant
	RaceLifespans     map[string]int  `yaml:"race_lifespans"` // race → max years
	DefaultLifespan   int             `yaml:"default_lifespan"`
	FertileAgeMin     int             `yaml:"fertile_age_min"`
	FertileAgeMax     int             `yaml:"fertile_age_max"`
	PregnancyDivisor  float64         `yaml:"pregnancy_divisor"` // base denominator for the birth roll
	PregnancyTerm     time.Duration   `yaml:"pregnancy_term"`
	TargetPopulation  int             `yaml:"target_population"` // density feedback pivot
	PopulationFloor   int             `yaml:"population_floor"`  // permadeath protection below this
	AffairChance      float64         `yaml:"affair_chance"`
	CourtshipChance   float64         `yaml:"courtship_chance"`
	DivorceChance     float64         `yaml:"divorce_chance"`
	RespawnTicks      uint64          `yaml:"respawn_ticks"`
	LoadRespawnTicks  uint64          `yaml:"load_respawn_ticks"` // accelerated when found dead on load
	RespawnHub        string          `yaml:"respawn_hub"`
	MajorityAge       int             `yaml:"majority_age"`
	OrphanGuardChance float64         `yaml:"orphan_guard_chance"`
	Permadeath        PermadeathBases `yaml:"permadeath"`
}

// PermadeathBases are the context-specific base chances for the
// permadeath roll at death time.
type PermadeathBases struct {
	DungeonSolo    float64 `yaml:"dungeon_solo"`
	DungeonTeam    float64 `yaml:"dungeon_team"`
	NPCFight       float64 `yaml:"npc_fight"`
	TeamWar        float64 `yaml:"team_war"`
	LevelReduction float64 `yaml:"level_reduction"` // finalChance = max(0.01, base*(1-level*this))
}

type ActivityTuning struct {
	ActChanceStandalone float64 `yaml:"act_chance_standalone"`
	ActChancePersistent float64 `yaml:"act_chance_persistent"`
	MemoryWindow        uint64  `yaml:"memory_window"`      // ticks of look-back
	SentimentBoundLo    float64 `yaml:"sentiment_bound_lo"` // location sentiment multiplier floor
	SentimentBoundHi    float64 `yaml:"sentiment_bound_hi"` // and ceiling
}

type SocialTuning struct {
	RivalrySeedChance      float64 `yaml:"rivalry_seed_chance"`
	RivalryRandomFallback  float64 `yaml:"rivalry_random_fallback"`
	EscalationChance       float64 `yaml:"escalation_chance"`
	TheftPercentLo         float64 `yaml:"theft_percent_lo"`
	TheftPercentHi         float64 `yaml:"theft_percent_hi"`
	ReconcileChance        float64 `yaml:"reconcile_chance"`
	PairCooldownTicks      uint64  `yaml:"pair_cooldown_ticks"`
	AgentCooldownTicks     uint64  `yaml:"agent_cooldown_ticks"`
	DailyCombatCap         int     `yaml:"daily_combat_cap"`
	CascadeThreshold       float64 `yaml:"cascade_threshold"`
	CascadeChance          float64 `yaml:"cascade_chance"`
	CascadeSpacingTicks    uint64  `yaml:"cascade_spacing_ticks"`
	GossipShareCap         int     `yaml:"gossip_share_cap"`
	GossipPoolMax          int     `yaml:"gossip_pool_max"`
	GossipChance           float64 `yaml:"gossip_chance"`
	TeamSizeCap            int     `yaml:"team_size_cap"`
	TeamJoinChance         float64 `yaml:"team_join_chance"`
	TeamFoundChance        float64 `yaml:"team_found_chance"`
	CompatibilityThreshold float64 `yaml:"compatibility_threshold"`
	BetrayalChance         float64 `yaml:"betrayal_chance"`
	TeamWarChance          float64 `yaml:"team_war_chance"`
	MaxCombatRounds        int     `yaml:"max_combat_rounds"`
}

type SleeperTuning struct {
	AttackChance       float64 `yaml:"attack_chance"`
	SafeRestMultiplier float64 `yaml:"safe_rest_multiplier"`
	SafeRestStatBonus  float64 `yaml:"safe_rest_stat_bonus"`
	MinAttackerLevel   int     `yaml:"min_attacker_level"`
	GoldTheftLo        float64 `yaml:"gold_theft_lo"`
	GoldTheftHi        float64 `yaml:"gold_theft_hi"`
	XPLossLo           float64 `yaml:"xp_loss_lo"`
	XPLossHi           float64 `yaml:"xp_loss_hi"`
}

// Default returns the baseline tuning. Persistent deployments typically
// only override mode, pacing, and the cooldown windows.
func Default() Tuning {
	return Tuning{
		Mode: ModeStandalone,
		Scheduler: SchedulerTuning{
			TickInterval:    30 * time.Second,
			SimDayTicks:     2880, // 24h of 30s ticks
			LeaderStaleness: 90 * time.Second,
			LeaderLockKey:   "world_sim_lock",
		},
		Lifecycle: LifecycleTuning{
			HoursPerYear: 6, // one sim-year every six real hours
			RaceLifespans: map[string]int{
				"human": 80, "elf": 400, "dwarf": 200, "halfling": 120, "orc": 60,
			},
			DefaultLifespan:   80,
			FertileAgeMin:     18,
			FertileAgeMax:     45,
			PregnancyDivisor:  600,
			PregnancyTerm:     54 * time.Hour, // nine sim-months
			TargetPopulation:  250,
			PopulationFloor:   50,
			AffairChance:      0.15,
			CourtshipChance:   0.005,
			DivorceChance:     0.002,
			RespawnTicks:      20,
			LoadRespawnTicks:  5,
			RespawnHub:        "town_square",
			MajorityAge:       18,
			OrphanGuardChance: 0.35,
			Permadeath: PermadeathBases{
				DungeonSolo:    0.25,
				DungeonTeam:    0.15,
				NPCFight:       0.10,
				TeamWar:        0.12,
				LevelReduction: 0.005,
			},
		},
		Activity: ActivityTuning{
			ActChanceStandalone: 0.60,
			ActChancePersistent: 0.25,
			MemoryWindow:        200,
			SentimentBoundLo:    0.5,
			SentimentBoundHi:    1.5,
		},
		Social: SocialTuning{
			RivalrySeedChance:      0.04,
			RivalryRandomFallback:  0.01,
			EscalationChance:       0.08,
			TheftPercentLo:         0.05,
			TheftPercentHi:         0.15,
			ReconcileChance:        0.10,
			PairCooldownTicks:      120,
			AgentCooldownTicks:     40,
			DailyCombatCap:         3,
			CascadeThreshold:       0.7,
			CascadeChance:          0.30,
			CascadeSpacingTicks:    60,
			GossipShareCap:         3,
			GossipPoolMax:          25,
			GossipChance:           0.05,
			TeamSizeCap:            5,
			TeamJoinChance:         0.03,
			TeamFoundChance:        0.015,
			CompatibilityThreshold: 0.6,
			BetrayalChance:         0.01,
			TeamWarChance:          0.05,
			MaxCombatRounds:        30,
		},
		Sleeper: SleeperTuning{
			AttackChance:       0.005,
			SafeRestMultiplier: 0.4,
			SafeRestStatBonus:  1.1,
			MinAttackerLevel:   5,
			GoldTheftLo:        0.05,
			GoldTheftHi:        0.20,
			XPLossLo:           0.01,
			XPLossHi:           0.05,
		},
	}
}

// Load reads a yaml tuning file over the defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning yaml: %w", err)
	}
	return t, nil
}

// MaxLifespan returns the race lifespan cap, falling back to the default.
func (t Tuning) MaxLifespan(race string) int {
	if y, ok := t.Lifecycle.RaceLifespans[race]; ok {
		return y
	}
	return t.Lifecycle.DefaultLifespan
}

// ActChance returns the per-tick base activity probability for the mode.
func (t Tuning) ActChance() float64 {
	if t.Mode == ModePersistent {
		return t.Activity.ActChancePersistent
	}
	return t.Activity.ActChanceStandalone
}

// Persistent reports whether the engine is pacing for a shared deployment.
func (t Tuning) Persistent() bool {
	return t.Mode == ModePersistent
}
