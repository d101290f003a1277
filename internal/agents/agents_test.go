package agents

import (
	"testing"
	"time"
)

func TestMakeEnemiesSymmetric(t *testing.T) {
	a := &Agent{ID: "a"}
	b := &Agent{ID: "b"}
	MakeEnemies(a, b)
	if !a.IsEnemy(b.ID) || !b.IsEnemy(a.ID) {
		t.Fatal("enmity must be recorded on both sides")
	}
	Reconcile(a, b)
	if a.IsEnemy(b.ID) || b.IsEnemy(a.ID) {
		t.Fatal("reconciliation must clear both sides")
	}
}

func TestMakeEnemiesRejectsSelf(t *testing.T) {
	a := &Agent{ID: "a"}
	MakeEnemies(a, a)
	if a.IsEnemy(a.ID) {
		t.Fatal("an agent must never be its own enemy")
	}
	MakeEnemies(a, nil)
	if len(a.Enemies) != 0 {
		t.Fatal("nil partner must be a no-op")
	}
}

func TestClearMarriageOneSided(t *testing.T) {
	a := &Agent{ID: "a", Married: true, Spouse: "gone"}
	ClearMarriage(a, nil)
	if a.Married || a.Spouse != "" {
		t.Fatal("one-sided clear must still clean the survivor")
	}
}

func TestAgeYears(t *testing.T) {
	now := time.Now()
	a := &Agent{BornAt: now.Add(-60 * time.Hour)}
	if got := a.AgeYears(now, 6); got != 10 {
		t.Fatalf("60 hours at 6 hours/year should be 10, got %d", got)
	}
	future := &Agent{BornAt: now.Add(time.Hour)}
	if got := future.AgeYears(now, 6); got != 0 {
		t.Fatalf("future birth must clamp to 0, got %d", got)
	}
	if got := a.AgeYears(now, 0); got != 0 {
		t.Fatalf("zero hours-per-year must return 0, got %d", got)
	}
}

func TestRememberEvictsLeastImportant(t *testing.T) {
	a := &Agent{}
	for i := 0; i < MaxMemories; i++ {
		a.Remember(Memory{Kind: MemVisited, Importance: 0.5})
	}
	a.Memories[3].Importance = 0.1

	a.Remember(Memory{Kind: MemDefeat, Importance: 0.9})
	if len(a.Memories) != MaxMemories {
		t.Fatalf("log must stay bounded at %d, got %d", MaxMemories, len(a.Memories))
	}
	if a.Memories[3].Kind != MemDefeat {
		t.Fatal("the least important memory should have been replaced")
	}

	a.Remember(Memory{Kind: MemVisited, Importance: 0.01})
	for _, m := range a.Memories {
		if m.Importance == 0.01 {
			t.Fatal("a memory less important than everything kept must be dropped")
		}
	}
}

func TestLocationSentiment(t *testing.T) {
	a := &Agent{Memories: []Memory{
		{Tick: 90, Location: "tavern", Importance: 1, EmotionalImpact: 0.5},
		{Tick: 95, Location: "tavern", Importance: 0.5, EmotionalImpact: -0.4},
		{Tick: 10, Location: "docks", Importance: 1, EmotionalImpact: -1},
	}}
	scores := a.LocationSentiment(100, 50)
	if _, old := scores["docks"]; old {
		t.Fatal("memories outside the window must not contribute")
	}
	want := 0.5 - 0.2
	if got := scores["tavern"]; got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("tavern sentiment = %f, want %f", got, want)
	}
}

func TestRepairBaseStats(t *testing.T) {
	a := &Agent{Level: 4, Class: ClassWarrior}
	a.Stats = DefaultStats(a.Level, a.Class)
	a.MaxHP = DefaultMaxHP(a.Level, a.Class)
	if a.RepairBaseStats() {
		t.Fatal("healthy stats must not be touched")
	}

	a.Stats.Strength = 0
	a.Stats.Defense = -3
	if !a.RepairBaseStats() {
		t.Fatal("corrupted stats must be repaired")
	}
	want := DefaultStats(a.Level, a.Class)
	if a.Stats != want {
		t.Fatalf("repair mismatch: got %+v want %+v", a.Stats, want)
	}
}

func TestPersonalitySimilarityRange(t *testing.T) {
	p := Personality{Aggression: 0.5, Loyalty: 0.5}
	if got := p.Similarity(p); got < 0.999 {
		t.Fatalf("identical personalities should score ~1, got %f", got)
	}
	lo := Personality{}
	hi := Personality{
		Aggression: 1, Sociability: 1, Greed: 1, Courage: 1, Caution: 1,
		Ambition: 1, Loyalty: 1, Flirtatiousness: 1, Commitment: 1,
		Romanticism: 1, Mysticism: 1, Patience: 1, Trustworthiness: 1,
	}
	if got := lo.Similarity(hi); got > 0.001 {
		t.Fatalf("opposite personalities should score ~0, got %f", got)
	}
}

func TestEmotionDominantAndDecay(t *testing.T) {
	var e EmotionState
	e.Adjust(EmotionAnger, 0.8)
	e.Adjust(EmotionJoy, 0.3)
	dom, intensity := e.Dominant()
	if dom != EmotionAnger || intensity < 0.79 {
		t.Fatalf("dominant = %v/%f, want anger", dom, intensity)
	}

	e.Adjust(EmotionAnger, 1.0)
	if e.Intensity(EmotionAnger) > 1 {
		t.Fatal("intensity must clamp at 1")
	}

	for i := 0; i < 2000; i++ {
		e.Decay(0.01)
	}
	if _, intensity := e.Dominant(); intensity > 0.01 {
		t.Fatalf("emotions should decay toward zero, still %f", intensity)
	}
}
