// Orphan handling — reassignment when both parents are gone, aging, and
// majority graduation into guards or citizens.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/korvan/duskspire/internal/agents"
	"github.com/korvan/duskspire/internal/chance"
)

// Orphan is a child in the orphanage. Generated orphans (Real=false)
// exist for flavor only: they never age or graduate.
type Orphan struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Sex       agents.Sex     `json:"sex"`
	BornAt    time.Time      `json:"born_at,omitzero"`
	StaticAge int            `json:"static_age,omitempty"`
	Real      bool           `json:"real"`
	Mother    agents.AgentID `json:"mother,omitempty"`
	Father    agents.AgentID `json:"father,omitempty"`
	Soul      float64        `json:"soul"`
}

// Age returns the orphan's current age in sim-years.
func (o *Orphan) Age(now time.Time, hoursPerYear float64) int {
	if !o.Real {
		return o.StaticAge
	}
	if hoursPerYear <= 0 {
		return 0
	}
	hours := now.Sub(o.BornAt).Hours()
	if hours < 0 {
		return 0
	}
	return int(hours / hoursPerYear)
}

// detectOrphans runs when a parent dies: children whose other parent is
// also dead or missing move to the orphanage. Callers hold mu.
func (e *Engine) detectOrphans(dead *agents.Agent, tick uint64) {
	kept := e.children[:0]
	for _, c := range e.children {
		if c.Mother != dead.ID && c.Father != dead.ID {
			kept = append(kept, c)
			continue
		}
		otherID := c.Mother
		if c.Mother == dead.ID {
			otherID = c.Father
		}
		other := e.index[otherID]
		if other != nil && other.Alive {
			kept = append(kept, c)
			continue
		}

		e.orphanage = append(e.orphanage, &Orphan{
			ID:     c.ID,
			Name:   c.Name,
			Sex:    c.Sex,
			BornAt: c.BornAt,
			Real:   true,
			Mother: c.Mother,
			Father: c.Father,
			Soul:   c.Soul,
		})
		e.emit(Event{
			Tick:        tick,
			Category:    "social",
			Description: fmt.Sprintf("%s has been taken in by the orphanage", c.Name),
		})
	}
	e.children = kept
}

// AddGeneratedOrphan registers a flavor orphan that never grows up.
func (e *Engine) AddGeneratedOrphan(name string, age int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orphanage = append(e.orphanage, &Orphan{
		ID:        uuid.NewString(),
		Name:      name,
		StaticAge: age,
		Real:      false,
	})
}

// Orphans returns the orphanage contents.
func (e *Engine) Orphans() []*Orphan {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Orphan(nil), e.orphanage...)
}

// orphanPass runs daily: souls drift, real orphans and children age,
// and those reaching majority graduate. Callers hold mu.
func (e *Engine) orphanPass(tick uint64) {
	now := time.Now()
	majority := e.cfg.Lifecycle.MajorityAge
	hpy := e.cfg.Lifecycle.HoursPerYear

	keptOrphans := e.orphanage[:0]
	for _, o := range e.orphanage {
		if !o.Real {
			keptOrphans = append(keptOrphans, o)
			continue
		}
		o.Soul += e.rng.Between(-0.1, 0.12)
		if o.Age(now, hpy) < majority {
			keptOrphans = append(keptOrphans, o)
			continue
		}
		e.graduateOrphan(o, tick)
	}
	e.orphanage = keptOrphans

	keptChildren := e.children[:0]
	for _, c := range e.children {
		c.Soul += e.rng.Between(-0.08, 0.1)
		age := 0
		if hpy > 0 {
			age = int(now.Sub(c.BornAt).Hours() / hpy)
		}
		if age < majority {
			keptChildren = append(keptChildren, c)
			continue
		}
		e.graduateChild(c, tick)
	}
	e.children = keptChildren
}

// graduateOrphan resolves a grown orphan into a guard or a citizen,
// class and alignment derived from the accumulated soul score.
func (e *Engine) graduateOrphan(o *Orphan, tick uint64) {
	a := e.newCitizen(o.ID, o.Name, o.Sex, o.Soul, o.Mother, o.Father)

	if e.rng.Roll(e.cfg.Lifecycle.OrphanGuardChance) {
		a.Class = agents.ClassGuard
		a.Personality.Loyalty = chance.Clamp(a.Personality.Loyalty+0.3, 0, 1)
		a.Stats = agents.DefaultStats(a.Level, a.Class)
		a.MaxHP = agents.DefaultMaxHP(a.Level, a.Class)
		a.HP = a.MaxHP
	}

	e.addAgentLocked(a)
	e.announce(Event{
		Tick:        tick,
		Category:    "social",
		Description: fmt.Sprintf("%s has come of age and left the orphanage", a.Name),
	})
}

// graduateChild resolves a grown child into a generic citizen.
func (e *Engine) graduateChild(c *Child, tick uint64) {
	a := e.newCitizen(c.ID, c.Name, c.Sex, c.Soul, c.Mother, c.Father)
	e.addAgentLocked(a)
	e.emit(Event{
		Tick:        tick,
		Category:    "social",
		Description: fmt.Sprintf("%s has come of age", a.Name),
	})
}

// newCitizen builds a level-1 adult agent from a grown child's record.
func (e *Engine) newCitizen(id, name string, sex agents.Sex, soul float64, mother, father agents.AgentID) *agents.Agent {
	class := agents.ClassWarrior
	align := agents.AlignNeutral
	switch {
	case soul > 0.5:
		class = agents.ClassCleric
		align = agents.AlignGood
	case soul < -0.5:
		class = agents.ClassThief
		align = agents.AlignEvil
	case e.rng.Roll(0.5):
		class = agents.ClassRanger
	}

	level := 1
	a := &agents.Agent{
		ID:          agents.AgentID(id),
		Name:        name,
		Sex:         sex,
		Level:       level,
		Class:       class,
		Race:        agents.RaceHuman,
		Alignment:   align,
		BornAt:      time.Now().Add(-time.Duration(float64(e.cfg.Lifecycle.MajorityAge)*e.cfg.Lifecycle.HoursPerYear) * time.Hour),
		Personality: randomPersonality(e.rng),
		Gold:        int64(10 + e.rng.IntN(40)),
		Location:    e.cfg.Lifecycle.RespawnHub,
		Mother:      mother,
		Father:      father,
		Alive:       true,
	}
	a.Stats = agents.DefaultStats(level, class)
	a.MaxHP = agents.DefaultMaxHP(level, class)
	a.HP = a.MaxHP
	return a
}
