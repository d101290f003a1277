// Package engine drives the autonomous world simulation: the tick loop,
// NPC lifecycle, activity selection, social dynamics, and sleeper
// vulnerability, coordinated across processes through leader election.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/korvan/duskspire/internal/agents"
	"github.com/korvan/duskspire/internal/chance"
	"github.com/korvan/duskspire/internal/combat"
	"github.com/korvan/duskspire/internal/config"
	"github.com/korvan/duskspire/internal/leader"
	"github.com/korvan/duskspire/internal/ratelimit"
	"github.com/korvan/duskspire/internal/store"
)

// Engine owns the world state and advances it one tick at a time.
// All mutable state is guarded by mu: the tick loop runs concurrently
// with host request handlers calling the public API.
type Engine struct {
	cfg     config.Tuning
	st      store.Store
	rng     *chance.Source
	resolve combat.ResolverFunc
	elector *leader.Elector // nil outside persistent mode
	limits  *ratelimit.Ledger

	mu          sync.Mutex
	tick        uint64
	active      bool
	running     bool
	isLeader    bool
	agents      []*agents.Agent
	index       map[agents.AgentID]*agents.Agent
	teams       map[string]*Team
	playerTeams map[string]struct{}
	turfHolder  string
	sleepers    map[string]*Sleeper
	rumors      []*Rumor
	worldEvents []WorldEvent
	respawnDue  map[agents.AgentID]uint64
	children    []*Child
	orphanage   []*Orphan
	marriages   map[string]uint64 // pair key → tick married
	cascadeLast map[agents.AgentID]uint64
	events      []Event
	stats       DayStats

	stopCh chan struct{}
	doneCh chan struct{}
}

// DayStats are the counters reported once per sim-day.
type DayStats struct {
	Deaths      int
	Permadeaths int
	Births      int
	Rivalries   int
	TeamWars    int
	SleeperHits int
}

// New creates an engine over a store with the given tuning. The elector
// may be nil when the deployment runs a single process.
func New(cfg config.Tuning, st store.Store, rng *chance.Source) *Engine {
	e := &Engine{
		cfg:         cfg,
		st:          st,
		rng:         rng,
		resolve:     combat.Resolve,
		limits:      ratelimit.New(),
		index:       make(map[agents.AgentID]*agents.Agent),
		teams:       make(map[string]*Team),
		playerTeams: make(map[string]struct{}),
		sleepers:    make(map[string]*Sleeper),
		respawnDue:  make(map[agents.AgentID]uint64),
		marriages:   make(map[string]uint64),
		cascadeLast: make(map[agents.AgentID]uint64),
		active:      true,
	}
	if cfg.Persistent() {
		e.elector = leader.New(st, cfg.Scheduler.LeaderLockKey, cfg.Scheduler.LeaderStaleness)
	}
	return e
}

// SetResolver swaps the combat resolver. Must be called before start.
func (e *Engine) SetResolver(fn combat.ResolverFunc) {
	e.resolve = fn
}

// AddAgent registers an agent with the engine.
func (e *Engine) AddAgent(a *agents.Agent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addAgentLocked(a)
}

func (e *Engine) addAgentLocked(a *agents.Agent) {
	e.agents = append(e.agents, a)
	e.index[a.ID] = a
	if a.Team != "" {
		e.teamLocked(a.Team).addMember(a.ID)
	}
}

// Agent returns the registered agent by ID, or nil.
func (e *Engine) Agent(id agents.AgentID) *agents.Agent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index[id]
}

// StartSimulation launches the background tick loop. It performs the
// one-time startup reconciliation first, then ticks at the configured
// interval until StopSimulation is called.
func (e *Engine) StartSimulation() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	e.reconcileLocked()
	e.mu.Unlock()

	go e.loop()
	slog.Info("simulation started",
		"mode", string(e.cfg.Mode),
		"interval", e.cfg.Scheduler.TickInterval,
	)
}

// StopSimulation signals the loop to stop and waits for the current
// tick to finish. The loop never stops mid-tick.
func (e *Engine) StopSimulation() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	done := e.doneCh
	e.mu.Unlock()

	<-done
	if e.elector != nil {
		if err := e.elector.Release(); err != nil {
			slog.Warn("lock release failed", "error", err)
		}
	}
	slog.Info("simulation stopped", "tick", e.CurrentTick())
}

// SetActive pauses or resumes agent processing without stopping the loop.
func (e *Engine) SetActive(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = active
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	ticker := time.NewTicker(e.cfg.Scheduler.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			e.safeStep()
		}
	}
}

// safeStep runs one tick with the outer recovery boundary: a panic in a
// tick is logged and the loop continues at the next interval.
func (e *Engine) safeStep() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("tick panicked", "tick", e.CurrentTick(), "panic", r)
		}
	}()
	e.SimulateStep()
}

// SimulateStep advances the world by exactly one tick. Exposed so a host
// service can drive the engine externally instead of the background loop.
func (e *Engine) SimulateStep() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return
	}

	// In persistent multi-process deployment only the lock holder runs.
	if e.elector != nil {
		ok, err := e.elector.Acquire(time.Now())
		if err != nil {
			slog.Warn("leader acquisition failed, skipping tick", "error", err)
			e.isLeader = false
			return
		}
		e.isLeader = ok
		if !ok {
			return
		}
	}

	e.tick++
	tick := e.tick

	// Lifecycle first: nobody acts from a stale life-state.
	e.lifecyclePass(tick)

	// Per-agent behavior, each inside its own recovery boundary.
	for _, a := range e.agents {
		if !a.Alive {
			continue
		}
		e.actAgentSafe(a, tick)
	}

	// Social passes.
	e.rivalryPass(tick)
	e.cascadePass(tick)
	e.gossipPass(tick)
	e.teamPass(tick)

	// Sleepers are only at risk in persistent deployments.
	if e.cfg.Persistent() {
		e.sleeperPass(tick)
	}

	// Sim-day boundary: rate-limit resets, reconciliation, report.
	if tick%e.cfg.Scheduler.SimDayTicks == 0 {
		e.limits.ResetDay()
		e.reconcilePass(tick)
		e.orphanPass(tick)
		e.expireWorldEventsLocked(tick)
		e.dailyReport(tick)
	}
}

// actAgentSafe isolates one agent's behavior processing so a fault in
// one agent cannot abort the tick for the rest.
func (e *Engine) actAgentSafe(a *agents.Agent, tick uint64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("agent processing panicked",
				"agent", string(a.ID), "name", a.Name, "tick", tick, "panic", r)
		}
	}()
	e.actAgent(a, tick)
}

// reconcileLocked is the one-time startup pass: clean marriage records
// that reference dead or missing agents, and requeue agents found dead
// on load for accelerated respawn.
func (e *Engine) reconcileLocked() {
	for _, a := range e.agents {
		if a.Married {
			spouse := e.index[a.Spouse]
			if spouse == nil || spouse.PermanentlyDead || !spouse.Married || spouse.Spouse != a.ID {
				slog.Warn("cleaning orphaned marriage record",
					"agent", string(a.ID), "spouse", string(a.Spouse))
				agents.ClearMarriage(a, spouse)
				delete(e.marriages, ratelimit.PairKey(string(a.ID), string(a.Spouse)))
			}
		}
		// Self-referential enemy entries are invariant violations; drop them.
		if a.IsEnemy(a.ID) {
			slog.Warn("removing self-referential enemy entry", "agent", string(a.ID))
			delete(a.Enemies, a.ID)
		}
		if a.TemporarilyDead && !a.PermanentlyDead {
			if _, queued := e.respawnDue[a.ID]; !queued {
				e.respawnDue[a.ID] = e.tick + e.cfg.Lifecycle.LoadRespawnTicks
				slog.Info("dead-on-load agent queued for accelerated respawn",
					"agent", string(a.ID), "name", a.Name)
			}
		}
	}
}

// QueueNPCForRespawn schedules a respawn after the given tick count.
// Requeueing an already-queued agent keeps the earlier timer.
func (e *Engine) QueueNPCForRespawn(id agents.AgentID, ticks uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queueRespawnLocked(id, ticks)
}

func (e *Engine) queueRespawnLocked(id agents.AgentID, ticks uint64) {
	a := e.index[id]
	if a == nil || a.PermanentlyDead {
		return
	}
	if _, queued := e.respawnDue[id]; queued {
		return
	}
	e.respawnDue[id] = e.tick + ticks
}

// CurrentTick returns the monotonically increasing tick counter.
func (e *Engine) CurrentTick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// simDay returns the sim-day number a tick falls in.
func (e *Engine) simDay(tick uint64) uint64 {
	return tick / e.cfg.Scheduler.SimDayTicks
}

func (e *Engine) dailyReport(tick uint64) {
	alive := 0
	for _, a := range e.agents {
		if a.Alive {
			alive++
		}
	}
	slog.Info("daily report",
		"tick", tick,
		"day", e.simDay(tick),
		"alive", alive,
		"deaths", e.stats.Deaths,
		"permadeaths", e.stats.Permadeaths,
		"births", e.stats.Births,
		"rivalries", e.stats.Rivalries,
		"team_wars", e.stats.TeamWars,
		"sleeper_attacks", e.stats.SleeperHits,
		"teams", len(e.teams),
	)
	e.stats = DayStats{}
}

// livingPopulation counts agents currently alive. Callers hold mu.
func (e *Engine) livingPopulation() int {
	n := 0
	for _, a := range e.agents {
		if a.Alive {
			n++
		}
	}
	return n
}

// agentsAt returns living agents at a location. Callers hold mu.
func (e *Engine) agentsAt(location string) []*agents.Agent {
	var out []*agents.Agent
	for _, a := range e.agents {
		if a.Alive && a.Location == location {
			out = append(out, a)
		}
	}
	return out
}

func (e *Engine) String() string {
	return fmt.Sprintf("engine(tick=%d agents=%d)", e.tick, len(e.agents))
}
