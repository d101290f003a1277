// Package ratelimit provides the cooldown ledger used in persistent
// deployments: per-agent and per-pair action cooldowns plus daily combat
// caps, all keyed on the tick counter.
package ratelimit

import (
	"sync"
)

// Ledger tracks last-action ticks and daily combat counts. Safe for
// concurrent use: the tick loop and host request handlers both consult it.
type Ledger struct {
	mu           sync.Mutex
	agentLast    map[string]uint64
	pairLast     map[string]uint64
	dailyCombats map[string]int
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		agentLast:    make(map[string]uint64),
		pairLast:     make(map[string]uint64),
		dailyCombats: make(map[string]int),
	}
}

// PairKey builds an order-independent key for two agents.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// AllowAgent returns true and records the tick if the agent has not
// acted within the window. A denied check leaves the ledger untouched.
func (l *Ledger) AllowAgent(id string, tick, window uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.agentLast[id]; ok && tick < last+window {
		return false
	}
	l.agentLast[id] = tick
	return true
}

// AllowPair returns true and records the tick if the pair has not
// interacted within the window. A denied check must not advance the
// stored timestamp, or suppressed attempts would extend the cooldown.
func (l *Ledger) AllowPair(a, b string, tick, window uint64) bool {
	key := PairKey(a, b)
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.pairLast[key]; ok && tick < last+window {
		return false
	}
	l.pairLast[key] = tick
	return true
}

// PairLast returns the recorded tick for a pair, for tests and status.
func (l *Ledger) PairLast(a, b string) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.pairLast[PairKey(a, b)]
	return t, ok
}

// CountCombat increments an agent's daily combat counter if under the
// cap, returning false once the cap is reached.
func (l *Ledger) CountCombat(id string, cap int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dailyCombats[id] >= cap {
		return false
	}
	l.dailyCombats[id]++
	return true
}

// ResetDay clears the daily combat counters. Called once per sim-day.
func (l *Ledger) ResetDay() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dailyCombats = make(map[string]int)
}
