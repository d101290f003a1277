package ratelimit

import "testing"

func TestPairKeyOrderIndependent(t *testing.T) {
	if PairKey("a", "b") != PairKey("b", "a") {
		t.Fatal("pair key must not depend on argument order")
	}
}

func TestAllowAgentCooldown(t *testing.T) {
	l := New()
	if !l.AllowAgent("x", 100, 10) {
		t.Fatal("first action must be allowed")
	}
	if l.AllowAgent("x", 105, 10) {
		t.Fatal("action within the window must be denied")
	}
	if !l.AllowAgent("x", 110, 10) {
		t.Fatal("action at window expiry must be allowed")
	}
}

func TestAllowPairDenialKeepsTimestamp(t *testing.T) {
	l := New()
	if !l.AllowPair("a", "b", 100, 50) {
		t.Fatal("first interaction must be allowed")
	}

	// Denied attempts must not extend the cooldown, or repeated attempts
	// would suppress the pair forever.
	for tick := uint64(110); tick < 150; tick += 10 {
		if l.AllowPair("a", "b", tick, 50) {
			t.Fatalf("interaction at %d should be denied", tick)
		}
		if last, _ := l.PairLast("a", "b"); last != 100 {
			t.Fatalf("denial advanced the timestamp to %d", last)
		}
	}

	if !l.AllowPair("b", "a", 150, 50) {
		t.Fatal("interaction after the window must be allowed regardless of order")
	}
}

func TestCountCombatCapAndReset(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.CountCombat("x", 3) {
			t.Fatalf("combat %d should fit under the cap", i+1)
		}
	}
	if l.CountCombat("x", 3) {
		t.Fatal("combat over the cap must be denied")
	}
	if !l.CountCombat("y", 3) {
		t.Fatal("caps are per agent")
	}

	l.ResetDay()
	if !l.CountCombat("x", 3) {
		t.Fatal("daily reset must clear the counters")
	}
}
