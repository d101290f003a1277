package store

import (
	"errors"
	"testing"
)

func TestMemoryValues(t *testing.T) {
	m := NewMemory()
	if _, err := m.Value("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key: got %v, want ErrNotFound", err)
	}
	if err := m.SetValue("k", "v"); err != nil {
		t.Fatal(err)
	}
	v, err := m.Value("k")
	if err != nil || v != "v" {
		t.Fatalf("Value = %q, %v", v, err)
	}
}

func TestMemoryAtomicUpdate(t *testing.T) {
	m := NewMemory()

	ok, err := m.TryAtomicUpdate("counter", func(current string, exists bool) (string, error) {
		if exists {
			t.Fatal("key should not exist yet")
		}
		return "1", nil
	})
	if err != nil || !ok {
		t.Fatalf("initial update: ok=%v err=%v", ok, err)
	}

	ok, err = m.TryAtomicUpdate("counter", func(current string, exists bool) (string, error) {
		if !exists || current != "1" {
			t.Fatalf("transform saw %q exists=%v", current, exists)
		}
		return "", ErrAbortUpdate
	})
	if err != nil {
		t.Fatalf("abort must not surface an error: %v", err)
	}
	if ok {
		t.Fatal("aborted update must report ok=false")
	}
	if v, _ := m.Value("counter"); v != "1" {
		t.Fatalf("aborted update must not write, got %q", v)
	}

	wantErr := errors.New("boom")
	if _, err := m.TryAtomicUpdate("counter", func(string, bool) (string, error) {
		return "", wantErr
	}); !errors.Is(err, wantErr) {
		t.Fatalf("transform errors must propagate, got %v", err)
	}
}

func TestMemoryCharacterRoundTrip(t *testing.T) {
	m := NewMemory()
	if _, err := m.LoadCharacter("p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing character: got %v", err)
	}
	doc := []byte(`{"hp":10}`)
	if err := m.SaveCharacter("p1", doc); err != nil {
		t.Fatal(err)
	}
	doc[2] = 'x' // caller mutation must not leak into the store
	got, err := m.LoadCharacter("p1")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"hp":10}` {
		t.Fatalf("stored doc was mutated: %s", got)
	}
}

func TestMemoryNewsOrder(t *testing.T) {
	m := NewMemory()
	for i := uint64(1); i <= 5; i++ {
		if err := m.AppendNews(NewsEntry{Tick: i, Body: "n"}); err != nil {
			t.Fatal(err)
		}
	}
	out, err := m.RecentNews(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || out[0].Tick != 5 || out[2].Tick != 3 {
		t.Fatalf("RecentNews must be newest first and limited: %+v", out)
	}
}

func TestMemoryAttackLog(t *testing.T) {
	m := NewMemory()
	m.AppendAttackLog("p1", AttackLogEntry{Tick: 1, Attacker: "Grim"})
	m.AppendAttackLog("p1", AttackLogEntry{Tick: 2, Attacker: "Grim", Won: true})
	m.AppendAttackLog("p2", AttackLogEntry{Tick: 3, Attacker: "Vex"})

	log, err := m.AttackLog("p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(log) != 2 || log[0].Tick != 1 || !log[1].Won {
		t.Fatalf("attack log mismatch: %+v", log)
	}
	if other, _ := m.AttackLog("p2"); len(other) != 1 {
		t.Fatalf("logs must be per player: %+v", other)
	}
}
