package leader

import (
	"testing"
	"time"

	"github.com/korvan/duskspire/internal/store"
)

func TestAcquireAbsentLock(t *testing.T) {
	st := store.NewMemory()
	e := New(st, "lock", time.Minute)
	ok, err := e.Acquire(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("absent lock must be acquirable")
	}
}

func TestReacquireOwnLock(t *testing.T) {
	st := store.NewMemory()
	e := New(st, "lock", time.Minute)
	now := time.Now()
	if ok, _ := e.Acquire(now); !ok {
		t.Fatal("initial acquire failed")
	}
	if ok, _ := e.Acquire(now.Add(time.Second)); !ok {
		t.Fatal("owner must always renew its own lock")
	}
}

func TestFreshLockDeniedToOthers(t *testing.T) {
	st := store.NewMemory()
	a := New(st, "lock", time.Minute)
	b := New(st, "lock", time.Minute)
	now := time.Now()

	if ok, _ := a.Acquire(now); !ok {
		t.Fatal("first acquire failed")
	}
	if ok, _ := b.Acquire(now.Add(10 * time.Second)); ok {
		t.Fatal("fresh lock must be denied to a second process")
	}
}

func TestStaleLockTakeover(t *testing.T) {
	st := store.NewMemory()
	a := New(st, "lock", time.Minute)
	b := New(st, "lock", time.Minute)
	now := time.Now()

	if ok, _ := a.Acquire(now); !ok {
		t.Fatal("first acquire failed")
	}
	// Heartbeat older than staleness: the holder is presumed dead.
	if ok, _ := b.Acquire(now.Add(2 * time.Minute)); !ok {
		t.Fatal("stale lock must be taken over")
	}
	// Original owner is now locked out.
	if ok, _ := a.Acquire(now.Add(2*time.Minute + time.Second)); ok {
		t.Fatal("evicted owner must not re-acquire a fresh lock")
	}
}

func TestUnparseableRecordTreatedStale(t *testing.T) {
	st := store.NewMemory()
	if err := st.SetValue("lock", "not json"); err != nil {
		t.Fatal(err)
	}
	e := New(st, "lock", time.Minute)
	if ok, _ := e.Acquire(time.Now()); !ok {
		t.Fatal("garbage lock record must be overwritten")
	}
}

func TestHeartbeatOwnershipCheck(t *testing.T) {
	st := store.NewMemory()
	a := New(st, "lock", time.Minute)
	b := New(st, "lock", time.Minute)
	now := time.Now()

	if ok, _ := b.Heartbeat(now); ok {
		t.Fatal("heartbeat without a lock must fail")
	}
	if ok, _ := a.Acquire(now); !ok {
		t.Fatal("acquire failed")
	}
	if ok, _ := a.Heartbeat(now.Add(time.Second)); !ok {
		t.Fatal("owner heartbeat must succeed")
	}
	if ok, _ := b.Heartbeat(now.Add(time.Second)); ok {
		t.Fatal("non-owner heartbeat must fail")
	}
}

func TestReleaseFreesLock(t *testing.T) {
	st := store.NewMemory()
	a := New(st, "lock", time.Minute)
	b := New(st, "lock", time.Minute)
	now := time.Now()

	if ok, _ := a.Acquire(now); !ok {
		t.Fatal("acquire failed")
	}
	if err := a.Release(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := b.Acquire(now.Add(time.Second)); !ok {
		t.Fatal("released lock must be immediately acquirable")
	}
}
