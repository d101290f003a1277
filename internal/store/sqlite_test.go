package store

import (
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteValueRoundTrip(t *testing.T) {
	s := openTestDB(t)
	if _, err := s.Value("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key: got %v", err)
	}
	if err := s.SetValue("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetValue("k", "v2"); err != nil {
		t.Fatal(err)
	}
	v, err := s.Value("k")
	if err != nil || v != "v2" {
		t.Fatalf("Value = %q, %v", v, err)
	}
}

func TestSQLiteAtomicUpdateAbort(t *testing.T) {
	s := openTestDB(t)
	if err := s.SetValue("lock", "held"); err != nil {
		t.Fatal(err)
	}
	ok, err := s.TryAtomicUpdate("lock", func(current string, exists bool) (string, error) {
		if !exists || current != "held" {
			t.Fatalf("transform saw %q exists=%v", current, exists)
		}
		return "", ErrAbortUpdate
	})
	if err != nil || ok {
		t.Fatalf("abort: ok=%v err=%v", ok, err)
	}
	if v, _ := s.Value("lock"); v != "held" {
		t.Fatalf("aborted update must not write, got %q", v)
	}
}

func TestSQLiteCharacterAndLogs(t *testing.T) {
	s := openTestDB(t)
	if err := s.SaveCharacter("p1", []byte(`{"hp":5}`)); err != nil {
		t.Fatal(err)
	}
	doc, err := s.LoadCharacter("p1")
	if err != nil || string(doc) != `{"hp":5}` {
		t.Fatalf("LoadCharacter = %s, %v", doc, err)
	}

	for i := uint64(1); i <= 4; i++ {
		if err := s.AppendNews(NewsEntry{Tick: i, Category: "test", Body: "n"}); err != nil {
			t.Fatal(err)
		}
	}
	news, err := s.RecentNews(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(news) != 2 || news[0].Tick != 4 {
		t.Fatalf("RecentNews must be newest first: %+v", news)
	}

	s.AppendAttackLog("p1", AttackLogEntry{Tick: 1, Attacker: "Grim", Won: false})
	s.AppendAttackLog("p1", AttackLogEntry{Tick: 2, Attacker: "Grim", Won: true})
	log, err := s.AttackLog("p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(log) != 2 || log[0].Tick != 1 || !log[1].Won {
		t.Fatalf("attack log must be oldest first: %+v", log)
	}
}

func TestSQLiteAtomicUpdateContention(t *testing.T) {
	s := openTestDB(t)
	if err := s.SetValue("counter", "0"); err != nil {
		t.Fatal(err)
	}

	const workers, perWorker = 4, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				for attempt := 0; ; attempt++ {
					ok, err := s.TryAtomicUpdate("counter", func(current string, exists bool) (string, error) {
						n, convErr := strconv.Atoi(current)
						if convErr != nil {
							return "", convErr
						}
						return strconv.Itoa(n + 1), nil
					})
					if ok {
						break
					}
					if attempt > 1000 {
						t.Errorf("increment never succeeded: %v", err)
						return
					}
					if err != nil {
						time.Sleep(time.Millisecond)
					}
				}
			}
		}()
	}
	wg.Wait()

	v, err := s.Value("counter")
	if err != nil {
		t.Fatal(err)
	}
	if v != strconv.Itoa(workers*perWorker) {
		t.Fatalf("lost updates under contention: counter = %s, want %d", v, workers*perWorker)
	}
}
