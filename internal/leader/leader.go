// Package leader provides cross-process leader election over the store's
// compare-and-swap primitive. Only the lock holder may drive the world
// simulation; a stale heartbeat lets a replacement take over.
package leader

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/korvan/duskspire/internal/store"
)

// lockRecord is the JSON blob stored under the lock key.
type lockRecord struct {
	Owner     string    `json:"owner"`
	Heartbeat time.Time `json:"heartbeat"`
}

// Elector acquires and renews the simulation leadership lock.
type Elector struct {
	store     store.Store
	key       string
	ownerID   string
	staleness time.Duration
}

// New creates an elector with a fresh process identity.
func New(s store.Store, key string, staleness time.Duration) *Elector {
	return &Elector{
		store:     s,
		key:       key,
		ownerID:   uuid.NewString(),
		staleness: staleness,
	}
}

// OwnerID returns this process's lock identity.
func (e *Elector) OwnerID() string {
	return e.ownerID
}

// Acquire attempts to take or renew the lock. Succeeds when the record
// is absent, already ours, or its heartbeat is older than the staleness
// threshold. The whole check-and-write happens inside the store's CAS.
func (e *Elector) Acquire(now time.Time) (bool, error) {
	ok, err := e.store.TryAtomicUpdate(e.key, func(current string, exists bool) (string, error) {
		if exists && current != "" {
			var rec lockRecord
			if err := json.Unmarshal([]byte(current), &rec); err == nil {
				held := rec.Owner != "" && rec.Owner != e.ownerID
				if held && now.Sub(rec.Heartbeat) < e.staleness {
					return "", store.ErrAbortUpdate
				}
			}
			// Unparseable records are treated as stale and overwritten.
		}
		next, err := json.Marshal(lockRecord{Owner: e.ownerID, Heartbeat: now})
		if err != nil {
			return "", fmt.Errorf("marshal lock: %w", err)
		}
		return string(next), nil
	})
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	return ok, nil
}

// Heartbeat refreshes the lock timestamp. Fails if we no longer own it.
func (e *Elector) Heartbeat(now time.Time) (bool, error) {
	ok, err := e.store.TryAtomicUpdate(e.key, func(current string, exists bool) (string, error) {
		if !exists {
			return "", store.ErrAbortUpdate
		}
		var rec lockRecord
		if err := json.Unmarshal([]byte(current), &rec); err != nil || rec.Owner != e.ownerID {
			return "", store.ErrAbortUpdate
		}
		next, err := json.Marshal(lockRecord{Owner: e.ownerID, Heartbeat: now})
		if err != nil {
			return "", fmt.Errorf("marshal lock: %w", err)
		}
		return string(next), nil
	})
	if err != nil {
		return false, fmt.Errorf("heartbeat lock: %w", err)
	}
	return ok, nil
}

// Release gives up the lock if we hold it.
func (e *Elector) Release() error {
	_, err := e.store.TryAtomicUpdate(e.key, func(current string, exists bool) (string, error) {
		if !exists {
			return "", store.ErrAbortUpdate
		}
		var rec lockRecord
		if err := json.Unmarshal([]byte(current), &rec); err != nil || rec.Owner != e.ownerID {
			return "", store.ErrAbortUpdate
		}
		next, _ := json.Marshal(lockRecord{})
		return string(next), nil
	})
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
