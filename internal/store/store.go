// Package store is the persistence boundary: a key-value table with an
// atomic compare-and-swap primitive, character save documents, and
// append-only event logs. The engine never talks to storage any other way.
package store

import "errors"

// ErrNotFound is returned when a key or character save does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrAbortUpdate can be returned by a TransformFunc to cancel an atomic
// update without reporting a storage failure.
var ErrAbortUpdate = errors.New("store: update aborted")

// TransformFunc receives the current value (exists=false when the key is
// absent) and returns the replacement value.
type TransformFunc func(current string, exists bool) (string, error)

// NewsEntry is one public feed item.
type NewsEntry struct {
	Tick     uint64 `json:"tick"`
	Category string `json:"category"`
	Body     string `json:"body"`
}

// AttackLogEntry records one sleeper attack outcome for a player.
type AttackLogEntry struct {
	Tick     uint64 `json:"tick"`
	Attacker string `json:"attacker"`
	Body     string `json:"body"`
	Won      bool   `json:"won"` // true when the sleeping player survived
}

// Store is the opaque persistence collaborator.
type Store interface {
	// Value returns the string value for a key, or ErrNotFound.
	Value(key string) (string, error)
	// SetValue writes a key unconditionally.
	SetValue(key, value string) error
	// TryAtomicUpdate runs transform as a read-modify-write under a
	// transaction. Returns false without error when the transform aborted.
	TryAtomicUpdate(key string, transform TransformFunc) (bool, error)

	// SaveCharacter writes a character save document (JSON).
	SaveCharacter(id string, doc []byte) error
	// LoadCharacter reads a character save document, or ErrNotFound.
	LoadCharacter(id string) ([]byte, error)

	// AppendNews appends to the public news feed.
	AppendNews(entry NewsEntry) error
	// RecentNews returns the latest entries, newest first.
	RecentNews(limit int) ([]NewsEntry, error)

	// AppendAttackLog appends to a player's sleeper attack log.
	AppendAttackLog(playerID string, entry AttackLogEntry) error
	// AttackLog returns a player's attack log, oldest first.
	AttackLog(playerID string) ([]AttackLogEntry, error)

	Close() error
}
