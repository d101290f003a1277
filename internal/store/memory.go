// In-memory store for tests and single-process embedding. Mirrors the
// SQLite semantics, including CAS atomicity under one lock.
package store

import (
	"errors"
	"sync"
)

// Memory implements Store with mutex-guarded maps.
type Memory struct {
	mu         sync.Mutex
	values     map[string]string
	characters map[string][]byte
	news       []NewsEntry
	attackLogs map[string][]AttackLogEntry
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		values:     make(map[string]string),
		characters: make(map[string][]byte),
		attackLogs: make(map[string][]AttackLogEntry),
	}
}

func (m *Memory) Value(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) SetValue(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) TryAtomicUpdate(key string, transform TransformFunc) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, exists := m.values[key]
	next, err := transform(current, exists)
	if errors.Is(err, ErrAbortUpdate) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	m.values[key] = next
	return true, nil
}

func (m *Memory) SaveCharacter(id string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(doc))
	copy(cp, doc)
	m.characters[id] = cp
	return nil
}

func (m *Memory) LoadCharacter(id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.characters[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(doc))
	copy(cp, doc)
	return cp, nil
}

func (m *Memory) AppendNews(entry NewsEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.news = append(m.news, entry)
	return nil
}

func (m *Memory) RecentNews(limit int) ([]NewsEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []NewsEntry
	for i := len(m.news) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.news[i])
	}
	return out, nil
}

func (m *Memory) AppendAttackLog(playerID string, entry AttackLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attackLogs[playerID] = append(m.attackLogs[playerID], entry)
	return nil
}

func (m *Memory) AttackLog(playerID string) ([]AttackLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AttackLogEntry(nil), m.attackLogs[playerID]...), nil
}

func (m *Memory) Close() error { return nil }
