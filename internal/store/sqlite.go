// SQLite-backed store. WAL mode keeps the tick loop's writes from
// blocking host reads; CAS runs under an immediate transaction.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLite implements Store on a local SQLite database.
type SQLite struct {
	conn *sqlx.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &SQLite{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS world_values (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS characters (
		id TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		category TEXT NOT NULL,
		body TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attack_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		attacker TEXT NOT NULL,
		body TEXT NOT NULL,
		won INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attack_logs_player ON attack_logs(player_id);
	CREATE INDEX IF NOT EXISTS idx_news_tick ON news(tick);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Value returns the stored value for key.
func (s *SQLite) Value(key string) (string, error) {
	var value string
	err := s.conn.Get(&value, "SELECT value FROM world_values WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// SetValue writes a key unconditionally.
func (s *SQLite) SetValue(key, value string) error {
	_, err := s.conn.Exec(
		"INSERT OR REPLACE INTO world_values (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// TryAtomicUpdate performs a read-modify-write under an immediate
// transaction, so two processes cannot both pass the same precondition.
func (s *SQLite) TryAtomicUpdate(key string, transform TransformFunc) (bool, error) {
	// The connection is opened with _txlock=immediate, so the write
	// lock is taken here rather than deferred to the first write.
	tx, err := s.conn.Beginx()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var current string
	exists := true
	err = tx.Get(&current, "SELECT value FROM world_values WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return false, err
	}

	next, err := transform(current, exists)
	if errors.Is(err, ErrAbortUpdate) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO world_values (key, value) VALUES (?, ?)",
		key, next,
	); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// SaveCharacter writes a character save document.
func (s *SQLite) SaveCharacter(id string, doc []byte) error {
	_, err := s.conn.Exec(
		"INSERT OR REPLACE INTO characters (id, doc) VALUES (?, ?)",
		id, string(doc),
	)
	return err
}

// LoadCharacter reads a character save document.
func (s *SQLite) LoadCharacter(id string) ([]byte, error) {
	var doc string
	err := s.conn.Get(&doc, "SELECT doc FROM characters WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

// AppendNews appends one public feed item.
func (s *SQLite) AppendNews(entry NewsEntry) error {
	_, err := s.conn.Exec(
		"INSERT INTO news (tick, category, body) VALUES (?, ?, ?)",
		entry.Tick, entry.Category, entry.Body,
	)
	return err
}

// RecentNews returns the latest entries, newest first.
func (s *SQLite) RecentNews(limit int) ([]NewsEntry, error) {
	var entries []NewsEntry
	err := s.conn.Select(&entries,
		"SELECT tick, category, body FROM news ORDER BY id DESC LIMIT ?", limit)
	return entries, err
}

// AppendAttackLog appends one sleeper attack record.
func (s *SQLite) AppendAttackLog(playerID string, entry AttackLogEntry) error {
	won := 0
	if entry.Won {
		won = 1
	}
	_, err := s.conn.Exec(
		"INSERT INTO attack_logs (player_id, tick, attacker, body, won) VALUES (?, ?, ?, ?, ?)",
		playerID, entry.Tick, entry.Attacker, entry.Body, won,
	)
	return err
}

// AttackLog returns a player's attack log, oldest first.
func (s *SQLite) AttackLog(playerID string) ([]AttackLogEntry, error) {
	rows, err := s.conn.Queryx(
		"SELECT tick, attacker, body, won FROM attack_logs WHERE player_id = ? ORDER BY id ASC",
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AttackLogEntry
	for rows.Next() {
		var e AttackLogEntry
		var won int
		if err := rows.Scan(&e.Tick, &e.Attacker, &e.Body, &won); err != nil {
			return nil, err
		}
		e.Won = won != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
