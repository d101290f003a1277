// Event buffer and public news feed. Events are kept in a bounded ring
// for the host; public ones are also appended to the persisted feed.
package engine

import (
	"log/slog"

	"github.com/korvan/duskspire/internal/store"
)

// maxEvents bounds the in-memory event ring.
const maxEvents = 1000

// Event is a notable occurrence in the world.
type Event struct {
	Tick        uint64 `json:"tick"`
	Category    string `json:"category"` // "death", "birth", "rivalry", "war", "gossip", ...
	Description string `json:"description"`
}

// emit records an event in the ring buffer. Callers hold mu.
func (e *Engine) emit(ev Event) {
	e.events = append(e.events, ev)
	if len(e.events) > maxEvents {
		e.events = e.events[len(e.events)-maxEvents:]
	}
}

// announce records an event and publishes it to the persisted news feed.
// Feed failures are transient persistence errors: logged and skipped,
// the world keeps ticking.
func (e *Engine) announce(ev Event) {
	e.emit(ev)
	entry := store.NewsEntry{Tick: ev.Tick, Category: ev.Category, Body: ev.Description}
	go func() {
		if err := e.st.AppendNews(entry); err != nil {
			slog.Warn("news append failed", "category", entry.Category, "error", err)
		}
	}()
}

// RecentEvents returns up to limit events, newest last.
func (e *Engine) RecentEvents(limit int) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	if limit <= 0 || limit > len(e.events) {
		limit = len(e.events)
	}
	out := make([]Event, limit)
	copy(out, e.events[len(e.events)-limit:])
	return out
}
