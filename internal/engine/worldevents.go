// World events — wars, plagues, festivals, throne crises — shift the
// activity weights of every agent while active.
package engine

// WorldEventKind classifies an active world event.
type WorldEventKind uint8

const (
	EventWar WorldEventKind = iota
	EventPlague
	EventFestival
	EventThroneCrisis
)

// WorldEvent is an active world condition with an expiry tick.
type WorldEvent struct {
	Kind    WorldEventKind `json:"kind"`
	Name    string         `json:"name"`
	Expires uint64         `json:"expires"`
}

// TriggerWorldEvent activates a world event lasting the given ticks.
func (e *Engine) TriggerWorldEvent(kind WorldEventKind, name string, durationTicks uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev := WorldEvent{Kind: kind, Name: name, Expires: e.tick + durationTicks}
	e.worldEvents = append(e.worldEvents, ev)
	e.announce(Event{Tick: e.tick, Category: "world", Description: name + " grips the realm"})
}

// ActiveWorldEvents returns the currently active events.
func (e *Engine) ActiveWorldEvents() []WorldEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]WorldEvent(nil), e.worldEvents...)
}

// expireWorldEventsLocked drops events past their expiry. Callers hold mu.
func (e *Engine) expireWorldEventsLocked(tick uint64) {
	kept := e.worldEvents[:0]
	for _, ev := range e.worldEvents {
		if ev.Expires > tick {
			kept = append(kept, ev)
		} else {
			e.emit(Event{Tick: tick, Category: "world", Description: ev.Name + " has passed"})
		}
	}
	e.worldEvents = kept
}
