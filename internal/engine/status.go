package engine

// Status is a point-in-time snapshot of the engine for host dashboards.
type Status struct {
	Tick       uint64 `json:"tick"`
	Day        uint64 `json:"day"`
	Running    bool   `json:"running"`
	Active     bool   `json:"active"`
	Leader     bool   `json:"leader"`
	Population int    `json:"population"`
	Teams      int    `json:"teams"`
	Sleepers   int    `json:"sleepers"`
	Rumors     int    `json:"rumors"`
	Orphans    int    `json:"orphans"`
}

// GetSimulationStatus reports the current engine state.
func (e *Engine) GetSimulationStatus() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	leader := true
	if e.elector != nil {
		leader = e.isLeader
	}
	return Status{
		Tick:       e.tick,
		Day:        e.simDay(e.tick),
		Running:    e.running,
		Active:     e.active,
		Leader:     leader,
		Population: e.livingPopulation(),
		Teams:      len(e.teams),
		Sleepers:   len(e.sleepers),
		Rumors:     len(e.rumors),
		Orphans:    len(e.orphanage),
	}
}
