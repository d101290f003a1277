// Agent memory log — bounded record of recent experiences that feeds
// back into activity weighting.
package agents

// MaxMemories bounds the per-agent memory log. When full, the
// lowest-importance entry is evicted.
const MaxMemories = 40

// MemoryKind classifies a remembered event.
type MemoryKind uint8

const (
	MemDefeat MemoryKind = iota
	MemVictory
	MemWitnessedDeath
	MemMadeEnemy
	MemMadeFriend
	MemRobbed
	MemMarried
	MemWidowed
	MemDivorced
	MemChildBorn
	MemBetrayed
	MemVisited
	MemGossipHeard
)

// Memory is one remembered event with salience scalars.
type Memory struct {
	Tick            uint64     `json:"tick"`
	Kind            MemoryKind `json:"kind"`
	Importance      float64    `json:"importance"`       // 0..1
	EmotionalImpact float64    `json:"emotional_impact"` // -1..1, negative is distressing
	Location        string     `json:"location,omitempty"`
	Other           AgentID    `json:"other,omitempty"`
	Detail          string     `json:"detail,omitempty"`
}

// Remember appends a memory, evicting the least important entry when
// the log is full and the new memory outranks it.
func (a *Agent) Remember(m Memory) {
	if len(a.Memories) < MaxMemories {
		a.Memories = append(a.Memories, m)
		return
	}
	minIdx := 0
	for i := 1; i < len(a.Memories); i++ {
		if a.Memories[i].Importance < a.Memories[minIdx].Importance {
			minIdx = i
		}
	}
	if m.Importance > a.Memories[minIdx].Importance {
		a.Memories[minIdx] = m
	}
}

// RecentMemories returns memories no older than window ticks before now.
func (a *Agent) RecentMemories(now uint64, window uint64) []Memory {
	var out []Memory
	for _, m := range a.Memories {
		if m.Tick+window >= now {
			out = append(out, m)
		}
	}
	return out
}

// LocationSentiment accumulates a signed score per visited place from
// the recent memory window. Positive means the agent associates the
// place with good experiences.
func (a *Agent) LocationSentiment(now uint64, window uint64) map[string]float64 {
	scores := make(map[string]float64)
	for _, m := range a.RecentMemories(now, window) {
		if m.Location == "" {
			continue
		}
		scores[m.Location] += m.EmotionalImpact * m.Importance
	}
	return scores
}
