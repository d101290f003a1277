// Emotional cascade — strong feelings spread to co-located agents.
// Per-agent tick spacing keeps feedback loops from running away.
package engine

import (
	"fmt"

	"github.com/korvan/duskspire/internal/agents"
)

// cascadePass propagates dominant emotions above the intensity
// threshold. Three or more affected agents seed a gossip item.
// Callers hold mu.
func (e *Engine) cascadePass(tick uint64) {
	for _, a := range e.agents {
		if !a.Alive {
			continue
		}
		dominant, intensity := a.Emotions.Dominant()
		if intensity < e.cfg.Social.CascadeThreshold {
			continue
		}
		if last, ok := e.cascadeLast[a.ID]; ok && tick < last+e.cfg.Social.CascadeSpacingTicks {
			continue
		}

		affected := 0
		for _, other := range e.agentsAt(a.Location) {
			if other.ID == a.ID {
				continue
			}
			if !e.rng.Roll(e.cfg.Social.CascadeChance) {
				continue
			}
			if e.infect(dominant, other) {
				affected++
			}
		}
		if affected == 0 {
			continue
		}
		e.cascadeLast[a.ID] = tick

		if affected >= 3 {
			e.addRumorLocked(fmt.Sprintf("They say %s spread through the %s like wildfire around %s",
				agents.EmotionName(dominant), a.Location, a.Name))
		}
	}
}

// infect applies one agent's dominant emotion to a bystander. Returns
// true when anything actually spread.
func (e *Engine) infect(source agents.Emotion, target *agents.Agent) bool {
	switch source {
	case agents.EmotionAnger:
		// Anger angers the aggressive and frightens everyone else.
		if target.Personality.Aggression > 0.5 {
			target.Emotions.Adjust(agents.EmotionAnger, 0.2)
		} else {
			target.Emotions.Adjust(agents.EmotionFear, 0.2)
		}
		return true
	case agents.EmotionFear:
		target.Emotions.Adjust(agents.EmotionFear, 0.2)
		return true
	case agents.EmotionJoy:
		// Joy is universally infectious.
		target.Emotions.Adjust(agents.EmotionJoy, 0.15)
		return true
	case agents.EmotionSadness:
		if target.Personality.Sociability > 0.6 {
			target.Emotions.Adjust(agents.EmotionSadness, 0.15)
			return true
		}
		return false
	default:
		return false
	}
}
