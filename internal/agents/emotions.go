// Emotional state — intensities that decay over time and spread to
// co-located agents through the cascade pass.
package agents

// Emotion identifies one of the tracked feelings.
type Emotion uint8

const (
	EmotionAnger Emotion = iota
	EmotionFear
	EmotionJoy
	EmotionSadness
	EmotionConfidence
	EmotionPride
)

// EmotionState holds bounded [0,1] intensities per emotion.
type EmotionState struct {
	Anger      float64 `json:"anger"`
	Fear       float64 `json:"fear"`
	Joy        float64 `json:"joy"`
	Sadness    float64 `json:"sadness"`
	Confidence float64 `json:"confidence"`
	Pride      float64 `json:"pride"`
}

// Adjust shifts one emotion by delta, clamped to [0, 1].
func (e *EmotionState) Adjust(em Emotion, delta float64) {
	p := e.ptr(em)
	*p += delta
	if *p < 0 {
		*p = 0
	}
	if *p > 1 {
		*p = 1
	}
}

// Intensity returns the current level of one emotion.
func (e *EmotionState) Intensity(em Emotion) float64 {
	return *e.ptr(em)
}

// Dominant returns the strongest emotion and its intensity.
func (e *EmotionState) Dominant() (Emotion, float64) {
	best := EmotionJoy
	bestVal := e.Joy
	for _, em := range []Emotion{EmotionAnger, EmotionFear, EmotionSadness, EmotionConfidence, EmotionPride} {
		if v := e.Intensity(em); v > bestVal {
			best, bestVal = em, v
		}
	}
	return best, bestVal
}

// Decay relaxes all intensities toward zero by rate per tick.
func (e *EmotionState) Decay(rate float64) {
	for _, em := range []Emotion{EmotionAnger, EmotionFear, EmotionJoy, EmotionSadness, EmotionConfidence, EmotionPride} {
		p := e.ptr(em)
		*p -= rate
		if *p < 0 {
			*p = 0
		}
	}
}

func (e *EmotionState) ptr(em Emotion) *float64 {
	switch em {
	case EmotionAnger:
		return &e.Anger
	case EmotionFear:
		return &e.Fear
	case EmotionJoy:
		return &e.Joy
	case EmotionSadness:
		return &e.Sadness
	case EmotionConfidence:
		return &e.Confidence
	default:
		return &e.Pride
	}
}

// EmotionName returns a human-readable label for news text.
func EmotionName(em Emotion) string {
	switch em {
	case EmotionAnger:
		return "anger"
	case EmotionFear:
		return "fear"
	case EmotionJoy:
		return "joy"
	case EmotionSadness:
		return "sadness"
	case EmotionConfidence:
		return "confidence"
	default:
		return "pride"
	}
}
