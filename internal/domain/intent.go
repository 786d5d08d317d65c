package domain

import (
	"fmt"
	"math"
	"strings"
)

type Intent string

const (
	IntentNormal      Intent = "Normal"
	IntentMaintenance Intent = "Maintenance"
	IntentAccidental  Intent = "Accidental"
	IntentSabotage    Intent = "Sabotage"
)

var Intents = []Intent{IntentNormal, IntentMaintenance, IntentAccidental, IntentSabotage}

// ParseIntent matches s against the four intents, ignoring case and
// surrounding whitespace, and returns the canonical spelling.
func ParseIntent(s string) (Intent, error) {
	s = strings.TrimSpace(s)
	for _, in := range Intents {
		if strings.EqualFold(s, string(in)) {
			return in, nil
		}
	}
	return "", fmt.Errorf("unknown intent %q", s)
}

// ClassificationSource records which path produced a classification. It is
// never serialized.
type ClassificationSource string

const (
	SourceReasoning ClassificationSource = "reasoning"
	SourceHeuristic ClassificationSource = "heuristic"
)

type IntentClassification struct {
	Intent         Intent  `json:"intent"`
	RiskScore      float64 `json:"risk_score"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation"`

	Source ClassificationSource `json:"-"`
}

// ClampScore bounds v to [0,100]. NaN maps to 0.
func ClampScore(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
