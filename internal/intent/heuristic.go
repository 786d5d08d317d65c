package intent

import "github.com/shreya-shukla01/NSUTHackathon/internal/domain"

const (
	heuristicVibrationLimit = 10.0
	heuristicSoundLimit     = 80.0
	heuristicConfidence     = 75.0
)

// Estimate is the deterministic fallback classifier. Only vibration and
// sound level are considered. It never fails and does no I/O.
func Estimate(vibration, soundLevel float64) domain.IntentClassification {
	risk := 20.0
	if vibration > heuristicVibrationLimit || soundLevel > heuristicSoundLimit {
		risk = 50
	}

	intent := domain.IntentMaintenance
	if risk < 30 {
		intent = domain.IntentNormal
	}

	recommendation := "Schedule inspection"
	if risk < 50 {
		recommendation = "Continue monitoring"
	}

	return domain.IntentClassification{
		Intent:         intent,
		RiskScore:      risk,
		Confidence:     heuristicConfidence,
		Recommendation: recommendation,
		Source:         domain.SourceHeuristic,
	}
}
