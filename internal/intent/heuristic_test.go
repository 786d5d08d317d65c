package intent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name      string
		vibration float64
		sound     float64
		want      domain.IntentClassification
	}{
		{
			name: "quiet track", vibration: 3, sound: 55,
			want: domain.IntentClassification{Intent: domain.IntentNormal, RiskScore: 20, Confidence: 75, Recommendation: "Continue monitoring"},
		},
		{
			name: "vibration at limit", vibration: 10, sound: 80,
			want: domain.IntentClassification{Intent: domain.IntentNormal, RiskScore: 20, Confidence: 75, Recommendation: "Continue monitoring"},
		},
		{
			name: "vibration over limit", vibration: 10.01, sound: 40,
			want: domain.IntentClassification{Intent: domain.IntentMaintenance, RiskScore: 50, Confidence: 75, Recommendation: "Schedule inspection"},
		},
		{
			name: "sound over limit", vibration: 2, sound: 80.5,
			want: domain.IntentClassification{Intent: domain.IntentMaintenance, RiskScore: 50, Confidence: 75, Recommendation: "Schedule inspection"},
		},
		{
			name: "nan inputs", vibration: math.NaN(), sound: math.NaN(),
			want: domain.IntentClassification{Intent: domain.IntentNormal, RiskScore: 20, Confidence: 75, Recommendation: "Continue monitoring"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Estimate(tt.vibration, tt.sound)
			tt.want.Source = domain.SourceHeuristic
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimateOnlyTwoOutcomes(t *testing.T) {
	for v := 0.0; v <= 20; v += 0.5 {
		for s := 30.0; s <= 100; s += 2.5 {
			got := Estimate(v, s)
			assert.Contains(t, []float64{20, 50}, got.RiskScore)
			assert.Contains(t, []domain.Intent{domain.IntentNormal, domain.IntentMaintenance}, got.Intent)
		}
	}
}
