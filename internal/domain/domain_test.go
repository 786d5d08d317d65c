package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		in      string
		want    Intent
		wantErr bool
	}{
		{"Sabotage", IntentSabotage, false},
		{" sabotage ", IntentSabotage, false},
		{"MAINTENANCE", IntentMaintenance, false},
		{"normal", IntentNormal, false},
		{"Accidental", IntentAccidental, false},
		{"Intrusion", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIntent(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-5))
	assert.Equal(t, 100.0, ClampScore(150))
	assert.Equal(t, 42.5, ClampScore(42.5))
	assert.Equal(t, 0.0, ClampScore(math.NaN()))
	assert.Equal(t, 100.0, ClampScore(math.Inf(1)))
}

func TestEscalate(t *testing.T) {
	tests := []struct {
		name     string
		c        IntentClassification
		want     Severity
		wantRule bool
	}{
		{"sabotage-low-risk", IntentClassification{Intent: IntentSabotage, RiskScore: 10}, SeverityCritical, true},
		{"high-risk", IntentClassification{Intent: IntentAccidental, RiskScore: 85}, SeverityCritical, true},
		{"elevated", IntentClassification{Intent: IntentMaintenance, RiskScore: 50}, SeverityWarning, true},
		{"quiet", IntentClassification{Intent: IntentNormal, RiskScore: 20}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := Escalate(DefaultEscalationRules, tt.c)
			assert.Equal(t, tt.wantRule, ok)
			assert.Equal(t, tt.want, rule.Severity)
		})
	}
}

func TestSensorReportExpand(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := SensorReport{
		SensorID:  "VIB-07",
		Location:  "Delhi-Mumbai KM 245",
		Timestamp: ts,
		SensorReading: SensorReading{
			Vibration: 6.2, SoundLevel: 71, Temperature: 29, VisualMotion: true,
		},
	}

	n := 0
	records := r.Expand(func() string { n++; return "id-" + strconv.Itoa(n) })
	require.Len(t, records, 4)

	byType := map[SensorType]SensorData{}
	for _, d := range records {
		byType[d.SensorType] = d
		assert.Equal(t, "VIB-07", d.SensorID)
		assert.Equal(t, ts, d.Timestamp)
	}
	assert.Equal(t, 6.2, byType[SensorVibration].Value)
	assert.Equal(t, "dB", byType[SensorSound].Unit)
	assert.Equal(t, 1.0, byType[SensorVisualMotion].Value)
	assert.Equal(t, "id-4", records[3].ID)
}

func TestNewSensorSnapshotStatuses(t *testing.T) {
	snap := NewSensorSnapshot(SensorReading{Vibration: 5, SoundLevel: 79.996, Temperature: 36}, time.Now())
	assert.Equal(t, "warning", snap.Vibration.Status)
	assert.Equal(t, "normal", snap.Sound.Status)
	assert.Equal(t, 80.0, snap.Sound.Value)
	assert.Equal(t, "warning", snap.Temperature.Status)
	assert.Equal(t, "monitoring", snap.Visual.Status)
}

func TestTimestampLayoutSortsLexically(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	earlier := FormatTimestamp(base)
	later := FormatTimestamp(base.Add(1500 * time.Millisecond))

	assert.Equal(t, "2026-01-01T00:00:00.000000+00:00", earlier)
	assert.Less(t, earlier, later)

	parsed, err := ParseTimestamp(later)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(base.Add(1500*time.Millisecond)))

	legacy, err := ParseTimestamp("2026-01-01T00:00:00+00:00")
	require.NoError(t, err)
	assert.True(t, legacy.Equal(base))
}

func TestAlertCountFilterMatches(t *testing.T) {
	now := time.Now().UTC()
	a := Alert{Severity: SeverityCritical, Status: StatusActive, Intent: IntentSabotage, Timestamp: now.Add(-time.Hour)}

	assert.True(t, AlertCountFilter{}.Matches(a))
	assert.True(t, AlertCountFilter{Severity: SeverityCritical, Status: StatusActive}.Matches(a))
	assert.False(t, AlertCountFilter{Status: StatusResolved}.Matches(a))
	assert.True(t, AlertCountFilter{Intent: IntentSabotage, Since: now.Add(-2 * time.Hour)}.Matches(a))
	assert.False(t, AlertCountFilter{Since: now}.Matches(a))
}

func TestAlertStatusKnown(t *testing.T) {
	for _, s := range []AlertStatus{StatusActive, StatusAcknowledged, StatusResolved} {
		assert.True(t, s.Known(), s)
	}
	assert.False(t, AlertStatus("escalated").Known())
	assert.False(t, AlertStatus("").Known())
}

func TestParseTimestampWithoutOffsetIsUTC(t *testing.T) {
	want := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	for _, in := range []string{"2025-01-01T10:00:00", "2025-01-01 10:00:00", "2025-01-01T10:00:00.000000"} {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(want), in)
		assert.Equal(t, time.UTC, got.Location(), in)
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestAlertUnmarshalTimestamp(t *testing.T) {
	var a Alert
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a-1","risk_score":70,"timestamp":"2025-01-01T10:00:00"}`), &a))
	assert.Equal(t, "a-1", a.ID)
	assert.Equal(t, 70.0, a.RiskScore)
	assert.True(t, a.Timestamp.Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)))

	var offset Alert
	require.NoError(t, json.Unmarshal([]byte(`{"timestamp":"2025-01-01T15:30:00+05:30"}`), &offset))
	assert.True(t, offset.Timestamp.Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)))

	var missing Alert
	require.NoError(t, json.Unmarshal([]byte(`{"timestamp":null}`), &missing))
	assert.True(t, missing.Timestamp.IsZero())

	var bad Alert
	assert.Error(t, json.Unmarshal([]byte(`{"timestamp":"soon"}`), &bad))
}
