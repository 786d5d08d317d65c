package simulation

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

func TestReadingRanges(t *testing.T) {
	sim := NewSimulator(42)
	motion := 0
	for i := 0; i < 2000; i++ {
		r := sim.Reading()
		require.True(t, r.Vibration >= 2 && r.Vibration < 8)
		require.True(t, r.SoundLevel >= 40 && r.SoundLevel < 65)
		require.True(t, r.Temperature >= 25 && r.Temperature < 32)
		if r.VisualMotion {
			motion++
		}
	}
	assert.InDelta(t, 500, motion, 120)
}

func TestSimulatorSeedIsDeterministic(t *testing.T) {
	assert.Equal(t, NewSimulator(7).Reading(), NewSimulator(7).Reading())
}

func TestOperationalMetrics(t *testing.T) {
	sim := NewSimulator(1)
	for i := 0; i < 200; i++ {
		m := sim.OperationalMetrics(context.Background())
		require.GreaterOrEqual(t, m.IncidentsPrevented, 15)
		require.LessOrEqual(t, m.IncidentsPrevented, 25)
		require.True(t, m.AverageResponseTime >= 2 && m.AverageResponseTime < 5)
		require.Equal(t, 99.8, m.SystemUptime)
		require.Equal(t, 1247, m.MonitoredTrackKm)
	}
}

type stubLatest struct {
	report domain.SensorReport
	ok     bool
	err    error
}

func (s stubLatest) LatestSensorReport(context.Context) (domain.SensorReport, bool, error) {
	return s.report, s.ok, s.err
}

func TestLiveSensorsPrefersPipelineData(t *testing.T) {
	ts := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	live := NewLiveSensors(stubLatest{
		ok: true,
		report: domain.SensorReport{
			Timestamp:     ts,
			SensorReading: domain.SensorReading{Vibration: 11.234, SoundLevel: 85, Temperature: 30},
		},
	}, NewSimulator(3), nil)

	snap := live.Snapshot(context.Background())
	assert.Equal(t, 11.23, snap.Vibration.Value)
	assert.Equal(t, "warning", snap.Vibration.Status)
	assert.Equal(t, "alert", snap.Sound.Status)
	assert.Equal(t, domain.FormatTimestamp(ts), snap.Timestamp)
}

func TestLiveSensorsFallsBackToSimulator(t *testing.T) {
	for _, latest := range []LatestReader{nil, stubLatest{}, stubLatest{err: errors.New("redis down")}} {
		live := NewLiveSensors(latest, NewSimulator(3), nil)
		snap := live.Snapshot(context.Background())
		assert.Equal(t, "monitoring", snap.Visual.Status)
		assert.True(t, snap.Vibration.Value >= 2 && snap.Vibration.Value <= 8)
		assert.Equal(t, "normal", snap.Sound.Status)
	}
}

func TestDroneDispatch(t *testing.T) {
	d := NewDroneDispatcher(NewSimulator(9), 0)

	got, err := d.Dispatch(context.Background(), "Jaipur-Ajmer KM 12", "alert-1")
	require.NoError(t, err)

	assert.True(t, got.Success)
	assert.Equal(t, "en_route", got.Status)
	assert.Equal(t, "alert-1", got.AlertID)
	assert.GreaterOrEqual(t, got.ETA, 2)
	assert.LessOrEqual(t, got.ETA, 5)

	require.True(t, strings.HasPrefix(got.DroneID, "DRONE-"))
	n, err := strconv.Atoi(strings.TrimPrefix(got.DroneID, "DRONE-"))
	require.NoError(t, err)
	assert.True(t, n >= 100 && n <= 999)
}

func TestDroneDispatchHonorsContext(t *testing.T) {
	d := NewDroneDispatcher(NewSimulator(9), time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := d.Dispatch(ctx, "x", "y")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
