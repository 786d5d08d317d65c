package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

// runStoreSuite checks the behavior every backend must share. newStore must
// return an empty store.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	base := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	alert := func(id string, status domain.AlertStatus, sev domain.Severity, intent domain.Intent, age time.Duration) domain.Alert {
		return domain.Alert{
			ID:          id,
			AlertType:   "Track Anomaly",
			Severity:    sev,
			Location:    "Delhi-Mumbai KM 245",
			Intent:      intent,
			RiskScore:   60,
			Description: "test alert " + id,
			Status:      status,
			Timestamp:   base.Add(-age),
		}
	}

	t.Run("insert then get", func(t *testing.T) {
		s := newStore(t)
		a := alert("a-1", domain.StatusActive, domain.SeverityCritical, domain.IntentSabotage, 0)
		require.NoError(t, s.InsertAlert(ctx, a))

		got, err := s.GetAlert(ctx, "a-1")
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
		assert.Equal(t, a.Intent, got.Intent)
		assert.True(t, a.Timestamp.Equal(got.Timestamp))

		_, err = s.GetAlert(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrAlertNotFound)
	})

	t.Run("find newest first with status filter and limit", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.InsertAlerts(ctx, []domain.Alert{
			alert("old", domain.StatusActive, domain.SeverityWarning, domain.IntentMaintenance, 3*time.Hour),
			alert("new", domain.StatusActive, domain.SeverityWarning, domain.IntentMaintenance, time.Minute),
			alert("mid", domain.StatusResolved, domain.SeverityWarning, domain.IntentMaintenance, time.Hour),
		}))

		all, err := s.FindAlerts(ctx, domain.AlertQuery{Limit: 50})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"new", "mid", "old"}, alertIDs(all))

		active, err := s.FindAlerts(ctx, domain.AlertQuery{Status: domain.StatusActive, Limit: 50})
		require.NoError(t, err)
		assert.Equal(t, []string{"new", "old"}, alertIDs(active))

		limited, err := s.FindAlerts(ctx, domain.AlertQuery{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"new"}, alertIDs(limited))

		none, err := s.FindAlerts(ctx, domain.AlertQuery{Status: "escalated", Limit: 50})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		s := newStore(t)
		first := alert("dup", domain.StatusActive, domain.SeverityCritical, domain.IntentSabotage, 0)
		require.NoError(t, s.InsertAlert(ctx, first))

		second := alert("dup", domain.StatusActive, domain.SeverityWarning, domain.IntentMaintenance, time.Minute)
		assert.ErrorIs(t, s.InsertAlert(ctx, second), domain.ErrDuplicateAlert)
		assert.ErrorIs(t, s.InsertAlerts(ctx, []domain.Alert{second}), domain.ErrDuplicateAlert)

		all, err := s.FindAlerts(ctx, domain.AlertQuery{Limit: 50})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, domain.SeverityCritical, all[0].Severity)

		require.NoError(t, s.UpdateAlertStatus(ctx, "dup", domain.StatusResolved))
		active, err := s.CountAlerts(ctx, domain.AlertCountFilter{Status: domain.StatusActive})
		require.NoError(t, err)
		assert.Zero(t, active)
	})

	t.Run("update status", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.InsertAlert(ctx, alert("a-1", domain.StatusActive, domain.SeverityWarning, domain.IntentNormal, 0)))

		require.NoError(t, s.UpdateAlertStatus(ctx, "a-1", domain.StatusAcknowledged))
		got, err := s.GetAlert(ctx, "a-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAcknowledged, got.Status)

		// same value again still matches the document
		assert.NoError(t, s.UpdateAlertStatus(ctx, "a-1", domain.StatusAcknowledged))

		assert.ErrorIs(t, s.UpdateAlertStatus(ctx, "nope", domain.StatusResolved), domain.ErrAlertNotFound)
	})

	t.Run("count alerts", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.InsertAlerts(ctx, []domain.Alert{
			alert("s-recent", domain.StatusActive, domain.SeverityCritical, domain.IntentSabotage, 24*time.Hour),
			alert("s-old", domain.StatusResolved, domain.SeverityCritical, domain.IntentSabotage, 8*24*time.Hour),
			alert("m", domain.StatusActive, domain.SeverityWarning, domain.IntentMaintenance, time.Hour),
		}))

		cases := []struct {
			f    domain.AlertCountFilter
			want int64
		}{
			{domain.AlertCountFilter{}, 3},
			{domain.AlertCountFilter{Status: domain.StatusActive}, 2},
			{domain.AlertCountFilter{Status: domain.StatusActive, Severity: domain.SeverityCritical}, 1},
			{domain.AlertCountFilter{Intent: domain.IntentSabotage, Since: base.Add(-7 * 24 * time.Hour)}, 1},
		}
		for i, c := range cases {
			n, err := s.CountAlerts(ctx, c.f)
			require.NoError(t, err)
			assert.Equal(t, c.want, n, "case %d", i)
		}
	})

	t.Run("trains", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.InsertTrains(ctx, []domain.TrainStatus{
			{ID: "t-1", TrainID: "EXP-2401", Speed: 85.5, Location: "Delhi-Mumbai KM 230", Status: domain.TrainRunning, LastUpdate: base},
			{ID: "t-2", TrainID: "EXP-2402", Speed: 92, Location: "Chennai-Bangalore KM 120", Status: domain.TrainRunning, LastUpdate: base},
		}))

		n, err := s.CountTrains(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		halted := base.Add(time.Minute)
		require.NoError(t, s.HaltTrain(ctx, "EXP-2402", halted))
		assert.ErrorIs(t, s.HaltTrain(ctx, "EXP-9999", halted), domain.ErrTrainNotFound)

		trains, err := s.FindTrains(ctx, 100)
		require.NoError(t, err)
		require.Len(t, trains, 2)
		for _, tr := range trains {
			if tr.TrainID != "EXP-2402" {
				assert.Equal(t, domain.TrainRunning, tr.Status)
				continue
			}
			assert.Equal(t, domain.TrainHalted, tr.Status)
			assert.Zero(t, tr.Speed)
			assert.True(t, halted.Equal(tr.LastUpdate))
		}
	})

	t.Run("sensor data newest first", func(t *testing.T) {
		s := newStore(t)
		var data []domain.SensorData
		for i := 0; i < 5; i++ {
			data = append(data, domain.SensorData{
				ID:         fmt.Sprintf("d-%d", i),
				SensorID:   "VIB-01",
				SensorType: domain.SensorVibration,
				Value:      float64(i),
				Unit:       "g",
				Location:   "Jaipur-Ajmer KM 12",
				Timestamp:  base.Add(time.Duration(i) * time.Second),
			})
		}
		require.NoError(t, s.InsertSensorData(ctx, data))

		got, err := s.FindSensorData(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "d-4", got[0].ID)
		assert.Equal(t, "d-3", got[1].ID)
	})
}

func alertIDs(alerts []domain.Alert) []string {
	ids := make([]string, len(alerts))
	for i, a := range alerts {
		ids[i] = a.ID
	}
	return ids
}
