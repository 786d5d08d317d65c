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

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStoreSensorCapacity(t *testing.T) {
	s := NewMemoryStore()
	s.sensorCapacity = 3
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.InsertSensorData(ctx, []domain.SensorData{{
			ID:        fmt.Sprintf("d-%d", i),
			Timestamp: time.Unix(int64(i), 0),
		}}))
	}

	got, err := s.FindSensorData(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"d-4", "d-3", "d-2"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestMemoryStoreDuplicateBatchLeavesStoreUntouched(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	err := s.InsertAlerts(ctx, []domain.Alert{
		{ID: "x", Status: domain.StatusActive, Timestamp: now},
		{ID: "y", Status: domain.StatusActive, Timestamp: now},
		{ID: "x", Status: domain.StatusActive, Timestamp: now},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateAlert)

	n, err := s.CountAlerts(ctx, domain.AlertCountFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.GetAlert(ctx, "y")
	assert.ErrorIs(t, err, domain.ErrAlertNotFound)
}
