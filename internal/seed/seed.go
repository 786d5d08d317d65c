package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
	"github.com/shreya-shukla01/NSUTHackathon/internal/logging"
	"github.com/shreya-shukla01/NSUTHackathon/internal/store"
)

type Store interface {
	store.AlertStore
	store.TrainStore
}

// Trains returns the sample fleet stamped at now.
func Trains(now time.Time) []domain.TrainStatus {
	now = now.UTC()
	return []domain.TrainStatus{
		{ID: uuid.NewString(), TrainID: "RJ-2401", Speed: 95, Location: "Delhi-Mumbai KM 245", Status: domain.TrainRunning, LastUpdate: now},
		{ID: uuid.NewString(), TrainID: "DL-1203", Speed: 110, Location: "Chennai-Bangalore KM 89", Status: domain.TrainRunning, LastUpdate: now},
		{ID: uuid.NewString(), TrainID: "MB-5501", Speed: 0, Location: "Kolkata Station", Status: domain.TrainStopped, LastUpdate: now},
	}
}

// Alerts returns one fresh sabotage alert and one older acknowledged
// maintenance alert.
func Alerts(now time.Time) []domain.Alert {
	now = now.UTC()
	return []domain.Alert{
		{
			ID:          uuid.NewString(),
			AlertType:   "Sabotage",
			Severity:    domain.SeverityCritical,
			Location:    "Delhi-Mumbai KM 245",
			Intent:      domain.IntentSabotage,
			RiskScore:   92,
			Description: "Unusual vibration pattern detected with tool-like sounds",
			Status:      domain.StatusActive,
			Timestamp:   now.Add(-5 * time.Minute),
		},
		{
			ID:          uuid.NewString(),
			AlertType:   "Maintenance",
			Severity:    domain.SeverityWarning,
			Location:    "Chennai-Bangalore KM 89",
			Intent:      domain.IntentMaintenance,
			RiskScore:   45,
			Description: "Scheduled maintenance activity detected",
			Status:      domain.StatusAcknowledged,
			Timestamp:   now.Add(-2 * time.Hour),
		},
	}
}

// IfEmpty inserts the sample trains and alerts into whichever of the two
// collections is empty. Populated collections are left alone.
func IfEmpty(ctx context.Context, st Store, now time.Time, logger *slog.Logger) error {
	logger = logging.OrDefault(logger)

	trains, err := st.CountTrains(ctx)
	if err != nil {
		return fmt.Errorf("count trains: %w", err)
	}
	if trains == 0 {
		if err := st.InsertTrains(ctx, Trains(now)); err != nil {
			return fmt.Errorf("seed trains: %w", err)
		}
		logger.Info("seeded sample trains")
	}

	alerts, err := st.CountAlerts(ctx, domain.AlertCountFilter{})
	if err != nil {
		return fmt.Errorf("count alerts: %w", err)
	}
	if alerts == 0 {
		if err := st.InsertAlerts(ctx, Alerts(now)); err != nil {
			return fmt.Errorf("seed alerts: %w", err)
		}
		logger.Info("seeded sample alerts")
	}
	return nil
}
