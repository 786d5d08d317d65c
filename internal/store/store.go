package store

import (
	"context"
	"time"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

// AlertStore persists alerts. Implementations only store; defaults for id,
// status and timestamp are filled by the alerts service.
type AlertStore interface {
	InsertAlert(ctx context.Context, a domain.Alert) error
	InsertAlerts(ctx context.Context, alerts []domain.Alert) error
	GetAlert(ctx context.Context, id string) (domain.Alert, error)
	// FindAlerts returns newest first. q.Limit must be positive.
	FindAlerts(ctx context.Context, q domain.AlertQuery) ([]domain.Alert, error)
	// UpdateAlertStatus returns domain.ErrAlertNotFound when no alert has id.
	// Writing the status an alert already has is not an error.
	UpdateAlertStatus(ctx context.Context, id string, status domain.AlertStatus) error
	CountAlerts(ctx context.Context, f domain.AlertCountFilter) (int64, error)
}

type TrainStore interface {
	InsertTrains(ctx context.Context, trains []domain.TrainStatus) error
	FindTrains(ctx context.Context, limit int) ([]domain.TrainStatus, error)
	// HaltTrain sets status halted and speed 0. Returns domain.ErrTrainNotFound
	// when no train has trainID.
	HaltTrain(ctx context.Context, trainID string, at time.Time) error
	CountTrains(ctx context.Context) (int64, error)
}

type SensorStore interface {
	InsertSensorData(ctx context.Context, data []domain.SensorData) error
	// FindSensorData returns newest first.
	FindSensorData(ctx context.Context, limit int) ([]domain.SensorData, error)
}

type Store interface {
	AlertStore
	TrainStore
	SensorStore

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
