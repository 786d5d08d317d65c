package simulation

import (
	"context"
	"log/slog"
	"time"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
	"github.com/shreya-shukla01/NSUTHackathon/internal/logging"
)

type LatestReader interface {
	LatestSensorReport(ctx context.Context) (domain.SensorReport, bool, error)
}

// LiveSensors serves the dashboard's live panel. Readings pushed through the
// ingestion pipeline win; the simulator fills in when none are fresh.
type LiveSensors struct {
	latest LatestReader
	sim    *Simulator
	now    func() time.Time
	logger *slog.Logger
}

// NewLiveSensors accepts a nil latest, in which case every snapshot is
// simulated.
func NewLiveSensors(latest LatestReader, sim *Simulator, logger *slog.Logger) *LiveSensors {
	return &LiveSensors{
		latest: latest,
		sim:    sim,
		now:    time.Now,
		logger: logging.OrDefault(logger),
	}
}

func (l *LiveSensors) Snapshot(ctx context.Context) domain.SensorSnapshot {
	if l.latest != nil {
		report, ok, err := l.latest.LatestSensorReport(ctx)
		if err != nil {
			l.logger.Warn("latest sensor lookup failed, simulating", "error", err)
		}
		if err == nil && ok {
			return domain.NewSensorSnapshot(report.SensorReading, report.Timestamp)
		}
	}
	return domain.NewSensorSnapshot(l.sim.Reading(), l.now())
}
