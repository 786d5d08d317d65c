package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
	"github.com/shreya-shukla01/NSUTHackathon/internal/logging"
)

type SnapshotWriter interface {
	PipelineSensorSnapshot(ctx context.Context, r *domain.SensorReport) error
}

// StateWriter keeps the live sensor snapshot in Redis current.
type StateWriter struct {
	ch     <-chan *domain.SensorReport
	redis  SnapshotWriter
	logger *slog.Logger
}

func NewStateWriter(ch <-chan *domain.SensorReport, redis SnapshotWriter, logger *slog.Logger) *StateWriter {
	return &StateWriter{ch: ch, redis: redis, logger: logging.OrDefault(logger)}
}

func (w *StateWriter) Run(ctx context.Context) {
	batch := make([]*domain.SensorReport, 0, 100)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case r, ok := <-w.ch:
			if !ok {
				w.flushBatch(ctx, batch)
				return
			}
			batch = append(batch, r)
			if len(batch) >= 100 {
				w.flushBatch(ctx, batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.flushBatch(ctx, batch)
				batch = batch[:0]
			}

		case <-ctx.Done():
			w.flushBatch(ctx, batch)
			return
		}
	}
}

func (w *StateWriter) flushBatch(ctx context.Context, batch []*domain.SensorReport) {
	ctx = context.WithoutCancel(ctx)
	for _, r := range batch {
		if err := w.redis.PipelineSensorSnapshot(ctx, r); err != nil {
			w.logger.Warn("redis snapshot update failed", "sensor_id", r.SensorID, "error", err)
		}
	}
}
