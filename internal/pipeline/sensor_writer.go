package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
	"github.com/shreya-shukla01/NSUTHackathon/internal/logging"
	"github.com/shreya-shukla01/NSUTHackathon/internal/metrics"
	"github.com/shreya-shukla01/NSUTHackathon/internal/store"
)

const flushTimeout = 10 * time.Second

// SensorWriter batches reports into sensor_data records.
type SensorWriter struct {
	ch         <-chan *domain.SensorReport
	db         store.SensorStore
	batchSize  int
	flushMS    int
	retryDelay time.Duration
	logger     *slog.Logger
}

func NewSensorWriter(
	ch <-chan *domain.SensorReport,
	db store.SensorStore,
	batchSize int,
	flushMS int,
	logger *slog.Logger,
) *SensorWriter {
	return &SensorWriter{
		ch:         ch,
		db:         db,
		batchSize:  batchSize,
		flushMS:    flushMS,
		retryDelay: 500 * time.Millisecond,
		logger:     logging.OrDefault(logger),
	}
}

func (w *SensorWriter) Run(ctx context.Context) {
	batch := make([]domain.SensorData, 0, w.batchSize*4)
	ticker := time.NewTicker(time.Duration(w.flushMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case r, ok := <-w.ch:
			if !ok {
				w.flush(ctx, batch)
				return
			}
			batch = append(batch, r.Expand(uuid.NewString)...)
			if len(batch) >= w.batchSize {
				w.flush(ctx, batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			w.flush(ctx, batch)
			batch = batch[:0]

		case <-ctx.Done():
			w.flush(ctx, batch)
			return
		}
	}
}

// flush outlives ctx cancellation so a shutdown still persists the tail.
func (w *SensorWriter) flush(ctx context.Context, batch []domain.SensorData) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()

	err := w.db.InsertSensorData(ctx, batch)
	if err != nil {
		w.logger.Warn("sensor write failed, retrying", "batch", len(batch), "error", err)
		time.Sleep(w.retryDelay)
		err = w.db.InsertSensorData(ctx, batch)
		if err != nil {
			w.logger.Error("sensor write permanently failed", "batch", len(batch), "error", err)
			metrics.SensorWriteFailures.Add(float64(len(batch)))
			return
		}
	}
	metrics.SensorWriteSuccess.Add(float64(len(batch)))
}
