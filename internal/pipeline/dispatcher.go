package pipeline

import (
	"sync"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
	"github.com/shreya-shukla01/NSUTHackathon/internal/metrics"
)

// Dispatcher fans each report out to the persistence, live-state and alert
// stages. A full channel drops the report for that stage only.
type Dispatcher struct {
	DBChan    chan *domain.SensorReport
	StateChan chan *domain.SensorReport
	AlertChan chan *domain.SensorReport

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher leaves a stage's channel nil when its size is 0; reports are
// then not routed to it at all.
func NewDispatcher(dbSize, stateSize, alertSize int) *Dispatcher {
	return &Dispatcher{
		DBChan:    newStage(dbSize),
		StateChan: newStage(stateSize),
		AlertChan: newStage(alertSize),
	}
}

func newStage(size int) chan *domain.SensorReport {
	if size <= 0 {
		return nil
	}
	return make(chan *domain.SensorReport, size)
}

// Dispatch drops reports that arrive after Close.
func (d *Dispatcher) Dispatch(r *domain.SensorReport) {
	metrics.SensorReportsReceived.Inc()

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.ChannelDrops.WithLabelValues("closed").Inc()
		return
	}

	offer(d.DBChan, r, "db")
	offer(d.StateChan, r, "state")
	offer(d.AlertChan, r, "alert")
}

func offer(ch chan *domain.SensorReport, r *domain.SensorReport, name string) {
	if ch == nil {
		return
	}
	select {
	case ch <- r:
	default:
		metrics.ChannelDrops.WithLabelValues(name).Inc()
	}
}

// Close signals every stage that no more reports will arrive. It is safe to
// call more than once and concurrently with Dispatch.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true

	for _, ch := range []chan *domain.SensorReport{d.DBChan, d.StateChan, d.AlertChan} {
		if ch != nil {
			close(ch)
		}
	}
}
