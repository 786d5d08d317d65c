package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

const sabotageWindow = 7 * 24 * time.Hour

type Counter interface {
	CountAlerts(ctx context.Context, f domain.AlertCountFilter) (int64, error)
	CountTrains(ctx context.Context) (int64, error)
}

// OperationalSource supplies the figures the backend does not measure.
type OperationalSource interface {
	OperationalMetrics(ctx context.Context) domain.OperationalMetrics
}

// Aggregator computes DashboardStats from the stores on every call.
type Aggregator struct {
	counter     Counter
	operational OperationalSource
	now         func() time.Time
}

func NewAggregator(c Counter, op OperationalSource) *Aggregator {
	return &Aggregator{counter: c, operational: op, now: time.Now}
}

func (a *Aggregator) Stats(ctx context.Context) (domain.DashboardStats, error) {
	var stats domain.DashboardStats
	since := a.now().UTC().Add(-sabotageWindow)

	g, ctx := errgroup.WithContext(ctx)

	countInto := func(dst *int64, f domain.AlertCountFilter) {
		g.Go(func() error {
			n, err := a.counter.CountAlerts(ctx, f)
			*dst = n
			return err
		})
	}

	countInto(&stats.TotalAlerts, domain.AlertCountFilter{})
	countInto(&stats.ActiveAlerts, domain.AlertCountFilter{Status: domain.StatusActive})
	countInto(&stats.CriticalAlerts, domain.AlertCountFilter{Status: domain.StatusActive, Severity: domain.SeverityCritical})
	countInto(&stats.SabotageAttemptsBlocked, domain.AlertCountFilter{Intent: domain.IntentSabotage, Since: since})
	g.Go(func() error {
		n, err := a.counter.CountTrains(ctx)
		stats.ActiveTrains = n
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.DashboardStats{}, err
	}

	if a.operational != nil {
		stats.OperationalMetrics = a.operational.OperationalMetrics(ctx)
	}
	return stats, nil
}
