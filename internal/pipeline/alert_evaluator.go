package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
	"github.com/shreya-shukla01/NSUTHackathon/internal/logging"
	"github.com/shreya-shukla01/NSUTHackathon/internal/metrics"
)

type Classifier interface {
	Classify(ctx context.Context, r domain.SensorReading) domain.IntentClassification
}

type AlertCreator interface {
	Create(ctx context.Context, a domain.Alert) (domain.Alert, error)
}

// Deduper suppresses repeat alerts for the same location and intent within
// a window.
type Deduper interface {
	ClaimAlertDedup(ctx context.Context, location string, intent domain.Intent, ttl time.Duration) (bool, error)
	ReleaseAlertDedup(ctx context.Context, location string, intent domain.Intent) error
}

// AlertEvaluator classifies each report and raises an alert when the
// escalation rules call for one.
type AlertEvaluator struct {
	ch         <-chan *domain.SensorReport
	classifier Classifier
	alerts     AlertCreator
	dedup      Deduper
	dedupTTL   time.Duration
	rules      []domain.EscalationRule
	logger     *slog.Logger
}

// NewAlertEvaluator accepts a nil dedup, which disables suppression.
func NewAlertEvaluator(
	ch <-chan *domain.SensorReport,
	classifier Classifier,
	alerts AlertCreator,
	dedup Deduper,
	dedupTTL time.Duration,
	logger *slog.Logger,
) *AlertEvaluator {
	return &AlertEvaluator{
		ch:         ch,
		classifier: classifier,
		alerts:     alerts,
		dedup:      dedup,
		dedupTTL:   dedupTTL,
		rules:      domain.DefaultEscalationRules,
		logger:     logging.OrDefault(logger),
	}
}

func (e *AlertEvaluator) Run(ctx context.Context) {
	for {
		select {
		case r, ok := <-e.ch:
			if !ok {
				return
			}
			e.evaluate(context.WithoutCancel(ctx), r)

		case <-ctx.Done():
			return
		}
	}
}

func (e *AlertEvaluator) evaluate(ctx context.Context, r *domain.SensorReport) {
	c := e.classifier.Classify(ctx, r.SensorReading)

	rule, ok := domain.Escalate(e.rules, c)
	if !ok {
		return
	}

	if e.dedup != nil {
		claimed, err := e.dedup.ClaimAlertDedup(ctx, r.Location, c.Intent, e.dedupTTL)
		switch {
		case err != nil:
			// dedup unavailable: raise the alert anyway
			e.logger.Warn("alert dedup check failed", "location", r.Location, "intent", c.Intent, "error", err)
		case !claimed:
			metrics.AlertsDeduplicated.Inc()
			return
		}
	}

	ts := r.Timestamp
	if ts.IsZero() {
		ts = r.ReceivedAt
	}

	_, err := e.alerts.Create(ctx, domain.Alert{
		AlertType:   rule.AlertType,
		Severity:    rule.Severity,
		Location:    r.Location,
		Intent:      c.Intent,
		RiskScore:   c.RiskScore,
		Description: describe(r, c),
		Timestamp:   ts,
	})
	if err != nil {
		e.logger.Error("alert insert failed", "sensor_id", r.SensorID, "rule", rule.Name, "error", err)
		if e.dedup != nil {
			if err := e.dedup.ReleaseAlertDedup(ctx, r.Location, c.Intent); err != nil {
				e.logger.Warn("alert dedup release failed", "location", r.Location, "error", err)
			}
		}
	}
}

func describe(r *domain.SensorReport, c domain.IntentClassification) string {
	return fmt.Sprintf("%s activity suspected by sensor %s (vibration %.2fg, sound %.1fdB, motion %t). %s",
		c.Intent, r.SensorID, r.Vibration, r.SoundLevel, r.VisualMotion, c.Recommendation)
}
