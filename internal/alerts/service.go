package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
	"github.com/shreya-shukla01/NSUTHackathon/internal/logging"
	"github.com/shreya-shukla01/NSUTHackathon/internal/metrics"
	"github.com/shreya-shukla01/NSUTHackathon/internal/store"
)

var (
	ErrEmptyStatus       = errors.New("status is required")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Notifier receives an event after every successful alert write.
type Notifier interface {
	PublishAlertEvent(ctx context.Context, ev domain.AlertEvent) error
}

type Service struct {
	store    store.AlertStore
	policy   TransitionPolicy
	notifier Notifier

	defaultLimit int
	maxLimit     int

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

type Option func(*Service)

func WithPolicy(p TransitionPolicy) Option {
	return func(s *Service) { s.policy = p }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithListLimits sets the limit used when a caller passes none and the
// ceiling applied to every listing.
func WithListLimits(defaultLimit, maxLimit int) Option {
	return func(s *Service) {
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if maxLimit >= s.defaultLimit {
			s.maxLimit = maxLimit
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(st store.AlertStore, opts ...Option) *Service {
	s := &Service{
		store:        st,
		policy:       PermissivePolicy{},
		defaultLimit: DefaultListLimit,
		maxLimit:     MaxListLimit,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDefault(s.logger)
	return s
}

// Create fills in id, status and timestamp when the caller left them empty
// and persists the alert.
func (s *Service) Create(ctx context.Context, a domain.Alert) (domain.Alert, error) {
	if a.ID == "" {
		a.ID = s.newID()
	}
	if a.Status == "" {
		a.Status = domain.StatusActive
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = s.now()
	}
	a.Timestamp = a.Timestamp.UTC()

	if err := s.store.InsertAlert(ctx, a); err != nil {
		return domain.Alert{}, err
	}

	metrics.AlertsCreated.WithLabelValues(string(a.Intent), string(a.Severity)).Inc()
	s.logger.Info("alert created",
		"alert_id", a.ID,
		"intent", a.Intent,
		"severity", a.Severity,
		"location", a.Location,
	)

	s.notify(ctx, domain.AlertEvent{
		Type:    domain.AlertCreated,
		AlertID: a.ID,
		Status:  a.Status,
		Alert:   &a,
		At:      a.Timestamp,
	})
	return a, nil
}

// List returns alerts newest first, optionally filtered by exact status.
// A non-positive limit means the default; larger limits are capped.
func (s *Service) List(ctx context.Context, status domain.AlertStatus, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	alerts, err := s.store.FindAlerts(ctx, domain.AlertQuery{Status: status, Limit: limit})
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	return alerts, nil
}

// UpdateStatus moves alert id to status. It returns domain.ErrAlertNotFound
// for unknown ids and ErrInvalidTransition when the policy refuses.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.AlertStatus) error {
	if strings.TrimSpace(string(status)) == "" {
		return ErrEmptyStatus
	}

	if _, permissive := s.policy.(PermissivePolicy); !permissive {
		current, err := s.store.GetAlert(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == status {
			return nil
		}
		if !s.policy.Allow(current.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
		}
	}

	if err := s.store.UpdateAlertStatus(ctx, id, status); err != nil {
		return err
	}

	metrics.AlertStatusUpdates.WithLabelValues(string(status)).Inc()
	s.logger.Info("alert status updated", "alert_id", id, "status", status, "policy", s.policy.Name())
	if !status.Known() {
		s.logger.Warn("alert moved to a status outside the lifecycle", "alert_id", id, "status", status)
	}

	s.notify(ctx, domain.AlertEvent{
		Type:    domain.AlertStatusChanged,
		AlertID: id,
		Status:  status,
		At:      s.now().UTC(),
	})
	return nil
}

func (s *Service) notify(ctx context.Context, ev domain.AlertEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishAlertEvent(ctx, ev); err != nil {
		s.logger.Warn("alert event publish failed", "alert_id", ev.AlertID, "type", ev.Type, "error", err)
	}
}
