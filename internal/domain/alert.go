package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrAlertNotFound  = errors.New("alert not found")
	ErrDuplicateAlert = errors.New("alert id already exists")
	ErrTrainNotFound  = errors.New("train not found")
)

// Severity is an open set; these are the values the system itself emits.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertStatus is an open set. Operators may write any non-empty status; the
// known ones drive the dashboard counts and the strict transition table.
type AlertStatus string

const (
	StatusActive       AlertStatus = "active"
	StatusAcknowledged AlertStatus = "acknowledged"
	StatusResolved     AlertStatus = "resolved"
)

func (s AlertStatus) Known() bool {
	switch s {
	case StatusActive, StatusAcknowledged, StatusResolved:
		return true
	}
	return false
}

type Alert struct {
	ID          string      `json:"id"`
	AlertType   string      `json:"alert_type"`
	Severity    Severity    `json:"severity"`
	Location    string      `json:"location"`
	Intent      Intent      `json:"intent"`
	RiskScore   float64     `json:"risk_score"`
	Description string      `json:"description"`
	Status      AlertStatus `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
}

// UnmarshalJSON reads timestamp with ParseTimestamp so clients may send it
// without an offset. An empty or null timestamp leaves it zero.
func (a *Alert) UnmarshalJSON(b []byte) error {
	type plain Alert
	aux := struct {
		*plain
		Timestamp *string `json:"timestamp"`
	}{plain: (*plain)(a)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Timestamp == nil || *aux.Timestamp == "" {
		a.Timestamp = time.Time{}
		return nil
	}

	ts, err := ParseTimestamp(*aux.Timestamp)
	if err != nil {
		return fmt.Errorf("alert timestamp: %w", err)
	}
	a.Timestamp = ts
	return nil
}

// AlertQuery selects alerts for listing. Results are newest first.
type AlertQuery struct {
	Status AlertStatus
	Limit  int
}

// AlertCountFilter is a conjunction; zero-valued fields don't constrain.
type AlertCountFilter struct {
	Status   AlertStatus
	Severity Severity
	Intent   Intent
	Since    time.Time
}

// Matches reports whether a satisfies every set field of f.
func (f AlertCountFilter) Matches(a Alert) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Severity != "" && a.Severity != f.Severity {
		return false
	}
	if f.Intent != "" && a.Intent != f.Intent {
		return false
	}
	if !f.Since.IsZero() && a.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

type AlertEventType string

const (
	AlertCreated       AlertEventType = "alert.created"
	AlertStatusChanged AlertEventType = "alert.status_changed"
)

// AlertEvent is published to live consumers after an alert is written.
type AlertEvent struct {
	Type    AlertEventType `json:"type"`
	AlertID string         `json:"alert_id"`
	Status  AlertStatus    `json:"status"`
	Alert   *Alert         `json:"alert,omitempty"`
	At      time.Time      `json:"at"`
}
