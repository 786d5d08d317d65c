package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/shreya-shukla01/NSUTHackathon/internal/alerts"
	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

const maxBodyBytes = 1 << 20

type Classifier interface {
	Classify(ctx context.Context, r domain.SensorReading) domain.IntentClassification
}

type AlertService interface {
	Create(ctx context.Context, a domain.Alert) (domain.Alert, error)
	List(ctx context.Context, status domain.AlertStatus, limit int) ([]domain.Alert, error)
	UpdateStatus(ctx context.Context, id string, status domain.AlertStatus) error
}

type StatsSource interface {
	Stats(ctx context.Context) (domain.DashboardStats, error)
}

type SensorHistory interface {
	FindSensorData(ctx context.Context, limit int) ([]domain.SensorData, error)
}

type LiveSensors interface {
	Snapshot(ctx context.Context) domain.SensorSnapshot
}

type TrainRegistry interface {
	FindTrains(ctx context.Context, limit int) ([]domain.TrainStatus, error)
	HaltTrain(ctx context.Context, trainID string, at time.Time) error
}

type DroneDispatcher interface {
	Dispatch(ctx context.Context, location, alertID string) (domain.DroneDispatch, error)
}

type Ingestor interface {
	Dispatch(r *domain.SensorReport)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	classifier Classifier
	alerts     AlertService
	stats      StatsSource
	history    SensorHistory
	live       LiveSensors
	trains     TrainRegistry
	drones     DroneDispatcher
	ingest     Ingestor
	health     map[string]Pinger
	now        func() time.Time
	logger     *slog.Logger
}

func (h *Handlers) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "IntentGuard API Active",
		"status":  "operational",
	})
}

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.health))
	for name, p := range h.health {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, status, map[string]any{"status": overall, "checks": checks})
}

// analyzeIntent always answers 200. A body that fails to decode is
// classified from whatever fields did decode.
func (h *Handlers) analyzeIntent(w http.ResponseWriter, r *http.Request) {
	var reading domain.SensorReading
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&reading); err != nil {
		h.logger.Debug("analyze-intent body not decodable", "error", err)
	}

	writeJSON(w, http.StatusOK, h.classifier.Classify(r.Context(), reading))
}

func (h *Handlers) listAlerts(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	status := domain.AlertStatus(r.URL.Query().Get("status"))

	list, err := h.alerts.List(r.Context(), status, limit)
	if err != nil {
		h.storeError(w, "list alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) createAlert(w http.ResponseWriter, r *http.Request) {
	var a domain.Alert
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert body: "+err.Error())
		return
	}

	created, err := h.alerts.Create(r.Context(), a)
	if errors.Is(err, domain.ErrDuplicateAlert) {
		writeError(w, http.StatusConflict, "Alert "+a.ID+" already exists")
		return
	}
	if err != nil {
		h.storeError(w, "create alert", err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *Handlers) updateAlertStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	status := domain.AlertStatus(r.URL.Query().Get("status"))

	err := h.alerts.UpdateStatus(r.Context(), id, status)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"alert_id": id,
			"status":   status,
		})
	case errors.Is(err, alerts.ErrEmptyStatus):
		writeError(w, http.StatusBadRequest, "status query parameter is required")
	case errors.Is(err, domain.ErrAlertNotFound):
		writeError(w, http.StatusNotFound, "Alert not found")
	case errors.Is(err, alerts.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.storeError(w, "update alert", err)
	}
}

func (h *Handlers) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		h.storeError(w, "dashboard stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) sensorHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	data, err := h.history.FindSensorData(r.Context(), limit)
	if err != nil {
		h.storeError(w, "sensor history", err)
		return
	}
	if data == nil {
		data = []domain.SensorData{}
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *Handlers) latestSensors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.live.Snapshot(r.Context()))
}

func (h *Handlers) ingestSensors(w http.ResponseWriter, r *http.Request) {
	if h.ingest == nil {
		writeError(w, http.StatusServiceUnavailable, "ingestion pipeline disabled")
		return
	}

	var bulk domain.BulkSensorReports
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&bulk); err != nil {
		writeError(w, http.StatusBadRequest, "invalid sensor payload: "+err.Error())
		return
	}
	for i, rep := range bulk.Data {
		if strings.TrimSpace(rep.SensorID) == "" {
			writeError(w, http.StatusBadRequest, "data["+strconv.Itoa(i)+"]: sensor_id is required")
			return
		}
	}

	now := h.now().UTC()
	for i := range bulk.Data {
		rep := bulk.Data[i]
		rep.ReceivedAt = now
		if rep.Timestamp.IsZero() {
			rep.Timestamp = now
		}
		h.ingest.Dispatch(&rep)
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"accepted": len(bulk.Data)})
}

func (h *Handlers) listTrains(w http.ResponseWriter, r *http.Request) {
	trains, err := h.trains.FindTrains(r.Context(), 100)
	if err != nil {
		h.storeError(w, "list trains", err)
		return
	}
	if trains == nil {
		trains = []domain.TrainStatus{}
	}
	writeJSON(w, http.StatusOK, trains)
}

func (h *Handlers) haltTrain(w http.ResponseWriter, r *http.Request) {
	trainID := mux.Vars(r)["train_id"]

	err := h.trains.HaltTrain(r.Context(), trainID, h.now())
	if errors.Is(err, domain.ErrTrainNotFound) {
		writeError(w, http.StatusNotFound, "Train not found")
		return
	}
	if err != nil {
		h.storeError(w, "halt train", err)
		return
	}

	h.logger.Warn("train halted", "train_id", trainID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"train_id": trainID,
		"action":   "halted",
	})
}

func (h *Handlers) tracks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.DefaultTracks)
}

func (h *Handlers) dispatchDrone(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	location, alertID := q.Get("location"), q.Get("alert_id")
	if location == "" || alertID == "" {
		writeError(w, http.StatusBadRequest, "location and alert_id query parameters are required")
		return
	}

	res, err := h.drones.Dispatch(r.Context(), location, alertID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	h.logger.Info("drone dispatched", "drone_id", res.DroneID, "alert_id", alertID, "location", location)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) storeError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, op+" failed")
}

// queryInt reads an optional integer query parameter. It writes a 400 and
// returns false when the value is present but not an integer.
func queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, key+" must be an integer")
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
