package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/shreya-shukla01/NSUTHackathon/internal/logging"
	"github.com/shreya-shukla01/NSUTHackathon/internal/metrics"
)

// Deps are the components the API serves. Ingest and AlertStream may be nil
// to disable bulk ingestion and the live stream.
type Deps struct {
	Classifier  Classifier
	Alerts      AlertService
	Stats       StatsSource
	History     SensorHistory
	Live        LiveSensors
	Trains      TrainRegistry
	Drones      DroneDispatcher
	Ingest      Ingestor
	AlertStream http.Handler
	Health      map[string]Pinger

	CORSOrigins []string
	Logger      *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	logger := logging.OrDefault(d.Logger)
	h := &Handlers{
		classifier: d.Classifier,
		alerts:     d.Alerts,
		stats:      d.Stats,
		history:    d.History,
		live:       d.Live,
		trains:     d.Trains,
		drones:     d.Drones,
		ingest:     d.Ingest,
		health:     d.Health,
		now:        time.Now,
		logger:     logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/api", h.root).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/", h.root).Methods(http.MethodGet)

	api.HandleFunc("/analyze-intent", h.analyzeIntent).Methods(http.MethodPost)

	if d.AlertStream != nil {
		api.Handle("/alerts/stream", d.AlertStream).Methods(http.MethodGet)
	}
	api.HandleFunc("/alerts", h.listAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts", h.createAlert).Methods(http.MethodPost)
	api.HandleFunc("/alerts/{id}", h.updateAlertStatus).Methods(http.MethodPatch)

	api.HandleFunc("/dashboard/stats", h.dashboardStats).Methods(http.MethodGet)

	api.HandleFunc("/sensor-data", h.sensorHistory).Methods(http.MethodGet)
	api.HandleFunc("/sensor-data", h.ingestSensors).Methods(http.MethodPost)
	api.HandleFunc("/sensor-data/latest", h.latestSensors).Methods(http.MethodGet)

	api.HandleFunc("/trains", h.listTrains).Methods(http.MethodGet)
	api.HandleFunc("/trains/halt/{train_id}", h.haltTrain).Methods(http.MethodPost)

	api.HandleFunc("/digital-twin/tracks", h.tracks).Methods(http.MethodGet)
	api.HandleFunc("/drone/dispatch", h.dispatchDrone).Methods(http.MethodPost)

	var handler http.Handler = r
	handler = NewCORSMiddleware(d.CORSOrigins).Wrap(handler)
	handler = RequestLogger(logger)(handler)
	handler = Recoverer(logger)(handler)
	return handler
}
