package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

const defaultSensorCapacity = 10000

// MemoryStore keeps everything in process. Sensor data is a bounded buffer
// that drops the oldest records once full.
type MemoryStore struct {
	mu sync.RWMutex

	alerts   []domain.Alert
	alertIdx map[string]int

	trains   []domain.TrainStatus
	trainIdx map[string]int

	sensors        []domain.SensorData
	sensorCapacity int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		alertIdx:       make(map[string]int),
		trainIdx:       make(map[string]int),
		sensors:        make([]domain.SensorData, 0, 256),
		sensorCapacity: defaultSensorCapacity,
	}
}

func (s *MemoryStore) Ping(context.Context) error  { return nil }
func (s *MemoryStore) Close(context.Context) error { return nil }

func (s *MemoryStore) InsertAlert(ctx context.Context, a domain.Alert) error {
	return s.InsertAlerts(ctx, []domain.Alert{a})
}

func (s *MemoryStore) InsertAlerts(_ context.Context, alerts []domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch first so a duplicate leaves the store untouched.
	seen := make(map[string]bool, len(alerts))
	for _, a := range alerts {
		if _, exists := s.alertIdx[a.ID]; exists || seen[a.ID] {
			return fmt.Errorf("insert alert %s: %w", a.ID, domain.ErrDuplicateAlert)
		}
		seen[a.ID] = true
	}

	for _, a := range alerts {
		s.alertIdx[a.ID] = len(s.alerts)
		s.alerts = append(s.alerts, a)
	}
	return nil
}

func (s *MemoryStore) GetAlert(_ context.Context, id string) (domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.alertIdx[id]
	if !ok {
		return domain.Alert{}, domain.ErrAlertNotFound
	}
	return s.alerts[i], nil
}

func (s *MemoryStore) FindAlerts(_ context.Context, q domain.AlertQuery) ([]domain.Alert, error) {
	s.mu.RLock()
	result := make([]domain.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if q.Status == "" || a.Status == q.Status {
			result = append(result, a)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

func (s *MemoryStore) UpdateAlertStatus(_ context.Context, id string, status domain.AlertStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.alertIdx[id]
	if !ok {
		return domain.ErrAlertNotFound
	}
	s.alerts[i].Status = status
	return nil
}

func (s *MemoryStore) CountAlerts(_ context.Context, f domain.AlertCountFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, a := range s.alerts {
		if f.Matches(a) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) InsertTrains(_ context.Context, trains []domain.TrainStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range trains {
		s.trainIdx[t.TrainID] = len(s.trains)
		s.trains = append(s.trains, t)
	}
	return nil
}

func (s *MemoryStore) FindTrains(_ context.Context, limit int) ([]domain.TrainStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.trains) {
		limit = len(s.trains)
	}
	result := make([]domain.TrainStatus, limit)
	copy(result, s.trains[:limit])
	return result, nil
}

func (s *MemoryStore) HaltTrain(_ context.Context, trainID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.trainIdx[trainID]
	if !ok {
		return domain.ErrTrainNotFound
	}
	s.trains[i].Status = domain.TrainHalted
	s.trains[i].Speed = 0
	s.trains[i].LastUpdate = at.UTC()
	return nil
}

func (s *MemoryStore) CountTrains(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.trains)), nil
}

func (s *MemoryStore) InsertSensorData(_ context.Context, data []domain.SensorData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sensors = append(s.sensors, data...)
	if over := len(s.sensors) - s.sensorCapacity; over > 0 {
		s.sensors = append(s.sensors[:0], s.sensors[over:]...)
	}
	return nil
}

func (s *MemoryStore) FindSensorData(_ context.Context, limit int) ([]domain.SensorData, error) {
	s.mu.RLock()
	result := make([]domain.SensorData, len(s.sensors))
	copy(result, s.sensors)
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
