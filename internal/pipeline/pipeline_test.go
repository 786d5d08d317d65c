package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreya-shukla01/NSUTHackathon/internal/alerts"
	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
	"github.com/shreya-shukla01/NSUTHackathon/internal/store"
)

func report(sensorID, location string, vibration, sound float64) *domain.SensorReport {
	return &domain.SensorReport{
		SensorID:      sensorID,
		Location:      location,
		Timestamp:     time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC),
		SensorReading: domain.SensorReading{Vibration: vibration, SoundLevel: sound, Temperature: 28},
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, 0, 2)

	for i := 0; i < 3; i++ {
		d.Dispatch(report("VIB-01", "KM 1", 3, 50))
	}

	assert.Len(t, d.DBChan, 1)
	assert.Nil(t, d.StateChan)
	assert.Len(t, d.AlertChan, 2)

	d.Close()
	<-d.DBChan
	_, ok := <-d.DBChan
	assert.False(t, ok, "closed after drain")
}

func TestDispatchAfterCloseIsDropped(t *testing.T) {
	d := NewDispatcher(4, 4, 4)
	d.Close()

	assert.NotPanics(t, func() {
		d.Dispatch(report("VIB-01", "KM 1", 3, 50))
	})
	assert.NotPanics(t, d.Close)

	_, ok := <-d.DBChan
	assert.False(t, ok)
}

func TestDispatchRacingClose(t *testing.T) {
	d := NewDispatcher(8, 8, 8)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				d.Dispatch(report("VIB-01", "KM 1", 3, 50))
			}
		}()
	}
	d.Close()
	wg.Wait()

	for range d.DBChan {
	}
}

type flakySensorStore struct {
	mu       sync.Mutex
	failures int
	calls    int
	written  []domain.SensorData
}

func (f *flakySensorStore) InsertSensorData(_ context.Context, data []domain.SensorData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("db unavailable")
	}
	f.written = append(f.written, data...)
	return nil
}

func (f *flakySensorStore) FindSensorData(context.Context, int) ([]domain.SensorData, error) {
	return nil, nil
}

func (f *flakySensorStore) snapshot() (int, []domain.SensorData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, append([]domain.SensorData(nil), f.written...)
}

func runWriter(t *testing.T, db *flakySensorStore, reports ...*domain.SensorReport) {
	t.Helper()
	ch := make(chan *domain.SensorReport, len(reports))
	for _, r := range reports {
		ch <- r
	}
	close(ch)

	w := NewSensorWriter(ch, db, 500, 1000, nil)
	w.retryDelay = time.Millisecond

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("writer did not drain")
	}
}

func TestSensorWriterExpandsAndFlushesOnClose(t *testing.T) {
	db := &flakySensorStore{}
	runWriter(t, db, report("VIB-01", "KM 1", 3, 50), report("VIB-02", "KM 2", 4, 51))

	calls, written := db.snapshot()
	assert.Equal(t, 1, calls)
	require.Len(t, written, 8)
	assert.Equal(t, domain.SensorVibration, written[0].SensorType)
	assert.Equal(t, "VIB-02", written[7].SensorID)
}

func TestSensorWriterRetriesOnce(t *testing.T) {
	db := &flakySensorStore{failures: 1}
	runWriter(t, db, report("VIB-01", "KM 1", 3, 50))

	calls, written := db.snapshot()
	assert.Equal(t, 2, calls)
	assert.Len(t, written, 4)
}

func TestSensorWriterGivesUpAfterRetry(t *testing.T) {
	db := &flakySensorStore{failures: 5}
	runWriter(t, db, report("VIB-01", "KM 1", 3, 50))

	calls, written := db.snapshot()
	assert.Equal(t, 2, calls)
	assert.Empty(t, written)
}

type recordingSnapshots struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingSnapshots) PipelineSensorSnapshot(_ context.Context, rep *domain.SensorReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, rep.SensorID)
	return nil
}

func TestStateWriterFlushesOnClose(t *testing.T) {
	ch := make(chan *domain.SensorReport, 2)
	ch <- report("A", "KM 1", 1, 1)
	ch <- report("B", "KM 2", 1, 1)
	close(ch)

	rec := &recordingSnapshots{}
	NewStateWriter(ch, rec, nil).Run(context.Background())

	assert.Equal(t, []string{"A", "B"}, rec.ids)
}

type fixedClassifier domain.IntentClassification

func (f fixedClassifier) Classify(context.Context, domain.SensorReading) domain.IntentClassification {
	return domain.IntentClassification(f)
}

func evaluate(t *testing.T, c Classifier, dedup Deduper, reports ...*domain.SensorReport) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	svc := alerts.NewService(st)

	ch := make(chan *domain.SensorReport, len(reports))
	for _, r := range reports {
		ch <- r
	}
	close(ch)

	NewAlertEvaluator(ch, c, svc, dedup, time.Minute, nil).Run(context.Background())
	return st
}

func TestAlertEvaluatorEscalation(t *testing.T) {
	tests := []struct {
		name     string
		c        domain.IntentClassification
		want     bool
		severity domain.Severity
		kind     string
	}{
		{"sabotage", domain.IntentClassification{Intent: domain.IntentSabotage, RiskScore: 40}, true, domain.SeverityCritical, "Sabotage"},
		{"high risk", domain.IntentClassification{Intent: domain.IntentAccidental, RiskScore: 75}, true, domain.SeverityCritical, "High Risk Anomaly"},
		{"elevated", domain.IntentClassification{Intent: domain.IntentMaintenance, RiskScore: 50}, true, domain.SeverityWarning, "Track Anomaly"},
		{"quiet", domain.IntentClassification{Intent: domain.IntentNormal, RiskScore: 20}, false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := evaluate(t, fixedClassifier(tt.c), nil, report("VIB-09", "Jaipur-Ajmer KM 12", 12, 90))

			got, err := st.FindAlerts(context.Background(), domain.AlertQuery{Limit: 10})
			require.NoError(t, err)
			if !tt.want {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.severity, got[0].Severity)
			assert.Equal(t, tt.kind, got[0].AlertType)
			assert.Equal(t, tt.c.Intent, got[0].Intent)
			assert.Equal(t, domain.StatusActive, got[0].Status)
			assert.Equal(t, "Jaipur-Ajmer KM 12", got[0].Location)
			assert.Contains(t, got[0].Description, "VIB-09")
		})
	}
}

func TestAlertEvaluatorDedupWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rs, err := store.NewRedisStore(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	defer rs.Close()

	sabotage := fixedClassifier{Intent: domain.IntentSabotage, RiskScore: 90}
	st := evaluate(t, sabotage, rs,
		report("VIB-01", "Jaipur-Ajmer KM 12", 12, 90),
		report("VIB-02", "Jaipur-Ajmer KM 12", 13, 91),
		report("VIB-03", "Delhi-Mumbai KM 245", 12, 90),
	)

	n, err := st.CountAlerts(context.Background(), domain.AlertCountFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n, "second report at the same location is suppressed")
}
