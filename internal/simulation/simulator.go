package simulation

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

// Simulator produces stand-in values for hardware and metrics the backend
// has no real source for. Safe for concurrent use.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator seeds from seed, or from the runtime when seed is 0.
func NewSimulator(seed uint64) *Simulator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Simulator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// intn returns a value in [lo, hi].
func (s *Simulator) intn(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}

// Reading returns a plausible quiet-track reading: vibration 2-8g, sound
// 40-65dB, temperature 25-32°C and motion one time in four.
func (s *Simulator) Reading() domain.SensorReading {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.SensorReading{
		Vibration:    s.uniform(2, 8),
		SoundLevel:   s.uniform(40, 65),
		Temperature:  s.uniform(25, 32),
		VisualMotion: s.rng.IntN(4) == 0,
	}
}

// Report wraps Reading with the identity a trackside unit would send.
func (s *Simulator) Report(sensorID, location string, at time.Time) domain.SensorReport {
	return domain.SensorReport{
		SensorID:      sensorID,
		Location:      location,
		Timestamp:     at.UTC(),
		SensorReading: s.Reading(),
	}
}

func (s *Simulator) OperationalMetrics(context.Context) domain.OperationalMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.OperationalMetrics{
		IncidentsPrevented:  s.intn(15, 25),
		SystemUptime:        99.8,
		MonitoredTrackKm:    1247,
		AverageResponseTime: s.uniform(2, 5),
	}
}

func (s *Simulator) droneAssignment() (droneNum, eta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intn(100, 999), s.intn(2, 5)
}
