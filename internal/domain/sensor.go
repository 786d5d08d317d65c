package domain

import "time"

// SensorReading is the classifier input. It has no identity and is never
// persisted as-is.
type SensorReading struct {
	Vibration    float64 `json:"vibration"`
	SoundLevel   float64 `json:"sound_level"`
	Temperature  float64 `json:"temperature"`
	VisualMotion bool    `json:"visual_motion"`
}

// SensorReport is one trackside unit's reading as it arrives at the
// ingestion endpoint.
type SensorReport struct {
	ReceivedAt time.Time `json:"-"`

	SensorID  string    `json:"sensor_id"`
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`

	SensorReading
}

type BulkSensorReports struct {
	Data []SensorReport `json:"data"`
}

type SensorType string

const (
	SensorVibration    SensorType = "vibration"
	SensorSound        SensorType = "sound"
	SensorTemperature  SensorType = "temperature"
	SensorVisualMotion SensorType = "visual_motion"
)

// SensorData is a single persisted metric value (sensor_data collection).
type SensorData struct {
	ID         string     `json:"id"`
	SensorID   string     `json:"sensor_id"`
	SensorType SensorType `json:"sensor_type"`
	Value      float64    `json:"value"`
	Unit       string     `json:"unit"`
	Location   string     `json:"location"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Expand splits a report into one SensorData record per metric. newID is
// called once per record.
func (r SensorReport) Expand(newID func() string) []SensorData {
	motion := 0.0
	if r.VisualMotion {
		motion = 1
	}

	metrics := []struct {
		typ   SensorType
		value float64
		unit  string
	}{
		{SensorVibration, r.Vibration, "g"},
		{SensorSound, r.SoundLevel, "dB"},
		{SensorTemperature, r.Temperature, "°C"},
		{SensorVisualMotion, motion, "flag"},
	}

	out := make([]SensorData, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, SensorData{
			ID:         newID(),
			SensorID:   r.SensorID,
			SensorType: m.typ,
			Value:      m.value,
			Unit:       m.unit,
			Location:   r.Location,
			Timestamp:  r.Timestamp,
		})
	}
	return out
}

type MetricReading struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Status string  `json:"status"`
}

type VisualReading struct {
	MotionDetected bool   `json:"motion_detected"`
	Status         string `json:"status"`
}

// SensorSnapshot is the live dashboard view of the most recent reading.
type SensorSnapshot struct {
	Vibration   MetricReading `json:"vibration"`
	Sound       MetricReading `json:"sound"`
	Temperature MetricReading `json:"temperature"`
	Visual      VisualReading `json:"visual"`
	Timestamp   string        `json:"timestamp"`
}

// NewSensorSnapshot rounds values to two decimals and derives each metric's
// display status.
func NewSensorSnapshot(r SensorReading, at time.Time) SensorSnapshot {
	status := func(v, limit float64, over string) string {
		if v < limit {
			return "normal"
		}
		return over
	}

	return SensorSnapshot{
		Vibration: MetricReading{
			Value:  round2(r.Vibration),
			Unit:   "g",
			Status: status(r.Vibration, 5, "warning"),
		},
		Sound: MetricReading{
			Value:  round2(r.SoundLevel),
			Unit:   "dB",
			Status: status(r.SoundLevel, 80, "alert"),
		},
		Temperature: MetricReading{
			Value:  round2(r.Temperature),
			Unit:   "°C",
			Status: status(r.Temperature, 35, "warning"),
		},
		Visual: VisualReading{
			MotionDetected: r.VisualMotion,
			Status:         "monitoring",
		},
		Timestamp: FormatTimestamp(at),
	}
}

func round2(v float64) float64 {
	if v < 0 {
		return -float64(int64(-v*100+0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
