package domain

import "time"

type TrainState string

const (
	TrainRunning TrainState = "running"
	TrainStopped TrainState = "stopped"
	TrainHalted  TrainState = "halted"
)

type TrainStatus struct {
	ID         string     `json:"id"`
	TrainID    string     `json:"train_id"`
	Speed      float64    `json:"speed"`
	Location   string     `json:"location"`
	Status     TrainState `json:"status"`
	LastUpdate time.Time  `json:"last_update"`
}
