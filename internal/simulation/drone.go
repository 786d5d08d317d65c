package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

// DroneDispatcher stands in for drone control. It waits delay and then
// reports a random drone en route.
type DroneDispatcher struct {
	sim   *Simulator
	delay time.Duration
}

func NewDroneDispatcher(sim *Simulator, delay time.Duration) *DroneDispatcher {
	return &DroneDispatcher{sim: sim, delay: delay}
}

func (d *DroneDispatcher) Dispatch(ctx context.Context, location, alertID string) (domain.DroneDispatch, error) {
	if d.delay > 0 {
		t := time.NewTimer(d.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return domain.DroneDispatch{}, fmt.Errorf("drone dispatch: %w", ctx.Err())
		}
	}

	num, eta := d.sim.droneAssignment()
	return domain.DroneDispatch{
		Success:  true,
		DroneID:  fmt.Sprintf("DRONE-%d", num),
		Location: location,
		ETA:      eta,
		AlertID:  alertID,
		Status:   "en_route",
	}, nil
}
