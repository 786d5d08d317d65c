package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

const (
	alertEventsChannel = "intentguard:alerts"
	sensorChannel      = "intentguard:sensors"
	latestSensorKey    = "sensor:latest"

	// A live snapshot older than this is treated as absent.
	sensorStateTTL = 60 * time.Second
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// PipelineSensorSnapshot stores report as the latest reading, both globally
// and per sensor, and publishes it to live subscribers.
func (r *RedisStore) PipelineSensorSnapshot(ctx context.Context, report *domain.SensorReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal sensor report: %w", err)
	}

	sensorKey := fmt.Sprintf("sensor:%s:latest", report.SensorID)

	pipe := r.client.Pipeline()
	pipe.Set(ctx, latestSensorKey, payload, sensorStateTTL)
	pipe.Set(ctx, sensorKey, payload, sensorStateTTL)
	pipe.Publish(ctx, sensorChannel, payload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

// LatestSensorReport returns the most recent report written by
// PipelineSensorSnapshot. ok is false when none is live.
func (r *RedisStore) LatestSensorReport(ctx context.Context) (report domain.SensorReport, ok bool, err error) {
	raw, err := r.client.Get(ctx, latestSensorKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SensorReport{}, false, nil
	}
	if err != nil {
		return domain.SensorReport{}, false, fmt.Errorf("redis get latest sensor failed: %w", err)
	}
	if err := json.Unmarshal(raw, &report); err != nil {
		return domain.SensorReport{}, false, fmt.Errorf("decode latest sensor: %w", err)
	}
	return report, true, nil
}

func alertDedupKey(location string, intent domain.Intent) string {
	return fmt.Sprintf("alert:%s:%s", strings.ToLower(location), intent)
}

// ClaimAlertDedup reserves the dedup window for location and intent. It
// returns false if another alert already holds it.
func (r *RedisStore) ClaimAlertDedup(ctx context.Context, location string, intent domain.Intent, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, alertDedupKey(location, intent), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim failed: %w", err)
	}
	return ok, nil
}

// ReleaseAlertDedup drops a claim whose alert was never written.
func (r *RedisStore) ReleaseAlertDedup(ctx context.Context, location string, intent domain.Intent) error {
	return r.client.Del(ctx, alertDedupKey(location, intent)).Err()
}

func (r *RedisStore) PublishAlertEvent(ctx context.Context, ev domain.AlertEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}
	return r.client.Publish(ctx, alertEventsChannel, payload).Err()
}

// SubscribeAlertEvents calls handle for every alert event published by any
// instance until ctx is cancelled.
func (r *RedisStore) SubscribeAlertEvents(ctx context.Context, handle func(domain.AlertEvent)) error {
	sub := r.client.Subscribe(ctx, alertEventsChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", alertEventsChannel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev domain.AlertEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			handle(ev)
		}
	}
}
