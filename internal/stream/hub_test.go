package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
)

func startHub(t *testing.T, origins ...string) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	hub := NewHub(origins, nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestHubBroadcastsAlertEvents(t *testing.T) {
	hub, url := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	ev := domain.AlertEvent{Type: domain.AlertCreated, AlertID: "a-1", Status: domain.StatusActive}
	require.NoError(t, hub.PublishAlertEvent(context.Background(), ev))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got domain.AlertEvent
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "a-1", got.AlertID)
	assert.Equal(t, domain.AlertCreated, got.Type)
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub, url := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubRejectsUnknownOrigin(t *testing.T) {
	_, url := startHub(t, "https://ops.example")

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub([]string{"*"}, nil)

	var lastErr error
	for i := 0; i < 300; i++ {
		lastErr = hub.PublishAlertEvent(context.Background(), domain.AlertEvent{AlertID: "x"})
	}
	assert.ErrorIs(t, lastErr, ErrBacklog)
}

type chanSubscriber chan domain.AlertEvent

func (c chanSubscriber) SubscribeAlertEvents(ctx context.Context, handle func(domain.AlertEvent)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c:
			handle(ev)
		}
	}
}

func TestRelayForwardsSubscription(t *testing.T) {
	hub := NewHub([]string{"*"}, nil)
	sub := make(chanSubscriber, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- hub.Relay(ctx, sub) }()

	sub <- domain.AlertEvent{AlertID: "relayed"}
	require.Eventually(t, func() bool { return len(hub.broadcast) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
