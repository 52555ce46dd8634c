//go:build integration

package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"notify_relay/internal/config"
	"notify_relay/internal/domain"
	"notify_relay/internal/metrics"
	"notify_relay/internal/model"
	"notify_relay/internal/native"
	"notify_relay/internal/queue/rabbitmq"
	"notify_relay/internal/service/notify"
	"notify_relay/internal/sse"
	"notify_relay/internal/store/memory"
)

func TestPublishFlow(t *testing.T) {
	ctx := context.Background()
	amqpURL, cleanup := setupRabbitMQContainer(t, ctx)
	defer cleanup()

	cfg := &config.Config{
		NotifyTimeout:     2 * time.Second,
		SSEHeartbeat:      5 * time.Second,
		RabbitMQURL:       amqpURL,
		RabbitExchange:    "notifications",
		RabbitQueue:       "notify.requests",
		RabbitRequestKey:  "notify.request",
		RabbitEventPrefix: "notification",
		RabbitConsumerTag: "notify-relay",
	}

	n := newScriptedNotifier()
	n.answer("queued") <- native.Response{Value: "seen", Outcome: domain.OutcomeReplied}

	logger := zap.NewNop()
	publisher := rabbitmq.NewPublisher(cfg, logger)
	r := startRelay(t, cfg, n, publisher)

	// The consumer drives its own service so the HTTP relay above only
	// publishes; events from both land on the same hub.
	consumerSvc := notify.NewService(cfg, n, publisher, r.hub, memory.New(10, logger), metrics.New(), logger)
	consumer := rabbitmq.NewConsumer(cfg, consumerSvc, logger)

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- consumer.Start(consumeCtx)
	}()
	require.NoError(t, waitForConsumer(ctx, amqpURL, cfg.RabbitQueue, 5*time.Second))

	sseResp, err := http.Get(r.server.URL + "/events?outcome=replied")
	require.NoError(t, err)
	defer sseResp.Body.Close()
	require.Equal(t, http.StatusOK, sseResp.StatusCode)
	require.Eventually(t, func() bool { return r.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	postResp, err := http.Post(r.server.URL+"/notify/publish", "application/json", strings.NewReader(`{"title":"queued"}`))
	require.NoError(t, err)
	_ = postResp.Body.Close()
	require.Equal(t, http.StatusAccepted, postResp.StatusCode)

	data, err := readSSEData(sseResp.Body, 5*time.Second)
	require.NoError(t, err)
	var got model.Event
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	require.Equal(t, "queued", got.Title)
	require.Equal(t, "seen", got.Reply)
	require.Equal(t, domain.SourceQueue, got.Source)

	cancel()
	select {
	case <-time.After(3 * time.Second):
		t.Fatalf("consumer did not stop")
	case <-errCh:
	}
}

func waitForConsumer(ctx context.Context, amqpURL, queue string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			conn, err := amqp.Dial(amqpURL)
			if err != nil {
				continue
			}
			ch, err := conn.Channel()
			if err != nil {
				_ = conn.Close()
				continue
			}
			q, err := ch.QueueInspect(queue)
			_ = ch.Close()
			_ = conn.Close()
			if err != nil {
				continue
			}
			if q.Consumers > 0 {
				return nil
			}
		}
	}
}

func setupRabbitMQContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	port := nat.Port("5672/tcp")
	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.12-alpine",
		ExposedPorts: []string{string(port)},
		WaitingFor:   wait.ForListeningPort(port).WithStartupTimeout(2 * time.Minute),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)

	amqpURL := "amqp://guest:guest@" + host + ":" + mapped.Port() + "/"

	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return amqpURL, cleanup
}
