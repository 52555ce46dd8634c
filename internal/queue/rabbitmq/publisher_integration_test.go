//go:build integration

package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"notify_relay/internal/domain"
	"notify_relay/internal/model"
)

func TestPublisherIntegration(t *testing.T) {
	ctx := context.Background()
	amqpURL, cleanup := setupRabbitMQContainer(t, ctx)
	defer cleanup()

	cfg := integrationConfig(amqpURL)
	publisher := NewPublisher(cfg, zap.NewNop())

	conn, err := amqp.Dial(amqpURL)
	require.NoError(t, err)
	defer conn.Close()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	err = ch.ExchangeDeclare(cfg.RabbitExchange, "topic", true, false, false, false, nil)
	require.NoError(t, err)
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	err = ch.QueueBind(q.Name, cfg.RabbitEventPrefix+".*", cfg.RabbitExchange, false, nil)
	require.NoError(t, err)

	deliveries, err := ch.Consume(q.Name, "publisher-test", true, false, false, false, nil)
	require.NoError(t, err)

	event := model.Event{
		ID:      "abc",
		Title:   "title",
		Message: "message",
		Reply:   "done",
		Outcome: domain.OutcomeReplied,
		Source:  domain.SourceHTTP,
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	err = publisher.Publish(ctx, body, cfg.RabbitEventPrefix+"."+domain.OutcomeReplied)
	require.NoError(t, err)

	select {
	case msg := <-deliveries:
		var got model.Event
		require.NoError(t, json.Unmarshal(msg.Body, &got))
		require.Equal(t, event.ID, got.ID)
		require.Equal(t, event.Reply, got.Reply)
		require.Equal(t, "notification.replied", msg.RoutingKey)
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for published message")
	}
}
