package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"notify_relay/internal/config"
	"notify_relay/internal/domain"
	"notify_relay/internal/model"
	"notify_relay/internal/queue"
)

// Notifier is the part of the notify service the consumer drives.
type Notifier interface {
	Notify(ctx context.Context, req model.NotificationRequest, source string) (model.Reply, error)
}

type noopConsumer struct{}

func (noopConsumer) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type Consumer struct {
	url         string
	svc         Notifier
	logger      *zap.Logger
	exchange    string
	queue       string
	routingKey  string
	consumerTag string
}

func NewConsumer(cfg *config.Config, svc Notifier, logger *zap.Logger) queue.Consumer {
	if cfg.RabbitMQURL == "" {
		return noopConsumer{}
	}
	return &Consumer{
		url:         cfg.RabbitMQURL,
		svc:         svc,
		logger:      logger,
		exchange:    cfg.RabbitExchange,
		queue:       cfg.RabbitQueue,
		routingKey:  cfg.RabbitRequestKey,
		consumerTag: cfg.RabbitConsumerTag,
	}
}

func (r *Consumer) Start(ctx context.Context) error {
	ctx, span := otel.Tracer("rabbitmq").Start(ctx, "rabbitmq.consume_loop")
	span.SetAttributes(
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.destination", r.exchange),
		attribute.String("messaging.destination_kind", "exchange"),
		attribute.String("messaging.rabbitmq.routing_key", r.routingKey),
	)
	defer span.End()

	fail := func(status string, err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		return err
	}

	conn, err := amqp.Dial(r.url)
	if err != nil {
		return fail("dial failed", fmt.Errorf("rabbitmq dial: %w", err))
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fail("channel failed", fmt.Errorf("rabbitmq channel: %w", err))
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		return fail("qos failed", fmt.Errorf("rabbitmq qos: %w", err))
	}
	if err := declareExchange(ch, r.exchange); err != nil {
		return fail("exchange declare failed", err)
	}

	queueInfo, err := ch.QueueDeclare(
		r.queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fail("queue declare failed", fmt.Errorf("rabbitmq queue declare: %w", err))
	}

	if err := ch.QueueBind(
		queueInfo.Name,
		r.routingKey,
		r.exchange,
		false,
		nil,
	); err != nil {
		return fail("queue bind failed", fmt.Errorf("rabbitmq queue bind: %w", err))
	}

	deliveries, err := ch.Consume(
		queueInfo.Name,
		r.consumerTag,
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fail("consume failed", fmt.Errorf("rabbitmq consume: %w", err))
	}

	r.logger.Info("RabbitMQ consumer started",
		zap.String("exchange", r.exchange),
		zap.String("queue", queueInfo.Name),
		zap.String("routing_key", r.routingKey),
	)

	// One goroutine per delivery so a pending dialog never holds up the
	// next queued notification. Qos caps how many are in flight.
	var handlers sync.WaitGroup
	defer handlers.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				span.SetStatus(codes.Error, "deliveries closed")
				return errors.New("rabbitmq deliveries closed")
			}
			handlers.Add(1)
			go func(msg amqp.Delivery) {
				defer handlers.Done()
				if err := r.handleMessage(ctx, msg); err != nil {
					r.logger.Error("rabbitmq ack failed", zap.Error(err))
				}
			}(msg)
		}
	}
}

func (r *Consumer) handleMessage(ctx context.Context, msg amqp.Delivery) error {
	ctx = otel.GetTextMapPropagator().Extract(ctx, amqpHeaderCarrier(msg.Headers))
	ctx, span := otel.Tracer("rabbitmq").Start(ctx, "rabbitmq.handle_message")
	span.SetAttributes(
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.destination", r.exchange),
		attribute.String("messaging.destination_kind", "exchange"),
		attribute.String("messaging.rabbitmq.routing_key", msg.RoutingKey),
	)
	defer span.End()

	var req model.NotificationRequest
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid json")
		r.logger.Error("rabbitmq invalid json", zap.Error(err))
		return msg.Ack(false)
	}

	reply, err := r.svc.Notify(ctx, req, domain.SourceQueue)
	if err != nil {
		span.RecordError(err)
		if ctx.Err() != nil {
			span.SetStatus(codes.Error, "consumer stopping")
			return msg.Nack(false, true)
		}
		span.SetStatus(codes.Error, "notify failed")
		r.logger.Error("rabbitmq notify failed", zap.String("title", req.Title), zap.Error(err))
		return msg.Ack(false)
	}

	span.SetAttributes(attribute.String("notification.outcome", reply.Outcome))
	return msg.Ack(false)
}
