package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"notify_relay/internal/config"
	"notify_relay/internal/domain"
	"notify_relay/internal/metrics"
	"notify_relay/internal/model"
	"notify_relay/internal/native"
	"notify_relay/internal/queue"
	"notify_relay/internal/repository"
	"notify_relay/internal/sse"
)

// nativeGrace bounds how long a backend may overrun its own timeout before
// the wait is abandoned.
const nativeGrace = 5 * time.Second

const publishTimeout = 5 * time.Second

type Service struct {
	notifier      native.Notifier
	pub           queue.Publisher
	hub           *sse.Hub
	events        repository.EventRepository
	metrics       *metrics.Metrics
	log           *zap.Logger
	appName       string
	timeout       time.Duration
	grace         time.Duration
	eventPrefix   string
	swallowErrors bool
}

func NewService(cfg *config.Config, notifier native.Notifier, publisher queue.Publisher, hub *sse.Hub, events repository.EventRepository, m *metrics.Metrics, logger *zap.Logger) *Service {
	timeout := cfg.NotifyTimeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}
	prefix := cfg.RabbitEventPrefix
	if prefix == "" {
		prefix = "notification"
	}
	return &Service{
		notifier:      notifier,
		pub:           publisher,
		hub:           hub,
		events:        events,
		metrics:       m,
		log:           logger,
		appName:       cfg.NotifyAppName,
		timeout:       timeout,
		grace:         nativeGrace,
		eventPrefix:   prefix,
		swallowErrors: cfg.NotifySwallowErrors,
	}
}

// Options resolves req into what the native facility is asked to show.
func (s *Service) Options(req model.NotificationRequest) model.Options {
	return model.Options{
		AppName:    s.appName,
		Title:      domain.ResolveTitle(req.Title),
		Message:    domain.ResolveMessage(req.Message),
		Sound:      true,
		Wait:       true,
		Reply:      true,
		CloseLabel: domain.CloseLabel,
		Timeout:    s.timeout,
	}
}

// Notify shows one native notification and waits for the user's answer.
// A timeout is not an error: it yields an empty reply. When the caller's
// context ends first, the notification is abandoned and ctx.Err() returned.
func (s *Service) Notify(ctx context.Context, req model.NotificationRequest, source string) (model.Reply, error) {
	opts := s.Options(req)
	reply := model.Reply{ID: uuid.NewString()}

	ctx, span := otel.Tracer("notify").Start(ctx, "notify.native", trace.WithAttributes(
		attribute.String("notification.id", reply.ID),
		attribute.String("notification.source", source),
		attribute.String("notifier.backend", s.notifier.Name()),
	))
	defer span.End()

	finish := s.metrics.Started(source)
	startedAt := time.Now().UTC()
	resp, err := s.await(ctx, opts)
	reply.Elapsed = time.Since(startedAt)

	if err != nil && ctx.Err() != nil {
		finish("cancelled")
		span.SetStatus(codes.Error, "caller cancelled")
		s.log.Info("notification abandoned by caller",
			zap.String("id", reply.ID),
			zap.String("source", source),
			zap.Duration("elapsed", reply.Elapsed),
		)
		return model.Reply{}, ctx.Err()
	}

	reply.Value = resp.Value
	reply.Outcome = resp.Outcome
	if err != nil {
		reply.Outcome = domain.OutcomeFailed
	} else if reply.Outcome == "" {
		reply.Outcome = domain.OutcomeReplied
	}
	finish(reply.Outcome)
	span.SetAttributes(attribute.String("notification.outcome", reply.Outcome))

	event := model.Event{
		ID:         reply.ID,
		Title:      opts.Title,
		Message:    opts.Message,
		Reply:      reply.Value,
		Outcome:    reply.Outcome,
		Source:     source,
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(reply.Elapsed),
	}
	if err != nil {
		event.Error = err.Error()
	}
	s.emit(ctx, event)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "native notify failed")
		s.log.Error("native notify failed",
			zap.String("id", reply.ID),
			zap.String("backend", s.notifier.Name()),
			zap.String("title", opts.Title),
			zap.Bool("swallowed", s.swallowErrors),
			zap.Error(err),
		)
		if s.swallowErrors {
			return reply, nil
		}
		return reply, err
	}

	s.log.Info("notification finished",
		zap.String("id", reply.ID),
		zap.String("source", source),
		zap.String("outcome", reply.Outcome),
		zap.Duration("elapsed", reply.Elapsed),
	)
	return reply, nil
}

type nativeResult struct {
	resp native.Response
	err  error
}

// await runs the native call on its own goroutine and waits on a
// per-request channel, so only this request is held while the user decides.
func (s *Service) await(ctx context.Context, opts model.Options) (native.Response, error) {
	waitCtx, cancel := context.WithTimeout(ctx, opts.Timeout+s.grace)
	defer cancel()

	done := make(chan nativeResult, 1)
	go func() {
		resp, err := s.notifier.Notify(waitCtx, opts)
		done <- nativeResult{resp: resp, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() == nil && errors.Is(res.err, context.DeadlineExceeded) {
			return native.Response{Outcome: domain.OutcomeTimeout}, nil
		}
		return res.resp, res.err
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return native.Response{}, ctx.Err()
		}
		s.log.Warn("native notifier overran its timeout",
			zap.String("backend", s.notifier.Name()),
			zap.Duration("timeout", opts.Timeout),
		)
		return native.Response{Outcome: domain.OutcomeTimeout}, nil
	}
}

// History returns recently finished notifications, newest first.
func (s *Service) History(ctx context.Context, outcome string, limit int) ([]model.Event, error) {
	return s.events.RecentEvents(ctx, outcome, limit)
}

func (s *Service) emit(ctx context.Context, event model.Event) {
	if err := s.events.AppendEvent(ctx, event); err != nil {
		s.log.Error("event history append failed", zap.String("id", event.ID), zap.Error(err))
	}
	if !s.hub.Broadcast(event) {
		s.log.Warn("event stream saturated, event dropped", zap.String("id", event.ID))
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error("event marshal failed", zap.String("id", event.ID), zap.Error(err))
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.pub.Publish(pubCtx, payload, s.eventPrefix+"."+event.Outcome); err != nil {
		s.log.Error("event publish failed",
			zap.String("id", event.ID),
			zap.String("outcome", event.Outcome),
			zap.Error(err),
		)
	}
}
