package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
	"notify_relay/internal/config"
	"notify_relay/internal/domain"
	"notify_relay/internal/http/dto"
	"notify_relay/internal/http/resp"
	"notify_relay/internal/model"
	"notify_relay/internal/queue"
	"notify_relay/internal/service/notify"
	"notify_relay/internal/sse"
)

// statusClientClosedRequest is nginx's code for a caller that hung up.
const statusClientClosedRequest = 499

const defaultHeartbeat = 15 * time.Second

type Handler struct {
	cfg *config.Config
	svc *notify.Service
	hub *sse.Hub
	log *zap.Logger
	pub queue.Publisher
}

func NewHandler(cfg *config.Config, svc *notify.Service, hub *sse.Hub, logger *zap.Logger, publisher queue.Publisher) *Handler {
	return &Handler{cfg: cfg, svc: svc, hub: hub, log: logger, pub: publisher}
}

func (h *Handler) Health(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Notify shows a native notification and answers with the user's reply once
// it is known. The body is the raw reply unless the caller asks for JSON.
func (h *Handler) Notify(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	reply, err := h.svc.Notify(c.Request.Context(), req, domain.SourceHTTP)
	if err != nil {
		switch {
		case c.Request.Context().Err() != nil:
			h.log.Info("client went away before reply", zap.String("title", req.Title))
			c.AbortWithStatus(statusClientClosedRequest)
		case errors.Is(err, domain.ErrNotifierUnavailable):
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Code: resp.CodeNotifierUnavailable, Message: "native notifier unavailable"})
		case errors.Is(err, domain.ErrNativeFailure):
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{Code: resp.CodeNotifierFailed, Message: "native notification failed"})
		default:
			h.log.Error("notify failed", zap.String("title", req.Title), zap.Error(err))
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to notify"})
		}
		return
	}

	switch c.NegotiateFormat(binding.MIMEPlain, binding.MIMEJSON) {
	case binding.MIMEJSON:
		opts := h.svc.Options(req)
		c.JSON(http.StatusOK, dto.NotifyResponse{
			ID:      reply.ID,
			Reply:   reply.Value,
			Outcome: reply.Outcome,
			Title:   opts.Title,
			Message: opts.Message,
		})
	default:
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(reply.Value))
	}
}

// PublishNotify queues the request for the RabbitMQ consumer instead of
// waiting on the native facility.
func (h *Handler) PublishNotify(c *gin.Context) {
	if h.cfg.RabbitMQURL == "" {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Code: resp.CodeQueueDisabled, Message: "rabbitmq is not configured"})
		return
	}
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	payload, err := json.Marshal(req)
	if err != nil {
		h.log.Error("publish payload marshal failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to publish notification"})
		return
	}

	routingKey := h.cfg.RabbitRequestKey
	if routingKey == "" {
		routingKey = "notify.request"
	}
	if err := h.pub.Publish(c.Request.Context(), payload, routingKey); err != nil {
		h.log.Error("publish notification failed",
			zap.String("title", req.Title),
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to publish notification"})
		return
	}

	c.JSON(http.StatusAccepted, dto.StatusResponse{Code: resp.CodeQueued, Message: "queued"})
}

// Events streams finished notifications, optionally filtered by ?outcome=.
// Up to ?limit= recent events (HistoryLimit by default) are replayed first.
func (h *Handler) Events(c *gin.Context) {
	outcome := c.Query("outcome")
	if outcome != "" && !domain.IsValidOutcome(outcome) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "unknown outcome"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		h.log.Error("streaming unsupported")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "streaming unsupported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	limit := h.cfg.HistoryLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}
	if limit > 0 {
		history, err := h.svc.History(c.Request.Context(), outcome, limit)
		if err != nil {
			h.log.Error("list history failed", zap.String("outcome", outcome), zap.Int("limit", limit), zap.Error(err))
		}
		for i := len(history) - 1; i >= 0; i-- {
			if err := writeEvent(c.Writer, history[i]); err != nil {
				h.log.Error("write history event failed", zap.Error(err))
				return
			}
		}
	}
	flusher.Flush()

	client := &sse.Client{
		Outcome: outcome,
		Ch:      make(chan model.Event, 16),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	interval := h.cfg.SSEHeartbeat
	if interval <= 0 {
		interval = defaultHeartbeat
	}
	heartbeat := time.NewTicker(interval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-h.hub.Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
				h.log.Error("heartbeat write failed", zap.Error(err))
				return
			}
			flusher.Flush()
		case event, ok := <-client.Ch:
			if !ok {
				return
			}
			if err := writeEvent(c.Writer, event); err != nil {
				h.log.Error("write event failed", zap.String("id", event.ID), zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

// bindRequest accepts JSON, form, or an empty body. It writes the 400 itself.
func (h *Handler) bindRequest(c *gin.Context) (model.NotificationRequest, bool) {
	var req dto.NotifyRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		h.log.Warn("invalid notify body", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid body"})
		return model.NotificationRequest{}, false
	}
	return model.NotificationRequest{Title: req.Title, Message: req.Message}, true
}

func writeEvent(w io.Writer, event model.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	// event name is the outcome so browsers can addEventListener per outcome.
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Outcome, payload)
	return err
}
