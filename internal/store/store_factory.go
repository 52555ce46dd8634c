package store

import (
	"go.uber.org/zap"
	"notify_relay/internal/config"
	"notify_relay/internal/repository"
	"notify_relay/internal/store/memory"
)

// NewEventStore returns the recent-events store used for /events replay.
func NewEventStore(cfg *config.Config, logger *zap.Logger) repository.EventRepository {
	logger.Debug("event history enabled", zap.Int("capacity", cfg.EventHistorySize))
	return memory.New(cfg.EventHistorySize, logger)
}
