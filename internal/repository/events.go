package repository

import (
	"context"

	"notify_relay/internal/model"
)

// EventRepository keeps recently finished notifications for stream replay.
type EventRepository interface {
	AppendEvent(ctx context.Context, event model.Event) error
	// RecentEvents returns newest first. An empty outcome matches every event.
	RecentEvents(ctx context.Context, outcome string, limit int) ([]model.Event, error)
}
