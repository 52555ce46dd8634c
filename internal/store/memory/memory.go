package memory

import (
	"sync"

	"go.uber.org/zap"
	"notify_relay/internal/model"
)

const defaultCapacity = 100

// Store is a fixed-size ring of finished notification events. Nothing
// survives a restart.
type Store struct {
	mu      sync.Mutex
	records []model.Event
	next    int
	full    bool
	log     *zap.Logger
}

func New(capacity int, logger *zap.Logger) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Store{records: make([]model.Event, capacity), log: logger}
}
