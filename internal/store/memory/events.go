package memory

import (
	"context"

	"go.uber.org/zap"
	"notify_relay/internal/model"
)

func (s *Store) AppendEvent(_ context.Context, event model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		s.log.Debug("event history full, evicting oldest", zap.String("evicted", s.records[s.next].ID))
	}
	s.records[s.next] = event
	s.next = (s.next + 1) % len(s.records)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

func (s *Store) RecentEvents(_ context.Context, outcome string, limit int) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := s.next
	if s.full {
		size = len(s.records)
	}

	var result []model.Event
	for i := 1; i <= size; i++ {
		record := s.records[(s.next-i+len(s.records))%len(s.records)]
		if outcome != "" && record.Outcome != outcome {
			continue
		}
		result = append(result, record)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}
