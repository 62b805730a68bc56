package events

import (
	"sync"

	"go.uber.org/zap"
)

type subscription struct {
	types   map[string]bool
	handler EventHandler
}

// InMemoryEventStore keeps the whole log of one process. Subscribers are
// notified synchronously, in subscription order, after the event is stored.
type InMemoryEventStore struct {
	mu            sync.RWMutex
	log           []Record
	byStream      map[string][]int // positions in log
	subscriptions []subscription
	logger        *zap.Logger
}

// NewInMemoryEventStore returns an empty store. A nil logger discards handler failures.
func NewInMemoryEventStore(logger *zap.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		byStream: make(map[string][]int),
		logger:   logger,
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mu.Lock()
	positions := s.byStream[streamID]
	stored := Record{
		Kind:     event.Type(),
		Stream:   streamID,
		Payload:  event.Data(),
		At:       event.Timestamp(),
		Sequence: len(positions) + 1,
	}
	s.byStream[streamID] = append(positions, len(s.log))
	s.log = append(s.log, stored)

	var targets []EventHandler
	for _, sub := range s.subscriptions {
		if sub.types[stored.Kind] {
			targets = append(targets, sub.handler)
		}
	}
	s.mu.Unlock()

	for _, h := range targets {
		if !h.CanHandle(stored.Kind) {
			continue
		}
		if err := h.Handle(stored); err != nil {
			s.logger.Warn("event handler failed",
				zap.String("event", stored.Kind),
				zap.Int("version", stored.Sequence),
				zap.Error(err))
		}
	}
	return nil
}

// ReadEvents returns the events of streamID starting at fromVersion (1-based).
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := s.byStream[streamID]
	if fromVersion < 1 {
		fromVersion = 1
	}
	out := []Event{}
	for _, pos := range positions[min(fromVersion-1, len(positions)):] {
		out = append(out, s.log[pos])
	}
	return out, nil
}

// ReadAllEvents returns every event from the 0-based log position onwards.
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fromPosition = max(fromPosition, 0)
	out := []Event{}
	for _, r := range s.log[min(fromPosition, len(s.log)):] {
		out = append(out, r)
	}
	return out, nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	types := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = true
	}

	s.mu.Lock()
	s.subscriptions = append(s.subscriptions, subscription{types: types, handler: handler})
	s.mu.Unlock()
	return nil
}

// Unsubscribe drops every subscription of handler.
func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.subscriptions[:0]
	for _, sub := range s.subscriptions {
		if sub.handler != handler {
			kept = append(kept, sub)
		}
	}
	s.subscriptions = kept
	return nil
}
