package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the InboxStore interface.
// It backs tests and single-process deployments that don't need the
// inbox to survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	records []core.StoredMessage
	seq     uint64
	hub     *hub
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory inbox store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		hub:    newHub(),
		logger: logger,
	}
}

// Append writes a record, assigns the next sequential storage key and
// notifies subscribers before returning.
func (s *MemoryStore) Append(ctx context.Context, msg *core.InboundMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	stored := core.StoredMessage{
		Key:     fmt.Sprintf("%012d", s.seq),
		Message: *msg,
	}
	s.records = append(s.records, stored)

	s.hub.publish(core.InboxEvent{Appended: &stored})

	s.logger.Debug("Appended inbox record",
		zap.String("storage_key", stored.Key),
		zap.Int("total", len(s.records)))
	return stored.Key, nil
}

// ListAll returns a snapshot copy of the inbox in insertion order.
func (s *MemoryStore) ListAll(ctx context.Context) ([]core.StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]core.StoredMessage, len(s.records))
	copy(snapshot, s.records)
	return snapshot, nil
}

// Subscribe registers a live subscriber. The initial snapshot is queued
// under the append lock so no append can slip between snapshot and the
// first delivered event.
func (s *MemoryStore) Subscribe(fn core.SubscriberFunc) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]core.StoredMessage, len(s.records))
	copy(snapshot, s.records)
	return s.hub.subscribe(fn, snapshot), nil
}
