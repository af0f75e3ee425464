package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func inboundWithID(id string) *core.InboundMessage {
	return &core.InboundMessage{ID: &id}
}

// eventCollector records subscriber callbacks in delivery order.
type eventCollector struct {
	mu     sync.Mutex
	events []core.InboxEvent
	seen   chan struct{}
}

func newEventCollector() *eventCollector {
	return &eventCollector{seen: make(chan struct{}, 64)}
}

func (c *eventCollector) collect(event core.InboxEvent) {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
	c.seen <- struct{}{}
}

func (c *eventCollector) wait(t *testing.T, n int) []core.InboxEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		c.mu.Lock()
		count := len(c.events)
		c.mu.Unlock()
		if count >= n {
			break
		}
		select {
		case <-c.seen:
		case <-deadline:
			t.Fatalf("timed out waiting for %d events, have %d", n, count)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.InboxEvent, len(c.events))
	copy(out, c.events)
	return out
}

func TestAppendAssignsOrderedKeys(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	var keys []string
	for i := 0; i < 5; i++ {
		key, err := s.Append(ctx, inboundWithID(fmt.Sprintf("msg-%d", i)))
		require.NoError(t, err)
		keys = append(keys, key)
	}

	assert.Equal(t, "000000000001", keys[0])
	for i := 1; i < len(keys); i++ {
		// Keys are unique and lexically ordered by insertion.
		assert.Greater(t, keys[i], keys[i-1])
	}

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i, rec := range records {
		assert.Equal(t, keys[i], rec.Key)
		require.NotNil(t, rec.Message.ID)
		assert.Equal(t, fmt.Sprintf("msg-%d", i), *rec.Message.ID)
	}
}

func TestListAllOnEmptyStore(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	records, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSubscribeDeliversSnapshotThenAppends(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	_, err := s.Append(ctx, inboundWithID("before"))
	require.NoError(t, err)

	collector := newEventCollector()
	unsubscribe, err := s.Subscribe(collector.collect)
	require.NoError(t, err)
	defer unsubscribe()

	_, err = s.Append(ctx, inboundWithID("after-1"))
	require.NoError(t, err)
	_, err = s.Append(ctx, inboundWithID("after-2"))
	require.NoError(t, err)

	events := collector.wait(t, 3)

	// First delivery is always the snapshot taken at subscribe time.
	require.NotNil(t, events[0].Snapshot)
	require.Len(t, events[0].Snapshot, 1)
	assert.Equal(t, "before", *events[0].Snapshot[0].Message.ID)

	require.NotNil(t, events[1].Appended)
	assert.Equal(t, "after-1", *events[1].Appended.Message.ID)
	require.NotNil(t, events[2].Appended)
	assert.Equal(t, "after-2", *events[2].Appended.Message.ID)
}

func TestSubscribeOnEmptyStoreDeliversEmptySnapshot(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())

	collector := newEventCollector()
	unsubscribe, err := s.Subscribe(collector.collect)
	require.NoError(t, err)
	defer unsubscribe()

	events := collector.wait(t, 1)
	require.NotNil(t, events[0].Snapshot)
	assert.Empty(t, events[0].Snapshot)
}

func TestUnsubscribeStopsAllDelivery(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	collector := newEventCollector()
	unsubscribe, err := s.Subscribe(collector.collect)
	require.NoError(t, err)
	collector.wait(t, 1)

	unsubscribe()
	// Unsubscribing twice is harmless.
	unsubscribe()

	_, err = s.Append(ctx, inboundWithID("late"))
	require.NoError(t, err)

	// Give the fan-out goroutine a chance to misbehave before checking.
	time.Sleep(100 * time.Millisecond)
	events := collector.wait(t, 1)
	assert.Len(t, events, 1, "no events may arrive after unsubscribe")
}

func TestUnsubscribeWithStalledSubscriber(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	// A subscriber whose callback never returns, like an SSE client that
	// went away without closing the connection.
	block := make(chan struct{})
	defer close(block)
	unsubscribe, err := s.Subscribe(func(core.InboxEvent) { <-block })
	require.NoError(t, err)

	// Fill the stalled subscriber's buffer and wedge one more publish
	// behind it.
	var wg sync.WaitGroup
	for i := 0; i <= subscriberBuffer; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Append(ctx, inboundWithID(fmt.Sprintf("fill-%d", i)))
			assert.NoError(t, err)
		}(i)
	}
	time.Sleep(100 * time.Millisecond)

	// Unsubscribe must return promptly even with a publish blocked on
	// this subscriber's full buffer.
	done := make(chan struct{})
	go func() {
		unsubscribe()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("unsubscribe blocked behind a stalled subscriber")
	}

	// And the wedged appends must drain once the subscriber is gone.
	appendsDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(appendsDone)
	}()
	select {
	case <-appendsDone:
	case <-time.After(2 * time.Second):
		t.Fatal("appends remained blocked after unsubscribe")
	}
}

func TestIndependentSubscribers(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	first := newEventCollector()
	second := newEventCollector()
	unsubFirst, err := s.Subscribe(first.collect)
	require.NoError(t, err)
	unsubSecond, err := s.Subscribe(second.collect)
	require.NoError(t, err)
	defer unsubSecond()

	first.wait(t, 1)
	second.wait(t, 1)

	unsubFirst()
	_, err = s.Append(ctx, inboundWithID("only-second"))
	require.NoError(t, err)

	events := second.wait(t, 2)
	require.NotNil(t, events[1].Appended)
	assert.Equal(t, "only-second", *events[1].Appended.Message.ID)

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, first.wait(t, 1), 1)
}
