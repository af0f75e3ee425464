package store

import (
	"sync"

	"github.com/mikey/inbox-triage/internal/core"
)

// subscriberBuffer bounds the per-subscriber delivery queue. Publishing
// blocks when a subscriber falls this far behind; events are never
// dropped, so append order is preserved end to end.
const subscriberBuffer = 256

// hub fans inbox events out to subscribers. Each subscriber gets its own
// buffered channel drained by a dedicated goroutine, so callbacks for one
// subscriber run serially and in publish order.
type hub struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID uint64
}

type subscriber struct {
	fn   core.SubscriberFunc
	ch   chan core.InboxEvent
	stop chan struct{}
	once sync.Once
}

func newHub() *hub {
	return &hub{subs: make(map[uint64]*subscriber)}
}

// subscribe registers fn and queues the initial snapshot event before any
// later publish can be delivered. The returned function removes the
// subscriber; after it returns no further callbacks are started.
func (h *hub) subscribe(fn core.SubscriberFunc, snapshot []core.StoredMessage) func() {
	sub := &subscriber{
		fn:   fn,
		ch:   make(chan core.InboxEvent, subscriberBuffer),
		stop: make(chan struct{}),
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	sub.ch <- core.InboxEvent{Snapshot: snapshot}
	h.mu.Unlock()

	go sub.run()

	// Close stop before taking the hub mutex: a publish blocked on this
	// subscriber's full buffer holds the mutex until the stop case fires,
	// so the reverse order would deadlock unsubscribe behind it.
	return func() {
		sub.once.Do(func() { close(sub.stop) })
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// publish queues an event for every live subscriber. Callers must hold
// whatever ordering lock the store uses for appends so that events are
// queued in append order.
func (h *hub) publish(event core.InboxEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		select {
		case <-sub.stop:
		case sub.ch <- event:
		}
	}
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.stop:
			return
		case event := <-s.ch:
			select {
			case <-s.stop:
				return
			default:
			}
			s.fn(event)
		}
	}
}
