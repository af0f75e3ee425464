package core

import (
	"context"
)

// Classifier defines the interface for the AI-backed email classifier
type Classifier interface {
	// Classify produces a Classification for the given subject and body.
	// Nil inputs are treated as empty strings.
	Classify(ctx context.Context, subject, text *string) (*Classification, error)
}

// InboxEvent is one delivery to an inbox subscriber. Exactly one of the
// three fields is meaningful: the initial Snapshot, an Appended record,
// or an Err from the backing store.
type InboxEvent struct {
	Snapshot []StoredMessage
	Appended *StoredMessage
	Err      error
}

// SubscriberFunc receives inbox events in append order.
type SubscriberFunc func(event InboxEvent)

// InboxStore defines the interface for the append-only inbox collection
type InboxStore interface {
	// Append writes a record and returns its assigned storage key. All
	// live subscribers are notified in append order.
	Append(ctx context.Context, msg *InboundMessage) (string, error)

	// ListAll returns a one-shot snapshot in insertion order. An empty
	// inbox yields an empty slice, not an error.
	ListAll(ctx context.Context) ([]StoredMessage, error)

	// Subscribe registers fn, which is invoked once immediately with the
	// current snapshot and thereafter on every append or store error.
	// Calling the returned function stops all further deliveries.
	Subscribe(fn SubscriberFunc) (func(), error)
}
