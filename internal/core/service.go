package core

import (
	"context"

	"go.uber.org/zap"
)

// TriageService is the core service tying the canonicalizer, the inbox
// store and the classifier together. All collaborators are injected so
// the service can run against in-memory fakes in tests.
type TriageService struct {
	classifier Classifier
	store      InboxStore
	logger     *zap.Logger
}

// NewTriageService creates a new triage service
func NewTriageService(classifier Classifier, store InboxStore, logger *zap.Logger) *TriageService {
	return &TriageService{
		classifier: classifier,
		store:      store,
		logger:     logger,
	}
}

// Ingest canonicalizes a raw webhook payload and appends the resulting
// record to the inbox. The canonical record and its storage key are
// returned so the receiver can acknowledge the upstream.
func (s *TriageService) Ingest(ctx context.Context, raw map[string]any) (string, *InboundMessage, error) {
	msg := Canonicalize(raw)
	key, err := s.IngestMessage(ctx, &msg)
	if err != nil {
		return "", nil, err
	}
	return key, &msg, nil
}

// IngestMessage appends an already-canonical record, for ingestion paths
// that build the record themselves (e.g. the SMTP listener).
func (s *TriageService) IngestMessage(ctx context.Context, msg *InboundMessage) (string, error) {
	key, err := s.store.Append(ctx, msg)
	if err != nil {
		s.logger.Error("Failed to append inbound message", zap.Error(err))
		return "", err
	}

	s.logger.Info("Stored inbound message",
		zap.String("storage_key", key),
		zap.Stringp("upstream_id", msg.ID))
	return key, nil
}

// Classify runs the classifier over one email's subject and body and
// validates the result against the output contract before trusting it.
// Provider failures propagate as-is; there is no retry or fallback tag.
func (s *TriageService) Classify(ctx context.Context, subject, text *string) (*Classification, error) {
	result, err := s.classifier.Classify(ctx, subject, text)
	if err != nil {
		return nil, err
	}
	if err := ValidateClassification(result); err != nil {
		return nil, err
	}

	s.logger.Debug("Classified email",
		zap.String("tag", string(result.Tag)),
		zap.Float64("confidence", result.ConfidenceScore),
		zap.String("model", result.ModelUsed))
	return result, nil
}

// Snapshot returns the current inbox contents in insertion order.
func (s *TriageService) Snapshot(ctx context.Context) ([]StoredMessage, error) {
	return s.store.ListAll(ctx)
}

// Subscribe attaches a live subscriber to the inbox feed.
func (s *TriageService) Subscribe(fn SubscriberFunc) (func(), error) {
	return s.store.Subscribe(fn)
}
