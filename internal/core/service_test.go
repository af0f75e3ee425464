package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClassifier struct {
	result *Classification
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, subject, text *string) (*Classification, error) {
	return s.result, s.err
}

type stubStore struct {
	appended  []InboundMessage
	appendErr error
}

func (s *stubStore) Append(ctx context.Context, msg *InboundMessage) (string, error) {
	if s.appendErr != nil {
		return "", s.appendErr
	}
	s.appended = append(s.appended, *msg)
	return "000000000001", nil
}

func (s *stubStore) ListAll(ctx context.Context) ([]StoredMessage, error) {
	out := make([]StoredMessage, 0, len(s.appended))
	for i, msg := range s.appended {
		out = append(out, StoredMessage{Key: string(rune('a' + i)), Message: msg})
	}
	return out, nil
}

func (s *stubStore) Subscribe(fn SubscriberFunc) (func(), error) {
	return func() {}, nil
}

func TestIngestCanonicalizesAndAppends(t *testing.T) {
	store := &stubStore{}
	svc := NewTriageService(&stubClassifier{}, store, zap.NewNop())

	key, msg, err := svc.Ingest(context.Background(), map[string]any{
		"conversation": map[string]any{
			"recipient": map[string]any{"handle": "a@b.com"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "000000000001", key)
	require.NotNil(t, msg.User.Email)
	assert.Equal(t, "a@b.com", *msg.User.Email)
	require.Len(t, store.appended, 1)
}

func TestIngestPropagatesStoreFailure(t *testing.T) {
	store := &stubStore{appendErr: ErrStorageUnavailable}
	svc := NewTriageService(&stubClassifier{}, store, zap.NewNop())

	_, _, err := svc.Ingest(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestClassifyPassesThroughValidResult(t *testing.T) {
	want := &Classification{
		Tag:             TagFeatureRequest,
		ConfidenceScore: 0.85,
		CleanedMessage:  "Please add dark mode.",
		ModelUsed:       "stub",
	}
	svc := NewTriageService(&stubClassifier{result: want}, &stubStore{}, zap.NewNop())

	subject := "Idea"
	got, err := svc.Classify(context.Background(), &subject, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestClassifyRejectsContractViolations(t *testing.T) {
	svc := NewTriageService(&stubClassifier{
		result: &Classification{Tag: "made-up-tag", ConfidenceScore: 0.5},
	}, &stubStore{}, zap.NewNop())

	_, err := svc.Classify(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrClassifierProvider)

	svc = NewTriageService(&stubClassifier{
		result: &Classification{Tag: TagPraise, ConfidenceScore: 3},
	}, &stubStore{}, zap.NewNop())

	_, err = svc.Classify(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrClassifierProvider)
}

func TestClassifyPropagatesClassifierErrors(t *testing.T) {
	svc := NewTriageService(&stubClassifier{err: ErrClassifierUnavailable}, &stubStore{}, zap.NewNop())
	_, err := svc.Classify(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrClassifierUnavailable)

	providerErr := errors.New("upstream timeout")
	svc = NewTriageService(&stubClassifier{err: providerErr}, &stubStore{}, zap.NewNop())
	_, err = svc.Classify(context.Background(), nil, nil)
	assert.ErrorIs(t, err, providerErr)
}
