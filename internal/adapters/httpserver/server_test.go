package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mikey/inbox-triage/internal/adapters/store"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClassifier struct {
	result *core.Classification
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, subject, text *string) (*core.Classification, error) {
	return f.result, f.err
}

// brokenStore fails every operation, standing in for a dead backend.
type brokenStore struct{}

func (brokenStore) Append(ctx context.Context, msg *core.InboundMessage) (string, error) {
	return "", core.ErrStorageUnavailable
}

func (brokenStore) ListAll(ctx context.Context) ([]core.StoredMessage, error) {
	return nil, core.ErrStorageUnavailable
}

func (brokenStore) Subscribe(fn core.SubscriberFunc) (func(), error) {
	return nil, core.ErrStorageUnavailable
}

func newTestServer(classifier core.Classifier, inbox core.InboxStore) *Server {
	logger := zap.NewNop()
	service := core.NewTriageService(classifier, inbox, logger)
	return NewServer(service, logger, "127.0.0.1:0")
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestWebhookAcceptsPayload(t *testing.T) {
	s := newTestServer(&fakeClassifier{}, store.NewMemoryStore(zap.NewNop()))

	rec := doRequest(s, http.MethodPost, "/webhook", `{
		"conversation": {"recipient": {"handle": "a@b.com"}},
		"target": {"data": {"subject": "Hi", "text": "Thanks, this app is great!"}}
	}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success": true, "message": "Data saved successfully"}`, rec.Body.String())
}

func TestWebhookAcceptsMinimalPayload(t *testing.T) {
	inbox := store.NewMemoryStore(zap.NewNop())
	s := newTestServer(&fakeClassifier{}, inbox)

	// An empty object is still a valid event; every field degrades to null.
	rec := doRequest(s, http.MethodPost, "/webhook", `{}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	records, err := inbox.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Message.ID)
}

func TestWebhookRejectsNonObjectBody(t *testing.T) {
	s := newTestServer(&fakeClassifier{}, store.NewMemoryStore(zap.NewNop()))

	for _, body := range []string{`not json`, `[1,2,3]`, `"a string"`} {
		rec := doRequest(s, http.MethodPost, "/webhook", body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, body)
		assert.JSONEq(t, `{"success": false, "error": "Failed to save data"}`, rec.Body.String())
	}
}

func TestWebhookReportsStoreFailure(t *testing.T) {
	s := newTestServer(&fakeClassifier{}, brokenStore{})

	rec := doRequest(s, http.MethodPost, "/webhook", `{"id": "x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success": false, "error": "Failed to save data"}`, rec.Body.String())
}

func TestWebhookStatus(t *testing.T) {
	s := newTestServer(&fakeClassifier{}, store.NewMemoryStore(zap.NewNop()))

	rec := doRequest(s, http.MethodGet, "/webhook", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Webhook endpoint is active."}`, rec.Body.String())
}

func TestInboxSnapshot(t *testing.T) {
	inbox := store.NewMemoryStore(zap.NewNop())
	s := newTestServer(&fakeClassifier{}, inbox)

	doRequest(s, http.MethodPost, "/webhook", `{"id": "first"}`)
	doRequest(s, http.MethodPost, "/webhook", `{"id": "second"}`)

	rec := doRequest(s, http.MethodGet, "/inbox", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total    int                  `json:"total"`
		Messages []core.StoredMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "first", *resp.Messages[0].Message.ID)
	assert.Equal(t, "second", *resp.Messages[1].Message.ID)
}

func TestClassifyHappyPath(t *testing.T) {
	classifier := &fakeClassifier{result: &core.Classification{
		Tag:             core.TagPraise,
		ConfidenceScore: 0.97,
		CleanedMessage:  "This app is great!",
		ModelUsed:       "fake",
	}}
	s := newTestServer(classifier, store.NewMemoryStore(zap.NewNop()))

	rec := doRequest(s, http.MethodPost, "/classify", `{"subject": "Hi", "text": "Thanks, this app is great!"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got core.Classification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, core.TagPraise, got.Tag)
	assert.Equal(t, 0.97, got.ConfidenceScore)
	assert.Equal(t, "This app is great!", got.CleanedMessage)
}

func TestClassifyStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		classifier *fakeClassifier
		wantStatus int
	}{
		{
			name:       "no API key configured",
			classifier: &fakeClassifier{err: core.ErrClassifierUnavailable},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "provider failure",
			classifier: &fakeClassifier{err: core.ErrClassifierProvider},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "contract violation from provider",
			classifier: &fakeClassifier{result: &core.Classification{
				Tag:             "invented tag",
				ConfidenceScore: 0.5,
			}},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unexpected failure",
			classifier: &fakeClassifier{err: context.DeadlineExceeded},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(tc.classifier, store.NewMemoryStore(zap.NewNop()))
			rec := doRequest(s, http.MethodPost, "/classify", `{"subject": "s", "text": "t"}`)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestClassifyRejectsMalformedRequest(t *testing.T) {
	s := newTestServer(&fakeClassifier{}, store.NewMemoryStore(zap.NewNop()))
	rec := doRequest(s, http.MethodPost, "/classify", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
