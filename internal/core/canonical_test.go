package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, payload string) map[string]any {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	return raw
}

func TestCanonicalizeFullPayload(t *testing.T) {
	raw := decodePayload(t, `{
		"id": "msg-77",
		"conversation": {
			"id": "conv-1",
			"waiting_since": 1717000000.5,
			"recipient": {"name": "Ada", "handle": "a@b.com"}
		},
		"target": {"data": {"subject": "Hi", "text": "Thanks, this app is great!"}},
		"source": {"data": [{"name": "email"}]}
	}`)

	msg := Canonicalize(raw)

	require.NotNil(t, msg.ID)
	assert.Equal(t, "msg-77", *msg.ID)
	require.NotNil(t, msg.Conversation.ID)
	assert.Equal(t, "conv-1", *msg.Conversation.ID)
	require.NotNil(t, msg.Conversation.WaitingSince)
	assert.Equal(t, 1717000000.5, *msg.Conversation.WaitingSince)
	require.NotNil(t, msg.User.Name)
	assert.Equal(t, "Ada", *msg.User.Name)
	require.NotNil(t, msg.User.Email)
	assert.Equal(t, "a@b.com", *msg.User.Email)
	require.NotNil(t, msg.Email.Subject)
	assert.Equal(t, "Hi", *msg.Email.Subject)
	require.NotNil(t, msg.Email.Text)
	assert.Equal(t, "Thanks, this app is great!", *msg.Email.Text)
	require.NotNil(t, msg.Source.Name)
	assert.Equal(t, "email", *msg.Source.Name)
}

func TestCanonicalizePartialPayload(t *testing.T) {
	// Missing id and source; the rest of the shape is still filled in.
	raw := decodePayload(t, `{
		"conversation": {"recipient": {"handle": "a@b.com"}},
		"target": {"data": {"subject": "Hi", "text": "Thanks, this app is great!"}}
	}`)

	msg := Canonicalize(raw)

	assert.Nil(t, msg.ID)
	assert.Nil(t, msg.Conversation.ID)
	assert.Nil(t, msg.Conversation.WaitingSince)
	assert.Nil(t, msg.User.Name)
	require.NotNil(t, msg.User.Email)
	assert.Equal(t, "a@b.com", *msg.User.Email)
	require.NotNil(t, msg.Email.Subject)
	assert.Equal(t, "Hi", *msg.Email.Subject)
	assert.Nil(t, msg.Source.Name)
}

func TestCanonicalizeIsTotal(t *testing.T) {
	payloads := []string{
		`{}`,
		`{"conversation": "not an object"}`,
		`{"conversation": {"recipient": 42}}`,
		`{"id": 123, "target": {"data": ["not", "an", "object"]}}`,
		`{"source": {"data": []}}`,
		`{"source": {"data": {"name": "wrong shape"}}}`,
		`{"conversation": {"waiting_since": "not a number"}}`,
	}

	for _, payload := range payloads {
		msg := Canonicalize(decodePayload(t, payload))
		// Mistyped or missing paths degrade to nil, never panic.
		assert.Nil(t, msg.ID, payload)
		assert.Nil(t, msg.User.Email, payload)
		assert.Nil(t, msg.Email.Subject, payload)
		assert.Nil(t, msg.Source.Name, payload)
		assert.Nil(t, msg.Conversation.WaitingSince, payload)
	}
}

func TestCanonicalizeDoesNotMutateInput(t *testing.T) {
	raw := decodePayload(t, `{"id": "x", "extra": {"deep": [1, 2, 3]}}`)
	before, err := json.Marshal(raw)
	require.NoError(t, err)

	first := Canonicalize(raw)
	second := Canonicalize(raw)

	after, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
	assert.Equal(t, first, second)
}

func TestCanonicalRecordRoundTripsWithNullLeaves(t *testing.T) {
	msg := Canonicalize(map[string]any{})
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	// Every leaf is serialized as an explicit null, not omitted.
	assert.JSONEq(t, `{
		"id": null,
		"conversation": {"id": null, "waiting_since": null},
		"user": {"name": null, "email": null},
		"email": {"subject": null, "text": null},
		"source": {"name": null}
	}`, string(data))
}
