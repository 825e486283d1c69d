package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/ot"
)

func TestMessageRoundTrip(t *testing.T) {
	op := ot.Operation{
		ID:        "op-1",
		Type:      ot.Insert,
		Position:  ot.Position{Line: 2, Column: 7},
		Content:   "hi",
		UserID:    "alice",
		Timestamp: 42,
		Version:   3,
	}
	msg := Message{Type: MessageOperation, DocID: "doc-1", Operation: &op}

	data, err := msg.Encode()
	require.NoError(t, err)

	got, err := DecodeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestMessageWireFieldNames(t *testing.T) {
	op := ot.Operation{
		ID:       "op-1",
		Type:     ot.Delete,
		Position: ot.Position{Line: 0, Column: 6},
		Length:   1,
		UserID:   "bob",
	}
	data, err := Message{Type: MessageOperation, Operation: &op}.Encode()
	require.NoError(t, err)

	// Serialized field names are fixed for interop with other editors.
	s := string(data)
	for _, field := range []string{`"id"`, `"type":"delete"`, `"position"`, `"line"`, `"column"`, `"length"`, `"userId"`, `"timestamp"`, `"version"`} {
		assert.Contains(t, s, field)
	}
}

func TestDecodeMessageRejectsMismatchedPayload(t *testing.T) {
	cases := []string{
		`{"type":"operation"}`,
		`{"type":"version_sync"}`,
		`{"type":"ack"}`,
		`{"type":"presence","operation":{"id":"x"}}`,
		`not json`,
	}
	for _, raw := range cases {
		_, err := DecodeMessage([]byte(raw))
		assert.Error(t, err, "input %q", raw)
	}
}

func TestDecodeVersionSync(t *testing.T) {
	raw := `{"type":"version_sync","docId":"d","sync":{"version":5,"content":["a","b"]}}`
	msg, err := DecodeMessage([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, MessageVersionSync, msg.Type)
	assert.Equal(t, 5, msg.Sync.Version)
	assert.Equal(t, []string{"a", "b"}, msg.Sync.Content)
}
