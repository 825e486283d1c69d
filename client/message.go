package client

import (
	"encoding/json"
	"fmt"

	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/ot"
)

// MessageType tags the wire envelope so every receiver dispatches on a closed
// set of payload kinds instead of sniffing a dynamic payload field.
type MessageType string

const (
	// MessageOperation carries a single document operation.
	MessageOperation MessageType = "operation"
	// MessageVersionSync carries an authoritative full-state snapshot.
	MessageVersionSync MessageType = "version_sync"
	// MessageAck echoes the ids of operations the server has applied.
	MessageAck MessageType = "ack"
)

// VersionSync is an authoritative {version, content} snapshot. A receiver
// adopts it wholesale only when the version is strictly newer than its own;
// this is the one recovery path from queue-based divergence.
type VersionSync struct {
	Version int      `json:"version"`
	Content []string `json:"content"`
}

// Message is the tagged-union envelope exchanged between replicas. Exactly
// one payload field is set, selected by Type.
type Message struct {
	Type      MessageType   `json:"type"`
	DocID     string        `json:"docId,omitempty"`
	Operation *ot.Operation `json:"operation,omitempty"`
	Sync      *VersionSync  `json:"sync,omitempty"`
	AckIDs    []string      `json:"ackIds,omitempty"`
}

// Encode serializes the envelope.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeMessage parses and validates an envelope. The payload required by the
// tag must be present; anything else is rejected so malformed traffic is
// dropped at the boundary without touching document state.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	switch m.Type {
	case MessageOperation:
		if m.Operation == nil {
			return Message{}, fmt.Errorf("operation message without operation payload")
		}
	case MessageVersionSync:
		if m.Sync == nil {
			return Message{}, fmt.Errorf("version_sync message without sync payload")
		}
	case MessageAck:
		if len(m.AckIDs) == 0 {
			return Message{}, fmt.Errorf("ack message without ids")
		}
	default:
		return Message{}, fmt.Errorf("unknown message type %q", m.Type)
	}
	return m, nil
}
