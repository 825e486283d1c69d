// Package client implements the per-replica reconciliation engine: it turns
// local edits into broadcast operations, transforms incoming remote
// operations against the pending local ones before applying them, and
// adopts authoritative version snapshots.
package client

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/doc"
	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/ot"
	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/queue"
)

// Broadcaster sends a locally generated envelope to the other replicas.
// Implementations are the agent hub, the upstream server connection, or both.
type Broadcaster interface {
	Broadcast(msg Message) error
}

// Engine owns one replica of a document. All mutation runs under a single
// lock, mirroring the single-threaded event model of the editor: concurrency
// lives between replicas, not inside one.
type Engine struct {
	mu      sync.Mutex
	doc     *doc.Document
	pending *queue.Queue
	userID  string
	out     Broadcaster
	log     *logrus.Entry

	now    func() time.Time
	lastTS int64
}

// NewEngine creates an engine for the given document and user. out may be nil
// for a receive-only replica; log may be nil to use the standard logger.
func NewEngine(d *doc.Document, userID string, out Broadcaster, log *logrus.Entry) *Engine {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{
		doc:     d,
		pending: queue.New(queue.DefaultTTL),
		userID:  userID,
		out:     out,
		log:     log.WithField("user", userID),
		now:     time.Now,
	}
}

// ApplyLocalInsert applies a local text insertion, queues it as pending and
// broadcasts it. The returned operation carries a fresh id, the document
// version it was generated against and a monotonic timestamp.
func (e *Engine) ApplyLocalInsert(pos ot.Position, content string) ot.Operation {
	return e.applyLocal(ot.Operation{
		Type:     ot.Insert,
		Position: pos,
		Content:  content,
	})
}

// ApplyLocalDelete applies a local deletion of length characters ending at
// pos, queues it as pending and broadcasts it.
func (e *Engine) ApplyLocalDelete(pos ot.Position, length int) ot.Operation {
	return e.applyLocal(ot.Operation{
		Type:     ot.Delete,
		Position: pos,
		Length:   length,
	})
}

// ApplyLocalCursor broadcasts the user's cursor position. It advances the
// document version like any other applied operation but changes no text.
func (e *Engine) ApplyLocalCursor(pos ot.Position) ot.Operation {
	return e.applyLocal(ot.Operation{
		Type:     ot.Cursor,
		Position: pos,
	})
}

func (e *Engine) applyLocal(op ot.Operation) ot.Operation {
	e.mu.Lock()
	defer e.mu.Unlock()

	op.ID = uuid.NewString()
	op.UserID = e.userID
	op.Version = e.doc.Version
	op.Timestamp = e.nextTimestamp()

	e.doc.Apply(op)
	e.pending.Add(op)
	e.broadcast(Message{
		Type:      MessageOperation,
		DocID:     e.doc.ID,
		Operation: &op,
	})
	return op
}

// Receive dispatches one incoming envelope to the matching handler.
func (e *Engine) Receive(msg Message) {
	switch msg.Type {
	case MessageOperation:
		e.ReceiveRemoteOperation(*msg.Operation)
	case MessageVersionSync:
		e.ReceiveVersionSync(*msg.Sync)
	case MessageAck:
		e.ReceiveAck(msg.AckIDs)
	}
}

// ReceiveRemoteOperation reconciles a remote operation against the pending
// local ones and applies the result. Echoes of this replica's own operations
// and malformed operations are dropped; nothing here can fail in a way that
// mutates the document.
func (e *Engine) ReceiveRemoteOperation(op ot.Operation) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if op.UserID == e.userID {
		return false
	}
	if !op.Valid() {
		e.log.WithFields(logrus.Fields{"op": op.ID, "type": op.Type}).
			Warn("Dropping malformed remote operation")
		return false
	}
	transformed := e.pending.Reconcile(op)
	return e.doc.Apply(transformed)
}

// ReceiveVersionSync adopts an authoritative snapshot if and only if its
// version is strictly newer than the local one. Stale snapshots are ignored
// silently; a regression is not an error.
func (e *Engine) ReceiveVersionSync(s VersionSync) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s.Version <= e.doc.Version {
		return false
	}
	content := make([]string, len(s.Content))
	copy(content, s.Content)
	if len(content) == 0 {
		content = []string{""}
	}
	e.doc.Content = content
	e.doc.Version = s.Version
	e.doc.LastModified = e.now()
	e.log.WithField("version", s.Version).Info("Adopted version sync snapshot")
	return true
}

// ReceiveAck removes acknowledged operations from the pending queue.
func (e *Engine) ReceiveAck(ids []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range ids {
		e.pending.Ack(id)
	}
}

// ExpirePending prunes pending operations past the grace window and returns
// how many were dropped. The agent drives this from a ticker.
func (e *Engine) ExpirePending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Expire(e.now())
}

// PendingCount returns the number of unacknowledged local operations.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Len()
}

// Snapshot returns a deep copy of the current document state.
func (e *Engine) Snapshot() *doc.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

func (e *Engine) broadcast(msg Message) {
	if e.out == nil {
		return
	}
	if err := e.out.Broadcast(msg); err != nil {
		e.log.WithError(err).Error("Failed to broadcast local operation")
	}
}

// nextTimestamp returns wall-clock milliseconds bumped to stay strictly
// increasing within this replica.
func (e *Engine) nextTimestamp() int64 {
	ts := e.now().UnixMilli()
	if ts <= e.lastTS {
		ts = e.lastTS + 1
	}
	e.lastTS = ts
	return ts
}
