// Package queue tracks locally issued operations that have been broadcast
// but not yet acknowledged, and reconciles incoming remote operations against
// them. The local replica may be ahead of what the remote author saw; the
// queue transforms the remote operation into one that is valid against the
// current local state before it is applied.
package queue

import (
	"time"

	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/ot"
)

// DefaultTTL is the grace window after which a pending operation is presumed
// acknowledged and dropped. This is a heuristic, not a guarantee; explicit
// acknowledgment via Ack is preferred when the server provides it.
const DefaultTTL = 10 * time.Second

type entry struct {
	op      ot.Operation
	addedAt time.Time
}

// Queue is a per-client ordered sequence of pending operations, keyed by
// operation id and ordered by timestamp. It is not safe for concurrent use;
// the owning engine serializes access.
type Queue struct {
	ttl     time.Duration
	entries []entry
}

// New creates a queue whose entries expire after ttl. A non-positive ttl
// falls back to DefaultTTL.
func New(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl}
}

// Add records a locally broadcast operation, keeping the queue ordered by
// timestamp. Re-adding an id already present is ignored.
func (q *Queue) Add(op ot.Operation) {
	if q.contains(op.ID) {
		return
	}
	e := entry{op: op, addedAt: time.Now()}
	i := len(q.entries)
	for i > 0 && q.entries[i-1].op.Timestamp > op.Timestamp {
		i--
	}
	q.entries = append(q.entries, entry{})
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = e
}

// Ack removes the entry with the given operation id, reporting whether it
// was present. Acknowledged operations no longer take part in reconciliation.
func (q *Queue) Ack(id string) bool {
	for i, e := range q.entries {
		if e.op.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Expire drops entries older than the grace window and returns how many were
// removed. Callers drive this from a timer; expiry is time-based only and
// carries no causal guarantee.
func (q *Queue) Expire(now time.Time) int {
	kept := q.entries[:0]
	for _, e := range q.entries {
		if now.Sub(e.addedAt) < q.ttl {
			kept = append(kept, e)
		}
	}
	n := len(q.entries) - len(kept)
	q.entries = kept
	return n
}

// Reconcile transforms an incoming remote operation against every pending
// local operation whose timestamp precedes it, oldest causal context first,
// and returns the operation that is valid against the current local state.
// Only the remote-side output of each pairwise transform is carried forward;
// the pending operations themselves are left untouched.
func (q *Queue) Reconcile(remote ot.Operation) ot.Operation {
	for _, e := range q.entries {
		if e.op.Timestamp >= remote.Timestamp {
			break
		}
		_, remote = ot.Transform(e.op, remote)
	}
	return remote
}

// Len returns the number of pending operations.
func (q *Queue) Len() int {
	return len(q.entries)
}

// Pending returns the pending operations in timestamp order.
func (q *Queue) Pending() []ot.Operation {
	ops := make([]ot.Operation, len(q.entries))
	for i, e := range q.entries {
		ops[i] = e.op
	}
	return ops
}

func (q *Queue) contains(id string) bool {
	for _, e := range q.entries {
		if e.op.ID == id {
			return true
		}
	}
	return false
}
