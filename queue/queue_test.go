package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/ot"
)

func pendingInsert(id string, ts int64, idx int, content string) ot.Operation {
	return ot.Operation{
		ID:        id,
		Type:      ot.Insert,
		Position:  ot.FromIndex(idx),
		Content:   content,
		UserID:    "local",
		Timestamp: ts,
	}
}

func remoteInsert(id string, ts int64, idx int, content string) ot.Operation {
	op := pendingInsert(id, ts, idx, content)
	op.UserID = "remote"
	return op
}

func TestAddKeepsTimestampOrder(t *testing.T) {
	q := New(time.Minute)
	q.Add(pendingInsert("c", 30, 0, "c"))
	q.Add(pendingInsert("a", 10, 0, "a"))
	q.Add(pendingInsert("b", 20, 0, "b"))

	ops := q.Pending()
	require.Len(t, ops, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{ops[0].ID, ops[1].ID, ops[2].ID})
}

func TestAddIgnoresDuplicateIDs(t *testing.T) {
	q := New(time.Minute)
	q.Add(pendingInsert("a", 10, 0, "a"))
	q.Add(pendingInsert("a", 99, 5, "dup"))
	assert.Equal(t, 1, q.Len())
}

func TestAckRemovesEntry(t *testing.T) {
	q := New(time.Minute)
	q.Add(pendingInsert("a", 10, 0, "a"))
	q.Add(pendingInsert("b", 20, 0, "b"))

	assert.True(t, q.Ack("a"))
	assert.False(t, q.Ack("a"))
	assert.Equal(t, 1, q.Len())

	// Acked entries no longer shift incoming operations.
	got := q.Reconcile(remoteInsert("r", 30, 0, "R"))
	assert.Equal(t, 1, got.Position.Index()) // shifted only by "b"
}

func TestExpireDropsOldEntries(t *testing.T) {
	q := New(50 * time.Millisecond)
	q.Add(pendingInsert("a", 10, 0, "a"))
	q.Add(pendingInsert("b", 20, 0, "b"))

	assert.Equal(t, 0, q.Expire(time.Now()))
	assert.Equal(t, 2, q.Expire(time.Now().Add(time.Second)))
	assert.Equal(t, 0, q.Len())
}

func TestReconcileTransformsAgainstOlderPendingOnly(t *testing.T) {
	q := New(time.Minute)
	q.Add(pendingInsert("p1", 10, 0, "aa")) // width 2
	q.Add(pendingInsert("p2", 30, 0, "bb")) // newer than the remote op

	// Remote op at timestamp 20: only p1 precedes it, so it shifts by 2,
	// not 4.
	got := q.Reconcile(remoteInsert("r", 20, 3, "R"))
	assert.Equal(t, 5, got.Position.Index())
}

func TestReconcileCarriesRemoteSideThroughChain(t *testing.T) {
	q := New(time.Minute)
	q.Add(pendingInsert("p1", 10, 0, "aa"))
	q.Add(pendingInsert("p2", 20, 10, "bbb"))

	got := q.Reconcile(remoteInsert("r", 30, 20, "R"))
	// Shifted by both pending inserts, oldest first.
	assert.Equal(t, 25, got.Position.Index())

	// The pending operations themselves are never mutated by this pass.
	ops := q.Pending()
	assert.Equal(t, 0, ops[0].Position.Index())
	assert.Equal(t, 10, ops[1].Position.Index())
}

func TestReconcileWithEmptyQueueIsIdentity(t *testing.T) {
	q := New(time.Minute)
	op := remoteInsert("r", 20, 7, "R")
	assert.Equal(t, op, q.Reconcile(op))
}

func TestReconcileDeleteAgainstPendingInsert(t *testing.T) {
	q := New(time.Minute)
	q.Add(pendingInsert("p1", 10, 5, "X"))

	// Remote backward delete of the character ending at index 6, generated
	// before the local insert existed: it must shift right past the insert.
	remote := ot.Operation{
		ID:        "r",
		Type:      ot.Delete,
		Position:  ot.FromIndex(6),
		Length:    1,
		UserID:    "remote",
		Timestamp: 20,
	}
	got := q.Reconcile(remote)
	assert.Equal(t, 7, got.Position.Index())
	assert.Equal(t, 1, got.Length)
}
