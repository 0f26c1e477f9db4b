package server

import (
	"sync"
	"time"
)

type Entry struct {
	ConnectionId string
	Name         string
	JoinTime     time.Time
}

// Queue is the FIFO of humans waiting for a room.
type Queue struct {
	mu           sync.Mutex
	entries      []Entry
	backfillWait time.Duration
}

func NewQueue(backfillWait time.Duration) *Queue {
	return &Queue{
		entries:      make([]Entry, 0),
		backfillWait: backfillWait,
	}
}

// Enqueue appends e unless its connection is already waiting. It returns
// the queue depth after the call.
func (q *Queue) Enqueue(e Entry) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, queued := range q.entries {
		if queued.ConnectionId == e.ConnectionId {
			return len(q.entries), false
		}
	}
	q.entries = append(q.entries, e)
	return len(q.entries), true
}

// Dequeue removes connId if present. Unknown ids are ignored.
func (q *Queue) Dequeue(connId string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, queued := range q.entries {
		if queued.ConnectionId == connId {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (q *Queue) Waiting() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Promote pops the next group ready for a room. A full group of four
// leaves in arrival order; otherwise, once the head has waited out the
// backfill threshold, the whole queue leaves and backfill is true.
func (q *Queue) Promote(now time.Time) (group []Entry, backfill bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch {
	case len(q.entries) >= SeatsPerRoom:
		group = make([]Entry, SeatsPerRoom)
		copy(group, q.entries[:SeatsPerRoom])
		q.entries = append(q.entries[:0], q.entries[SeatsPerRoom:]...)
		return group, false
	case len(q.entries) > 0 && now.Sub(q.entries[0].JoinTime) >= q.backfillWait:
		group = q.entries
		q.entries = make([]Entry, 0)
		return group, true
	}
	return nil, false
}
