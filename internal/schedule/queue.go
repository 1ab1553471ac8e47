package schedule

import (
	"container/heap"
	"context"
	"sync"
)

// A Queue is an unbounded min-heap of Tasks ordered by due time. It is safe
// for use by multiple producers and consumers.
type Queue struct {
	mu    sync.Mutex
	tasks tasks

	// ready holds a token while a blocked Take may have work to claim.
	ready chan struct{}

	// observe, if set, is called with the new length under mu whenever the
	// Queue changes size.
	observe func(n int)
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Put inserts t. It never blocks and wakes one goroutine blocked in Take.
func (q *Queue) Put(t *Task) {
	q.mu.Lock()
	heap.Push(&q.tasks, t)
	q.observeLocked()
	q.mu.Unlock()

	q.signal()
}

// Take removes and returns the Task with the earliest due time, blocking
// until one is available or ctx is canceled.
func (q *Queue) Take(ctx context.Context) (*Task, error) {
	for {
		q.mu.Lock()
		if len(q.tasks) > 0 {
			t := heap.Pop(&q.tasks).(*Task)
			more := len(q.tasks) > 0
			q.observeLocked()
			q.mu.Unlock()

			// Put coalesces signals, so pass the token on to another taker.
			if more {
				q.signal()
			}
			return t, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.ready:
		}
	}
}

// Len returns the number of pending Tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain removes and returns every pending Task in due time order.
func (q *Queue) Drain() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*Task, 0, len(q.tasks))
	for len(q.tasks) > 0 {
		out = append(out, heap.Pop(&q.tasks).(*Task))
	}
	q.observeLocked()
	return out
}

func (q *Queue) observeLocked() {
	if q.observe != nil {
		q.observe(len(q.tasks))
	}
}

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// tasks implements heap.Interface.
type tasks []*Task

var _ heap.Interface = &tasks{}

func (pq tasks) Len() int           { return len(pq) }
func (pq tasks) Less(i, j int) bool { return pq[i].due.Before(pq[j].due) }
func (pq tasks) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }
func (pq *tasks) Push(x any)        { *pq = append(*pq, x.(*Task)) }
func (pq *tasks) Pop() (item any) {
	n := len(*pq)
	item = (*pq)[n-1]
	(*pq)[n-1] = nil
	*pq = (*pq)[:n-1]
	return item
}
