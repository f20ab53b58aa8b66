package queue

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/leonardotrapani/hyprsubs/internal/task"
)

// ErrClosed is returned by Pop once the queue has been closed.
var ErrClosed = errors.New("queue closed")

// Queue is a FIFO of translation tasks for one channel. It is safe for one
// producer and one consumer goroutine.
//
// A positive capacity bounds the queue: pushing onto a full queue drops the
// oldest task, which is only acceptable for disposable fragment work.
type Queue struct {
	name     string
	capacity int

	mu     sync.Mutex
	items  []*task.Task
	closed bool

	ready chan struct{}
	done  chan struct{}
}

// New creates a queue. capacity <= 0 means unbounded.
func New(name string, capacity int) *Queue {
	return &Queue{
		name:     name,
		capacity: capacity,
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Name returns the queue name used in log lines.
func (q *Queue) Name() string {
	return q.name
}

// Push appends t. It returns the task that was dropped to make room, if any.
// Pushing onto a closed queue is a no-op.
func (q *Queue) Push(t *task.Task) (dropped *task.Task) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		log.Printf("Queue %s: closed, discarding %s", q.name, t)
		return nil
	}
	if q.capacity > 0 && len(q.items) >= q.capacity {
		dropped = q.items[0]
		q.items[0] = nil
		q.items = q.items[1:]
	}
	q.items = append(q.items, t)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return dropped
}

// Pop removes the oldest task, waiting up to timeout for one to arrive.
// It returns (nil, nil) when the wait times out, ErrClosed once the queue is
// closed, and ctx.Err() on cancellation. timeout <= 0 waits indefinitely.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*task.Task, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		if t, err := q.tryPop(); t != nil || err != nil {
			return t, err
		}

		select {
		case <-q.ready:
		case <-q.done:
			return nil, ErrClosed
		case <-expired:
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *Queue) tryPop() (*task.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, ErrClosed
	}
	if len(q.items) == 0 {
		return nil, nil
	}
	t := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return t, nil
}

// Clear discards every task that has not been taken yet and returns how many
// were discarded.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	q.items = nil
	return n
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close discards queued tasks and wakes any waiting consumer. It is safe to
// call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.items = nil
	close(q.done)
}
