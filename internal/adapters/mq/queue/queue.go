// Package queue holds outbound control commands between the listener loop
// and the dispatcher. Enqueue never blocks: a full queue drops the command.
package queue

import (
	"context"
	"sync"

	"github.com/okian/livebattle/internal/domain/model"
	"github.com/okian/livebattle/pkg/metrics"
)

const defaultCapacity = 1024

// Command is the payload type flowing through the queue.
type Command = model.Command

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a command. Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, c Command) bool

	// Dequeue returns the channel commands are delivered on, in enqueue
	// order. It is closed when the queue is closed and drained.
	Dequeue() <-chan Command

	// Len returns the current number of queued commands.
	Len() int

	// Close stops accepting commands. It is safe to call more than once.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	commands chan Command
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.commands = make(chan Command, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a command to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Command) bool { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		metrics.RecordQueueDropped()
		return false
	}

	select {
	case q.commands <- c:
		metrics.UpdateQueueSize(len(q.commands))
		return true
	default:
		metrics.RecordQueueDropped()
		return false
	}
}

// Dequeue returns the delivery channel.
func (q *InMemoryQueue) Dequeue() <-chan Command {
	return q.commands
}

// Len returns the current number of queued commands.
func (q *InMemoryQueue) Len() int {
	size := len(q.commands)
	metrics.UpdateQueueSize(size)
	return size
}

// Close stops accepting commands; queued ones can still be drained.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.commands)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
