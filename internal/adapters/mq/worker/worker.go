// Package worker runs the dispatcher that executes queued control commands.
// A single worker keeps commands in enqueue order, so a start always reaches
// the Battle Control API before the score deltas that follow it.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/livebattle/internal/adapters/mq/queue"
	"github.com/okian/livebattle/internal/domain/model"
	"github.com/okian/livebattle/pkg/logger"
	"github.com/okian/livebattle/pkg/metrics"
)

// Executor performs control commands. Failures are reported as false.
type Executor interface {
	TriggerStart(ctx context.Context, reason string) bool
	TriggerEnd(ctx context.Context, reason string) bool
	ImportSlots(ctx context.Context, one, two string) bool
	AddScore(ctx context.Context, slot model.Slot, amount int64) bool
	SyncSlots(ctx context.Context) (string, string, bool)
}

// Queue defines how the worker receives commands.
type Queue interface {
	Dequeue() <-chan queue.Command
}

// Worker executes commands until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is called
	// or the queue is closed and drained.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the loop to exit.
	Shutdown(ctx context.Context) error
}

// Dispatcher implements Worker for control commands.
type Dispatcher struct {
	queue    Queue
	executor Executor
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewDispatcher creates a dispatcher reading from q and calling exec.
func NewDispatcher(q Queue, exec Executor, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queue:    q,
		executor: exec,
		name:     "dispatcher",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.Get().Named(d.name)
	}

	return d
}

// Run starts the dispatch loop.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	commands := d.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.shutdown:
			return
		case cmd, ok := <-commands:
			if !ok {
				return
			}
			d.execute(ctx, cmd)
		}
	}
}

// Shutdown gracefully stops the dispatcher.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	select {
	case <-d.shutdown:
	default:
		close(d.shutdown)
	}

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when the loop has exited.
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

func (d *Dispatcher) execute(ctx context.Context, cmd queue.Command) { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	var ok bool

	switch cmd.Kind {
	case model.CommandStart:
		ok = d.executor.TriggerStart(ctx, cmd.Reason)
	case model.CommandEnd:
		ok = d.executor.TriggerEnd(ctx, cmd.Reason)
	case model.CommandImportSlots:
		ok = d.executor.ImportSlots(ctx, cmd.One, cmd.Two)
	case model.CommandAddScore:
		ok = d.executor.AddScore(ctx, cmd.Slot, cmd.Amount)
	case model.CommandSyncSlots:
		res := model.SlotNames{Seq: cmd.Seq}
		res.One, res.Two, res.OK = d.executor.SyncSlots(ctx)
		ok = res.OK
		if cmd.Reply != nil {
			select {
			case cmd.Reply <- res:
			default:
				d.logger.Warn(ctx, "sync reply dropped", logger.String("reason", "reply channel full"))
			}
		}
	default:
		d.logger.Warn(ctx, "unknown command", logger.Int("kind", int(cmd.Kind)))
		return
	}

	metrics.UpdateQueueSize(len(d.queue.Dequeue()))
	d.logger.Debug(ctx, "command executed",
		logger.String("command", cmd.Kind.String()),
		logger.Bool("ok", ok),
		logger.Duration("elapsed", time.Since(start)),
	)
}
