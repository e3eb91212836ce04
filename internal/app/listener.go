// Package service wires the feed, the event pipeline and the outbound command
// queue into one long-lived listener.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/livebattle/internal/adapters/feed"
	"github.com/okian/livebattle/internal/domain/backoff"
	"github.com/okian/livebattle/internal/domain/battle"
	"github.com/okian/livebattle/internal/domain/classify"
	"github.com/okian/livebattle/internal/domain/dedupe"
	"github.com/okian/livebattle/internal/domain/model"
	"github.com/okian/livebattle/pkg/logger"
	"github.com/okian/livebattle/pkg/metrics"
)

const (
	defaultSyncTimeout = 6 * time.Second

	// maxPendingGifts bounds gifts parked on a slot sync. It is also the
	// reply channel capacity, so the dispatcher never drops a reply for a
	// parked gift.
	maxPendingGifts = 256

	pendingCheckInterval = 250 * time.Millisecond
)

// pendingGift is a gift waiting for the slot sync requested with seq.
type pendingGift struct {
	seq      uint64
	ev       model.Event
	decision classify.Decision
	deadline time.Time
}

// read is one result of Session.Next.
type read struct {
	ev  model.Event
	err error
}

// Status is the connection state of the current live session.
type Status int32

// Connection states.
const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

// String returns the state name.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Commands is where the listener sends outbound control commands.
type Commands interface {
	Enqueue(ctx context.Context, c model.Command) bool
	Len() int
}

// Listener owns every piece of mutable pipeline state. Run and Handle must be
// called from a single goroutine; Status and Snapshot are safe from any.
type Listener struct {
	feed     feed.Feed
	commands Commands
	channel  string

	deduper    dedupe.Deduper
	classifier *classify.Classifier
	lifecycle  *battle.Lifecycle
	scoreboard *battle.Scoreboard
	policy     *backoff.Policy

	cooldown         time.Duration
	slotOne, slotTwo string
	syncTimeout      time.Duration
	now              func() time.Time
	sleep            func(ctx context.Context, d time.Duration) error

	// Slot syncs in flight. Replies arrive on synced in request order.
	synced  chan model.SlotNames
	pending []pendingGift
	syncSeq uint64

	// Loop-owned counters, published through the snapshot.
	sessionID  string
	events     int64
	duplicates int64
	reconnects int64

	status   atomic.Int32
	snapshot atomic.Pointer[Snapshot]

	logger logger.Logger
}

// New constructs a listener reading from f and sending commands to cmds.
func New(f feed.Feed, cmds Commands, opts ...Option) *Listener {
	l := &Listener{
		feed:        f,
		commands:    cmds,
		cooldown:    battle.DefaultCooldown,
		slotOne:     classify.DefaultSlotOne,
		slotTwo:     classify.DefaultSlotTwo,
		syncTimeout: defaultSyncTimeout,
		synced:      make(chan model.SlotNames, maxPendingGifts),
		now:         time.Now,
		sleep:       sleepContext,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.deduper == nil {
		l.deduper = dedupe.NewWindowDeduper(dedupe.WithClock(l.now))
	}
	if l.classifier == nil {
		l.classifier = classify.New(classify.WithDefaultSlots(l.slotOne, l.slotTwo))
	}
	if l.policy == nil {
		l.policy = backoff.NewPolicy()
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("listener")
	}
	l.lifecycle = battle.NewLifecycle(l.cooldown)
	l.scoreboard = battle.NewScoreboard(l.slotOne, l.slotTwo)

	l.publish()
	return l
}

// Run supervises the feed connection until ctx is canceled. Every failure,
// including an explicit disconnect, leads to a backoff wait and a reconnect.
// It returns nil on cancellation.
func (l *Listener) Run(ctx context.Context) error {
	l.logger.Info(ctx, "listener started", logger.String("channel", l.channel))
	defer l.setStatus(StatusDisconnected)

	for {
		err := l.serve(ctx)
		l.setStatus(StatusDisconnected)
		l.flushPending(ctx)
		if ctx.Err() != nil {
			l.logger.Info(context.Background(), "listener stopped")
			return nil
		}

		blocked := feed.IsBlocked(err)
		wait := l.policy.Next(blocked)
		reason := "generic"
		if blocked {
			reason = "blocked"
		}
		l.reconnects++
		metrics.RecordReconnect(reason, wait.Seconds())
		l.publish()
		l.logger.Warn(ctx, "feed connection lost",
			logger.Error(err),
			logger.String("reason", reason),
			logger.Duration("wait", wait),
		)

		if err := l.sleep(ctx, wait); err != nil {
			l.logger.Info(context.Background(), "listener stopped")
			return nil
		}
	}
}

// serve runs one live session and returns why it ended.
func (l *Listener) serve(ctx context.Context) error {
	l.setStatus(StatusConnecting)
	sess, err := l.feed.Connect(ctx, l.channel)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	sessCtx, cancel := context.WithCancel(ctx)
	reads := make(chan read)
	pumped := make(chan struct{})
	go pump(sessCtx, sess, reads, pumped)
	defer func() {
		cancel()
		_ = sess.Close()
		<-pumped
	}()

	ticker := time.NewTicker(pendingCheckInterval)
	defer ticker.Stop()

	l.policy.Reset()
	l.sessionID = uuid.NewString()
	l.setStatus(StatusConnected)
	l.logger.Info(ctx, "feed connected",
		logger.String("channel", l.channel),
		logger.String("session_id", l.sessionID),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-reads:
			if r.err != nil {
				if errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded) {
					return r.err
				}
				return fmt.Errorf("session %s: %w", l.sessionID, r.err)
			}
			l.Handle(ctx, r.ev)
			if r.ev.Kind == model.KindDisconnect {
				return fmt.Errorf("session %s: %w", l.sessionID, feed.ErrDisconnected)
			}
		case res := <-l.synced:
			l.onSynced(ctx, res)
			l.settleSynced(ctx)
			l.publish()
		case <-ticker.C:
			if l.expirePending(ctx) {
				l.publish()
			}
		}
	}
}

// pump reads the session until it fails or ctx is canceled. Reads run on
// their own goroutine so slot sync replies are applied while the feed is idle.
func pump(ctx context.Context, sess feed.Session, reads chan<- read, done chan<- struct{}) {
	defer close(done)
	for {
		ev, err := sess.Next(ctx)
		select {
		case reads <- read{ev: ev, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// Status returns the current connection state.
func (l *Listener) Status() Status {
	return Status(l.status.Load())
}

func (l *Listener) setStatus(s Status) {
	if Status(l.status.Swap(int32(s))) == s {
		return
	}
	metrics.UpdateConnectionState(int(s))
	l.publish()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
