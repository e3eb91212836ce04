package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/livebattle/internal/adapters/feed"
	"github.com/okian/livebattle/internal/domain/model"
)

// recordingCommands captures enqueued commands and answers slot syncs inline,
// unless silent.
type recordingCommands struct {
	mu       sync.Mutex
	cmds     []model.Command
	one, two string
	syncOK   bool
	full     bool
	silent   bool
}

func (r *recordingCommands) Enqueue(_ context.Context, c model.Command) bool { //nolint:gocritic // hugeParam: mirrors the queue signature
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return false
	}
	if c.Kind == model.CommandSyncSlots && c.Reply != nil && !r.silent {
		c.Reply <- model.SlotNames{Seq: c.Seq, One: r.one, Two: r.two, OK: r.syncOK}
	}
	c.Reply = nil
	r.cmds = append(r.cmds, c)
	return true
}

func (r *recordingCommands) Len() int { return 0 }

func (r *recordingCommands) ofKind(kind model.CommandKind) []model.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Command
	for _, c := range r.cmds {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func (r *recordingCommands) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = nil
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// attempt scripts one Connect call: either a dial error, or a session that
// yields events and then ends with end (nil end blocks until canceled).
type attempt struct {
	dialErr error
	events  []model.Event
	end     error
}

type fakeFeed struct {
	mu       sync.Mutex
	attempts []attempt
	calls    int
	channels []string
}

func (f *fakeFeed) Connect(ctx context.Context, channel string) (feed.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channel)
	if f.calls >= len(f.attempts) {
		f.calls++
		return nil, errors.New("dial tcp: connection refused")
	}
	a := f.attempts[f.calls]
	f.calls++
	if a.dialErr != nil {
		return nil, a.dialErr
	}
	return &fakeSession{events: a.events, end: a.end}, nil
}

func (f *fakeFeed) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSession struct {
	events []model.Event
	end    error
	closed bool
}

func (s *fakeSession) Next(ctx context.Context) (model.Event, error) {
	if len(s.events) > 0 {
		ev := s.events[0]
		s.events = s.events[1:]
		return ev, nil
	}
	if s.end != nil {
		return model.Event{}, s.end
	}
	<-ctx.Done()
	return model.Event{}, ctx.Err()
}

func (s *fakeSession) Close() error {
	s.closed = true
	return errors.New("already closed")
}

// streamFeed hands out one session that yields events pushed on events.
type streamFeed struct {
	events chan model.Event
}

func newStreamFeed() *streamFeed {
	return &streamFeed{events: make(chan model.Event)}
}

func (f *streamFeed) Connect(context.Context, string) (feed.Session, error) {
	return &streamSession{events: f.events}, nil
}

type streamSession struct {
	events <-chan model.Event
}

func (s *streamSession) Next(ctx context.Context) (model.Event, error) {
	select {
	case ev := <-s.events:
		return ev, nil
	case <-ctx.Done():
		return model.Event{}, ctx.Err()
	}
}

func (s *streamSession) Close() error { return nil }

// recordingSleeper records waits and cancels the run after limit of them.
type recordingSleeper struct {
	mu     sync.Mutex
	waits  []time.Duration
	limit  int
	cancel context.CancelFunc
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	n := len(s.waits)
	s.mu.Unlock()
	if n >= s.limit {
		s.cancel()
		return ctx.Err()
	}
	return nil
}

func (s *recordingSleeper) Waits() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}

func event(typ, raw string, at time.Time) model.Event {
	return model.NewEvent(typ, []byte(raw), at)
}
