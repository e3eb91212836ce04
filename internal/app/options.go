package service

import (
	"context"
	"time"

	"github.com/okian/livebattle/internal/domain/backoff"
	"github.com/okian/livebattle/internal/domain/classify"
	"github.com/okian/livebattle/internal/domain/dedupe"
	"github.com/okian/livebattle/pkg/logger"
)

// Option applies a configuration option to the Listener.
type Option func(*Listener)

// WithChannel sets the channel the feed subscribes to.
func WithChannel(channel string) Option {
	return func(l *Listener) {
		if channel != "" {
			l.channel = channel
		}
	}
}

// WithDeduper replaces the default 30s dedupe window.
func WithDeduper(d dedupe.Deduper) Option {
	return func(l *Listener) {
		if d != nil {
			l.deduper = d
		}
	}
}

// WithClassifier replaces the standard rule table.
func WithClassifier(c *classify.Classifier) Option {
	return func(l *Listener) {
		if c != nil {
			l.classifier = c
		}
	}
}

// WithBackoff sets the reconnect policy.
func WithBackoff(p *backoff.Policy) Option {
	return func(l *Listener) {
		if p != nil {
			l.policy = p
		}
	}
}

// WithCooldown sets the lifecycle cooldown for inferred transitions.
func WithCooldown(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.cooldown = d
		}
	}
}

// WithSlots sets the slot names used until the first successful sync.
func WithSlots(one, two string) Option {
	return func(l *Listener) {
		l.slotOne, l.slotTwo = one, two
	}
}

// WithSyncTimeout bounds how long a gift waits for its slot sync reply
// before it is scored against the last known binding.
func WithSyncTimeout(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.syncTimeout = d
		}
	}
}

// WithClock sets the time source used for cooldowns.
func WithClock(now func() time.Time) Option {
	return func(l *Listener) {
		if now != nil {
			l.now = now
		}
	}
}

// WithSleeper replaces the backoff sleep. The sleeper must return ctx.Err()
// promptly when ctx is canceled.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Listener) {
		if sleep != nil {
			l.sleep = sleep
		}
	}
}

// WithLogger sets a custom logger for the listener.
func WithLogger(log logger.Logger) Option {
	return func(l *Listener) {
		if log != nil {
			l.logger = log
		}
	}
}
