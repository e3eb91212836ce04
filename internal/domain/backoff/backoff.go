// Package backoff decides how long the listener waits before reconnecting.
package backoff

import (
	"time"

	cbackoff "github.com/cenkalti/backoff/v5"
)

// Defaults for the reconnect policy.
const (
	DefaultBase            = 5 * time.Second
	DefaultMax             = 60 * time.Second
	DefaultBlockedCooldown = 300 * time.Second
)

// Policy is a reconnect wait policy: generic failures double from the base up
// to the cap with no jitter; a blocked or rate-limited failure waits a fixed
// cooldown and restarts the doubling from the base.
// It is not safe for concurrent use.
type Policy struct {
	exp     *cbackoff.ExponentialBackOff
	blocked time.Duration
	last    time.Duration
}

// Option configures a Policy.
type Option func(*Policy)

// WithBase sets the first generic wait.
func WithBase(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.exp.InitialInterval = d
		}
	}
}

// WithMax caps generic waits.
func WithMax(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.exp.MaxInterval = d
		}
	}
}

// WithBlockedCooldown sets the fixed wait after a blocked failure.
func WithBlockedCooldown(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.blocked = d
		}
	}
}

// NewPolicy creates a reconnect policy.
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{
		exp: &cbackoff.ExponentialBackOff{
			InitialInterval:     DefaultBase,
			RandomizationFactor: 0,
			Multiplier:          2,
			MaxInterval:         DefaultMax,
		},
		blocked: DefaultBlockedCooldown,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.exp.MaxInterval < p.exp.InitialInterval {
		p.exp.MaxInterval = p.exp.InitialInterval
	}
	p.exp.Reset()
	return p
}

// Next returns the wait before the next connection attempt.
func (p *Policy) Next(blocked bool) time.Duration {
	if blocked {
		p.exp.Reset()
		p.last = p.blocked
		return p.last
	}
	p.last = p.exp.NextBackOff()
	return p.last
}

// Reset returns the tier to the base. Call it on every successful connection.
func (p *Policy) Reset() {
	p.exp.Reset()
	p.last = 0
}

// Last returns the most recent wait, zero after a reset.
func (p *Policy) Last() time.Duration { return p.last }
