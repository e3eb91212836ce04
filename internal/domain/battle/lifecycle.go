// Package battle holds the local battle state: lifecycle gating, slot
// binding, tally baselines and the per-recipient gift ledger.
package battle

import "time"

// DefaultCooldown is the minimum gap between inferred transitions of the same kind.
const DefaultCooldown = 30 * time.Second

// Lifecycle tracks the last start and end transitions.
// It is not safe for concurrent use; the listener loop owns it.
type Lifecycle struct {
	cooldown  time.Duration
	lastStart time.Time
	lastEnd   time.Time
	active    bool
}

// NewLifecycle creates a lifecycle with the given cooldown.
func NewLifecycle(cooldown time.Duration) *Lifecycle {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Lifecycle{cooldown: cooldown}
}

// TryStart records a start at now and reports true, unless gated and a start
// already happened within the cooldown.
func (l *Lifecycle) TryStart(now time.Time, gated bool) bool {
	if gated && l.within(l.lastStart, now) {
		return false
	}
	l.lastStart = now
	l.active = true
	return true
}

// TryEnd records an end at now and reports true, unless gated and an end
// already happened within the cooldown.
func (l *Lifecycle) TryEnd(now time.Time, gated bool) bool {
	if gated && l.within(l.lastEnd, now) {
		return false
	}
	l.lastEnd = now
	l.active = false
	return true
}

// Active reports whether the most recent transition was a start.
func (l *Lifecycle) Active() bool { return l.active }

// NeedsImplicitStart reports whether a tally seen at now should open a battle:
// none is active and no start happened within the cooldown.
func (l *Lifecycle) NeedsImplicitStart(now time.Time) bool {
	return !l.Active() && !l.within(l.lastStart, now)
}

// LastStart returns the time of the last start, zero if none.
func (l *Lifecycle) LastStart() time.Time { return l.lastStart }

// LastEnd returns the time of the last end, zero if none.
func (l *Lifecycle) LastEnd() time.Time { return l.lastEnd }

// Cooldown returns the configured cooldown.
func (l *Lifecycle) Cooldown() time.Duration { return l.cooldown }

func (l *Lifecycle) within(last, now time.Time) bool {
	return !last.IsZero() && now.Sub(last) <= l.cooldown
}
