package dedupe

import "time"

// Option applies a configuration option to the window deduper.
type Option func(*windowDeduper)

// WithWindow sets how long a key suppresses repeats. Non-positive values are ignored.
func WithWindow(window time.Duration) Option {
	return func(d *windowDeduper) {
		if window > 0 {
			d.window = window
		}
	}
}

// WithMaxSize caps the number of keys held; the oldest key is evicted first.
// If maxSize <= 0 the window is the only bound.
func WithMaxSize(maxSize int) Option {
	return func(d *windowDeduper) {
		d.maxSize = maxSize
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *windowDeduper) {
		if now != nil {
			d.now = now
		}
	}
}
