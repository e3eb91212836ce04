// Package dedupe suppresses repeated feed events inside a sliding time window.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultWindow is how long a key suppresses repeats.
const DefaultWindow = 30 * time.Second

// Deduper records idempotency keys for a bounded time.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen within the window and
	// records it if not. Returns true only for a present, unexpired key.
	// An empty key is never a duplicate and is never recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key, allowing it to be processed again.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// node is one entry in the first-seen ordered list.
type node struct {
	key    string
	seenAt time.Time
	prev   *node
	next   *node
}

func (n *node) reset() {
	n.key = ""
	n.seenAt = time.Time{}
	n.prev = nil
	n.next = nil
}

// windowDeduper keeps keys in first-seen order so expiry only ever inspects
// the head of the list. Expired entries are purged lazily on each lookup.
type windowDeduper struct {
	mu       sync.Mutex
	seen     map[string]*node
	head     *node // oldest
	tail     *node // newest
	window   time.Duration
	maxSize  int // 0 or negative = unbounded
	now      func() time.Time
	size     atomic.Int64
	nodePool sync.Pool
}

// NewWindowDeduper creates an in-memory deduper with a sliding expiry window.
func NewWindowDeduper(opts ...Option) Deduper {
	d := &windowDeduper{
		window: DefaultWindow,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]*node)
	d.nodePool = sync.Pool{
		New: func() any {
			return &node{}
		},
	}
	return d
}

// SeenAndRecord atomically checks if key was seen and records it if not.
func (d *windowDeduper) SeenAndRecord(_ context.Context, key string) bool {
	if key == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.purgeExpired(now)

	if _, exists := d.seen[key]; exists {
		return true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.remove(d.head)
	}

	n := d.nodePool.Get().(*node)
	n.key = key
	n.seenAt = now
	d.pushBack(n)
	d.seen[key] = n
	d.size.Add(1)
	return false
}

// Unrecord removes key from the window.
func (d *windowDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, exists := d.seen[key]; exists {
		d.remove(n)
	}
}

// Size returns the number of keys currently held.
func (d *windowDeduper) Size() int64 {
	return d.size.Load()
}

// purgeExpired drops entries older than the window.
// Must be called with d.mu held.
func (d *windowDeduper) purgeExpired(now time.Time) {
	for d.head != nil && now.Sub(d.head.seenAt) > d.window {
		d.remove(d.head)
	}
}

// Must be called with d.mu held.
func (d *windowDeduper) pushBack(n *node) {
	n.prev = d.tail
	n.next = nil
	if d.tail != nil {
		d.tail.next = n
	} else {
		d.head = n
	}
	d.tail = n
}

// Must be called with d.mu held.
func (d *windowDeduper) remove(n *node) {
	if n == nil {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		d.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		d.tail = n.prev
	}
	delete(d.seen, n.key)
	n.reset()
	d.nodePool.Put(n)
	d.size.Add(-1)
}
