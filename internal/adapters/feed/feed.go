// Package feed connects to a live channel's push-event feed.
package feed

import (
	"context"

	"github.com/okian/livebattle/internal/domain/model"
)

// Feed opens sessions against a channel.
type Feed interface {
	// Connect dials the feed. The session lives until Close is called or
	// ctx is canceled, whichever comes first.
	Connect(ctx context.Context, channel string) (Session, error)
}

// Session is one live connection.
type Session interface {
	// Next blocks until the next event arrives. It returns ErrDisconnected
	// (wrapped) when the connection ends, or ctx.Err() on cancellation.
	Next(ctx context.Context) (model.Event, error)

	// Close releases the connection. It is safe to call more than once.
	Close() error
}
