package feed

import (
	"net/http"
	"time"
)

// Option configures a WebSocketFeed.
type Option func(*WebSocketFeed)

// WithHandshakeTimeout bounds the websocket handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(f *WebSocketFeed) {
		if d > 0 {
			f.dialer.HandshakeTimeout = d
		}
	}
}

// WithHeader adds a header sent with every handshake.
func WithHeader(key, value string) Option {
	return func(f *WebSocketFeed) {
		f.header.Add(key, value)
	}
}

// WithClock replaces time.Now for event receive timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *WebSocketFeed) {
		if now != nil {
			f.now = now
		}
	}
}

// WithReadLimit caps the size of a single feed message.
func WithReadLimit(n int64) Option {
	return func(f *WebSocketFeed) {
		if n > 0 {
			f.readLimit = n
		}
	}
}

func defaultHeader() http.Header {
	h := http.Header{}
	h.Set("User-Agent", "livebattle-listener")
	return h
}
