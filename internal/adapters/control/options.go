package control

import (
	"net/http"
	"time"

	"github.com/okian/livebattle/pkg/logger"
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the fixed per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBattleMode sets the mode sent with every battle start.
func WithBattleMode(mode string) Option {
	return func(c *Client) {
		c.mode = mode
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
