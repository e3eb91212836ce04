package feed

import (
	"errors"
	"strings"
)

// Sentinel error kinds returned by feeds and sessions.
var (
	// ErrBlocked means the platform refused this client or device.
	ErrBlocked = errors.New("feed blocked")

	// ErrRateLimited means the platform is throttling connection attempts.
	ErrRateLimited = errors.New("feed rate limited")

	// ErrDisconnected means an established session ended.
	ErrDisconnected = errors.New("feed disconnected")

	// ErrRemote carries an error reported in-band by the feed.
	ErrRemote = errors.New("feed error")
)

// blockSignatures are message fragments that identify a blocked or
// rate-limited failure when no sentinel is available.
var blockSignatures = []string{ //nolint:gochecknoglobals // lookup table
	"device blocked", "device_blocked", "deviceblocked",
	"rate limit", "ratelimit", "rate-limit", "rate_limit",
	"too many requests", "429",
}

// IsBlocked reports whether err should force the long reconnect cooldown.
func IsBlocked(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrBlocked) || errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range blockSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
