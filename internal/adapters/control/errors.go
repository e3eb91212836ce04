package control

import "errors"

// Sentinel errors for Battle Control API calls. They never leave this
// package's public methods; they classify failures in logs.
var (
	ErrStatus  = errors.New("control api returned non-2xx")
	ErrRequest = errors.New("control api request failed")
)
