package feedsim

import "time"

// Defaults for the simulator.
const (
	DefaultAddr     = "127.0.0.1:21213"
	DefaultInterval = 500 * time.Millisecond
	DefaultGenerate = 20

	writeTimeout      = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)
