// Package feedsim serves a local websocket event feed that replays a script
// of battle events, for exercising the listener without the platform.
package feedsim

import "time"

// Config holds configuration for the simulator.
type Config struct {
	Addr       string        // listen address
	Script     string        // JSON-lines script path; empty generates one
	Generate   int           // number of gifts in a generated script
	SlotOne    string        // first performer name used by the generator
	SlotTwo    string        // second performer name used by the generator
	Interval   time.Duration // delay between frames
	Loop       bool          // replay the script until the client leaves
	RejectN    int           // reject the first N handshakes
	RejectWith int           // HTTP status used for rejected handshakes
}
