package feedsim

import "os"

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Battle Feed Simulator
=====================

Serves a websocket event feed the listener can connect to, replaying a
scripted battle.

Usage:
  go run ./cmd/feedsim [options]

Options:
  -addr string
        Listen address (default "127.0.0.1:21213")
  -script string
        JSON-lines script, one {"type":...,"data":{...}} frame per line
        (default: generate a battle)
  -gifts int
        Gifts in a generated battle (default 20)
  -one string / -two string
        Performer names for a generated battle
  -interval duration
        Delay between frames (default 500ms)
  -loop
        Replay the script until the client disconnects
  -reject int
        Reject the first N handshakes, to exercise reconnect backoff
  -reject-status int
        Status for rejected handshakes (default 429)
  -help
        Show this help message

Examples:
  # Replay a generated battle against a local listener
  go run ./cmd/feedsim -gifts 50 -one alice -two bob

  # Force the listener into its blocked cooldown
  go run ./cmd/feedsim -reject 1 -reject-status 403
`)
}
