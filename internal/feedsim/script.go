package feedsim

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrScript marks a malformed script line.
var ErrScript = errors.New("invalid script")

// Frame is one envelope written to the websocket, in the feed's wire format.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ParseScript reads JSON lines of frames. Blank lines and lines starting
// with '#' are skipped.
func ParseScript(r io.Reader) ([]Frame, error) {
	var frames []Frame
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var f Frame
		if err := json.Unmarshal([]byte(text), &f); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrScript, line, err)
		}
		if f.Type == "" {
			return nil, fmt.Errorf("%w: line %d: missing type", ErrScript, line)
		}
		frames = append(frames, f)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}
	return frames, nil
}

// LoadScript reads a script file.
func LoadScript(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseScript(f)
}

// frame marshals data into a Frame. Marshal cannot fail for the map
// literals the generator builds.
func frame(typ string, data map[string]any) Frame {
	raw, _ := json.Marshal(data)
	return Frame{Type: typ, Data: raw}
}
