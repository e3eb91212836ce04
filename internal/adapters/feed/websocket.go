package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/livebattle/internal/domain/model"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultReadLimit        = 1 << 20
)

// envelope is one feed frame. The bridge has used "type", "event" and
// "name" for the kind and "data" or "payload" for the body.
type envelope struct {
	Type    string          `json:"type"`
	Event   string          `json:"event"`
	Name    string          `json:"name"`
	Data    json.RawMessage `json:"data"`
	Payload json.RawMessage `json:"payload"`
}

func (e envelope) kind() string {
	switch {
	case e.Type != "":
		return e.Type
	case e.Event != "":
		return e.Event
	default:
		return e.Name
	}
}

func (e envelope) body() json.RawMessage {
	if len(e.Data) > 0 {
		return e.Data
	}
	return e.Payload
}

// WebSocketFeed reads events from a websocket bridge that relays a channel's
// push feed as JSON text frames.
type WebSocketFeed struct {
	url       string
	dialer    websocket.Dialer
	header    http.Header
	now       func() time.Time
	readLimit int64
}

// NewWebSocketFeed creates a feed for the bridge at rawURL.
func NewWebSocketFeed(rawURL string, opts ...Option) *WebSocketFeed {
	f := &WebSocketFeed{
		url: rawURL,
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultHandshakeTimeout,
		},
		header:    defaultHeader(),
		now:       time.Now,
		readLimit: defaultReadLimit,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Connect dials the bridge for channel.
func (f *WebSocketFeed) Connect(ctx context.Context, channel string) (Session, error) {
	u, err := url.Parse(f.url)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	q := u.Query()
	q.Set("channel", channel)
	u.RawQuery = q.Encode()

	conn, resp, err := f.dialer.DialContext(ctx, u.String(), f.header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusTooManyRequests:
				return nil, fmt.Errorf("%w: handshake status %d", ErrRateLimited, resp.StatusCode)
			case http.StatusForbidden:
				return nil, fmt.Errorf("%w: handshake status %d", ErrBlocked, resp.StatusCode)
			}
		}
		return nil, fmt.Errorf("dial feed: %w", err)
	}
	conn.SetReadLimit(f.readLimit)

	s := &wsSession{conn: conn, now: f.now, done: make(chan struct{})}
	go s.closeOnCancel(ctx)
	return s, nil
}

type wsSession struct {
	conn      *websocket.Conn
	now       func() time.Time
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// closeOnCancel unblocks a pending read when the connect context ends.
func (s *wsSession) closeOnCancel(ctx context.Context) {
	select {
	case <-ctx.Done():
		_ = s.Close()
	case <-s.done:
	}
}

// Next returns the next well-formed event. Frames that are not JSON objects
// are skipped.
func (s *wsSession) Next(ctx context.Context) (model.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return model.Event{}, err
		}
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return model.Event{}, ctxErr
			}
			return model.Event{}, fmt.Errorf("%w: %w", ErrDisconnected, err)
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		kind := env.kind()
		if strings.EqualFold(kind, "error") {
			return model.Event{}, remoteError(env.body())
		}
		return model.NewEvent(kind, env.body(), s.now()), nil
	}
}

// Close closes the connection once; later calls return the first result.
func (s *wsSession) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func remoteError(body json.RawMessage) error {
	p := model.NewPayload(body)
	msg := p.String("message", "error", "reason", "code")
	if msg == "" {
		var s string
		if json.Unmarshal(body, &s) == nil {
			msg = s
		}
	}
	if msg == "" {
		return ErrRemote
	}
	return fmt.Errorf("%w: %s", ErrRemote, msg)
}

