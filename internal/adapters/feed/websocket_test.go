package feed_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/livebattle/internal/adapters/feed"
	"github.com/okian/livebattle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var upgrader = websocket.Upgrader{} //nolint:gochecknoglobals // test helper

// bridge starts a websocket server that sends frames then waits for the client to go away.
func bridge(t *testing.T, frames ...string) (*httptest.Server, <-chan string) {
	t.Helper()
	channels := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		channels <- r.URL.Query().Get("channel")
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for _, f := range frames {
			if err := c.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, channels
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed"
}

func TestWebSocketFeedEvents(t *testing.T) {
	Convey("Given a bridge relaying mixed frames", t, func() {
		srv, channels := bridge(t,
			`{"type":"GiftEvent","data":{"gift":{"name":"Rose"}}}`,
			`not json`,
			`{"event":"comment","payload":{"comment":"hi"}}`,
			`{"name":"like","data":{}}`,
		)
		fixed := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
		f := feed.NewWebSocketFeed(wsURL(srv), feed.WithClock(func() time.Time { return fixed }))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s, err := f.Connect(ctx, "somehost")
		So(err, ShouldBeNil)
		defer s.Close()

		Convey("Then events arrive in order with malformed frames skipped", func() {
			So(<-channels, ShouldEqual, "somehost")

			ev, err := s.Next(ctx)
			So(err, ShouldBeNil)
			So(ev.Kind, ShouldEqual, model.KindGift)
			So(ev.GiftName(), ShouldEqual, "Rose")
			So(ev.Received, ShouldEqual, fixed)

			ev, err = s.Next(ctx)
			So(err, ShouldBeNil)
			So(ev.Kind, ShouldEqual, model.KindComment)
			So(ev.Text(), ShouldEqual, "hi")

			ev, err = s.Next(ctx)
			So(err, ShouldBeNil)
			So(ev.Kind, ShouldEqual, model.KindLike)
		})
	})
}

func TestWebSocketFeedErrors(t *testing.T) {
	Convey("Given a bridge that reports an in-band error", t, func() {
		srv, _ := bridge(t, `{"type":"error","data":{"message":"Device blocked by platform"}}`)
		f := feed.NewWebSocketFeed(wsURL(srv))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s, err := f.Connect(ctx, "somehost")
		So(err, ShouldBeNil)
		defer s.Close()

		_, err = s.Next(ctx)

		Convey("Then Next fails with a blocked remote error", func() {
			So(errors.Is(err, feed.ErrRemote), ShouldBeTrue)
			So(feed.IsBlocked(err), ShouldBeTrue)
		})
	})

	Convey("Given handshake rejections", t, func() {
		cases := []struct {
			status  int
			want    error
			blocked bool
		}{
			{http.StatusTooManyRequests, feed.ErrRateLimited, true},
			{http.StatusForbidden, feed.ErrBlocked, true},
			{http.StatusInternalServerError, nil, false},
		}

		for _, c := range cases {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", c.status)
			}))
			f := feed.NewWebSocketFeed(wsURL(srv))

			s, err := f.Connect(context.Background(), "somehost")
			srv.Close()

			So(s, ShouldBeNil)
			So(err, ShouldNotBeNil)
			if c.want != nil {
				So(errors.Is(err, c.want), ShouldBeTrue)
			}
			So(feed.IsBlocked(err), ShouldEqual, c.blocked)
		}
	})

	Convey("Given a bridge that drops the connection", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			_ = c.Close()
		}))
		defer srv.Close()
		f := feed.NewWebSocketFeed(wsURL(srv))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s, err := f.Connect(ctx, "somehost")
		So(err, ShouldBeNil)
		defer s.Close()

		_, err = s.Next(ctx)

		So(errors.Is(err, feed.ErrDisconnected), ShouldBeTrue)
		So(feed.IsBlocked(err), ShouldBeFalse)
	})

	Convey("Given an unreachable bridge", t, func() {
		f := feed.NewWebSocketFeed("ws://127.0.0.1:1/feed", feed.WithHandshakeTimeout(time.Second))

		_, err := f.Connect(context.Background(), "somehost")

		So(err, ShouldNotBeNil)
		So(feed.IsBlocked(err), ShouldBeFalse)
	})
}

func TestWebSocketFeedCancel(t *testing.T) {
	Convey("Given a connected session waiting for events", t, func() {
		srv, _ := bridge(t)
		f := feed.NewWebSocketFeed(wsURL(srv))
		ctx, cancel := context.WithCancel(context.Background())

		s, err := f.Connect(ctx, "somehost")
		So(err, ShouldBeNil)

		Convey("When the context is canceled", func() {
			go func() {
				time.Sleep(50 * time.Millisecond)
				cancel()
			}()

			start := time.Now()
			_, err := s.Next(ctx)

			Convey("Then the blocked read returns promptly with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(time.Since(start), ShouldBeLessThan, 2*time.Second)
				So(s.Close(), ShouldBeNil)
			})
		})
	})
}

func TestIsBlocked(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{feed.ErrBlocked, true},
		{feed.ErrRateLimited, true},
		{errors.New("DEVICE_BLOCKED"), true},
		{errors.New("you hit the rate limit"), true},
		{errors.New("HTTP 429 Too Many Requests"), true},
		{errors.New("connection reset by peer"), false},
		{feed.ErrDisconnected, false},
	}
	for _, c := range cases {
		if got := feed.IsBlocked(c.err); got != c.want {
			t.Errorf("IsBlocked(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
