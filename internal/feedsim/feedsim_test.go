package feedsim_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/livebattle/internal/adapters/feed"
	"github.com/okian/livebattle/internal/domain/dedupe"
	"github.com/okian/livebattle/internal/domain/model"
	"github.com/okian/livebattle/internal/feedsim"
	"github.com/okian/livebattle/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestParseScript(t *testing.T) {
	convey.Convey("Given a JSON-lines script", t, func() {
		script := `
# warm up
{"type":"connect"}
{"type":"comment","data":{"id":"c1","comment":"!battle"}}

{"type":"gift","data":{"id":"g1","gift":{"name":"Rose","diamond_count":1}}}
`
		convey.Convey("When it is parsed", func() {
			frames, err := feedsim.ParseScript(strings.NewReader(script))

			convey.Convey("Then comments and blanks are skipped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(frames, convey.ShouldHaveLength, 3)
				convey.So(frames[1].Type, convey.ShouldEqual, "comment")
				convey.So(string(frames[1].Data), convey.ShouldContainSubstring, "!battle")
			})
		})

		convey.Convey("When a line is malformed", func() {
			_, err := feedsim.ParseScript(strings.NewReader("{\"type\":\"gift\"}\n{nope"))

			convey.Convey("Then the line number is reported", func() {
				convey.So(errors.Is(err, feedsim.ErrScript), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "line 2")
			})
		})

		convey.Convey("When a frame has no type", func() {
			_, err := feedsim.ParseScript(strings.NewReader(`{"data":{}}`))
			convey.So(errors.Is(err, feedsim.ErrScript), convey.ShouldBeTrue)
		})
	})
}

func TestGenerate(t *testing.T) {
	convey.Convey("Given a generated battle", t, func() {
		frames := feedsim.Generate(10, "alice", "bob")

		convey.Convey("Then it imports slots, starts, scores and ends", func() {
			var kinds []model.Kind
			for _, f := range frames {
				kinds = append(kinds, model.ParseKind(f.Type))
			}
			convey.So(kinds[0], convey.ShouldEqual, model.KindConnect)
			convey.So(string(frames[1].Data), convey.ShouldContainSubstring, "!slots alice|bob")
			convey.So(string(frames[2].Data), convey.ShouldContainSubstring, "!battle")
			convey.So(string(frames[len(frames)-1].Data), convey.ShouldContainSubstring, "!end")

			gifts, tallies := 0, 0
			for _, k := range kinds {
				switch k {
				case model.KindGift:
					gifts++
				case model.KindArmies:
					tallies++
				}
			}
			convey.So(gifts, convey.ShouldEqual, 10)
			convey.So(tallies, convey.ShouldEqual, 2)
		})

		convey.Convey("And every frame has a distinct dedupe key", func() {
			seen := map[string]bool{}
			for _, f := range frames {
				key := dedupe.Key(model.NewEvent(f.Type, f.Data, time.Now()))
				if key == "" {
					continue
				}
				convey.So(seen[key], convey.ShouldBeFalse)
				seen[key] = true
			}
		})
	})
}

func TestServerReplay(t *testing.T) {
	convey.Convey("Given a simulator serving a short script", t, func() {
		frames := []feedsim.Frame{
			{Type: "comment", Data: []byte(`{"id":"c1","comment":"!battle"}`)},
			{Type: "gift", Data: []byte(`{"id":"g1","gift":{"name":"Rose","diamond_count":2},"to_user":{"nickname":"bob"}}`)},
		}
		srv := httptest.NewServer(feedsim.NewServer(frames, &feedsim.Config{Interval: time.Millisecond, RejectN: 1}))
		defer srv.Close()

		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
		f := feed.NewWebSocketFeed(wsURL)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		convey.Convey("When the listener's feed connects", func() {
			_, err := f.Connect(ctx, "zerokomodo")

			convey.Convey("Then the first handshake is rate limited", func() {
				convey.So(errors.Is(err, feed.ErrRateLimited), convey.ShouldBeTrue)
				convey.So(feed.IsBlocked(err), convey.ShouldBeTrue)
			})

			convey.Convey("And the retry receives the script in order", func() {
				sess, err := f.Connect(ctx, "zerokomodo")
				convey.So(err, convey.ShouldBeNil)
				defer sess.Close()

				first, err := sess.Next(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(first.Kind, convey.ShouldEqual, model.KindComment)
				convey.So(first.Text(), convey.ShouldEqual, "!battle")

				second, err := sess.Next(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(second.Kind, convey.ShouldEqual, model.KindGift)
				convey.So(second.Recipient(), convey.ShouldEqual, "bob")
			})
		})
	})

	convey.Convey("Given a simulator configured to block", t, func() {
		srv := httptest.NewServer(feedsim.NewServer(nil, &feedsim.Config{RejectN: 5, RejectWith: http.StatusForbidden}))
		defer srv.Close()

		convey.Convey("Then handshakes fail as blocked", func() {
			_, err := feed.NewWebSocketFeed("ws"+strings.TrimPrefix(srv.URL, "http")).Connect(context.Background(), "x")
			convey.So(errors.Is(err, feed.ErrBlocked), convey.ShouldBeTrue)
		})
	})
}
