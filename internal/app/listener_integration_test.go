package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/livebattle/internal/adapters/control"
	"github.com/okian/livebattle/internal/adapters/mq/queue"
	"github.com/okian/livebattle/internal/adapters/mq/worker"
	service "github.com/okian/livebattle/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

type apiCall struct {
	path string
	body map[string]any
}

// battleAPI is a stand-in Battle Control API that records calls in order.
type battleAPI struct {
	mu        sync.Mutex
	calls     []apiCall
	failScore bool
}

func (a *battleAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	call := apiCall{path: r.Method + " " + r.URL.Path}
	_ = json.NewDecoder(r.Body).Decode(&call.body)
	a.mu.Lock()
	a.calls = append(a.calls, call)
	fail := a.failScore
	a.mu.Unlock()

	switch {
	case r.URL.Path == "/state":
		_, _ = io.WriteString(w, `{"slot_one":"Alice","slot_two":"Bob","scores":{}}`)
	case fail && r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/score/"):
		w.WriteHeader(http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (a *battleAPI) paths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.calls))
	for i, c := range a.calls {
		out[i] = c.path
	}
	return out
}

func TestListenerEndToEnd(t *testing.T) {
	Convey("Given a listener wired to the real queue, dispatcher and control client", t, func() {
		api := &battleAPI{}
		srv := httptest.NewServer(api)
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		client := control.New(srv.URL, control.WithTimeout(time.Second), control.WithBattleMode("1v1"))
		d := worker.NewDispatcher(q, client)
		go d.Run(ctx)

		f := newStreamFeed()
		l := service.New(f, q, service.WithSyncTimeout(2*time.Second))
		go func() { _ = l.Run(ctx) }()
		now := time.Now()

		Convey("When a command, a gift and a tally flow through", func() {
			f.events <- event("comment", `{"id":"c1","comment":"!battle"}`, now)
			f.events <- event("gift", `{"id":"g1","gift":{"name":"Rose","diamond_count":5},"repeat_count":3,"to_user":{"nickname":"Bob"}}`, now)
			So(waitUntil(func() bool { return len(api.paths()) >= 3 }), ShouldBeTrue)
			f.events <- event("armies", `{"id":"t1","armies":[{"points":10},{"points":20}]}`, now)

			Convey("Then the API sees the calls in order", func() {
				So(waitUntil(func() bool { return len(api.paths()) >= 5 }), ShouldBeTrue)
				So(api.paths(), ShouldResemble, []string{
					"POST /battle/start",
					"GET /state",
					"POST /score/slot_two/add",
					"POST /score/slot_one/add",
					"POST /score/slot_two/add",
				})
				api.mu.Lock()
				So(api.calls[0].body["mode"], ShouldEqual, "1v1")
				So(api.calls[2].body["amount"], ShouldEqual, float64(15))
				So(api.calls[4].body["amount"], ShouldEqual, float64(5))
				api.mu.Unlock()
			})
		})

		Convey("When the API rejects score calls", func() {
			api.failScore = true
			f.events <- event("gift", `{"id":"g2","gift":{"name":"Rose","diamond_count":4},"to_user":{"nickname":"Bob"}}`, now)
			f.events <- event("comment", `{"id":"c2","comment":"!end"}`, now)

			Convey("Then local bookkeeping proceeds and later calls still go out", func() {
				So(waitUntil(func() bool { return len(api.paths()) >= 3 }), ShouldBeTrue)
				So(api.paths(), ShouldContain, "POST /battle/end")
				So(api.paths(), ShouldContain, "POST /score/slot_two/add")
				So(waitUntil(func() bool { return l.Snapshot().ScoreTwo == 4 }), ShouldBeTrue)
				So(l.Snapshot().Ledger["bob"], ShouldEqual, 4)
			})
		})

		Convey("When the operator imports slots", func() {
			f.events <- event("comment", `{"id":"c3","comment":"!slots Carol|Dave"}`, now)

			Convey("Then the names are posted as given", func() {
				So(waitUntil(func() bool { return len(api.paths()) >= 1 }), ShouldBeTrue)
				So(api.paths()[0], ShouldEqual, "POST /battle/slots/import")
				api.mu.Lock()
				So(api.calls[0].body["slot_one"], ShouldEqual, "Carol")
				So(api.calls[0].body["slot_two"], ShouldEqual, "Dave")
				api.mu.Unlock()
			})
		})
	})
}

func TestListenerKeepsReadingWhileTheAPIStalls(t *testing.T) {
	Convey("Given a Control API that never answers in time", t, func() {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		client := control.New(srv.URL, control.WithTimeout(500*time.Millisecond))
		d := worker.NewDispatcher(q, client)
		go d.Run(ctx)

		f := newStreamFeed()
		l := service.New(f, q, service.WithSyncTimeout(1500*time.Millisecond))
		go func() { _ = l.Run(ctx) }()
		now := time.Now()

		Convey("When a burst of gifts is followed by !battle", func() {
			began := time.Now()
			for i := range 4 {
				f.events <- event("gift", fmt.Sprintf(`{"id":"g%d","gift":{"name":"Rose","diamond_count":1},"to_user":{"nickname":"Performer Two"}}`, i), now)
			}
			f.events <- event("comment", `{"id":"c1","comment":"!battle"}`, now)

			Convey("Then the comment is read without waiting on the gifts' slot syncs", func() {
				So(waitUntil(func() bool { return l.Snapshot().Active }), ShouldBeTrue)
				So(time.Since(began), ShouldBeLessThan, 500*time.Millisecond)
			})
		})
	})
}

func waitUntil(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
