package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/livebattle/internal/adapters/http/api"
	service "github.com/okian/livebattle/internal/app"
	"github.com/okian/livebattle/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

type mockListener struct {
	status service.Status
	snap   service.Snapshot
}

func (m *mockListener) Status() service.Status     { return m.status }
func (m *mockListener) Snapshot() service.Snapshot { return m.snap }

func newTestServer(deps api.Dependencies) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(mux)
	return httptest.NewServer(mux)
}

func TestReadyz(t *testing.T) {
	Convey("Given the HTTP surface", t, func() {
		deps := &mockListener{status: service.StatusConnecting}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When the feed is not connected", func() {
			resp, err := http.Get(srv.URL + "/readyz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then readiness fails with the state name", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
				var body map[string]string
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["status"], ShouldEqual, "connecting")
			})
		})

		Convey("When the feed is connected", func() {
			deps.status = service.StatusConnected
			resp, err := http.Get(srv.URL + "/readyz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then readiness passes", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When readiness is probed with POST", func() {
			resp, err := http.Post(srv.URL+"/readyz", "application/json", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestStats(t *testing.T) {
	Convey("Given a listener snapshot", t, func() {
		deps := &mockListener{snap: service.Snapshot{
			Status:   "connected",
			Channel:  "zerokomodo",
			SlotOne:  "Alice",
			SlotTwo:  "Bob",
			ScoreTwo: 15,
			Ledger:   map[string]int64{"bob": 15},
			Events:   3,
		}}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When GET /stats is called", func() {
			resp, err := http.Get(srv.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the snapshot is returned as JSON", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldStartWith, "application/json")

				var body map[string]any
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["channel"], ShouldEqual, "zerokomodo")
				So(body["slotTwo"], ShouldEqual, "Bob")
				So(body["scoreTwo"], ShouldEqual, float64(15))
				So(body["ledger"].(map[string]any)["bob"], ShouldEqual, float64(15))
				So(body, ShouldNotContainKey, "lastStart")
			})
		})

		Convey("When /stats is called with DELETE", func() {
			req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/stats", nil)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then an error body is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
				var body map[string]string
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["code"], ShouldEqual, "method_not_allowed")
			})
		})
	})
}

func TestHealthz(t *testing.T) {
	Convey("Given recorded listener metrics", t, func() {
		metrics.RecordEventReceived("gift")
		srv := newTestServer(&mockListener{})
		defer srv.Close()

		Convey("When /healthz is scraped", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			data, err := io.ReadAll(resp.Body)
			So(err, ShouldBeNil)
			text := string(data)

			Convey("Then the Prometheus exposition includes listener series", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(text, ShouldContainSubstring, "livebattle_listener_events_received_total")
				So(text, ShouldContainSubstring, "livebattle_listener_system_goroutine_count")
			})

			Convey("And previous requests were counted by the middleware", func() {
				resp2, err := http.Get(srv.URL + "/healthz")
				So(err, ShouldBeNil)
				data2, _ := io.ReadAll(resp2.Body)
				resp2.Body.Close()
				So(strings.Contains(string(data2), `livebattle_listener_http_requests_total{endpoint="healthz"`), ShouldBeTrue)
			})
		})
	})
}
