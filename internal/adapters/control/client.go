// Package control is the client side of the Battle Control API. Every call
// is bounded by a short timeout and reports failure as a boolean; errors are
// logged here and never handed back to the caller.
package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/livebattle/internal/domain/model"
	"github.com/okian/livebattle/pkg/logger"
	"github.com/okian/livebattle/pkg/metrics"
)

const (
	defaultTimeout  = 5 * time.Second
	maxResponseBody = 1 << 20
)

// Endpoint labels, also used as metric labels.
const (
	endpointStart  = "battle/start"
	endpointEnd    = "battle/end"
	endpointImport = "battle/slots/import"
	endpointScore  = "score/add"
	endpointState  = "state"
)

// Client calls the Battle Control API.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	mode    string
	logger  logger.Logger
}

// New creates a client for the API rooted at base, e.g. "http://127.0.0.1:8000".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(strings.TrimSpace(base), "/"),
		http:    &http.Client{},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("control")
	}
	return c
}

type startRequest struct {
	Mode string `json:"mode,omitempty"`
}

type slotsRequest struct {
	SlotOne string `json:"slot_one"`
	SlotTwo string `json:"slot_two"`
}

type scoreRequest struct {
	Amount int64 `json:"amount"`
}

// TriggerStart posts battle/start.
func (c *Client) TriggerStart(ctx context.Context, reason string) bool {
	ok := c.call(ctx, endpointStart, http.MethodPost, "battle/start", startRequest{Mode: c.mode}, nil)
	if ok {
		c.logger.Info(ctx, "battle start triggered", logger.String("reason", reason), logger.String("mode", c.mode))
	}
	return ok
}

// TriggerEnd posts battle/end.
func (c *Client) TriggerEnd(ctx context.Context, reason string) bool {
	ok := c.call(ctx, endpointEnd, http.MethodPost, "battle/end", struct{}{}, nil)
	if ok {
		c.logger.Info(ctx, "battle end triggered", logger.String("reason", reason))
	}
	return ok
}

// ImportSlots posts the two performer names.
func (c *Client) ImportSlots(ctx context.Context, one, two string) bool {
	ok := c.call(ctx, endpointImport, http.MethodPost, "battle/slots/import", slotsRequest{SlotOne: one, SlotTwo: two}, nil)
	if ok {
		c.logger.Info(ctx, "slots imported", logger.String("slot_one", one), logger.String("slot_two", two))
	}
	return ok
}

// AddScore adds amount to slot. Non-positive amounts are not sent.
func (c *Client) AddScore(ctx context.Context, slot model.Slot, amount int64) bool {
	if amount <= 0 {
		return true
	}
	ok := c.call(ctx, endpointScore, http.MethodPost, "score/"+string(slot)+"/add", scoreRequest{Amount: amount}, nil)
	if ok {
		c.logger.Debug(ctx, "score added", logger.String("slot", string(slot)), logger.Int64("amount", amount))
	}
	return ok
}

// SyncSlots pulls the current slot names. ok is false on any failure.
func (c *Client) SyncSlots(ctx context.Context) (string, string, bool) {
	var body []byte
	if !c.call(ctx, endpointState, http.MethodGet, "state", nil, &body) {
		return "", "", false
	}
	p := model.NewPayload(body)
	if p.Empty() {
		c.logger.Warn(ctx, "control api state is not json", logger.String("endpoint", endpointState))
		return "", "", false
	}
	return p.String("slot_one", "slotOne", "slots.slot_one"), p.String("slot_two", "slotTwo", "slots.slot_two"), true
}

// call performs one request and reports success. out, when set, receives the
// raw response body.
func (c *Client) call(ctx context.Context, endpoint, method, path string, in any, out *[]byte) bool {
	start := time.Now()
	err := c.do(ctx, method, path, in, out)
	metrics.RecordControlCall(endpoint, err == nil, float64(time.Since(start).Milliseconds()))
	if err != nil {
		c.logger.Error(ctx, "control api call failed",
			logger.String("endpoint", endpoint),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		return false
	}
	return true
}

func (c *Client) do(ctx context.Context, method, path string, in any, out *[]byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode: %w", ErrRequest, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+path, body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s: status %d", ErrStatus, method, path, resp.StatusCode)
	}
	if out != nil {
		*out = data
	}
	return nil
}
