package model

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Payload is a read-only view over an event's JSON body. Every accessor
// takes a list of alias paths (gjson syntax, dot for nesting) and returns the
// first one that is present, so callers never assume a rigid schema.
type Payload struct {
	raw string
}

// NewPayload wraps raw JSON. Invalid JSON yields an empty payload.
func NewPayload(raw []byte) Payload {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return Payload{}
	}
	return Payload{raw: string(raw)}
}

// Raw returns the underlying JSON, or "" for an empty payload.
func (p Payload) Raw() string { return p.raw }

// Empty reports whether the payload carries no data.
func (p Payload) Empty() bool { return p.raw == "" }

// Get returns the first present value among paths.
func (p Payload) Get(paths ...string) gjson.Result {
	if p.raw == "" {
		return gjson.Result{}
	}
	for _, path := range paths {
		if r := gjson.Get(p.raw, path); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

// String returns the first non-blank scalar among paths, trimmed.
func (p Payload) String(paths ...string) string {
	if p.raw == "" {
		return ""
	}
	for _, path := range paths {
		r := gjson.Get(p.raw, path)
		if !r.Exists() || r.IsObject() || r.IsArray() {
			continue
		}
		if s := strings.TrimSpace(r.String()); s != "" && r.Type != gjson.Null {
			return s
		}
	}
	return ""
}

// Int returns the first value among paths that reads as an integer. Numeric
// strings are accepted; fractions are truncated.
func (p Payload) Int(paths ...string) (int64, bool) {
	if p.raw == "" {
		return 0, false
	}
	for _, path := range paths {
		if v, ok := AsInt(gjson.Get(p.raw, path)); ok {
			return v, true
		}
	}
	return 0, false
}

// Bool returns the first boolean among paths.
func (p Payload) Bool(paths ...string) (bool, bool) {
	if p.raw == "" {
		return false, false
	}
	for _, path := range paths {
		r := gjson.Get(p.raw, path)
		switch r.Type {
		case gjson.True:
			return true, true
		case gjson.False:
			return false, true
		}
	}
	return false, false
}

// Array returns the elements of the first array among paths.
func (p Payload) Array(paths ...string) []gjson.Result {
	if p.raw == "" {
		return nil
	}
	for _, path := range paths {
		if r := gjson.Get(p.raw, path); r.IsArray() {
			return r.Array()
		}
	}
	return nil
}

// AsInt reads a gjson value as an integer, accepting numeric strings.
func AsInt(r gjson.Result) (int64, bool) {
	switch r.Type {
	case gjson.Number:
		if math.IsNaN(r.Num) || math.IsInf(r.Num, 0) {
			return 0, false
		}
		return r.Int(), true
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if s == "" {
			return 0, false
		}
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f), true
		}
	}
	return 0, false
}
