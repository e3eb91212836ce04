// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Kind is the closed set of feed event kinds the listener understands.
type Kind int

// Event kinds.
const (
	KindUnknown Kind = iota
	KindConnect
	KindDisconnect
	KindBattle    // explicit battle notice (start or end)
	KindArmies    // cumulative per-side tally
	KindGift      // virtual item
	KindComment   // chat text
	KindLike      // like / heartbeat
	KindLinkState // co-host link layer change
	KindControl   // room control action
)

var kindNames = [...]string{ //nolint:gochecknoglobals // lookup table
	KindUnknown:    "unknown",
	KindConnect:    "connect",
	KindDisconnect: "disconnect",
	KindBattle:     "battle",
	KindArmies:     "armies",
	KindGift:       "gift",
	KindComment:    "comment",
	KindLike:       "like",
	KindLinkState:  "link_state",
	KindControl:    "control",
}

// String returns the canonical lowercase name used in keys, logs and metrics.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// kindAliases maps squashed platform type names to kinds.
var kindAliases = map[string]Kind{ //nolint:gochecknoglobals // lookup table
	"connect":       KindConnect,
	"connected":     KindConnect,
	"disconnect":    KindDisconnect,
	"disconnected":  KindDisconnect,
	"battle":        KindBattle,
	"linkmicbattle": KindBattle,
	"armies":        KindArmies,
	"army":          KindArmies,
	"linkmicarmies": KindArmies,
	"tally":         KindArmies,
	"gift":          KindGift,
	"comment":       KindComment,
	"chat":          KindComment,
	"like":          KindLike,
	"heartbeat":     KindLike,
	"linkstate":     KindLinkState,
	"linklayer":     KindLinkState,
	"linkmicmethod": KindLinkState,
	"linkmic":       KindLinkState,
	"link":          KindLinkState,
	"control":       KindControl,
	"roomcontrol":   KindControl,
}

// ParseKind maps a platform event type name onto a Kind. Matching ignores
// case, separators, a "webcast" prefix and a "message"/"event" suffix, so
// "gift", "GiftEvent" and "WebcastGiftMessage" are all KindGift.
func ParseKind(name string) Kind {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer("_", "", "-", "", " ", "", ".", "").Replace(s)
	s = strings.TrimPrefix(s, "webcast")
	s = strings.TrimSuffix(s, "message")
	s = strings.TrimSuffix(s, "event")
	if k, ok := kindAliases[s]; ok {
		return k
	}
	return KindUnknown
}

// Event is one inbound feed record: a kind tag plus a defensively accessed payload.
type Event struct {
	Kind     Kind
	Type     string    // raw type name as delivered
	Payload  Payload   // kind-specific fields, possibly aliased or absent
	Received time.Time // local receive time
}

// NewEvent builds an Event from a raw type name and JSON payload.
func NewEvent(typ string, raw []byte, received time.Time) Event {
	return Event{
		Kind:     ParseKind(typ),
		Type:     typ,
		Payload:  NewPayload(raw),
		Received: received,
	}
}
