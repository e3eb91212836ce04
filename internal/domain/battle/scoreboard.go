package battle

import (
	"strings"

	"github.com/okian/livebattle/internal/domain/model"
)

// unknownRecipient is the ledger key for gifts without a recipient.
const unknownRecipient = "unknown"

// Delta is a non-negative score increment for one slot.
type Delta struct {
	Slot   model.Slot
	Amount int64
}

// Scoreboard owns the slot binding, per-slot cumulative scores and the
// per-recipient ledger. It is not safe for concurrent use.
type Scoreboard struct {
	one, two   string
	cumulative map[model.Slot]int64
	ledger     map[string]int64
}

// NewScoreboard creates a scoreboard bound to the given slot names.
func NewScoreboard(one, two string) *Scoreboard {
	s := &Scoreboard{}
	s.Bind(one, two)
	s.Reset()
	return s
}

// Bind refreshes the slot names. A blank name keeps the previous side.
func (s *Scoreboard) Bind(one, two string) {
	if v := strings.TrimSpace(one); v != "" {
		s.one = v
	}
	if v := strings.TrimSpace(two); v != "" {
		s.two = v
	}
}

// Binding returns the current slot names.
func (s *Scoreboard) Binding() (string, string) { return s.one, s.two }

// Reset zeroes the per-slot cumulatives and the ledger.
func (s *Scoreboard) Reset() {
	s.cumulative = map[model.Slot]int64{model.SlotOne: 0, model.SlotTwo: 0}
	s.ledger = make(map[string]int64)
}

// Score returns the local cumulative score of slot.
func (s *Scoreboard) Score(slot model.Slot) int64 { return s.cumulative[slot] }

// Ledger returns a copy of the per-recipient totals.
func (s *Scoreboard) Ledger() map[string]int64 {
	out := make(map[string]int64, len(s.ledger))
	for k, v := range s.ledger {
		out[k] = v
	}
	return out
}

// Resolve maps a gift recipient onto a slot: exact name match first
// (slot_one, then slot_two), then substring containment in either direction
// (slot_one, then slot_two). Anything else falls back to slot_one.
func (s *Scoreboard) Resolve(recipient string) model.Slot {
	r := normalize(recipient)
	one, two := normalize(s.one), normalize(s.two)

	if r == "" {
		return model.SlotOne
	}
	switch {
	case one != "" && r == one:
		return model.SlotOne
	case two != "" && r == two:
		return model.SlotTwo
	case contains(r, one):
		return model.SlotOne
	case contains(r, two):
		return model.SlotTwo
	}
	// Unmatched donors all land on slot_one. This can misattribute value.
	return model.SlotOne
}

// ApplyTally turns cumulative per-side scores into deltas. Each side's delta
// is max(0, new - previous); missing sides are left alone and zero deltas are
// dropped. The baseline always moves to the reported value.
func (s *Scoreboard) ApplyTally(t Tally) []Delta {
	var out []Delta
	apply := func(slot model.Slot, v int64, ok bool) {
		if !ok {
			return
		}
		d := max(0, v-s.cumulative[slot])
		s.cumulative[slot] = v
		if d > 0 {
			out = append(out, Delta{Slot: slot, Amount: d})
		}
	}
	apply(model.SlotOne, t.One, t.HasOne)
	apply(model.SlotTwo, t.Two, t.HasTwo)
	return out
}

// ApplyGift credits value to the recipient's slot and ledger entry and
// returns the slot. The slot cumulative moves too, so a later tally that
// already includes this gift does not count it twice.
func (s *Scoreboard) ApplyGift(recipient string, value int64) model.Slot {
	slot := s.Resolve(recipient)
	if value <= 0 {
		return slot
	}
	s.cumulative[slot] += value

	key := normalize(recipient)
	if key == "" {
		key = unknownRecipient
	}
	s.ledger[key] += value
	return slot
}

func normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSpace(strings.TrimLeft(n, "@"))
}

func contains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
