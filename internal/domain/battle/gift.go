package battle

import "github.com/okian/livebattle/internal/domain/model"

// Gift is the scoring-relevant view of a gift event.
type Gift struct {
	Name      string
	Recipient string
	Repeat    int64
	HasRepeat bool
	Unit      int64
	HasUnit   bool
}

// GiftFromEvent reads a gift's fields through their aliases.
func GiftFromEvent(ev model.Event) Gift {
	g := Gift{Name: ev.GiftName(), Recipient: ev.Recipient()}
	g.Repeat, g.HasRepeat = ev.RepeatCount()
	g.Unit, g.HasUnit = ev.UnitValue()
	return g
}

// Value returns repeat*unit when both are present, unit when only it is
// present. It reports false when the gift has no positive monetary value.
func (g Gift) Value() (int64, bool) {
	return GiftValue(g.Repeat, g.HasRepeat, g.Unit, g.HasUnit)
}

// GiftValue computes a gift's total value from its optional parts.
func GiftValue(repeat int64, hasRepeat bool, unit int64, hasUnit bool) (int64, bool) {
	if !hasUnit {
		return 0, false
	}
	total := unit
	if hasRepeat {
		total = repeat * unit
		if repeat != 0 && total/repeat != unit {
			return 0, false // overflow
		}
	}
	if total <= 0 {
		return 0, false
	}
	return total, true
}
