package battle_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/livebattle/internal/domain/battle"
	"github.com/okian/livebattle/internal/domain/model"
)

func TestGiftValue(t *testing.T) {
	cases := []struct {
		name      string
		repeat    int64
		hasRepeat bool
		unit      int64
		hasUnit   bool
		want      int64
		wantOK    bool
	}{
		{"both present", 3, true, 5, true, 15, true},
		{"unit only", 0, false, 5, true, 5, true},
		{"repeat only", 3, true, 0, false, 0, false},
		{"neither", 0, false, 0, false, 0, false},
		{"zero unit", 3, true, 0, true, 0, false},
		{"product wraps to a small positive", 1<<62 + 1, true, 4, true, 0, false},
		{"product wraps negative", math.MaxInt64, true, 2, true, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := battle.GiftValue(c.repeat, c.hasRepeat, c.unit, c.hasUnit)
			if got != c.want || ok != c.wantOK {
				t.Errorf("GiftValue() = (%d, %v), want (%d, %v)", got, ok, c.want, c.wantOK)
			}
		})
	}
}

func TestGiftFromEvent(t *testing.T) {
	ev := model.NewEvent("GiftEvent", []byte(`{
		"gift": {"name": "Rose", "diamond_count": 5},
		"repeatCount": 3,
		"to_user": {"nickname": "@Bob"}
	}`), time.Now())

	g := battle.GiftFromEvent(ev)
	if g.Name != "Rose" || g.Recipient != "@Bob" {
		t.Fatalf("unexpected gift fields: %+v", g)
	}
	if v, ok := g.Value(); !ok || v != 15 {
		t.Fatalf("Value() = (%d, %v), want (15, true)", v, ok)
	}

	plain := battle.GiftFromEvent(model.NewEvent("gift", []byte(`{"gift":{"name":"Whistle"}}`), time.Now()))
	if _, ok := plain.Value(); ok {
		t.Fatalf("non-monetary gift should have no value")
	}
}
