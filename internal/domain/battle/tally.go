package battle

import (
	"github.com/tidwall/gjson"

	"github.com/okian/livebattle/internal/domain/model"
)

// Tally is a cumulative per-side score report. Has* is false for sides the
// event did not carry.
type Tally struct {
	One, Two       int64
	HasOne, HasTwo bool
}

//nolint:gochecknoglobals // alias tables
var (
	armyListPaths  = []string{"armies", "army_list", "armyList", "battle_armies", "battleArmies", "scores"}
	armyScorePaths = []string{"points", "score", "total", "value"}
)

// ParseTally reads the ordered per-side scores: the first entry is slot_one,
// the second slot_two. Lists may be nested one level inside an object, or be
// an object whose values are the sides. A zero or missing score means the
// side is absent.
func ParseTally(p model.Payload) Tally {
	var t Tally
	sides := armySides(p.Get(armyListPaths...))
	if len(sides) > 0 {
		t.One, t.HasOne = sideScore(sides[0])
	}
	if len(sides) > 1 {
		t.Two, t.HasTwo = sideScore(sides[1])
	}
	return t
}

func armySides(r gjson.Result) []gjson.Result {
	switch {
	case r.IsArray():
		return r.Array()
	case r.IsObject():
		for _, path := range armyListPaths {
			if inner := r.Get(path); inner.IsArray() {
				return inner.Array()
			}
		}
		var out []gjson.Result
		r.ForEach(func(_, v gjson.Result) bool {
			out = append(out, v)
			return true
		})
		return out
	}
	return nil
}

func sideScore(side gjson.Result) (int64, bool) {
	if side.IsObject() {
		for _, path := range armyScorePaths {
			if v, ok := model.AsInt(side.Get(path)); ok && v != 0 {
				return v, true
			}
		}
		return 0, false
	}
	if v, ok := model.AsInt(side); ok && v != 0 {
		return v, true
	}
	return 0, false
}
