package feedsim

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// giftCatalog is what generated viewers send: name and unit value.
var giftCatalog = []struct { //nolint:gochecknoglobals // fixed catalog
	name  string
	value int64
}{
	{"Rose", 1},
	{"Finger Heart", 5},
	{"Perfume", 20},
	{"Galaxy", 1000},
}

// randomInt returns a number in [0, n) using crypto/rand.
func randomInt(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0
	}
	return v.Int64()
}

// Generate builds a complete battle: slot import, start, gifts for both
// performers interleaved with cumulative tallies, and an end.
func Generate(gifts int, one, two string) []Frame {
	frames := []Frame{
		frame("connect", map[string]any{}),
		comment("!slots " + one + "|" + two),
		comment("!battle"),
	}

	var scoreOne, scoreTwo int64
	for i := range gifts {
		g := giftCatalog[randomInt(int64(len(giftCatalog)))]
		repeat := randomInt(5) + 1
		to := one
		if randomInt(2) == 1 {
			to = two
		}
		frames = append(frames, frame("gift", map[string]any{
			"id":           uuid.NewString(),
			"user":         map[string]any{"unique_id": viewer()},
			"gift":         map[string]any{"name": g.name, "diamond_count": g.value},
			"repeat_count": repeat,
			"to_user":      map[string]any{"nickname": to},
		}))

		if to == one {
			scoreOne += repeat * g.value
		} else {
			scoreTwo += repeat * g.value
		}
		if (i+1)%5 == 0 {
			frames = append(frames, frame("linkMicArmies", map[string]any{
				"id":     uuid.NewString(),
				"armies": []map[string]any{{"points": scoreOne}, {"points": scoreTwo}},
			}))
		}
	}

	return append(frames,
		frame("like", map[string]any{"id": uuid.NewString(), "count": 12}),
		comment("!end"),
	)
}

func comment(text string) Frame {
	return frame("comment", map[string]any{
		"id":      uuid.NewString(),
		"user":    map[string]any{"unique_id": "operator"},
		"comment": text,
	})
}

func viewer() string {
	return "viewer_" + uuid.NewString()[:8]
}
