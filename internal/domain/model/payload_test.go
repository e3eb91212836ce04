package model_test

import (
	"testing"

	model "github.com/okian/livebattle/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
	"github.com/tidwall/gjson"
)

func TestPayloadAliases(t *testing.T) {
	convey.Convey("Given a payload with aliased and nested fields", t, func() {
		p := model.NewPayload([]byte(`{
			"msgId": 7300000000000000001,
			"user": {"uniqueId": "  alice  ", "nickname": ""},
			"repeatCount": "3",
			"diamondCount": 5,
			"streakable": true,
			"armies": [{"points": 10}, {"score": "4"}],
			"nothing": null
		}`))

		convey.Convey("Then String returns the first non-blank alias", func() {
			convey.So(p.String("id", "msgId"), convey.ShouldEqual, "7300000000000000001")
			convey.So(p.String("user.nickname", "user.uniqueId"), convey.ShouldEqual, "alice")
			convey.So(p.String("nothing", "missing"), convey.ShouldEqual, "")
			convey.So(p.String("user"), convey.ShouldEqual, "")
		})

		convey.Convey("Then Int accepts numbers and numeric strings", func() {
			v, ok := p.Int("repeat_count", "repeatCount")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 3)

			v, ok = p.Int("diamondCount")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 5)

			_, ok = p.Int("user.uniqueId", "missing")
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Then Bool and Array probe aliases", func() {
			b, ok := p.Bool("streak", "streakable")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(b, convey.ShouldBeTrue)

			convey.So(len(p.Array("army_list", "armies")), convey.ShouldEqual, 2)
			convey.So(p.Array("user"), convey.ShouldBeNil)
		})

		convey.Convey("Then Get skips null values", func() {
			convey.So(p.Get("nothing").Exists(), convey.ShouldBeFalse)
			convey.So(p.Get("nothing", "diamondCount").Int(), convey.ShouldEqual, 5)
		})
	})

	convey.Convey("Given malformed or empty input", t, func() {
		for _, raw := range []string{"", "{not json", "null"} {
			p := model.NewPayload([]byte(raw))

			convey.So(p.String("id"), convey.ShouldEqual, "")
			_, ok := p.Int("id")
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(p.Array("armies"), convey.ShouldBeNil)
		}
		convey.So(model.NewPayload([]byte("{oops")).Empty(), convey.ShouldBeTrue)
	})
}

func TestAsInt(t *testing.T) {
	convey.Convey("Given scalar gjson values", t, func() {
		v, ok := model.AsInt(gjson.Parse(`12.9`))
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(v, convey.ShouldEqual, 12)

		v, ok = model.AsInt(gjson.Parse(`" 7.5 "`))
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(v, convey.ShouldEqual, 7)

		_, ok = model.AsInt(gjson.Parse(`"abc"`))
		convey.So(ok, convey.ShouldBeFalse)

		_, ok = model.AsInt(gjson.Parse(`true`))
		convey.So(ok, convey.ShouldBeFalse)
	})
}
