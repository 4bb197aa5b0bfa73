package testroutes

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerateRoutes(t *testing.T) {
	Convey("Given a batch of generated routes", t, func() {
		routes := generateRoutes(30)

		So(len(routes), ShouldEqual, 30)

		Convey("Every route has unique ids and a known shape", func() {
			submissions := make(map[string]bool)
			athletes := make(map[string]bool)
			known := make(map[string]bool)
			for _, id := range shapeIDs {
				known[id] = true
			}

			for _, r := range routes {
				So(submissions[r.SubmissionID], ShouldBeFalse)
				So(athletes[r.AthleteID], ShouldBeFalse)
				submissions[r.SubmissionID] = true
				athletes[r.AthleteID] = true
				So(known[r.Shape], ShouldBeTrue)
				So(len(r.Coordinates), ShouldBeGreaterThanOrEqualTo, 150)
			}
		})

		Convey("Coordinates are valid lat/lng pairs near the base position", func() {
			for _, r := range routes {
				for _, c := range r.Coordinates {
					So(len(c), ShouldEqual, 2)
					So(c[0], ShouldBeBetween, baseLat-0.1, baseLat+0.1)
					So(c[1], ShouldBeBetween, baseLng-0.1, baseLng+0.1)
				}
			}
		})
	})
}

func TestTraceShapeClosesOutline(t *testing.T) {
	Convey("Given a clean trace of each shape", t, func() {
		for _, id := range shapeIDs {
			pts := traceShape(id, 200, 0)
			So(len(pts), ShouldEqual, 200)

			// The last sample sits close to the first; the outline is a loop.
			first, last := pts[0], pts[len(pts)-1]
			gap := math.Hypot(last[0]-first[0], last[1]-first[1])
			So(gap, ShouldBeLessThan, 30)
		}
	})
}

func TestRectanglePointOnPerimeter(t *testing.T) {
	Convey("Every sample of a rectangle walk lies on the perimeter", t, func() {
		const w, h = 1.5, 1.0
		for i := 0; i < 100; i++ {
			f := float64(i) / 100
			x, y := rectanglePoint(f, w, h)
			onVertical := math.Abs(math.Abs(x)-w/2) < 1e-9 && math.Abs(y) <= h/2+1e-9
			onHorizontal := math.Abs(math.Abs(y)-h/2) < 1e-9 && math.Abs(x) <= w/2+1e-9
			So(onVertical || onHorizontal, ShouldBeTrue)
		}
	})
}
