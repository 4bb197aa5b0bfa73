package engine

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/inshape/inshape/internal/domain/geom"
	"github.com/inshape/inshape/internal/domain/model"
	"github.com/inshape/inshape/internal/domain/score"
	"github.com/inshape/inshape/internal/domain/shapes"
	"github.com/inshape/inshape/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func request(shape, strategy string) model.GradeRequest {
	return model.GradeRequest{
		SubmissionID: "sub-1",
		AthleteID:    "ath-1",
		ActivityID:   "act-1",
		Shape:        shape,
		Strategy:     strategy,
	}
}

func circleSeq(n int, r float64) geom.Sequence {
	s := make(geom.Sequence, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		s[i] = geom.Point{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	return s
}

func TestGrade(t *testing.T) {
	ctx := context.Background()

	Convey("Given a grading engine", t, func() {
		e := New()

		Convey("A near-circular route grades highly against the circle", func() {
			res, err := e.Grade(ctx, request("circle", "coverage"), circleSeq(36, 50))
			So(err, ShouldBeNil)
			So(res.Result.Score, ShouldBeGreaterThanOrEqualTo, 95)
			So(res.Grade, ShouldEqual, "A+")
			So(res.Shape, ShouldEqual, "circle")
			So(res.Result.Algorithm, ShouldEqual, score.AlgorithmCoverage)
			So(res.GradedAt.IsZero(), ShouldBeFalse)
		})

		Convey("The strategy selector picks procrustes", func() {
			res, err := e.Grade(ctx, request("circle", "procrustes"), circleSeq(36, 50))
			So(err, ShouldBeNil)
			So(res.Result.Algorithm, ShouldEqual, score.AlgorithmProcrustes)
			So(res.Result.Procrustes, ShouldNotBeNil)
		})

		Convey("Unknown shapes are a hard error", func() {
			_, err := e.Grade(ctx, request("hexagon", ""), circleSeq(36, 50))
			So(err, ShouldWrap, shapes.ErrUnknownShape)
		})

		Convey("Unknown strategies are a hard error", func() {
			_, err := e.Grade(ctx, request("circle", "hausdorff"), circleSeq(36, 50))
			So(err, ShouldWrap, score.ErrUnknownStrategy)
		})

		Convey("Degenerate geometry is absorbed as a zero score", func() {
			degenerate := geom.Sequence{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}
			res, err := e.Grade(ctx, request("circle", "coverage"), degenerate)
			So(err, ShouldBeNil)
			So(res.Result.Score, ShouldEqual, 0)
			So(res.Grade, ShouldEqual, "F")
			So(res.Result.Message, ShouldNotBeEmpty)
		})

		Convey("Long routes are downsampled before search", func() {
			res, err := e.Grade(ctx, request("circle", "coverage"), circleSeq(10000, 50))
			So(err, ShouldBeNil)
			So(res.Result.Score, ShouldBeGreaterThanOrEqualTo, 90)
		})

		Convey("An overlay is exported on request", func() {
			req := request("rectangle", "coverage")
			req.IncludeOverlay = true

			route := geom.Sequence{{X: 0, Y: 0}, {X: 18, Y: 0}, {X: 18, Y: 12}, {X: 0, Y: 12}}
			res, err := e.Grade(ctx, req, route)
			So(err, ShouldBeNil)
			So(res.Overlay, ShouldNotBeNil)
			So(res.Overlay.Scale, ShouldBeGreaterThan, 0)
			So(len(res.Overlay.Route), ShouldEqual, len(route))
			So(len(res.Overlay.Template), ShouldBeGreaterThan, 0)

			Convey("Both shapes land inside the display frame", func() {
				frame := 400.0
				for _, p := range append(res.Overlay.Route.Clone(), res.Overlay.Template...) {
					So(p.X, ShouldBeBetweenOrEqual, 0, frame)
					So(p.Y, ShouldBeBetweenOrEqual, 0, frame)
				}
			})
		})

		Convey("Without the flag no overlay is exported", func() {
			res, err := e.Grade(ctx, request("rectangle", "coverage"),
				geom.Sequence{{X: 0, Y: 0}, {X: 18, Y: 0}, {X: 18, Y: 12}, {X: 0, Y: 12}})
			So(err, ShouldBeNil)
			So(res.Overlay, ShouldBeNil)
		})

		Convey("Results carry the request identifiers", func() {
			res, err := e.Grade(ctx, request("circle", ""), circleSeq(36, 50))
			So(err, ShouldBeNil)
			So(res.SubmissionID, ShouldEqual, "sub-1")
			So(res.AthleteID, ShouldEqual, "ath-1")
			So(res.ActivityID, ShouldEqual, "act-1")
		})
	})
}

func TestEngineOptions(t *testing.T) {
	Convey("Engine options", t, func() {
		e := New(
			WithFrame(200, 100),
			WithMaxRoutePoints(500),
			WithTimeout(50*time.Millisecond),
		)
		So(e.frame.Width, ShouldEqual, 200)
		So(e.frame.Height, ShouldEqual, 100)
		So(e.maxPoints, ShouldEqual, 500)

		Convey("Invalid values are ignored", func() {
			e := New(WithFrame(-1, 0), WithMaxRoutePoints(1))
			So(e.frame.Width, ShouldEqual, float64(defaultFrameSize))
			So(e.maxPoints, ShouldEqual, defaultMaxRoutePoints)
		})
	})
}
