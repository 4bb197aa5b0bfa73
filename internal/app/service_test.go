package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/inshape/inshape/internal/domain/model"
	"github.com/inshape/inshape/internal/domain/shapes"
	"github.com/inshape/inshape/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

// rectangleRoute traces a small rectangle on the ground near Berlin, walking
// the perimeter with a few samples per edge.
func rectangleRoute() [][]float64 {
	const (
		lat0 = 52.5200
		lng0 = 13.4050
		dLat = 0.0020 // roughly 220 m north-south
		dLng = 0.0050 // roughly 340 m east-west at this latitude
	)
	corners := [][2]float64{
		{lat0, lng0},
		{lat0, lng0 + dLng},
		{lat0 + dLat, lng0 + dLng},
		{lat0 + dLat, lng0},
	}
	const perEdge = 8
	var out [][]float64
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		for j := 0; j < perEdge; j++ {
			t := float64(j) / perEdge
			out = append(out, []float64{
				a[0] + t*(b[0]-a[0]),
				a[1] + t*(b[1]-a[1]),
			})
		}
	}
	return out
}

func gradeRequest(id, athlete string) model.GradeRequest {
	return model.GradeRequest{
		SubmissionID: id,
		AthleteID:    athlete,
		ActivityID:   "activity-" + id,
		Shape:        "rectangle",
		Coordinates:  rectangleRoute(),
	}
}

func startedService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc := New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("starting service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := New(WithWorkerCount(2), WithQueueSize(16))
		ctx := context.Background()

		Convey("Start is idempotent and Stop shuts it down", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["worker_count"], ShouldEqual, 2)

			svc.Stop()
			So(svc.GetStats()["started"], ShouldBeFalse)
		})

		Convey("Operations before Start fail instead of panicking", func() {
			_, _, err := svc.Submit(ctx, gradeRequest("sub-early", "athlete-1"))
			So(err, ShouldWrap, ErrNotStarted)

			_, err = svc.GradeSync(ctx, gradeRequest("sync-early", "athlete-1"))
			So(err, ShouldWrap, ErrNotStarted)

			_, err = svc.TopN(ctx, 5)
			So(err, ShouldWrap, ErrNotStarted)

			_, err = svc.Rank(ctx, "athlete-1")
			So(err, ShouldWrap, ErrNotStarted)
		})
	})
}

func TestSubmitValidation(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(t, WithWorkerCount(1))
		ctx := context.Background()

		Convey("A request without an athlete id is rejected", func() {
			req := gradeRequest("sub-1", "")
			req.AthleteID = ""
			_, _, err := svc.Submit(ctx, req)
			So(err, ShouldWrap, model.ErrMissingAthleteID)
		})

		Convey("A request without a route is rejected", func() {
			req := gradeRequest("sub-1", "athlete-1")
			req.Coordinates = nil
			_, _, err := svc.Submit(ctx, req)
			So(err, ShouldWrap, model.ErrMissingRoute)
		})

		Convey("An unknown shape is rejected", func() {
			req := gradeRequest("sub-1", "athlete-1")
			req.Shape = "pentagon"
			_, _, err := svc.Submit(ctx, req)
			So(err, ShouldWrap, shapes.ErrUnknownShape)
		})
	})
}

func TestSubmitDeduplication(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(t, WithWorkerCount(1))
		ctx := context.Background()

		Convey("A resubmitted id is flagged as duplicate", func() {
			accepted, duplicate, err := svc.Submit(ctx, gradeRequest("sub-dup", "athlete-1"))
			So(err, ShouldBeNil)
			So(accepted, ShouldBeTrue)
			So(duplicate, ShouldBeFalse)

			accepted, duplicate, err = svc.Submit(ctx, gradeRequest("sub-dup", "athlete-1"))
			So(err, ShouldBeNil)
			So(accepted, ShouldBeFalse)
			So(duplicate, ShouldBeTrue)
		})
	})
}

func TestSubmitGradesAsynchronously(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(t, WithWorkerCount(2))
		ctx := context.Background()

		Convey("A submitted rectangle run reaches the leaderboard with a high score", func() {
			accepted, _, err := svc.Submit(ctx, gradeRequest("sub-async", "athlete-42"))
			So(err, ShouldBeNil)
			So(accepted, ShouldBeTrue)

			var found bool
			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) {
				if _, err := svc.Rank(ctx, "athlete-42"); err == nil {
					found = true
					break
				}
				time.Sleep(20 * time.Millisecond)
			}
			So(found, ShouldBeTrue)

			entry, err := svc.Rank(ctx, "athlete-42")
			So(err, ShouldBeNil)
			So(entry.Rank, ShouldEqual, 1)
			So(entry.Score, ShouldBeGreaterThan, 80)
			So(entry.Shape, ShouldEqual, "rectangle")
		})
	})
}

func TestGradeSync(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(t, WithWorkerCount(1))
		ctx := context.Background()

		Convey("GradeSync returns the full result inline", func() {
			res, err := svc.GradeSync(ctx, gradeRequest("sub-sync", "athlete-7"))
			So(err, ShouldBeNil)
			So(res.SubmissionID, ShouldEqual, "sub-sync")
			So(res.Result.Score, ShouldBeGreaterThan, 80)
			So(res.Grade, ShouldNotBeEmpty)
			So(res.Result.Message, ShouldContainSubstring, "rectangle")

			Convey("And the leaderboard is untouched", func() {
				_, err := svc.Rank(ctx, "athlete-7")
				So(err, ShouldNotBeNil)
			})
		})

		Convey("GradeSync with an overlay request includes the overlay", func() {
			req := gradeRequest("sub-overlay", "athlete-8")
			req.IncludeOverlay = true
			res, err := svc.GradeSync(ctx, req)
			So(err, ShouldBeNil)
			So(res.Overlay, ShouldNotBeNil)
			So(len(res.Overlay.Route), ShouldBeGreaterThan, 0)
			So(len(res.Overlay.Template), ShouldBeGreaterThan, 0)
		})
	})
}

func TestTopNOrdersAthletes(t *testing.T) {
	Convey("Given several graded athletes", t, func() {
		svc := startedService(t, WithWorkerCount(4))
		ctx := context.Background()

		const athletes = 5
		for i := 0; i < athletes; i++ {
			_, _, err := svc.Submit(ctx, gradeRequest(
				fmt.Sprintf("sub-top-%d", i),
				fmt.Sprintf("athlete-top-%d", i),
			))
			So(err, ShouldBeNil)
		}

		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if entries, err := svc.TopN(ctx, athletes); err == nil && len(entries) == athletes {
				break
			}
			time.Sleep(20 * time.Millisecond)
		}

		Convey("TopN returns every athlete in rank order", func() {
			entries, err := svc.TopN(ctx, athletes)
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, athletes)
			for i := 1; i < len(entries); i++ {
				So(entries[i].Score, ShouldBeLessThanOrEqualTo, entries[i-1].Score)
				So(entries[i].Rank, ShouldBeGreaterThanOrEqualTo, entries[i-1].Rank)
			}
		})
	})
}
