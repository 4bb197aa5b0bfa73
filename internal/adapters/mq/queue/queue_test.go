package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func job(id string) Job {
	return Job{
		SubmissionID: id,
		AthleteID:    "ath-1",
		ActivityID:   "act-1",
		Shape:        "circle",
	}
}

func TestEnqueueDequeue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a small queue", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))

		Convey("Jobs come out in arrival order", func() {
			So(q.Enqueue(ctx, job("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, job("b")), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 2)

			out := q.Dequeue(ctx)
			So((<-out).SubmissionID, ShouldEqual, "a")
			So((<-out).SubmissionID, ShouldEqual, "b")
		})

		Convey("A full queue rejects without blocking", func() {
			So(q.Enqueue(ctx, job("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, job("b")), ShouldBeTrue)

			done := make(chan bool, 1)
			go func() { done <- q.Enqueue(ctx, job("c")) }()

			select {
			case ok := <-done:
				So(ok, ShouldBeFalse)
			case <-time.After(time.Second):
				t.Fatal("Enqueue blocked on a full queue")
			}
		})
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with buffered jobs", t, func() {
		q := NewInMemoryQueue(WithCapacity(10))
		for i := 0; i < 3; i++ {
			So(q.Enqueue(ctx, job(fmt.Sprintf("j-%d", i))), ShouldBeTrue)
		}

		Convey("Close stops intake but drains the buffer", func() {
			So(q.Close(), ShouldBeNil)
			So(q.Enqueue(ctx, job("late")), ShouldBeFalse)

			var drained []string
			for j := range q.Dequeue(ctx) {
				drained = append(drained, j.SubmissionID)
			}
			So(drained, ShouldResemble, []string{"j-0", "j-1", "j-2"})
		})

		Convey("Close is idempotent", func() {
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
		})
	})
}

func TestDequeueCancellation(t *testing.T) {
	Convey("A cancelled consumer stops receiving", t, func() {
		q := NewInMemoryQueue(WithCapacity(10))
		ctx, cancel := context.WithCancel(context.Background())

		out := q.Dequeue(ctx)
		So(q.Enqueue(context.Background(), job("a")), ShouldBeTrue)
		So((<-out).SubmissionID, ShouldEqual, "a")

		cancel()

		select {
		case _, ok := <-out:
			So(ok, ShouldBeFalse)
		case <-time.After(time.Second):
			t.Fatal("dequeue channel not closed after cancellation")
		}

		// Jobs enqueued after the consumer left stay buffered.
		So(q.Enqueue(context.Background(), job("b")), ShouldBeTrue)
		So(q.Len(context.Background()), ShouldEqual, 1)
	})
}
