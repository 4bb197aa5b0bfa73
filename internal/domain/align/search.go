package align

import (
	"context"
	"fmt"

	"github.com/inshape/inshape/internal/domain/geom"
)

// Result is the winning orientation for a shape in a frame.
type Result struct {
	Angle       float64
	ScaleFactor float64
	Fitness     float64
	Rotated     geom.Sequence
	Candidates  int
}

// Search evaluates every candidate in the profile and returns the one with
// the strictly greatest fitness. Exact ties keep the earliest candidate, so
// results are deterministic for identical inputs. The context is checked
// between candidates; cancellation surfaces as ErrSearchTimeout.
func Search(ctx context.Context, n *geom.Normalized, frame Frame, p Profile) (Result, error) {
	cands := Candidates(n, p)

	var (
		best      Result
		bestSet   bool
		lastAngle float64
		rotated   geom.Sequence
	)

	for i, c := range cands {
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("%w after %d of %d candidates: %v",
				ErrSearchTimeout, i, len(cands), ctx.Err())
		}

		// Scale factors are angle-major, so each rotation is reused across
		// the inner scale loop.
		if rotated == nil || c.Angle != lastAngle {
			rotated = n.Points.RotateAbout(geom.Point{}, c.Angle)
			lastAngle = c.Angle
		}

		b := rotated.Bounds()
		score := fitness(b.Width(), b.Height(), frame, c.ScaleFactor)
		if !bestSet || score > best.Fitness {
			best = Result{
				Angle:       c.Angle,
				ScaleFactor: c.ScaleFactor,
				Fitness:     score,
				Rotated:     rotated,
			}
			bestSet = true
		}
	}

	best.Candidates = len(cands)
	return best, nil
}
