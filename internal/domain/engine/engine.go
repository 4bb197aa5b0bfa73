// Package engine is the grading facade: it turns a raw route and a shape id
// into a complete graded result, absorbing malformed-data failures and
// retrying timed-out computations with a coarser profile.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/inshape/inshape/internal/domain/align"
	"github.com/inshape/inshape/internal/domain/geom"
	"github.com/inshape/inshape/internal/domain/model"
	"github.com/inshape/inshape/internal/domain/score"
	"github.com/inshape/inshape/internal/domain/shapes"
	"github.com/inshape/inshape/pkg/logger"
	"github.com/inshape/inshape/pkg/metrics"
)

const (
	defaultMaxRoutePoints = 2000
	defaultFrameSize      = 400
	defaultTimeout        = 10 * time.Second
)

// Engine grades routes. It holds only configuration; every call is a pure
// function of its inputs, so one Engine may be shared by any number of
// goroutines.
type Engine struct {
	frame      align.Frame
	maxPoints  int
	timeout    time.Duration
	log        logger.Logger
	procrustes []score.ProcrustesOption
	coverage   []score.CoverageOption
}

// Option configures an Engine.
type Option func(*Engine)

// WithFrame sets the display frame overlays are fitted into.
func WithFrame(width, height float64) Option {
	return func(e *Engine) {
		if width > 0 && height > 0 {
			e.frame = align.Frame{Width: width, Height: height}
		}
	}
}

// WithMaxRoutePoints bounds the route size before search; longer routes are
// downsampled.
func WithMaxRoutePoints(n int) Option {
	return func(e *Engine) {
		if n >= geom.MinPoints {
			e.maxPoints = n
		}
	}
}

// WithTimeout sets the per-attempt computation budget.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New builds an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		frame:     align.Frame{Width: defaultFrameSize, Height: defaultFrameSize},
		maxPoints: defaultMaxRoutePoints,
		timeout:   defaultTimeout,
		log:       logger.Get().Named("engine"),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Grade scores a projected route against the named template. Invalid or
// degenerate geometry is absorbed into a zero-score result; an unknown shape
// or strategy is a hard error; a timed-out computation is retried once with
// a coarser profile before failing.
func (e *Engine) Grade(ctx context.Context, req model.GradeRequest, route geom.Sequence) (model.GradeResult, error) {
	tmpl, err := shapes.Lookup(req.Shape)
	if err != nil {
		return model.GradeResult{}, err
	}

	scorer, err := score.ByStrategy(req.Strategy)
	if err != nil {
		return model.GradeResult{}, err
	}

	route = route.Downsample(e.maxPoints)

	start := time.Now()
	res, err := e.scoreWithRetry(ctx, scorer, route, tmpl)
	metrics.RecordGradingLatency(string(scorer.Algorithm()), float64(time.Since(start).Milliseconds()))

	switch {
	case err == nil:
	case errors.Is(err, score.ErrDegenerateShape) || errors.Is(err, geom.ErrInvalidInput):
		// Malformed-but-present data never hard-fails a grading call.
		metrics.RecordGradingError("degenerate_input")
		res = score.Result{
			Score:     0,
			Message:   fmt.Sprintf("Your route could not be graded against a %s: %v", tmpl.ID, err),
			Algorithm: scorer.Algorithm(),
		}
	default:
		metrics.RecordGradingError("computation")
		return model.GradeResult{}, err
	}

	metrics.RecordGradeComputed(string(scorer.Algorithm()))

	out := model.GradeResult{
		SubmissionID: req.SubmissionID,
		AthleteID:    req.AthleteID,
		ActivityID:   req.ActivityID,
		Shape:        tmpl.ID,
		Grade:        model.LetterGrade(res.Score),
		Result:       res,
		GradedAt:     time.Now().UTC(),
	}

	if req.IncludeOverlay && res.Score > 0 {
		overlay, err := e.buildOverlay(ctx, route, tmpl)
		if err != nil {
			e.log.Warn(ctx, "overlay export failed",
				logger.String("shape", tmpl.ID), logger.Error(err))
		} else {
			out.Overlay = overlay
		}
	}

	return out, nil
}

// scoreWithRetry runs the scorer under the per-attempt budget, degrading to
// a coarser configuration after a timeout.
func (e *Engine) scoreWithRetry(ctx context.Context, scorer score.Scorer, route geom.Sequence, tmpl shapes.Shape) (score.Result, error) {
	attempt, cancel := context.WithTimeout(ctx, e.timeout)
	res, err := scorer.Score(attempt, route, tmpl)
	cancel()
	if err == nil || !errors.Is(err, score.ErrTimeout) {
		return res, err
	}

	metrics.RecordGradingRetry()
	e.log.Warn(ctx, "similarity computation timed out, retrying with coarse profile",
		logger.String("algorithm", string(scorer.Algorithm())), logger.Error(err))

	coarse := e.coarseScorer(scorer)
	attempt, cancel = context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return coarse.Score(attempt, route, tmpl)
}

func (e *Engine) coarseScorer(s score.Scorer) score.Scorer {
	switch s.Algorithm() {
	case score.AlgorithmProcrustes:
		return score.NewProcrustes(append([]score.ProcrustesOption{score.WithResamplePoints(64)}, e.procrustes...)...)
	default:
		return score.NewCoverage(append([]score.CoverageOption{
			score.WithRotationSteps(30, 10),
			score.WithGridSize(128),
		}, e.coverage...)...)
	}
}

// buildOverlay places route and template in the display frame at one common
// scale so a renderer can draw both in the same coordinate space.
func (e *Engine) buildOverlay(ctx context.Context, route geom.Sequence, tmpl shapes.Shape) (*model.Overlay, error) {
	routeNorm, err := geom.Normalize(route)
	if err != nil {
		return nil, err
	}
	tmplNorm, err := geom.Normalize(tmpl.Outline)
	if err != nil {
		return nil, err
	}

	res, err := align.Search(ctx, &routeNorm, e.frame, align.DefaultProfile())
	if errors.Is(err, align.ErrSearchTimeout) {
		res, err = align.Search(ctx, &routeNorm, e.frame, align.CoarseProfile())
	}
	if err != nil {
		return nil, err
	}
	metrics.RecordSearchCandidates(res.Candidates)

	routeScale := frameScale(res.Rotated.Bounds(), e.frame) * res.ScaleFactor
	tmplScale := frameScale(tmplNorm.Points.Bounds(), e.frame) * res.ScaleFactor
	common := routeScale
	if tmplScale < common {
		common = tmplScale
	}

	center := geom.Point{X: e.frame.Width / 2, Y: e.frame.Height / 2}
	routeTr := align.NewTransform(res.Angle, routeScale, geom.Point{}, center,
		align.WithForcedScale(common))
	tmplTr := align.NewTransform(0, tmplScale, geom.Point{}, center,
		align.WithForcedScale(common))

	return &model.Overlay{
		Route:           routeTr.Apply(routeNorm.Points),
		Template:        tmplTr.Apply(tmplNorm.Points),
		Scale:           common,
		BestRotationDeg: res.Angle * 180 / math.Pi,
	}, nil
}

func frameScale(b geom.Bounds, f align.Frame) float64 {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 1
	}
	sw := f.Width / w
	if sh := f.Height / h; sh < sw {
		return sh
	}
	return sw
}
