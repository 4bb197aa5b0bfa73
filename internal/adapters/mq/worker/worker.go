// Package worker runs the grading workers that drain the submission queue,
// grade each route and update the leaderboard.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/inshape/inshape/internal/adapters/repository"
	"github.com/inshape/inshape/internal/domain/model"
	"github.com/inshape/inshape/pkg/logger"
	"github.com/inshape/inshape/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 4
	poolShutdownTimeout     = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = model.GradeRequest

// Grader turns a grading request into a graded result.
type Grader interface {
	GradeRequest(ctx context.Context, req model.GradeRequest) (model.GradeResult, error)
}

// Updater records an athlete's best score.
type Updater interface {
	UpdateBest(ctx context.Context, best repository.Best) (bool, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes grading jobs until stopped.
type Worker struct {
	queue   Queue
	grader  Grader
	updater Updater
	name    string

	shutdown chan struct{}
	done     chan struct{}

	log logger.Logger
}

// Option applies a configuration option to a Worker.
type Option func(*Worker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(w *Worker) {
		if log != nil {
			w.log = log
		}
	}
}

// New creates a worker.
func New(q Queue, grader Grader, updater Updater, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		grader:   grader,
		updater:  updater,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		log:      logger.Get().Named("worker"),
	}
	for _, o := range opts {
		o(w)
	}
	if w.name != "worker" {
		w.log = w.log.Named(w.name)
	}
	return w
}

// Run processes jobs until the context is cancelled, the worker is shut
// down, or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.log.Error(ctx, "grading job failed",
					logger.String("submission_id", job.SubmissionID),
					logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.log.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *Worker) process(ctx context.Context, job Job) error {
	res, err := w.grader.GradeRequest(ctx, job)
	if err != nil {
		return fmt.Errorf("grading submission %s: %w", job.SubmissionID, err)
	}

	updated, err := w.updater.UpdateBest(ctx, repository.Best{
		AthleteID:   res.AthleteID,
		Score:       res.Result.Score,
		ActivityID:  res.ActivityID,
		Shape:       res.Shape,
		Algorithm:   string(res.Result.Algorithm),
		LetterGrade: res.Grade,
	})
	if err != nil {
		return fmt.Errorf("leaderboard update for %s: %w", res.AthleteID, err)
	}

	if updated {
		w.log.Debug(ctx, "new personal best",
			logger.String("athlete_id", res.AthleteID),
			logger.Float64("score", res.Result.Score),
			logger.String("shape", res.Shape))
	}
	return nil
}

// Pool manages a fixed set of workers.
type Pool struct {
	workers []*Worker
	queue   Queue

	log logger.Logger
}

// NewPool creates a pool of workerCount workers; a non-positive count sizes
// the pool from the machine's CPU count.
func NewPool(workerCount int, q Queue, grader Grader, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		log:     logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = New(q, grader, updater, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.log.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.log.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)
	return nil
}
