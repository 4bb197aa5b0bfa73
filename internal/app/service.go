// Package service wires the grading engine, submission queue, worker pool,
// deduper and leaderboard into the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	submitqueue "github.com/inshape/inshape/internal/adapters/mq/queue"
	workerpool "github.com/inshape/inshape/internal/adapters/mq/worker"
	repository "github.com/inshape/inshape/internal/adapters/repository"
	"github.com/inshape/inshape/internal/domain/dedupe"
	"github.com/inshape/inshape/internal/domain/engine"
	"github.com/inshape/inshape/internal/domain/model"
	"github.com/inshape/inshape/internal/domain/shapes"
	"github.com/inshape/inshape/pkg/logger"
	"github.com/inshape/inshape/pkg/metrics"
)

// graderAdapter adapts the grading engine to the worker.Grader interface by
// materializing and projecting the route before grading.
type graderAdapter struct {
	engine *engine.Engine
}

func (a *graderAdapter) GradeRequest(ctx context.Context, req model.GradeRequest) (model.GradeResult, error) {
	route, err := req.Route()
	if err != nil {
		return model.GradeResult{}, err
	}
	seq, err := route.Project()
	if err != nil {
		return model.GradeResult{}, err
	}
	return a.engine.Grade(ctx, req, seq)
}

// Service implements the API dependencies for the shape grading system.
type Service struct {
	mu sync.RWMutex

	leaderboard repository.Store
	deduper     dedupe.Deduper
	queue       submitqueue.Queue
	engine      *engine.Engine
	pool        *workerpool.Pool

	workerCount  int
	queueSize    int
	dedupeSize   int
	frameWidth   float64
	frameHeight  float64
	gradeTimeout time.Duration

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of grading workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the submission queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithFrame sets the display frame used for alignment overlays.
func WithFrame(width, height float64) Option {
	return func(s *Service) {
		if width > 0 && height > 0 {
			s.frameWidth = width
			s.frameHeight = height
		}
	}
}

// WithGradeTimeout bounds how long a single grading run may take.
func WithGradeTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.gradeTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    100000,
		dedupeSize:   50000,
		frameWidth:   400,
		frameHeight:  400,
		gradeTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting grading service")

	s.leaderboard = repository.NewTreapStore()
	s.deduper = dedupe.New(
		dedupe.WithMaxEntries(s.dedupeSize),
	)
	s.queue = submitqueue.NewInMemoryQueue(
		submitqueue.WithCapacity(s.queueSize),
	)
	s.engine = engine.New(
		engine.WithFrame(s.frameWidth, s.frameHeight),
		engine.WithTimeout(s.gradeTimeout),
		engine.WithLogger(s.logger.Named("engine")),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, &graderAdapter{engine: s.engine}, s.leaderboard)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "grading service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop gracefully shuts down the service, draining queued submissions.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping grading service")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Error(ctx, "worker pool shutdown", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "grading service stopped")
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Submit accepts a grading request for asynchronous processing. It reports
// whether the submission was accepted and whether it was a duplicate.
func (s *Service) Submit(ctx context.Context, req model.GradeRequest) (accepted, duplicate bool, err error) {
	if !s.running() {
		return false, false, ErrNotStarted
	}
	if err := req.Validate(); err != nil {
		return false, false, err
	}
	if _, err := shapes.Lookup(req.Shape); err != nil {
		return false, false, err
	}

	if s.deduper.SeenAndRecord(ctx, req.SubmissionID) {
		metrics.RecordGradeDuplicate()
		s.logger.Debug(ctx, "duplicate submission",
			logger.String("submission_id", req.SubmissionID))
		return false, true, nil
	}

	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = time.Now().UTC()
	}

	if !s.queue.Enqueue(ctx, req) {
		// Forget the id so the client can retry once there is room.
		s.deduper.Unrecord(ctx, req.SubmissionID)
		return false, false, nil
	}
	return true, false, nil
}

// GradeSync grades a request inline and returns the full result without
// touching the queue or the leaderboard.
func (s *Service) GradeSync(ctx context.Context, req model.GradeRequest) (model.GradeResult, error) {
	if err := req.Validate(); err != nil {
		return model.GradeResult{}, err
	}

	s.mu.RLock()
	eng := s.engine
	s.mu.RUnlock()
	if eng == nil {
		return model.GradeResult{}, ErrNotStarted
	}

	adapter := &graderAdapter{engine: eng}
	res, err := adapter.GradeRequest(ctx, req)
	if err != nil {
		return model.GradeResult{}, fmt.Errorf("grading submission %s: %w", req.SubmissionID, err)
	}
	return res, nil
}

// TopN returns the top n leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	return s.leaderboard.TopN(ctx, n)
}

// Rank returns the leaderboard entry for one athlete.
func (s *Service) Rank(ctx context.Context, athleteID string) (repository.Entry, error) {
	if !s.running() {
		return repository.Entry{}, ErrNotStarted
	}
	return s.leaderboard.Rank(ctx, athleteID)
}

// Shapes lists the available shape templates.
func (s *Service) Shapes() []shapes.Shape {
	return shapes.All()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
		"dedupe_size":  s.dedupeSize,
		"shapes":       shapes.IDs(),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		totalAthletes := s.leaderboard.Count(ctx)

		stats["queue_length"] = queueLen
		stats["total_athletes"] = totalAthletes
		stats["dedupe_entries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalAthletes(totalAthletes)
		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}
