// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/inshape/inshape/internal/adapters/repository"
	"github.com/inshape/inshape/internal/domain/model"
	"github.com/inshape/inshape/internal/domain/shapes"
)

// Dependencies required by the HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Submit queues a grading request for async processing. It reports
	// whether the request was accepted and whether it was a duplicate.
	Submit(ctx context.Context, req model.GradeRequest) (accepted, duplicate bool, err error)

	// GradeSync grades a request inline and returns the full result.
	GradeSync(ctx context.Context, req model.GradeRequest) (model.GradeResult, error)

	// Read operations expose leaderboard data.
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, athleteID string) (Entry, error)

	// Shapes lists the available templates.
	Shapes() []shapes.Shape
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = repository.Entry

// defaultMaxLimit bounds leaderboard page sizes.
const defaultMaxLimit = 100

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	gradesHandler      *GradesHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	shapesHandler      *ShapesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		gradesHandler:      NewGradesHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, defaultMaxLimit),
		rankHandler:        NewRankHandler(deps),
		shapesHandler:      NewShapesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/grades/sync", MetricsMiddleware(s.gradesHandler.HandleGradeSync, "grades_sync"))
	mux.HandleFunc("/grades", MetricsMiddleware(s.gradesHandler.HandleSubmit, "grades"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/shapes", MetricsMiddleware(s.shapesHandler.HandleGetShapes, "shapes"))
}

type ackResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id"`
	Duplicate    bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
