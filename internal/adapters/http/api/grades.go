// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/inshape/inshape/internal/domain/model"
)

// GradesHandler handles grading submissions.
type GradesHandler struct {
	deps Dependencies
}

// NewGradesHandler creates a new grades handler.
func NewGradesHandler(deps Dependencies) *GradesHandler {
	return &GradesHandler{deps: deps}
}

// HandleSubmit handles POST /grades requests. Accepted submissions are graded
// asynchronously; results land on the leaderboard.
func (h *GradesHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_grades"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req model.GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.SubmissionID == "" {
		req.SubmissionID = uuid.New().String()
	}

	accepted, duplicate, err := h.deps.Submit(r.Context(), req)
	switch {
	case err != nil:
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case duplicate:
		writeJSON(w, http.StatusOK, ackResponse{
			Status:       "duplicate",
			SubmissionID: req.SubmissionID,
			Duplicate:    true,
		})
	case !accepted:
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
	default:
		writeJSON(w, http.StatusAccepted, ackResponse{
			Status:       "accepted",
			SubmissionID: req.SubmissionID,
		})
	}
}

// HandleGradeSync handles POST /grades/sync requests, grading inline and
// returning the full scoring payload.
func (h *GradesHandler) HandleGradeSync(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_grades_sync"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req model.GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.SubmissionID == "" {
		req.SubmissionID = uuid.New().String()
	}

	res, err := h.deps.GradeSync(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
