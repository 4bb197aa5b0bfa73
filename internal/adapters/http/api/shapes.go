// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/inshape/inshape/internal/domain/shapes"
)

// ShapeDependencies defines the interface for listing templates.
type ShapeDependencies interface {
	Shapes() []shapes.Shape
}

// shapeInfo is the wire form of one template.
type shapeInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Vertices int    `json:"vertices"`
}

// ShapesHandler handles template listing requests.
type ShapesHandler struct {
	deps ShapeDependencies
}

// NewShapesHandler creates a new shapes handler.
func NewShapesHandler(deps ShapeDependencies) *ShapesHandler {
	return &ShapesHandler{deps: deps}
}

// HandleGetShapes handles GET /shapes requests.
func (h *ShapesHandler) HandleGetShapes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	all := h.deps.Shapes()
	out := make([]shapeInfo, len(all))
	for i, s := range all {
		out[i] = shapeInfo{
			ID:       s.ID,
			Name:     s.Name,
			Vertices: len(s.Outline),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
