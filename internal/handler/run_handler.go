package handler

import (
	"github.com/gin-gonic/gin"

	"ndclink/internal/port"
)

// RunHandler exposes the pipeline run audit trail.
type RunHandler struct {
	runs port.RunRepository
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runs port.RunRepository) *RunHandler {
	return &RunHandler{runs: runs}
}

// Latest handles GET /api/v1/runs/latest
func (h *RunHandler) Latest(c *gin.Context) {
	run, err := h.runs.Latest(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, run)
}
