package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/procwatch/internal/domain/lifecycle"
)

// StatusProvider exposes the live state of a pipeline.
type StatusProvider interface {
	Snapshot() lifecycle.Snapshot
}

// Handlers serves the status endpoints
type Handlers struct {
	status StatusProvider
}

// NewHandlers creates status handlers
func NewHandlers(status StatusProvider) *Handlers {
	return &Handlers{status: status}
}

// Health reports whether the pipeline is still accepting work
func (h *Handlers) Health(c *gin.Context) {
	snap := h.status.Snapshot()

	code := http.StatusOK
	healthy := true
	switch snap.State {
	case lifecycle.ShuttingDown.String(), lifecycle.Stopped.String():
		code = http.StatusServiceUnavailable
		healthy = false
	}

	c.JSON(code, gin.H{
		"healthy": healthy,
		"state":   snap.State,
		"run_id":  snap.RunID,
	})
}

// Stats returns the pipeline snapshot
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.status.Snapshot())
}
