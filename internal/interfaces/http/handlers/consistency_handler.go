package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhaarvore/arvore/internal/application/consistency"
)

// ConsistencyService is the slice of the consistency application service the
// handler needs.
type ConsistencyService interface {
	Run(ctx context.Context) (*consistency.Report, error)
	RecomputeDistances(ctx context.Context) (int, error)
}

// ConsistencyHandler exposes reconciliation over HTTP.
type ConsistencyHandler struct {
	svc ConsistencyService
}

// NewConsistencyHandler constructs the handler.
func NewConsistencyHandler(svc ConsistencyService) *ConsistencyHandler {
	return &ConsistencyHandler{svc: svc}
}

// Reconcile handles POST /reconciliation/run.  The pass is synchronous; the
// full report is the response body.
func (h *ConsistencyHandler) Reconcile(c *gin.Context) {
	report, err := h.svc.Run(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, report)
}

// RecomputeDistances handles POST /reconciliation/distances.
func (h *ConsistencyHandler) RecomputeDistances(c *gin.Context) {
	updated, err := h.svc.RecomputeDistances(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"updated": updated})
}
