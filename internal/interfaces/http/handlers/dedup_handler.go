package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhaarvore/arvore/internal/application/dedup"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// DedupService is the slice of the dedup application service the handler
// needs.
type DedupService interface {
	Scan(ctx context.Context) ([]dedup.Candidate, error)
	Merge(ctx context.Context, keepID, discardID string) (*dedup.MergeResult, error)
}

// DedupHandler exposes duplicate scans and merges over HTTP.
type DedupHandler struct {
	svc DedupService
}

// NewDedupHandler constructs the handler.
func NewDedupHandler(svc DedupService) *DedupHandler {
	return &DedupHandler{svc: svc}
}

// Scan handles GET /duplicates.
func (h *DedupHandler) Scan(c *gin.Context) {
	candidates, err := h.svc.Scan(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{
		"count":      len(candidates),
		"candidates": candidates,
	})
}

// MergeRequest selects the surviving record and the record to fold into it.
type MergeRequest struct {
	KeepID    string `json:"keep_id"`
	DiscardID string `json:"discard_id"`
}

// Merge handles POST /merges.
func (h *DedupHandler) Merge(c *gin.Context) {
	var req MergeRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.KeepID == "" || req.DiscardID == "" {
		respondError(c, errors.InvalidParam("keep_id and discard_id are required"))
		return
	}

	result, err := h.svc.Merge(c.Request.Context(), req.KeepID, req.DiscardID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{
		"merged_id":  result.Merged.ID,
		"rewritten":  len(result.Updates),
		"deleted":    result.Deletions,
		"new_record": result.Merged,
	})
}
