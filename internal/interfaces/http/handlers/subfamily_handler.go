package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	appsubfamily "github.com/minhaarvore/arvore/internal/application/subfamily"
	"github.com/minhaarvore/arvore/internal/domain/subfamily"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// SubfamilyService is the slice of the subfamily application service the
// handler needs.
type SubfamilyService interface {
	Suggest(ctx context.Context) ([]appsubfamily.Suggestion, error)
	Accept(ctx context.Context, sg appsubfamily.Suggestion) (*subfamily.Subfamily, error)
}

// SubfamilyHandler exposes subfamily suggestion and acceptance over HTTP.
type SubfamilyHandler struct {
	svc SubfamilyService
}

// NewSubfamilyHandler constructs the handler.
func NewSubfamilyHandler(svc SubfamilyService) *SubfamilyHandler {
	return &SubfamilyHandler{svc: svc}
}

// Suggest handles GET /subfamilies/suggestions.
func (h *SubfamilyHandler) Suggest(c *gin.Context) {
	suggestions, err := h.svc.Suggest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{
		"count":       len(suggestions),
		"suggestions": suggestions,
	})
}

// Accept handles POST /subfamilies.  The body is a suggestion previously
// returned by Suggest; acceptance is always an explicit human action.
func (h *SubfamilyHandler) Accept(c *gin.Context) {
	var sg appsubfamily.Suggestion
	if !bindJSON(c, &sg) {
		return
	}
	if len(sg.MemberIDs) == 0 {
		respondError(c, errors.InvalidParam("member_ids must not be empty"))
		return
	}

	created, err := h.svc.Accept(c.Request.Context(), sg)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, created)
}
