package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhaarvore/arvore/internal/application/kinship"
	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// KinshipHandler answers relationship queries against a fresh snapshot.
type KinshipHandler struct {
	store    person.GraphStore
	resolver *kinship.Resolver
}

// NewKinshipHandler constructs the handler.
func NewKinshipHandler(store person.GraphStore, resolver *kinship.Resolver) *KinshipHandler {
	return &KinshipHandler{store: store, resolver: resolver}
}

// Resolve handles GET /kinship?from=<id>&to=<id>.
func (h *KinshipHandler) Resolve(c *gin.Context) {
	fromID := c.Query("from")
	toID := c.Query("to")
	if fromID == "" || toID == "" {
		respondError(c, errors.InvalidParam("query parameters from and to are required"))
		return
	}

	snapshot, err := h.store.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeSnapshotUnavailable, "failed to load graph snapshot"))
		return
	}

	label, err := h.resolver.Resolve(fromID, toID, person.BuildIndex(snapshot))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{
		"from":  fromID,
		"to":    toID,
		"label": label,
	})
}
