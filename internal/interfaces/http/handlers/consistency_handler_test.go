package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhaarvore/arvore/internal/application/consistency"
	"github.com/minhaarvore/arvore/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeConsistencyService struct {
	report  *consistency.Report
	updated int
	err     error
}

func (f *fakeConsistencyService) Run(context.Context) (*consistency.Report, error) {
	return f.report, f.err
}

func (f *fakeConsistencyService) RecomputeDistances(context.Context) (int, error) {
	return f.updated, f.err
}

func perform(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, readerFor(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReconcile_ReturnsReport(t *testing.T) {
	h := NewConsistencyHandler(&fakeConsistencyService{
		report: &consistency.Report{Scanned: 10, Mutated: 2},
	})
	r := gin.New()
	r.POST("/reconciliation/run", h.Reconcile)

	w := perform(t, r, http.MethodPost, "/reconciliation/run", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got consistency.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 10, got.Scanned)
	assert.Equal(t, 2, got.Mutated)
}

func TestReconcile_InProgressMapsToConflict(t *testing.T) {
	h := NewConsistencyHandler(&fakeConsistencyService{
		err: errors.New(errors.ErrCodeReconcileInProgress, "another graph pass holds the lock"),
	})
	r := gin.New()
	r.POST("/reconciliation/run", h.Reconcile)

	w := perform(t, r, http.MethodPost, "/reconciliation/run", "")

	assert.Equal(t, http.StatusConflict, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, errors.ErrCodeReconcileInProgress.String(), body.Code)
}

func TestRecomputeDistances(t *testing.T) {
	h := NewConsistencyHandler(&fakeConsistencyService{updated: 7})
	r := gin.New()
	r.POST("/reconciliation/distances", h.RecomputeDistances)

	w := perform(t, r, http.MethodPost, "/reconciliation/distances", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated": 7}`, w.Body.String())
}
