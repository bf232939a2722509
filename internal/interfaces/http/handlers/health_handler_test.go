package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhaarvore/arvore/pkg/errors"
)

func TestLiveness(t *testing.T) {
	h := NewHealthHandler("1.2.3")
	r := gin.New()
	r.GET("/healthz", h.Liveness)

	w := perform(t, r, http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alive", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewHealthHandler("test",
		CheckerFunc{ComponentName: "postgres", Fn: func(context.Context) error { return nil }},
		CheckerFunc{ComponentName: "redis", Fn: func(context.Context) error { return nil }},
	)
	r := gin.New()
	r.GET("/readyz", h.Readiness)

	w := perform(t, r, http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadiness_OneUnhealthy(t *testing.T) {
	h := NewHealthHandler("test",
		CheckerFunc{ComponentName: "postgres", Fn: func(context.Context) error { return nil }},
		CheckerFunc{ComponentName: "redis", Fn: func(context.Context) error {
			return errors.New(errors.ErrCodeCacheError, "connection refused")
		}},
	)
	r := gin.New()
	r.GET("/readyz", h.Readiness)

	w := perform(t, r, http.MethodGet, "/readyz", "")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body struct {
		Status     string `json:"status"`
		Components map[string]struct {
			Status string `json:"status"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "unhealthy", body.Components["redis"].Status)
	assert.Equal(t, "healthy", body.Components["postgres"].Status)
}
