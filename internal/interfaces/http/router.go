// Package http provides the gin route tree and server lifecycle for the
// graph-engine admin API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	"github.com/minhaarvore/arvore/internal/interfaces/http/handlers"
	"github.com/minhaarvore/arvore/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and infrastructure the route tree
// needs.  Nil handlers simply leave their routes unregistered.
type RouterConfig struct {
	Consistency *handlers.ConsistencyHandler
	Dedup       *handlers.DedupHandler
	Kinship     *handlers.KinshipHandler
	Subfamily   *handlers.SubfamilyHandler
	Health      *handlers.HealthHandler

	Gatherer prometheus.Gatherer
	Logger   logging.Logger
	Mode     string
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	r := gin.New()

	r.Use(middleware.RequestID())
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, "/healthz", "/readyz", "/metrics"))
		r.Use(middleware.Recovery(cfg.Logger))
	} else {
		r.Use(gin.Recovery())
	}

	if cfg.Health != nil {
		r.GET("/healthz", cfg.Health.Liveness)
		r.GET("/readyz", cfg.Health.Readiness)
	}
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")
	{
		if cfg.Consistency != nil {
			api.POST("/reconciliation/run", cfg.Consistency.Reconcile)
			api.POST("/reconciliation/distances", cfg.Consistency.RecomputeDistances)
		}
		if cfg.Dedup != nil {
			api.GET("/duplicates", cfg.Dedup.Scan)
			api.POST("/merges", cfg.Dedup.Merge)
		}
		if cfg.Kinship != nil {
			api.GET("/kinship", cfg.Kinship.Resolve)
		}
		if cfg.Subfamily != nil {
			api.GET("/subfamilies/suggestions", cfg.Subfamily.Suggest)
			api.POST("/subfamilies", cfg.Subfamily.Accept)
		}
	}

	return r
}
