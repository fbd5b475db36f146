package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-complaints/internal/service"
	appErrors "github.com/noah-isme/student-complaints/pkg/errors"
	"github.com/noah-isme/student-complaints/pkg/response"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type schemaState interface {
	Initialized() bool
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	db      pinger
	schema  schemaState
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, db pinger, schema schemaState) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, db: db, schema: schema}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the database answers a ping, along with the schema state. A pending
// schema is still ready: the next page request runs the bootstrap.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		response.Error(c, appErrors.Wrap(err, "NOT_READY", http.StatusServiceUnavailable, "database unavailable"))
		return
	}

	schema := "pending"
	if h.schema != nil && h.schema.Initialized() {
		schema = "initialized"
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "ready", "schema": schema})
}
