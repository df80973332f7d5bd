package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/gin-gonic/gin"
)

const unmatchedRoute = "unmatched"

// NewRouter wires the API routes. Release mode is used outside local and development envs.
func NewRouter(log *slog.Logger, h *Handler, m *metrics.Metrics, env string) *gin.Engine {
	if env != "local" && env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(Metrics(log, m), Recovery(log), CORS())

	r.GET("/", h.Index)

	api := r.Group("/api")
	api.GET("/personas", h.ListPersonas)
	api.GET("/personas/:id", h.GetPersona)
	api.POST("/consult", h.Consult)
	api.POST("/consult/batch", h.ConsultBatch)
	api.GET("/globe", h.GlobePoints)
	api.POST("/globe/resolve", h.ResolvePoint)
	api.GET("/cancer-types", h.CancerTypes)

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.RequestURI()))
	})

	return r
}

// Recovery turns panics into a generic 500 response.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "Unhandled error", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal server error",
		})
	})
}

// Metrics counts requests and observes their latency per route.
func Metrics(log *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		elapsed := time.Since(start)

		m.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPSeconds.WithLabelValues(route).Observe(elapsed.Seconds())

		log.DebugContext(c.Request.Context(), "Request served",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", elapsed,
		)
	}
}

// CORS allows browser clients from any origin.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
