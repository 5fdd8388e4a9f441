package server

import (
	"net/http"

	"github.com/yourorg/qa-platform/internal/handler"
	"github.com/yourorg/qa-platform/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig controls the optional parts of the route table
type RouterConfig struct {
	MetricsPath string
	// Gatherer exposes metrics on MetricsPath; nil disables the endpoint
	Gatherer prometheus.Gatherer
	Metrics  *middleware.HTTPMetrics
}

// Route is a single entry of the route table
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// TagRoutes returns the routes served under the /tag group
func TagRoutes(tagHandler *handler.TagHandler) []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/getTagsWithQuestionNumber", Handler: tagHandler.GetTagsWithQuestionNumber},
		{Method: http.MethodGet, Path: "/getTagByName/:name", Handler: tagHandler.GetTagByName},
	}
}

// NewRouter builds the gin engine for the tag service
func NewRouter(cfg RouterConfig, tagHandler *handler.TagHandler, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Handler())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	if cfg.Gatherer != nil && cfg.MetricsPath != "" {
		router.GET(cfg.MetricsPath, gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	tags := router.Group("/tag")
	for _, route := range TagRoutes(tagHandler) {
		tags.Handle(route.Method, route.Path, route.Handler)
	}

	router.NoRoute(tagHandler.NoRoute)

	return router
}
