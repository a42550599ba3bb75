package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.GetHealth)
	r.GET("/posts", handler.ListPosts)
	r.GET("/posts/:slug", handler.GetPost)
	r.GET("/feed.xml", handler.GetFeed)
	r.GET("/metrics", handler.GetMetrics)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "medium-wxr",
			"version":     handler.version,
			"description": "Preview of posts migrated from Medium",
			"endpoints": map[string]string{
				"health":  "/health",
				"posts":   "/posts",
				"preview": "/posts/<slug>",
				"feed":    "/feed.xml",
				"metrics": "/metrics",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
