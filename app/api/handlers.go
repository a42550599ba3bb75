package api

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lysyi3m/medium-wxr/app/database"
	"github.com/lysyi3m/medium-wxr/app/metrics"
)

// NewHandler serves the ledger of posts and the feed written at feedPath.
// fetches may be nil.
func NewHandler(posts database.PostStore, fetches database.FetchStore, feedPath string, gatherer prometheus.Gatherer, version string) *Handler {
	return &Handler{
		posts:     posts,
		fetches:   fetches,
		feedPath:  feedPath,
		sanitizer: bluemonday.UGCPolicy(),
		gatherer:  gatherer,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if total, published, failed, err := h.posts.GetPostStats(); err == nil {
		health["posts"] = map[string]int{
			"total":     total,
			"published": published,
			"failed":    failed,
		}
	}

	if h.fetches != nil {
		if count, err := h.fetches.GetFetchCount(); err == nil {
			health["cached_urls"] = count
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListPosts(c *gin.Context) {
	status := c.Query("status")

	posts, err := h.posts.ListPosts(status)
	if err != nil {
		slog.Error("Database error", "operation", "list_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	items := make([]map[string]interface{}, 0, len(posts))
	for _, post := range posts {
		item := map[string]interface{}{
			"source_url": post.SourceURL,
			"slug":       post.Slug,
			"title":      post.Title,
			"status":     post.Status,
			"updated_at": post.UpdatedAt,
		}
		if post.PublishedAt != nil {
			item["published_at"] = post.PublishedAt
		}
		if post.Error != "" {
			item["error"] = post.Error
		}
		if post.Slug != "" && post.Status == database.StatusPublished {
			item["preview"] = "/posts/" + post.Slug
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"posts": items,
		"total": len(items),
	})
}

// GetPost renders the stored content of a post as a standalone page.
func (h *Handler) GetPost(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	post, err := h.posts.GetPostBySlug(slug)
	if err != nil {
		slog.Error("Database error", "operation", "get_post", "slug", slug, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if post == nil || post.Status != database.StatusPublished {
		c.Status(http.StatusNotFound)
		return
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(post.Title)))
	page.WriteString("</head>\n<body>\n<article>\n")
	page.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(post.Title)))
	if post.PublishedAt != nil {
		page.WriteString(fmt.Sprintf("<time datetime=\"%s\">%s</time>\n",
			post.PublishedAt.Format(time.RFC3339), post.PublishedAt.Format("January 2, 2006")))
	}
	page.WriteString(h.sanitizer.Sanitize(post.Content))
	page.WriteString("\n</article>\n</body>\n</html>\n")

	c.Header("X-Source-URL", post.SourceURL)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page.String()))
}

func (h *Handler) GetFeed(c *gin.Context) {
	data, err := os.ReadFile(h.feedPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.Status(http.StatusNotFound)
			return
		}
		slog.Error("Failed to read feed", "path", h.feedPath, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Length", strconv.Itoa(len(data)))
	c.Data(http.StatusOK, "application/xml; charset=utf-8", data)
}

func (h *Handler) GetMetrics(c *gin.Context) {
	metrics.Handler(h.gatherer).ServeHTTP(c.Writer, c.Request)
}
