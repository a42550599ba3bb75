package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const fileExt = ".html"

// Fetcher retrieves the rendered HTML of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Recorder is notified of every cache lookup that reached the disk.
type Recorder interface {
	RecordLookup(url, key string, hit bool)
}

// Cache is a content-addressed on-disk store of fetched pages. The key of an
// entry depends on the URL only, so separate runs share entries.
type Cache struct {
	dir       string
	fetcher   Fetcher
	recorders []Recorder
}

func NewCache(dir string, fetcher Fetcher, recorders ...Recorder) *Cache {
	return &Cache{
		dir:       dir,
		fetcher:   fetcher,
		recorders: recorders,
	}
}

// Key returns the file name an URL is stored under: the name-based (SHA-1,
// version 5) UUID of the URL in the URL namespace.
func Key(url string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String() + fileExt
}

func (c *Cache) Dir() string {
	return c.dir
}

// Get returns the content of url, fetching it only when no entry exists or
// refetch is set. An empty url yields an empty string.
func (c *Cache) Get(ctx context.Context, url string, refetch bool) (string, error) {
	if url == "" {
		return "", nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	key := Key(url)
	path := filepath.Join(c.dir, key)

	if !refetch {
		data, err := os.ReadFile(path)
		if err == nil {
			slog.Debug("Fetching url from cache", "url", url, "cache_key", key)
			c.record(url, key, true)
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read cache entry %s: %w", key, err)
		}
	}

	slog.Info("Fetching url", "url", url)
	content, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	c.record(url, key, false)

	return content, nil
}

func (c *Cache) record(url, key string, hit bool) {
	for _, r := range c.recorders {
		r.RecordLookup(url, key, hit)
	}
}
