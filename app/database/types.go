package database

import (
	"time"
)

const (
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// Post is the ledger row of one migrated post.
type Post struct {
	SourceURL   string
	Slug        string // without leading slash
	Title       string
	PublishedAt *time.Time
	Status      string // published, failed
	Error       string
	Content     string
	UpdatedAt   time.Time
}

// Fetch is the ledger row of one cache entry.
type Fetch struct {
	CacheKey  string
	URL       string
	HitCount  int
	FetchedAt time.Time // last network fetch
}
