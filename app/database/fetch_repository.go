package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// FetchRepository records content cache lookups
type FetchRepository struct {
	db  *DB
	now func() time.Time
}

// NewFetchRepository creates a new fetch repository
func NewFetchRepository(db *DB) *FetchRepository {
	return &FetchRepository{db: db, now: time.Now}
}

// RecordFetch stores a cache lookup. A miss (network fetch) refreshes
// fetched_at; a hit increments hit_count.
func (r *FetchRepository) RecordFetch(url, cacheKey string, hit bool) error {
	hits := 0
	if hit {
		hits = 1
	}
	now := r.now().UTC().Format(timeLayout)

	_, err := r.db.Exec(`
		INSERT INTO fetches (cache_key, url, hit_count, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			url = excluded.url,
			hit_count = fetches.hit_count + excluded.hit_count,
			fetched_at = CASE WHEN excluded.hit_count = 0 THEN excluded.fetched_at ELSE fetches.fetched_at END
	`, cacheKey, url, hits, now)

	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}

	return nil
}

// RecordLookup records a cache lookup, logging instead of failing the caller.
func (r *FetchRepository) RecordLookup(url, cacheKey string, hit bool) {
	if err := r.RecordFetch(url, cacheKey, hit); err != nil {
		slog.Warn("Failed to record cache lookup", "url", url, "error", err)
	}
}

// GetFetch retrieves the ledger row of a cache key
func (r *FetchRepository) GetFetch(cacheKey string) (*Fetch, error) {
	var (
		fetch     Fetch
		fetchedAt string
	)

	err := r.db.QueryRow(`
		SELECT cache_key, url, hit_count, fetched_at
		FROM fetches
		WHERE cache_key = ?
	`, cacheKey).Scan(&fetch.CacheKey, &fetch.URL, &fetch.HitCount, &fetchedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fetch: %w", err)
	}

	fetch.FetchedAt, err = time.Parse(timeLayout, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid fetched_at %q: %w", fetchedAt, err)
	}

	return &fetch, nil
}

// GetFetchCount returns the number of distinct cached urls
func (r *FetchRepository) GetFetchCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM fetches`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get fetch count: %w", err)
	}
	return count, nil
}
