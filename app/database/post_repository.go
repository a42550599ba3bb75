package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// timestamps are stored as RFC 3339 text in UTC
const timeLayout = time.RFC3339Nano

// PostRepository handles ledger operations for posts
type PostRepository struct {
	db  *DB
	now func() time.Time
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db, now: time.Now}
}

// UpsertPost records the latest outcome of a post, keyed by its source url
func (r *PostRepository) UpsertPost(post Post) error {
	var publishedAt sql.NullString
	if post.PublishedAt != nil {
		publishedAt = sql.NullString{String: post.PublishedAt.UTC().Format(timeLayout), Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO posts (source_url, slug, title, published_at, status, error, content, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_url) DO UPDATE SET
			slug = excluded.slug,
			title = excluded.title,
			published_at = excluded.published_at,
			status = excluded.status,
			error = excluded.error,
			content = excluded.content,
			updated_at = excluded.updated_at
	`, post.SourceURL, strings.TrimPrefix(post.Slug, "/"), post.Title, publishedAt,
		post.Status, post.Error, post.Content, r.now().UTC().Format(timeLayout))

	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}

	return nil
}

// GetPostBySlug retrieves the most recently updated post with the given slug
func (r *PostRepository) GetPostBySlug(slug string) (*Post, error) {
	row := r.db.QueryRow(`
		SELECT source_url, slug, title, published_at, status, error, content, updated_at
		FROM posts
		WHERE slug = ?
		ORDER BY updated_at DESC
		LIMIT 1
	`, strings.TrimPrefix(slug, "/"))

	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by slug: %w", err)
	}

	return post, nil
}

// ListPosts returns the posts with the given status, or all posts when status
// is empty, newest first
func (r *PostRepository) ListPosts(status string) ([]Post, error) {
	rows, err := r.db.Query(`
		SELECT source_url, slug, title, published_at, status, error, content, updated_at
		FROM posts
		WHERE ? = '' OR status = ?
		ORDER BY COALESCE(published_at, '') DESC, source_url
	`, status, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

// GetPostStats returns total, published and failed post counts
func (r *PostRepository) GetPostStats() (int, int, int, error) {
	var total, published, failed int
	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM posts
	`, StatusPublished, StatusFailed).Scan(&total, &published, &failed)

	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get post stats: %w", err)
	}

	return total, published, failed, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*Post, error) {
	var (
		post        Post
		publishedAt sql.NullString
		updatedAt   string
	)

	err := s.Scan(&post.SourceURL, &post.Slug, &post.Title, &publishedAt,
		&post.Status, &post.Error, &post.Content, &updatedAt)
	if err != nil {
		return nil, err
	}

	if publishedAt.Valid && publishedAt.String != "" {
		t, err := time.Parse(timeLayout, publishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid published_at %q: %w", publishedAt.String, err)
		}
		post.PublishedAt = &t
	}

	post.UpdatedAt, err = time.Parse(timeLayout, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}

	return &post, nil
}
