package database

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "ledger", "ledger.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestRunMigrations(t *testing.T) {
	db := setupTestDB(t)

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected re-running migrations to succeed, got: %v", err)
	}
	if version != 2 {
		t.Errorf("Expected schema version 2, got %d", version)
	}
	if dirty {
		t.Error("Expected clean schema")
	}
}

func TestPostRepository_UpsertAndGet(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	published := time.Date(2019, 3, 12, 10, 24, 31, 0, time.UTC)

	err := repo.UpsertPost(Post{
		SourceURL:   "https://medium.com/tensult/hello-1",
		Slug:        "/hello-world-update",
		Title:       "Hello, World! — Update",
		PublishedAt: &published,
		Status:      StatusPublished,
		Content:     "<p>Body</p>",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	post, err := repo.GetPostBySlug("hello-world-update")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if post == nil {
		t.Fatal("Expected post to be found")
	}

	if post.Title != "Hello, World! — Update" {
		t.Errorf("Expected title to round-trip, got '%s'", post.Title)
	}
	if post.Slug != "hello-world-update" {
		t.Errorf("Expected slug without leading slash, got '%s'", post.Slug)
	}
	if post.PublishedAt == nil || !post.PublishedAt.Equal(published) {
		t.Errorf("Expected published time %v, got %v", published, post.PublishedAt)
	}
	if post.Content != "<p>Body</p>" {
		t.Errorf("Expected content to round-trip, got '%s'", post.Content)
	}
	if post.UpdatedAt.IsZero() {
		t.Error("Expected updated_at to be set")
	}
}

func TestPostRepository_UpsertReplacesOutcome(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	url := "https://medium.com/p/1"

	if err := repo.UpsertPost(Post{SourceURL: url, Slug: "one", Status: StatusFailed, Error: "post metadata missing: author"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := repo.UpsertPost(Post{SourceURL: url, Slug: "one", Title: "One", Status: StatusPublished}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	posts, err := repo.ListPosts("")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("Expected 1 post, got %d", len(posts))
	}
	if posts[0].Status != StatusPublished || posts[0].Error != "" {
		t.Errorf("Expected latest outcome to win, got status '%s' error '%s'", posts[0].Status, posts[0].Error)
	}
	if posts[0].PublishedAt != nil {
		t.Errorf("Expected no published time, got %v", posts[0].PublishedAt)
	}
}

func TestPostRepository_ListAndStats(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	older := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	posts := []Post{
		{SourceURL: "https://medium.com/p/old", Slug: "old", PublishedAt: &older, Status: StatusPublished},
		{SourceURL: "https://medium.com/p/new", Slug: "new", PublishedAt: &newer, Status: StatusPublished},
		{SourceURL: "https://medium.com/p/bad", Slug: "bad", Status: StatusFailed, Error: "boom"},
	}
	for _, p := range posts {
		if err := repo.UpsertPost(p); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	published, err := repo.ListPosts(StatusPublished)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("Expected 2 published posts, got %d", len(published))
	}
	if published[0].Slug != "new" || published[1].Slug != "old" {
		t.Errorf("Expected newest first, got '%s', '%s'", published[0].Slug, published[1].Slug)
	}

	total, ok, failed, err := repo.GetPostStats()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if total != 3 || ok != 2 || failed != 1 {
		t.Errorf("Expected stats 3/2/1, got %d/%d/%d", total, ok, failed)
	}
}

func TestPostRepository_GetMissing(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))

	post, err := repo.GetPostBySlug("missing")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if post != nil {
		t.Errorf("Expected nil post, got %+v", post)
	}

	posts, err := repo.ListPosts("")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("Expected empty list, got %#v", posts)
	}
}

func TestFetchRepository_RecordFetch(t *testing.T) {
	repo := NewFetchRepository(setupTestDB(t))
	first := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return first }

	if err := repo.RecordFetch("https://medium.com/p/1", "key-1.html", false); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	repo.now = func() time.Time { return first.Add(time.Hour) }
	repo.RecordLookup("https://medium.com/p/1", "key-1.html", true)
	repo.RecordLookup("https://medium.com/p/1", "key-1.html", true)

	fetch, err := repo.GetFetch("key-1.html")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if fetch == nil {
		t.Fatal("Expected fetch to be recorded")
	}
	if fetch.HitCount != 2 {
		t.Errorf("Expected 2 hits, got %d", fetch.HitCount)
	}
	if !fetch.FetchedAt.Equal(first) {
		t.Errorf("Expected hits to keep fetched_at %v, got %v", first, fetch.FetchedAt)
	}

	if err := repo.RecordFetch("https://medium.com/p/2", "key-2.html", false); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	count, err := repo.GetFetchCount()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 fetches, got %d", count)
	}

	if missing, _ := repo.GetFetch("nope"); missing != nil {
		t.Errorf("Expected nil for unknown key, got %+v", missing)
	}
}
