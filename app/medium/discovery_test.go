package medium

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDiscovery_FromHTML_ArticleListing(t *testing.T) {
	d := NewDiscovery(Site{}, nil)

	urls, err := d.FromHTML(`<div class="postArticle-content"><a data-post-id="x" href="/me/stories/public?foo=1">Post</a></div>`)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []string{"https://medium.com/me/stories/public"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("Expected %v, got %v", want, urls)
	}
}

func TestDiscovery_FromHTML_AllListingsAndDuplicates(t *testing.T) {
	d := NewDiscovery(Site{}, nil)

	page := `
	<html><body>
		<h3><a href="https://medium.com/p/one?source=your_stories_page">One</a></h3>
		<h3><a href="/tensult/two?source=collection_detail">Two</a></h3>
		<div class="postArticle-content"><a data-post-id="1" href="https://medium.com/p/one">One again</a></div>
		<h3><a href="/about">About</a></h3>
		<div class="postArticle-content"><a data-post-id="3" href="https://example.com/elsewhere">Foreign</a></div>
	</body></html>`

	urls, err := d.FromHTML(page)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []string{"https://medium.com/p/one", "https://medium.com/tensult/two"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("Expected %v, got %v", want, urls)
	}
}

func TestDiscovery_FromList(t *testing.T) {
	d := NewDiscovery(Site{}, nil)

	urls := d.FromList(" /p/a, https://medium.com/p/b\n/p/c  /p/a ")

	want := []string{"https://medium.com/p/a", "https://medium.com/p/b", "https://medium.com/p/c"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("Expected %v, got %v", want, urls)
	}

	if urls := d.FromList("   "); len(urls) != 0 {
		t.Errorf("Expected no urls for blank list, got %v", urls)
	}
}

func TestDiscovery_FromURLsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(path, []byte("https://medium.com/p/a\n\n  /p/b\n"), 0644); err != nil {
		t.Fatalf("Failed to write urls file: %v", err)
	}

	urls, err := NewDiscovery(Site{}, nil).FromURLsFile(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []string{"https://medium.com/p/a", "https://medium.com/p/b"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("Expected %v, got %v", want, urls)
	}
}

func TestDiscovery_FromFeed(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Tensult</title>
	<link>https://medium.com/tensult</link>
	<item><title>One</title><link>https://medium.com/tensult/one-1?source=rss----1</link></item>
	<item><title>Two</title><link>https://medium.com/tensult/two-2?source=rss----1</link></item>
</channel>
</rss>`

	urls, err := NewDiscovery(Site{}, nil).FromFeed([]byte(feed))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []string{"https://medium.com/tensult/one-1", "https://medium.com/tensult/two-2"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("Expected %v, got %v", want, urls)
	}

	if _, err := NewDiscovery(Site{}, nil).FromFeed([]byte("not a feed")); err == nil {
		t.Error("Expected error for invalid feed")
	}
}

func TestDiscovery_Run_PublicationTakesPriority(t *testing.T) {
	pages := newFakePages(map[string]string{
		"https://medium.com/tensult/latest": `<div class="postArticle-content"><a data-post-id="1" href="/tensult/from-listing">x</a></div>`,
	})
	d := NewDiscovery(Site{}, pages)

	urls, err := d.Run(context.Background(), Sources{
		PublicationURL: "https://medium.com/tensult/latest",
		URLs:           "/p/from-list",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []string{"https://medium.com/tensult/from-listing"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("Expected %v, got %v", want, urls)
	}
}

func TestDiscovery_Run_PublicationFetchError(t *testing.T) {
	d := NewDiscovery(Site{}, newFakePages(map[string]string{}))

	if _, err := d.Run(context.Background(), Sources{PublicationURL: "https://medium.com/missing"}); err == nil {
		t.Error("Expected fetch error to be returned")
	}
}

func TestDiscovery_Run_MissingFileIsEmpty(t *testing.T) {
	d := NewDiscovery(Site{}, nil)

	urls, err := d.Run(context.Background(), Sources{HTMLFile: filepath.Join(t.TempDir(), "missing.html")})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if urls == nil || len(urls) != 0 {
		t.Errorf("Expected empty non-nil result, got %#v", urls)
	}
}

func TestDiscovery_Run_NoSource(t *testing.T) {
	urls, err := NewDiscovery(Site{}, nil).Run(context.Background(), Sources{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("Expected no urls, got %v", urls)
	}
}
