package medium

import (
	"context"
	"fmt"
	"testing"
)

type fakePages struct {
	pages map[string]string
	calls map[string]int
}

func newFakePages(pages map[string]string) *fakePages {
	return &fakePages{pages: pages, calls: make(map[string]int)}
}

func (f *fakePages) Get(ctx context.Context, url string, refetch bool) (string, error) {
	f.calls[url]++
	content, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("unexpected fetch of %s", url)
	}
	return content, nil
}

func TestSite_CanonicalURL(t *testing.T) {
	site := Site{CanonicalHost: "https://medium.com"}

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"relative with query", "/me/stories/public?foo=1", "https://medium.com/me/stories/public", false},
		{"relative without slash", "tensult/post-1", "https://medium.com/tensult/post-1", false},
		{"absolute", "https://medium.com/tensult/post-1?source=rss", "https://medium.com/tensult/post-1", false},
		{"www host", "https://www.medium.com/p/abc#comments", "https://medium.com/p/abc", false},
		{"surrounding space", "  /p/abc  ", "https://medium.com/p/abc", false},
		{"foreign host", "https://example.com/p/abc", "", true},
		{"host prefix of another host", "https://medium.company.com/x", "", true},
		{"protocol relative", "//medium.com/p/a", "https://medium.com/p/a", false},
		{"protocol relative www", "//www.medium.com/p/a", "https://medium.com/p/a", false},
		{"protocol relative foreign", "//example.com/p/a", "", true},
		{"empty", "?source=x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := site.CanonicalURL(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for '%s', got '%s'", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected '%s', got '%s'", tt.want, got)
			}
		})
	}
}

func TestSite_DefaultHost(t *testing.T) {
	got, err := Site{}.CanonicalURL("/p/abc")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "https://medium.com/p/abc" {
		t.Errorf("Expected default host to be used, got '%s'", got)
	}
}

func TestSite_RelativePath(t *testing.T) {
	site := Site{CanonicalHost: "https://medium.com/"}

	if got := site.RelativePath("https://medium.com/tensult/post-1"); got != "/tensult/post-1" {
		t.Errorf("Expected '/tensult/post-1', got '%s'", got)
	}
	if got := site.RelativePath("https://www.medium.com/tensult/post-1"); got != "/tensult/post-1" {
		t.Errorf("Expected '/tensult/post-1', got '%s'", got)
	}
	if got := site.RelativePath("https://example.com/x"); got != "https://example.com/x" {
		t.Errorf("Expected foreign url unchanged, got '%s'", got)
	}
}

func TestSite_AbsoluteURL(t *testing.T) {
	site := Site{}

	if got := site.AbsoluteURL("//cdn.example.com/a.js"); got != "https://cdn.example.com/a.js" {
		t.Errorf("Expected protocol-relative url to get https, got '%s'", got)
	}
	if got := site.AbsoluteURL("/media/abc"); got != "https://medium.com/media/abc" {
		t.Errorf("Expected host-relative url to be resolved, got '%s'", got)
	}
	if got := site.AbsoluteURL("https://gist.github.com/a"); got != "https://gist.github.com/a" {
		t.Errorf("Expected absolute url unchanged, got '%s'", got)
	}
}

func TestSite_Title(t *testing.T) {
	site := Site{TitleSuffix: " – Tensult Blogs "}

	doc, err := parseHTML(`<html><head><title>  Hello, World! – Tensult Blogs</title></head></html>`)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if got := site.Title(doc); got != "Hello, World!" {
		t.Errorf("Expected 'Hello, World!', got '%s'", got)
	}

	doc, _ = parseHTML(`<html><head></head><body></body></html>`)
	if got := site.Title(doc); got != "" {
		t.Errorf("Expected empty title, got '%s'", got)
	}
}
