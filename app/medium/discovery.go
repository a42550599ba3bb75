package medium

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Anchor patterns of the three listing pages Medium renders. A page may match
// more than one, so every pattern is tried.
var listingSelectors = []string{
	// https://medium.com/me/stories/public
	`h3 a[href*="your_stories_page"]`,
	// https://medium.com/<publication>/stories/published
	`h3 a[href*="collection_detail"]`,
	// https://medium.com/<publication>/latest
	`div.postArticle-content a[data-post-id]`,
}

var listSeparators = regexp.MustCompile(`[\s,]+`)

// Sources names where post urls come from. The first non-empty field in
// the order PublicationURL, URLs, HTMLFile, URLsFile, FeedURL is used.
type Sources struct {
	PublicationURL     string
	URLs               string
	HTMLFile           string
	URLsFile           string
	FeedURL            string
	RefetchPublication bool
}

type Discovery struct {
	site  Site
	pages PageGetter
}

func NewDiscovery(site Site, pages PageGetter) *Discovery {
	return &Discovery{site: site, pages: pages}
}

// Run collects the canonical post urls of src. Unreadable local inputs and
// empty results only produce warnings; fetch failures are returned.
func (d *Discovery) Run(ctx context.Context, src Sources) ([]string, error) {
	var (
		urls []string
		err  error
	)

	switch {
	case src.PublicationURL != "":
		urls, err = d.FromPublication(ctx, src.PublicationURL, src.RefetchPublication)
		if err != nil {
			return nil, err
		}
	case src.URLs != "":
		urls = d.FromList(src.URLs)
	case src.HTMLFile != "":
		urls, err = d.FromHTMLFile(src.HTMLFile)
	case src.URLsFile != "":
		urls, err = d.FromURLsFile(src.URLsFile)
	case src.FeedURL != "":
		urls, err = d.FromFeedURL(ctx, src.FeedURL, src.RefetchPublication)
		if err != nil {
			return nil, err
		}
	}

	if err != nil {
		slog.Warn("Failed to read post urls", "error", err)
		return []string{}, nil
	}

	if len(urls) == 0 {
		slog.Warn("No medium urls to export")
		return []string{}, nil
	}

	return urls, nil
}

// FromHTML extracts post urls from a saved listing page.
func (d *Discovery) FromHTML(content string) ([]string, error) {
	doc, err := parseHTML(content)
	if err != nil {
		return nil, err
	}

	var hrefs []string
	for _, selector := range listingSelectors {
		for _, node := range doc.Find(selector).Nodes {
			for _, attr := range node.Attr {
				if attr.Key == "href" {
					hrefs = append(hrefs, attr.Val)
				}
			}
		}
	}

	return d.canonicalize(hrefs), nil
}

func (d *Discovery) FromHTMLFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML file: %w", err)
	}
	return d.FromHTML(string(data))
}

// FromList splits a comma or whitespace separated list.
func (d *Discovery) FromList(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	return d.canonicalize(listSeparators.Split(strings.TrimSpace(list), -1))
}

// FromURLsFile reads a file of urls separated by whitespace.
func (d *Discovery) FromURLsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read urls file: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, nil
	}
	return d.canonicalize(strings.Fields(content)), nil
}

// FromFeed extracts item links of a publication RSS or Atom feed.
func (d *Discovery) FromFeed(data []byte) ([]string, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	links := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link != "" {
			links = append(links, item.Link)
		}
	}
	return d.canonicalize(links), nil
}

// FromPublication fetches a listing page through the cache.
func (d *Discovery) FromPublication(ctx context.Context, url string, refetch bool) ([]string, error) {
	content, err := d.pages.Get(ctx, url, refetch)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch publication page: %w", err)
	}
	return d.FromHTML(content)
}

func (d *Discovery) FromFeedURL(ctx context.Context, url string, refetch bool) ([]string, error) {
	content, err := d.pages.Get(ctx, url, refetch)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch publication feed: %w", err)
	}
	return d.FromFeed([]byte(content))
}

// canonicalize normalizes and deduplicates urls keeping first occurrences.
func (d *Discovery) canonicalize(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	urls := make([]string, 0, len(raw))

	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		u, err := d.site.CanonicalURL(r)
		if err != nil {
			slog.Warn("Skipping url", "url", r, "error", err)
			continue
		}
		if seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}

	return urls
}
