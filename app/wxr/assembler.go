package wxr

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"github.com/lysyi3m/medium-wxr/app/medium"
)

type Assembler struct {
	site     medium.Site
	category Category
}

// NewAssembler returns an assembler that files every post under category
// before any of the post's own tags.
func NewAssembler(site medium.Site, category Category) *Assembler {
	category.Domain = DomainCategory
	if category.Nicename == "" {
		category.Nicename = strings.ToLower(category.Label)
	}
	return &Assembler{site: site, category: category}
}

// Assemble extracts the metadata of a post page and pairs it with the
// normalized content. Title, publish time and author are required.
func (a *Assembler) Assemble(sourceURL, slug, rawHTML, content string) (*PostRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse post %s: %w", sourceURL, err)
	}

	title := a.site.Title(doc)
	if title == "" {
		return nil, fmt.Errorf("%w: title", ErrMetadataMissing)
	}

	publishedAt, err := publishedTime(doc)
	if err != nil {
		return nil, err
	}

	author := strings.TrimSpace(doc.Find(`meta[name="author"]`).AttrOr("content", ""))
	if author == "" {
		return nil, fmt.Errorf("%w: author", ErrMetadataMissing)
	}

	return &PostRecord{
		SourceURL:   sourceURL,
		Slug:        strings.TrimPrefix(slug, "/"),
		Title:       title,
		Author:      author,
		PublishedAt: publishedAt,
		Content:     content,
		Categories:  a.categories(doc),
	}, nil
}

func publishedTime(doc *goquery.Document) (time.Time, error) {
	value := strings.TrimSpace(doc.Find(`meta[property="article:published_time"]`).AttrOr("content", ""))
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: published time", ErrMetadataMissing)
	}

	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: published time %q", ErrMetadataMissing, value)
	}
	return t.UTC(), nil
}

func (a *Assembler) categories(doc *goquery.Document) []Category {
	categories := []Category{a.category}

	doc.Find(`li a[href*="/tag/"]`).Each(func(_ int, s *goquery.Selection) {
		label := strings.TrimSpace(s.Text())
		if label == "" {
			return
		}
		categories = append(categories, Category{
			Label:    label,
			Nicename: strings.ToLower(label),
			Domain:   DomainTag,
		})
	})

	return categories
}
