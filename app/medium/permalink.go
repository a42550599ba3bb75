package medium

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^-0-9a-z]`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

// Slugify derives the permalink slug of a post title: lowercase words joined
// by single hyphens with anything outside [a-z0-9-] dropped. Accented letters
// are folded to their base letter first.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))

	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(folder, s); err == nil {
		s = folded
	}

	s = whitespaceRun.ReplaceAllString(s, "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Permalinks maps platform-relative post paths to their new paths.
type Permalinks struct {
	site  Site
	paths map[string]string
	owner map[string]string
}

func NewPermalinks(site Site) *Permalinks {
	return &Permalinks{
		site:  site,
		paths: make(map[string]string),
		owner: make(map[string]string),
	}
}

// BuildPermalinks is the index phase: every post is fetched once so that the
// mapping is complete before any content is rewritten.
func BuildPermalinks(ctx context.Context, pages PageGetter, site Site, postURLs []string) (*Permalinks, error) {
	permalinks := NewPermalinks(site)

	for _, postURL := range postURLs {
		content, err := pages.Get(ctx, postURL, false)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch post %s: %w", postURL, err)
		}

		doc, err := parseHTML(content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse post %s: %w", postURL, err)
		}

		permalinks.Add(postURL, site.Title(doc))
	}

	return permalinks, nil
}

// Add registers the post at postURL under the slug of title and returns the
// new path. Two posts with the same slug both map to it; nothing is renamed.
func (p *Permalinks) Add(postURL, title string) string {
	source := p.site.RelativePath(postURL)
	target := "/" + Slugify(title)

	if prev, ok := p.owner[target]; ok && prev != source {
		slog.Warn("Permalink collision", "path", target, "first", prev, "second", source)
	}
	p.owner[target] = source
	p.paths[source] = target

	return target
}

// Path returns the new path of a discovered post url.
func (p *Permalinks) Path(postURL string) (string, bool) {
	target, ok := p.paths[p.site.RelativePath(postURL)]
	return target, ok
}

// Resolve maps an anchor href to the new path of the post it links to.
// The query string is ignored; absolute links on the canonical host match
// by their relative path.
func (p *Permalinks) Resolve(href string) (string, bool) {
	href, _, _ = strings.Cut(href, "?")
	if target, ok := p.paths[href]; ok {
		return target, true
	}

	if relative := p.site.RelativePath(href); relative != href {
		target, ok := p.paths[relative]
		return target, ok
	}

	return "", false
}

func (p *Permalinks) Len() int {
	return len(p.paths)
}

// Mapping returns a copy of the source path to new path mapping.
func (p *Permalinks) Mapping() map[string]string {
	mapping := make(map[string]string, len(p.paths))
	for k, v := range p.paths {
		mapping[k] = v
	}
	return mapping
}
