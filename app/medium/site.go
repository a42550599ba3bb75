// Package medium turns Medium's rendered post pages into portable HTML.
package medium

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const DefaultCanonicalHost = "https://medium.com"

// PageGetter returns the HTML of a URL, normally through the content cache.
type PageGetter interface {
	Get(ctx context.Context, url string, refetch bool) (string, error)
}

// Site holds the platform constants of the blog being migrated.
type Site struct {
	CanonicalHost string // e.g. https://medium.com, no trailing slash
	TitleSuffix   string // site name appended to every page title
}

func (s Site) host() string {
	if s.CanonicalHost == "" {
		return DefaultCanonicalHost
	}
	return strings.TrimSuffix(s.CanonicalHost, "/")
}

// hostForms returns the canonical host and its www-prefixed variant.
func (s Site) hostForms() []string {
	host := s.host()
	scheme, rest, ok := strings.Cut(host, "://")
	if !ok {
		return []string{host}
	}
	if strings.HasPrefix(rest, "www.") {
		return []string{host, scheme + "://" + strings.TrimPrefix(rest, "www.")}
	}
	return []string{host, scheme + "://www." + rest}
}

// CanonicalURL strips the query and fragment of raw and prefixes relative
// paths with the canonical host. Absolute URLs on other hosts are rejected.
func (s Site) CanonicalURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	u, _, _ = strings.Cut(u, "?")
	u, _, _ = strings.Cut(u, "#")
	if u == "" {
		return "", fmt.Errorf("empty post url")
	}

	if strings.HasPrefix(u, "//") {
		u = s.AbsoluteURL(u)
	}

	host := s.host()
	forms := s.hostForms()
	if strings.HasPrefix(u, forms[1]+"/") || u == forms[1] {
		u = host + strings.TrimPrefix(u, forms[1])
	}

	if u == host || strings.HasPrefix(u, host+"/") {
		return u, nil
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return "", fmt.Errorf("post url %q is not on %s", u, host)
	}

	u = host + "/" + u
	return strings.Replace(u, host+"//", host+"/", 1), nil
}

// RelativePath strips the canonical host, bare or www-prefixed, from url.
func (s Site) RelativePath(url string) string {
	for _, prefix := range s.hostForms() {
		url = strings.TrimPrefix(url, prefix)
	}
	return url
}

// AbsoluteURL resolves protocol-relative and host-relative references.
func (s Site) AbsoluteURL(ref string) string {
	switch {
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "/"):
		return s.host() + ref
	default:
		return ref
	}
}

// Title returns the page title without the site name suffix.
func (s Site) Title(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if suffix := strings.TrimSpace(s.TitleSuffix); suffix != "" {
		title = strings.TrimSuffix(title, suffix)
	}
	return strings.TrimSpace(title)
}

func parseHTML(content string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
