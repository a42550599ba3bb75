package medium

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability"
	"github.com/PuerkitoBio/goquery"
)

// SectionSeparator joins the sections of one post.
const SectionSeparator = `<hr class="wp-block-separator"/>`

// LinkResolver maps anchor hrefs to their migrated location.
type LinkResolver interface {
	Resolve(href string) (string, bool)
}

// Normalizer converts a Medium post page into a platform-neutral fragment.
type Normalizer struct {
	site   Site
	links  LinkResolver
	embeds *EmbedResolver
}

func NewNormalizer(site Site, links LinkResolver, embeds *EmbedResolver) *Normalizer {
	return &Normalizer{site: site, links: links, embeds: embeds}
}

// Normalize returns the post body of rawHTML. Each <section> of the article
// is normalized on its own and the results are joined with a separator.
// Pages without the sectioned layout fall back to readability extraction.
func (n *Normalizer) Normalize(ctx context.Context, rawHTML string) (string, error) {
	doc, err := parseHTML(rawHTML)
	if err != nil {
		return "", err
	}

	sections := doc.Find("article div").ChildrenFiltered("section")
	if sections.Length() == 0 {
		sections, err = n.readableSection(rawHTML)
		if err != nil {
			return "", err
		}
	}

	var fragments []string
	for i := range sections.Nodes {
		fragment, err := n.normalizeSection(ctx, sections.Eq(i))
		if err != nil {
			return "", err
		}
		if fragment != "" {
			fragments = append(fragments, fragment)
		}
	}

	return collapseWhitespace(strings.Join(fragments, SectionSeparator)), nil
}

func (n *Normalizer) readableSection(rawHTML string) (*goquery.Selection, error) {
	pageURL, _ := url.Parse(n.site.host())

	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}

	slog.Debug("No article sections found, using readable content", "title", article.Title, "content_length", len(article.Content))

	doc, err := parseHTML(article.Content)
	if err != nil {
		return nil, err
	}
	return doc.Find("body"), nil
}

// normalizeSection applies the rewrite passes to one section. The passes
// depend on each other and must run in this order.
func (n *Normalizer) normalizeSection(ctx context.Context, section *goquery.Selection) (string, error) {
	start := section.Find("p, figure").First()
	if start.Length() == 0 {
		return "", nil
	}
	start.PrevAll().Remove()

	inner, err := start.Parent().Html()
	if err != nil {
		return "", fmt.Errorf("failed to render section: %w", err)
	}

	fragment, err := parseHTML(inner)
	if err != nil {
		return "", err
	}
	body := fragment.Find("body")

	stripAttributes(body.Get(0), "class", "id")
	n.rewriteLinks(body)
	markEmbeddedLinks(body)
	collapseLineBreaks(body)

	if n.embeds != nil {
		if err := n.embeds.Resolve(ctx, body); err != nil {
			return "", err
		}
	}

	demoteHeadings(body)

	out, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render section: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (n *Normalizer) rewriteLinks(body *goquery.Selection) {
	if n.links == nil {
		return
	}

	body.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if target, ok := n.links.Resolve(href); ok {
			a.SetAttr("href", target)
		}
	})
}

// markEmbeddedLinks flattens link previews: the repeated heading inside the
// preview goes and the enclosing block is tagged for styling.
func markEmbeddedLinks(body *goquery.Selection) {
	body.Find("a section").Each(func(_ int, preview *goquery.Selection) {
		preview.Find("h4").Remove()

		block := preview.Closest("div")
		if block.Length() == 0 {
			block = preview.Closest("a")
		}
		block.AddClass("embedded-link")
	})
}
