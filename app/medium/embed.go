package medium

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
)

const (
	EmbedImage = "image"
	EmbedGist  = "gist"
)

var (
	gistRawURL   = regexp.MustCompile(`https://gist\.github\.com/[^"]+/raw/[^\\]+`)
	gistRevision = regexp.MustCompile(`/raw/[^/]+/`)
)

// EmbedRecorder is told about every embed the resolver handled.
type EmbedRecorder interface {
	RecordEmbed(kind string, resolved bool)
}

// EmbedResolver replaces Medium's lazy-loaded figures with self-contained
// markup. Gist iframes cost two extra fetches each, both through the cache.
type EmbedResolver struct {
	site     Site
	pages    PageGetter
	recorder EmbedRecorder
}

func NewEmbedResolver(site Site, pages PageGetter, recorder EmbedRecorder) *EmbedResolver {
	return &EmbedResolver{site: site, pages: pages, recorder: recorder}
}

func (r *EmbedResolver) Resolve(ctx context.Context, body *goquery.Selection) error {
	r.resolveImages(body)
	return r.resolveGists(ctx, body)
}

// resolveImages swaps each figure's placeholder for the <img> kept in its
// <noscript> fallback. The caption stays the last child.
func (r *EmbedResolver) resolveImages(body *goquery.Selection) {
	body.Find("figure noscript").Each(func(_ int, noscript *goquery.Selection) {
		markup := noscriptMarkup(noscript.Get(0))
		if strings.TrimSpace(markup) == "" {
			return
		}

		figure := noscript.Closest("figure")
		if figure.Length() == 0 {
			return
		}

		caption := figure.ChildrenFiltered("figcaption")
		figure.SetHtml(markup)
		figure.ChildrenFiltered("img").RemoveAttr("class")
		figure.AppendSelection(caption)

		r.record(EmbedImage, true)
	})
}

// noscriptMarkup returns the fallback markup of a <noscript> element. The
// parser keeps its content as raw text; some pages additionally entity-encode
// it, in which case it is decoded exactly once.
func noscriptMarkup(n *nethtml.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == nethtml.TextNode {
			buf.WriteString(c.Data)
			continue
		}
		nethtml.Render(&buf, c)
	}

	markup := buf.String()
	if strings.Contains(markup, "&lt;") {
		markup = html.UnescapeString(markup)
	}
	return markup
}

// resolveGists replaces figures holding a gist iframe with the gist's script
// embed. Figures whose script cannot be found keep the iframe.
func (r *EmbedResolver) resolveGists(ctx context.Context, body *goquery.Selection) error {
	iframes := body.Find("figure div iframe")

	for i := range iframes.Nodes {
		iframe := iframes.Eq(i)
		src, ok := iframe.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			continue
		}

		figure := iframe.Closest("figure")
		if figure.Length() == 0 || figure.Get(0).Parent == nil {
			continue
		}

		frameURL := r.site.AbsoluteURL(src)
		gistURL, err := r.lookupGist(ctx, frameURL)
		if err != nil {
			return fmt.Errorf("failed to resolve embed %s: %w", frameURL, err)
		}

		if gistURL == "" {
			slog.Debug("Embed left unresolved", "src", frameURL)
			r.record(EmbedGist, false)
			continue
		}

		figure.ReplaceWithHtml(gistEmbed(gistURL))
		r.record(EmbedGist, true)
	}

	return nil
}

// lookupGist follows an embed iframe to the gist script it loads and returns
// the stable per-file script URL, or "" when there is none.
func (r *EmbedResolver) lookupGist(ctx context.Context, frameURL string) (string, error) {
	frame, err := r.pages.Get(ctx, frameURL, false)
	if err != nil {
		return "", err
	}

	doc, err := parseHTML(frame)
	if err != nil {
		return "", err
	}

	scriptSrc, _ := doc.Find(`script[src*="gist.github"]`).First().Attr("src")
	if scriptSrc == "" {
		return "", nil
	}

	script, err := r.pages.Get(ctx, resolveReference(frameURL, scriptSrc), false)
	if err != nil {
		return "", err
	}

	rawURL := gistRawURL.FindString(script)
	if rawURL == "" {
		return "", nil
	}

	loc := gistRevision.FindStringIndex(rawURL)
	if loc == nil {
		return "", nil
	}
	return rawURL[:loc[0]] + ".js?file=" + rawURL[loc[1]:], nil
}

func gistEmbed(scriptURL string) string {
	page, _, _ := strings.Cut(scriptURL, ".js?")
	return fmt.Sprintf(
		`<div class="oembed-gist"><script src="%s"></script><noscript>View the code on <a href="%s">Gist</a>.</noscript></div>`,
		html.EscapeString(scriptURL), html.EscapeString(page))
}

func resolveReference(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

func (r *EmbedResolver) record(kind string, resolved bool) {
	if r.recorder != nil {
		r.recorder.RecordEmbed(kind, resolved)
	}
}
