package medium

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxHeadingLevel is the deepest heading HTML has.
const maxHeadingLevel = 6

// headingShift is how far headings move down: the destination theme keeps
// h1 and h2 for page and post titles.
const headingShift = 2

var spaceRun = regexp.MustCompile(`\s+`)

// stripAttributes removes the named attributes from every descendant of root.
func stripAttributes(root *html.Node, names ...string) {
	var stack []*html.Node
	for c := root.LastChild; c != nil; c = c.PrevSibling {
		stack = append(stack, c)
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Type == html.ElementNode {
			n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
				return slices.Contains(names, a.Key)
			})
		}

		for c := n.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
}

// collapseLineBreaks replaces every <br> inside a paragraph with a space.
func collapseLineBreaks(body *goquery.Selection) {
	for _, br := range body.Find("p br").Nodes {
		if br.Parent == nil {
			continue
		}
		br.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: " "}, br)
		br.Parent.RemoveChild(br)
	}
}

// demoteHeadings renames h<N> to h<N+2>, stopping at h6.
func demoteHeadings(body *goquery.Selection) {
	for _, n := range body.Find("h1, h2, h3, h4, h5, h6").Nodes {
		tag := fmt.Sprintf("h%d", demotedLevel(int(n.Data[1]-'0')))
		n.Data = tag
		n.DataAtom = atom.Lookup([]byte(tag))
	}
}

func demotedLevel(level int) int {
	return min(level+headingShift, maxHeadingLevel)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
