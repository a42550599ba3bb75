package wxr

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"fmt"
	"html"
	"os"
	"strings"
)

//go:embed skeleton.xml
var defaultSkeleton string

const channelEnd = "</channel>"

// LoadSkeleton reads the feed skeleton at path, or returns the embedded one
// when path is empty.
func LoadSkeleton(path string) (string, error) {
	if path == "" {
		return defaultSkeleton, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read feed template: %w", err)
	}
	return string(data), nil
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run writes one <item> per record into the skeleton's channel, after any
// channel metadata already present.
func (g *Generator) Run(skeleton string, records []*PostRecord) (string, error) {
	idx := strings.LastIndex(skeleton, channelEnd)
	if idx < 0 {
		return "", fmt.Errorf("feed template has no %s element", channelEnd)
	}

	var buf bytes.Buffer
	buf.WriteString(strings.TrimRight(skeleton[:idx], " \t"))
	for _, record := range records {
		g.writeItem(&buf, record)
	}
	buf.WriteString("  ")
	buf.WriteString(skeleton[idx:])

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, record *PostRecord) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", record.Title, 6)
	g.writeElement(buf, "pubDate", record.PubDate(), 6)
	g.writeElement(buf, "dc:creator", record.Author, 6)
	g.writeCDATA(buf, "content:encoded", record.Content, 6)
	g.writeCDATA(buf, "excerpt:encoded", "", 6)
	g.writeElement(buf, "wp:post_date_gmt", record.PostDateGMT(), 6)
	g.writeElement(buf, "wp:post_name", record.Slug, 6)
	g.writeElement(buf, "wp:status", "publish", 6)
	g.writeElement(buf, "wp:post_type", "post", 6)

	for _, category := range record.Categories {
		if category.Label == "" {
			continue
		}
		buf.WriteString(fmt.Sprintf("      <category domain=\"%s\" nicename=\"%s\">",
			html.EscapeString(category.Domain),
			html.EscapeString(category.Nicename)))
		writeCDATAText(buf, category.Label)
		buf.WriteString("</category>\n")
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

// writeCDATA always writes the element, empty content included.
func (g *Generator) writeCDATA(buf *bytes.Buffer, tag, content string, indent int) {
	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	writeCDATAText(buf, content)
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

// writeCDATAText wraps s in a CDATA section, splitting any "]]>" it contains.
func writeCDATAText(buf *bytes.Buffer, s string) {
	buf.WriteString("<![CDATA[")
	buf.WriteString(strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>"))
	buf.WriteString("]]>")
}
