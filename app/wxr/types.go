package wxr

import (
	"errors"
	"time"
)

const (
	DomainCategory = "category"
	DomainTag      = "post_tag"
)

// ErrMetadataMissing marks a post page lacking a field every item needs.
var ErrMetadataMissing = errors.New("post metadata missing")

type Category struct {
	Label    string
	Nicename string
	Domain   string
}

// PostRecord is one assembled post, ready to be written as a feed item.
type PostRecord struct {
	SourceURL   string
	Slug        string // new permalink path without the leading slash
	Title       string
	Author      string
	PublishedAt time.Time // UTC
	Content     string
	Categories  []Category
}

// PubDate renders the item date in RFC 1123 form with a numeric zone.
func (p *PostRecord) PubDate() string {
	return p.PublishedAt.UTC().Format(time.RFC1123Z)
}

// PostDateGMT renders the date WordPress stores as post_date_gmt.
func (p *PostRecord) PostDateGMT() string {
	return p.PublishedAt.UTC().Format("2006-01-02 15:04:05")
}
