package infrastructure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/vidgrab/vidgrab/internal/domain"
)

var errNoEmbed = errors.New("no embed metadata found")

// ParseEmbed extracts the canonical link, video id and thumbnail from the
// embed markup returned with a TikTok or Instagram preview
func ParseEmbed(markup string) (*domain.EmbedInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse embed markup: %w", err)
	}

	info := &domain.EmbedInfo{}

	quote := doc.Find("blockquote").First()
	if quote.Length() > 0 {
		info.CiteURL = attr(quote, "cite", "data-instgrm-permalink")
		info.VideoID = attr(quote, "data-video-id")
	}
	if info.CiteURL == "" {
		info.CiteURL = attr(doc.Find("iframe[src]").First(), "src")
	}
	info.ThumbnailURL = attr(doc.Find("img[src]").First(), "src")

	if *info == (domain.EmbedInfo{}) {
		return nil, errNoEmbed
	}
	return info, nil
}

// attr returns the first non-empty attribute among names
func attr(sel *goquery.Selection, names ...string) string {
	for _, name := range names {
		if value, ok := sel.Attr(name); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
