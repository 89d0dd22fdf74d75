// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package feed

import (
	"bytes"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Item is one parsed feed entry with newswire's field selection applied.
type Item struct {
	Title       string
	Link        string
	Creator     string
	Description string
	// Content carries the full item body when the feed publishes one
	// (content:encoded in RSS, content in Atom). Empty otherwise.
	Content   string
	Category  string
	Published time.Time // zero when absent or unparseable
}

// fallbackDateFormats covers publisher date strings gofeed does not parse.
var fallbackDateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05",
}

// Parser parses RSS and Atom feed documents into items.
type Parser struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

// NewParser creates a feed Parser.
func NewParser() *Parser {
	return &Parser{
		parser: gofeed.NewParser(),
		logger: slog.Default().With("component", "feed_parser"),
	}
}

// Parse parses a raw feed document. Documents that are not XML at all (error
// pages served with status 200, for example) yield zero items rather than an
// error, so one bad response cannot abort a batch.
//
// When keywordCategories is set, the item category is read from the
// media:keywords extension instead of the category list.
func (p *Parser) Parse(raw []byte, keywordCategories bool) ([]Item, error) {
	if !looksLikeXML(raw) {
		p.logger.Warn("skipping non-XML feed document", "bytes", len(raw))
		return nil, nil
	}

	parsed, err := p.parser.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry == nil || entry.Link == "" {
			continue
		}
		items = append(items, Item{
			Title:       strings.TrimSpace(entry.Title),
			Link:        strings.TrimSpace(entry.Link),
			Creator:     itemCreator(entry),
			Description: strings.TrimSpace(entry.Description),
			Content:     strings.TrimSpace(entry.Content),
			Category:    itemCategory(entry, keywordCategories),
			Published:   itemPublished(entry),
		})
	}
	return items, nil
}

// looksLikeXML checks the leading bytes of a document for an XML opening.
func looksLikeXML(raw []byte) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n\xef\xbb\xbf")
	return len(trimmed) > 0 && trimmed[0] == '<'
}

func itemCreator(item *gofeed.Item) string {
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		return strings.TrimSpace(strings.Join(item.DublinCoreExt.Creator, ", "))
	}
	if item.Author != nil {
		return strings.TrimSpace(item.Author.Name)
	}
	return ""
}

func itemCategory(item *gofeed.Item, keywordCategories bool) string {
	if keywordCategories {
		if media, ok := item.Extensions["media"]; ok {
			if keywords, ok := media["keywords"]; ok && len(keywords) > 0 {
				return strings.TrimSpace(keywords[0].Value)
			}
		}
		return ""
	}
	return strings.TrimSpace(strings.Join(item.Categories, ", "))
}

func itemPublished(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.Published != "" {
		for _, format := range fallbackDateFormats {
			if t, err := time.Parse(format, item.Published); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}
