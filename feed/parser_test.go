package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
     xmlns:dc="http://purl.org/dc/elements/1.1/"
     xmlns:content="http://purl.org/rss/1.0/modules/content/"
     xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>Example Feed</title>
    <item>
      <title>First story</title>
      <link>https://example.com/first</link>
      <description>Summary of the first story</description>
      <dc:creator>Jane Writer</dc:creator>
      <category>business</category>
      <category>markets</category>
      <content:encoded><![CDATA[<p>Full body of the first story.</p>]]></content:encoded>
      <pubDate>Mon, 02 Jun 2025 09:30:00 +0000</pubDate>
    </item>
    <item>
      <title>Second story</title>
      <link>https://example.com/second</link>
      <description>No content, no date</description>
      <media:keywords>science, research</media:keywords>
    </item>
    <item>
      <title>No link, skipped</title>
      <description>Items without links are dropped</description>
    </item>
  </channel>
</rss>`

func TestParse_RSS(t *testing.T) {
	items, err := NewParser().Parse([]byte(sampleRSS), false)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "First story", first.Title)
	assert.Equal(t, "https://example.com/first", first.Link)
	assert.Equal(t, "Jane Writer", first.Creator)
	assert.Equal(t, "Summary of the first story", first.Description)
	assert.Contains(t, first.Content, "Full body of the first story")
	assert.Equal(t, "business, markets", first.Category)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC), first.Published)

	second := items[1]
	assert.Empty(t, second.Content)
	assert.True(t, second.Published.IsZero())
}

func TestParse_KeywordCategories(t *testing.T) {
	items, err := NewParser().Parse([]byte(sampleRSS), true)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Category comes from media:keywords, not the category list.
	assert.Empty(t, items[0].Category)
	assert.Equal(t, "science, research", items[1].Category)
}

func TestParse_NonXML(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"html error page body", []byte("Service temporarily unavailable")},
		{"empty document", []byte("")},
		{"json response", []byte(`{"error": "not found"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := NewParser().Parse(tt.raw, false)
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestDetect(t *testing.T) {
	raw := []byte("<rss>\n  <channel>\n    <item/>\n  </channel>\n</rss>")
	reformatted := []byte("<rss><channel><item/></channel></rss>\n")
	different := []byte("<rss><channel><item/><item/></channel></rss>")

	digest, changed := Detect(raw, "")
	assert.True(t, changed, "a feed with no prior fingerprint counts as changed")
	assert.NotEmpty(t, digest)

	// Whitespace-only reformatting does not count as a change.
	digest2, changed := Detect(reformatted, digest)
	assert.False(t, changed)
	assert.Equal(t, digest, digest2)

	_, changed = Detect(different, digest)
	assert.True(t, changed)
}

func TestGoogleNewsSearchURL(t *testing.T) {
	url := GoogleNewsSearchURL("artificial intelligence")
	assert.Contains(t, url, "news.google.com/rss/search")
	assert.Contains(t, url, "q=artificial+intelligence")
	assert.Contains(t, url, "ceid=US%3Aen")
}

func TestIsGoogleNewsLink(t *testing.T) {
	assert.True(t, IsGoogleNewsLink("https://news.google.com/rss/articles/CBMi"))
	assert.True(t, IsGoogleNewsLink("https://www.news.google.com/articles/x"))
	assert.False(t, IsGoogleNewsLink("https://example.com/story"))
	assert.False(t, IsGoogleNewsLink("://broken"))
}
