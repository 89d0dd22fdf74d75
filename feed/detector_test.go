package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"collapses inter-tag whitespace", "<rss>\n  <channel>\n  </channel>\n</rss>", "<rss><channel></channel></rss>"},
		{"trims document", "  \n<rss></rss>\n  ", "<rss></rss>"},
		{"text content untouched", "<title>two  words</title>", "<title>two  words</title>"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(Canonicalize([]byte(tt.raw))))
		})
	}
}

func TestDetect_FirstSightIsChanged(t *testing.T) {
	digest, changed := Detect([]byte("<rss><item>a</item></rss>"), "")
	assert.True(t, changed)
	assert.NotEmpty(t, digest)
}

func TestDetect_UnchangedDocument(t *testing.T) {
	doc := []byte("<rss><item>a</item></rss>")
	digest, _ := Detect(doc, "")

	again, changed := Detect(doc, digest)
	assert.False(t, changed)
	assert.Equal(t, digest, again)
}

func TestDetect_ReformattedDocumentUnchanged(t *testing.T) {
	compact := []byte("<rss><item>a</item></rss>")
	indented := []byte("<rss>\n  <item>a</item>\n</rss>\n")

	digest, _ := Detect(compact, "")
	_, changed := Detect(indented, digest)
	assert.False(t, changed, "indentation alone should not count as a change")
}

func TestDetect_ContentChange(t *testing.T) {
	digest, _ := Detect([]byte("<rss><item>a</item></rss>"), "")
	next, changed := Detect([]byte("<rss><item>b</item></rss>"), digest)
	assert.True(t, changed)
	assert.NotEqual(t, digest, next)
}
