package vsync

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/newswire/core"
)

func chunkTestArticle() *core.Article {
	return &core.Article{
		UUID:          "11111111-2222-3333-4444-555555555555",
		Link:          "https://example.com/story",
		SourceFeedURL: "https://example.com/feed.xml",
		Domain:        "example.com",
		Title:         "Short Title",
		Creator:       "A. Writer",
		Description:   "A short description of the story.",
		Content:       "Body content of the story with several words in it.",
		ContentSource: core.ContentSourceFetched,
		Category:      "news,tech",
		Language:      "eng",
		WordCount:     10,
		PublishedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		FetchedAt:     time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
	}
}

func TestBuildChunks_SingleChunk(t *testing.T) {
	article := chunkTestArticle()

	chunks := BuildChunks(article, DefaultWordBudget)
	require.Len(t, chunks, 1)

	c := chunks[0]
	assert.Equal(t, article.UUID+"_chunk_0", c.ID)
	assert.Equal(t, 0, c.Index)
	assert.Equal(t, 1, c.Total)
	assert.Contains(t, c.Text, article.Title)
	assert.Contains(t, c.Text, article.Content)
}

func TestBuildChunks_SplitsAtWordBudget(t *testing.T) {
	article := chunkTestArticle()
	article.Title = ""
	article.Description = ""
	article.Content = strings.TrimSpace(strings.Repeat("word ", 12000))

	chunks := BuildChunks(article, 5500)
	require.Len(t, chunks, 3, "12000 words at 5500 per chunk should yield 3 chunks")

	assert.Equal(t, article.UUID+"_chunk_0", chunks[0].ID)
	assert.Equal(t, article.UUID+"_chunk_1", chunks[1].ID)
	assert.Equal(t, article.UUID+"_chunk_2", chunks[2].ID)
	for _, c := range chunks {
		assert.Equal(t, 3, c.Total)
		assert.LessOrEqual(t, len([]rune(c.Text)), 8000)
	}
	// 5500 five-char words overflow the character cap, so the full chunks
	// keep only the words that fit within it.
	assert.Equal(t, 1600, len(strings.Fields(chunks[0].Text)))
	assert.Equal(t, 1600, len(strings.Fields(chunks[1].Text)))
	assert.Equal(t, 1000, len(strings.Fields(chunks[2].Text)))
}

func TestBuildChunks_EmptyArticle(t *testing.T) {
	article := chunkTestArticle()
	article.Title = ""
	article.Description = ""
	article.Content = ""

	chunks := BuildChunks(article, DefaultWordBudget)
	assert.Empty(t, chunks, "article with no text should yield no chunks")
}

func TestBuildChunks_MetadataTruncation(t *testing.T) {
	article := chunkTestArticle()
	article.Title = strings.Repeat("t", 600)
	article.Description = strings.Repeat("d", 1500)
	article.Content = strings.Repeat("c", 3000)
	article.Category = strings.Repeat("k", 400)

	chunks := BuildChunks(article, DefaultWordBudget)
	require.Len(t, chunks, 1)

	meta := chunks[0].Metadata
	assert.Len(t, meta["title"], 500)
	assert.Len(t, meta["description"], 1000)
	assert.Len(t, meta["content"], 2000)
	assert.Len(t, meta["category"], 300)
	assert.Equal(t, article.UUID, meta["uuid"])
	assert.Equal(t, article.Link, meta["url"])
	assert.Equal(t, 0, meta["chunk_index"])
	assert.Equal(t, 1, meta["total_chunks"])
	assert.Equal(t, "2025-06-01T12:00:00Z", meta["pub_date"])
}

func TestBuildChunks_ZeroPublishedAt(t *testing.T) {
	article := chunkTestArticle()
	article.PublishedAt = time.Time{}

	chunks := BuildChunks(article, DefaultWordBudget)
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].Metadata["pub_date"])
}

func TestBuildChunks_ChunkTextCap(t *testing.T) {
	article := chunkTestArticle()
	article.Title = ""
	article.Description = ""
	// 3000 ten-char words is under the word budget but over the char cap.
	article.Content = strings.TrimSpace(strings.Repeat("abcdefghi ", 3000))

	chunks := BuildChunks(article, DefaultWordBudget)
	require.Len(t, chunks, 1)
	assert.LessOrEqual(t, len(chunks[0].Text), 8000)
}
