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


package vsync

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/newswire/core"
)

// DefaultWordBudget is the maximum words embedded as a single chunk.
const DefaultWordBudget = 5500

// Metadata field caps. Vector store metadata stays compact; the full text
// lives in the article store.
const (
	maxMetaTitle       = 500
	maxMetaDescription = 1000
	maxMetaContent     = 2000
	maxMetaCategory    = 300
)

// maxChunkChars caps the text sent to the embedding service per chunk.
const maxChunkChars = 8000

// minChunkChars drops chunks too short to carry signal.
const minChunkChars = 10

// Chunk is one embeddable slice of an article.
type Chunk struct {
	// ID is "<article-uuid>_chunk_<index>".
	ID          string
	ArticleUUID string
	Index       int
	Total       int
	Text        string
	Metadata    map[string]any
}

// BuildChunks splits an article into embeddable chunks. The embedded text
// is title, description and content joined by spaces; articles within the
// word budget become a single chunk, larger ones are cut at word
// boundaries. Chunks below minChunkChars are dropped, so an article with
// no usable text yields no chunks.
func BuildChunks(article *core.Article, wordBudget int) []Chunk {
	if wordBudget <= 0 {
		wordBudget = DefaultWordBudget
	}

	text := strings.TrimSpace(strings.Join([]string{
		article.Title, article.Description, article.Content,
	}, " "))
	words := strings.Fields(text)

	var texts []string
	if len(words) <= wordBudget {
		texts = []string{truncateChars(text, maxChunkChars)}
	} else {
		for i := 0; i < len(words); i += wordBudget {
			end := i + wordBudget
			if end > len(words) {
				end = len(words)
			}
			texts = append(texts, truncateChars(strings.Join(words[i:end], " "), maxChunkChars))
		}
	}

	total := len(texts)
	chunks := make([]Chunk, 0, total)
	for idx, t := range texts {
		if len(strings.TrimSpace(t)) < minChunkChars {
			continue
		}
		chunks = append(chunks, Chunk{
			ID:          ChunkID(article.UUID, idx),
			ArticleUUID: article.UUID,
			Index:       idx,
			Total:       total,
			Text:        t,
			Metadata:    chunkMetadata(article, idx, total),
		})
	}
	return chunks
}

// ChunkID builds the vector id for one chunk of an article.
func ChunkID(articleUUID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", articleUUID, index)
}

func chunkMetadata(article *core.Article, index, total int) map[string]any {
	pubDate := ""
	if !article.PublishedAt.IsZero() {
		pubDate = article.PublishedAt.Format(time.RFC3339)
	}
	fetchedAt := ""
	if !article.FetchedAt.IsZero() {
		fetchedAt = article.FetchedAt.Format(time.RFC3339)
	}
	return map[string]any{
		"uuid":         article.UUID,
		"url":          article.Link,
		"title":        truncateChars(article.Title, maxMetaTitle),
		"pub_date":     pubDate,
		"description":  truncateChars(article.Description, maxMetaDescription),
		"content":      truncateChars(article.Content, maxMetaContent),
		"category":     truncateChars(article.Category, maxMetaCategory),
		"language":     article.Language,
		"source_url":   article.SourceFeedURL,
		"domain":       article.Domain,
		"fetched_at":   fetchedAt,
		"word_count":   article.WordCount,
		"creator":      article.Creator,
		"chunk_index":  index,
		"total_chunks": total,
	}
}

// truncateChars cuts s to at most n runes.
func truncateChars(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
