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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/feed"
	"github.com/poiesic/newswire/storage/badger"
)

type fakeExtractor struct {
	mu      sync.Mutex
	content string
	err     error
	calls   []string
}

func (f *fakeExtractor) Extract(ctx context.Context, pageURL string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pageURL)
	if f.err != nil {
		return "", "", f.err
	}
	return f.content, "readability", nil
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeResolver struct {
	resolved string
	err      error
}

func (f *fakeResolver) Resolve(ctx context.Context, link string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.resolved, nil
}

type pipelineFixture struct {
	repos     *badger.MemoryRepositories
	archive   *feed.Archive
	extractor *fakeExtractor
	pipeline  *Pipeline
	source    Source
}

func newPipelineFixture(t *testing.T, opts ...Option) *pipelineFixture {
	t.Helper()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	archive, err := feed.NewArchive(t.TempDir())
	require.NoError(t, err)

	extractor := &fakeExtractor{content: strings.Repeat("extracted body text ", 20)}

	opts = append([]Option{WithPoolSize(2)}, opts...)
	pipeline, err := NewPipeline(repos.Articles, repos.Failures, archive, extractor, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &pipelineFixture{
		repos:     repos,
		archive:   archive,
		extractor: extractor,
		pipeline:  pipeline,
		source:    Source{Name: "example.com", FeedURL: "https://example.com/feed.xml"},
	}
}

type rssItem struct {
	title   string
	link    string
	content string
}

func rssDocument(items ...rssItem) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sb.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/"><channel>`)
	sb.WriteString(`<title>Example Feed</title><link>https://example.com</link>`)
	for _, item := range items {
		sb.WriteString("<item>")
		fmt.Fprintf(&sb, "<title>%s</title><link>%s</link>", item.title, item.link)
		sb.WriteString("<description>An item description.</description>")
		if item.content != "" {
			fmt.Fprintf(&sb, "<content:encoded><![CDATA[%s]]></content:encoded>", item.content)
		}
		sb.WriteString("</item>")
	}
	sb.WriteString(`</channel></rss>`)
	return []byte(sb.String())
}

func TestPipeline_InlineContent(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)

	doc := rssDocument(rssItem{
		title:   "Inline Story",
		link:    "https://example.com/inline",
		content: "<p>First paragraph.</p><p>Second <strong>bold</strong> paragraph.</p>",
	})
	_, err := f.archive.Save(f.source.Name, doc)
	require.NoError(t, err)

	stats, err := f.pipeline.ProcessSource(ctx, f.source)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 0, f.extractor.callCount(), "inline content must not trigger extraction")

	article, err := f.repos.Articles.GetArticleByLink(ctx, "https://example.com/inline")
	require.NoError(t, err)
	assert.Equal(t, core.ContentSourceInline, article.ContentSource)
	assert.Contains(t, article.Content, "First paragraph.")
	assert.Contains(t, article.Content, "**bold**")
	assert.Equal(t, "example.com", article.Domain)
	assert.Equal(t, f.source.FeedURL, article.SourceFeedURL)
	assert.NotZero(t, article.WordCount)
}

func TestPipeline_FetchedContent(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)

	doc := rssDocument(rssItem{title: "Fetched Story", link: "https://example.com/fetched"})
	_, err := f.archive.Save(f.source.Name, doc)
	require.NoError(t, err)

	stats, err := f.pipeline.ProcessSource(ctx, f.source)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, f.extractor.callCount())

	article, err := f.repos.Articles.GetArticleByLink(ctx, "https://example.com/fetched")
	require.NoError(t, err)
	assert.Equal(t, core.ContentSourceFetched, article.ContentSource)
	assert.Equal(t, f.extractor.content, article.Content)
}

func TestPipeline_ExtractionFailureStoresArticleAndLedger(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	f.extractor.err = errors.New("all strategies exhausted")

	doc := rssDocument(rssItem{title: "Broken Story", link: "https://example.com/broken"})
	_, err := f.archive.Save(f.source.Name, doc)
	require.NoError(t, err)

	stats, err := f.pipeline.ProcessSource(ctx, f.source)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, stats.Processed)

	article, err := f.repos.Articles.GetArticleByLink(ctx, "https://example.com/broken")
	require.NoError(t, err, "failed extraction still stores the article")
	assert.Equal(t, core.ContentSourceFetchFailed, article.ContentSource)
	assert.Empty(t, article.Content)
	assert.Zero(t, article.WordCount)

	failures, err := f.repos.Failures.ListArticleFailures(ctx)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "content_extraction_failed", failures[0].ErrorType)
	assert.Equal(t, article.UUID, failures[0].UUID)
}

func TestPipeline_SecondRunSkipsKnownLinks(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)

	doc := rssDocument(
		rssItem{title: "One", link: "https://example.com/one"},
		rssItem{title: "Two", link: "https://example.com/two"},
	)
	_, err := f.archive.Save(f.source.Name, doc)
	require.NoError(t, err)

	stats, err := f.pipeline.ProcessSource(ctx, f.source)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed)

	callsAfterFirst := f.extractor.callCount()

	stats, err = f.pipeline.ProcessSource(ctx, f.source)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Processed)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, callsAfterFirst, f.extractor.callCount(),
		"no extraction when every link is known")

	count, err := f.repos.Articles.CountArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPipeline_DuplicateLinkAcrossFiles(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)

	_, err := f.archive.Save(f.source.Name, rssDocument(
		rssItem{title: "Same", link: "https://example.com/same"},
	))
	require.NoError(t, err)
	_, err = f.archive.Save(f.source.Name, rssDocument(
		rssItem{title: "Same", link: "https://example.com/same"},
		rssItem{title: "Fresh", link: "https://example.com/fresh"},
	))
	require.NoError(t, err)

	stats, err := f.pipeline.ProcessSource(ctx, f.source)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Processed, "shared link processed once")
	assert.Equal(t, 1, stats.Skipped)

	count, err := f.repos.Articles.CountArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPipeline_GoogleNewsLinkResolved(t *testing.T) {
	ctx := context.Background()
	resolver := &fakeResolver{resolved: "https://publisher.example.com/story"}
	f := newPipelineFixture(t, WithResolver(resolver))

	doc := rssDocument(rssItem{
		title: "Aggregated",
		link:  "https://news.google.com/rss/articles/abc123",
	})
	_, err := f.archive.Save(f.source.Name, doc)
	require.NoError(t, err)

	stats, err := f.pipeline.ProcessSource(ctx, f.source)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)

	article, err := f.repos.Articles.GetArticleByLink(ctx, resolver.resolved)
	require.NoError(t, err, "resolved URL replaces the aggregator link")
	assert.Equal(t, "publisher.example.com", article.Domain)

	require.Equal(t, 1, f.extractor.callCount())
	assert.Equal(t, resolver.resolved, f.extractor.calls[0])
}

func TestPipeline_GoogleNewsResolutionFailure(t *testing.T) {
	ctx := context.Background()
	resolver := &fakeResolver{err: errors.New("link did not leave news.google.com after 3 attempts")}
	f := newPipelineFixture(t, WithResolver(resolver))

	doc := rssDocument(rssItem{
		title: "Aggregated",
		link:  "https://news.google.com/rss/articles/abc123",
	})
	_, err := f.archive.Save(f.source.Name, doc)
	require.NoError(t, err)

	stats, err := f.pipeline.ProcessSource(ctx, f.source)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)

	count, err := f.repos.Articles.CountArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "unresolved aggregator item is not stored")

	failures, err := f.repos.Failures.ListArticleFailures(ctx)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "url_resolution_failed", failures[0].ErrorType)
}

func TestPipeline_EmptyArchive(t *testing.T) {
	f := newPipelineFixture(t)

	stats, err := f.pipeline.ProcessSource(context.Background(), f.source)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestNewPipeline_Validation(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	archive, err := feed.NewArchive(t.TempDir())
	require.NoError(t, err)

	_, err = NewPipeline(nil, repos.Failures, archive, &fakeExtractor{})
	assert.ErrorIs(t, err, ErrArticleRepositoryRequired)

	_, err = NewPipeline(repos.Articles, nil, archive, &fakeExtractor{})
	assert.ErrorIs(t, err, ErrFailureRepositoryRequired)

	_, err = NewPipeline(repos.Articles, repos.Failures, nil, &fakeExtractor{})
	assert.ErrorIs(t, err, ErrArchiveRequired)

	_, err = NewPipeline(repos.Articles, repos.Failures, archive, nil)
	assert.ErrorIs(t, err, ErrExtractorRequired)
}
