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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/newswire/ai"
	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/storage"
	"github.com/poiesic/newswire/vector"
)

const (
	defaultBatchSize      = 10
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 2 * time.Second

	errTypeEmbedding = "EmbeddingGenerationError"
	errTypeUpsert    = "VectorUpsertError"
)

// Options configures a Syncer. Zero values fall back to defaults.
type Options struct {
	// BatchSize is the number of articles embedded and upserted together.
	BatchSize int

	// WordBudget is the maximum words per chunk.
	WordBudget int

	// MaxRetries bounds embedding API retry attempts per batch.
	MaxRetries int

	// RetryBaseDelay is the base delay for embedding retry backoff.
	RetryBaseDelay time.Duration

	// ProgressWriter receives periodic progress lines when set.
	ProgressWriter io.Writer

	Logger *slog.Logger
}

// Stats summarizes one sync or retry run.
type Stats struct {
	// Total is the number of articles considered.
	Total int
	// Synced is the number of articles newly written to the vector store.
	Synced int
	// AlreadySynced is the number short-circuited by an existing synced record.
	AlreadySynced int
	// Skipped is the number with no embeddable text.
	Skipped int
	// Failed is the number whose batch failed to embed or upsert.
	Failed int
}

// Syncer pushes stored articles into the vector store and maintains the
// per-namespace sync records and the chunk failure ledger.
type Syncer struct {
	articles    storage.ArticleRepository
	syncRecords storage.SyncRepository
	failures    storage.FailureRepository
	embedder    ai.Embedder
	store       vector.Store

	batchSize      int
	wordBudget     int
	maxRetries     int
	retryBaseDelay time.Duration
	progressWriter io.Writer
	logger         *slog.Logger
}

// NewSyncer creates a syncer over the given repositories, embedder and
// vector store.
func NewSyncer(articles storage.ArticleRepository, syncRecords storage.SyncRepository,
	failures storage.FailureRepository, embedder ai.Embedder, store vector.Store, opts Options) *Syncer {

	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.WordBudget <= 0 {
		opts.WordBudget = DefaultWordBudget
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = defaultRetryBaseDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Syncer{
		articles:       articles,
		syncRecords:    syncRecords,
		failures:       failures,
		embedder:       embedder,
		store:          store,
		batchSize:      opts.BatchSize,
		wordBudget:     opts.WordBudget,
		maxRetries:     opts.MaxRetries,
		retryBaseDelay: opts.RetryBaseDelay,
		progressWriter: opts.ProgressWriter,
		logger:         logger.With("component", "vsync"),
	}
}

// Sync embeds and upserts all pending articles into namespace. A limit > 0
// caps how many stored articles are considered. Articles whose sync record
// is already synced are skipped without any embedding calls.
func (s *Syncer) Sync(ctx context.Context, namespace string, limit int) (Stats, error) {
	var stats Stats
	if namespace == "" {
		return stats, fmt.Errorf("namespace is required")
	}

	articles, err := s.articles.ListArticles(ctx, limit)
	if err != nil {
		return stats, fmt.Errorf("failed to list articles: %w", err)
	}
	stats.Total = len(articles)
	if len(articles) == 0 {
		s.logger.Info("no articles to sync", "namespace", namespace)
		return stats, nil
	}

	pending := make([]*core.Article, 0, len(articles))
	for _, article := range articles {
		record, err := s.syncRecords.GetSyncRecord(ctx, article.UUID, namespace)
		switch {
		case err == nil && record.Status == core.SyncStatusSynced:
			stats.AlreadySynced++
		case err == nil || errors.Is(err, storage.ErrNotFound):
			pending = append(pending, article)
		default:
			return stats, fmt.Errorf("failed to read sync record for %s: %w", article.UUID, err)
		}
	}

	if len(pending) == 0 {
		s.logger.Info("all articles already synced", "namespace", namespace, "total", stats.Total)
		return stats, nil
	}
	s.logger.Info("syncing articles",
		"namespace", namespace, "pending", len(pending), "alreadySynced", stats.AlreadySynced)

	var progress *ProgressTracker
	if s.progressWriter != nil {
		progress = NewProgressTracker(s.progressWriter, len(pending), s.batchSize)
		progress.Start()
		defer progress.Finish()
	}

	for start := 0; start < len(pending); start += s.batchSize {
		end := start + s.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		if err := s.syncBatch(ctx, namespace, pending[start:end], &stats); err != nil {
			return stats, err
		}
		if progress != nil {
			progress.Increment(end - start)
		}
	}

	s.logger.Info("sync complete", "namespace", namespace,
		"synced", stats.Synced, "failed", stats.Failed,
		"skipped", stats.Skipped, "alreadySynced", stats.AlreadySynced)
	return stats, nil
}

// RetryFailed re-resolves the distinct articles named in the chunk failure
// ledger and pushes them through the normal sync path. Ledger entries are
// cleared for every article that syncs successfully.
func (s *Syncer) RetryFailed(ctx context.Context, namespace string) (Stats, error) {
	var stats Stats
	if namespace == "" {
		return stats, fmt.Errorf("namespace is required")
	}

	failedChunks, err := s.failures.ListChunkFailures(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list chunk failures: %w", err)
	}
	if len(failedChunks) == 0 {
		s.logger.Info("no failed chunks to retry", "namespace", namespace)
		return stats, nil
	}

	seen := make(map[string]bool)
	uuids := make([]string, 0, len(failedChunks))
	for _, fc := range failedChunks {
		if !seen[fc.ArticleUUID] {
			seen[fc.ArticleUUID] = true
			uuids = append(uuids, fc.ArticleUUID)
		}
	}
	s.logger.Info("retrying failed articles",
		"namespace", namespace, "chunks", len(failedChunks), "articles", len(uuids))

	articles, err := s.articles.GetArticles(ctx, uuids...)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch articles for retry: %w", err)
	}
	stats.Total = len(articles)

	for start := 0; start < len(articles); start += s.batchSize {
		end := start + s.batchSize
		if end > len(articles) {
			end = len(articles)
		}
		if err := s.syncBatch(ctx, namespace, articles[start:end], &stats); err != nil {
			return stats, err
		}
	}

	s.logger.Info("retry complete", "namespace", namespace,
		"synced", stats.Synced, "failed", stats.Failed, "skipped", stats.Skipped)
	return stats, nil
}

// batchEntry pairs an article with its chunks for one batch pass.
type batchEntry struct {
	article *core.Article
	chunks  []Chunk
}

// syncBatch embeds and upserts one batch of articles. Embed or upsert
// failure marks every article in the batch failed and records one failure
// ledger entry per chunk; the run itself continues. Only context
// cancellation is returned as an error.
func (s *Syncer) syncBatch(ctx context.Context, namespace string, batch []*core.Article, stats *Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries := make([]batchEntry, 0, len(batch))
	var texts []string
	for _, article := range batch {
		chunks := BuildChunks(article, s.wordBudget)
		if len(chunks) == 0 {
			stats.Skipped++
			s.logger.Debug("skipping article with no embeddable text", "uuid", article.UUID)
			continue
		}
		entries = append(entries, batchEntry{article: article, chunks: chunks})
		for _, c := range chunks {
			texts = append(texts, c.Text)
		}
	}
	if len(entries) == 0 {
		return nil
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		embeddings, embedErr = s.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, s.maxRetries, s.retryBaseDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.markBatchFailed(ctx, namespace, entries, errTypeEmbedding, err)
		stats.Failed += len(entries)
		return nil
	}
	if len(embeddings) != len(texts) {
		err := fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(embeddings))
		s.markBatchFailed(ctx, namespace, entries, errTypeEmbedding, err)
		stats.Failed += len(entries)
		return nil
	}

	vectors := make([]vector.Vector, 0, len(texts))
	pos := 0
	for _, entry := range entries {
		for _, c := range entry.chunks {
			vectors = append(vectors, vector.Vector{
				ID:          c.ID,
				Values:      embeddings[pos],
				ArticleUUID: c.ArticleUUID,
				ChunkIndex:  int64(c.Index),
				Title:       truncateChars(entry.article.Title, maxMetaTitle),
				Text:        c.Text,
				Metadata:    c.Metadata,
			})
			pos++
		}
	}

	if err := s.store.Upsert(ctx, namespace, vectors); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.markBatchFailed(ctx, namespace, entries, errTypeUpsert, err)
		stats.Failed += len(entries)
		return nil
	}

	now := time.Now()
	for _, entry := range entries {
		record := &core.SyncRecord{
			ArticleUUID:  entry.article.UUID,
			Namespace:    namespace,
			Status:       core.SyncStatusSynced,
			VectorID:     ChunkID(entry.article.UUID, 0),
			TotalChunks:  len(entry.chunks),
			SyncedChunks: len(entry.chunks),
			SyncedAt:     now,
		}
		if err := s.syncRecords.PutSyncRecord(ctx, record); err != nil {
			s.logger.Error("failed to mark article synced", "uuid", entry.article.UUID, "error", err)
			continue
		}
		if err := s.failures.ClearChunkFailures(ctx, entry.article.UUID); err != nil {
			s.logger.Warn("failed to clear chunk failures", "uuid", entry.article.UUID, "error", err)
		}
		stats.Synced++
	}
	s.logger.Debug("batch synced", "namespace", namespace,
		"articles", len(entries), "vectors", len(vectors))
	return nil
}

// markBatchFailed records a failed sync record per article and a ledger
// entry per chunk. Bookkeeping errors are logged, not returned; the
// original failure is what matters.
func (s *Syncer) markBatchFailed(ctx context.Context, namespace string, entries []batchEntry, errType string, cause error) {
	s.logger.Error("batch failed", "namespace", namespace,
		"articles", len(entries), "errorType", errType, "error", cause)

	for _, entry := range entries {
		record := &core.SyncRecord{
			ArticleUUID:  entry.article.UUID,
			Namespace:    namespace,
			Status:       core.SyncStatusFailed,
			TotalChunks:  len(entry.chunks),
			ErrorMessage: cause.Error(),
		}
		if err := s.syncRecords.PutSyncRecord(ctx, record); err != nil {
			s.logger.Error("failed to mark article failed", "uuid", entry.article.UUID, "error", err)
		}
		for _, c := range entry.chunks {
			failure := &core.FailedChunk{
				ArticleUUID:  c.ArticleUUID,
				ChunkIndex:   c.Index,
				TotalChunks:  c.Total,
				ErrorType:    errType,
				ErrorMessage: cause.Error(),
			}
			if err := s.failures.RecordChunkFailure(ctx, failure); err != nil {
				s.logger.Error("failed to record chunk failure",
					"uuid", c.ArticleUUID, "chunk", c.Index, "error", err)
			}
		}
	}
}
