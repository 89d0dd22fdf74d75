package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/newswire/ai"
	"github.com/poiesic/newswire/vector"
)

// verbatimBoost is added when a match contains every significant query word.
const verbatimBoost = 0.3

// Result is one ranked search hit. Score is the similarity score plus any
// verbatim match boost, so it can exceed the raw similarity.
type Result struct {
	Match vector.Match
	Score float32
}

// Searcher runs semantic queries against the vector store.
type Searcher struct {
	embedder ai.Embedder
	store    vector.Store
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(embedder ai.Embedder, store vector.Store, opts ...Option) (*Searcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrVectorStoreRequired
	}

	s := &Searcher{
		embedder: embedder,
		store:    store,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search returns up to topK chunks from namespace ranked by relevance to
// the query.
func (s *Searcher) Search(ctx context.Context, namespace, query string, topK int) ([]*Result, error) {
	return s.SearchWithMonitor(ctx, namespace, query, topK, nil)
}

// SearchWithMonitor searches with monitoring. The monitor receives
// callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, namespace, query string, topK int, monitor SearchMonitor) ([]*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = 5
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(len(embedding))

	matches, err := s.store.Query(ctx, namespace, embedding, topK)
	if err != nil {
		s.logger.Error("error querying vector store", "namespace", namespace, "err", err)
		return nil, err
	}
	monitor.AfterVectorQuery(matches)

	results := make([]*Result, 0, len(matches))
	for _, match := range matches {
		score := match.Score
		if containsAllQueryWords(match.Title+" "+match.Text, query) {
			score += verbatimBoost
			monitor.VerbatimBoost(match.ID)
		}
		results = append(results, &Result{Match: match, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	monitor.Finish(results)

	return results, nil
}
