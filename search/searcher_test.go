package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/poiesic/newswire/ai/mock"
	"github.com/poiesic/newswire/vector"
	vecmock "github.com/poiesic/newswire/vector/mock"
)

func TestNewSearcher_Validation(t *testing.T) {
	_, err := NewSearcher(nil, vecmock.NewMockStore())
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewSearcher(aimock.NewMockEmbedder(), nil)
	assert.ErrorIs(t, err, ErrVectorStoreRequired)
}

func TestSearcher_RanksByScore(t *testing.T) {
	embedder := aimock.NewMockEmbedder()
	store := vecmock.NewMockStore()
	store.QueryFunc = func(ctx context.Context, namespace string, queryVector []float32, topK int) ([]vector.Match, error) {
		return []vector.Match{
			{ID: "low", Score: 0.50, Title: "Unrelated", Text: "other words entirely"},
			{ID: "high", Score: 0.90, Title: "Close", Text: "similar but different words"},
		}, nil
	}

	searcher, err := NewSearcher(embedder, store)
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "rss-feeds", "quantum computing", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "high", results[0].Match.ID)
	assert.Equal(t, "low", results[1].Match.ID)
}

func TestSearcher_VerbatimBoostReordersResults(t *testing.T) {
	embedder := aimock.NewMockEmbedder()
	store := vecmock.NewMockStore()
	store.QueryFunc = func(ctx context.Context, namespace string, queryVector []float32, topK int) ([]vector.Match, error) {
		return []vector.Match{
			{ID: "semantic", Score: 0.80, Title: "Nearby", Text: "related phrasing without those terms"},
			{ID: "verbatim", Score: 0.60, Title: "Report", Text: "new quantum computing breakthrough announced"},
		}, nil
	}

	searcher, err := NewSearcher(embedder, store)
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "rss-feeds", "quantum computing", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "verbatim", results[0].Match.ID, "verbatim match should be boosted past higher similarity")
	assert.InDelta(t, 0.90, results[0].Score, 0.001)
	assert.InDelta(t, 0.80, results[1].Score, 0.001)
}

func TestSearcher_EmptyQuery(t *testing.T) {
	searcher, err := NewSearcher(aimock.NewMockEmbedder(), vecmock.NewMockStore())
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "rss-feeds", "   ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearcher_EmptyNamespace(t *testing.T) {
	searcher, err := NewSearcher(aimock.NewMockEmbedder(), vecmock.NewMockStore())
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "empty", "anything at all", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearcher_EmbedderError(t *testing.T) {
	embedder := aimock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	searcher, err := NewSearcher(embedder, vecmock.NewMockStore())
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "rss-feeds", "query", 5)
	require.Error(t, err)
}

func TestContainsAllQueryWords(t *testing.T) {
	tests := []struct {
		name     string
		document string
		query    string
		want     bool
	}{
		{"all present", "The quantum computing era begins", "quantum computing", true},
		{"missing word", "The quantum era begins", "quantum computing", false},
		{"stop words ignored", "quantum computing", "the quantum and computing", true},
		{"punctuation trimmed", "Quantum, computing!", "quantum computing", true},
		{"empty query", "some document", "", false},
		{"query of stop words only", "some document", "the and of", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsAllQueryWords(tt.document, tt.query))
		})
	}
}
