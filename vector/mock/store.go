// Package mock provides an in-memory vector.Store for tests.
package mock

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/poiesic/newswire/vector"
)

// MockStore is an in-memory test double for vector.Store.
// It allows custom behavior injection via function fields.
type MockStore struct {
	// UpsertFunc is called by Upsert if set. If nil, vectors are stored
	// in memory.
	UpsertFunc func(ctx context.Context, namespace string, vectors []vector.Vector) error

	// QueryFunc is called by Query if set. If nil, stored vectors are
	// ranked by cosine similarity.
	QueryFunc func(ctx context.Context, namespace string, queryVector []float32, topK int) ([]vector.Match, error)

	mu          sync.Mutex
	namespaces  map[string]map[string]vector.Vector
	upsertCalls int
	queryCalls  int
}

// NewMockStore creates an empty in-memory store.
// Returns the concrete type to allow test assertions on stored state.
func NewMockStore() *MockStore {
	return &MockStore{
		namespaces: make(map[string]map[string]vector.Vector),
	}
}

// Upsert stores or replaces vectors keyed by ID within the namespace.
func (m *MockStore) Upsert(ctx context.Context, namespace string, vectors []vector.Vector) error {
	m.mu.Lock()
	m.upsertCalls++
	fn := m.UpsertFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, namespace, vectors)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ns := m.namespaces[namespace]
	if ns == nil {
		ns = make(map[string]vector.Vector)
		m.namespaces[namespace] = ns
	}
	for _, v := range vectors {
		ns[v.ID] = v
	}
	return nil
}

// Query ranks stored vectors by cosine similarity to the query vector.
func (m *MockStore) Query(ctx context.Context, namespace string, queryVector []float32, topK int) ([]vector.Match, error) {
	m.mu.Lock()
	m.queryCalls++
	fn := m.QueryFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, namespace, queryVector, topK)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ns := m.namespaces[namespace]
	if len(ns) == 0 {
		return nil, nil
	}

	matches := make([]vector.Match, 0, len(ns))
	for _, v := range ns {
		matches = append(matches, vector.Match{
			ID:          v.ID,
			Score:       cosineSimilarity(queryVector, v.Values),
			ArticleUUID: v.ArticleUUID,
			ChunkIndex:  v.ChunkIndex,
			Title:       v.Title,
			Text:        v.Text,
			Metadata:    v.Metadata,
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteArticle removes all vectors of one article from the namespace.
func (m *MockStore) DeleteArticle(ctx context.Context, namespace, articleUUID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, v := range m.namespaces[namespace] {
		if v.ArticleUUID == articleUUID {
			delete(m.namespaces[namespace], id)
		}
	}
	return nil
}

// DeleteNamespace removes the namespace and everything in it.
func (m *MockStore) DeleteNamespace(ctx context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.namespaces, namespace)
	return nil
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}

// Count returns the number of vectors stored in a namespace.
func (m *MockStore) Count(namespace string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.namespaces[namespace])
}

// Get returns the stored vector with the given ID, if present.
func (m *MockStore) Get(namespace, id string) (vector.Vector, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.namespaces[namespace][id]
	return v, ok
}

// UpsertCalls returns the number of Upsert invocations.
func (m *MockStore) UpsertCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertCalls
}

// QueryCalls returns the number of Query invocations.
func (m *MockStore) QueryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}

// Reset clears stored vectors, counters and injected behavior.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.namespaces = make(map[string]map[string]vector.Vector)
	m.upsertCalls = 0
	m.queryCalls = 0
	m.UpsertFunc = nil
	m.QueryFunc = nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
