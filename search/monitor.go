package search

import "github.com/poiesic/newswire/vector"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterQueryEmbedding(dimension int)
	AfterVectorQuery(matches []vector.Match)
	VerbatimBoost(id string)
	Finish(results []*Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                      {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)           {}
func (n *noopMonitor) AfterVectorQuery(_ []vector.Match)   {}
func (n *noopMonitor) VerbatimBoost(_ string)              {}
func (n *noopMonitor) Finish(_ []*Result)                  {}
